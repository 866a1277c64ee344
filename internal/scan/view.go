package scan

import (
	"fmt"
	"io"
	"sync"

	"github.com/anevia/anevia/internal/api"
)

// view is the shared terminal rendering for the tools and history pages.
// A hidden view swallows renders: a slow load resolving after the user
// navigated away must not write into another page.
type view struct {
	mu    sync.Mutex
	out   io.Writer
	shown bool
}

func (v *view) Show() {
	v.mu.Lock()
	v.shown = true
	v.mu.Unlock()
}

func (v *view) Hide() {
	v.mu.Lock()
	v.shown = false
	v.mu.Unlock()
}

func (v *view) visible() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.shown
}

func (v *view) RenderError(msg string) {
	if !v.visible() {
		return
	}
	fmt.Fprintf(v.out, "! %s\n", msg)
}

// ToolsView renders the scan-capture page.
type ToolsView struct {
	view
}

// NewToolsView creates the tools view writing to out.
func NewToolsView(out io.Writer) *ToolsView {
	v := &ToolsView{}
	v.out = out
	return v
}

func (v *ToolsView) Show() {
	v.view.Show()
	fmt.Fprintln(v.out, "[tools] submit an eye photo (JPEG/PNG/WebP, max 10MB) to check for anemia")
}

// RenderScan displays one scan result.
func (v *ToolsView) RenderScan(s *api.Scan) {
	if !v.visible() || s == nil {
		return
	}
	verdict := "no anemia detected"
	if s.IsAnemic {
		verdict = "anemia detected"
	}
	fmt.Fprintf(v.out, "scan %s: %s (%.1f%% confidence)\n", s.ID, verdict, s.Confidence)
	for _, rec := range s.Recommendations {
		fmt.Fprintf(v.out, "  - %s\n", rec)
	}
}

// RenderUploading reports upload progress state.
func (v *ToolsView) RenderUploading(filename string) {
	if !v.visible() {
		return
	}
	fmt.Fprintf(v.out, "uploading %s...\n", filename)
}

// HistoryView renders the scan-history page.
type HistoryView struct {
	view
}

// NewHistoryView creates the history view writing to out.
func NewHistoryView(out io.Writer) *HistoryView {
	v := &HistoryView{}
	v.out = out
	return v
}

func (v *HistoryView) Show() {
	v.view.Show()
	fmt.Fprintln(v.out, "[scan-history]")
}

// RenderHistory displays the scan list, newest first.
func (v *HistoryView) RenderHistory(scans []api.Scan) {
	if !v.visible() {
		return
	}
	if len(scans) == 0 {
		fmt.Fprintln(v.out, "no scans yet, run one from the tools page")
		return
	}
	for _, s := range scans {
		verdict := "ok"
		if s.IsAnemic {
			verdict = "anemic"
		}
		fmt.Fprintf(v.out, "%s  %s  %s (%.1f%%)\n", s.CreatedAt.Format("2006-01-02 15:04"), s.ID, verdict, s.Confidence)
	}
}

// RenderScan displays one scan's details.
func (v *HistoryView) RenderScan(s *api.Scan) {
	if !v.visible() || s == nil {
		return
	}
	verdict := "no anemia detected"
	if s.IsAnemic {
		verdict = "anemia detected"
	}
	fmt.Fprintf(v.out, "scan %s (%s): %s, %.1f%% confidence\n", s.ID, s.CreatedAt.Format("2006-01-02"), verdict, s.Confidence)
	for k, val := range s.ConfidenceDetail {
		fmt.Fprintf(v.out, "  %s: %.1f%%\n", k, val)
	}
	for _, rec := range s.Recommendations {
		fmt.Fprintf(v.out, "  - %s\n", rec)
	}
}
