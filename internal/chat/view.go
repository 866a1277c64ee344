package chat

import (
	"fmt"
	"io"
	"sync"

	"github.com/anevia/anevia/internal/api"
)

// View renders the chat page. A hidden view swallows renders so a slow
// load resolving after navigation cannot write into another page.
type View struct {
	mu    sync.Mutex
	out   io.Writer
	shown bool
}

// NewView creates the chat view writing to out.
func NewView(out io.Writer) *View {
	return &View{out: out}
}

func (v *View) Show() {
	v.mu.Lock()
	v.shown = true
	v.mu.Unlock()
	fmt.Fprintln(v.out, "[chat]")
}

func (v *View) Hide() {
	v.mu.Lock()
	v.shown = false
	v.mu.Unlock()
}

func (v *View) visible() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.shown
}

func (v *View) RenderError(msg string) {
	if !v.visible() {
		return
	}
	fmt.Fprintf(v.out, "! %s\n", msg)
}

// RenderSessions displays the session list.
func (v *View) RenderSessions(sessions []api.ChatSession) {
	if !v.visible() {
		return
	}
	if len(sessions) == 0 {
		fmt.Fprintln(v.out, "no conversations yet, start one from a scan result")
		return
	}
	for _, s := range sessions {
		fmt.Fprintf(v.out, "%s  %s  %s\n", s.UpdatedAt.Format("2006-01-02 15:04"), s.SessionID, s.Title)
	}
}

// RenderMessages displays the full conversation.
func (v *View) RenderMessages(session *api.ChatSession, messages []api.ChatMessage) {
	if !v.visible() {
		return
	}
	if session != nil && session.Title != "" {
		fmt.Fprintf(v.out, "-- %s --\n", session.Title)
	}
	for _, m := range messages {
		v.renderMessage(m)
	}
}

// RenderMessage displays one message.
func (v *View) RenderMessage(m api.ChatMessage) {
	if !v.visible() {
		return
	}
	v.renderMessage(m)
}

func (v *View) renderMessage(m api.ChatMessage) {
	label := "you"
	switch m.Sender {
	case api.SenderAI:
		label = "ai"
	case api.SenderSystem:
		label = "system"
	}
	fmt.Fprintf(v.out, "[%s] %s\n", label, m.Text)
}

// RenderTyping shows the waiting indicator while the AI reply is pending.
func (v *View) RenderTyping() {
	if !v.visible() {
		return
	}
	fmt.Fprintln(v.out, "ai is typing...")
}
