package app

import (
	"fmt"
	"io"
	"sync"
)

// NavigationView is the persistent header chrome: the route list plus the
// signed-in user chip.
type NavigationView struct {
	mu   sync.Mutex
	out  io.Writer
	user string
}

// NewNavigationView creates the header writing to out.
func NewNavigationView(out io.Writer) *NavigationView {
	return &NavigationView{out: out}
}

// SetUser updates the user chip. Empty means signed out.
func (v *NavigationView) SetUser(name string) {
	v.mu.Lock()
	v.user = name
	v.mu.Unlock()
}

func (v *NavigationView) Show() {
	v.mu.Lock()
	user := v.user
	v.mu.Unlock()

	if user == "" {
		user = "not signed in"
	}
	fmt.Fprintf(v.out, "anevia: home | about | faq | tools | chat | scan-history | profile   [%s]\n", user)
}

func (v *NavigationView) Hide() {}

func (v *NavigationView) RenderError(msg string) {
	fmt.Fprintf(v.out, "! %s\n", msg)
}

// FooterView is the persistent footer chrome.
type FooterView struct {
	out io.Writer
}

// NewFooterView creates the footer writing to out.
func NewFooterView(out io.Writer) *FooterView {
	return &FooterView{out: out}
}

func (v *FooterView) Show() {
	fmt.Fprintln(v.out, "anevia, eye-scan anemia detection")
}

func (v *FooterView) Hide() {}

func (v *FooterView) RenderError(msg string) {
	fmt.Fprintf(v.out, "! %s\n", msg)
}
