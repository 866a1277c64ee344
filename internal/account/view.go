package account

import (
	"fmt"
	"io"
	"sync"

	"github.com/anevia/anevia/internal/api"
)

// view is the shared terminal rendering for the account pages. A hidden view
// swallows renders so a slow request resolving after navigation cannot write
// into another page.
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

// RenderMessage prints an informational line.
func (v *view) RenderMessage(msg string) {
	if !v.visible() {
		return
	}
	fmt.Fprintln(v.out, msg)
}

// LoginView renders the login page.
type LoginView struct {
	view
}

// NewLoginView creates the login view writing to out.
func NewLoginView(out io.Writer) *LoginView {
	v := &LoginView{}
	v.out = out
	return v
}

func (v *LoginView) Show() {
	v.view.Show()
	fmt.Fprintln(v.out, "[login] sign in with email and password, or with Google")
}

// RegisterView renders the registration page.
type RegisterView struct {
	view
}

// NewRegisterView creates the register view writing to out.
func NewRegisterView(out io.Writer) *RegisterView {
	v := &RegisterView{}
	v.out = out
	return v
}

func (v *RegisterView) Show() {
	v.view.Show()
	fmt.Fprintln(v.out, "[register] create an account")
}

// ProfileView renders the profile page.
type ProfileView struct {
	view
}

// NewProfileView creates the profile view writing to out.
func NewProfileView(out io.Writer) *ProfileView {
	v := &ProfileView{}
	v.out = out
	return v
}

func (v *ProfileView) Show() {
	v.view.Show()
	fmt.Fprintln(v.out, "[profile]")
}

// RenderProfile displays the backend profile.
func (v *ProfileView) RenderProfile(p *api.Profile) {
	if !v.visible() || p == nil {
		return
	}
	fmt.Fprintf(v.out, "username:  %s\n", p.Username)
	if p.Birthdate != "" {
		fmt.Fprintf(v.out, "birthdate: %s\n", p.Birthdate)
	}
	if p.PhotoURL != "" {
		fmt.Fprintf(v.out, "photo:     %s\n", p.PhotoURL)
	}
}
