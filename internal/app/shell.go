package app

import (
	"log"
	"net/url"
	"sync"

	"github.com/anevia/anevia/internal/auth"
	"github.com/anevia/anevia/internal/events"
	"github.com/anevia/anevia/internal/router"
)

// Routes served by the shell. The empty fragment aliases home.
var routeKeys = []string{
	"home", "about", "faq", "tools", "login", "register",
	"profile", "chat", "scan-history",
}

// chromelessRoutes hide the header/footer chrome.
var chromelessRoutes = map[string]bool{
	"login":    true,
	"register": true,
}

// protectedRoutes force a navigation to home when the session ends while one
// of them is active.
var protectedRoutes = map[string]bool{
	"profile":      true,
	"chat":         true,
	"scan-history": true,
}

// Factory lazily constructs the presenter for a route.
type Factory func() Presenter

// Shell is the process-wide coordinator: it owns presenter lifetimes, wires
// the router, the event bus, and the auth bridge's state stream.
type Shell struct {
	router *router.Router
	bus    *events.Bus
	bridge *auth.Bridge

	header *NavigationView
	footer *FooterView

	mu         sync.Mutex
	factories  map[string]Factory
	presenters map[string]Presenter
	chromeOn   bool
}

// NewShell creates the shell. factories must cover every route key; a route
// with no factory falls back through the router's default-route redirect.
func NewShell(rt *router.Router, bus *events.Bus, bridge *auth.Bridge, header *NavigationView, footer *FooterView, factories map[string]Factory) *Shell {
	s := &Shell{
		router:     rt,
		bus:        bus,
		bridge:     bridge,
		header:     header,
		footer:     footer,
		factories:  factories,
		presenters: make(map[string]Presenter),
	}

	for _, key := range routeKeys {
		if _, ok := factories[key]; !ok {
			continue
		}
		key := key
		rt.AddRoute(key, func(params map[string]string) {
			s.showRoute(key, params)
		})
	}
	// Empty fragment aliases home.
	rt.AddRoute("", func(params map[string]string) {
		s.showRoute("home", params)
	})

	s.wireEvents()
	bridge.OnStateChanged(s.onAuthStateChanged)

	return s
}

// Start begins routing; the current fragment dispatches immediately.
func (s *Shell) Start() {
	s.router.Start()
}

// Stop halts the router's dispatch loop.
func (s *Shell) Stop() {
	s.router.Stop()
}

// Navigate requests a route change. The presenter switch happens
// asynchronously on the dispatch loop.
func (s *Shell) Navigate(fragment string) {
	s.router.Navigate(fragment)
}

// Dispatch forwards a user action to the presenter of the active route.
func (s *Shell) Dispatch(a Action) {
	s.mu.Lock()
	p := s.presenters[s.router.Current()]
	s.mu.Unlock()

	if p == nil || !p.Active() {
		log.Printf("shell: dropping action %s, no active presenter", a.Kind)
		return
	}
	p.HandleAction(a)
}

// showRoute is the per-route state machine: hide all active presenters,
// toggle chrome, lazily instantiate the target, show it.
func (s *Shell) showRoute(key string, params map[string]string) {
	s.mu.Lock()
	var active []Presenter
	for _, p := range s.presenters {
		if p.Active() {
			active = append(active, p)
		}
	}
	s.mu.Unlock()
	for _, p := range active {
		p.Hide()
	}

	s.mu.Lock()
	showChrome := !chromelessRoutes[key]
	chromeChanged := showChrome != s.chromeOn
	s.chromeOn = showChrome

	p, ok := s.presenters[key]
	if !ok {
		factory, have := s.factories[key]
		if !have {
			s.mu.Unlock()
			log.Printf("shell: no presenter factory for %q", key)
			return
		}
		p = factory()
		s.presenters[key] = p
	}
	s.mu.Unlock()

	if chromeChanged {
		if showChrome {
			s.header.Show()
		} else {
			s.header.Hide()
		}
	} else if showChrome {
		s.header.Show()
	}

	p.Show(params)

	if showChrome {
		s.footer.Show()
	}
}

// wireEvents subscribes the shell to cross-feature navigation events.
func (s *Shell) wireEvents() {
	s.bus.Subscribe(events.ShowLogin, func(events.Payload) {
		s.Navigate("login")
	})
	s.bus.Subscribe(events.ShowRegister, func(events.Payload) {
		s.Navigate("register")
	})
	s.bus.Subscribe(events.ShowProfile, func(events.Payload) {
		s.Navigate("profile")
	})
	s.bus.Subscribe(events.NavigateToTools, func(events.Payload) {
		s.Navigate("tools")
	})
	s.bus.Subscribe(events.NavigateHome, func(events.Payload) {
		s.Navigate("home")
	})
	s.bus.Subscribe(events.NavigateToScanHistory, func(events.Payload) {
		s.Navigate("scan-history")
	})
	s.bus.Subscribe(events.NavigateToChat, func(p events.Payload) {
		fragment := "chat"
		switch {
		case p.SessionID != "":
			fragment += "?session=" + url.QueryEscape(p.SessionID)
		case p.ScanID != "":
			fragment += "?scan=" + url.QueryEscape(p.ScanID)
		}
		s.Navigate(fragment)
	})
}

// onAuthStateChanged reacts to the auth bridge's state stream. It may fire
// multiple times per sign-in (identity first, backend profile later); a
// missing profile never forces a sign-out transition.
func (s *Shell) onAuthStateChanged(state auth.AuthState) {
	if state.User == nil {
		s.header.SetUser("")
		if protectedRoutes[s.router.Current()] {
			s.Navigate("home")
		}
		return
	}

	name := state.User.DisplayName
	if state.Profile != nil && state.Profile.Username != "" {
		name = state.Profile.Username
	}
	if name == "" {
		name = state.User.Email
	}
	s.header.SetUser(name)
}
