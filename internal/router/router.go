// Package router dispatches fragment-style routes ("tools", "chat?session=s1")
// to registered handlers, mirroring hash-based navigation: changing the
// fragment is decoupled from handler invocation by a single dispatch
// goroutine, so navigation is never synchronous with the resulting switch.
package router

import (
	"log"
	"strings"
	"sync"
)

// DefaultRoute is the self-healing fallback for unknown route keys.
const DefaultRoute = "home"

// Handler is invoked when its route becomes active. params holds the decoded
// query parameters of the fragment.
type Handler func(params map[string]string)

// Router maps route keys to handlers.
type Router struct {
	mu      sync.Mutex
	routes  map[string]Handler
	current string
	started bool

	changes chan string
	done    chan struct{}
	wg      sync.WaitGroup
}

// New creates an empty router positioned on the default route.
func New() *Router {
	return &Router{
		routes:  make(map[string]Handler),
		current: DefaultRoute,
		changes: make(chan string, 16),
		done:    make(chan struct{}),
	}
}

// AddRoute registers a handler for key. Registering the same key again
// overwrites the previous handler; the last registration wins.
func (r *Router) AddRoute(key string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes[key] = h
}

// Start begins the dispatch loop and immediately dispatches the current
// fragment. Calling Start on a started router is a no-op.
func (r *Router) Start() {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return
	}
	r.started = true
	current := r.current
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		for {
			select {
			case fragment := <-r.changes:
				r.handleRouteChange(fragment)
			case <-r.done:
				return
			}
		}
	}()

	r.changes <- current
}

// Stop terminates the dispatch loop and waits for it to drain.
func (r *Router) Stop() {
	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()
		return
	}
	r.started = false
	r.mu.Unlock()

	close(r.done)
	r.wg.Wait()
}

// Navigate sets the fragment, which triggers the change listener
// asynchronously. Navigating to the currently active route is a no-op.
func (r *Router) Navigate(fragment string) {
	key, _ := splitFragment(fragment)

	r.mu.Lock()
	if key == r.current {
		r.mu.Unlock()
		return
	}
	started := r.started
	r.mu.Unlock()

	if !started {
		// Nothing is listening yet; just reposition.
		r.mu.Lock()
		r.current = key
		r.mu.Unlock()
		return
	}

	select {
	case r.changes <- fragment:
	case <-r.done:
	}
}

// Current returns the active route key.
func (r *Router) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// handleRouteChange resolves the fragment to a handler. Unknown keys redirect
// to the default route instead of invoking anything.
func (r *Router) handleRouteChange(fragment string) {
	key, query := splitFragment(fragment)

	r.mu.Lock()
	handler, ok := r.routes[key]
	if ok {
		r.current = key
	}
	r.mu.Unlock()

	if !ok {
		log.Printf("router: no handler for %q, redirecting to %s", key, DefaultRoute)
		r.Navigate(DefaultRoute)
		return
	}

	handler(parseQuery(query))
}

// splitFragment separates the route key from its query suffix.
func splitFragment(fragment string) (key, query string) {
	key = fragment
	if idx := strings.IndexByte(fragment, '?'); idx >= 0 {
		key = fragment[:idx]
		query = fragment[idx+1:]
	}
	return key, query
}
