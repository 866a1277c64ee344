package router

import (
	"sync"
	"testing"
	"time"
)

// recorder collects handler invocations across the dispatch goroutine.
type recorder struct {
	mu    sync.Mutex
	calls []string
	param map[string]string
	ch    chan struct{}
}

func newRecorder() *recorder {
	return &recorder{ch: make(chan struct{}, 16)}
}

func (r *recorder) handler(route string) Handler {
	return func(params map[string]string) {
		r.mu.Lock()
		r.calls = append(r.calls, route)
		r.param = params
		r.mu.Unlock()
		r.ch <- struct{}{}
	}
}

func (r *recorder) wait(t *testing.T) {
	t.Helper()
	select {
	case <-r.ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for route dispatch")
	}
}

func (r *recorder) lastCall(t *testing.T) string {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		t.Fatal("no route dispatched")
	}
	return r.calls[len(r.calls)-1]
}

func TestStartDispatchesCurrentRoute(t *testing.T) {
	rec := newRecorder()
	r := New()
	r.AddRoute("home", rec.handler("home"))

	r.Start()
	defer r.Stop()

	rec.wait(t)
	if got := rec.lastCall(t); got != "home" {
		t.Errorf("expected initial dispatch of home, got %q", got)
	}
	if r.Current() != "home" {
		t.Errorf("expected current route home, got %q", r.Current())
	}
}

func TestNavigateSwitchesRoute(t *testing.T) {
	rec := newRecorder()
	r := New()
	r.AddRoute("home", rec.handler("home"))
	r.AddRoute("tools", rec.handler("tools"))

	r.Start()
	defer r.Stop()
	rec.wait(t)

	r.Navigate("tools")
	rec.wait(t)

	if got := rec.lastCall(t); got != "tools" {
		t.Errorf("expected tools dispatched, got %q", got)
	}
	if r.Current() != "tools" {
		t.Errorf("expected current route tools, got %q", r.Current())
	}
}

func TestNavigateToCurrentRouteIsNoOp(t *testing.T) {
	rec := newRecorder()
	r := New()
	r.AddRoute("home", rec.handler("home"))

	r.Start()
	defer r.Stop()
	rec.wait(t)

	r.Navigate("home")

	select {
	case <-rec.ch:
		t.Error("navigating to the active route must not re-dispatch")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestUnknownRouteRedirectsToDefault(t *testing.T) {
	rec := newRecorder()
	r := New()
	r.AddRoute(DefaultRoute, rec.handler(DefaultRoute))
	r.AddRoute("tools", rec.handler("tools"))

	r.Start()
	defer r.Stop()
	rec.wait(t) // initial home dispatch

	r.Navigate("tools")
	rec.wait(t)

	r.Navigate("nonexistent")
	rec.wait(t)

	if got := rec.lastCall(t); got != DefaultRoute {
		t.Errorf("expected redirect to %q, got %q", DefaultRoute, got)
	}
	if r.Current() != DefaultRoute {
		t.Errorf("expected current route %q, got %q", DefaultRoute, r.Current())
	}
}

func TestNavigateBeforeStartRepositions(t *testing.T) {
	rec := newRecorder()
	r := New()
	r.AddRoute("home", rec.handler("home"))
	r.AddRoute("about", rec.handler("about"))

	r.Navigate("about")
	if r.Current() != "about" {
		t.Fatalf("expected repositioned route about, got %q", r.Current())
	}

	r.Start()
	defer r.Stop()
	rec.wait(t)

	if got := rec.lastCall(t); got != "about" {
		t.Errorf("expected about dispatched on start, got %q", got)
	}
}

func TestNavigatePassesQueryParams(t *testing.T) {
	rec := newRecorder()
	r := New()
	r.AddRoute("home", rec.handler("home"))
	r.AddRoute("chat", rec.handler("chat"))

	r.Start()
	defer r.Stop()
	rec.wait(t)

	r.Navigate("chat?session=s1&scan=abc%20def")
	rec.wait(t)

	rec.mu.Lock()
	params := rec.param
	rec.mu.Unlock()

	if params["session"] != "s1" {
		t.Errorf("expected session=s1, got %q", params["session"])
	}
	if params["scan"] != "abc def" {
		t.Errorf("expected decoded scan param, got %q", params["scan"])
	}
}

func TestParseQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  map[string]string
	}{
		{"empty", "", map[string]string{}},
		{"single pair", "a=1", map[string]string{"a": "1"}},
		{"multiple pairs", "a=1&b=2", map[string]string{"a": "1", "b": "2"}},
		{"url encoded", "name=hello%20world", map[string]string{"name": "hello world"}},
		{"missing value dropped", "a", map[string]string{}},
		{"empty key dropped", "=1&b=2", map[string]string{"b": "2"}},
		{"empty pair dropped", "a=1&&b=2", map[string]string{"a": "1", "b": "2"}},
		{"bad escape dropped", "a=%zz&b=2", map[string]string{"b": "2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseQuery(tt.query)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("param %q: got %q, want %q", k, got[k], v)
				}
			}
		})
	}
}
