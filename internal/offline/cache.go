package offline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// ErrNoConnection is the terminal offline error: the network is unreachable
// and no valid cached response exists for the request.
var ErrNoConnection = errors.New("no connection and no cached data")

// StatusError is a non-2xx response from the API. It is an application-level
// failure, not a connectivity failure, so it never falls back to the cache.
type StatusError struct {
	Code int
	Body []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api returned status %d: %s", e.Code, string(e.Body))
}

// Request describes one HTTP call routed through the offline cache.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
	// CacheKey identifies the logical request for response caching and
	// offline fallback. Empty disables caching for this call.
	CacheKey string
}

// Cache wraps outbound HTTP traffic with response caching and a
// pending-request queue for mutations attempted while offline.
type Cache struct {
	store      *Store
	monitor    *Monitor
	client     *http.Client
	entryTTL   time.Duration
	pendingTTL time.Duration
}

// Option configures a Cache.
type Option func(*Cache)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Cache) { c.client = client }
}

// WithTTLs overrides the cache entry TTL and the pending replay TTL.
func WithTTLs(entry, pending time.Duration) Option {
	return func(c *Cache) {
		c.entryTTL = entry
		c.pendingTTL = pending
	}
}

// New creates a Cache. Pending requests queued while offline are replayed
// automatically when the monitor transitions back online.
func New(store *Store, monitor *Monitor, opts ...Option) *Cache {
	c := &Cache{
		store:      store,
		monitor:    monitor,
		client:     &http.Client{Timeout: 30 * time.Second},
		entryTTL:   24 * time.Hour,
		pendingTTL: time.Hour,
	}
	for _, opt := range opts {
		opt(c)
	}
	monitor.Subscribe(func(online bool) {
		if online {
			c.ReplayPending(context.Background())
		}
	})
	return c
}

// Do performs the request through the cache.
//
// Online: the request is attempted; a successful JSON response is stored under
// CacheKey (when set) and returned. A connectivity failure falls back to a
// non-expired cached entry, else the failure propagates.
//
// Offline: a non-expired cached entry is served when present. Otherwise a
// mutating (non-GET) request is queued for replay and the call fails with
// ErrNoConnection; a GET simply fails with ErrNoConnection.
func (c *Cache) Do(ctx context.Context, req Request) (json.RawMessage, error) {
	if c.monitor.Online() {
		payload, err := c.fetch(ctx, req)
		if err == nil {
			if req.CacheKey != "" {
				if storeErr := c.store.PutEntry(ctx, req.CacheKey, payload); storeErr != nil {
					log.Printf("offline: caching response for %s: %v", req.CacheKey, storeErr)
				}
			}
			return payload, nil
		}

		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			// The API answered; this is not a connectivity problem.
			return nil, err
		}

		c.monitor.SetOnline(false)
		if cached, ok := c.cached(ctx, req.CacheKey); ok {
			return cached, nil
		}
		return nil, err
	}

	if cached, ok := c.cached(ctx, req.CacheKey); ok {
		return cached, nil
	}

	if req.Method != http.MethodGet {
		pending := PendingRequest{
			Method:   req.Method,
			URL:      req.URL,
			Headers:  req.Headers,
			Body:     req.Body,
			CacheKey: req.CacheKey,
		}
		queued, err := c.store.Enqueue(ctx, pending)
		if err != nil {
			return nil, fmt.Errorf("queueing offline request: %w", err)
		}
		return nil, fmt.Errorf("request %s queued for replay: %w", queued.ID, ErrNoConnection)
	}

	return nil, ErrNoConnection
}

// ReplayPending replays every queued request in enqueue order. A replay that
// fails on connectivity is re-queued, preserving its original enqueue time,
// only while that enqueue is within the pending TTL; older requests are
// dropped. Replays are not deduplicated: a request queued twice replays twice.
func (c *Cache) ReplayPending(ctx context.Context) {
	items, err := c.store.ListPending(ctx)
	if err != nil {
		log.Printf("offline: listing pending requests: %v", err)
		return
	}

	for _, p := range items {
		if err := c.store.DeletePending(ctx, p.ID); err != nil {
			log.Printf("offline: dequeue %s: %v", p.ID, err)
			continue
		}

		headers := map[string]string{}
		for k, v := range p.Headers {
			headers[k] = v
		}
		// A stable idempotency key lets the backend drop duplicate replays
		// of the same queued mutation.
		headers["Idempotency-Key"] = p.ID

		payload, err := c.fetch(ctx, Request{
			Method:  p.Method,
			URL:     p.URL,
			Headers: headers,
			Body:    p.Body,
		})
		if err == nil {
			if p.CacheKey != "" {
				if storeErr := c.store.PutEntry(ctx, p.CacheKey, payload); storeErr != nil {
					log.Printf("offline: caching replay response for %s: %v", p.CacheKey, storeErr)
				}
			}
			continue
		}

		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			// The API rejected the request; replaying it again cannot help.
			log.Printf("offline: replay %s rejected: %v", p.ID, err)
			continue
		}

		c.monitor.SetOnline(false)
		if time.Since(p.QueuedAt) < c.pendingTTL {
			if _, reqErr := c.store.Enqueue(ctx, p); reqErr != nil {
				log.Printf("offline: re-queueing %s: %v", p.ID, reqErr)
			}
		} else {
			log.Printf("offline: dropping stale pending request %s (queued %s)", p.ID, p.QueuedAt)
		}

		// Connectivity dropped again mid-replay; the rest of the queue stays
		// put for the next transition.
		return
	}
}

// cached returns a non-expired cache entry for key, if any.
func (c *Cache) cached(ctx context.Context, key string) (json.RawMessage, bool) {
	if key == "" {
		return nil, false
	}
	payload, ok, err := c.store.GetEntry(ctx, key, c.entryTTL)
	if err != nil {
		log.Printf("offline: reading cache entry %s: %v", key, err)
		return nil, false
	}
	return payload, ok
}

// fetch performs the actual HTTP round trip and returns the response body.
func (c *Cache) fetch(ctx context.Context, req Request) (json.RawMessage, error) {
	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode, Body: respBody}
	}

	if len(respBody) == 0 {
		return json.RawMessage(`{}`), nil
	}
	if !json.Valid(respBody) {
		return nil, fmt.Errorf("response is not valid JSON")
	}
	return json.RawMessage(respBody), nil
}
