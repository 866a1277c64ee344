package offline

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/anevia/anevia/internal/db"
)

// PendingRequest is a mutating request queued while offline, waiting for replay.
type PendingRequest struct {
	ID       string
	Method   string
	URL      string
	Headers  map[string]string
	Body     []byte
	CacheKey string
	QueuedAt time.Time
}

// Store persists cached responses and the pending-request queue in SQLite.
type Store struct {
	db *db.DB
}

// NewStore creates a store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// PutEntry stores a response payload under the given cache key, replacing any
// previous entry and resetting its timestamp.
func (s *Store) PutEntry(ctx context.Context, key string, payload []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO response_cache (cache_key, payload, stored_at) VALUES (?, ?, ?)
		 ON CONFLICT(cache_key) DO UPDATE SET payload = excluded.payload, stored_at = excluded.stored_at`,
		key, string(payload), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("storing cache entry %q: %w", key, err)
	}
	return nil
}

// GetEntry returns the payload stored under key if it is younger than maxAge.
// Entries at or beyond maxAge are treated as absent.
func (s *Store) GetEntry(ctx context.Context, key string, maxAge time.Duration) (json.RawMessage, bool, error) {
	var payload string
	var storedAt time.Time
	err := s.db.QueryRowContext(ctx,
		`SELECT payload, stored_at FROM response_cache WHERE cache_key = ?`, key,
	).Scan(&payload, &storedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cache entry %q: %w", key, err)
	}
	if time.Since(storedAt) >= maxAge {
		return nil, false, nil
	}
	return json.RawMessage(payload), true, nil
}

// DeleteEntry removes the entry stored under key, if any.
func (s *Store) DeleteEntry(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM response_cache WHERE cache_key = ?`, key)
	if err != nil {
		return fmt.Errorf("deleting cache entry %q: %w", key, err)
	}
	return nil
}

// PruneEntries drops every cache entry older than maxAge.
func (s *Store) PruneEntries(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-maxAge)
	res, err := s.db.ExecContext(ctx, `DELETE FROM response_cache WHERE stored_at <= ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning cache entries: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// Enqueue appends a pending request to the back of the replay queue.
// The original QueuedAt is preserved on re-enqueue so the replay TTL is
// measured from the first enqueue.
func (s *Store) Enqueue(ctx context.Context, p PendingRequest) (PendingRequest, error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.QueuedAt.IsZero() {
		p.QueuedAt = time.Now().UTC()
	}
	headers, err := json.Marshal(p.Headers)
	if err != nil {
		return PendingRequest{}, fmt.Errorf("marshalling pending headers: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO pending_requests (id, method, url, headers, body, cache_key, queued_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Method, p.URL, string(headers), p.Body, p.CacheKey, p.QueuedAt,
	)
	if err != nil {
		return PendingRequest{}, fmt.Errorf("enqueueing pending request: %w", err)
	}
	return p, nil
}

// ListPending returns all queued requests in enqueue order.
func (s *Store) ListPending(ctx context.Context) ([]PendingRequest, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, method, url, headers, body, cache_key, queued_at FROM pending_requests ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("listing pending requests: %w", err)
	}
	defer rows.Close()

	var out []PendingRequest
	for rows.Next() {
		var p PendingRequest
		var headers string
		if err := rows.Scan(&p.ID, &p.Method, &p.URL, &headers, &p.Body, &p.CacheKey, &p.QueuedAt); err != nil {
			return nil, fmt.Errorf("scanning pending request: %w", err)
		}
		if err := json.Unmarshal([]byte(headers), &p.Headers); err != nil {
			p.Headers = nil
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// DeletePending removes a queued request by ID.
func (s *Store) DeletePending(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM pending_requests WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting pending request %s: %w", id, err)
	}
	return nil
}

// PendingCount returns the number of queued requests.
func (s *Store) PendingCount(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pending_requests`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting pending requests: %w", err)
	}
	return n, nil
}
