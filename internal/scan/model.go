package scan

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/anevia/anevia/internal/api"
)

// MaxImageBytes is the upload size cap.
const MaxImageBytes = 10 << 20

var (
	// ErrScanInProgress is returned when a scan upload is started while
	// another is still in flight on the same model.
	ErrScanInProgress = errors.New("scan already in progress")
	// ErrHistoryInProgress is the same guard for history loads.
	ErrHistoryInProgress = errors.New("history load already in progress")
	// ErrFileTooLarge rejects images over the size cap.
	ErrFileTooLarge = errors.New("file size exceeds 10MB limit")
	// ErrUnsupportedType rejects non-image files.
	ErrUnsupportedType = errors.New("unsupported image type: must be JPEG, PNG, or WebP")
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// ValidateImageFile checks an image's name and size before any network call.
func ValidateImageFile(name string, size int64) error {
	if !imageExtensions[strings.ToLower(filepath.Ext(name))] {
		return ErrUnsupportedType
	}
	if size > MaxImageBytes {
		return ErrFileTooLarge
	}
	return nil
}

// Event is the model's typed change notification.
type Event struct {
	// Latest is the most recent scan result, nil before the first upload.
	Latest *api.Scan
	// History is the loaded scan history, newest first.
	History []api.Scan
}

// Model holds scan state and the operations that mutate it. One in-flight
// guard per operation kind: a second same-kind call fails immediately with a
// busy error instead of queueing.
type Model struct {
	client *api.Client

	mu             sync.Mutex
	scanning       bool
	loadingHistory bool
	latest         *api.Scan
	history        []api.Scan
	subs           []func(Event)
}

// NewModel creates a scan model over the API client.
func NewModel(client *api.Client) *Model {
	return &Model{client: client}
}

// Subscribe registers an observer, notified synchronously in registration
// order after every state mutation.
func (m *Model) Subscribe(fn func(Event)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, fn)
}

func (m *Model) notify() {
	m.mu.Lock()
	event := Event{Latest: m.latest, History: append([]api.Scan(nil), m.history...)}
	subs := make([]func(Event), len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()

	for _, fn := range subs {
		fn(event)
	}
}

// ScanImage validates and uploads the image at path.
func (m *Model) ScanImage(ctx context.Context, path string) (*api.Scan, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	if err := ValidateImageFile(info.Name(), info.Size()); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	return m.ScanData(ctx, info.Name(), data)
}

// ScanData uploads an already-loaded image.
func (m *Model) ScanData(ctx context.Context, filename string, data []byte) (*api.Scan, error) {
	if err := ValidateImageFile(filename, int64(len(data))); err != nil {
		return nil, err
	}

	m.mu.Lock()
	if m.scanning {
		m.mu.Unlock()
		return nil, ErrScanInProgress
	}
	m.scanning = true
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		m.scanning = false
		m.mu.Unlock()
	}()

	result, err := m.client.UploadScan(ctx, filename, data)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.latest = result
	m.history = append([]api.Scan{*result}, m.history...)
	m.mu.Unlock()
	m.notify()

	return result, nil
}

// LoadHistory fetches the scan history for the user.
func (m *Model) LoadHistory(ctx context.Context, userID string) ([]api.Scan, error) {
	m.mu.Lock()
	if m.loadingHistory {
		m.mu.Unlock()
		return nil, ErrHistoryInProgress
	}
	m.loadingHistory = true
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		m.loadingHistory = false
		m.mu.Unlock()
	}()

	scans, err := m.client.ListScans(ctx, userID)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.history = scans
	m.mu.Unlock()
	m.notify()

	return scans, nil
}

// GetScan fetches one scan by ID.
func (m *Model) GetScan(ctx context.Context, scanID string) (*api.Scan, error) {
	scan, err := m.client.GetScan(ctx, scanID)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.latest = scan
	m.mu.Unlock()
	m.notify()

	return scan, nil
}

// Latest returns the most recent scan result, nil before the first upload.
func (m *Model) Latest() *api.Scan {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.latest
}

// History returns a copy of the loaded history.
func (m *Model) History() []api.Scan {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]api.Scan(nil), m.history...)
}
