package scan

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/anevia/anevia/internal/api"
	"github.com/anevia/anevia/internal/db"
	"github.com/anevia/anevia/internal/offline"
)

func newTestModel(t *testing.T, handler http.Handler) *Model {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	cache := offline.New(offline.NewStore(database), offline.NewMonitor(true))
	return NewModel(api.NewClient(srv.URL, cache))
}

func TestValidateImageFile(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		size     int64
		wantErr  error
	}{
		{"jpg ok", "eye.jpg", 1024, nil},
		{"jpeg ok", "eye.jpeg", 1024, nil},
		{"png ok", "eye.png", 1024, nil},
		{"webp ok", "eye.webp", 1024, nil},
		{"uppercase extension ok", "EYE.JPG", 1024, nil},
		{"exactly at cap ok", "eye.jpg", MaxImageBytes, nil},
		{"over cap", "eye.jpg", MaxImageBytes + 1, ErrFileTooLarge},
		{"gif rejected", "eye.gif", 1024, ErrUnsupportedType},
		{"pdf rejected", "scan.pdf", 1024, ErrUnsupportedType},
		{"no extension rejected", "eye", 1024, ErrUnsupportedType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateImageFile(tt.filename, tt.size)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateImageFile(%q, %d) = %v, want %v", tt.filename, tt.size, err, tt.wantErr)
			}
		})
	}
}

func TestValidateErrorMessages(t *testing.T) {
	if got := ErrFileTooLarge.Error(); got != "file size exceeds 10MB limit" {
		t.Errorf("size error text: got %q", got)
	}
	if got := ErrScanInProgress.Error(); got != "scan already in progress" {
		t.Errorf("busy error text: got %q", got)
	}
}

func TestScanDataValidatesBeforeUpload(t *testing.T) {
	model := newTestModel(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("invalid images must not reach the network")
	}))

	if _, err := model.ScanData(t.Context(), "eye.gif", []byte("x")); !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("expected ErrUnsupportedType, got %v", err)
	}
	if _, err := model.ScanData(t.Context(), "eye.jpg", make([]byte, MaxImageBytes+1)); !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("expected ErrFileTooLarge, got %v", err)
	}
}

func TestScanDataUpdatesStateAndNotifies(t *testing.T) {
	model := newTestModel(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","data":{"scanId":"s1","isAnemic":true,"confidence":0.87}}`))
	}))

	var events []Event
	model.Subscribe(func(e Event) { events = append(events, e) })

	result, err := model.ScanData(t.Context(), "eye.jpg", []byte("fake-jpeg"))
	if err != nil {
		t.Fatalf("ScanData: %v", err)
	}
	if result.ID != "s1" || !result.IsAnemic {
		t.Errorf("result: got %+v", result)
	}

	if latest := model.Latest(); latest == nil || latest.ID != "s1" {
		t.Errorf("Latest: got %+v", latest)
	}
	history := model.History()
	if len(history) != 1 || history[0].ID != "s1" {
		t.Errorf("History: got %+v", history)
	}

	if len(events) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(events))
	}
	if events[0].Latest == nil || events[0].Latest.ID != "s1" || len(events[0].History) != 1 {
		t.Errorf("event: got %+v", events[0])
	}
}

func TestScanDataPrependsToHistory(t *testing.T) {
	scans := []string{"s1", "s2"}
	i := 0
	model := newTestModel(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","data":{"scanId":"` + scans[i] + `"}}`))
		i++
	}))

	model.ScanData(t.Context(), "a.jpg", []byte("x"))
	model.ScanData(t.Context(), "b.jpg", []byte("x"))

	history := model.History()
	if len(history) != 2 || history[0].ID != "s2" || history[1].ID != "s1" {
		t.Errorf("expected newest-first history, got %+v", history)
	}
}

func TestScanDataBusyGuard(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var enteredOnce sync.Once
	model := newTestModel(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		enteredOnce.Do(func() { close(entered) })
		<-release
		w.Write([]byte(`{"status":"success","data":{"scanId":"s1"}}`))
	}))

	done := make(chan error, 1)
	go func() {
		_, err := model.ScanData(t.Context(), "a.jpg", []byte("x"))
		done <- err
	}()

	<-entered
	if _, err := model.ScanData(t.Context(), "b.jpg", []byte("x")); !errors.Is(err, ErrScanInProgress) {
		t.Errorf("expected ErrScanInProgress while a scan is in flight, got %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first scan: %v", err)
	}

	// The guard clears once the first scan resolves.
	if _, err := model.GetScan(t.Context(), "s1"); err != nil {
		t.Errorf("GetScan after scan: %v", err)
	}
}

func TestLoadHistory(t *testing.T) {
	model := newTestModel(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("userId"); got != "u1" {
			t.Errorf("userId: got %q", got)
		}
		w.Write([]byte(`{"status":"success","data":[{"scanId":"s2"},{"scanId":"s1"}]}`))
	}))

	var events []Event
	model.Subscribe(func(e Event) { events = append(events, e) })

	scans, err := model.LoadHistory(t.Context(), "u1")
	if err != nil {
		t.Fatalf("LoadHistory: %v", err)
	}
	if len(scans) != 2 || scans[0].ID != "s2" {
		t.Errorf("scans: got %+v", scans)
	}
	if len(events) != 1 || len(events[0].History) != 2 {
		t.Errorf("expected 1 notification with full history, got %+v", events)
	}
}

func TestScanImageRejectsBadFiles(t *testing.T) {
	model := newTestModel(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("invalid images must not reach the network")
	}))

	if _, err := model.ScanImage(t.Context(), filepath.Join(t.TempDir(), "missing.jpg")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	if _, err := model.ScanImage(t.Context(), path); !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("expected ErrUnsupportedType, got %v", err)
	}
}
