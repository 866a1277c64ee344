package dashboard

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/anevia/anevia/internal/account"
	"github.com/anevia/anevia/internal/api"
	"github.com/anevia/anevia/internal/auth"
	"github.com/anevia/anevia/internal/chat"
	"github.com/anevia/anevia/internal/db"
	"github.com/anevia/anevia/internal/events"
	"github.com/anevia/anevia/internal/offline"
	"github.com/anevia/anevia/internal/scan"
)

func newTestDashboard(t *testing.T, backend http.Handler, signedIn bool) *Dashboard {
	t.Helper()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	store := offline.NewStore(database)
	monitor := offline.NewMonitor(true)
	cache := offline.New(store, monitor)
	client := api.NewClient(srv.URL, cache)

	creds := auth.NewCredentialStore(filepath.Join(t.TempDir(), "credentials.json"))
	if signedIn {
		creds.StoreCredential(
			&auth.User{UID: "u1", Email: "a@b.com"},
			&auth.Credential{IDToken: "tok-1"},
		)
	}
	bridge := auth.NewBridge(auth.NewFirebaseProvider("k", srv.URL, srv.URL), creds, nil)
	client.SetTokenSource(bridge)

	return New(
		Config{Port: 0},
		scan.NewModel(client),
		chat.NewModel(client),
		account.NewProfileModel(client, bridge, events.NewBus()),
		bridge,
		monitor,
		store,
	)
}

func get(t *testing.T, d *Dashboard, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	d.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	d := newTestDashboard(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}), false)

	rec := get(t, d, "/healthz")
	if rec.Code != http.StatusOK {
		t.Errorf("status: got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("body: got %s", rec.Body.String())
	}
}

func TestIndexServesPage(t *testing.T) {
	d := newTestDashboard(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}), false)

	rec := get(t, d, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "<html") {
		t.Error("expected the embedded dashboard page")
	}
}

func TestStatusSignedOut(t *testing.T) {
	d := newTestDashboard(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}), false)

	rec := get(t, d, "/api/status")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}

	var status statusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("decoding status: %v", err)
	}
	if !status.Online || status.SignedIn || status.PendingCount != 0 {
		t.Errorf("status: got %+v", status)
	}
}

func TestStatusSignedIn(t *testing.T) {
	d := newTestDashboard(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}), true)

	rec := get(t, d, "/api/status")
	var status statusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("decoding status: %v", err)
	}
	if !status.SignedIn || status.Email != "a@b.com" {
		t.Errorf("status: got %+v", status)
	}
}

func TestScansRequireSignIn(t *testing.T) {
	d := newTestDashboard(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}), false)

	rec := get(t, d, "/api/scans")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d", rec.Code)
	}
}

func TestScansProxiesHistory(t *testing.T) {
	d := newTestDashboard(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","data":[{"scanId":"s1","isAnemic":true}]}`))
	}), true)

	rec := get(t, d, "/api/scans")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}

	var scans []api.Scan
	if err := json.Unmarshal(rec.Body.Bytes(), &scans); err != nil {
		t.Fatalf("decoding scans: %v", err)
	}
	if len(scans) != 1 || scans[0].ID != "s1" {
		t.Errorf("scans: got %+v", scans)
	}
}

func TestScanRendersRecommendations(t *testing.T) {
	d := newTestDashboard(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","data":{
			"scanId":"s1",
			"recommendations":["eat **iron-rich** foods","see a doctor"]}}`))
	}), true)

	rec := get(t, d, "/api/scans/s1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}

	var resp scanResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding scan: %v", err)
	}
	if resp.ID != "s1" {
		t.Errorf("scan id: got %q", resp.ID)
	}
	if !strings.Contains(resp.RecommendationsHTML, "<li>") {
		t.Errorf("expected a rendered list, got %q", resp.RecommendationsHTML)
	}
	if !strings.Contains(resp.RecommendationsHTML, "<strong>iron-rich</strong>") {
		t.Errorf("expected rendered emphasis, got %q", resp.RecommendationsHTML)
	}
}

func TestProfileProxiesBackend(t *testing.T) {
	d := newTestDashboard(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","data":{"uid":"u1","username":"ana"}}`))
	}), true)

	rec := get(t, d, "/api/profile")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}

	var profile api.Profile
	if err := json.Unmarshal(rec.Body.Bytes(), &profile); err != nil {
		t.Fatalf("decoding profile: %v", err)
	}
	if profile.Username != "ana" {
		t.Errorf("profile: got %+v", profile)
	}
}

func TestRenderRecommendationsEmpty(t *testing.T) {
	if got := renderRecommendations(nil); got != "" {
		t.Errorf("expected empty render, got %q", got)
	}
}
