package account

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/anevia/anevia/internal/api"
	"github.com/anevia/anevia/internal/auth"
	"github.com/anevia/anevia/internal/db"
	"github.com/anevia/anevia/internal/events"
	"github.com/anevia/anevia/internal/offline"
)

func TestValidateUpdate(t *testing.T) {
	tests := []struct {
		name    string
		update  api.ProfileUpdate
		wantErr error
	}{
		{"empty update ok", api.ProfileUpdate{}, nil},
		{"username ok", api.ProfileUpdate{Username: "ana"}, nil},
		{"birthdate ok", api.ProfileUpdate{Birthdate: "1999-04-21"}, nil},
		{"both ok", api.ProfileUpdate{Username: "ana", Birthdate: "1999-04-21"}, nil},
		{"whitespace username", api.ProfileUpdate{Username: "   "}, ErrEmptyUsername},
		{"wrong date order", api.ProfileUpdate{Birthdate: "21-04-1999"}, ErrInvalidBirthdate},
		{"impossible date", api.ProfileUpdate{Birthdate: "1999-13-45"}, ErrInvalidBirthdate},
		{"not a date", api.ProfileUpdate{Birthdate: "next tuesday"}, ErrInvalidBirthdate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUpdate(tt.update)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateUpdate(%+v) = %v, want %v", tt.update, err, tt.wantErr)
			}
		})
	}
}

func newTestProfileModel(t *testing.T, handler http.Handler, signedIn bool) (*ProfileModel, *events.Bus) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	cache := offline.New(offline.NewStore(database), offline.NewMonitor(true))
	client := api.NewClient(srv.URL, cache)

	creds := auth.NewCredentialStore(filepath.Join(t.TempDir(), "credentials.json"))
	if signedIn {
		if err := creds.StoreCredential(
			&auth.User{UID: "u1", Email: "a@b.com"},
			&auth.Credential{IDToken: "tok-1", RefreshToken: "ref-1"},
		); err != nil {
			t.Fatalf("storing credentials: %v", err)
		}
	}
	bridge := auth.NewBridge(auth.NewFirebaseProvider("test-key", srv.URL, srv.URL), creds, nil)
	client.SetTokenSource(bridge)

	bus := events.NewBus()
	return NewProfileModel(client, bridge, bus), bus
}

func TestUpdateRequiresSignIn(t *testing.T) {
	model, _ := newTestProfileModel(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no network call expected")
	}), false)

	_, err := model.Update(t.Context(), api.ProfileUpdate{Username: "ana"})
	if !errors.Is(err, auth.ErrNotSignedIn) {
		t.Errorf("expected ErrNotSignedIn, got %v", err)
	}
}

func TestUpdatePublishesProfileUpdated(t *testing.T) {
	model, bus := newTestProfileModel(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/api/users/u1" {
			t.Errorf("request: got %s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(`{"status":"success","data":{"uid":"u1","username":"ana"}}`))
	}), true)

	var published []events.Payload
	bus.Subscribe(events.ProfileUpdated, func(p events.Payload) { published = append(published, p) })

	var observed *api.Profile
	model.Subscribe(func(p *api.Profile) { observed = p })

	profile, err := model.Update(t.Context(), api.ProfileUpdate{Username: "ana"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if profile.Username != "ana" {
		t.Errorf("profile: got %+v", profile)
	}
	if model.Current() == nil || model.Current().Username != "ana" {
		t.Errorf("Current: got %+v", model.Current())
	}
	if observed == nil || observed.Username != "ana" {
		t.Errorf("subscriber: got %+v", observed)
	}
	if len(published) != 1 || published[0].UserID != "u1" {
		t.Errorf("expected one ProfileUpdated event for u1, got %+v", published)
	}
}

func TestUpdateValidatesBeforeNetwork(t *testing.T) {
	model, _ := newTestProfileModel(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("invalid updates must not reach the network")
	}), true)

	if _, err := model.Update(t.Context(), api.ProfileUpdate{Birthdate: "bad"}); !errors.Is(err, ErrInvalidBirthdate) {
		t.Errorf("expected ErrInvalidBirthdate, got %v", err)
	}
}

func TestUploadImageRejectsUnsupportedType(t *testing.T) {
	model, _ := newTestProfileModel(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no network call expected")
	}), true)

	if _, err := model.UploadImage(t.Context(), "/tmp/avatar.bmp"); err == nil {
		t.Error("expected error for unsupported photo type")
	}
}

func TestResetPassword(t *testing.T) {
	var gotPath string
	model, _ := newTestProfileModel(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"status":"success"}`))
	}), false)

	if err := model.ResetPassword(t.Context(), "a@b.com"); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
	if gotPath != "/api/users/reset-password" {
		t.Errorf("path: got %q", gotPath)
	}
}
