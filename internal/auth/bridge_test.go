package auth

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/anevia/anevia/internal/api"
)

type fakeProvider struct {
	user *User
	cred *Credential
	err  error

	refreshCalls int
	refreshCred  *Credential

	onUpdatePassword func()
}

func (p *fakeProvider) SignInWithPassword(ctx context.Context, email, password string) (*User, *Credential, error) {
	return p.user, p.cred, p.err
}

func (p *fakeProvider) SignUp(ctx context.Context, email, password, displayName string) (*User, *Credential, error) {
	return p.user, p.cred, p.err
}

func (p *fakeProvider) SignInWithGoogle(ctx context.Context, googleAccessToken string) (*User, *Credential, error) {
	return p.user, p.cred, p.err
}

func (p *fakeProvider) RefreshIDToken(ctx context.Context, refreshToken string) (*Credential, error) {
	p.refreshCalls++
	if p.refreshCred == nil {
		return nil, errors.New("no refresh configured")
	}
	return p.refreshCred, nil
}

func (p *fakeProvider) UpdatePassword(ctx context.Context, idToken, newPassword string) (*Credential, error) {
	if p.onUpdatePassword != nil {
		p.onUpdatePassword()
	}
	return p.cred, p.err
}

func (p *fakeProvider) LinkPassword(ctx context.Context, idToken, email, password string) (*Credential, error) {
	return p.cred, p.err
}

func (p *fakeProvider) DeleteAccount(ctx context.Context, idToken string) error {
	return p.err
}

type fakeBackend struct {
	verifyErr  error
	profile    *api.Profile
	profileErr error
}

func (b *fakeBackend) VerifyToken(ctx context.Context, idToken string) (json.RawMessage, error) {
	if b.verifyErr != nil {
		return nil, b.verifyErr
	}
	return json.RawMessage(`{"status":"success"}`), nil
}

func (b *fakeBackend) GetProfile(ctx context.Context, uid string) (*api.Profile, error) {
	return b.profile, b.profileErr
}

func setupBridge(t *testing.T, provider IdentityProvider, backend BackendSync) (*Bridge, *CredentialStore) {
	t.Helper()
	creds := NewCredentialStore(filepath.Join(t.TempDir(), "credentials.json"))
	return NewBridge(provider, creds, backend), creds
}

func collectStates(b *Bridge) *[]AuthState {
	var states []AuthState
	b.OnStateChanged(func(state AuthState) { states = append(states, state) })
	return &states
}

func TestSignInEmitsIdentityThenEnrichedState(t *testing.T) {
	provider := &fakeProvider{
		user: &User{UID: "u1", Email: "a@b.com"},
		cred: &Credential{IDToken: "tok-1", RefreshToken: "ref-1"},
	}
	backend := &fakeBackend{profile: &api.Profile{UID: "u1", Username: "ana"}}
	bridge, creds := setupBridge(t, provider, backend)
	states := collectStates(bridge)

	state, err := bridge.SignIn(t.Context(), "a@b.com", "secret")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if state.User == nil || state.User.UID != "u1" {
		t.Fatalf("returned state user: %+v", state.User)
	}
	if state.Profile == nil || state.Profile.Username != "ana" {
		t.Errorf("returned state profile: %+v", state.Profile)
	}

	if len(*states) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(*states))
	}
	first, second := (*states)[0], (*states)[1]
	if first.User == nil || first.Profile != nil {
		t.Errorf("first notification must be identity-only, got %+v", first)
	}
	if second.Profile == nil || second.Profile.Username != "ana" {
		t.Errorf("second notification must carry the profile, got %+v", second)
	}

	stored, _ := creds.Load()
	if stored.IDToken != "tok-1" || stored.RefreshToken != "ref-1" {
		t.Errorf("credentials not persisted: %+v", stored)
	}
}

func TestSignInToleratesBackendFailure(t *testing.T) {
	provider := &fakeProvider{
		user: &User{UID: "u1", Email: "a@b.com"},
		cred: &Credential{IDToken: "tok-1"},
	}
	backend := &fakeBackend{verifyErr: errors.New("backend down")}
	bridge, _ := setupBridge(t, provider, backend)
	states := collectStates(bridge)

	state, err := bridge.SignIn(t.Context(), "a@b.com", "secret")
	if err != nil {
		t.Fatalf("a backend failure must not fail the sign-in: %v", err)
	}
	if state.User == nil {
		t.Fatal("identity must survive backend failure")
	}
	if state.Profile != nil {
		t.Errorf("profile must be missing on backend failure, got %+v", state.Profile)
	}

	if len(*states) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(*states))
	}
	if (*states)[0].User == nil {
		t.Error("no sign-out may be emitted on backend failure")
	}
}

func TestSignInProviderErrorPropagates(t *testing.T) {
	provider := &fakeProvider{err: &ProviderError{Code: "INVALID_PASSWORD"}}
	bridge, _ := setupBridge(t, provider, nil)

	_, err := bridge.SignIn(t.Context(), "a@b.com", "wrong")
	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if provErr.UserMessage() != "incorrect password" {
		t.Errorf("user message: got %q", provErr.UserMessage())
	}
}

func TestTokenServesCachedWithoutRefresh(t *testing.T) {
	provider := &fakeProvider{}
	bridge, creds := setupBridge(t, provider, nil)

	creds.StoreCredential(&User{UID: "u1"}, &Credential{IDToken: "tok-1", RefreshToken: "ref-1"})

	token, err := bridge.Token(t.Context())
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if token != "tok-1" {
		t.Errorf("token: got %q", token)
	}
	if provider.refreshCalls != 0 {
		t.Errorf("a valid cached token must not trigger a refresh, got %d calls", provider.refreshCalls)
	}
}

func TestTokenRefreshesWhenExpired(t *testing.T) {
	provider := &fakeProvider{refreshCred: &Credential{IDToken: "tok-2"}}
	bridge, creds := setupBridge(t, provider, nil)

	creds.Save(&Credentials{
		IDToken:      "tok-1",
		TokenExpiry:  time.Now().Add(-time.Minute),
		RefreshToken: "ref-1",
		User:         &User{UID: "u1"},
	})

	token, err := bridge.Token(t.Context())
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if token != "tok-2" {
		t.Errorf("token: got %q, want refreshed tok-2", token)
	}
	if provider.refreshCalls != 1 {
		t.Errorf("refresh calls: got %d", provider.refreshCalls)
	}

	stored, _ := creds.Load()
	if stored.IDToken != "tok-2" {
		t.Errorf("refreshed token not persisted: %q", stored.IDToken)
	}
	if stored.RefreshToken != "ref-1" {
		t.Errorf("refresh token must survive, got %q", stored.RefreshToken)
	}
}

func TestTokenWithoutSessionFails(t *testing.T) {
	bridge, _ := setupBridge(t, &fakeProvider{}, nil)

	_, err := bridge.Token(t.Context())
	if !errors.Is(err, ErrNotSignedIn) {
		t.Fatalf("expected ErrNotSignedIn, got %v", err)
	}
}

func TestChangePasswordReplaysStateOnTransientSignOut(t *testing.T) {
	provider := &fakeProvider{cred: &Credential{IDToken: "tok-2"}}
	bridge, creds := setupBridge(t, provider, nil)

	creds.StoreCredential(&User{UID: "u1", Email: "a@b.com"}, &Credential{IDToken: "tok-1", RefreshToken: "ref-1"})
	// Seed the last known state.
	bridge.HandleProviderState(t.Context(), &User{UID: "u1", Email: "a@b.com"})

	states := collectStates(bridge)

	// Credential rotation makes the provider briefly report "no user".
	provider.onUpdatePassword = func() {
		bridge.HandleProviderState(t.Context(), nil)
	}

	if err := bridge.ChangePassword(t.Context(), "newsecret"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}

	if len(*states) != 1 {
		t.Fatalf("expected 1 replayed notification, got %d", len(*states))
	}
	if (*states)[0].User == nil || (*states)[0].User.UID != "u1" {
		t.Errorf("transient no-user must replay the last identity, got %+v", (*states)[0])
	}

	stored, _ := creds.Load()
	if stored.IDToken != "tok-2" {
		t.Errorf("rotated token not persisted: %q", stored.IDToken)
	}
}

func TestHandleProviderStateSignOut(t *testing.T) {
	bridge, _ := setupBridge(t, &fakeProvider{}, nil)
	states := collectStates(bridge)

	// Outside a password change, a nil user is a real sign-out.
	bridge.HandleProviderState(t.Context(), nil)

	if len(*states) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(*states))
	}
	if (*states)[0].User != nil {
		t.Errorf("expected signed-out state, got %+v", (*states)[0])
	}
}

func TestSignOutClearsSession(t *testing.T) {
	bridge, creds := setupBridge(t, &fakeProvider{}, nil)
	creds.StoreCredential(&User{UID: "u1"}, &Credential{IDToken: "tok-1"})
	states := collectStates(bridge)

	if err := bridge.SignOut(); err != nil {
		t.Fatalf("SignOut: %v", err)
	}

	if _, err := bridge.CurrentUser(); !errors.Is(err, ErrNotSignedIn) {
		t.Errorf("expected ErrNotSignedIn after sign-out, got %v", err)
	}
	if len(*states) != 1 || (*states)[0].User != nil {
		t.Errorf("expected one signed-out notification, got %v", *states)
	}
}

func TestDeleteAccountSignsOut(t *testing.T) {
	provider := &fakeProvider{}
	bridge, creds := setupBridge(t, provider, nil)
	creds.StoreCredential(&User{UID: "u1"}, &Credential{IDToken: "tok-1"})

	if err := bridge.DeleteAccount(t.Context()); err != nil {
		t.Fatalf("DeleteAccount: %v", err)
	}
	if _, err := bridge.CurrentUser(); !errors.Is(err, ErrNotSignedIn) {
		t.Errorf("expected cleared session, got %v", err)
	}
}
