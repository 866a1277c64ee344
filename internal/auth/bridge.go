package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/anevia/anevia/internal/api"
)

// stateReplayWindow is how long a captured identity/profile pair stays
// replayable when the provider transiently reports "no user" during a
// password change.
const stateReplayWindow = 30 * time.Second

// AuthState is what listeners receive on every auth transition. User is nil
// on sign-out. Profile and Raw may lag User: the first notification after a
// sign-in carries only the identity, a later one adds the backend profile.
type AuthState struct {
	User    *User
	Profile *api.Profile
	Raw     json.RawMessage
}

// StateListener observes auth-state transitions.
type StateListener func(state AuthState)

// BackendSync is the secondary backend exchange performed after identity
// operations. The API client satisfies it.
type BackendSync interface {
	VerifyToken(ctx context.Context, idToken string) (json.RawMessage, error)
	GetProfile(ctx context.Context, uid string) (*api.Profile, error)
}

// Bridge wraps the external identity provider, caches tokens locally, and
// keeps the backend in sync with identity changes. A confirmed identity
// always takes precedence over backend reachability: profile-fetch failures
// never force a sign-out.
type Bridge struct {
	provider IdentityProvider
	creds    *CredentialStore
	backend  BackendSync

	mu               sync.Mutex
	listeners        []StateListener
	lastState        AuthState
	lastStateAt      time.Time
	passwordChanging bool
}

// NewBridge creates a bridge over the given provider and credential store.
// backend may be nil, disabling the secondary sync.
func NewBridge(provider IdentityProvider, creds *CredentialStore, backend BackendSync) *Bridge {
	return &Bridge{
		provider: provider,
		creds:    creds,
		backend:  backend,
	}
}

// OnStateChanged registers a listener for auth-state transitions. Listeners
// run synchronously in registration order and must tolerate being called
// multiple times per sign-in.
func (b *Bridge) OnStateChanged(fn StateListener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, fn)
}

// SignIn authenticates with email and password, stores the session, and runs
// the backend sync. A backend failure is reported in the returned state's
// missing Profile, never as an error.
func (b *Bridge) SignIn(ctx context.Context, email, password string) (*AuthState, error) {
	user, cred, err := b.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return b.completeSignIn(ctx, user, cred)
}

// Register creates a new account and signs it in.
func (b *Bridge) Register(ctx context.Context, email, password, displayName string) (*AuthState, error) {
	user, cred, err := b.provider.SignUp(ctx, email, password, displayName)
	if err != nil {
		return nil, err
	}
	return b.completeSignIn(ctx, user, cred)
}

// SignInWithGoogle exchanges a Google OAuth access token for a provider
// session. Callers obtain the token via RunGoogleOAuth.
func (b *Bridge) SignInWithGoogle(ctx context.Context, googleAccessToken string) (*AuthState, error) {
	user, cred, err := b.provider.SignInWithGoogle(ctx, googleAccessToken)
	if err != nil {
		return nil, err
	}
	return b.completeSignIn(ctx, user, cred)
}

// completeSignIn persists the credential, emits a fast identity-only state,
// then attempts the backend sync and emits the enriched state.
func (b *Bridge) completeSignIn(ctx context.Context, user *User, cred *Credential) (*AuthState, error) {
	if err := b.creds.StoreCredential(user, cred); err != nil {
		return nil, fmt.Errorf("storing credentials: %w", err)
	}

	state := AuthState{User: user}
	b.emit(state)

	if raw, profile, err := b.syncBackend(ctx, cred.IDToken, user.UID); err != nil {
		log.Printf("auth: backend sync for %s failed: %v", user.UID, err)
	} else {
		state.Raw = raw
		state.Profile = profile
		b.emit(state)
	}

	return &state, nil
}

// syncBackend verifies the token against the backend and fetches the profile.
func (b *Bridge) syncBackend(ctx context.Context, idToken, uid string) (json.RawMessage, *api.Profile, error) {
	if b.backend == nil {
		return nil, nil, nil
	}
	raw, err := b.backend.VerifyToken(ctx, idToken)
	if err != nil {
		return nil, nil, fmt.Errorf("verifying token: %w", err)
	}
	profile, err := b.backend.GetProfile(ctx, uid)
	if err != nil {
		// Verified but no profile; still a partial success.
		return raw, nil, fmt.Errorf("fetching profile: %w", err)
	}
	return raw, profile, nil
}

// SignOut clears the stored session and notifies listeners.
func (b *Bridge) SignOut() error {
	if err := b.creds.Clear(); err != nil {
		return err
	}
	b.emit(AuthState{})
	return nil
}

// CurrentUser returns the locally stored user, if any.
func (b *Bridge) CurrentUser() (*User, error) {
	creds, err := b.creds.Load()
	if err != nil {
		return nil, err
	}
	if creds.User == nil {
		return nil, ErrNotSignedIn
	}
	return creds.User, nil
}

// Token returns a valid ID token, serving the cached one while it is within
// its local expiry window and refreshing through the provider otherwise.
func (b *Bridge) Token(ctx context.Context) (string, error) {
	if token, ok := b.creds.ValidToken(); ok {
		return token, nil
	}

	creds, err := b.creds.Load()
	if err != nil {
		return "", err
	}
	if creds.RefreshToken == "" {
		return "", ErrNotSignedIn
	}

	cred, err := b.provider.RefreshIDToken(ctx, creds.RefreshToken)
	if err != nil {
		return "", fmt.Errorf("refreshing token: %w", err)
	}
	if err := b.creds.StoreCredential(creds.User, cred); err != nil {
		return "", fmt.Errorf("storing refreshed credentials: %w", err)
	}
	return cred.IDToken, nil
}

// ChangePassword rotates the password. While the rotation is in flight the
// auth-state stream suppresses backend calls, and a transient "no user" from
// the provider replays the last known state instead of propagating a
// sign-out.
func (b *Bridge) ChangePassword(ctx context.Context, newPassword string) error {
	token, err := b.Token(ctx)
	if err != nil {
		return err
	}

	b.setPasswordChanging(true)
	defer b.setPasswordChanging(false)

	cred, err := b.provider.UpdatePassword(ctx, token, newPassword)
	if err != nil {
		return err
	}

	creds, loadErr := b.creds.Load()
	if loadErr != nil {
		return fmt.Errorf("reloading credentials: %w", loadErr)
	}
	if err := b.creds.StoreCredential(creds.User, cred); err != nil {
		return fmt.Errorf("storing rotated credentials: %w", err)
	}
	return nil
}

// LinkPassword attaches an email/password credential to an SSO-only account.
func (b *Bridge) LinkPassword(ctx context.Context, password string) error {
	token, err := b.Token(ctx)
	if err != nil {
		return err
	}
	user, err := b.CurrentUser()
	if err != nil {
		return err
	}

	b.setPasswordChanging(true)
	defer b.setPasswordChanging(false)

	cred, err := b.provider.LinkPassword(ctx, token, user.Email, password)
	if err != nil {
		return err
	}
	if err := b.creds.StoreCredential(user, cred); err != nil {
		return fmt.Errorf("storing linked credentials: %w", err)
	}
	return nil
}

// DeleteAccount removes the provider account and clears the local session.
func (b *Bridge) DeleteAccount(ctx context.Context) error {
	token, err := b.Token(ctx)
	if err != nil {
		return err
	}
	if err := b.provider.DeleteAccount(ctx, token); err != nil {
		return err
	}
	return b.SignOut()
}

// HandleProviderState is the entry point for the provider's auth-state
// stream. It applies the password-change guard before notifying listeners.
func (b *Bridge) HandleProviderState(ctx context.Context, user *User) {
	b.mu.Lock()
	changing := b.passwordChanging
	last := b.lastState
	lastAt := b.lastStateAt
	b.mu.Unlock()

	if changing {
		if user == nil && last.User != nil && time.Since(lastAt) < stateReplayWindow {
			// Credential rotation briefly reports "no user"; replay the last
			// known identity instead of propagating a sign-out.
			b.emit(last)
			return
		}
		if user != nil {
			// Suppress backend calls entirely while the rotation is in flight.
			b.emit(AuthState{User: user, Profile: last.Profile, Raw: last.Raw})
		}
		return
	}

	if user == nil {
		b.emit(AuthState{})
		return
	}

	state := AuthState{User: user}
	token, err := b.Token(ctx)
	if err == nil {
		if raw, profile, syncErr := b.syncBackend(ctx, token, user.UID); syncErr != nil {
			log.Printf("auth: backend sync for %s failed: %v", user.UID, syncErr)
		} else {
			state.Raw = raw
			state.Profile = profile
		}
	}
	b.emit(state)
}

func (b *Bridge) setPasswordChanging(v bool) {
	b.mu.Lock()
	b.passwordChanging = v
	b.mu.Unlock()
}

// emit records the state and notifies listeners in registration order.
func (b *Bridge) emit(state AuthState) {
	b.mu.Lock()
	b.lastState = state
	b.lastStateAt = time.Now()
	listeners := make([]StateListener, len(b.listeners))
	copy(listeners, b.listeners)
	b.mu.Unlock()

	for _, fn := range listeners {
		fn(state)
	}
}
