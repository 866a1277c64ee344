package account

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/anevia/anevia/internal/api"
	"github.com/anevia/anevia/internal/auth"
	"github.com/anevia/anevia/internal/events"
)

var (
	// ErrProfileBusy is returned when a profile mutation starts while
	// another is still in flight.
	ErrProfileBusy = errors.New("profile update already in progress")
	// ErrInvalidBirthdate rejects birthdates not in YYYY-MM-DD form.
	ErrInvalidBirthdate = errors.New("birthdate must be YYYY-MM-DD")
	// ErrEmptyUsername rejects blank usernames.
	ErrEmptyUsername = errors.New("username must not be empty")
)

var photoExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// ProfileModel holds the backend profile and the account mutations. Identity
// operations go through the auth bridge, backend record operations through
// the API client.
type ProfileModel struct {
	client *api.Client
	bridge *auth.Bridge
	bus    *events.Bus

	mu      sync.Mutex
	busy    bool
	profile *api.Profile
	subs    []func(*api.Profile)
}

// NewProfileModel creates a profile model.
func NewProfileModel(client *api.Client, bridge *auth.Bridge, bus *events.Bus) *ProfileModel {
	return &ProfileModel{client: client, bridge: bridge, bus: bus}
}

// Subscribe registers an observer, notified synchronously after every
// profile change.
func (m *ProfileModel) Subscribe(fn func(*api.Profile)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, fn)
}

func (m *ProfileModel) setProfile(p *api.Profile) {
	m.mu.Lock()
	m.profile = p
	subs := make([]func(*api.Profile), len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()

	for _, fn := range subs {
		fn(p)
	}
}

func (m *ProfileModel) acquire() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.busy {
		return ErrProfileBusy
	}
	m.busy = true
	return nil
}

func (m *ProfileModel) release() {
	m.mu.Lock()
	m.busy = false
	m.mu.Unlock()
}

// Current returns the last loaded profile, nil before the first load.
func (m *ProfileModel) Current() *api.Profile {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.profile
}

// Load fetches the signed-in user's backend profile.
func (m *ProfileModel) Load(ctx context.Context) (*api.Profile, error) {
	user, err := m.bridge.CurrentUser()
	if err != nil {
		return nil, err
	}
	profile, err := m.client.GetProfile(ctx, user.UID)
	if err != nil {
		return nil, err
	}
	m.setProfile(profile)
	return profile, nil
}

// ValidateUpdate checks an update's fields before any network call.
func ValidateUpdate(update api.ProfileUpdate) error {
	if update.Username != "" && strings.TrimSpace(update.Username) == "" {
		return ErrEmptyUsername
	}
	if update.Birthdate != "" {
		if _, err := time.Parse("2006-01-02", update.Birthdate); err != nil {
			return ErrInvalidBirthdate
		}
	}
	return nil
}

// Update writes the mutable profile fields and announces the change on the
// event bus so other pages refresh their copy.
func (m *ProfileModel) Update(ctx context.Context, update api.ProfileUpdate) (*api.Profile, error) {
	if err := ValidateUpdate(update); err != nil {
		return nil, err
	}
	user, err := m.bridge.CurrentUser()
	if err != nil {
		return nil, err
	}
	if err := m.acquire(); err != nil {
		return nil, err
	}
	defer m.release()

	profile, err := m.client.UpdateProfile(ctx, user.UID, update)
	if err != nil {
		return nil, err
	}
	m.setProfile(profile)
	m.bus.Publish(events.ProfileUpdated, events.Payload{UserID: user.UID})
	return profile, nil
}

// UploadImage replaces the profile photo with the image at path.
func (m *ProfileModel) UploadImage(ctx context.Context, path string) (*api.Profile, error) {
	if !photoExtensions[strings.ToLower(filepath.Ext(path))] {
		return nil, fmt.Errorf("unsupported photo type %q: must be JPEG, PNG, or WebP", filepath.Ext(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading photo: %w", err)
	}
	user, err := m.bridge.CurrentUser()
	if err != nil {
		return nil, err
	}
	if err := m.acquire(); err != nil {
		return nil, err
	}
	defer m.release()

	profile, err := m.client.UploadProfileImage(ctx, user.UID, filepath.Base(path), data)
	if err != nil {
		return nil, err
	}
	m.setProfile(profile)
	m.bus.Publish(events.ProfileUpdated, events.Payload{UserID: user.UID})
	return profile, nil
}

// ChangePassword rotates the password through the identity provider.
func (m *ProfileModel) ChangePassword(ctx context.Context, newPassword string) error {
	return m.bridge.ChangePassword(ctx, newPassword)
}

// LinkPassword attaches an email/password credential to an SSO-only account
// and records the link on the backend.
func (m *ProfileModel) LinkPassword(ctx context.Context, password string) error {
	if err := m.bridge.LinkPassword(ctx, password); err != nil {
		return err
	}
	user, err := m.bridge.CurrentUser()
	if err != nil {
		return err
	}
	if err := m.client.LinkPassword(ctx, user.UID); err != nil {
		return fmt.Errorf("recording password link: %w", err)
	}
	return nil
}

// ResetPassword asks the backend to send a password-reset email.
func (m *ProfileModel) ResetPassword(ctx context.Context, email string) error {
	return m.client.ResetPassword(ctx, email)
}

// Delete removes the backend record first, then the provider account. The
// provider deletion also clears the local session.
func (m *ProfileModel) Delete(ctx context.Context) error {
	user, err := m.bridge.CurrentUser()
	if err != nil {
		return err
	}
	if err := m.client.DeleteAccount(ctx, user.UID); err != nil {
		return fmt.Errorf("deleting backend account: %w", err)
	}
	if err := m.bridge.DeleteAccount(ctx); err != nil {
		return fmt.Errorf("deleting provider account: %w", err)
	}
	m.setProfile(nil)
	return nil
}
