package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// tokenTTL is the local fast-path lifetime of a cached ID token. It is
// deliberately shorter than the provider's own token lifetime so a token read
// from the store never arrives at the backend already expired.
const tokenTTL = 55 * time.Minute

// Credentials is the locally persisted session state.
type Credentials struct {
	IDToken      string    `json:"firebaseToken,omitempty"`
	TokenExpiry  time.Time `json:"firebaseTokenExpiry,omitempty"`
	RefreshToken string    `json:"refreshToken,omitempty"`
	User         *User     `json:"user,omitempty"`
}

// CredentialStore reads and writes the credentials file.
type CredentialStore struct {
	path string
}

// NewCredentialStore creates a store at the given file path
// (conventionally ~/.anevia/credentials.json).
func NewCredentialStore(path string) *CredentialStore {
	return &CredentialStore{path: path}
}

// Load reads stored credentials. Returns empty credentials if the file
// doesn't exist.
func (s *CredentialStore) Load() (*Credentials, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Credentials{}, nil
		}
		return nil, fmt.Errorf("reading credentials: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("parsing credentials: %w", err)
	}
	return &creds, nil
}

// Save writes credentials with restricted permissions.
func (s *CredentialStore) Save(creds *Credentials) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating credentials directory: %w", err)
	}

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling credentials: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}
	return nil
}

// Clear removes the credentials file.
func (s *CredentialStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing credentials: %w", err)
	}
	return nil
}

// StoreCredential persists the given token material alongside the user,
// stamping the local expiry window.
func (s *CredentialStore) StoreCredential(user *User, cred *Credential) error {
	creds, err := s.Load()
	if err != nil {
		creds = &Credentials{}
	}
	creds.IDToken = cred.IDToken
	creds.TokenExpiry = time.Now().Add(tokenTTL)
	if cred.RefreshToken != "" {
		creds.RefreshToken = cred.RefreshToken
	}
	if user != nil {
		creds.User = user
	}
	return s.Save(creds)
}

// ValidToken returns the cached ID token if it is still within its local
// expiry window.
func (s *CredentialStore) ValidToken() (string, bool) {
	creds, err := s.Load()
	if err != nil || creds.IDToken == "" {
		return "", false
	}
	if time.Now().After(creds.TokenExpiry) {
		return "", false
	}
	return creds.IDToken, true
}
