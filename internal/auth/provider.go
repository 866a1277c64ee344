package auth

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotSignedIn indicates no stored session exists for the current user.
var ErrNotSignedIn = errors.New("not signed in")

// User is the normalized identity-provider account.
type User struct {
	UID           string   `json:"uid"`
	Email         string   `json:"email"`
	DisplayName   string   `json:"displayName,omitempty"`
	PhotoURL      string   `json:"photoUrl,omitempty"`
	Providers     []string `json:"providers,omitempty"`
	EmailVerified bool     `json:"emailVerified,omitempty"`
}

// Credential is the token material issued by an identity operation.
type Credential struct {
	IDToken      string
	RefreshToken string
	// ExpiresInSec is the provider-reported token lifetime. The bridge caches
	// tokens for a shorter fixed window regardless.
	ExpiresInSec int
}

// IdentityProvider abstracts the external identity service.
type IdentityProvider interface {
	SignInWithPassword(ctx context.Context, email, password string) (*User, *Credential, error)
	SignUp(ctx context.Context, email, password, displayName string) (*User, *Credential, error)
	// SignInWithGoogle exchanges a Google OAuth access token for a provider session.
	SignInWithGoogle(ctx context.Context, googleAccessToken string) (*User, *Credential, error)
	RefreshIDToken(ctx context.Context, refreshToken string) (*Credential, error)
	UpdatePassword(ctx context.Context, idToken, newPassword string) (*Credential, error)
	// LinkPassword attaches an email/password credential to an SSO-only account.
	LinkPassword(ctx context.Context, idToken, email, password string) (*Credential, error)
	DeleteAccount(ctx context.Context, idToken string) error
}

// ProviderError carries the identity provider's error code, used for
// specific user-facing messages.
type ProviderError struct {
	Code string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("identity provider error: %s", e.Code)
}

// userMessages maps provider error codes to human-readable messages.
var userMessages = map[string]string{
	"EMAIL_EXISTS":                   "email already in use",
	"EMAIL_NOT_FOUND":                "no account exists for this email",
	"INVALID_PASSWORD":               "incorrect password",
	"INVALID_LOGIN_CREDENTIALS":      "incorrect email or password",
	"USER_DISABLED":                  "this account has been disabled",
	"WEAK_PASSWORD":                  "password must be at least 6 characters",
	"TOO_MANY_ATTEMPTS_TRY_LATER":    "too many attempts, try again later",
	"TOKEN_EXPIRED":                  "session expired, sign in again",
	"INVALID_REFRESH_TOKEN":          "session expired, sign in again",
	"CREDENTIAL_TOO_OLD_LOGIN_AGAIN": "please sign in again before changing your password",
}

// UserMessage returns a human-readable message for the provider error code.
func (e *ProviderError) UserMessage() string {
	if msg, ok := userMessages[e.Code]; ok {
		return msg
	}
	return "authentication failed (" + e.Code + ")"
}
