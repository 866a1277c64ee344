package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultIdentityBaseURL = "https://identitytoolkit.googleapis.com"
	defaultTokenBaseURL    = "https://securetoken.googleapis.com"
)

// FirebaseProvider implements IdentityProvider using direct HTTP calls to the
// Firebase Identity Toolkit and Secure Token REST endpoints.
type FirebaseProvider struct {
	apiKey       string
	identityBase string
	tokenBase    string
	client       *http.Client
}

// NewFirebaseProvider creates a provider for the given web API key.
// identityBase and tokenBase override the Google endpoints (tests, emulator);
// empty strings select the defaults.
func NewFirebaseProvider(apiKey, identityBase, tokenBase string) *FirebaseProvider {
	if identityBase == "" {
		identityBase = defaultIdentityBaseURL
	}
	if tokenBase == "" {
		tokenBase = defaultTokenBaseURL
	}
	return &FirebaseProvider{
		apiKey:       apiKey,
		identityBase: identityBase,
		tokenBase:    tokenBase,
		client:       &http.Client{Timeout: 30 * time.Second},
	}
}

type firebaseAuthResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	PhotoURL     string `json:"photoUrl"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
	Registered   bool   `json:"registered"`
	ProviderID   string `json:"providerId"`
}

func (r *firebaseAuthResponse) user(providers ...string) *User {
	return &User{
		UID:         r.LocalID,
		Email:       r.Email,
		DisplayName: r.DisplayName,
		PhotoURL:    r.PhotoURL,
		Providers:   providers,
	}
}

func (r *firebaseAuthResponse) credential() *Credential {
	expires, _ := strconv.Atoi(r.ExpiresIn)
	return &Credential{
		IDToken:      r.IDToken,
		RefreshToken: r.RefreshToken,
		ExpiresInSec: expires,
	}
}

func (p *FirebaseProvider) SignInWithPassword(ctx context.Context, email, password string) (*User, *Credential, error) {
	var resp firebaseAuthResponse
	err := p.post(ctx, "accounts:signInWithPassword", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return nil, nil, err
	}
	return resp.user("password"), resp.credential(), nil
}

func (p *FirebaseProvider) SignUp(ctx context.Context, email, password, displayName string) (*User, *Credential, error) {
	var resp firebaseAuthResponse
	err := p.post(ctx, "accounts:signUp", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return nil, nil, err
	}

	// The sign-up endpoint ignores profile fields; set the display name in a
	// follow-up update call. A failure here is not fatal to registration.
	if displayName != "" {
		var updResp firebaseAuthResponse
		if updErr := p.post(ctx, "accounts:update", map[string]any{
			"idToken":           resp.IDToken,
			"displayName":       displayName,
			"returnSecureToken": false,
		}, &updResp); updErr == nil {
			resp.DisplayName = updResp.DisplayName
		}
	}

	return resp.user("password"), resp.credential(), nil
}

func (p *FirebaseProvider) SignInWithGoogle(ctx context.Context, googleAccessToken string) (*User, *Credential, error) {
	var resp firebaseAuthResponse
	err := p.post(ctx, "accounts:signInWithIdp", map[string]any{
		"postBody":            "access_token=" + url.QueryEscape(googleAccessToken) + "&providerId=google.com",
		"requestUri":          "http://localhost",
		"returnSecureToken":   true,
		"returnIdpCredential": true,
	}, &resp)
	if err != nil {
		return nil, nil, err
	}
	return resp.user("google.com"), resp.credential(), nil
}

func (p *FirebaseProvider) RefreshIDToken(ctx context.Context, refreshToken string) (*Credential, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	endpoint := fmt.Sprintf("%s/v1/token?key=%s", p.tokenBase, url.QueryEscape(p.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	httpResp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token refresh failed: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading token response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, providerError(body, httpResp.StatusCode)
	}

	var resp struct {
		IDToken      string `json:"id_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    string `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshalling token response: %w", err)
	}
	expires, _ := strconv.Atoi(resp.ExpiresIn)
	return &Credential{
		IDToken:      resp.IDToken,
		RefreshToken: resp.RefreshToken,
		ExpiresInSec: expires,
	}, nil
}

func (p *FirebaseProvider) UpdatePassword(ctx context.Context, idToken, newPassword string) (*Credential, error) {
	var resp firebaseAuthResponse
	err := p.post(ctx, "accounts:update", map[string]any{
		"idToken":           idToken,
		"password":          newPassword,
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.credential(), nil
}

func (p *FirebaseProvider) LinkPassword(ctx context.Context, idToken, email, password string) (*Credential, error) {
	var resp firebaseAuthResponse
	err := p.post(ctx, "accounts:update", map[string]any{
		"idToken":           idToken,
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.credential(), nil
}

func (p *FirebaseProvider) DeleteAccount(ctx context.Context, idToken string) error {
	return p.post(ctx, "accounts:delete", map[string]any{"idToken": idToken}, &struct{}{})
}

// post sends a JSON request to an Identity Toolkit endpoint and decodes the
// response into out.
func (p *FirebaseProvider) post(ctx context.Context, action string, payload map[string]any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshalling %s request: %w", action, err)
	}

	endpoint := fmt.Sprintf("%s/v1/%s?key=%s", p.identityBase, action, url.QueryEscape(p.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating %s request: %w", action, err)
	}
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", action, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("reading %s response: %w", action, err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return providerError(respBody, httpResp.StatusCode)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshalling %s response: %w", action, err)
	}
	return nil
}

// providerError extracts the Identity Toolkit error code from an error body.
func providerError(body []byte, status int) error {
	var parsed struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		// Codes sometimes carry a trailing detail, e.g.
		// "WEAK_PASSWORD : Password should be at least 6 characters".
		code := parsed.Error.Message
		if idx := strings.IndexAny(code, " :"); idx > 0 {
			code = code[:idx]
		}
		return &ProviderError{Code: code}
	}
	return fmt.Errorf("identity provider returned status %d: %s", status, string(body))
}
