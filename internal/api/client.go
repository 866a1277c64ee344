package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/anevia/anevia/internal/offline"
)

// TokenSource supplies the bearer token attached to authenticated requests.
// The auth bridge implements it.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client calls the Anevia REST API. All traffic is routed through the offline
// cache, which handles response caching and offline queueing.
type Client struct {
	baseURL string
	http    *offline.Cache
	tokens  TokenSource
}

// NewClient creates a client for the given API base URL.
func NewClient(baseURL string, cache *offline.Cache) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    cache,
	}
}

// SetTokenSource wires the token source. Requests made without one are sent
// unauthenticated.
func (c *Client) SetTokenSource(ts TokenSource) {
	c.tokens = ts
}

// envelope is the API's standard response wrapper.
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// APIError is a request the backend understood but rejected.
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: %s", e.Message)
}

// do performs one API call and decodes the enveloped payload into out.
func (c *Client) do(ctx context.Context, method, path string, body []byte, contentType, cacheKey string, out any) error {
	headers := map[string]string{}
	if contentType != "" {
		headers["Content-Type"] = contentType
	}
	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err == nil && token != "" {
			headers["Authorization"] = "Bearer " + token
		}
	}

	payload, err := c.http.Do(ctx, offline.Request{
		Method:   method,
		URL:      c.baseURL + path,
		Headers:  headers,
		Body:     body,
		CacheKey: cacheKey,
	})
	if err != nil {
		return err
	}

	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return fmt.Errorf("unmarshalling response envelope: %w", err)
	}
	if env.Status != "" && env.Status != "success" {
		return &APIError{Message: env.Message}
	}

	if out == nil {
		return nil
	}
	data := env.Data
	if data == nil {
		// Some endpoints return the payload unwrapped.
		data = payload
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("unmarshalling response data: %w", err)
	}
	return nil
}

// doJSON marshals body as JSON and performs the call.
func (c *Client) doJSON(ctx context.Context, method, path string, body any, cacheKey string, out any) error {
	var raw []byte
	contentType := ""
	if body != nil {
		var err error
		raw, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshalling request: %w", err)
		}
		contentType = "application/json"
	}
	return c.do(ctx, method, path, raw, contentType, cacheKey, out)
}

// doMultipart uploads a single file field plus optional form values.
func (c *Client) doMultipart(ctx context.Context, method, path, field, filename string, data []byte, values map[string]string, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile(field, filename)
	if err != nil {
		return fmt.Errorf("creating multipart field: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("writing multipart data: %w", err)
	}
	for k, v := range values {
		if err := w.WriteField(k, v); err != nil {
			return fmt.Errorf("writing multipart value %s: %w", k, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing multipart writer: %w", err)
	}

	return c.do(ctx, method, path, buf.Bytes(), w.FormDataContentType(), "", out)
}

// VerifyToken exchanges/verifies an identity token against the backend and
// returns the raw response for the auth bridge.
func (c *Client) VerifyToken(ctx context.Context, idToken string) (json.RawMessage, error) {
	body, err := json.Marshal(map[string]string{"token": idToken})
	if err != nil {
		return nil, fmt.Errorf("marshalling verify request: %w", err)
	}
	return c.http.Do(ctx, offline.Request{
		Method:  http.MethodPost,
		URL:     c.baseURL + "/api/auth/verify",
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    body,
	})
}

// UploadScan submits an eye image for anemia detection.
func (c *Client) UploadScan(ctx context.Context, filename string, image []byte) (*Scan, error) {
	var scan Scan
	if err := c.doMultipart(ctx, http.MethodPost, "/api/scans", "image", filename, image, nil, &scan); err != nil {
		return nil, err
	}
	return &scan, nil
}

// ListScans returns the scan history for a user, newest first.
func (c *Client) ListScans(ctx context.Context, userID string) ([]Scan, error) {
	var scans []Scan
	path := "/api/scans?userId=" + url.QueryEscape(userID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, "scans:"+userID, &scans); err != nil {
		return nil, err
	}
	return scans, nil
}

// GetScan returns a single scan by ID.
func (c *Client) GetScan(ctx context.Context, scanID string) (*Scan, error) {
	var scan Scan
	if err := c.doJSON(ctx, http.MethodGet, "/api/scans/"+url.PathEscape(scanID), nil, "scan:"+scanID, &scan); err != nil {
		return nil, err
	}
	return &scan, nil
}

// StartChatFromScan opens a chat session seeded from a scan result.
func (c *Client) StartChatFromScan(ctx context.Context, scanID, userID string) (*ChatStart, error) {
	var start ChatStart
	body := map[string]string{"scanId": scanID, "userId": userID}
	if err := c.doJSON(ctx, http.MethodPost, "/api/chats", body, "", &start); err != nil {
		return nil, err
	}
	return &start, nil
}

// ListChatSessions returns all chat sessions for a user.
func (c *Client) ListChatSessions(ctx context.Context, userID string) ([]ChatSession, error) {
	var sessions []ChatSession
	path := "/api/chats?userId=" + url.QueryEscape(userID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, "chats:"+userID, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// GetChatMessages returns the ordered messages of a session.
func (c *Client) GetChatMessages(ctx context.Context, sessionID string) ([]ChatMessage, error) {
	var messages []ChatMessage
	path := "/api/chats/" + url.PathEscape(sessionID) + "/messages"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, "chat-messages:"+sessionID, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// SendChatMessage sends a user message and returns the confirmed message plus
// the AI reply.
func (c *Client) SendChatMessage(ctx context.Context, sessionID, text string) (*SendResult, error) {
	var result SendResult
	path := "/api/chats/" + url.PathEscape(sessionID) + "/messages"
	if err := c.doJSON(ctx, http.MethodPost, path, map[string]string{"text": text}, "", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetProfile returns the backend profile for a user.
func (c *Client) GetProfile(ctx context.Context, uid string) (*Profile, error) {
	var profile Profile
	if err := c.doJSON(ctx, http.MethodGet, "/api/users/"+url.PathEscape(uid), nil, "profile:"+uid, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateProfile updates the mutable profile fields.
func (c *Client) UpdateProfile(ctx context.Context, uid string, update ProfileUpdate) (*Profile, error) {
	var profile Profile
	if err := c.doJSON(ctx, http.MethodPut, "/api/users/"+url.PathEscape(uid), update, "", &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// UploadProfileImage replaces the profile photo.
func (c *Client) UploadProfileImage(ctx context.Context, uid, filename string, image []byte) (*Profile, error) {
	var profile Profile
	path := "/api/users/" + url.PathEscape(uid) + "/photo"
	if err := c.doMultipart(ctx, http.MethodPost, path, "photo", filename, image, nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// ResetPassword asks the backend to send a password-reset email.
func (c *Client) ResetPassword(ctx context.Context, email string) error {
	return c.doJSON(ctx, http.MethodPost, "/api/users/reset-password", map[string]string{"email": email}, "", nil)
}

// LinkPassword records on the backend that a password credential was linked.
func (c *Client) LinkPassword(ctx context.Context, uid string) error {
	path := "/api/users/" + url.PathEscape(uid) + "/link-password"
	return c.doJSON(ctx, http.MethodPost, path, nil, "", nil)
}

// DeleteAccount removes the backend-side user record.
func (c *Client) DeleteAccount(ctx context.Context, uid string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/users/"+url.PathEscape(uid), nil, "", nil)
}
