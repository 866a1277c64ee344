package api

import "time"

// Profile is the backend-side user record, distinct from the identity
// provider's account.
type Profile struct {
	UID       string    `json:"uid"`
	Username  string    `json:"username"`
	PhotoURL  string    `json:"photoUrl,omitempty"`
	Birthdate string    `json:"birthdate,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// Scan is the result of one eye-image submission.
type Scan struct {
	ID               string             `json:"scanId"`
	PhotoURL         string             `json:"photoUrl"`
	CreatedAt        time.Time          `json:"createdAt"`
	IsAnemic         bool               `json:"isAnemic"`
	Confidence       float64            `json:"confidence"`
	ConfidenceDetail map[string]float64 `json:"confidenceDetail,omitempty"`
	Recommendations  []string           `json:"recommendations,omitempty"`
}

// Sender values for chat messages.
const (
	SenderUser   = "user"
	SenderAI     = "ai"
	SenderSystem = "system"
)

// ChatMessage is a single message within a chat session.
type ChatMessage struct {
	ID        string    `json:"messageId"`
	SessionID string    `json:"sessionId"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	PhotoURL  string    `json:"photoUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ChatSession groups ordered messages, optionally tied to a scan.
type ChatSession struct {
	SessionID string    `json:"sessionId"`
	UserID    string    `json:"userId"`
	ScanID    string    `json:"scanId,omitempty"`
	Title     string    `json:"title,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ChatStart is the response to starting a session from a scan: the session
// plus the opening message pair.
type ChatStart struct {
	Session        ChatSession `json:"session"`
	InitialMessage ChatMessage `json:"initialMessage"`
	AIResponse     ChatMessage `json:"aiResponse"`
}

// SendResult is the response to sending a message: the server-confirmed user
// message and the AI reply.
type SendResult struct {
	Message    ChatMessage `json:"message"`
	AIResponse ChatMessage `json:"aiResponse"`
}

// ProfileUpdate carries the mutable profile fields.
type ProfileUpdate struct {
	Username  string `json:"username,omitempty"`
	Birthdate string `json:"birthdate,omitempty"`
}
