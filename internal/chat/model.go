package chat

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/anevia/anevia/internal/api"
)

var (
	// ErrSendInProgress is returned when a send starts while another is
	// still in flight on the same model.
	ErrSendInProgress = errors.New("message send already in progress")
	// ErrStartInProgress is the same guard for session starts.
	ErrStartInProgress = errors.New("chat session start already in progress")
	// ErrNoActiveSession is returned when sending without an open session.
	ErrNoActiveSession = errors.New("no active chat session")
)

// Event is the model's typed change notification.
type Event struct {
	Session  *api.ChatSession
	Messages []api.ChatMessage
	Sessions []api.ChatSession
}

// Model holds one chat session's state plus the session list. Sends are an
// explicit two-phase commit over the local message list: stage the user's
// message, then confirm (replace 1:1 with the server message and append the
// AI reply) or revert (remove it).
type Model struct {
	client *api.Client

	mu              sync.Mutex
	sending         bool
	starting        bool
	loadingSessions bool
	session         *api.ChatSession
	messages        []api.ChatMessage
	sessions        []api.ChatSession
	subs            []func(Event)
}

// NewModel creates a chat model over the API client.
func NewModel(client *api.Client) *Model {
	return &Model{client: client}
}

// Subscribe registers an observer, notified synchronously in registration
// order after every state mutation.
func (m *Model) Subscribe(fn func(Event)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, fn)
}

func (m *Model) notify() {
	m.mu.Lock()
	event := Event{
		Session:  m.session,
		Messages: append([]api.ChatMessage(nil), m.messages...),
		Sessions: append([]api.ChatSession(nil), m.sessions...),
	}
	subs := make([]func(Event), len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()

	for _, fn := range subs {
		fn(event)
	}
}

// StartChatFromScan opens a session seeded from a scan result. The resulting
// message list is exactly the opening pair from the server.
func (m *Model) StartChatFromScan(ctx context.Context, scanID, userID string) (*api.ChatSession, error) {
	m.mu.Lock()
	if m.starting {
		m.mu.Unlock()
		return nil, ErrStartInProgress
	}
	m.starting = true
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		m.starting = false
		m.mu.Unlock()
	}()

	start, err := m.client.StartChatFromScan(ctx, scanID, userID)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	session := start.Session
	m.session = &session
	m.messages = []api.ChatMessage{start.InitialMessage, start.AIResponse}
	m.mu.Unlock()
	m.notify()

	return &session, nil
}

// LoadSessions fetches the user's chat sessions.
func (m *Model) LoadSessions(ctx context.Context, userID string) ([]api.ChatSession, error) {
	m.mu.Lock()
	if m.loadingSessions {
		m.mu.Unlock()
		return nil, ErrStartInProgress
	}
	m.loadingSessions = true
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		m.loadingSessions = false
		m.mu.Unlock()
	}()

	sessions, err := m.client.ListChatSessions(ctx, userID)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sessions = sessions
	m.mu.Unlock()
	m.notify()

	return sessions, nil
}

// OpenSession switches to an existing session and loads its messages.
func (m *Model) OpenSession(ctx context.Context, sessionID string) ([]api.ChatMessage, error) {
	messages, err := m.client.GetChatMessages(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	session := &api.ChatSession{SessionID: sessionID}
	for i := range m.sessions {
		if m.sessions[i].SessionID == sessionID {
			session = &m.sessions[i]
			break
		}
	}
	m.session = session
	m.messages = messages
	m.mu.Unlock()
	m.notify()

	return messages, nil
}

// SendMessage sends text to the active session. The user's message appears
// locally before the network call resolves; on success it is replaced in
// place by the server-confirmed message and exactly one AI reply is appended;
// on failure it is removed entirely and the error surfaces.
func (m *Model) SendMessage(ctx context.Context, text string) (*api.SendResult, error) {
	m.mu.Lock()
	if m.sending {
		m.mu.Unlock()
		return nil, ErrSendInProgress
	}
	if m.session == nil {
		m.mu.Unlock()
		return nil, ErrNoActiveSession
	}
	m.sending = true
	sessionID := m.session.SessionID

	// Stage.
	optimistic := api.ChatMessage{
		ID:        "local-" + uuid.New().String(),
		SessionID: sessionID,
		Sender:    api.SenderUser,
		Text:      text,
		CreatedAt: time.Now(),
	}
	m.messages = append(m.messages, optimistic)
	m.mu.Unlock()
	m.notify()

	defer func() {
		m.mu.Lock()
		m.sending = false
		m.mu.Unlock()
	}()

	result, err := m.client.SendChatMessage(ctx, sessionID, text)

	m.mu.Lock()
	idx := -1
	for i := range m.messages {
		if m.messages[i].ID == optimistic.ID {
			idx = i
			break
		}
	}

	if err != nil {
		// Revert.
		if idx >= 0 {
			m.messages = append(m.messages[:idx], m.messages[idx+1:]...)
		}
		m.mu.Unlock()
		m.notify()
		return nil, err
	}

	// Confirm.
	if idx >= 0 {
		m.messages[idx] = result.Message
	} else {
		m.messages = append(m.messages, result.Message)
	}
	m.messages = append(m.messages, result.AIResponse)
	m.mu.Unlock()
	m.notify()

	return result, nil
}

// CurrentSession returns the active session, nil when none is open.
func (m *Model) CurrentSession() *api.ChatSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

// Messages returns a copy of the active session's message list.
func (m *Model) Messages() []api.ChatMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]api.ChatMessage(nil), m.messages...)
}

// Sessions returns a copy of the loaded session list.
func (m *Model) Sessions() []api.ChatSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]api.ChatSession(nil), m.sessions...)
}
