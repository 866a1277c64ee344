package chat

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/anevia/anevia/internal/api"
	"github.com/anevia/anevia/internal/db"
	"github.com/anevia/anevia/internal/offline"
)

func newTestModel(t *testing.T, handler http.Handler) *Model {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	cache := offline.New(offline.NewStore(database), offline.NewMonitor(true))
	return NewModel(api.NewClient(srv.URL, cache))
}

const startResponse = `{"status":"success","data":{
	"session":{"sessionId":"sess1","scanId":"s1"},
	"initialMessage":{"messageId":"m1","sessionId":"sess1","sender":"user","text":"here is my scan"},
	"aiResponse":{"messageId":"m2","sessionId":"sess1","sender":"ai","text":"your scan shows..."}}}`

func TestStartChatFromScanSeedsOpeningPair(t *testing.T) {
	model := newTestModel(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/chats" {
			t.Errorf("request: got %s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(startResponse))
	}))

	var events []Event
	model.Subscribe(func(e Event) { events = append(events, e) })

	session, err := model.StartChatFromScan(t.Context(), "s1", "u1")
	if err != nil {
		t.Fatalf("StartChatFromScan: %v", err)
	}
	if session.SessionID != "sess1" {
		t.Errorf("session: got %+v", session)
	}

	messages := model.Messages()
	if len(messages) != 2 {
		t.Fatalf("expected exactly the opening pair, got %d messages", len(messages))
	}
	if messages[0].ID != "m1" || messages[1].ID != "m2" {
		t.Errorf("opening pair: got %s, %s", messages[0].ID, messages[1].ID)
	}

	if len(events) != 1 || events[0].Session == nil || events[0].Session.SessionID != "sess1" {
		t.Errorf("expected 1 notification with the session, got %+v", events)
	}
}

func TestSendMessageConfirmsOptimisticMessage(t *testing.T) {
	model := newTestModel(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/chats" {
			w.Write([]byte(startResponse))
			return
		}
		w.Write([]byte(`{"status":"success","data":{
			"message":{"messageId":"m3","sessionId":"sess1","sender":"user","text":"what should I eat?"},
			"aiResponse":{"messageId":"m4","sessionId":"sess1","sender":"ai","text":"iron-rich foods"}}}`))
	}))

	if _, err := model.StartChatFromScan(t.Context(), "s1", "u1"); err != nil {
		t.Fatalf("StartChatFromScan: %v", err)
	}

	var events []Event
	model.Subscribe(func(e Event) { events = append(events, e) })

	result, err := model.SendMessage(t.Context(), "what should I eat?")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if result.Message.ID != "m3" || result.AIResponse.ID != "m4" {
		t.Errorf("result: got %+v", result)
	}

	// First notification stages the local message, second confirms it.
	if len(events) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(events))
	}
	staged := events[0].Messages
	if len(staged) != 3 {
		t.Fatalf("staged: expected 3 messages, got %d", len(staged))
	}
	if !strings.HasPrefix(staged[2].ID, "local-") || staged[2].Sender != api.SenderUser {
		t.Errorf("staged message: got %+v", staged[2])
	}

	final := model.Messages()
	if len(final) != 4 {
		t.Fatalf("final: expected 4 messages, got %d", len(final))
	}
	if final[2].ID != "m3" {
		t.Errorf("optimistic message must be replaced in place, got %q at index 2", final[2].ID)
	}
	if final[3].ID != "m4" || final[3].Sender != api.SenderAI {
		t.Errorf("expected exactly one AI reply appended, got %+v", final[3])
	}
	for _, msg := range final {
		if strings.HasPrefix(msg.ID, "local-") {
			t.Errorf("no local message may survive confirmation: %+v", msg)
		}
	}
}

func TestSendMessageRevertsOnFailure(t *testing.T) {
	model := newTestModel(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/chats" {
			w.Write([]byte(startResponse))
			return
		}
		http.Error(w, `{"status":"error","message":"model unavailable"}`, http.StatusBadGateway)
	}))

	if _, err := model.StartChatFromScan(t.Context(), "s1", "u1"); err != nil {
		t.Fatalf("StartChatFromScan: %v", err)
	}
	before := len(model.Messages())

	_, err := model.SendMessage(t.Context(), "hello?")
	if err == nil {
		t.Fatal("expected send failure")
	}

	after := model.Messages()
	if len(after) != before {
		t.Fatalf("failed send must restore the message list, got %d want %d", len(after), before)
	}
	for _, msg := range after {
		if strings.HasPrefix(msg.ID, "local-") {
			t.Errorf("no local message may survive a revert: %+v", msg)
		}
	}
}

func TestSendMessageWithoutSession(t *testing.T) {
	model := newTestModel(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no network call expected")
	}))

	if _, err := model.SendMessage(t.Context(), "hi"); !errors.Is(err, ErrNoActiveSession) {
		t.Errorf("expected ErrNoActiveSession, got %v", err)
	}
}

func TestSendMessageBusyGuard(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	model := newTestModel(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/chats" {
			w.Write([]byte(startResponse))
			return
		}
		close(entered)
		<-release
		w.Write([]byte(`{"status":"success","data":{
			"message":{"messageId":"m3","sender":"user","text":"a"},
			"aiResponse":{"messageId":"m4","sender":"ai","text":"b"}}}`))
	}))

	if _, err := model.StartChatFromScan(t.Context(), "s1", "u1"); err != nil {
		t.Fatalf("StartChatFromScan: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := model.SendMessage(t.Context(), "first")
		done <- err
	}()

	<-entered
	if _, err := model.SendMessage(t.Context(), "second"); !errors.Is(err, ErrSendInProgress) {
		t.Errorf("expected ErrSendInProgress, got %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first send: %v", err)
	}
}

func TestLoadSessionsAndOpenSession(t *testing.T) {
	model := newTestModel(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/chats":
			w.Write([]byte(`{"status":"success","data":[
				{"sessionId":"sess1","title":"scan follow-up"},
				{"sessionId":"sess2","title":"general"}]}`))
		case r.URL.Path == "/api/chats/sess2/messages":
			w.Write([]byte(`{"status":"success","data":[
				{"messageId":"m1","sender":"user","text":"hi"},
				{"messageId":"m2","sender":"ai","text":"hello"}]}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))

	sessions, err := model.LoadSessions(t.Context(), "u1")
	if err != nil {
		t.Fatalf("LoadSessions: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}

	messages, err := model.OpenSession(t.Context(), "sess2")
	if err != nil {
		t.Fatalf("OpenSession: %v", err)
	}
	if len(messages) != 2 || messages[0].ID != "m1" {
		t.Errorf("messages: got %+v", messages)
	}

	current := model.CurrentSession()
	if current == nil || current.SessionID != "sess2" || current.Title != "general" {
		t.Errorf("current session must come from the loaded list, got %+v", current)
	}
}
