package dashboard

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// chatRequest is the incoming WebSocket message format.
type chatRequest struct {
	Type      string `json:"type"`       // "start" or "message"
	ScanID    string `json:"scan_id"`    // for "start"
	SessionID string `json:"session_id"` // empty to reuse the active session
	Content   string `json:"content"`
}

// chatResponse is the outgoing WebSocket message format.
type chatResponse struct {
	Type      string `json:"type"` // "response" or "error"
	SessionID string `json:"session_id"`
	Sender    string `json:"sender,omitempty"`
	Content   string `json:"content"`
}

func (d *Dashboard) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("dashboard: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("dashboard: websocket read: %v", err)
			}
			return
		}

		var req chatRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			d.sendError(conn, "", "invalid message format")
			continue
		}

		switch req.Type {
		case "start":
			d.handleChatStart(conn, r, req)
		case "message":
			d.handleChatMessage(conn, r, req)
		default:
			d.sendError(conn, req.SessionID, "unknown message type: "+req.Type)
		}
	}
}

func (d *Dashboard) handleChatStart(conn *websocket.Conn, r *http.Request, req chatRequest) {
	if req.ScanID == "" {
		d.sendError(conn, "", "scan_id is required")
		return
	}
	user, err := d.bridge.CurrentUser()
	if err != nil {
		d.sendError(conn, "", "not signed in")
		return
	}

	session, err := d.chats.StartChatFromScan(r.Context(), req.ScanID, user.UID)
	if err != nil {
		d.sendError(conn, "", "starting chat: "+err.Error())
		return
	}

	for _, m := range d.chats.Messages() {
		d.sendResponse(conn, chatResponse{
			Type:      "response",
			SessionID: session.SessionID,
			Sender:    m.Sender,
			Content:   m.Text,
		})
	}
}

func (d *Dashboard) handleChatMessage(conn *websocket.Conn, r *http.Request, req chatRequest) {
	if req.Content == "" {
		d.sendError(conn, req.SessionID, "content is required")
		return
	}

	if req.SessionID != "" {
		current := d.chats.CurrentSession()
		if current == nil || current.SessionID != req.SessionID {
			if _, err := d.chats.OpenSession(r.Context(), req.SessionID); err != nil {
				d.sendError(conn, req.SessionID, "opening session: "+err.Error())
				return
			}
		}
	}

	result, err := d.chats.SendMessage(r.Context(), req.Content)
	if err != nil {
		d.sendError(conn, req.SessionID, "sending message: "+err.Error())
		return
	}

	d.sendResponse(conn, chatResponse{
		Type:      "response",
		SessionID: result.AIResponse.SessionID,
		Sender:    result.AIResponse.Sender,
		Content:   result.AIResponse.Text,
	})
}

func (d *Dashboard) sendResponse(conn *websocket.Conn, resp chatResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		log.Printf("dashboard: websocket write: %v", err)
	}
}

func (d *Dashboard) sendError(conn *websocket.Conn, sessionID, message string) {
	resp := chatResponse{
		Type:      "error",
		SessionID: sessionID,
		Content:   message,
	}
	if err := conn.WriteJSON(resp); err != nil {
		log.Printf("dashboard: websocket write error: %v", err)
	}
}
