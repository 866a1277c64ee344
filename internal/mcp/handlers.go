package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/anevia/anevia/internal/api"
)

// handleListScans returns the scan history for the signed-in user.
func (s *Server) handleListScans(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	user, err := s.bridge.CurrentUser()
	if err != nil {
		return mcp.NewToolResultError("not signed in. Run `anevia login` first."), nil
	}

	limit := request.GetInt("limit", 10)
	if limit <= 0 {
		limit = 10
	}

	scans, err := s.scans.LoadHistory(ctx, user.UID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading history failed: %v", err)), nil
	}
	if len(scans) == 0 {
		return mcp.NewToolResultText("No scans yet. Run `anevia scan <image>` to create one."), nil
	}
	if len(scans) > limit {
		scans = scans[:limit]
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d scan(s):\n", len(scans)))
	for _, sc := range scans {
		sb.WriteString(fmt.Sprintf("\n- %s (%s): %s, %.1f%% confidence\n",
			sc.ID, sc.CreatedAt.Format("2006-01-02 15:04"), verdict(&sc), sc.Confidence))
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// handleGetScan returns one scan's full result.
func (s *Server) handleGetScan(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	scanID, err := request.RequireString("scan_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: scan_id"), nil
	}

	sc, err := s.scans.GetScan(ctx, scanID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("fetching scan failed: %v", err)), nil
	}

	return mcp.NewToolResultText(formatScan(sc)), nil
}

// handleGetRecommendations returns only the recommendations of a scan.
func (s *Server) handleGetRecommendations(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	scanID, err := request.RequireString("scan_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: scan_id"), nil
	}

	sc, err := s.scans.GetScan(ctx, scanID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("fetching scan failed: %v", err)), nil
	}
	if len(sc.Recommendations) == 0 {
		return mcp.NewToolResultText("No recommendations attached to this scan."), nil
	}

	var sb strings.Builder
	for _, rec := range sc.Recommendations {
		sb.WriteString("- ")
		sb.WriteString(rec)
		sb.WriteString("\n")
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// handleStartChat opens a chat session from a scan and returns the opening
// exchange.
func (s *Server) handleStartChat(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	scanID, err := request.RequireString("scan_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: scan_id"), nil
	}
	user, err := s.bridge.CurrentUser()
	if err != nil {
		return mcp.NewToolResultError("not signed in. Run `anevia login` first."), nil
	}

	session, err := s.chats.StartChatFromScan(ctx, scanID, user.UID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("starting chat failed: %v", err)), nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Session %s opened.\n", session.SessionID))
	for _, m := range s.chats.Messages() {
		sb.WriteString(fmt.Sprintf("\n[%s] %s\n", m.Sender, m.Text))
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// handleSendChatMessage sends one message and returns the AI reply.
func (s *Server) handleSendChatMessage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: session_id"), nil
	}
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: text"), nil
	}

	current := s.chats.CurrentSession()
	if current == nil || current.SessionID != sessionID {
		if _, err := s.chats.OpenSession(ctx, sessionID); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("opening session failed: %v", err)), nil
		}
	}

	result, err := s.chats.SendMessage(ctx, text)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("sending message failed: %v", err)), nil
	}

	return mcp.NewToolResultText(result.AIResponse.Text), nil
}

func verdict(s *api.Scan) string {
	if s.IsAnemic {
		return "anemia detected"
	}
	return "no anemia detected"
}

// formatScan converts a scan into text optimized for AI agent consumption.
func formatScan(s *api.Scan) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Scan %s (%s)\n", s.ID, s.CreatedAt.Format("2006-01-02 15:04")))
	sb.WriteString(fmt.Sprintf("Verdict: %s\n", verdict(s)))
	sb.WriteString(fmt.Sprintf("Confidence: %.1f%%\n", s.Confidence))
	for k, v := range s.ConfidenceDetail {
		sb.WriteString(fmt.Sprintf("  %s: %.1f%%\n", k, v))
	}
	if len(s.Recommendations) > 0 {
		sb.WriteString("Recommendations:\n")
		for _, rec := range s.Recommendations {
			sb.WriteString(fmt.Sprintf("  - %s\n", rec))
		}
	}
	return sb.String()
}
