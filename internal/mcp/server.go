// Package mcp exposes the signed-in account's scans and chats as Model
// Context Protocol tools, so AI agents can read results and drive the
// follow-up chat.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/anevia/anevia/internal/auth"
	"github.com/anevia/anevia/internal/chat"
	"github.com/anevia/anevia/internal/scan"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes scan and chat tools.
type Server struct {
	scans  *scan.Model
	chats  *chat.Model
	bridge *auth.Bridge
	mcp    *server.MCPServer
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(scans *scan.Model, chats *chat.Model, bridge *auth.Bridge) *Server {
	s := &Server{
		scans:  scans,
		chats:  chats,
		bridge: bridge,
	}

	s.mcp = server.NewMCPServer(
		"anevia",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(listScansTool, s.handleListScans)
	s.mcp.AddTool(getScanTool, s.handleGetScan)
	s.mcp.AddTool(getRecommendationsTool, s.handleGetRecommendations)
	s.mcp.AddTool(startChatTool, s.handleStartChat)
	s.mcp.AddTool(sendChatMessageTool, s.handleSendChatMessage)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
