package mcp

import "github.com/mark3labs/mcp-go/mcp"

// listScansTool defines the list_scans MCP tool.
var listScansTool = mcp.NewTool("list_scans",
	mcp.WithDescription("List the signed-in user's anemia scan history, newest first."),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of scans to return (default 10)"),
	),
)

// getScanTool defines the get_scan MCP tool.
var getScanTool = mcp.NewTool("get_scan",
	mcp.WithDescription("Get one scan result: verdict, confidence breakdown, and recommendations."),
	mcp.WithString("scan_id",
		mcp.Required(),
		mcp.Description("ID of the scan to fetch"),
	),
)

// getRecommendationsTool defines the get_recommendations MCP tool.
var getRecommendationsTool = mcp.NewTool("get_recommendations",
	mcp.WithDescription("Get only the health recommendations attached to a scan result."),
	mcp.WithString("scan_id",
		mcp.Required(),
		mcp.Description("ID of the scan whose recommendations to fetch"),
	),
)

// startChatTool defines the start_chat_from_scan MCP tool.
var startChatTool = mcp.NewTool("start_chat_from_scan",
	mcp.WithDescription("Open an AI chat session seeded from a scan result. Returns the session ID and the opening exchange."),
	mcp.WithString("scan_id",
		mcp.Required(),
		mcp.Description("ID of the scan to discuss"),
	),
)

// sendChatMessageTool defines the send_chat_message MCP tool.
var sendChatMessageTool = mcp.NewTool("send_chat_message",
	mcp.WithDescription("Send a message to a chat session and return the AI reply."),
	mcp.WithString("session_id",
		mcp.Required(),
		mcp.Description("ID of the chat session"),
	),
	mcp.WithString("text",
		mcp.Required(),
		mcp.Description("Message text to send"),
	),
)
