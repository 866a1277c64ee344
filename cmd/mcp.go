package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/anevia/anevia/internal/chat"
	mcpserver "github.com/anevia/anevia/internal/mcp"
	"github.com/anevia/anevia/internal/scan"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing your scan results and chat sessions as tools for AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp()
		if err != nil {
			return err
		}
		defer app.Close()
		app.startProbe(cmd.Context())

		// Set version from the cmd package variable.
		mcpserver.Version = Version

		fmt.Fprintln(os.Stderr, "anevia MCP server started on stdio")

		srv := mcpserver.NewServer(scan.NewModel(app.client), chat.NewModel(app.client), app.bridge)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
