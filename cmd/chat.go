package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/anevia/anevia/internal/api"
	"github.com/anevia/anevia/internal/chat"
)

var (
	chatScanID    string
	chatSessionID string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the AI about your scan results",
	Long: `Without flags, lists your chat sessions. Use --scan to start a new
session from a scan result, or --session to resume an existing one.
Both enter an interactive loop; type your message and press enter,
or an empty line to quit.`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVar(&chatScanID, "scan", "", "start a new session from this scan")
	chatCmd.Flags().StringVar(&chatSessionID, "session", "", "resume this session")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.Close()
	app.startProbe(cmd.Context())

	user, err := app.requireUser()
	if err != nil {
		return err
	}

	model := chat.NewModel(app.client)
	ctx := context.Background()

	switch {
	case chatScanID != "":
		session, err := model.StartChatFromScan(ctx, chatScanID, user.UID)
		if err != nil {
			return fmt.Errorf("starting chat: %w", err)
		}
		fmt.Printf("Session %s\n\n", session.SessionID)
		printMessages(model.Messages())
		return chatLoop(ctx, model)

	case chatSessionID != "":
		messages, err := model.OpenSession(ctx, chatSessionID)
		if err != nil {
			return fmt.Errorf("opening session: %w", err)
		}
		printMessages(messages)
		return chatLoop(ctx, model)

	default:
		sessions, err := model.LoadSessions(ctx, user.UID)
		if err != nil {
			return fmt.Errorf("loading sessions: %w", err)
		}
		if len(sessions) == 0 {
			fmt.Println("No conversations yet. Start one with `anevia chat --scan <scan-id>`.")
			return nil
		}
		for _, s := range sessions {
			fmt.Printf("%s  %s  %s\n", s.UpdatedAt.Format("2006-01-02 15:04"), s.SessionID, s.Title)
		}
		return nil
	}
}

// chatLoop reads messages from stdin until an empty line or EOF.
func chatLoop(ctx context.Context, model *chat.Model) error {
	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			fmt.Println()
			return nil
		}
		text := strings.TrimSpace(line)
		if text == "" {
			return nil
		}

		result, err := model.SendMessage(ctx, text)
		if err != nil {
			fmt.Fprintf(os.Stderr, "send failed: %v\n", err)
			continue
		}
		fmt.Printf("[ai] %s\n", result.AIResponse.Text)
	}
}

func printMessages(messages []api.ChatMessage) {
	for _, m := range messages {
		label := "you"
		switch m.Sender {
		case api.SenderAI:
			label = "ai"
		case api.SenderSystem:
			label = "system"
		}
		fmt.Printf("[%s] %s\n", label, m.Text)
	}
}
