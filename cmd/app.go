package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/anevia/anevia/internal/account"
	"github.com/anevia/anevia/internal/app"
	"github.com/anevia/anevia/internal/chat"
	"github.com/anevia/anevia/internal/events"
	"github.com/anevia/anevia/internal/home"
	"github.com/anevia/anevia/internal/router"
	"github.com/anevia/anevia/internal/scan"
)

var appCmd = &cobra.Command{
	Use:   "app",
	Short: "Run the interactive Anevia shell",
	Long: `Starts the full interactive client: pages, navigation, and actions in
one terminal session. Type "help" inside the shell for the command list.`,
	RunE: runApp,
}

func init() {
	rootCmd.AddCommand(appCmd)
}

// buildShell wires models, views, and presenters into the app shell.
func buildShell(appCtx *appContext, out *os.File) *app.Shell {
	bus := events.NewBus()
	rt := router.New()

	scanModel := scan.NewModel(appCtx.client)
	chatModel := chat.NewModel(appCtx.client)
	userModel := account.NewUserModel(appCtx.bridge)
	profileModel := account.NewProfileModel(appCtx.client, appCtx.bridge, bus)
	google := appCtx.googleTokenFunc()

	factories := map[string]app.Factory{
		"home": func() app.Presenter {
			return home.NewPresenter("home", home.NewStaticView(out, home.HomeText), bus)
		},
		"about": func() app.Presenter {
			return home.NewPresenter("about", home.NewStaticView(out, home.AboutText), bus)
		},
		"faq": func() app.Presenter {
			return home.NewPresenter("faq", home.NewStaticView(out, home.FAQText), bus)
		},
		"tools": func() app.Presenter {
			return scan.NewToolsPresenter(scanModel, scan.NewToolsView(out), bus)
		},
		"scan-history": func() app.Presenter {
			return scan.NewHistoryPresenter(scanModel, scan.NewHistoryView(out), bus, appCtx.bridge)
		},
		"chat": func() app.Presenter {
			return chat.NewPresenter(chatModel, chat.NewView(out), bus, appCtx.bridge)
		},
		"login": func() app.Presenter {
			return account.NewLoginPresenter(appCtx.bridge, profileModel, account.NewLoginView(out), bus, google)
		},
		"register": func() app.Presenter {
			return account.NewRegisterPresenter(appCtx.bridge, account.NewRegisterView(out), bus)
		},
		"profile": func() app.Presenter {
			return account.NewProfilePresenter(userModel, profileModel, appCtx.bridge, account.NewProfileView(out), bus)
		},
	}

	header := app.NewNavigationView(out)
	footer := app.NewFooterView(out)

	return app.NewShell(rt, bus, appCtx.bridge, header, footer, factories)
}

func runApp(cmd *cobra.Command, args []string) error {
	appCtx, err := buildApp()
	if err != nil {
		return err
	}
	defer appCtx.Close()
	appCtx.startProbe(cmd.Context())

	shell := buildShell(appCtx, os.Stdout)
	shell.Start()
	defer shell.Stop()

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("anevia> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			fmt.Println()
			return nil
		}
		if quit := handleShellLine(shell, strings.TrimSpace(line)); quit {
			return nil
		}
	}
}

// handleShellLine parses one input line into a navigation or an action and
// reports whether the shell should exit.
func handleShellLine(shell *app.Shell, line string) bool {
	if line == "" {
		return false
	}

	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch cmd {
	case "quit", "exit":
		return true
	case "help":
		printShellHelp()
	case "go":
		shell.Navigate(rest)
	case "login":
		email, password, _ := strings.Cut(rest, " ")
		shell.Dispatch(app.Action{Kind: app.ActionSignIn, Email: email, Secret: strings.TrimSpace(password)})
	case "google":
		shell.Dispatch(app.Action{Kind: app.ActionSignInGoogle})
	case "register":
		fields := strings.Fields(rest)
		if len(fields) < 3 {
			fmt.Println("usage: register <email> <password> <confirm> [display name]")
			return false
		}
		shell.Dispatch(app.Action{
			Kind:    app.ActionRegister,
			Email:   fields[0],
			Secret:  fields[1],
			Confirm: fields[2],
			Text:    strings.Join(fields[3:], " "),
		})
	case "logout":
		shell.Dispatch(app.Action{Kind: app.ActionSignOut})
	case "scan":
		shell.Dispatch(app.Action{Kind: app.ActionSubmitScan, Path: rest})
	case "open":
		shell.Dispatch(app.Action{Kind: app.ActionOpenScan, ID: rest})
	case "session":
		shell.Dispatch(app.Action{Kind: app.ActionOpenSession, ID: rest})
	case "chat":
		shell.Dispatch(app.Action{Kind: app.ActionStartChat, ID: rest})
	case "say":
		shell.Dispatch(app.Action{Kind: app.ActionSendMessage, Text: rest})
	case "refresh":
		shell.Dispatch(app.Action{Kind: app.ActionRefresh})
	case "set":
		username, birthdate, _ := strings.Cut(rest, " ")
		shell.Dispatch(app.Action{Kind: app.ActionUpdateProfile, Text: username, Date: strings.TrimSpace(birthdate)})
	case "photo":
		shell.Dispatch(app.Action{Kind: app.ActionUploadPhoto, Path: rest})
	case "password":
		shell.Dispatch(app.Action{Kind: app.ActionChangePassword, Secret: rest})
	default:
		fmt.Printf("unknown command %q; type help\n", cmd)
	}
	return false
}

func printShellHelp() {
	fmt.Print(`Commands:
  go <page>            navigate (home, about, faq, tools, scan-history, chat, login, register, profile)
  go chat?scan=<id>    open chat seeded from a scan
  login <email> <pw>   sign in (on the login page)
  google               sign in with Google
  register <email> <pw> <confirm> [name]
  logout               sign out (on the profile page)
  scan <path>          upload an eye photo (on the tools page)
  open <scan-id>       show one scan (on the history page)
  chat <scan-id>       start a chat about a scan
  session <id>         resume a chat session
  say <text>           send a chat message
  set <username> <birthdate>
  photo <path>         replace the profile photo
  password <new>       change password (on the profile page)
  refresh              reload the page's data
  quit
`)
}
