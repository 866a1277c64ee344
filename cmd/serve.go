package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/anevia/anevia/internal/account"
	"github.com/anevia/anevia/internal/chat"
	"github.com/anevia/anevia/internal/dashboard"
	"github.com/anevia/anevia/internal/events"
	"github.com/anevia/anevia/internal/scan"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local web dashboard",
	Long: `Serves a local web view of your account: scan history, results with
rendered recommendations, connectivity state, and a live chat panel.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "override the configured dashboard port")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.Close()
	app.startProbe(cmd.Context())

	port := app.cfg.Dashboard.Port
	if servePort != 0 {
		port = servePort
	}

	d := dashboard.New(
		dashboard.Config{Port: port, AllowAll: app.cfg.Dashboard.AllowAll},
		scan.NewModel(app.client),
		chat.NewModel(app.client),
		account.NewProfileModel(app.client, app.bridge, events.NewBus()),
		app.bridge,
		app.monitor,
		app.store,
	)

	// Graceful shutdown on interrupt.
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-done
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := d.Shutdown(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Dashboard: http://localhost:%d\n", port)
	return d.Start()
}
