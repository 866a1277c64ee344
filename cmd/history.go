package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anevia/anevia/internal/scan"
)

var historyCmd = &cobra.Command{
	Use:   "history [scan-id]",
	Short: "Show your scan history or one scan's details",
	Long: `Lists your past scans, newest first. Pass a scan ID to print the full
result including the confidence breakdown and recommendations.

Previously loaded history is served from the local cache while offline.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.Close()
	app.startProbe(cmd.Context())

	model := scan.NewModel(app.client)
	ctx := context.Background()

	if len(args) == 1 {
		result, err := model.GetScan(ctx, args[0])
		if err != nil {
			return err
		}
		printScan(result)
		return nil
	}

	user, err := app.requireUser()
	if err != nil {
		return err
	}

	scans, err := model.LoadHistory(ctx, user.UID)
	if err != nil {
		return err
	}
	if len(scans) == 0 {
		fmt.Println("No scans yet. Run `anevia scan <image>` to create one.")
		return nil
	}

	for _, s := range scans {
		verdict := "ok"
		if s.IsAnemic {
			verdict = "anemic"
		}
		fmt.Printf("%s  %s  %s (%.1f%%)\n", s.CreatedAt.Format("2006-01-02 15:04"), s.ID, verdict, s.Confidence)
	}
	return nil
}
