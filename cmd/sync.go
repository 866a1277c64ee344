package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Replay queued offline requests now",
	Long: `Sends any requests that were queued while offline and prunes expired
entries from the local response cache. Queued requests are normally
replayed automatically when connectivity returns; sync forces a pass.`,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := context.Background()

	before, err := app.store.PendingCount(ctx)
	if err != nil {
		return fmt.Errorf("counting pending requests: %w", err)
	}

	if before == 0 {
		fmt.Println("Nothing queued.")
	} else {
		fmt.Printf("Replaying %d queued request(s)...\n", before)
		app.monitor.SetOnline(true)
		app.cache.ReplayPending(ctx)

		after, err := app.store.PendingCount(ctx)
		if err != nil {
			return fmt.Errorf("counting pending requests: %w", err)
		}
		fmt.Printf("Done: %d sent or dropped, %d still queued.\n", before-after, after)
	}

	entryTTL := time.Duration(app.cfg.Cache.EntryTTLHours) * time.Hour
	pruned, err := app.store.PruneEntries(ctx, entryTTL)
	if err != nil {
		return fmt.Errorf("pruning cache: %w", err)
	}
	if pruned > 0 {
		fmt.Printf("Pruned %d expired cache entr%s.\n", pruned, pluralY(int(pruned)))
	}
	return nil
}

func pluralY(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}
