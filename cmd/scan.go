package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/anevia/anevia/internal/api"
	"github.com/anevia/anevia/internal/progress"
	"github.com/anevia/anevia/internal/scan"
)

var scanCmd = &cobra.Command{
	Use:   "scan <image|glob>...",
	Short: "Submit eye photos for anemia detection",
	Long: `Uploads one or more eye photos (JPEG, PNG, or WebP, max 10MB each) and
prints the detection result. Arguments may be file paths or glob patterns
like "photos/**/*.jpg".

While offline, uploads are queued locally and sent automatically once the
connection returns.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.Close()
	app.startProbe(cmd.Context())

	paths, err := expandImageArgs(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no image files matched")
	}

	model := scan.NewModel(app.client)
	ctx := context.Background()

	if len(paths) == 1 {
		result, err := model.ScanImage(ctx, paths[0])
		if err != nil {
			return err
		}
		printScan(result)
		return nil
	}

	// Batch mode with a progress bar.
	reporter := progress.NewReporter()
	reporter.Start(len(paths))

	var failed int
	results := make([]*api.Scan, 0, len(paths))
	for i, path := range paths {
		reporter.Update(i+1, path)
		result, err := model.ScanImage(ctx, path)
		if err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			continue
		}
		results = append(results, result)
	}
	reporter.Finish()

	for _, result := range results {
		printScan(result)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d uploads failed", failed, len(paths))
	}
	return nil
}

// expandImageArgs resolves literal paths and glob patterns into a sorted,
// deduplicated file list.
func expandImageArgs(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string

	for _, arg := range args {
		if !hasGlobMeta(arg) {
			if !seen[arg] {
				seen[arg] = true
				paths = append(paths, arg)
			}
			continue
		}

		matches, err := doublestar.FilepathGlob(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid glob %q: %w", arg, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				paths = append(paths, m)
			}
		}
	}

	sort.Strings(paths)
	return paths, nil
}

func hasGlobMeta(s string) bool {
	for _, r := range s {
		switch r {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}

func printScan(s *api.Scan) {
	verdict := "no anemia detected"
	if s.IsAnemic {
		verdict = "anemia detected"
	}
	fmt.Printf("\nScan %s: %s (%.1f%% confidence)\n", s.ID, verdict, s.Confidence)
	for k, v := range s.ConfidenceDetail {
		fmt.Printf("  %s: %.1f%%\n", k, v)
	}
	if len(s.Recommendations) > 0 {
		fmt.Println("Recommendations:")
		for _, rec := range s.Recommendations {
			fmt.Printf("  - %s\n", rec)
		}
	}
	if s.IsAnemic {
		fmt.Printf("\nDiscuss this result: anevia chat --scan %s\n", s.ID)
	}
}
