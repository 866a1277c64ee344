package cmd

import (
	"github.com/spf13/cobra"

	"github.com/anevia/anevia/internal/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "anevia",
	Short: "Eye-scan anemia detection client",
	Long: `Anevia detects signs of anemia from a photo of the eye's conjunctiva.
It talks to the Anevia API, keeps your scan history and AI chat sessions,
and works offline by caching responses and queueing uploads locally.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath(), "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
