package cmd

import (
	"github.com/spf13/cobra"

	"github.com/anevia/anevia/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize anevia configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure the anevia client and writes the config file (default ~/.anevia/config.yml).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
