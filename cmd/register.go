package cmd

import (
	"context"
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var registerCmd = &cobra.Command{
	Use:   "register [email]",
	Short: "Create a new Anevia account",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRegister,
}

func init() {
	rootCmd.AddCommand(registerCmd)
}

func runRegister(cmd *cobra.Command, args []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.Close()

	email := ""
	if len(args) > 0 {
		email = args[0]
	} else {
		prompt := promptui.Prompt{Label: "Email"}
		email, err = prompt.Run()
		if err != nil {
			return fmt.Errorf("email: %w", err)
		}
	}

	namePrompt := promptui.Prompt{Label: "Display name"}
	displayName, err := namePrompt.Run()
	if err != nil {
		return fmt.Errorf("display name: %w", err)
	}

	passPrompt := promptui.Prompt{Label: "Password", Mask: '*'}
	password, err := passPrompt.Run()
	if err != nil {
		return fmt.Errorf("password: %w", err)
	}

	confirmPrompt := promptui.Prompt{Label: "Confirm password", Mask: '*'}
	confirm, err := confirmPrompt.Run()
	if err != nil {
		return fmt.Errorf("confirm password: %w", err)
	}
	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	state, err := app.bridge.Register(context.Background(), email, password, displayName)
	if err != nil {
		return err
	}

	fmt.Printf("Account created for %s\n", state.User.Email)
	return nil
}
