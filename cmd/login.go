package cmd

import (
	"context"
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var loginGoogle bool

var loginCmd = &cobra.Command{
	Use:   "login [email]",
	Short: "Sign in to your Anevia account",
	Long: `Signs in with email and password, or with Google via --google.

The session is stored in ~/.anevia/credentials.json and reused by every
command until you run anevia logout.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().BoolVar(&loginGoogle, "google", false, "sign in with Google OAuth")
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := context.Background()

	if loginGoogle {
		google := app.googleTokenFunc()
		if google == nil {
			return fmt.Errorf("google sign-in requires google.client_id and google.client_secret in the config")
		}
		accessToken, err := google(ctx)
		if err != nil {
			return fmt.Errorf("google sign-in: %w", err)
		}
		state, err := app.bridge.SignInWithGoogle(ctx, accessToken)
		if err != nil {
			return err
		}
		fmt.Printf("Signed in as %s\n", state.User.Email)
		return nil
	}

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

	passPrompt := promptui.Prompt{Label: "Password", Mask: '*'}
	password, err := passPrompt.Run()
	if err != nil {
		return fmt.Errorf("password: %w", err)
	}

	state, err := app.bridge.SignIn(ctx, email, password)
	if err != nil {
		return err
	}

	fmt.Printf("Signed in as %s\n", state.User.Email)
	if state.Profile != nil && state.Profile.Username != "" {
		fmt.Printf("Welcome back, %s!\n", state.Profile.Username)
	}
	return nil
}
