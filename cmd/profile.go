package cmd

import (
	"context"
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/anevia/anevia/internal/account"
	"github.com/anevia/anevia/internal/api"
	"github.com/anevia/anevia/internal/events"
)

var (
	profileUsername  string
	profileBirthdate string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "View and manage your account profile",
	RunE:  runProfileShow,
}

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update profile fields",
	RunE:  runProfileSet,
}

var profilePhotoCmd = &cobra.Command{
	Use:   "photo <image>",
	Short: "Replace your profile photo",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfilePhoto,
}

var profilePasswordCmd = &cobra.Command{
	Use:   "password",
	Short: "Change your password",
	RunE:  runProfilePassword,
}

var profileResetCmd = &cobra.Command{
	Use:   "reset-password <email>",
	Short: "Send a password-reset email",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileReset,
}

var profileLinkCmd = &cobra.Command{
	Use:   "link-password",
	Short: "Add password sign-in to a Google-only account",
	RunE:  runProfileLink,
}

var profileDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Permanently delete your account",
	RunE:  runProfileDelete,
}

func init() {
	profileSetCmd.Flags().StringVar(&profileUsername, "username", "", "new username")
	profileSetCmd.Flags().StringVar(&profileBirthdate, "birthdate", "", "birthdate (YYYY-MM-DD)")

	profileCmd.AddCommand(profileSetCmd)
	profileCmd.AddCommand(profilePhotoCmd)
	profileCmd.AddCommand(profilePasswordCmd)
	profileCmd.AddCommand(profileResetCmd)
	profileCmd.AddCommand(profileLinkCmd)
	profileCmd.AddCommand(profileDeleteCmd)
	rootCmd.AddCommand(profileCmd)
}

func buildProfileModel(app *appContext) *account.ProfileModel {
	return account.NewProfileModel(app.client, app.bridge, events.NewBus())
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if _, err := app.requireUser(); err != nil {
		return err
	}

	profile, err := buildProfileModel(app).Load(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("Username:  %s\n", profile.Username)
	if profile.Birthdate != "" {
		fmt.Printf("Birthdate: %s\n", profile.Birthdate)
	}
	if profile.PhotoURL != "" {
		fmt.Printf("Photo:     %s\n", profile.PhotoURL)
	}
	return nil
}

func runProfileSet(cmd *cobra.Command, args []string) error {
	if profileUsername == "" && profileBirthdate == "" {
		return fmt.Errorf("nothing to update; pass --username or --birthdate")
	}

	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.Close()

	update := api.ProfileUpdate{Username: profileUsername, Birthdate: profileBirthdate}
	if _, err := buildProfileModel(app).Update(context.Background(), update); err != nil {
		return err
	}
	fmt.Println("Profile updated.")
	return nil
}

func runProfilePhoto(cmd *cobra.Command, args []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if _, err := buildProfileModel(app).UploadImage(context.Background(), args[0]); err != nil {
		return err
	}
	fmt.Println("Profile photo updated.")
	return nil
}

func runProfilePassword(cmd *cobra.Command, args []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.Close()

	passPrompt := promptui.Prompt{Label: "New password", Mask: '*'}
	password, err := passPrompt.Run()
	if err != nil {
		return fmt.Errorf("password: %w", err)
	}
	confirmPrompt := promptui.Prompt{Label: "Confirm new password", Mask: '*'}
	confirm, err := confirmPrompt.Run()
	if err != nil {
		return fmt.Errorf("confirm password: %w", err)
	}
	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	if err := buildProfileModel(app).ChangePassword(context.Background(), password); err != nil {
		return err
	}
	fmt.Println("Password changed.")
	return nil
}

func runProfileReset(cmd *cobra.Command, args []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if err := buildProfileModel(app).ResetPassword(context.Background(), args[0]); err != nil {
		return err
	}
	fmt.Printf("Password reset email sent to %s\n", args[0])
	return nil
}

func runProfileLink(cmd *cobra.Command, args []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.Close()

	passPrompt := promptui.Prompt{Label: "Password", Mask: '*'}
	password, err := passPrompt.Run()
	if err != nil {
		return fmt.Errorf("password: %w", err)
	}

	if err := buildProfileModel(app).LinkPassword(context.Background(), password); err != nil {
		return err
	}
	fmt.Println("Password sign-in enabled.")
	return nil
}

func runProfileDelete(cmd *cobra.Command, args []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.Close()

	user, err := app.requireUser()
	if err != nil {
		return err
	}

	confirmPrompt := promptui.Prompt{
		Label: fmt.Sprintf("Type %q to permanently delete the account", user.Email),
	}
	typed, err := confirmPrompt.Run()
	if err != nil {
		return fmt.Errorf("confirmation: %w", err)
	}
	if typed != user.Email {
		return fmt.Errorf("confirmation did not match; account not deleted")
	}

	if err := buildProfileModel(app).Delete(context.Background()); err != nil {
		return err
	}
	fmt.Println("Account deleted.")
	return nil
}
