package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quillhub/quillhub/client/api"
	"github.com/quillhub/quillhub/client/transport"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
	Long:  "Manage authentication with Quill",
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new Quill account",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, err := promptString("Username: ")
		if err != nil {
			return err
		}
		email, err := promptString("Email: ")
		if err != nil {
			return err
		}
		name, err := promptString("Display name: ")
		if err != nil {
			return err
		}
		password, err := promptPassword("Password: ")
		if err != nil {
			return err
		}
		confirm, err := promptPassword("Confirm password: ")
		if err != nil {
			return err
		}
		if password != confirm {
			return errors.New("passwords do not match")
		}

		if err := api.Register(username, email, password, name); err != nil {
			var apiErr *transport.APIError
			if errors.As(err, &apiErr) && apiErr.Message == "UsernameExists" {
				return fmt.Errorf("username %q is already taken", username)
			}
			return err
		}

		fmt.Printf("A verification code was sent to %s.\n", email)
		code, err := promptString("Verification code: ")
		if err != nil {
			return err
		}

		session, err := api.ConfirmRegister(email, code)
		if err != nil {
			return err
		}
		printSuccess("Welcome to Quill, @%s!", session.Account.Username)
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Login to Quill",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, err := promptString("Username: ")
		if err != nil {
			return err
		}
		password, err := promptPassword("Password: ")
		if err != nil {
			return err
		}

		session, err := api.Login(username, password)
		if err != nil {
			if transport.IsMessage(err, "NoAccount") {
				return errors.New("invalid username or password")
			}
			return err
		}
		printSuccess("Logged in as @%s", session.Account.Username)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Logout from Quill",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := api.Logout(); err != nil {
			return err
		}
		printSuccess("Logged out")
		return nil
	},
}

var forgotPasswordCmd = &cobra.Command{
	Use:   "forgot-password",
	Short: "Request a password reset code",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, err := promptString("Email: ")
		if err != nil {
			return err
		}
		if err := api.ForgotPassword(email); err != nil {
			return err
		}
		fmt.Printf("If an account exists for %s, a reset code was sent.\n", email)
		return nil
	},
}

var resetPasswordCmd = &cobra.Command{
	Use:   "reset-password",
	Short: "Reset password with the emailed code",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, err := promptString("Email: ")
		if err != nil {
			return err
		}
		code, err := promptString("Reset code: ")
		if err != nil {
			return err
		}

		resetToken, err := api.ConfirmForgotPassword(email, code)
		if err != nil {
			if transport.IsMessage(err, "InvalidToken") {
				return errors.New("code is invalid or expired")
			}
			return err
		}

		password, err := promptPassword("New password: ")
		if err != nil {
			return err
		}
		confirm, err := promptPassword("Confirm password: ")
		if err != nil {
			return err
		}
		if password != confirm {
			return errors.New("passwords do not match")
		}

		if err := api.ResetPassword(email, resetToken, password); err != nil {
			return err
		}
		printSuccess("Password reset. Login with your new password.")
		return nil
	},
}

var changePasswordCmd = &cobra.Command{
	Use:   "change-password",
	Short: "Change your password",
	RunE: func(cmd *cobra.Command, args []string) error {
		oldPassword, err := promptPassword("Current password: ")
		if err != nil {
			return err
		}
		newPassword, err := promptPassword("New password: ")
		if err != nil {
			return err
		}
		confirm, err := promptPassword("Confirm password: ")
		if err != nil {
			return err
		}
		if newPassword != confirm {
			return errors.New("passwords do not match")
		}

		if err := api.ChangePassword(oldPassword, newPassword); err != nil {
			return err
		}
		printSuccess("Password changed")
		return nil
	},
}

func init() {
	authCmd.AddCommand(registerCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(forgotPasswordCmd)
	authCmd.AddCommand(resetPasswordCmd)
	authCmd.AddCommand(changePasswordCmd)
}
