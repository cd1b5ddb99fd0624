package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/fivetwenty-io/directus-sdk/internal/constants"
	"github.com/fivetwenty-io/directus-sdk/pkg/directus"
)

// NewLoginCommand creates the login command.
func NewLoginCommand() *cobra.Command {
	var (
		email    string
		password string
		otp      string
		token    string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login to Directus",
		Long:  "Authenticate with email and password, or validate and store a static token",
		RunE: func(cmd *cobra.Command, args []string) error {
			sdk, err := newSDK()
			if err != nil {
				return err
			}
			defer func() { _ = sdk.Close() }()

			ctx := context.Background()
			out := cmd.OutOrStdout()

			if token != "" {
				err = sdk.Auth().Static(ctx, token)
				if err != nil {
					return fmt.Errorf("failed to validate token: %w", err)
				}

				_, _ = fmt.Fprintf(out, "Stored static token for %s\n", sdk.URL())

				return nil
			}

			if email == "" {
				email = viper.GetString("email")
			}

			if email == "" {
				email = prompt(cmd.InOrStdin(), out, "Email: ")
			}

			if email == "" {
				return constants.ErrEmailRequired
			}

			if password == "" {
				password, err = readPassword(out)
				if err != nil {
					return err
				}
			}

			if password == "" {
				return constants.ErrPasswordRequired
			}

			result, err := sdk.Auth().Login(ctx, directus.LoginRequest{Email: email, Password: password, OTP: otp})
			if err != nil {
				return fmt.Errorf("failed to login: %w", err)
			}

			_, _ = fmt.Fprintf(out, "Successfully logged in to %s\n", sdk.URL())

			if !result.ExpiresAt.IsZero() {
				_, _ = fmt.Fprintf(out, "Token expires at %s\n", result.ExpiresAt.Local().Format("2006-01-02 15:04:05"))
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "email for authentication")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password for authentication")
	cmd.Flags().StringVar(&otp, "otp", "", "one-time password when two-factor authentication is enabled")
	cmd.Flags().StringVar(&token, "token", "", "static access token to store instead of logging in")

	return cmd
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Logout from Directus",
		Long:  "End the session on the server and clear stored credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			sdk, err := newSDK()
			if err != nil {
				return err
			}
			defer func() { _ = sdk.Close() }()

			err = sdk.Auth().Logout(context.Background())
			if err != nil {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Successfully logged out")

			return nil
		},
	}
}

// NewPasswordCommand creates the password reset command group.
func NewPasswordCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Reset passwords",
	}

	var resetURL string

	request := &cobra.Command{
		Use:   "request EMAIL",
		Short: "Send a password reset email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sdk, err := newSDK()
			if err != nil {
				return err
			}
			defer func() { _ = sdk.Close() }()

			err = sdk.Auth().RequestPasswordReset(context.Background(), args[0], resetURL)
			if err != nil {
				return fmt.Errorf("failed to request password reset: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Password reset requested for %s\n", args[0])

			return nil
		},
	}
	request.Flags().StringVar(&resetURL, "reset-url", "", "URL the reset email links to")

	reset := &cobra.Command{
		Use:   "reset TOKEN",
		Short: "Set a new password with a reset token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			if password == "" {
				return constants.ErrPasswordRequired
			}

			sdk, err := newSDK()
			if err != nil {
				return err
			}
			defer func() { _ = sdk.Close() }()

			err = sdk.Auth().ResetPassword(context.Background(), args[0], password)
			if err != nil {
				return fmt.Errorf("failed to reset password: %w", err)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Password updated")

			return nil
		},
	}

	cmd.AddCommand(request, reset)

	return cmd
}

func prompt(in io.Reader, out io.Writer, label string) string {
	_, _ = fmt.Fprint(out, label)

	line, _ := bufio.NewReader(in).ReadString('\n')

	return strings.TrimSpace(line)
}

func readPassword(out io.Writer) (string, error) {
	_, _ = fmt.Fprint(out, "Password: ")

	bytePassword, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	_, _ = fmt.Fprintln(out)

	return string(bytePassword), nil
}
