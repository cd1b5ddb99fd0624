package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/directus-sdk/internal/auth"
	"github.com/fivetwenty-io/directus-sdk/internal/constants"
	"github.com/fivetwenty-io/directus-sdk/pkg/directus"
)

// TokenInfo describes the stored session.
type TokenInfo struct {
	URL       string     `json:"url"                  yaml:"url"`
	State     string     `json:"state"                yaml:"state"`
	ExpiresAt *time.Time `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
	Refresh   bool       `json:"has_refresh_token"    yaml:"has_refresh_token"`
	Token     string     `json:"token,omitempty"      yaml:"token,omitempty"`
}

// NewTokenCommand creates the token command group.
func NewTokenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Inspect and refresh the stored session",
	}

	cmd.AddCommand(newTokenShowCommand())
	cmd.AddCommand(newTokenRefreshCommand())

	return cmd
}

func newTokenShowCommand() *cobra.Command {
	var reveal bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the session state",
		RunE: func(cmd *cobra.Command, args []string) error {
			sdk, err := newSDK()
			if err != nil {
				return err
			}
			defer func() { _ = sdk.Close() }()

			ctx := context.Background()

			state, err := sdk.Auth().State(ctx)
			if err != nil {
				return fmt.Errorf("failed to read session: %w", err)
			}

			creds, err := sdk.Credentials().Load(ctx)
			if err != nil {
				return fmt.Errorf("failed to read credentials: %w", err)
			}

			info := describeToken(sdk.URL(), state, creds, reveal)

			return render(cmd.OutOrStdout(), outputFormat(), info, func(t *table) {
				t.header("Property", "Value")
				t.row("URL", info.URL)
				t.row("State", info.State)

				expires := constants.NotAvailable
				if info.ExpiresAt != nil {
					expires = info.ExpiresAt.Local().Format(time.RFC3339)
				}

				t.row("Expires", expires)
				t.row("Refresh Token", info.Refresh)

				if info.Token != "" {
					t.row("Token", info.Token)
				}
			})
		},
	}

	cmd.Flags().BoolVar(&reveal, "reveal", false, "print the access token")

	return cmd
}

func describeToken(url string, state directus.AuthState, creds *directus.Credentials, reveal bool) *TokenInfo {
	info := &TokenInfo{URL: url, State: string(state), Refresh: creds.RefreshToken != ""}

	if !creds.ExpiresAt.IsZero() {
		expires := creds.ExpiresAt
		info.ExpiresAt = &expires
	} else if creds.AccessToken != "" {
		if expires, err := auth.ExpiryFromJWT(creds.AccessToken); err == nil {
			info.ExpiresAt = &expires
		}
	}

	switch {
	case creds.AccessToken == "":
	case reveal:
		info.Token = creds.AccessToken
	default:
		info.Token = constants.MaskedSecret
	}

	return info
}

func newTokenRefreshCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Refresh the access token now",
		RunE: func(cmd *cobra.Command, args []string) error {
			sdk, err := newSDK()
			if err != nil {
				return err
			}
			defer func() { _ = sdk.Close() }()

			result, err := sdk.Auth().Refresh(context.Background())
			if err != nil {
				if directus.IsAuthError(err) {
					return fmt.Errorf("%w: %w", constants.ErrNotLoggedIn, err)
				}

				return fmt.Errorf("failed to refresh token: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Token refreshed, expires at %s\n",
				result.ExpiresAt.Local().Format(time.RFC3339))

			return nil
		},
	}
}
