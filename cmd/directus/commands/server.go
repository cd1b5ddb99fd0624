package commands

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

// NewServerCommand creates the server command group.
func NewServerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Inspect the Directus server",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "ping",
		Short: "Ping the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			sdk, err := newSDK()
			if err != nil {
				return err
			}
			defer func() { _ = sdk.Close() }()

			pong, err := sdk.Server().Ping(context.Background())
			if err != nil {
				return fmt.Errorf("failed to ping server: %w", err)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), pong)

			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "info",
		Short: "Show server information",
		RunE: func(cmd *cobra.Command, args []string) error {
			sdk, err := newSDK()
			if err != nil {
				return err
			}
			defer func() { _ = sdk.Close() }()

			info, err := sdk.Server().Info(context.Background())
			if err != nil {
				return fmt.Errorf("failed to get server info: %w", err)
			}

			return render(cmd.OutOrStdout(), outputFormat(), info, func(t *table) {
				t.header("Property", "Value")

				for _, section := range []struct {
					name   string
					values map[string]any
				}{
					{name: "project", values: info.Project},
					{name: "directus", values: info.Directus},
					{name: "node", values: info.Node},
					{name: "os", values: info.OS},
				} {
					keys := make([]string, 0, len(section.values))
					for key := range section.values {
						keys = append(keys, key)
					}

					sort.Strings(keys)

					for _, key := range keys {
						t.row(section.name+"."+key, cell(section.values[key]))
					}
				}
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "health",
		Short: "Show server health",
		RunE: func(cmd *cobra.Command, args []string) error {
			sdk, err := newSDK()
			if err != nil {
				return err
			}
			defer func() { _ = sdk.Close() }()

			health, err := sdk.Server().Health(context.Background())
			if health == nil {
				return fmt.Errorf("failed to get server health: %w", err)
			}

			renderErr := render(cmd.OutOrStdout(), outputFormat(), health, func(t *table) {
				t.header("Check", "Status")
				t.row("overall", health.Status)

				keys := make([]string, 0, len(health.Checks))
				for key := range health.Checks {
					keys = append(keys, key)
				}

				sort.Strings(keys)

				for _, key := range keys {
					t.row(key, cell(health.Checks[key]))
				}
			})
			if renderErr != nil {
				return renderErr
			}

			if err != nil {
				return fmt.Errorf("server is unhealthy: %w", err)
			}

			return nil
		},
	})

	return cmd
}
