package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/directus-sdk/internal/constants"
	"github.com/fivetwenty-io/directus-sdk/pkg/directus"
)

// NewGraphQLCommand creates the graphql command.
func NewGraphQLCommand() *cobra.Command {
	var (
		system    bool
		variables string
		path      string
	)

	cmd := &cobra.Command{
		Use:   "graphql QUERY",
		Short: "Run a GraphQL query",
		Long: `Run a GraphQL query against the items endpoint, or the system endpoint with --system.
Use --path to print a single value selected with a gjson path, e.g. posts.0.title`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var vars map[string]any

			if variables != "" {
				err := readJSONInput(variables, cmd.InOrStdin(), &vars)
				if err != nil {
					return fmt.Errorf("parsing --variables: %w", err)
				}
			}

			sdk, err := newSDK()
			if err != nil {
				return err
			}
			defer func() { _ = sdk.Close() }()

			run := sdk.GraphQL().Items
			if system {
				run = sdk.GraphQL().System
			}

			result, err := run(context.Background(), args[0], vars)

			var gqlErr *directus.GraphQLError
			if err != nil && !errors.As(err, &gqlErr) {
				return fmt.Errorf("failed to run query: %w", err)
			}

			out := cmd.OutOrStdout()

			if path != "" {
				_, _ = fmt.Fprintln(out, result.Get(path).String())

				return err
			}

			var data any
			if len(result.Data) > 0 {
				if decodeErr := json.Unmarshal(result.Data, &data); decodeErr != nil {
					return fmt.Errorf("decoding data: %w", decodeErr)
				}
			}

			format := outputFormat()
			if format == constants.FormatTable {
				format = constants.FormatJSON
			}

			if renderErr := render(out, format, data, nil); renderErr != nil {
				return renderErr
			}

			return err
		},
	}

	cmd.Flags().BoolVar(&system, "system", false, "query the system endpoint")
	cmd.Flags().StringVar(&variables, "variables", "", "variables as JSON, - reads stdin")
	cmd.Flags().StringVar(&path, "path", "", "gjson path of the value to print")

	return cmd
}
