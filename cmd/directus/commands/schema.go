package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/directus-sdk/pkg/directus"
)

// NewCollectionsCommand creates the collections command group.
func NewCollectionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "collections",
		Aliases: []string{"collection", "c"},
		Short:   "Inspect collections",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List collections",
		RunE: func(cmd *cobra.Command, args []string) error {
			sdk, err := newSDK()
			if err != nil {
				return err
			}
			defer func() { _ = sdk.Close() }()

			collections, err := sdk.Collections().ReadAll(context.Background())
			if err != nil {
				return fmt.Errorf("failed to list collections: %w", err)
			}

			return render(cmd.OutOrStdout(), outputFormat(), collections, func(t *table) {
				t.header("Collection", "Singleton", "Hidden", "Note")

				for _, c := range collections {
					t.row(c.Collection, cell(c.Meta["singleton"]), cell(c.Meta["hidden"]), cell(c.Meta["note"]))
				}
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get COLLECTION",
		Short: "Get a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sdk, err := newSDK()
			if err != nil {
				return err
			}
			defer func() { _ = sdk.Close() }()

			collection, err := sdk.Collections().ReadOne(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get collection: %w", err)
			}

			record, err := toRecord(collection)
			if err != nil {
				return err
			}

			return render(cmd.OutOrStdout(), outputFormat(), collection, propertiesTable(record))
		},
	})

	return cmd
}

// NewFieldsCommand creates the fields command group.
func NewFieldsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fields",
		Short: "Inspect and update fields",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list [COLLECTION]",
		Short: "List fields, optionally of one collection",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sdk, err := newSDK()
			if err != nil {
				return err
			}
			defer func() { _ = sdk.Close() }()

			var fields []directus.Field

			if len(args) == 1 {
				fields, err = sdk.Fields().ReadMany(context.Background(), args[0])
			} else {
				fields, err = sdk.Fields().ReadAll(context.Background())
			}

			if err != nil {
				return fmt.Errorf("failed to list fields: %w", err)
			}

			return render(cmd.OutOrStdout(), outputFormat(), fields, func(t *table) {
				t.header("Collection", "Field", "Type", "Interface", "Required")

				for _, f := range fields {
					t.row(f.Collection, f.Field, f.Type, cell(f.Meta["interface"]), cell(f.Meta["required"]))
				}
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get COLLECTION FIELD",
		Short: "Get a field",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sdk, err := newSDK()
			if err != nil {
				return err
			}
			defer func() { _ = sdk.Close() }()

			field, err := sdk.Fields().ReadOne(context.Background(), args[0], args[1])
			if err != nil {
				return fmt.Errorf("failed to get field: %w", err)
			}

			record, err := toRecord(field)
			if err != nil {
				return err
			}

			return render(cmd.OutOrStdout(), outputFormat(), field, propertiesTable(record))
		},
	})

	var data string

	update := &cobra.Command{
		Use:   "update COLLECTION FIELD",
		Short: "Update a field",
		Long:  `Update a field with a JSON patch, e.g. --data '{"meta":{"required":true}}'`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch map[string]any

			err := readJSONInput(data, cmd.InOrStdin(), &patch)
			if err != nil {
				return err
			}

			sdk, err := newSDK()
			if err != nil {
				return err
			}
			defer func() { _ = sdk.Close() }()

			_, err = sdk.Fields().UpdateOne(context.Background(), args[0], args[1], patch)
			if err != nil {
				return fmt.Errorf("failed to update field: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Updated field %s.%s\n", args[0], args[1])

			return nil
		},
	}
	update.Flags().StringVarP(&data, "data", "d", "-", "patch as JSON, - reads stdin")

	cmd.AddCommand(update)

	return cmd
}
