package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/directus-sdk/internal/constants"
	"github.com/fivetwenty-io/directus-sdk/pkg/directus"
	"github.com/fivetwenty-io/directus-sdk/pkg/rdk"
)

// queryFlags holds the global query parameters shared by list commands.
type queryFlags struct {
	fields []string
	sort   []string
	filter string
	search string
	limit  int
	page   int
	all    bool
}

func (f *queryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.fields, "fields", nil, "fields to return")
	cmd.Flags().StringSliceVar(&f.sort, "sort", nil, "sort keys, prefix with - for descending")
	cmd.Flags().StringVar(&f.filter, "filter", "", `filter as JSON, e.g. '{"status":{"_eq":"published"}}'`)
	cmd.Flags().StringVar(&f.search, "search", "", "full-text search term")
	cmd.Flags().IntVar(&f.limit, "limit", 0, "maximum number of items")
	cmd.Flags().IntVar(&f.page, "page", 0, "page number")
	cmd.Flags().BoolVar(&f.all, "all", false, "fetch every page")
}

func (f *queryFlags) query() (*directus.Query, error) {
	query := directus.NewQuery().WithFields(f.fields...).WithSort(f.sort...)

	if f.filter != "" {
		var filter directus.Filter

		err := readJSONInput(f.filter, nil, &filter)
		if err != nil {
			return nil, fmt.Errorf("parsing --filter: %w", err)
		}

		query.Filter = filter
	}

	if f.search != "" {
		query.WithSearch(f.search)
	}

	if f.limit != 0 {
		query.WithLimit(f.limit)
	}

	if f.page > 0 {
		query.WithPage(f.page)
	}

	return query, nil
}

// NewItemsCommand creates the items command group.
func NewItemsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items",
		Short: "Manage collection items",
		Long:  "Read, create, update and delete items of any collection",
	}

	cmd.AddCommand(newItemsListCommand())
	cmd.AddCommand(newItemsGetCommand())
	cmd.AddCommand(newItemsCreateCommand())
	cmd.AddCommand(newItemsUpdateCommand())
	cmd.AddCommand(newItemsDeleteCommand())

	return cmd
}

func newItemsListCommand() *cobra.Command {
	flags := &queryFlags{}

	cmd := &cobra.Command{
		Use:   "list COLLECTION",
		Short: "List items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := flags.query()
			if err != nil {
				return err
			}

			sdk, err := newSDK()
			if err != nil {
				return err
			}
			defer func() { _ = sdk.Close() }()

			ctx := context.Background()
			items := rdk.Items[directus.Item](sdk, args[0])

			var records []directus.Item

			if flags.all {
				records, err = directus.FetchAllItems(ctx, items, query, flags.limit)
			} else {
				var page *directus.ManyItems[directus.Item]

				page, err = items.ReadByQuery(ctx, query)
				if page != nil {
					records = page.Data
				}
			}

			if err != nil {
				return fmt.Errorf("failed to list items: %w", err)
			}

			return renderItems(cmd, records, flags.fields)
		},
	}

	flags.register(cmd)

	return cmd
}

func newItemsGetCommand() *cobra.Command {
	var (
		fields      []string
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "get COLLECTION ID [ID...]",
		Short: "Get one or more items",
		Long:  "Get items by id. Several ids are fetched in parallel.",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sdk, err := newSDK()
			if err != nil {
				return err
			}
			defer func() { _ = sdk.Close() }()

			ctx := context.Background()
			items := rdk.Items[directus.Item](sdk, args[0])
			query := directus.NewQuery().WithFields(fields...)
			ids := args[1:]

			if len(ids) == 1 {
				item, err := items.ReadOne(ctx, ids[0], query)
				if err != nil {
					return fmt.Errorf("failed to get item: %w", err)
				}

				return renderItem(cmd, *item)
			}

			ops := make([]directus.BatchOperation, 0, len(ids))
			for _, id := range ids {
				ops = append(ops, directus.BatchOperation{
					ID: id,
					Do: func(ctx context.Context) (any, error) {
						return items.ReadOne(ctx, id, query)
					},
				})
			}

			summary := directus.RunBatch(ctx, ops, concurrency)

			records := make([]directus.Item, 0, summary.Succeeded)
			for _, result := range summary.Results {
				if !result.Success {
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Failed to get item %s: %v\n", result.ID, result.Error)

					continue
				}

				records = append(records, *result.Data.(*directus.Item))
			}

			err = renderItems(cmd, records, fields)
			if err != nil {
				return err
			}

			if summary.Failed > 0 {
				return fmt.Errorf("failed to get %d of %d items: %w", summary.Failed, len(ids), errors.Join(summary.Errors()...))
			}

			return nil
		},
	}

	cmd.Flags().StringSliceVar(&fields, "fields", nil, "fields to return")
	cmd.Flags().IntVar(&concurrency, "concurrency", constants.DefaultConcurrencyLimit, "parallel requests for several ids")

	return cmd
}

func newItemsCreateCommand() *cobra.Command {
	var data string

	cmd := &cobra.Command{
		Use:   "create COLLECTION",
		Short: "Create an item",
		Long:  "Create an item from a JSON object passed with --data, or read from stdin with --data -",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var item directus.Item

			err := readJSONInput(data, cmd.InOrStdin(), &item)
			if err != nil {
				return err
			}

			sdk, err := newSDK()
			if err != nil {
				return err
			}
			defer func() { _ = sdk.Close() }()

			created, err := rdk.Items[directus.Item](sdk, args[0]).CreateOne(context.Background(), &item, nil)
			if err != nil {
				return fmt.Errorf("failed to create item: %w", err)
			}

			return renderItem(cmd, *created)
		},
	}

	cmd.Flags().StringVarP(&data, "data", "d", "-", "item as JSON, - reads stdin")

	return cmd
}

func newItemsUpdateCommand() *cobra.Command {
	var data string

	cmd := &cobra.Command{
		Use:   "update COLLECTION ID",
		Short: "Update an item",
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

			updated, err := rdk.Items[directus.Item](sdk, args[0]).UpdateOne(context.Background(), args[1], patch, nil)
			if err != nil {
				return fmt.Errorf("failed to update item: %w", err)
			}

			return renderItem(cmd, *updated)
		},
	}

	cmd.Flags().StringVarP(&data, "data", "d", "-", "patch as JSON, - reads stdin")

	return cmd
}

func newItemsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete COLLECTION ID...",
		Short: "Delete items",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sdk, err := newSDK()
			if err != nil {
				return err
			}
			defer func() { _ = sdk.Close() }()

			items := rdk.Items[directus.Item](sdk, args[0])
			ids := args[1:]

			if len(ids) == 1 {
				err = items.DeleteOne(context.Background(), ids[0])
			} else {
				err = items.DeleteMany(context.Background(), ids)
			}

			if err != nil {
				return fmt.Errorf("failed to delete items: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d item(s) from %s\n", len(ids), args[0])

			return nil
		},
	}
}

func renderItems(cmd *cobra.Command, records []directus.Item, fields []string) error {
	rows := make([]map[string]any, 0, len(records))
	for _, record := range records {
		rows = append(rows, record)
	}

	return render(cmd.OutOrStdout(), outputFormat(), records, recordsTable(rows, fields))
}

func renderItem(cmd *cobra.Command, record directus.Item) error {
	return render(cmd.OutOrStdout(), outputFormat(), record, propertiesTable(record))
}
