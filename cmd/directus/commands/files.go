package commands

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/directus-sdk/pkg/directus"
)

// NewFilesCommand creates the files command group.
func NewFilesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files",
		Short: "Manage files",
	}

	cmd.AddCommand(newFilesListCommand())
	cmd.AddCommand(newFilesUploadCommand())
	cmd.AddCommand(newFilesImportCommand())

	return cmd
}

func filesTable(files []directus.File) func(*table) {
	return func(t *table) {
		t.header("ID", "Filename", "Type", "Size", "Title")

		for _, f := range files {
			t.row(f.ID, f.FilenameDownload, f.Type, f.Filesize.String(), f.Title)
		}
	}
}

func newFilesListCommand() *cobra.Command {
	flags := &queryFlags{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List files",
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

			page, err := sdk.Files().ReadByQuery(context.Background(), query)
			if err != nil {
				return fmt.Errorf("failed to list files: %w", err)
			}

			return render(cmd.OutOrStdout(), outputFormat(), page.Data, filesTable(page.Data))
		},
	}

	flags.register(cmd)

	return cmd
}

func newFilesUploadCommand() *cobra.Command {
	var (
		title  string
		folder string
	)

	cmd := &cobra.Command{
		Use:   "upload PATH",
		Short: "Upload a local file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := filepath.Clean(args[0])

			content, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("failed to open file: %w", err)
			}
			defer func() { _ = content.Close() }()

			fields := map[string]string{}
			if title != "" {
				fields["title"] = title
			}

			if folder != "" {
				fields["folder"] = folder
			}

			sdk, err := newSDK()
			if err != nil {
				return err
			}
			defer func() { _ = sdk.Close() }()

			file, err := sdk.Files().Upload(context.Background(), &directus.FileUpload{
				Filename:    filepath.Base(path),
				ContentType: mime.TypeByExtension(filepath.Ext(path)),
				Content:     content,
				Fields:      fields,
			})
			if err != nil {
				return fmt.Errorf("failed to upload file: %w", err)
			}

			return render(cmd.OutOrStdout(), outputFormat(), file, filesTable([]directus.File{*file}))
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "file title")
	cmd.Flags().StringVar(&folder, "folder", "", "folder ID")

	return cmd
}

func newFilesImportCommand() *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "import URL",
		Short: "Import a file from a URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sdk, err := newSDK()
			if err != nil {
				return err
			}
			defer func() { _ = sdk.Close() }()

			request := &directus.FileImport{URL: args[0]}
			if title != "" {
				request.Data = map[string]any{"title": title}
			}

			file, err := sdk.Files().Import(context.Background(), request)
			if err != nil {
				return fmt.Errorf("failed to import file: %w", err)
			}

			return render(cmd.OutOrStdout(), outputFormat(), file, filesTable([]directus.File{*file}))
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "file title")

	return cmd
}
