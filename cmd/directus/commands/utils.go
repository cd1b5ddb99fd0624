package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// defaultRandomLength is the length of random strings when none is given.
const defaultRandomLength = 32

// NewUtilsCommand creates the utils command group.
func NewUtilsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "utils",
		Short: "Server-side utilities",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "random [LENGTH]",
		Short: "Generate a random string",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			length := defaultRandomLength

			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid length %q: %w", args[0], err)
				}

				length = n
			}

			sdk, err := newSDK()
			if err != nil {
				return err
			}
			defer func() { _ = sdk.Close() }()

			value, err := sdk.Utils().RandomString(context.Background(), length)
			if err != nil {
				return fmt.Errorf("failed to generate random string: %w", err)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), value)

			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "hash VALUE",
		Short: "Hash a value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sdk, err := newSDK()
			if err != nil {
				return err
			}
			defer func() { _ = sdk.Close() }()

			hash, err := sdk.Utils().GenerateHash(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to hash value: %w", err)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), hash)

			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "verify VALUE HASH",
		Short: "Verify a value against a hash",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sdk, err := newSDK()
			if err != nil {
				return err
			}
			defer func() { _ = sdk.Close() }()

			ok, err := sdk.Utils().VerifyHash(context.Background(), args[0], args[1])
			if err != nil {
				return fmt.Errorf("failed to verify hash: %w", err)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), ok)

			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "revert REVISION",
		Short: "Revert an item to a revision",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sdk, err := newSDK()
			if err != nil {
				return err
			}
			defer func() { _ = sdk.Close() }()

			err = sdk.Utils().Revert(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to revert: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Reverted to revision %s\n", args[0])

			return nil
		},
	})

	return cmd
}
