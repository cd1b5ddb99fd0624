package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/directus-sdk/pkg/directus"
)

// NewUsersCommand creates the users command group.
func NewUsersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "users",
		Aliases: []string{"user"},
		Short:   "Manage users",
	}

	cmd.AddCommand(newUsersListCommand())
	cmd.AddCommand(newUsersGetCommand())
	cmd.AddCommand(newUsersMeCommand())
	cmd.AddCommand(newUsersInviteCommand())

	return cmd
}

func newUsersListCommand() *cobra.Command {
	flags := &queryFlags{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
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

			var users []directus.User

			if flags.all {
				users, err = directus.FetchAllItems[directus.User](context.Background(), sdk.Users(), query, flags.limit)
			} else {
				var page *directus.ManyItems[directus.User]

				page, err = sdk.Users().ReadByQuery(context.Background(), query)
				if page != nil {
					users = page.Data
				}
			}

			if err != nil {
				return fmt.Errorf("failed to list users: %w", err)
			}

			return render(cmd.OutOrStdout(), outputFormat(), users, usersTable(users))
		},
	}

	flags.register(cmd)

	return cmd
}

func usersTable(users []directus.User) func(*table) {
	return func(t *table) {
		t.header("ID", "Email", "Name", "Status", "Role")

		for _, u := range users {
			t.row(u.ID, u.Email, fmt.Sprintf("%s %s", u.FirstName, u.LastName), u.Status, cell(u.Role))
		}
	}
}

func newUsersGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Get a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sdk, err := newSDK()
			if err != nil {
				return err
			}
			defer func() { _ = sdk.Close() }()

			user, err := sdk.Users().ReadOne(context.Background(), args[0], nil)
			if err != nil {
				return fmt.Errorf("failed to get user: %w", err)
			}

			return render(cmd.OutOrStdout(), outputFormat(), user, usersTable([]directus.User{*user}))
		},
	}
}

func newUsersMeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the current user",
		RunE: func(cmd *cobra.Command, args []string) error {
			sdk, err := newSDK()
			if err != nil {
				return err
			}
			defer func() { _ = sdk.Close() }()

			user, err := sdk.Users().Me().Read(context.Background(), nil)
			if err != nil {
				return fmt.Errorf("failed to get current user: %w", err)
			}

			return render(cmd.OutOrStdout(), outputFormat(), user, usersTable([]directus.User{*user}))
		},
	}
}

func newUsersInviteCommand() *cobra.Command {
	var (
		role      string
		inviteURL string
	)

	cmd := &cobra.Command{
		Use:   "invite EMAIL...",
		Short: "Invite users by email",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sdk, err := newSDK()
			if err != nil {
				return err
			}
			defer func() { _ = sdk.Close() }()

			err = sdk.Users().Invites().Send(context.Background(), args, role, inviteURL)
			if err != nil {
				return fmt.Errorf("failed to invite users: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Invited %d user(s)\n", len(args))

			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", "", "role ID for the invited users")
	cmd.Flags().StringVar(&inviteURL, "invite-url", "", "URL the invitation links to")
	_ = cmd.MarkFlagRequired("role")

	return cmd
}
