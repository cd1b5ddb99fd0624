package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fivetwenty-io/directus-sdk/internal/constants"
	"github.com/fivetwenty-io/directus-sdk/pkg/directus"
)

// UsersClient implements directus.UsersClient.
type UsersClient struct {
	*ItemsClient[directus.User]

	invites *UserInvitesClient
	me      *UserMeClient
}

var _ directus.UsersClient = (*UsersClient)(nil)

// NewUsersClient creates a new users client.
func NewUsersClient(transport directus.Transport) *UsersClient {
	return &UsersClient{
		ItemsClient: NewItemsClient[directus.User](transport, "directus_users"),
		invites:     &UserInvitesClient{transport: transport},
		me:          &UserMeClient{transport: transport, tfa: &UserTFAClient{transport: transport}},
	}
}

// Invites implements directus.UsersClient.Invites.
func (c *UsersClient) Invites() directus.UserInvitesClient {
	return c.invites
}

// Me implements directus.UsersClient.Me.
func (c *UsersClient) Me() directus.UserMeClient {
	return c.me
}

// UserInvitesClient implements directus.UserInvitesClient.
type UserInvitesClient struct {
	transport directus.Transport
}

// Send implements directus.UserInvitesClient.Send.
func (c *UserInvitesClient) Send(ctx context.Context, emails []string, role, inviteURL string) error {
	if len(emails) == 0 {
		return directus.Required("email")
	}

	if role == "" {
		return directus.Required("role")
	}

	body := map[string]any{"email": emails, "role": role}
	if inviteURL != "" {
		body["invite_url"] = inviteURL
	}

	_, err := c.transport.Send(ctx, http.MethodPost, "/users/invite", body, nil)
	if err != nil {
		return fmt.Errorf("inviting %d users: %w", len(emails), err)
	}

	return nil
}

// Accept implements directus.UserInvitesClient.Accept.
func (c *UserInvitesClient) Accept(ctx context.Context, token, password string) error {
	if token == "" {
		return directus.Required("token")
	}

	if password == "" {
		return directus.Required("password")
	}

	body := map[string]any{"token": token, "password": password}

	_, err := c.transport.Send(ctx, http.MethodPost, "/users/invite/accept", body, nil)
	if err != nil {
		return fmt.Errorf("accepting invite: %w", err)
	}

	return nil
}

// UserMeClient implements directus.UserMeClient.
type UserMeClient struct {
	transport directus.Transport
	tfa       *UserTFAClient
}

// Read implements directus.UserMeClient.Read.
func (c *UserMeClient) Read(ctx context.Context, query *directus.Query) (*directus.User, error) {
	values, err := queryValues(query)
	if err != nil {
		return nil, err
	}

	resp, err := c.transport.Send(ctx, http.MethodGet, constants.PathUsersMe, nil, values)
	if err != nil {
		return nil, fmt.Errorf("reading current user: %w", err)
	}

	return decodeOne[directus.User](resp, "user")
}

// Update implements directus.UserMeClient.Update.
func (c *UserMeClient) Update(ctx context.Context, patch any, query *directus.Query) (*directus.User, error) {
	values, err := queryValues(query)
	if err != nil {
		return nil, err
	}

	resp, err := c.transport.Send(ctx, http.MethodPatch, constants.PathUsersMe, patch, values)
	if err != nil {
		return nil, fmt.Errorf("updating current user: %w", err)
	}

	return decodeOne[directus.User](resp, "user")
}

// TFA implements directus.UserMeClient.TFA.
func (c *UserMeClient) TFA() directus.UserTFAClient {
	return c.tfa
}

// UserTFAClient implements directus.UserTFAClient.
type UserTFAClient struct {
	transport directus.Transport
}

// Generate implements directus.UserTFAClient.Generate.
func (c *UserTFAClient) Generate(ctx context.Context, password string) (*directus.TFASecret, error) {
	if password == "" {
		return nil, directus.Required("password")
	}

	resp, err := c.transport.Send(ctx, http.MethodPost, constants.PathUsersMe+"/tfa/generate", map[string]any{"password": password}, nil)
	if err != nil {
		return nil, fmt.Errorf("generating two-factor secret: %w", err)
	}

	return decodeOne[directus.TFASecret](resp, "two-factor secret")
}

// Enable implements directus.UserTFAClient.Enable.
func (c *UserTFAClient) Enable(ctx context.Context, secret, otp string) error {
	if secret == "" {
		return directus.Required("secret")
	}

	if otp == "" {
		return directus.Required("otp")
	}

	body := map[string]any{"secret": secret, "otp": otp}

	_, err := c.transport.Send(ctx, http.MethodPost, constants.PathUsersMe+"/tfa/enable", body, nil)
	if err != nil {
		return fmt.Errorf("enabling two-factor authentication: %w", err)
	}

	return nil
}

// Disable implements directus.UserTFAClient.Disable.
func (c *UserTFAClient) Disable(ctx context.Context, otp string) error {
	if otp == "" {
		return directus.Required("otp")
	}

	_, err := c.transport.Send(ctx, http.MethodPost, constants.PathUsersMe+"/tfa/disable", map[string]any{"otp": otp}, nil)
	if err != nil {
		return fmt.Errorf("disabling two-factor authentication: %w", err)
	}

	return nil
}
