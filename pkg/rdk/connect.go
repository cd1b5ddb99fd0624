package rdk

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/directus-sdk/pkg/directus"
)

// NewWithToken creates an RDK that authenticates every request with a
// static token. The token is validated against the server first.
func NewWithToken(ctx context.Context, url, token string, options *Options) (*RDK, error) {
	r, err := New(url, options)
	if err != nil {
		return nil, err
	}

	err = r.Auth().Static(ctx, token)
	if err != nil {
		_ = r.Close()

		return nil, fmt.Errorf("failed to authenticate with token: %w", err)
	}

	return r, nil
}

// NewWithPassword creates an RDK and logs in with email and password.
func NewWithPassword(ctx context.Context, url, email, password string, options *Options) (*RDK, error) {
	r, err := New(url, options)
	if err != nil {
		return nil, err
	}

	_, err = r.Auth().Login(ctx, directus.LoginRequest{Email: email, Password: password})
	if err != nil {
		_ = r.Close()

		return nil, fmt.Errorf("failed to log in: %w", err)
	}

	return r, nil
}
