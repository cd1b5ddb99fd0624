package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fivetwenty-io/directus-sdk/pkg/directus"
)

// SingletonClient implements directus.SingletonClient.
type SingletonClient[T any] struct {
	transport  directus.Transport
	collection string
	path       string
}

// NewSingletonClient creates a client for a single-item collection.
func NewSingletonClient[T any](transport directus.Transport, collection string) *SingletonClient[T] {
	return &SingletonClient[T]{
		transport:  transport,
		collection: collection,
		path:       ItemsPath(collection),
	}
}

// NewSettingsClient creates the client for directus_settings.
func NewSettingsClient(transport directus.Transport) *SingletonClient[directus.Settings] {
	return NewSingletonClient[directus.Settings](transport, "directus_settings")
}

// Read implements directus.SingletonClient.Read.
func (c *SingletonClient[T]) Read(ctx context.Context, query *directus.Query) (*T, error) {
	if c.collection == "" {
		return nil, directus.Required("collection")
	}

	values, err := queryValues(query)
	if err != nil {
		return nil, err
	}

	resp, err := c.transport.Send(ctx, http.MethodGet, c.path, nil, values)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", c.collection, err)
	}

	return decodeOne[T](resp, c.collection)
}

// Update implements directus.SingletonClient.Update.
func (c *SingletonClient[T]) Update(ctx context.Context, patch any, query *directus.Query) (*T, error) {
	if c.collection == "" {
		return nil, directus.Required("collection")
	}

	values, err := queryValues(query)
	if err != nil {
		return nil, err
	}

	resp, err := c.transport.Send(ctx, http.MethodPatch, c.path, patch, values)
	if err != nil {
		return nil, fmt.Errorf("updating %s: %w", c.collection, err)
	}

	return decodeOne[T](resp, c.collection)
}
