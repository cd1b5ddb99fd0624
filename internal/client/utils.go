package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/fivetwenty-io/directus-sdk/pkg/directus"
)

// UtilsClient implements directus.UtilsClient.
type UtilsClient struct {
	transport directus.Transport
}

var _ directus.UtilsClient = (*UtilsClient)(nil)

// NewUtilsClient creates a new utils client.
func NewUtilsClient(transport directus.Transport) *UtilsClient {
	return &UtilsClient{
		transport: transport,
	}
}

// RandomString implements directus.UtilsClient.RandomString. A length of
// zero or less uses the server default.
func (c *UtilsClient) RandomString(ctx context.Context, length int) (string, error) {
	var query url.Values
	if length > 0 {
		query = url.Values{"length": []string{strconv.Itoa(length)}}
	}

	resp, err := c.transport.Send(ctx, http.MethodGet, "/utils/random/string", nil, query)
	if err != nil {
		return "", fmt.Errorf("generating random string: %w", err)
	}

	return decodeString(resp, "random string")
}

// GenerateHash implements directus.UtilsClient.GenerateHash.
func (c *UtilsClient) GenerateHash(ctx context.Context, value string) (string, error) {
	if value == "" {
		return "", directus.Required("string")
	}

	resp, err := c.transport.Send(ctx, http.MethodPost, "/utils/hash/generate", map[string]any{"string": value}, nil)
	if err != nil {
		return "", fmt.Errorf("generating hash: %w", err)
	}

	return decodeString(resp, "hash")
}

// VerifyHash implements directus.UtilsClient.VerifyHash.
func (c *UtilsClient) VerifyHash(ctx context.Context, value, hash string) (bool, error) {
	if value == "" {
		return false, directus.Required("string")
	}

	if hash == "" {
		return false, directus.Required("hash")
	}

	body := map[string]any{"string": value, "hash": hash}

	resp, err := c.transport.Send(ctx, http.MethodPost, "/utils/hash/verify", body, nil)
	if err != nil {
		return false, fmt.Errorf("verifying hash: %w", err)
	}

	ok, err := decodeOne[bool](resp, "hash verification")
	if err != nil {
		return false, err
	}

	return ok != nil && *ok, nil
}

// Sort implements directus.UtilsClient.Sort. item is moved to the position
// of to within collection.
func (c *UtilsClient) Sort(ctx context.Context, collection, item, to string) error {
	if collection == "" {
		return directus.Required("collection")
	}

	if item == "" {
		return directus.Required("item")
	}

	if to == "" {
		return directus.Required("to")
	}

	body := map[string]any{"item": item, "to": to}

	_, err := c.transport.Send(ctx, http.MethodPost, "/utils/sort/"+segment(collection), body, nil)
	if err != nil {
		return fmt.Errorf("sorting %s: %w", collection, err)
	}

	return nil
}

// Revert implements directus.UtilsClient.Revert.
func (c *UtilsClient) Revert(ctx context.Context, revision string) error {
	if revision == "" {
		return directus.Required("revision")
	}

	_, err := c.transport.Send(ctx, http.MethodPost, "/utils/revert/"+segment(revision), nil, nil)
	if err != nil {
		return fmt.Errorf("reverting to revision %s: %w", revision, err)
	}

	return nil
}

func decodeString(resp *directus.Response, what string) (string, error) {
	value, err := decodeOne[string](resp, what)
	if err != nil {
		return "", err
	}

	if value == nil {
		return "", fmt.Errorf("parsing %s response: %w", what, directus.ErrEmptyResponse)
	}

	return *value, nil
}
