package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/fivetwenty-io/directus-sdk/pkg/directus"
)

// ServerClient implements directus.ServerClient.
type ServerClient struct {
	transport directus.Transport
}

var _ directus.ServerClient = (*ServerClient)(nil)

// NewServerClient creates a new server client.
func NewServerClient(transport directus.Transport) *ServerClient {
	return &ServerClient{
		transport: transport,
	}
}

// Ping implements directus.ServerClient.Ping. The endpoint answers with
// plain text ("pong").
func (c *ServerClient) Ping(ctx context.Context) (string, error) {
	resp, err := c.transport.Send(ctx, http.MethodGet, "/server/ping", nil, nil)
	if err != nil {
		return "", fmt.Errorf("pinging server: %w", err)
	}

	return strings.TrimSpace(string(resp.Body)), nil
}

// Info implements directus.ServerClient.Info.
func (c *ServerClient) Info(ctx context.Context) (*directus.ServerInfo, error) {
	resp, err := c.transport.Send(ctx, http.MethodGet, "/server/info", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("getting server info: %w", err)
	}

	return decodeOne[directus.ServerInfo](resp, "server info")
}

// Health implements directus.ServerClient.Health. The health document is
// not wrapped in a data envelope, and an unhealthy server answers 503 with
// the same document.
func (c *ServerClient) Health(ctx context.Context) (*directus.ServerHealth, error) {
	resp, err := c.transport.Send(ctx, http.MethodGet, "/server/health", nil, nil)
	if err != nil && (resp == nil || len(resp.Body) == 0) {
		return nil, fmt.Errorf("getting server health: %w", err)
	}

	var health directus.ServerHealth

	if decodeErr := json.Unmarshal(resp.Body, &health); decodeErr != nil {
		if err != nil {
			return nil, fmt.Errorf("getting server health: %w", err)
		}

		return nil, fmt.Errorf("parsing server health response: %w", decodeErr)
	}

	if err != nil {
		return &health, fmt.Errorf("getting server health: %w", err)
	}

	return &health, nil
}

// OAS implements directus.ServerClient.OAS.
func (c *ServerClient) OAS(ctx context.Context) (map[string]any, error) {
	resp, err := c.transport.Send(ctx, http.MethodGet, "/server/specs/oas", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("getting OpenAPI document: %w", err)
	}

	var doc map[string]any

	err = json.Unmarshal(resp.Body, &doc)
	if err != nil {
		return nil, fmt.Errorf("parsing OpenAPI document: %w", err)
	}

	// Some versions wrap the document in a data envelope.
	if data, ok := doc["data"].(map[string]any); ok && len(doc) == 1 {
		return data, nil
	}

	return doc, nil
}
