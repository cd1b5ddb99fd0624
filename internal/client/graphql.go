package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/fivetwenty-io/directus-sdk/internal/constants"
	"github.com/fivetwenty-io/directus-sdk/pkg/directus"
)

// GraphQLClient implements directus.GraphQLClient.
type GraphQLClient struct {
	transport directus.Transport
}

var _ directus.GraphQLClient = (*GraphQLClient)(nil)

// NewGraphQLClient creates a new GraphQL client.
func NewGraphQLClient(transport directus.Transport) *GraphQLClient {
	return &GraphQLClient{
		transport: transport,
	}
}

// Items implements directus.GraphQLClient.Items.
func (c *GraphQLClient) Items(ctx context.Context, query string, variables map[string]any) (*directus.GraphQLResponse, error) {
	return c.execute(ctx, constants.PathGraphQL, query, variables)
}

// System implements directus.GraphQLClient.System.
func (c *GraphQLClient) System(ctx context.Context, query string, variables map[string]any) (*directus.GraphQLResponse, error) {
	return c.execute(ctx, constants.PathGraphQLSystem, query, variables)
}

// execute posts an operation. GraphQL errors are reported both in the
// returned response and as a *directus.GraphQLError, so partial data stays
// reachable.
func (c *GraphQLClient) execute(ctx context.Context, path, query string, variables map[string]any) (*directus.GraphQLResponse, error) {
	if query == "" {
		return nil, directus.Required("query")
	}

	body := &directus.GraphQLRequest{Query: query, Variables: variables}

	resp, err := c.transport.Send(ctx, http.MethodPost, path, body, nil)
	if err != nil && (resp == nil || len(resp.Body) == 0) {
		return nil, fmt.Errorf("executing GraphQL operation: %w", err)
	}

	var result directus.GraphQLResponse

	if decodeErr := json.Unmarshal(resp.Body, &result); decodeErr != nil {
		if err != nil {
			return nil, fmt.Errorf("executing GraphQL operation: %w", err)
		}

		return nil, fmt.Errorf("parsing GraphQL response: %w", decodeErr)
	}

	if len(result.Errors) > 0 {
		return &result, &directus.GraphQLError{Errors: result.Errors}
	}

	if err != nil {
		return &result, fmt.Errorf("executing GraphQL operation: %w", err)
	}

	return &result, nil
}
