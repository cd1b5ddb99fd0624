package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fivetwenty-io/directus-sdk/pkg/directus"
)

const relationsPath = "/relations"

// RelationsClient implements directus.RelationsClient.
type RelationsClient struct {
	transport directus.Transport
}

var _ directus.RelationsClient = (*RelationsClient)(nil)

// NewRelationsClient creates a new relations client.
func NewRelationsClient(transport directus.Transport) *RelationsClient {
	return &RelationsClient{
		transport: transport,
	}
}

// ReadOne implements directus.RelationsClient.ReadOne.
func (c *RelationsClient) ReadOne(ctx context.Context, collection, field string) (*directus.Relation, error) {
	path, err := nestedPath(relationsPath, collection, field)
	if err != nil {
		return nil, err
	}

	resp, err := c.transport.Send(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("reading relation %s.%s: %w", collection, field, err)
	}

	return decodeOne[directus.Relation](resp, "relation")
}

// ReadMany implements directus.RelationsClient.ReadMany.
func (c *RelationsClient) ReadMany(ctx context.Context, collection string) ([]directus.Relation, error) {
	if collection == "" {
		return nil, directus.Required("collection")
	}

	resp, err := c.transport.Send(ctx, http.MethodGet, relationsPath+"/"+segment(collection), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("listing relations of %s: %w", collection, err)
	}

	return decodeList[directus.Relation](resp, "relations")
}

// ReadAll implements directus.RelationsClient.ReadAll.
func (c *RelationsClient) ReadAll(ctx context.Context) ([]directus.Relation, error) {
	resp, err := c.transport.Send(ctx, http.MethodGet, relationsPath, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("listing relations: %w", err)
	}

	return decodeList[directus.Relation](resp, "relations")
}

// CreateOne implements directus.RelationsClient.CreateOne.
func (c *RelationsClient) CreateOne(ctx context.Context, relation *directus.Relation) (*directus.Relation, error) {
	if relation == nil || relation.Collection == "" {
		return nil, directus.Required("collection")
	}

	if relation.Field == "" {
		return nil, directus.Required("field")
	}

	resp, err := c.transport.Send(ctx, http.MethodPost, relationsPath, relation, nil)
	if err != nil {
		return nil, fmt.Errorf("creating relation %s.%s: %w", relation.Collection, relation.Field, err)
	}

	return decodeOne[directus.Relation](resp, "relation")
}

// UpdateOne implements directus.RelationsClient.UpdateOne.
func (c *RelationsClient) UpdateOne(ctx context.Context, collection, field string, patch any) (*directus.Relation, error) {
	path, err := nestedPath(relationsPath, collection, field)
	if err != nil {
		return nil, err
	}

	resp, err := c.transport.Send(ctx, http.MethodPatch, path, patch, nil)
	if err != nil {
		return nil, fmt.Errorf("updating relation %s.%s: %w", collection, field, err)
	}

	return decodeOne[directus.Relation](resp, "relation")
}

// DeleteOne implements directus.RelationsClient.DeleteOne.
func (c *RelationsClient) DeleteOne(ctx context.Context, collection, field string) error {
	path, err := nestedPath(relationsPath, collection, field)
	if err != nil {
		return err
	}

	_, err = c.transport.Send(ctx, http.MethodDelete, path, nil, nil)
	if err != nil {
		return fmt.Errorf("deleting relation %s.%s: %w", collection, field, err)
	}

	return nil
}
