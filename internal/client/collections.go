package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fivetwenty-io/directus-sdk/pkg/directus"
)

const collectionsPath = "/collections"

// CollectionsClient implements directus.CollectionsClient.
type CollectionsClient struct {
	transport directus.Transport
}

var _ directus.CollectionsClient = (*CollectionsClient)(nil)

// NewCollectionsClient creates a new collections client.
func NewCollectionsClient(transport directus.Transport) *CollectionsClient {
	return &CollectionsClient{
		transport: transport,
	}
}

// ReadOne implements directus.CollectionsClient.ReadOne.
func (c *CollectionsClient) ReadOne(ctx context.Context, collection string) (*directus.Collection, error) {
	if collection == "" {
		return nil, directus.Required("collection")
	}

	resp, err := c.transport.Send(ctx, http.MethodGet, collectionsPath+"/"+segment(collection), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("reading collection %s: %w", collection, err)
	}

	return decodeOne[directus.Collection](resp, "collection")
}

// ReadAll implements directus.CollectionsClient.ReadAll.
func (c *CollectionsClient) ReadAll(ctx context.Context) ([]directus.Collection, error) {
	resp, err := c.transport.Send(ctx, http.MethodGet, collectionsPath, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("listing collections: %w", err)
	}

	return decodeList[directus.Collection](resp, "collections")
}

// CreateOne implements directus.CollectionsClient.CreateOne.
func (c *CollectionsClient) CreateOne(ctx context.Context, collection *directus.Collection) (*directus.Collection, error) {
	if collection == nil || collection.Collection == "" {
		return nil, directus.Required("collection")
	}

	resp, err := c.transport.Send(ctx, http.MethodPost, collectionsPath, collection, nil)
	if err != nil {
		return nil, fmt.Errorf("creating collection %s: %w", collection.Collection, err)
	}

	return decodeOne[directus.Collection](resp, "collection")
}

// CreateMany implements directus.CollectionsClient.CreateMany.
func (c *CollectionsClient) CreateMany(ctx context.Context, collections []directus.Collection) ([]directus.Collection, error) {
	if len(collections) == 0 {
		return nil, directus.Required("collections")
	}

	resp, err := c.transport.Send(ctx, http.MethodPost, collectionsPath, collections, nil)
	if err != nil {
		return nil, fmt.Errorf("creating %d collections: %w", len(collections), err)
	}

	return decodeList[directus.Collection](resp, "collections")
}

// UpdateOne implements directus.CollectionsClient.UpdateOne.
func (c *CollectionsClient) UpdateOne(ctx context.Context, collection string, patch any) (*directus.Collection, error) {
	if collection == "" {
		return nil, directus.Required("collection")
	}

	resp, err := c.transport.Send(ctx, http.MethodPatch, collectionsPath+"/"+segment(collection), patch, nil)
	if err != nil {
		return nil, fmt.Errorf("updating collection %s: %w", collection, err)
	}

	return decodeOne[directus.Collection](resp, "collection")
}

// DeleteOne implements directus.CollectionsClient.DeleteOne.
func (c *CollectionsClient) DeleteOne(ctx context.Context, collection string) error {
	if collection == "" {
		return directus.Required("collection")
	}

	_, err := c.transport.Send(ctx, http.MethodDelete, collectionsPath+"/"+segment(collection), nil, nil)
	if err != nil {
		return fmt.Errorf("deleting collection %s: %w", collection, err)
	}

	return nil
}
