package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fivetwenty-io/directus-sdk/pkg/directus"
)

const fieldsPath = "/fields"

// FieldsClient implements directus.FieldsClient.
type FieldsClient struct {
	transport directus.Transport
}

var _ directus.FieldsClient = (*FieldsClient)(nil)

// NewFieldsClient creates a new fields client.
func NewFieldsClient(transport directus.Transport) *FieldsClient {
	return &FieldsClient{
		transport: transport,
	}
}

// ReadOne implements directus.FieldsClient.ReadOne.
func (c *FieldsClient) ReadOne(ctx context.Context, collection, field string) (*directus.Field, error) {
	path, err := fieldPath(collection, field)
	if err != nil {
		return nil, err
	}

	resp, err := c.transport.Send(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("reading field %s.%s: %w", collection, field, err)
	}

	return decodeOne[directus.Field](resp, "field")
}

// ReadMany implements directus.FieldsClient.ReadMany.
func (c *FieldsClient) ReadMany(ctx context.Context, collection string) ([]directus.Field, error) {
	if collection == "" {
		return nil, directus.Required("collection")
	}

	resp, err := c.transport.Send(ctx, http.MethodGet, fieldsPath+"/"+segment(collection), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("listing fields of %s: %w", collection, err)
	}

	return decodeList[directus.Field](resp, "fields")
}

// ReadAll implements directus.FieldsClient.ReadAll.
func (c *FieldsClient) ReadAll(ctx context.Context) ([]directus.Field, error) {
	resp, err := c.transport.Send(ctx, http.MethodGet, fieldsPath, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("listing fields: %w", err)
	}

	return decodeList[directus.Field](resp, "fields")
}

// CreateOne implements directus.FieldsClient.CreateOne.
func (c *FieldsClient) CreateOne(ctx context.Context, collection string, field *directus.Field) (*directus.Field, error) {
	if collection == "" {
		return nil, directus.Required("collection")
	}

	if field == nil || field.Field == "" {
		return nil, directus.Required("field")
	}

	resp, err := c.transport.Send(ctx, http.MethodPost, fieldsPath+"/"+segment(collection), field, nil)
	if err != nil {
		return nil, fmt.Errorf("creating field %s.%s: %w", collection, field.Field, err)
	}

	return decodeOne[directus.Field](resp, "field")
}

// UpdateOne implements directus.FieldsClient.UpdateOne.
func (c *FieldsClient) UpdateOne(ctx context.Context, collection, field string, patch any) (*directus.Field, error) {
	path, err := fieldPath(collection, field)
	if err != nil {
		return nil, err
	}

	resp, err := c.transport.Send(ctx, http.MethodPatch, path, patch, nil)
	if err != nil {
		return nil, fmt.Errorf("updating field %s.%s: %w", collection, field, err)
	}

	return decodeOne[directus.Field](resp, "field")
}

// DeleteOne implements directus.FieldsClient.DeleteOne.
func (c *FieldsClient) DeleteOne(ctx context.Context, collection, field string) error {
	path, err := fieldPath(collection, field)
	if err != nil {
		return err
	}

	_, err = c.transport.Send(ctx, http.MethodDelete, path, nil, nil)
	if err != nil {
		return fmt.Errorf("deleting field %s.%s: %w", collection, field, err)
	}

	return nil
}

func fieldPath(collection, field string) (string, error) {
	return nestedPath(fieldsPath, collection, field)
}

// nestedPath builds base/collection/field, rejecting empty segments.
func nestedPath(base, collection, field string) (string, error) {
	if collection == "" {
		return "", directus.Required("collection")
	}

	if field == "" {
		return "", directus.Required("field")
	}

	return base + "/" + segment(collection) + "/" + segment(field), nil
}
