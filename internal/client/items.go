package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/fivetwenty-io/directus-sdk/internal/constants"
	"github.com/fivetwenty-io/directus-sdk/pkg/directus"
)

// ItemsClient implements directus.ItemsClient for one collection.
type ItemsClient[T any] struct {
	transport  directus.Transport
	collection string
	basePath   string
	primaryKey string
}

var _ directus.ItemsClient[directus.Item] = (*ItemsClient[directus.Item])(nil)

// NewItemsClient creates a client for collection. System collections
// (directus_*) are served from their own endpoints, e.g. directus_users
// from /users.
func NewItemsClient[T any](transport directus.Transport, collection string) *ItemsClient[T] {
	return &ItemsClient[T]{
		transport:  transport,
		collection: collection,
		basePath:   ItemsPath(collection),
		primaryKey: constants.DefaultPrimaryKey,
	}
}

// ItemsPath returns the endpoint serving collection.
func ItemsPath(collection string) string {
	if name, ok := strings.CutPrefix(collection, constants.SystemCollectionPrefix); ok {
		return "/" + segment(name)
	}

	return "/items/" + segment(collection)
}

// Collection returns the collection name.
func (c *ItemsClient[T]) Collection() string {
	return c.collection
}

// ReadOne implements directus.ItemsClient.ReadOne.
func (c *ItemsClient[T]) ReadOne(ctx context.Context, id string, query *directus.Query) (*T, error) {
	if err := c.validate(id); err != nil {
		return nil, err
	}

	values, err := queryValues(query)
	if err != nil {
		return nil, err
	}

	resp, err := c.transport.Send(ctx, http.MethodGet, c.itemPath(id), nil, values)
	if err != nil {
		return nil, fmt.Errorf("reading %s item %s: %w", c.collection, id, err)
	}

	return decodeOne[T](resp, c.collection+" item")
}

// ReadMany implements directus.ItemsClient.ReadMany. ids are matched on the
// primary key with an _in filter merged into query.
func (c *ItemsClient[T]) ReadMany(ctx context.Context, ids []string, query *directus.Query) (*directus.ManyItems[T], error) {
	if c.collection == "" {
		return nil, directus.Required("collection")
	}

	if len(ids) == 0 {
		return nil, directus.Required("ids")
	}

	q := query.Clone().WithFilter(c.primaryKey, map[string]any{"_in": ids})

	return c.readByQuery(ctx, q, fmt.Sprintf("reading %d %s items", len(ids), c.collection))
}

// ReadByQuery implements directus.ItemsClient.ReadByQuery.
func (c *ItemsClient[T]) ReadByQuery(ctx context.Context, query *directus.Query) (*directus.ManyItems[T], error) {
	if c.collection == "" {
		return nil, directus.Required("collection")
	}

	return c.readByQuery(ctx, query, "listing "+c.collection+" items")
}

func (c *ItemsClient[T]) readByQuery(ctx context.Context, query *directus.Query, op string) (*directus.ManyItems[T], error) {
	values, err := queryValues(query)
	if err != nil {
		return nil, err
	}

	resp, err := c.transport.Send(ctx, http.MethodGet, c.basePath, nil, values)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return decodeMany[T](resp, c.collection)
}

// CreateOne implements directus.ItemsClient.CreateOne.
func (c *ItemsClient[T]) CreateOne(ctx context.Context, item *T, query *directus.Query) (*T, error) {
	if c.collection == "" {
		return nil, directus.Required("collection")
	}

	if item == nil {
		return nil, directus.Required("item")
	}

	values, err := queryValues(query)
	if err != nil {
		return nil, err
	}

	resp, err := c.transport.Send(ctx, http.MethodPost, c.basePath, item, values)
	if err != nil {
		return nil, fmt.Errorf("creating %s item: %w", c.collection, err)
	}

	return decodeOne[T](resp, c.collection+" item")
}

// CreateMany implements directus.ItemsClient.CreateMany.
func (c *ItemsClient[T]) CreateMany(ctx context.Context, items []T, query *directus.Query) (*directus.ManyItems[T], error) {
	if c.collection == "" {
		return nil, directus.Required("collection")
	}

	if len(items) == 0 {
		return nil, directus.Required("items")
	}

	values, err := queryValues(query)
	if err != nil {
		return nil, err
	}

	resp, err := c.transport.Send(ctx, http.MethodPost, c.basePath, items, values)
	if err != nil {
		return nil, fmt.Errorf("creating %d %s items: %w", len(items), c.collection, err)
	}

	return decodeMany[T](resp, c.collection)
}

// UpdateOne implements directus.ItemsClient.UpdateOne.
func (c *ItemsClient[T]) UpdateOne(ctx context.Context, id string, patch any, query *directus.Query) (*T, error) {
	if err := c.validate(id); err != nil {
		return nil, err
	}

	values, err := queryValues(query)
	if err != nil {
		return nil, err
	}

	resp, err := c.transport.Send(ctx, http.MethodPatch, c.itemPath(id), patch, values)
	if err != nil {
		return nil, fmt.Errorf("updating %s item %s: %w", c.collection, id, err)
	}

	return decodeOne[T](resp, c.collection+" item")
}

// UpdateMany implements directus.ItemsClient.UpdateMany.
func (c *ItemsClient[T]) UpdateMany(ctx context.Context, ids []string, patch any, query *directus.Query) (*directus.ManyItems[T], error) {
	if c.collection == "" {
		return nil, directus.Required("collection")
	}

	if len(ids) == 0 {
		return nil, directus.Required("ids")
	}

	values, err := queryValues(query)
	if err != nil {
		return nil, err
	}

	body := map[string]any{"keys": ids, "data": patch}

	resp, err := c.transport.Send(ctx, http.MethodPatch, c.basePath, body, values)
	if err != nil {
		return nil, fmt.Errorf("updating %d %s items: %w", len(ids), c.collection, err)
	}

	return decodeMany[T](resp, c.collection)
}

// UpdateByQuery implements directus.ItemsClient.UpdateByQuery. updateQuery
// selects the items to change; query shapes the returned items.
func (c *ItemsClient[T]) UpdateByQuery(ctx context.Context, updateQuery *directus.Query, patch any, query *directus.Query) (*directus.ManyItems[T], error) {
	if c.collection == "" {
		return nil, directus.Required("collection")
	}

	if updateQuery == nil {
		return nil, directus.Required("query")
	}

	values, err := queryValues(query)
	if err != nil {
		return nil, err
	}

	body := map[string]any{"query": updateQuery, "data": patch}

	resp, err := c.transport.Send(ctx, http.MethodPatch, c.basePath, body, values)
	if err != nil {
		return nil, fmt.Errorf("updating %s items by query: %w", c.collection, err)
	}

	return decodeMany[T](resp, c.collection)
}

// DeleteOne implements directus.ItemsClient.DeleteOne.
func (c *ItemsClient[T]) DeleteOne(ctx context.Context, id string) error {
	if err := c.validate(id); err != nil {
		return err
	}

	_, err := c.transport.Send(ctx, http.MethodDelete, c.itemPath(id), nil, nil)
	if err != nil {
		return fmt.Errorf("deleting %s item %s: %w", c.collection, id, err)
	}

	return nil
}

// DeleteMany implements directus.ItemsClient.DeleteMany.
func (c *ItemsClient[T]) DeleteMany(ctx context.Context, ids []string) error {
	if c.collection == "" {
		return directus.Required("collection")
	}

	if len(ids) == 0 {
		return directus.Required("ids")
	}

	_, err := c.transport.Send(ctx, http.MethodDelete, c.basePath, ids, nil)
	if err != nil {
		return fmt.Errorf("deleting %d %s items: %w", len(ids), c.collection, err)
	}

	return nil
}

func (c *ItemsClient[T]) validate(id string) error {
	if c.collection == "" {
		return directus.Required("collection")
	}

	if id == "" {
		return directus.Required("id")
	}

	return nil
}

func (c *ItemsClient[T]) itemPath(id string) string {
	return c.basePath + "/" + segment(id)
}
