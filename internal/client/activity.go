package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fivetwenty-io/directus-sdk/pkg/directus"
)

const activityCommentPath = "/activity/comment"

// ActivityClient implements directus.ActivityClient.
type ActivityClient struct {
	*ItemsClient[directus.Activity]
}

var _ directus.ActivityClient = (*ActivityClient)(nil)

// NewActivityClient creates a new activity client.
func NewActivityClient(transport directus.Transport) *ActivityClient {
	return &ActivityClient{
		ItemsClient: NewItemsClient[directus.Activity](transport, "directus_activity"),
	}
}

// CreateComment implements directus.ActivityClient.CreateComment.
func (c *ActivityClient) CreateComment(ctx context.Context, comment *directus.Comment) (*directus.Activity, error) {
	if comment == nil || comment.Comment == "" {
		return nil, directus.Required("comment")
	}

	if comment.Collection == "" {
		return nil, directus.Required("collection")
	}

	if comment.Item == "" {
		return nil, directus.Required("item")
	}

	resp, err := c.transport.Send(ctx, http.MethodPost, activityCommentPath, comment, nil)
	if err != nil {
		return nil, fmt.Errorf("creating comment: %w", err)
	}

	return decodeOne[directus.Activity](resp, "comment")
}

// UpdateComment implements directus.ActivityClient.UpdateComment.
func (c *ActivityClient) UpdateComment(ctx context.Context, id, comment string) (*directus.Activity, error) {
	if id == "" {
		return nil, directus.Required("id")
	}

	resp, err := c.transport.Send(ctx, http.MethodPatch, activityCommentPath+"/"+segment(id), map[string]any{"comment": comment}, nil)
	if err != nil {
		return nil, fmt.Errorf("updating comment %s: %w", id, err)
	}

	return decodeOne[directus.Activity](resp, "comment")
}

// DeleteComment implements directus.ActivityClient.DeleteComment.
func (c *ActivityClient) DeleteComment(ctx context.Context, id string) error {
	if id == "" {
		return directus.Required("id")
	}

	_, err := c.transport.Send(ctx, http.MethodDelete, activityCommentPath+"/"+segment(id), nil, nil)
	if err != nil {
		return fmt.Errorf("deleting comment %s: %w", id, err)
	}

	return nil
}
