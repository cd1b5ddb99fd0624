package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/fivetwenty-io/directus-sdk/pkg/directus"
)

// envelope is the {"data": ...} wrapper of Directus responses.
type envelope[T any] struct {
	Data T `json:"data"`
}

// emptyBody reports whether resp carries no payload to decode.
func emptyBody(resp *directus.Response) bool {
	return resp == nil || resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(resp.Body)) == 0
}

// decodeOne unwraps a single item. A response without data yields nil.
func decodeOne[T any](resp *directus.Response, what string) (*T, error) {
	if emptyBody(resp) {
		return nil, nil //nolint:nilnil // an empty response carries no item
	}

	var env envelope[*T]

	err := json.Unmarshal(resp.Body, &env)
	if err != nil {
		return nil, fmt.Errorf("parsing %s response: %w", what, err)
	}

	return env.Data, nil
}

// decodeMany unwraps a list together with its metadata.
func decodeMany[T any](resp *directus.Response, what string) (*directus.ManyItems[T], error) {
	var items directus.ManyItems[T]

	if emptyBody(resp) {
		return &items, nil
	}

	err := json.Unmarshal(resp.Body, &items)
	if err != nil {
		return nil, fmt.Errorf("parsing %s list response: %w", what, err)
	}

	return &items, nil
}

// decodeList unwraps a list whose metadata is not needed.
func decodeList[T any](resp *directus.Response, what string) ([]T, error) {
	items, err := decodeMany[T](resp, what)
	if err != nil {
		return nil, err
	}

	return items.Data, nil
}

// queryValues encodes an optional query.
func queryValues(query *directus.Query) (url.Values, error) {
	if query == nil {
		return nil, nil
	}

	values, err := query.ToValues()
	if err != nil {
		return nil, fmt.Errorf("encoding query: %w", err)
	}

	return values, nil
}

// segment escapes a single path segment.
func segment(s string) string {
	return url.PathEscape(s)
}
