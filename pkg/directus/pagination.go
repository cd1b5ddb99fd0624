package directus

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/directus-sdk/internal/constants"
)

// ItemsIterator walks a collection page by page.
type ItemsIterator[T any] struct {
	ctx      context.Context
	client   ItemsClient[T]
	query    *Query
	pageSize int

	page    int
	buffer  []T
	index   int
	fetched int
	total   int
	done    bool
	err     error
}

// NewItemsIterator creates an iterator over the items matched by query.
// query's Page and Limit are managed by the iterator.
func NewItemsIterator[T any](ctx context.Context, client ItemsClient[T], query *Query, pageSize int) *ItemsIterator[T] {
	if pageSize <= 0 {
		pageSize = constants.DefaultPageSize
	}

	q := query.Clone()
	q.Offset = 0
	q.WithLimit(pageSize)

	if len(q.Meta) == 0 {
		q.WithMeta("filter_count")
	}

	return &ItemsIterator[T]{
		ctx:      ctx,
		client:   client,
		query:    q,
		pageSize: pageSize,
		total:    -1,
	}
}

// HasNext reports whether another item is available, fetching the next page
// when the buffer is exhausted. Check Err after HasNext returns false.
func (it *ItemsIterator[T]) HasNext() bool {
	if it.index < len(it.buffer) {
		return true
	}

	if it.done || it.err != nil {
		return false
	}

	it.fetchNext()

	return it.index < len(it.buffer)
}

// Next returns the next item.
func (it *ItemsIterator[T]) Next() (*T, error) {
	if !it.HasNext() {
		if it.err != nil {
			return nil, it.err
		}

		return nil, ErrNoMoreItems
	}

	item := &it.buffer[it.index]
	it.index++

	return item, nil
}

// Err returns the error that stopped iteration, if any.
func (it *ItemsIterator[T]) Err() error {
	return it.err
}

func (it *ItemsIterator[T]) fetchNext() {
	it.page++
	it.query.Page = it.page

	resp, err := it.client.ReadByQuery(it.ctx, it.query)
	if err != nil {
		it.err = fmt.Errorf("fetching page %d: %w", it.page, err)

		return
	}

	it.buffer = resp.Data
	it.index = 0
	it.fetched += len(resp.Data)

	if resp.Meta != nil && resp.Meta.FilterCount != nil {
		it.total = *resp.Meta.FilterCount
	}

	if len(resp.Data) < it.pageSize || (it.total >= 0 && it.fetched >= it.total) {
		it.done = true
	}
}

// FetchAllItems collects every item matched by query.
func FetchAllItems[T any](ctx context.Context, client ItemsClient[T], query *Query, pageSize int) ([]T, error) {
	it := NewItemsIterator(ctx, client, query, pageSize)

	var all []T

	for it.HasNext() {
		item, err := it.Next()
		if err != nil {
			return nil, err
		}

		all = append(all, *item)
	}

	if err := it.Err(); err != nil {
		return nil, err
	}

	return all, nil
}
