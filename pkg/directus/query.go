package directus

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Filter is a Directus filter object, e.g. {"status": {"_eq": "published"}}.
type Filter map[string]any

// Query holds the global query parameters understood by item endpoints.
type Query struct {
	Fields    []string
	Sort      []string
	Filter    Filter
	Search    string
	Limit     *int
	Offset    int
	Page      int
	Meta      []string
	Deep      map[string]any
	Alias     map[string]string
	GroupBy   []string
	Aggregate map[string][]string
	Export    string

	// Custom carries any parameter not modelled above.
	Custom url.Values
}

// NewQuery creates an empty query.
func NewQuery() *Query {
	return &Query{}
}

// WithFields appends fields to select.
func (q *Query) WithFields(fields ...string) *Query {
	q.Fields = append(q.Fields, fields...)

	return q
}

// WithSort appends sort keys; prefix a key with "-" for descending order.
func (q *Query) WithSort(keys ...string) *Query {
	q.Sort = append(q.Sort, keys...)

	return q
}

// WithFilter sets a filter rule on field. Rules for the same field replace
// each other.
func (q *Query) WithFilter(field string, rule any) *Query {
	if q.Filter == nil {
		q.Filter = Filter{}
	}

	q.Filter[field] = rule

	return q
}

// WithSearch sets the full-text search term.
func (q *Query) WithSearch(search string) *Query {
	q.Search = search

	return q
}

// WithLimit sets the page size; -1 returns every item.
func (q *Query) WithLimit(limit int) *Query {
	q.Limit = &limit

	return q
}

// WithOffset sets the number of items to skip.
func (q *Query) WithOffset(offset int) *Query {
	q.Offset = offset

	return q
}

// WithPage sets the 1-based page number.
func (q *Query) WithPage(page int) *Query {
	q.Page = page

	return q
}

// WithMeta requests metadata counts, e.g. "total_count" or "*".
func (q *Query) WithMeta(meta ...string) *Query {
	q.Meta = append(q.Meta, meta...)

	return q
}

// WithDeep sets a nested query for a relational field.
func (q *Query) WithDeep(field string, nested any) *Query {
	if q.Deep == nil {
		q.Deep = map[string]any{}
	}

	q.Deep[field] = nested

	return q
}

// WithAlias exposes field under alias.
func (q *Query) WithAlias(alias, field string) *Query {
	if q.Alias == nil {
		q.Alias = map[string]string{}
	}

	q.Alias[alias] = field

	return q
}

// WithGroupBy groups aggregate results by fields.
func (q *Query) WithGroupBy(fields ...string) *Query {
	q.GroupBy = append(q.GroupBy, fields...)

	return q
}

// WithAggregate adds an aggregate function over fields, e.g. ("count", "*").
func (q *Query) WithAggregate(function string, fields ...string) *Query {
	if q.Aggregate == nil {
		q.Aggregate = map[string][]string{}
	}

	q.Aggregate[function] = append(q.Aggregate[function], fields...)

	return q
}

// WithExport asks the server to return a file in format (json, csv, xml, yaml).
func (q *Query) WithExport(format string) *Query {
	q.Export = format

	return q
}

// With sets a custom query parameter.
func (q *Query) With(key, value string) *Query {
	if q.Custom == nil {
		q.Custom = url.Values{}
	}

	q.Custom.Set(key, value)

	return q
}

// Clone returns a copy safe to modify independently.
func (q *Query) Clone() *Query {
	if q == nil {
		return NewQuery()
	}

	clone := *q
	clone.Fields = append([]string(nil), q.Fields...)
	clone.Sort = append([]string(nil), q.Sort...)
	clone.Meta = append([]string(nil), q.Meta...)
	clone.GroupBy = append([]string(nil), q.GroupBy...)

	if q.Filter != nil {
		clone.Filter = make(Filter, len(q.Filter))
		for k, v := range q.Filter {
			clone.Filter[k] = v
		}
	}

	if q.Limit != nil {
		limit := *q.Limit
		clone.Limit = &limit
	}

	if q.Custom != nil {
		clone.Custom = make(url.Values, len(q.Custom))
		for k, v := range q.Custom {
			clone.Custom[k] = append([]string(nil), v...)
		}
	}

	return &clone
}

// ToValues converts the query to URL values. Lists are comma-joined and
// objects are JSON-encoded.
func (q *Query) ToValues() (url.Values, error) {
	values := url.Values{}

	if q == nil {
		return values, nil
	}

	if len(q.Fields) > 0 {
		values.Set("fields", strings.Join(q.Fields, ","))
	}

	if len(q.Sort) > 0 {
		values.Set("sort", strings.Join(q.Sort, ","))
	}

	if err := setJSON(values, "filter", q.Filter, len(q.Filter) > 0); err != nil {
		return nil, err
	}

	if q.Search != "" {
		values.Set("search", q.Search)
	}

	if q.Limit != nil {
		values.Set("limit", strconv.Itoa(*q.Limit))
	}

	if q.Offset > 0 {
		values.Set("offset", strconv.Itoa(q.Offset))
	}

	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}

	if len(q.Meta) > 0 {
		values.Set("meta", strings.Join(q.Meta, ","))
	}

	if err := setJSON(values, "deep", q.Deep, len(q.Deep) > 0); err != nil {
		return nil, err
	}

	if err := setJSON(values, "alias", q.Alias, len(q.Alias) > 0); err != nil {
		return nil, err
	}

	if len(q.GroupBy) > 0 {
		values.Set("groupBy", strings.Join(q.GroupBy, ","))
	}

	functions := make([]string, 0, len(q.Aggregate))
	for function := range q.Aggregate {
		functions = append(functions, function)
	}

	sort.Strings(functions)

	for _, function := range functions {
		values.Set(fmt.Sprintf("aggregate[%s]", function), strings.Join(q.Aggregate[function], ","))
	}

	if q.Export != "" {
		values.Set("export", q.Export)
	}

	for key, vals := range q.Custom {
		for _, v := range vals {
			values.Add(key, v)
		}
	}

	return values, nil
}

// MarshalJSON encodes the query as the object form accepted in request
// bodies, e.g. the query of an update-by-query call.
func (q *Query) MarshalJSON() ([]byte, error) {
	if q == nil {
		return []byte("null"), nil
	}

	body := map[string]any{}

	if len(q.Fields) > 0 {
		body["fields"] = q.Fields
	}

	if len(q.Sort) > 0 {
		body["sort"] = q.Sort
	}

	if len(q.Filter) > 0 {
		body["filter"] = q.Filter
	}

	if q.Search != "" {
		body["search"] = q.Search
	}

	if q.Limit != nil {
		body["limit"] = *q.Limit
	}

	if q.Offset > 0 {
		body["offset"] = q.Offset
	}

	if q.Page > 0 {
		body["page"] = q.Page
	}

	if len(q.Deep) > 0 {
		body["deep"] = q.Deep
	}

	if len(q.Alias) > 0 {
		body["alias"] = q.Alias
	}

	if len(q.GroupBy) > 0 {
		body["groupBy"] = q.GroupBy
	}

	if len(q.Aggregate) > 0 {
		body["aggregate"] = q.Aggregate
	}

	return json.Marshal(body)
}

func setJSON(values url.Values, key string, v any, present bool) error {
	if !present {
		return nil
	}

	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}

	values.Set(key, string(b))

	return nil
}
