// Package list derives paginated collection state from URL query
// parameters. The query string is the single source of truth for page,
// ordering and filters: controllers never keep a parallel copy of the
// current page, so navigation state cannot drift from the URL.
package list

import (
	"context"
	"net/url"
	"strconv"

	"github.com/gorilla/schema"

	"github.com/TheMinarctic/rahtash-tms-admin/pkg/query"
)

var decoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}()

// Params are the well-known list parameters. Anything else in the query
// string is a free-form filter passed through to the backend untouched.
type Params struct {
	Page     int    `schema:"page"`
	Ordering string `schema:"ordering"`
}

// ParseParams decodes the well-known parameters from a query string.
// A missing or invalid page resolves to 1; pages are 1-based.
func ParseParams(values url.Values) Params {
	var p Params
	_ = decoder.Decode(&p, values)
	if p.Page < 1 {
		p.Page = 1
	}
	return p
}

// SetPage returns a copy of values with the page parameter replaced.
func SetPage(values url.Values, page int) url.Values {
	if page < 1 {
		page = 1
	}
	next := make(url.Values, len(values))
	for k, v := range values {
		next[k] = append([]string(nil), v...)
	}
	next.Set("page", strconv.Itoa(page))
	return next
}

// Page is the resolved state of one list view.
type Page[T any] struct {
	Items        []T
	Message      string
	PageNow      int
	PerPage      int
	TotalResults int
	TotalPages   int
	HasNext      bool
	HasPrev      bool
	// Empty is true when the fetch succeeded and returned zero rows, the
	// case that renders a "no results" affordance instead of a bare table.
	Empty bool
}

// Controller binds a list endpoint to its query cache.
type Controller[T any] struct {
	endpoint string
	cache    *query.Cache[[]T]
}

// NewController creates a controller for a list endpoint such as
// "/api/v1/shipment/list/".
func NewController[T any](endpoint string, cache *query.Cache[[]T]) *Controller[T] {
	return &Controller[T]{endpoint: endpoint, cache: cache}
}

// Key builds the cache key for the given query parameters. The key is the
// exact request path; url.Values.Encode sorts keys, so equivalent
// parameter sets share one cache entry.
func (c *Controller[T]) Key(values url.Values) string {
	normalized := SetPage(values, ParseParams(values).Page)
	return c.endpoint + "?" + normalized.Encode()
}

// Fetch loads the page the query parameters describe.
func (c *Controller[T]) Fetch(ctx context.Context, values url.Values) (*Page[T], error) {
	state := c.cache.Fetch(ctx, c.Key(values))
	if state.Err != nil {
		return nil, state.Err
	}
	return c.page(state), nil
}

// Refresh revalidates the page's cache entry, typically after a sibling
// mutation succeeded.
func (c *Controller[T]) Refresh(ctx context.Context, values url.Values) (*Page[T], error) {
	state := c.cache.Mutate(ctx, c.Key(values))
	if state.Err != nil {
		return nil, state.Err
	}
	return c.page(state), nil
}

func (c *Controller[T]) page(state query.State[[]T]) *Page[T] {
	envelope := state.Data
	if envelope == nil {
		return &Page[T]{Empty: true}
	}
	return &Page[T]{
		Items:        envelope.Data,
		Message:      envelope.Message,
		PageNow:      envelope.PageNow,
		PerPage:      envelope.PerPage,
		TotalResults: envelope.TotalResults,
		TotalPages:   envelope.TotalPages(),
		HasNext:      envelope.HasNext(),
		HasPrev:      envelope.HasPrev(),
		Empty:        len(envelope.Data) == 0,
	}
}
