package tms

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/TheMinarctic/rahtash-tms-admin/pkg/api"
	"github.com/TheMinarctic/rahtash-tms-admin/pkg/client"
	"github.com/TheMinarctic/rahtash-tms-admin/pkg/confirm"
	"github.com/TheMinarctic/rahtash-tms-admin/pkg/form"
	"github.com/TheMinarctic/rahtash-tms-admin/pkg/list"
	"github.com/TheMinarctic/rahtash-tms-admin/pkg/query"
)

// Resource wires one API resource into the generic machinery: list and
// detail query caches, a URL-driven list controller, schema-bound
// mutation forms and delete-confirmation flows. Every resource follows
// the same endpoint convention: <base>/list/, <base>/detail/<id>/,
// <base>/create/, <base>/update/<id>/, <base>/delete/<id>/.
type Resource[T any] struct {
	name   string
	base   string
	schema form.Schema

	client     *client.Client
	lists      *query.Cache[[]T]
	details    *query.Cache[T]
	controller *list.Controller[T]
	logger     zerolog.Logger
}

// NewResource creates a resource service for a base path such as
// "/api/v1/shipment".
func NewResource[T any](c *client.Client, name, base string, schema form.Schema, logger zerolog.Logger) *Resource[T] {
	r := &Resource[T]{
		name:   name,
		base:   strings.TrimRight(base, "/"),
		schema: schema,
		client: c,
		logger: logger.With().Str("resource", name).Logger(),
	}
	r.lists = query.NewCache(func(ctx context.Context, key string) (*api.Envelope[[]T], error) {
		resp, err := c.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		return client.Decode[[]T](resp)
	})
	r.details = query.NewCache(func(ctx context.Context, key string) (*api.Envelope[T], error) {
		resp, err := c.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		return client.Decode[T](resp)
	})
	r.controller = list.NewController(r.base+"/list/", r.lists)
	return r
}

// Endpoint returns the resource's base path.
func (r *Resource[T]) Endpoint() string { return r.base }

// Schema returns the resource's form schema.
func (r *Resource[T]) Schema() form.Schema { return r.schema }

// List fetches the page the query parameters describe. The parameters
// are the URL's search parameters verbatim; anything beyond page and
// ordering passes through to the backend as filters.
func (r *Resource[T]) List(ctx context.Context, values url.Values) (*list.Page[T], error) {
	page, err := r.controller.Fetch(ctx, values)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", r.name, err)
	}
	return page, nil
}

// RefreshList revalidates the list page's cache entry.
func (r *Resource[T]) RefreshList(ctx context.Context, values url.Values) (*list.Page[T], error) {
	page, err := r.controller.Refresh(ctx, values)
	if err != nil {
		return nil, fmt.Errorf("refreshing %s list: %w", r.name, err)
	}
	return page, nil
}

// Get fetches one record by id through the detail cache.
func (r *Resource[T]) Get(ctx context.Context, id int) (*T, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%s id is required", r.name)
	}
	state := r.details.Fetch(ctx, r.detailKey(id))
	if state.Err != nil {
		return nil, fmt.Errorf("getting %s %d: %w", r.name, id, state.Err)
	}
	return &state.Data.Data, nil
}

// Form builds a mutation form bound to this resource's schema. A non-nil
// initial carrying an id yields an update form, otherwise a create form.
func (r *Resource[T]) Form(initial map[string]any) *form.Form {
	return form.New(r.schema, initial)
}

// SubmitHooks carry the user-facing side effects of a submission.
type SubmitHooks struct {
	OnSuccess func(message string)
	OnError   func(message string)
	Close     func()
}

// Submit sends the form against this resource and, on success,
// revalidates the list page identified by the given query parameters.
func (r *Resource[T]) Submit(ctx context.Context, f *form.Form, listValues url.Values, hooks SubmitHooks) error {
	return f.Submit(ctx, form.SubmitOptions{
		Client:   r.client,
		Endpoint: r.base,
		Revalidate: func(ctx context.Context) {
			if _, err := r.RefreshList(ctx, listValues); err != nil {
				r.logger.Warn().Err(err).Msg("list revalidation after submit failed")
			}
		},
		OnSuccess: hooks.OnSuccess,
		OnError:   hooks.OnError,
		Close:     hooks.Close,
	})
}

// Delete removes one record. A 204 is the success shape; anything else
// is decoded into an APIError. The detail cache entry for the record is
// dropped so a later read cannot resurrect it.
func (r *Resource[T]) Delete(ctx context.Context, id int) error {
	if id <= 0 {
		return fmt.Errorf("%s id is required", r.name)
	}
	resp, err := r.client.Delete(ctx, fmt.Sprintf("%s/delete/%d/", r.base, id))
	if err != nil {
		return err
	}
	if !resp.OK {
		return fmt.Errorf("deleting %s %d: %w", r.name, id, api.DecodeError(resp.Status, resp.Body))
	}
	r.details.Forget(r.detailKey(id))
	return nil
}

// DeleteFlow builds a confirmation-gated delete bound to this resource.
// Success revalidates the list page identified by the query parameters.
func (r *Resource[T]) DeleteFlow(listValues url.Values, hooks SubmitHooks) *confirm.Flow {
	flow, _ := confirm.New(confirm.Options{
		Delete: r.Delete,
		Revalidate: func(ctx context.Context) {
			if _, err := r.RefreshList(ctx, listValues); err != nil {
				r.logger.Warn().Err(err).Msg("list revalidation after delete failed")
			}
		},
		OnError: hooks.OnError,
		Close:   hooks.Close,
		Logger:  r.logger,
	})
	return flow
}

func (r *Resource[T]) detailKey(id int) string {
	return fmt.Sprintf("%s/detail/%d/", r.base, id)
}
