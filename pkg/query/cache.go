// Package query provides keyed GET caching with stale-while-revalidate
// semantics: a fetch failure never clears the last good data, concurrent
// fetches for the same key share one in-flight request, and mutations
// refresh a key explicitly instead of writing into the cache.
package query

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/TheMinarctic/rahtash-tms-admin/pkg/api"
)

// Fetcher loads the envelope for a cache key. The key is the exact
// request path including its query string.
type Fetcher[T any] func(ctx context.Context, key string) (*api.Envelope[T], error)

// State is a point-in-time view of one cache entry. Data is the last
// successfully fetched envelope and survives later failures; Err is the
// outcome of the most recent fetch.
type State[T any] struct {
	Data         *api.Envelope[T]
	Err          error
	IsLoading    bool
	IsValidating bool
}

type entry[T any] struct {
	data       *api.Envelope[T]
	err        error
	validating int
}

// Cache is a keyed envelope cache. Only the cache itself writes its
// entries; mutation flows request revalidation through Fetch or Mutate.
type Cache[T any] struct {
	mu      sync.Mutex
	fetch   Fetcher[T]
	entries map[string]*entry[T]
	group   singleflight.Group
}

// NewCache creates a cache backed by the given fetcher.
func NewCache[T any](fetch Fetcher[T]) *Cache[T] {
	return &Cache[T]{
		fetch:   fetch,
		entries: make(map[string]*entry[T]),
	}
}

// Fetch revalidates the key and returns the resulting state. An empty key
// skips the fetch entirely and returns a zero state, matching the
// not-ready-yet convention for dependent lookups. Concurrent calls for
// the same key share a single request.
func (c *Cache[T]) Fetch(ctx context.Context, key string) State[T] {
	if key == "" {
		return State[T]{}
	}

	c.mu.Lock()
	e := c.ensure(key)
	e.validating++
	c.mu.Unlock()

	v, err, _ := c.group.Do(key, func() (any, error) {
		return c.fetch(ctx, key)
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	e.validating--
	if err != nil {
		e.err = err
	} else {
		e.data = v.(*api.Envelope[T])
		e.err = nil
	}
	return c.snapshot(e)
}

// Mutate forces revalidation of a key. It is Fetch under a name that
// reads correctly at mutation call sites.
func (c *Cache[T]) Mutate(ctx context.Context, key string) State[T] {
	return c.Fetch(ctx, key)
}

// Peek returns the cached state without touching the network.
func (c *Cache[T]) Peek(key string) State[T] {
	if key == "" {
		return State[T]{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return State[T]{IsLoading: false}
	}
	return c.snapshot(e)
}

// Forget drops a cached entry. Used after deleting the resource a detail
// key points at.
func (c *Cache[T]) Forget(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

func (c *Cache[T]) ensure(key string) *entry[T] {
	e, ok := c.entries[key]
	if !ok {
		e = &entry[T]{}
		c.entries[key] = e
	}
	return e
}

func (c *Cache[T]) snapshot(e *entry[T]) State[T] {
	validating := e.validating > 0
	return State[T]{
		Data:         e.data,
		Err:          e.err,
		IsLoading:    validating && e.data == nil,
		IsValidating: validating,
	}
}
