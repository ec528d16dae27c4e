package query

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheMinarctic/rahtash-tms-admin/pkg/api"
)

func listEnvelope(ids ...int) *api.Envelope[[]int] {
	return &api.Envelope[[]int]{
		Status:       true,
		Data:         ids,
		TotalResults: len(ids),
		PerPage:      15,
		PageNow:      1,
	}
}

func TestFetch_EmptyKeySkips(t *testing.T) {
	t.Parallel()

	var calls int32
	c := NewCache(func(context.Context, string) (*api.Envelope[[]int], error) {
		atomic.AddInt32(&calls, 1)
		return listEnvelope(1), nil
	})

	state := c.Fetch(context.Background(), "")
	assert.Nil(t, state.Data)
	assert.NoError(t, state.Err)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestFetch_StoresData(t *testing.T) {
	t.Parallel()

	c := NewCache(func(_ context.Context, key string) (*api.Envelope[[]int], error) {
		assert.Equal(t, "/api/v1/shipment/list/?page=1", key)
		return listEnvelope(1, 2, 3), nil
	})

	state := c.Fetch(context.Background(), "/api/v1/shipment/list/?page=1")
	require.NoError(t, state.Err)
	require.NotNil(t, state.Data)
	assert.Equal(t, []int{1, 2, 3}, state.Data.Data)
	assert.False(t, state.IsValidating)
}

func TestFetch_DeduplicatesConcurrentRequests(t *testing.T) {
	t.Parallel()

	var calls int32
	release := make(chan struct{})
	c := NewCache(func(context.Context, string) (*api.Envelope[[]int], error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return listEnvelope(1), nil
	})

	const workers = 8
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			state := c.Fetch(context.Background(), "/api/v1/driver/list/?page=1")
			assert.NoError(t, state.Err)
		}()
	}

	// Let every worker reach the shared flight before releasing it.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFetch_KeepsStaleDataOnError(t *testing.T) {
	t.Parallel()

	var calls int32
	c := NewCache(func(context.Context, string) (*api.Envelope[[]int], error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return listEnvelope(1, 2), nil
		}
		return nil, fmt.Errorf("server is down")
	})

	key := "/api/v1/company/list/?page=1"
	first := c.Fetch(context.Background(), key)
	require.NoError(t, first.Err)

	second := c.Fetch(context.Background(), key)
	require.Error(t, second.Err)
	require.NotNil(t, second.Data, "stale data must survive a failed revalidation")
	assert.Equal(t, []int{1, 2}, second.Data.Data)

	// A later success clears the error again.
	atomic.StoreInt32(&calls, 0)
	third := c.Fetch(context.Background(), key)
	assert.NoError(t, third.Err)
}

func TestMutate_Revalidates(t *testing.T) {
	t.Parallel()

	var calls int32
	c := NewCache(func(context.Context, string) (*api.Envelope[[]int], error) {
		n := int(atomic.AddInt32(&calls, 1))
		ids := make([]int, n)
		for i := range ids {
			ids[i] = i + 1
		}
		return listEnvelope(ids...), nil
	})

	key := "/api/v1/shipment/list/?page=1"
	first := c.Fetch(context.Background(), key)
	require.Len(t, first.Data.Data, 1)

	// Simulates re-fetching the list after a sibling create succeeded.
	second := c.Mutate(context.Background(), key)
	require.Len(t, second.Data.Data, 2)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestPeek(t *testing.T) {
	t.Parallel()

	t.Run("unknown key", func(t *testing.T) {
		t.Parallel()
		c := NewCache(func(context.Context, string) (*api.Envelope[[]int], error) {
			return listEnvelope(), nil
		})
		state := c.Peek("/api/v1/unknown/list/")
		assert.Nil(t, state.Data)
		assert.False(t, state.IsValidating)
	})

	t.Run("reports in-flight validation", func(t *testing.T) {
		t.Parallel()
		release := make(chan struct{})
		started := make(chan struct{})
		c := NewCache(func(context.Context, string) (*api.Envelope[[]int], error) {
			close(started)
			<-release
			return listEnvelope(1), nil
		})

		key := "/api/v1/port/list/?page=1"
		done := make(chan struct{})
		go func() {
			defer close(done)
			c.Fetch(context.Background(), key)
		}()

		<-started
		state := c.Peek(key)
		assert.True(t, state.IsValidating)
		assert.True(t, state.IsLoading, "no data yet, so loading and validating coincide")

		close(release)
		<-done
		state = c.Peek(key)
		assert.False(t, state.IsValidating)
		assert.False(t, state.IsLoading)
		require.NotNil(t, state.Data)
	})
}

func TestForget(t *testing.T) {
	t.Parallel()

	c := NewCache(func(context.Context, string) (*api.Envelope[[]int], error) {
		return listEnvelope(1), nil
	})

	key := "/api/v1/shipment/detail/1/"
	c.Fetch(context.Background(), key)
	require.NotNil(t, c.Peek(key).Data)

	c.Forget(key)
	assert.Nil(t, c.Peek(key).Data)
}
