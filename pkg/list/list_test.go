package list

import (
	"context"
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheMinarctic/rahtash-tms-admin/pkg/api"
	"github.com/TheMinarctic/rahtash-tms-admin/pkg/query"
)

func TestParseParams(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		raw    string
		wantPg int
		wantOr string
	}{
		{name: "defaults", raw: "", wantPg: 1},
		{name: "explicit page", raw: "page=3", wantPg: 3},
		{name: "ordering", raw: "page=2&ordering=-created_at", wantPg: 2, wantOr: "-created_at"},
		{name: "zero page clamps", raw: "page=0", wantPg: 1},
		{name: "negative page clamps", raw: "page=-4", wantPg: 1},
		{name: "garbage page clamps", raw: "page=abc", wantPg: 1},
		{name: "unknown filters ignored", raw: "page=2&status=1&search=oslo", wantPg: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			values, err := url.ParseQuery(tt.raw)
			require.NoError(t, err)
			p := ParseParams(values)
			assert.Equal(t, tt.wantPg, p.Page)
			assert.Equal(t, tt.wantOr, p.Ordering)
		})
	}
}

func TestSetPage(t *testing.T) {
	t.Parallel()

	values, _ := url.ParseQuery("page=2&status=1")
	next := SetPage(values, 3)

	assert.Equal(t, "3", next.Get("page"))
	assert.Equal(t, "1", next.Get("status"), "filters survive page changes")
	assert.Equal(t, "2", values.Get("page"), "input values are not mutated")

	clamped := SetPage(values, 0)
	assert.Equal(t, "1", clamped.Get("page"))
}

func TestControllerKey(t *testing.T) {
	t.Parallel()

	c := NewController[int]("/api/v1/shipment/list/", nil)

	t.Run("defaults page into key", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "/api/v1/shipment/list/?page=1", c.Key(url.Values{}))
	})

	t.Run("equivalent params share a key", func(t *testing.T) {
		t.Parallel()
		a, _ := url.ParseQuery("page=2&status=1")
		b, _ := url.ParseQuery("status=1&page=2")
		assert.Equal(t, c.Key(a), c.Key(b))
	})
}

func pagedFetcher(t *testing.T, totalResults, perPage int) query.Fetcher[[]int] {
	t.Helper()
	return func(_ context.Context, key string) (*api.Envelope[[]int], error) {
		parsed, err := url.Parse(key)
		require.NoError(t, err)
		page := ParseParams(parsed.Query()).Page

		start := (page - 1) * perPage
		count := perPage
		if start+count > totalResults {
			count = totalResults - start
		}
		if count < 0 {
			count = 0
		}
		items := make([]int, count)
		for i := range items {
			items[i] = start + i + 1
		}

		envelope := &api.Envelope[[]int]{
			Status:       true,
			Message:      "ok",
			Data:         items,
			TotalResults: totalResults,
			PerPage:      perPage,
			PageNow:      page,
		}
		if page*perPage < totalResults {
			link := fmt.Sprintf("/api/v1/shipment/list/?page=%d", page+1)
			envelope.NextLink = &link
		}
		return envelope, nil
	}
}

func TestControllerFetch_MiddlePage(t *testing.T) {
	t.Parallel()

	cache := query.NewCache(pagedFetcher(t, 42, 15))
	c := NewController("/api/v1/shipment/list/", cache)

	values, _ := url.ParseQuery("page=2")
	page, err := c.Fetch(context.Background(), values)
	require.NoError(t, err)

	assert.Len(t, page.Items, 15)
	assert.Equal(t, 2, page.PageNow)
	assert.Equal(t, 3, page.TotalPages)
	assert.True(t, page.HasNext)
	assert.True(t, page.HasPrev)
	assert.False(t, page.Empty)
}

func TestControllerFetch_LastPage(t *testing.T) {
	t.Parallel()

	cache := query.NewCache(pagedFetcher(t, 42, 15))
	c := NewController("/api/v1/shipment/list/", cache)

	values, _ := url.ParseQuery("page=3")
	page, err := c.Fetch(context.Background(), values)
	require.NoError(t, err)

	assert.Len(t, page.Items, 12)
	assert.False(t, page.HasNext)
	assert.True(t, page.HasPrev)
}

func TestControllerFetch_EmptyResult(t *testing.T) {
	t.Parallel()

	cache := query.NewCache(pagedFetcher(t, 0, 15))
	c := NewController("/api/v1/shipment/list/", cache)

	page, err := c.Fetch(context.Background(), url.Values{})
	require.NoError(t, err)
	assert.True(t, page.Empty)
	assert.Empty(t, page.Items)
	assert.Equal(t, 0, page.TotalPages)
	assert.False(t, page.HasNext)
	assert.False(t, page.HasPrev)
}

func TestControllerRefresh_HitsCacheKeyAgain(t *testing.T) {
	t.Parallel()

	calls := 0
	cache := query.NewCache(func(_ context.Context, _ string) (*api.Envelope[[]int], error) {
		calls++
		return &api.Envelope[[]int]{Status: true, Data: []int{calls}, TotalResults: 1, PerPage: 15, PageNow: 1}, nil
	})
	c := NewController("/api/v1/driver/list/", cache)

	_, err := c.Fetch(context.Background(), url.Values{})
	require.NoError(t, err)
	page, err := c.Refresh(context.Background(), url.Values{})
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
	assert.Equal(t, []int{2}, page.Items)
}
