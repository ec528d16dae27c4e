package tmstest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) (*Server, string) {
	t.Helper()
	backend := New(zerolog.Nop())
	srv := httptest.NewServer(backend.Handler())
	t.Cleanup(srv.Close)
	return backend, srv.URL
}

func getJSON(t *testing.T, url string) (int, map[string]any) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	return resp.StatusCode, body
}

func TestServerListEnvelope(t *testing.T) {
	t.Parallel()

	backend, url := newServer(t)
	backend.Register("/api/v1/port")
	backend.SetPerPage(2)
	for _, title := range []string{"A", "B", "C"} {
		backend.Seed("/api/v1/port", map[string]any{"title": title})
	}

	status, body := getJSON(t, url+"/api/v1/port/list/")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["status"])
	assert.Equal(t, float64(3), body["total_results"])
	assert.Equal(t, float64(2), body["per_page"])
	assert.Equal(t, float64(1), body["page_now"])
	assert.Equal(t, "/api/v1/port/list/?page=2", body["next_link"])
	assert.Len(t, body["data"], 2)

	status, body = getJSON(t, url+"/api/v1/port/list/?page=2")
	require.Equal(t, http.StatusOK, status)
	assert.Nil(t, body["next_link"])
	assert.Len(t, body["data"], 1)
}

func TestServerUniqueOnUpdateExcludesSelf(t *testing.T) {
	t.Parallel()

	backend, url := newServer(t)
	backend.Register("/api/v1/driver", "phone_number")
	backend.Seed("/api/v1/driver", map[string]any{"full_name": "A", "phone_number": "0911"})
	other := backend.Seed("/api/v1/driver", map[string]any{"full_name": "B", "phone_number": "0912"})

	patch := func(id int, payload map[string]any) (int, map[string]any) {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		req, err := http.NewRequest(http.MethodPatch,
			url+"/api/v1/driver/update/"+strconv.Itoa(id)+"/", bytes.NewReader(raw))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		var body map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		return resp.StatusCode, body
	}

	// Re-saving a record with its own phone number is not a conflict.
	status, _ := patch(other["id"].(int), map[string]any{"phone_number": "0912"})
	assert.Equal(t, http.StatusOK, status)

	// Taking another record's phone number is.
	status, body := patch(other["id"].(int), map[string]any{"phone_number": "0911"})
	require.Equal(t, http.StatusBadRequest, status)
	fieldErrs := body["error"].(map[string]any)
	assert.Equal(t, []any{"already exists"}, fieldErrs["phone_number"])
}

func TestServerFailNextConsumedOnce(t *testing.T) {
	t.Parallel()

	backend, url := newServer(t)
	backend.Register("/api/v1/company")
	backend.FailNext(http.StatusServiceUnavailable, "maintenance")

	status, body := getJSON(t, url+"/api/v1/company/list/")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "maintenance", body["message"])

	status, _ = getJSON(t, url+"/api/v1/company/list/")
	assert.Equal(t, http.StatusOK, status)
}

func TestServerCoerceFormValue(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 7, coerceFormValue("7"))
	assert.Equal(t, true, coerceFormValue("true"))
	assert.Equal(t, "MSKU1234567", coerceFormValue("MSKU1234567"))
}
