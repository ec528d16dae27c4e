// Package client is the single HTTP chokepoint for the rahtash-tms API.
// It attaches bearer credentials from an injected TokenProvider, selects
// JSON or multipart encoding from the request body, and normalizes every
// transport-level failure into a regular response object so callers never
// have to special-case network errors.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/TheMinarctic/rahtash-tms-admin/pkg/api"
)

const (
	defaultTimeout = 30 * time.Second

	// transportFailureMessage mirrors what the backend would say if it
	// could answer at all.
	transportFailureMessage = "The server is unresponsive"
)

// TokenProvider resolves the bearer token attached to outgoing requests.
// Implementations are injected so the client never reads ambient state.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenProvider returning a fixed token. An empty value
// sends requests unauthenticated.
type StaticToken string

// Token implements TokenProvider.
func (s StaticToken) Token(context.Context) (string, error) { return string(s), nil }

// Config holds client configuration.
type Config struct {
	// BaseURL is the root URL of the TMS API (for example: https://api.rahtash-tms.ir).
	BaseURL string
	// Tokens resolves the bearer token per request. Optional.
	Tokens TokenProvider
	// Timeout is the per-request timeout. Defaults to 30s.
	Timeout time.Duration
	// HTTPClient overrides the underlying transport. Optional.
	HTTPClient *http.Client
	// RequestsPerSecond throttles outbound calls. Zero disables throttling.
	RequestsPerSecond float64
	// Logger receives per-request debug entries.
	Logger zerolog.Logger
}

// Client performs all network calls for the SDK.
type Client struct {
	baseURL string
	tokens  TokenProvider
	hc      *http.Client
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// Response is the normalized result of one request. OK reflects a 2xx
// status; Body is nil for 204 responses.
type Response struct {
	OK     bool
	Status int
	Body   []byte
}

// New creates a client.
func New(cfg Config) (*Client, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		return nil, fmt.Errorf("client: BaseURL is required")
	}
	baseURL = strings.TrimRight(baseURL, "/")

	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &Client{
		baseURL: baseURL,
		tokens:  cfg.Tokens,
		hc:      hc,
		limiter: limiter,
		logger:  cfg.Logger.With().Str("component", "client").Logger(),
	}, nil
}

// Do performs one request. The path may carry its own query string. A nil
// body sends no payload. Transport-level failures (DNS, refused
// connection, timeout) come back as a synthesized 500 response, never as
// an error: the error return is reserved for caller mistakes such as an
// unencodable body.
func (c *Client) Do(ctx context.Context, method, path string, body RequestBody) (*Response, error) {
	start := time.Now()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return c.transportFailure(method, path, err), nil
		}
	}

	var reader io.Reader
	contentType := ""
	if body != nil {
		var err error
		reader, contentType, err = body.Encode()
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolving token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return c.transportFailure(method, path, err), nil
	}
	defer func() { _ = resp.Body.Close() }()

	result := &Response{
		OK:     resp.StatusCode >= 200 && resp.StatusCode <= 299,
		Status: resp.StatusCode,
	}
	if resp.StatusCode != http.StatusNoContent {
		data, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return c.transportFailure(method, path, readErr), nil
		}
		result.Body = data
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", result.Status).
		Dur("duration", time.Since(start)).
		Msg("request completed")

	return result, nil
}

// Get performs a GET. The path may include a query string.
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, nil)
}

// Post performs a POST with the given body.
func (c *Client) Post(ctx context.Context, path string, body RequestBody) (*Response, error) {
	return c.Do(ctx, http.MethodPost, path, body)
}

// Patch performs a PATCH with the given body.
func (c *Client) Patch(ctx context.Context, path string, body RequestBody) (*Response, error) {
	return c.Do(ctx, http.MethodPatch, path, body)
}

// Delete performs a DELETE.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, path, nil)
}

func (c *Client) transportFailure(method, path string, cause error) *Response {
	c.logger.Warn().
		Str("method", method).
		Str("path", path).
		Err(cause).
		Msg("transport failure")

	body, _ := json.Marshal(api.ErrorBody{Message: transportFailureMessage})
	return &Response{OK: false, Status: http.StatusInternalServerError, Body: body}
}

// Decode parses a normalized response into the typed envelope. Failed
// responses become an *api.APIError; a bodyless 204 yields an empty
// envelope with Status set.
func Decode[T any](resp *Response) (*api.Envelope[T], error) {
	if resp == nil {
		return nil, fmt.Errorf("nil response")
	}
	if !resp.OK {
		return nil, api.DecodeError(resp.Status, resp.Body)
	}
	if resp.Body == nil {
		return &api.Envelope[T]{Status: true}, nil
	}

	var envelope api.Envelope[T]
	if err := json.Unmarshal(resp.Body, &envelope); err != nil {
		return nil, fmt.Errorf("decoding response envelope: %w", err)
	}
	return &envelope, nil
}
