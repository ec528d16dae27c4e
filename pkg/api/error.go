package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// ErrorBody is the payload the backend sends on failed requests. Field
// validation failures arrive as {"error": {"field": ["msg", ...]}}, other
// failures as {"message": "..."}.
type ErrorBody struct {
	Message string              `json:"message"`
	Error   map[string][]string `json:"error"`
}

// APIError is a non-2xx response normalized into a Go error. FieldErrors
// is populated only when the backend returned a field-level error map.
type APIError struct {
	StatusCode  int
	Message     string
	FieldErrors map[string][]string
}

func (e *APIError) Error() string {
	if len(e.FieldErrors) > 0 {
		parts := make([]string, 0, len(e.FieldErrors))
		for field, msgs := range e.FieldErrors {
			parts = append(parts, field+": "+strings.Join(msgs, "; "))
		}
		return fmt.Sprintf("api error %d: %s", e.StatusCode, strings.Join(parts, ", "))
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether the backend answered 404.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// DecodeError parses a failed response body into an APIError. Plain-text
// and malformed bodies fall back to the raw text so callers always get a
// human-readable message.
func DecodeError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}

	var parsed ErrorBody
	if err := json.Unmarshal(body, &parsed); err == nil {
		if len(parsed.Error) > 0 {
			apiErr.FieldErrors = parsed.Error
		}
		apiErr.Message = strings.TrimSpace(parsed.Message)
	}

	if apiErr.Message == "" && len(apiErr.FieldErrors) == 0 {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	if apiErr.Message == "" && len(apiErr.FieldErrors) == 0 {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}
