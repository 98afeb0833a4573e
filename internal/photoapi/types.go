package photoapi

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// SearchResponse mirrors the payload returned by GET /search.
type SearchResponse struct {
	Results []string `json:"results"`
}

// UploadRequest is a fully prepared upload: the exact file bytes plus the
// metadata sent alongside them.
type UploadRequest struct {
	FileName    string
	ContentType string
	Body        []byte
	Labels      []string
}

// APIError is returned when the API answers with a failure status.
type APIError struct {
	StatusCode int
	// Message is the server-provided explanation, when the body carried one.
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status code %d", e.StatusCode)
}

// Explain returns the most specific user-facing text for err: the server's
// message when the API sent one, else the error text itself.
func Explain(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}

type errorPayload struct {
	Message string `json:"message"`
}

// DisplayName returns the last path segment of a photo locator, or the
// locator itself when it has none.
func DisplayName(locator string) string {
	trimmed := strings.TrimSpace(locator)
	if i := strings.IndexAny(trimmed, "?#"); i >= 0 {
		trimmed = trimmed[:i]
	}
	base := path.Base(trimmed)
	if base == "." || base == "/" || base == "" {
		return locator
	}
	return base
}
