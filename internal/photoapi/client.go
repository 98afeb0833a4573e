package photoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/five82/shutter/internal/logging"
)

// Searcher runs photo searches. It is implemented by *Client and can be
// replaced in tests.
type Searcher interface {
	Search(ctx context.Context, query string) (SearchResponse, error)
}

// Uploader stores photos. It is implemented by *Client and can be replaced in
// tests.
type Uploader interface {
	Upload(ctx context.Context, req UploadRequest) error
}

// Ensure Client implements both interfaces at compile time.
var (
	_ Searcher = (*Client)(nil)
	_ Uploader = (*Client)(nil)
)

// ErrMalformedResponse reports a success response whose body could not be
// decoded.
var ErrMalformedResponse = errors.New("malformed response")

const (
	defaultUserAgent = "shutter/0.1"
	defaultMIMEType  = "image/jpeg"

	// HeaderAPIKey carries the static API credential on every request.
	HeaderAPIKey = "x-api-key"
	// HeaderCustomLabels carries comma-joined user labels on uploads.
	HeaderCustomLabels = "x-amz-meta-customLabels"

	errorBodyLimit = 64 << 10
)

// Client talks to the photo search HTTP API.
type Client struct {
	baseURL   *url.URL
	apiKey    string
	http      *http.Client
	userAgent string
	logger    *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the logger used for request logging.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient builds a Client for the API rooted at baseURL. The base may carry
// a path prefix such as a deployment stage.
func NewClient(baseURL, apiKey string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("api key is empty")
	}
	c := &Client{
		baseURL: base,
		apiKey:  apiKey,
		// No timeout; a request ends when the server answers or ctx is done.
		http:      &http.Client{},
		userAgent: defaultUserAgent,
		logger:    logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Search runs a natural-language query against GET /search.
func (c *Client) Search(ctx context.Context, query string) (SearchResponse, error) {
	if c == nil {
		return SearchResponse{}, fmt.Errorf("client is nil")
	}
	reqURL, err := c.endpoint("/search", url.Values{"q": {query}})
	if err != nil {
		return SearchResponse{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.send(req)
	if err != nil {
		return SearchResponse{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return SearchResponse{}, newAPIError(resp)
	}
	var payload SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return SearchResponse{}, fmt.Errorf("decode response: %w: %v", ErrMalformedResponse, err)
	}
	return payload, nil
}

// Upload stores a photo with PUT /upload/<name>. Only HTTP 200 counts as
// success.
func (c *Client) Upload(ctx context.Context, upload UploadRequest) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	if strings.TrimSpace(upload.FileName) == "" {
		return fmt.Errorf("file name required")
	}
	reqURL, err := c.endpoint("/upload/"+EscapeFileName(upload.FileName), nil)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, reqURL.String(), bytes.NewReader(upload.Body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	contentType := strings.TrimSpace(upload.ContentType)
	if contentType == "" {
		contentType = defaultMIMEType
	}
	req.Header.Set("Content-Type", contentType)
	if len(upload.Labels) > 0 {
		// Assigned directly so the header keeps its exact spelling on the wire.
		req.Header[HeaderCustomLabels] = []string{JoinLabels(upload.Labels)}
	}

	resp, err := c.send(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return newAPIError(resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// send stamps common headers, executes req, and logs the exchange under a
// fresh request id.
func (c *Client) send(req *http.Request) (*http.Response, error) {
	ctx := logging.WithRequestID(req.Context(), uuid.NewString())
	req = req.WithContext(ctx)
	req.Header.Set(HeaderAPIKey, c.apiKey)
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	c.logger.DebugContext(ctx, "api request", "method", req.Method, "path", req.URL.EscapedPath(), "bytes", req.ContentLength)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "api request failed", "method", req.Method, "path", req.URL.EscapedPath(), "error", err)
		return nil, fmt.Errorf("execute request: %w", err)
	}
	c.logger.InfoContext(ctx, "api response",
		"method", req.Method,
		"path", req.URL.EscapedPath(),
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)
	return resp, nil
}

// endpoint resolves an already-escaped path below the base URL.
func (c *Client) endpoint(escapedPath string, query url.Values) (*url.URL, error) {
	raw := strings.TrimSuffix(c.baseURL.EscapedPath(), "/") + escapedPath
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return nil, fmt.Errorf("build path %q: %w", raw, err)
	}
	u := *c.baseURL
	u.Path = decoded
	u.RawPath = raw
	u.RawQuery = ""
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return &u, nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("api url is empty")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api url %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("api url %q: unsupported scheme %q", raw, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("api url %q: missing host", raw)
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

// EscapeFileName percent-encodes a file name for use as a single path
// segment, the way encodeURIComponent does for the web client.
func EscapeFileName(name string) string {
	return strings.ReplaceAll(url.QueryEscape(name), "+", "%20")
}

// JoinLabels renders labels for the custom-labels header. Labels are joined
// with bare commas; a label that itself contains a comma cannot be told apart
// from two labels on the server side.
func JoinLabels(labels []string) string {
	return strings.Join(labels, ",")
}

func newAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	body, err := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
	if err == nil && len(body) > 0 {
		var payload errorPayload
		if json.Unmarshal(body, &payload) == nil {
			apiErr.Message = strings.TrimSpace(payload.Message)
		}
	}
	return apiErr
}
