package photoapi

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const testKey = "test-key"

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL+"/prod", testKey)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	return c
}

func TestParseBaseURL_Normalizes(t *testing.T) {
	u, err := parseBaseURL("api.example.com/prod?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "https" {
		t.Fatalf("scheme = %q, want https", u.Scheme)
	}
	if u.Path != "/prod" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}

	for _, bad := range []string{"", "   ", "ftp://example.com", "http://"} {
		if _, err := parseBaseURL(bad); err == nil {
			t.Fatalf("parseBaseURL(%q) returned nil error, want error", bad)
		}
	}
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	if _, err := NewClient("https://example.com", "  "); err == nil {
		t.Fatalf("NewClient returned nil error for empty key")
	}
}

func TestClient_SearchSendsQueryAndKey(t *testing.T) {
	t.Parallel()

	var gotPath, gotQuery, gotKey, gotMethod string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("q")
		gotKey = r.Header.Get(HeaderAPIKey)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(SearchResponse{Results: []string{"https://x/a.jpg", "https://x/b.jpg"}})
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	resp, err := c.Search(ctx, "show me dogs")
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if gotMethod != http.MethodGet || gotPath != "/prod/search" {
		t.Fatalf("request = %s %s, want GET /prod/search", gotMethod, gotPath)
	}
	if gotQuery != "show me dogs" {
		t.Fatalf("q = %q, want %q", gotQuery, "show me dogs")
	}
	if gotKey != testKey {
		t.Fatalf("x-api-key = %q, want %q", gotKey, testKey)
	}
	if len(resp.Results) != 2 || resp.Results[0] != "https://x/a.jpg" || resp.Results[1] != "https://x/b.jpg" {
		t.Fatalf("results = %#v, want both locators in order", resp.Results)
	}
}

func TestClient_SearchMissingResultsField(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"other":true}`))
	})

	resp, err := c.Search(context.Background(), "cats")
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if resp.Results != nil {
		t.Fatalf("results = %#v, want nil", resp.Results)
	}
}

func TestClient_SearchErrors(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("q") {
		case "garbled":
			_, _ = w.Write([]byte("{not-json"))
		case "explained":
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"message":"query too vague"}`))
		default:
			http.Error(w, "nope", http.StatusInternalServerError)
		}
	})

	_, err := c.Search(context.Background(), "garbled")
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("Search error = %v, want ErrMalformedResponse", err)
	}

	_, err = c.Search(context.Background(), "explained")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadRequest || apiErr.Message != "query too vague" {
		t.Fatalf("Search error = %#v, want APIError 400 with message", err)
	}

	_, err = c.Search(context.Background(), "plain")
	if !errors.As(err, &apiErr) || apiErr.Message != "" {
		t.Fatalf("Search error = %#v, want APIError without message", err)
	}
	if got := err.Error(); got != "request failed with status code 500" {
		t.Fatalf("Error() = %q, want generic status text", got)
	}
}

func TestClient_SearchTransportError(t *testing.T) {
	c, err := NewClient("http://127.0.0.1:1", testKey)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	_, err = c.Search(context.Background(), "dogs")
	if err == nil || !strings.Contains(err.Error(), "execute request") {
		t.Fatalf("Search error = %v, want execute request error", err)
	}
}

func TestClient_UploadSendsBytesAndHeaders(t *testing.T) {
	t.Parallel()

	var (
		gotMethod, gotPath, gotType, gotLabels, gotKey string
		gotBody                                        []byte
		gotLength                                      int64
	)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.EscapedPath()
		gotType = r.Header.Get("Content-Type")
		gotLabels = r.Header.Get(HeaderCustomLabels)
		gotKey = r.Header.Get(HeaderAPIKey)
		gotLength = r.ContentLength
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	})

	body := []byte{0x89, 'P', 'N', 'G', 0x00, 0xff, 0x0d, 0x0a}
	err := c.Upload(context.Background(), UploadRequest{
		FileName:    "vacation.png",
		ContentType: "image/png",
		Body:        body,
		Labels:      []string{"beach", "2024"},
	})
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if gotMethod != http.MethodPut || gotPath != "/prod/upload/vacation.png" {
		t.Fatalf("request = %s %s, want PUT /prod/upload/vacation.png", gotMethod, gotPath)
	}
	if gotType != "image/png" {
		t.Fatalf("Content-Type = %q, want image/png", gotType)
	}
	if gotLabels != "beach,2024" {
		t.Fatalf("labels header = %q, want %q", gotLabels, "beach,2024")
	}
	if gotKey != testKey {
		t.Fatalf("x-api-key = %q, want %q", gotKey, testKey)
	}
	if gotLength != int64(len(body)) || !bytes.Equal(gotBody, body) {
		t.Fatalf("body = %v (len %d), want %v", gotBody, gotLength, body)
	}
}

func TestClient_UploadDefaultsAndOmitsLabels(t *testing.T) {
	t.Parallel()

	var gotType, gotPath string
	var sawLabels bool
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotType = r.Header.Get("Content-Type")
		gotPath = r.URL.EscapedPath()
		_, sawLabels = r.Header[http.CanonicalHeaderKey(HeaderCustomLabels)]
	})

	if err := c.Upload(context.Background(), UploadRequest{FileName: "my photo #1.jpg", Body: []byte("x")}); err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if gotType != defaultMIMEType {
		t.Fatalf("Content-Type = %q, want %q", gotType, defaultMIMEType)
	}
	if sawLabels {
		t.Fatalf("labels header present, want omitted for empty labels")
	}
	if gotPath != "/prod/upload/my%20photo%20%231.jpg" {
		t.Fatalf("path = %q, want encoded file name", gotPath)
	}
}

func TestClient_UploadLargeBodyIntact(t *testing.T) {
	t.Parallel()

	body := make([]byte, 12<<20)
	if _, err := rand.Read(body); err != nil {
		t.Fatalf("rand.Read: %v", err)
	}
	var got []byte
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got, _ = io.ReadAll(r.Body)
	})

	if err := c.Upload(context.Background(), UploadRequest{FileName: "big.jpg", Body: body}); err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if !bytes.Equal(got, body) {
		t.Fatalf("received %d bytes, want %d identical bytes", len(got), len(body))
	}
}

func TestClient_UploadNon200IsFailure(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "created.png"):
			w.WriteHeader(http.StatusCreated)
		default:
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"message":"Forbidden"}`))
		}
	})

	err := c.Upload(context.Background(), UploadRequest{FileName: "created.png", Body: []byte("x")})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusCreated {
		t.Fatalf("Upload error = %v, want APIError 201", err)
	}

	err = c.Upload(context.Background(), UploadRequest{FileName: "denied.png", Body: []byte("x")})
	if !errors.As(err, &apiErr) || apiErr.Message != "Forbidden" {
		t.Fatalf("Upload error = %v, want server message", err)
	}
}

func TestClient_UploadRequiresFileName(t *testing.T) {
	c, err := NewClient("https://example.com", testKey)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if err := c.Upload(context.Background(), UploadRequest{}); err == nil {
		t.Fatalf("Upload returned nil error, want error")
	}
}

func TestEscapeFileName(t *testing.T) {
	tests := map[string]string{
		"vacation.png":    "vacation.png",
		"a b.jpg":         "a%20b.jpg",
		"x/y.png":         "x%2Fy.png",
		"café&tea=1.jpeg": "caf%C3%A9%26tea%3D1.jpeg",
		"~tilde_-.gif":    "~tilde_-.gif",
	}
	for in, want := range tests {
		if got := EscapeFileName(in); got != want {
			t.Errorf("EscapeFileName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDisplayName(t *testing.T) {
	tests := map[string]string{
		"https://x/a.jpg":               "a.jpg",
		"https://bucket/p/q/dog.png?v=1": "dog.png",
		"plain":                         "plain",
	}
	for in, want := range tests {
		if got := DisplayName(in); got != want {
			t.Errorf("DisplayName(%q) = %q, want %q", in, got, want)
		}
	}
}
