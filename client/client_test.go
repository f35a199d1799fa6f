package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestDefaultClient_UserAgent(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := DefaultClient()
	_, _ = c.GetBody(context.Background(), server.URL)

	if gotUA != "libyear" {
		t.Errorf("default User-Agent = %q, want %q", gotUA, "libyear")
	}
}

func TestClient_WithUserAgent(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	base := DefaultClient()
	c := base.WithUserAgent("custom-agent/2.0")
	_, _ = c.GetBody(context.Background(), server.URL)

	if gotUA != "custom-agent/2.0" {
		t.Errorf("User-Agent = %q, want %q", gotUA, "custom-agent/2.0")
	}
	if base.UserAgent() != "libyear" {
		t.Errorf("WithUserAgent modified the original client: %q", base.UserAgent())
	}
}

func TestClient_GetJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("Accept = %q, want application/json", got)
		}
		_, _ = w.Write([]byte(`{"count":2,"items":["a","b"]}`))
	}))
	defer server.Close()

	var resp struct {
		Count int      `json:"count"`
		Items []string `json:"items"`
	}
	if err := DefaultClient().GetJSON(context.Background(), server.URL, &resp); err != nil {
		t.Fatalf("GetJSON failed: %v", err)
	}
	if resp.Count != 2 || len(resp.Items) != 2 {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestClient_GetJSONInvalidBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	var v map[string]any
	if err := DefaultClient().GetJSON(context.Background(), server.URL, &v); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestClient_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	var v map[string]any
	err := DefaultClient().GetJSON(context.Background(), server.URL, &v)

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *HTTPError, got %T: %v", err, err)
	}
	if !httpErr.IsNotFound() {
		t.Errorf("IsNotFound() = false for status %d", httpErr.StatusCode)
	}
}

func TestClient_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := NewClient(WithMaxRetries(1), WithBaseDelay(time.Millisecond), WithCircuitBreaker(false))
	_, err := c.GetBody(context.Background(), server.URL)

	var rl *RateLimitError
	if !errors.As(err, &rl) {
		t.Fatalf("expected *RateLimitError, got %v", err)
	}
}

type countingLimiter struct {
	calls int
}

func (l *countingLimiter) Wait(context.Context) error {
	l.calls++
	return nil
}

func TestClient_RateLimiter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	limiter := &countingLimiter{}
	c := NewClient(WithRateLimiter(limiter))
	for range 3 {
		if _, err := c.GetBody(context.Background(), server.URL); err != nil {
			t.Fatalf("GetBody failed: %v", err)
		}
	}
	if limiter.calls != 3 {
		t.Errorf("limiter calls = %d, want 3", limiter.calls)
	}
}

func TestNotFoundErrorUnwrap(t *testing.T) {
	err := &NotFoundError{Ecosystem: "nuget", Name: "Missing.Package"}
	if !errors.Is(err, ErrNotFound) {
		t.Error("NotFoundError should unwrap to ErrNotFound")
	}
	if got := err.Error(); got != "nuget: package Missing.Package not found" {
		t.Errorf("Error() = %q", got)
	}
}

func TestBuildURLs(t *testing.T) {
	urls := &BaseURLs{
		RegistryFn: func(name, version string) string { return "https://example.test/" + name },
	}
	got := BuildURLs(urls, "pkg", "1.0.0")
	if got["registry"] != "https://example.test/pkg" {
		t.Errorf("registry = %q", got["registry"])
	}
	if _, ok := got["download"]; ok {
		t.Error("download should be omitted when empty")
	}
	if got["purl"] != "pkg:generic/pkg@1.0.0" {
		t.Errorf("purl = %q", got["purl"])
	}
}
