package fetch

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetchSuccess(t *testing.T) {
	content := `{"count":1}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Length", "11")
		w.Header().Set("ETag", `"abc123"`)
		_, _ = w.Write([]byte(content))
	}))
	defer server.Close()

	f := NewFetcher()
	resp, err := f.Fetch(context.Background(), server.URL+"/index.json", nil)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.Size != 11 {
		t.Errorf("Size = %d, want 11", resp.Size)
	}
	if resp.ContentType != "application/json" {
		t.Errorf("ContentType = %q, want %q", resp.ContentType, "application/json")
	}
	if resp.ETag != `"abc123"` {
		t.Errorf("ETag = %q, want %q", resp.ETag, `"abc123"`)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if string(body) != content {
		t.Errorf("body = %q, want %q", string(body), content)
	}
}

func TestFetchSendsHeaders(t *testing.T) {
	var gotUA, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		_, _ = w.Write([]byte("{}"))
	}))
	defer server.Close()

	header := http.Header{}
	header.Set("User-Agent", "libyear-test/1.0")
	header.Set("Accept", "application/json")

	resp, err := NewFetcher().Fetch(context.Background(), server.URL, header)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	_ = resp.Body.Close()

	if gotUA != "libyear-test/1.0" {
		t.Errorf("User-Agent = %q, want %q", gotUA, "libyear-test/1.0")
	}
	if gotAccept != "application/json" {
		t.Errorf("Accept = %q, want %q", gotAccept, "application/json")
	}
}

func TestFetchAuthFunc(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("X-NuGet-ApiKey")
		_, _ = w.Write([]byte("{}"))
	}))
	defer server.Close()

	f := NewFetcher(WithAuthFunc(func(string) (string, string) {
		return "X-NuGet-ApiKey", "secret"
	}))
	resp, err := f.Fetch(context.Background(), server.URL, nil)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	_ = resp.Body.Close()

	if gotAuth != "secret" {
		t.Errorf("auth header = %q, want %q", gotAuth, "secret")
	}
}

func TestFetchNotFound(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	f := NewFetcher(WithBaseDelay(time.Millisecond))
	_, err := f.Fetch(context.Background(), server.URL+"/missing/index.json", nil)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Fetch = %v, want ErrNotFound", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 (404 is not retried)", attempts)
	}
}

func TestFetchClientError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("forbidden"))
	}))
	defer server.Close()

	_, err := NewFetcher().Fetch(context.Background(), server.URL, nil)

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("Fetch = %v, want *StatusError", err)
	}
	if statusErr.StatusCode != http.StatusForbidden {
		t.Errorf("StatusCode = %d, want 403", statusErr.StatusCode)
	}
	if statusErr.Body != "forbidden" {
		t.Errorf("Body = %q, want %q", statusErr.Body, "forbidden")
	}
}

func TestFetchRateLimitRetry(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte("{}"))
	}))
	defer server.Close()

	f := NewFetcher(WithBaseDelay(10 * time.Millisecond))
	resp, err := f.Fetch(context.Background(), server.URL, nil)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestFetchServerErrorRetry(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("{}"))
	}))
	defer server.Close()

	f := NewFetcher(WithBaseDelay(10 * time.Millisecond))
	resp, err := f.Fetch(context.Background(), server.URL, nil)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}

func TestFetchMaxRetries(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	f := NewFetcher(WithMaxRetries(2), WithBaseDelay(10*time.Millisecond))
	_, err := f.Fetch(context.Background(), server.URL, nil)
	if !errors.Is(err, ErrUpstreamDown) {
		t.Errorf("expected ErrUpstreamDown, got %v", err)
	}

	// Initial attempt + 2 retries = 3 total
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestFetchContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		_, _ = w.Write([]byte("{}"))
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := NewFetcher().Fetch(ctx, server.URL, nil)
	if err == nil {
		t.Error("expected error on context cancellation")
	}
}

func TestFetchUnknownSize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Transfer-Encoding", "chunked")
		_, _ = w.Write([]byte("{}"))
	}))
	defer server.Close()

	resp, err := NewFetcher().Fetch(context.Background(), server.URL, nil)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.Size != -1 {
		t.Errorf("Size = %d, want -1 for unknown", resp.Size)
	}
}
