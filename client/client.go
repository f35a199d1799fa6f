// Package client provides the JSON-over-HTTP client used by registry implementations.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-logr/logr"

	"github.com/git-pkgs/libyear/fetch"
)

const defaultUserAgent = "libyear"

// RateLimiter controls request pacing. Wait blocks until a request may be sent.
type RateLimiter interface {
	Wait(ctx context.Context) error
}

// Client is an HTTP client with retry logic for registry APIs.
type Client struct {
	fetcher     fetch.FetcherInterface
	userAgent   string
	rateLimiter RateLimiter
}

type options struct {
	timeout        time.Duration
	maxRetries     int
	baseDelay      time.Duration
	circuitBreaker bool
	rateLimiter    RateLimiter
	logger         logr.Logger
	fetcher        fetch.FetcherInterface
	authFn         func(url string) (string, string)
}

// Option configures a Client.
type Option func(*options)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithMaxRetries sets the maximum number of retries.
func WithMaxRetries(n int) Option {
	return func(o *options) { o.maxRetries = n }
}

// WithBaseDelay sets the initial retry delay.
func WithBaseDelay(d time.Duration) Option {
	return func(o *options) { o.baseDelay = d }
}

// WithCircuitBreaker enables or disables per-host circuit breaking.
func WithCircuitBreaker(enabled bool) Option {
	return func(o *options) { o.circuitBreaker = enabled }
}

// WithRateLimiter paces outgoing requests.
func WithRateLimiter(rl RateLimiter) Option {
	return func(o *options) { o.rateLimiter = rl }
}

// WithLogger sets the logger handed to the transport.
func WithLogger(l logr.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithAuthFunc sets a function returning an auth header for a request URL.
func WithAuthFunc(fn func(url string) (headerName, headerValue string)) Option {
	return func(o *options) { o.authFn = fn }
}

// WithFetcher replaces the transport entirely. Retry and breaker options are ignored.
func WithFetcher(f fetch.FetcherInterface) Option {
	return func(o *options) { o.fetcher = f }
}

// DefaultClient returns a client with sensible defaults:
// - 30s timeout
// - 5 retries with exponential backoff
// - Retry on 429 and 5xx responses
// - Circuit breaker per registry host
func DefaultClient() *Client {
	return NewClient()
}

// NewClient creates a new client with the given options.
func NewClient(opts ...Option) *Client {
	o := &options{
		timeout:        30 * time.Second,
		maxRetries:     5,
		baseDelay:      500 * time.Millisecond,
		circuitBreaker: true,
		logger:         logr.Discard(),
	}
	for _, opt := range opts {
		opt(o)
	}

	f := o.fetcher
	if f == nil {
		fetchOpts := []fetch.Option{
			fetch.WithTimeout(o.timeout),
			fetch.WithMaxRetries(o.maxRetries),
			fetch.WithBaseDelay(o.baseDelay),
			fetch.WithLogger(o.logger),
		}
		if o.authFn != nil {
			fetchOpts = append(fetchOpts, fetch.WithAuthFunc(o.authFn))
		}
		f = fetch.NewFetcher(fetchOpts...)
		if o.circuitBreaker {
			f = fetch.NewCircuitBreakerFetcher(f)
		}
	}

	return &Client{
		fetcher:     f,
		userAgent:   defaultUserAgent,
		rateLimiter: o.rateLimiter,
	}
}

// WithUserAgent returns a copy of the client sending the given User-Agent.
func (c *Client) WithUserAgent(ua string) *Client {
	clone := *c
	clone.userAgent = ua
	return &clone
}

// UserAgent returns the User-Agent header value sent with every request.
func (c *Client) UserAgent() string {
	return c.userAgent
}

// GetJSON fetches url and decodes the JSON response body into v.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	body, err := c.get(ctx, url, "application/json")
	if err != nil {
		return err
	}
	defer func() { _ = body.Close() }()

	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("decoding %s: %w", url, err)
	}
	return nil
}

// GetBody fetches url and returns the raw response body.
func (c *Client) GetBody(ctx context.Context, url string) ([]byte, error) {
	body, err := c.get(ctx, url, "")
	if err != nil {
		return nil, err
	}
	defer func() { _ = body.Close() }()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}
	return data, nil
}

func (c *Client) get(ctx context.Context, url, accept string) (io.ReadCloser, error) {
	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	header := http.Header{}
	header.Set("User-Agent", c.userAgent)
	if accept != "" {
		header.Set("Accept", accept)
	}

	resp, err := c.fetcher.Fetch(ctx, url, header)
	if err != nil {
		return nil, translateError(url, err)
	}
	return resp.Body, nil
}

// translateError maps transport errors onto the client's error types.
func translateError(url string, err error) error {
	var statusErr *fetch.StatusError
	switch {
	case errors.Is(err, fetch.ErrNotFound):
		return &HTTPError{StatusCode: http.StatusNotFound, URL: url}
	case errors.Is(err, fetch.ErrRateLimited):
		return &RateLimitError{URL: url}
	case errors.As(err, &statusErr):
		return &HTTPError{StatusCode: statusErr.StatusCode, URL: url, Body: statusErr.Body}
	default:
		return err
	}
}
