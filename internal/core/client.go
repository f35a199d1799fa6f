package core

import (
	"github.com/git-pkgs/libyear/client"
)

// Type aliases for registry implementations.
type (
	RateLimiter    = client.RateLimiter
	Client         = client.Client
	URLBuilder     = client.URLBuilder
	BaseURLs       = client.BaseURLs
	HTTPError      = client.HTTPError
	NotFoundError  = client.NotFoundError
	RateLimitError = client.RateLimitError
)

var (
	ErrNotFound   = client.ErrNotFound
	DefaultClient = client.DefaultClient
	NewClient     = client.NewClient
	BuildURLs     = client.BuildURLs
)
