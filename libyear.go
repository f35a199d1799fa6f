// Package libyear measures how far the NuGet dependencies of .NET projects
// lag behind their newest releases, in libyears: the time between the
// publish date of the installed release and that of the latest one.
//
// Basic usage:
//
//	import (
//		"context"
//		"github.com/git-pkgs/libyear"
//	)
//
//	outcome, err := libyear.Run(context.Background(), libyear.Options{
//		Paths: []string{"."},
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Printf("%.2f libyears\n", outcome.Solution.Libyears())
//
// To resolve packages through the registry factory by PURL, import every
// supported ecosystem for its side effects:
//
//	import (
//		"github.com/git-pkgs/libyear"
//		_ "github.com/git-pkgs/libyear/all"
//	)
package libyear

import (
	"context"

	"github.com/git-pkgs/purl"

	"github.com/git-pkgs/libyear/client"
	"github.com/git-pkgs/libyear/internal/core"
)

// Re-export types from internal/core
type (
	// Registry is the interface implemented by registry clients.
	Registry = core.Registry

	// Version is a parsed package version.
	Version = core.Version

	// Release is one published version of a package.
	Release = core.Release

	// PackageReference is a dependency declared in a project file.
	PackageReference = core.PackageReference

	// Result pairs a package with its installed and newest releases.
	Result = core.Result

	// ProjectResult is the outcome for one project file.
	ProjectResult = core.ProjectResult

	// SolutionResult is the outcome for a whole run.
	SolutionResult = core.SolutionResult

	// Limits are optional libyear thresholds.
	Limits = core.Limits

	// Violation is a breached limit.
	Violation = core.Violation

	// LimitKind names which threshold a Violation breached.
	LimitKind = core.LimitKind

	// Resolver resolves package references with a run-scoped cache.
	Resolver = core.Resolver

	// ResolverOption configures a Resolver.
	ResolverOption = core.ResolverOption
)

// Re-export types from client
type (
	// Client is an HTTP client with retry logic for registry APIs.
	Client = client.Client

	// URLBuilder constructs URLs for a registry.
	URLBuilder = client.URLBuilder

	// RateLimiter controls request pacing.
	RateLimiter = client.RateLimiter
)

// Re-export constants
const (
	LimitTotal   = core.LimitTotal
	LimitProject = core.LimitProject
	LimitAny     = core.LimitAny

	DaysPerYear = core.DaysPerYear
)

// Re-export errors
var (
	ErrNotFound     = client.ErrNotFound
	ErrEmptyVersion = core.ErrEmptyVersion
)

// Error types
type (
	HTTPError      = client.HTTPError
	NotFoundError  = client.NotFoundError
	RateLimitError = client.RateLimitError
	VersionError   = core.VersionError
	ResolveError   = core.ResolveError
)

// New creates a new registry for the given ecosystem.
// If baseURL is empty, the default registry URL is used.
// If client is nil, DefaultClient() is used.
func New(ecosystem string, baseURL string, c *Client) (Registry, error) {
	return core.New(ecosystem, baseURL, c)
}

// DefaultClient returns a client with sensible defaults:
// - 30s timeout
// - 5 retries with exponential backoff
// - Retry on 429 and 5xx responses
func DefaultClient() *Client {
	return client.DefaultClient()
}

// NewClient creates a new client with the given options.
func NewClient(opts ...Option) *Client {
	return client.NewClient(opts...)
}

// Option configures a Client.
type Option = client.Option

// WithTimeout sets the HTTP client timeout.
var WithTimeout = client.WithTimeout

// WithMaxRetries sets the maximum number of retries.
var WithMaxRetries = client.WithMaxRetries

// SupportedEcosystems returns all registered ecosystem types.
// Note: ecosystems must be imported to be registered.
func SupportedEcosystems() []string {
	return core.SupportedEcosystems()
}

// BuildURLs returns a map of all non-empty URLs for a package.
// Keys are "registry", "download", and "purl".
func BuildURLs(urls URLBuilder, name, version string) map[string]string {
	return client.BuildURLs(urls, name, version)
}

// DefaultURL returns the default registry URL for an ecosystem.
func DefaultURL(ecosystem string) string {
	return core.DefaultURL(ecosystem)
}

// ParseVersion parses a version token.
func ParseVersion(s string) (*Version, error) {
	return core.ParseVersion(s)
}

// Libyears returns how far current lags behind latest, in years.
func Libyears(current, latest *Release) float64 {
	return core.Libyears(current, latest)
}

// NewResolver creates a Resolver with an empty cache.
func NewResolver(reg Registry, opts ...ResolverOption) *Resolver {
	return core.NewResolver(reg, opts...)
}

// PURL represents a parsed Package URL.
type PURL = purl.PURL

// ParsePURL parses a Package URL string into its components.
// Supports both package PURLs (pkg:nuget/Serilog) and version PURLs (pkg:nuget/Serilog@3.1.0).
func ParsePURL(purlStr string) (*PURL, error) {
	return purl.Parse(purlStr)
}

// NewFromPURL creates a registry client from a PURL and returns the parsed components.
// Returns the registry, full package name, and version (empty if not in PURL).
func NewFromPURL(purl string, c *Client) (Registry, string, string, error) {
	return core.NewFromPURL(purl, c)
}

// ResolvePURL resolves the installed and latest releases of a single PURL.
func ResolvePURL(ctx context.Context, purl string, c *Client, opts ...ResolverOption) (Result, error) {
	return core.ResolvePURL(ctx, purl, c, opts...)
}
