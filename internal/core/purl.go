package core

import (
	"context"
	"fmt"

	packageurl "github.com/package-url/packageurl-go"
)

// PURL wraps packageurl.PackageURL with registry-specific helpers.
type PURL struct {
	packageurl.PackageURL
}

// FullName returns the package name in the format expected by the registry.
func (p PURL) FullName() string {
	if p.Namespace == "" {
		return p.Name
	}
	return p.Namespace + "/" + p.Name
}

// ParsePURL parses a Package URL string into its components.
// Supports both package PURLs (pkg:nuget/Newtonsoft.Json) and version PURLs
// (pkg:nuget/Newtonsoft.Json@13.0.3).
func ParsePURL(purl string) (*PURL, error) {
	p, err := packageurl.FromString(purl)
	if err != nil {
		return nil, err
	}
	return &PURL{p}, nil
}

// FormatPURL builds a PURL string for a package, omitting the version when empty.
func FormatPURL(ecosystem, name, version string) string {
	return packageurl.NewPackageURL(ecosystem, "", name, version, nil, "").ToString()
}

// NewFromPURL creates a registry client from a PURL and returns the parsed components.
// Returns the registry, full package name, and version (empty if not in PURL).
// If the PURL has a repository_url qualifier, it's used as the base URL for private feeds.
func NewFromPURL(purl string, client *Client) (Registry, string, string, error) {
	p, err := ParsePURL(purl)
	if err != nil {
		return nil, "", "", err
	}

	baseURL := p.Qualifiers.Map()["repository_url"]

	reg, err := New(p.Type, baseURL, client)
	if err != nil {
		return nil, "", "", err
	}

	return reg, p.FullName(), p.Version, nil
}

// ResolvePURL resolves a single PURL to a Result. A PURL without a version
// resolves only the latest release.
func ResolvePURL(ctx context.Context, purl string, client *Client, opts ...ResolverOption) (Result, error) {
	reg, name, version, err := NewFromPURL(purl, client)
	if err != nil {
		return Result{}, err
	}

	ref, err := NewPackageReference(name, version)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", purl, err)
	}

	return NewResolver(reg, opts...).Resolve(ctx, ref)
}
