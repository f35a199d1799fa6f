// Package nuget provides a registry client for the NuGet v3 registration API.
package nuget

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/git-pkgs/libyear/internal/core"
)

const (
	DefaultURL = "https://api.nuget.org/v3"
	ecosystem  = "nuget"

	registrationPath = "registration5-gz-semver2"
)

// NuGet publishes unlisted packages with this sentinel year.
const unlistedYear = 1900

func init() {
	core.Register(ecosystem, DefaultURL, func(baseURL string, client *core.Client) core.Registry {
		return New(baseURL, client)
	})
}

type Registry struct {
	baseURL string
	client  *core.Client
	urls    *URLs
}

func New(baseURL string, client *core.Client) *Registry {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")
	if client == nil {
		client = core.DefaultClient()
	}
	r := &Registry{
		baseURL: baseURL,
		client:  client,
	}
	r.urls = &URLs{baseURL: r.baseURL}
	return r
}

func (r *Registry) Ecosystem() string {
	return ecosystem
}

func (r *Registry) URLs() core.URLBuilder {
	return r.urls
}

type registrationResponse struct {
	Count int                `json:"count"`
	Items []registrationPage `json:"items"`
}

type registrationPage struct {
	ID    string             `json:"@id"`
	Count int                `json:"count"`
	Lower string             `json:"lower"`
	Upper string             `json:"upper"`
	Items []registrationLeaf `json:"items"`
}

type registrationLeaf struct {
	CatalogEntry   catalogEntry `json:"catalogEntry"`
	PackageContent string       `json:"packageContent"`
}

type catalogEntry struct {
	ID          string           `json:"id"`
	Version     string           `json:"version"`
	Published   string           `json:"published"`
	Listed      *bool            `json:"listed,omitempty"`
	Deprecation *deprecationInfo `json:"deprecation,omitempty"`
}

type deprecationInfo struct {
	Message string   `json:"message"`
	Reasons []string `json:"reasons"`
}

func (r *Registry) registrationURL(name string) string {
	return fmt.Sprintf("%s/%s/%s/index.json", r.baseURL, registrationPath, url.PathEscape(strings.ToLower(name)))
}

func (r *Registry) fetchRegistration(ctx context.Context, name string) (*registrationResponse, error) {
	var resp registrationResponse
	if err := r.client.GetJSON(ctx, r.registrationURL(name), &resp); err != nil {
		var httpErr *core.HTTPError
		if errors.As(err, &httpErr) && httpErr.IsNotFound() {
			return nil, &core.NotFoundError{Ecosystem: ecosystem, Name: name}
		}
		return nil, err
	}
	return &resp, nil
}

// FetchReleases returns every version in the registration index. Large
// packages split the index into pages that are only referenced by URL;
// those are fetched one after another.
func (r *Registry) FetchReleases(ctx context.Context, name string) ([]core.Release, error) {
	resp, err := r.fetchRegistration(ctx, name)
	if err != nil {
		return nil, err
	}

	var releases []core.Release
	for _, page := range resp.Items {
		items := page.Items
		if items == nil && page.ID != "" {
			var full registrationPage
			if err := r.client.GetJSON(ctx, page.ID, &full); err != nil {
				return nil, fmt.Errorf("fetching registration page %s: %w", page.ID, err)
			}
			items = full.Items
		}

		for _, leaf := range items {
			if rel, ok := toRelease(leaf.CatalogEntry); ok {
				releases = append(releases, rel)
			}
		}
	}

	return releases, nil
}

// toRelease converts a catalog entry. Entries with a version that does not
// parse are dropped.
func toRelease(entry catalogEntry) (core.Release, bool) {
	v, err := core.ParseVersion(entry.Version)
	if err != nil {
		return core.Release{}, false
	}

	rel := core.Release{
		Version:    v,
		Listed:     entry.Listed == nil || *entry.Listed,
		Deprecated: entry.Deprecation != nil,
	}

	if entry.Published != "" {
		if t, err := time.Parse(time.RFC3339, entry.Published); err == nil {
			if t.Year() == unlistedYear {
				rel.Listed = false
			} else {
				rel.Published = t.UTC()
			}
		}
	}

	return rel, true
}

type URLs struct {
	baseURL string
}

func (u *URLs) Registry(name, version string) string {
	if version != "" {
		return fmt.Sprintf("https://www.nuget.org/packages/%s/%s", name, version)
	}
	return fmt.Sprintf("https://www.nuget.org/packages/%s", name)
}

func (u *URLs) Download(name, version string) string {
	if version == "" {
		return ""
	}
	id := strings.ToLower(name)
	ver := strings.ToLower(version)
	return fmt.Sprintf("%s-flatcontainer/%s/%s/%s.%s.nupkg", u.baseURL, id, ver, id, ver)
}

func (u *URLs) PURL(name, version string) string {
	return core.FormatPURL(ecosystem, name, version)
}
