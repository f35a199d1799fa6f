package core

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	defaultFetchTimeout = 30 * time.Second
	defaultConcurrency  = 15
)

type history struct {
	releases []Release
	err      error
}

// Resolver turns package references into Results against one registry.
// Release histories are fetched at most once per package name for the
// lifetime of the Resolver, including failed fetches.
type Resolver struct {
	registry    Registry
	timeout     time.Duration
	concurrency int
	logger      logr.Logger

	mu      sync.Mutex
	cache   map[string]history
	group   singleflight.Group
	fetches atomic.Int64
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithFetchTimeout bounds a single registry fetch. Non-positive values keep the default.
func WithFetchTimeout(d time.Duration) ResolverOption {
	return func(r *Resolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithConcurrency sets how many packages ResolveAll resolves at once.
func WithConcurrency(n int) ResolverOption {
	return func(r *Resolver) { r.concurrency = n }
}

// WithLogger sets the logger.
func WithLogger(l logr.Logger) ResolverOption {
	return func(r *Resolver) { r.logger = l }
}

// NewResolver creates a Resolver with an empty cache.
func NewResolver(reg Registry, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		registry:    reg,
		timeout:     defaultFetchTimeout,
		concurrency: defaultConcurrency,
		logger:      logr.Discard(),
		cache:       make(map[string]history),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.concurrency < 1 {
		r.concurrency = 1
	}
	return r
}

// Registry returns the registry the resolver reads from.
func (r *Resolver) Registry() Registry {
	return r.registry
}

// Fetches returns the number of registry round trips made so far.
func (r *Resolver) Fetches() int64 {
	return r.fetches.Load()
}

func (r *Resolver) lookup(name string) (history, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.cache[name]
	return h, ok
}

// History returns every release of name sorted by ascending version.
// Concurrent callers for the same name share one fetch. The returned slice
// is shared and must not be modified.
func (r *Resolver) History(ctx context.Context, name string) ([]Release, error) {
	if h, ok := r.lookup(name); ok {
		r.logger.V(1).Info("cache hit", "package", name)
		return h.releases, h.err
	}

	ch := r.group.DoChan(name, func() (any, error) {
		if h, ok := r.lookup(name); ok {
			return h, nil
		}
		h := r.fetch(ctx, name)
		r.mu.Lock()
		r.cache[name] = h
		r.mu.Unlock()
		return h, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		h := res.Val.(history)
		return h.releases, h.err
	}
}

// fetch runs detached from the caller's cancellation so that a caller
// giving up does not poison the shared result for the others waiting on it.
func (r *Resolver) fetch(ctx context.Context, name string) history {
	fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()

	r.fetches.Add(1)
	start := time.Now()
	releases, err := r.registry.FetchReleases(fetchCtx, name)
	if err != nil {
		r.logger.V(1).Info("fetch failed", "package", name, "error", err.Error())
		return history{err: err}
	}

	sorted := slices.Clone(releases)
	slices.SortStableFunc(sorted, func(a, b Release) int {
		return a.Version.Compare(b.Version)
	})
	r.logger.V(1).Info("fetched releases", "package", name, "releases", len(sorted), "elapsed", time.Since(start))
	return history{releases: sorted}
}

// Resolve looks up the current and latest releases for ref. On failure the
// returned Result carries only the name and the error is a *ResolveError.
func (r *Resolver) Resolve(ctx context.Context, ref PackageReference) (Result, error) {
	result := Result{Name: ref.Name, Installed: ref.Version}

	releases, err := r.History(ctx, ref.Name)
	if err != nil {
		return result, &ResolveError{Name: ref.Name, Err: err}
	}

	result.Current, result.Latest = SelectReleases(releases, ref.Version)
	return result, nil
}

// ResolveAll resolves refs concurrently. Results are returned in the order
// of refs; failed packages keep their slot with nil releases and are also
// reported in the returned failures.
func (r *Resolver) ResolveAll(ctx context.Context, refs []PackageReference) ([]Result, []*ResolveError) {
	results := make([]Result, len(refs))
	errs := make([]*ResolveError, len(refs))

	var g errgroup.Group
	g.SetLimit(r.concurrency)
	for i, ref := range refs {
		g.Go(func() error {
			res, err := r.Resolve(ctx, ref)
			results[i] = res
			if err != nil {
				var resolveErr *ResolveError
				if !errors.As(err, &resolveErr) {
					resolveErr = &ResolveError{Name: ref.Name, Err: err}
				}
				errs[i] = resolveErr
			}
			return nil
		})
	}
	_ = g.Wait()

	var failures []*ResolveError
	for _, err := range errs {
		if err != nil {
			failures = append(failures, err)
		}
	}
	return results, failures
}

// SelectReleases picks the release matching installed and the newest
// listed stable release from a history. A wildcard installed version is
// always current.
func SelectReleases(releases []Release, installed *Version) (current, latest *Release) {
	for i := range releases {
		rel := releases[i]
		if current == nil && installed != nil && !installed.IsWildcard() && rel.Version.Equal(installed) {
			current = &rel
		}
		if rel.Listed && !rel.Version.IsPrerelease() && (latest == nil || latest.Version.LessThan(rel.Version)) {
			latest = &rel
		}
	}
	if installed != nil && installed.IsWildcard() {
		current = latest
	}
	return current, latest
}
