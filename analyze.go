package libyear

import (
	"context"
	"errors"
	"time"

	"github.com/go-logr/logr"

	"github.com/git-pkgs/libyear/internal/core"
	"github.com/git-pkgs/libyear/internal/manifest"
	"github.com/git-pkgs/libyear/internal/nuget"
)

// Options describe one run.
type Options struct {
	// Paths are project files or directories to search.
	Paths     []string
	Recursive bool

	// Update rewrites outdated declarations to their latest release.
	// With DryRun the files are left alone and Outcome.Diffs holds what
	// would have been written.
	Update bool
	DryRun bool

	Limits Limits
}

// FileDiff is the preview of an update to one file.
type FileDiff struct {
	Path string
	Diff string
}

// Outcome is everything a run produced.
type Outcome struct {
	Solution   SolutionResult
	Updated    []string
	Diffs      []FileDiff
	Violations []Violation
}

// Failures returns the packages whose releases could not be resolved.
func (o *Outcome) Failures() []*ResolveError {
	return o.Solution.Failures()
}

// Analyzer computes libyears for project files. Registry lookups are
// cached for the life of the Analyzer, so use one Analyzer per run.
type Analyzer struct {
	resolver *core.Resolver
	logger   logr.Logger
}

type analyzerOptions struct {
	registry    Registry
	client      *Client
	registryURL string
	timeout     time.Duration
	concurrency int
	logger      logr.Logger
}

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*analyzerOptions)

// WithRegistry replaces the NuGet registry.
func WithRegistry(r Registry) AnalyzerOption {
	return func(o *analyzerOptions) { o.registry = r }
}

// WithClient sets the HTTP client used for the NuGet registry.
func WithClient(c *Client) AnalyzerOption {
	return func(o *analyzerOptions) { o.client = c }
}

// WithRegistryURL points the NuGet registry at another v3 feed.
func WithRegistryURL(u string) AnalyzerOption {
	return func(o *analyzerOptions) { o.registryURL = u }
}

// WithFetchTimeout bounds each registry fetch.
func WithFetchTimeout(d time.Duration) AnalyzerOption {
	return func(o *analyzerOptions) { o.timeout = d }
}

// WithConcurrency sets how many packages are resolved at once.
func WithConcurrency(n int) AnalyzerOption {
	return func(o *analyzerOptions) { o.concurrency = n }
}

// WithLogger sets the logger.
func WithLogger(l logr.Logger) AnalyzerOption {
	return func(o *analyzerOptions) { o.logger = l }
}

// NewAnalyzer creates an Analyzer backed by the NuGet registry unless
// WithRegistry says otherwise.
func NewAnalyzer(opts ...AnalyzerOption) *Analyzer {
	o := &analyzerOptions{logger: logr.Discard()}
	for _, opt := range opts {
		opt(o)
	}

	reg := o.registry
	if reg == nil {
		reg = nuget.New(o.registryURL, o.client)
	}

	resolverOpts := []core.ResolverOption{core.WithLogger(o.logger)}
	if o.timeout > 0 {
		resolverOpts = append(resolverOpts, core.WithFetchTimeout(o.timeout))
	}
	if o.concurrency > 0 {
		resolverOpts = append(resolverOpts, core.WithConcurrency(o.concurrency))
	}

	return &Analyzer{
		resolver: core.NewResolver(reg, resolverOpts...),
		logger:   o.logger,
	}
}

// Resolver returns the Analyzer's resolver.
func (a *Analyzer) Resolver() *Resolver {
	return a.resolver
}

// Load discovers and parses the project files under paths.
func (a *Analyzer) Load(paths []string, recursive bool) ([]*manifest.File, error) {
	found, err := manifest.Discover(paths, recursive)
	if err != nil {
		return nil, err
	}
	a.logger.Info("discovered project files", "count", len(found))

	files := make([]*manifest.File, 0, len(found))
	for _, path := range found {
		f, err := manifest.Load(path)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

// Analyze resolves every package of every file. A file whose declarations
// cannot be read fails the run; a package that cannot be resolved is kept
// with unknown releases and reported in the project's Failures.
func (a *Analyzer) Analyze(ctx context.Context, files []*manifest.File) (SolutionResult, error) {
	var solution SolutionResult
	for _, f := range files {
		refs, err := f.Packages()
		if err != nil {
			return SolutionResult{}, err
		}

		results, failures := a.resolver.ResolveAll(ctx, refs)
		for _, failure := range failures {
			failure.Project = f.Path
		}
		if err := ctx.Err(); err != nil {
			return SolutionResult{}, err
		}

		project := ProjectResult{
			Source:   f.Path,
			Dialect:  f.Dialect.Name,
			Results:  results,
			Failures: failures,
		}
		a.logger.V(1).Info("analyzed project", "path", f.Path, "packages", len(results), "libyears", project.Libyears())
		solution.Projects = append(solution.Projects, project)
	}
	return solution, nil
}

// Update writes the latest release of every outdated package back into the
// file it came from and returns the paths of files that changed. With
// dryRun nothing is written and the would-be changes are returned as diffs.
// A failed file does not stop the others; all failures are joined.
func (a *Analyzer) Update(files []*manifest.File, solution SolutionResult, dryRun bool) ([]string, []FileDiff, error) {
	byPath := make(map[string]*manifest.File, len(files))
	for _, f := range files {
		byPath[f.Path] = f
	}

	var (
		updated []string
		diffs   []FileDiff
		errs    []error
	)
	for _, project := range solution.Projects {
		f, ok := byPath[project.Source]
		if !ok {
			continue
		}

		var outdated []Result
		for _, r := range project.Results {
			if r.IsOutdated() {
				outdated = append(outdated, r)
			}
		}
		if len(outdated) == 0 {
			continue
		}

		if dryRun {
			if d := f.Diff(outdated); d != "" {
				updated = append(updated, f.Path)
				diffs = append(diffs, FileDiff{Path: f.Path, Diff: d})
			}
			continue
		}

		n, err := f.Update(outdated)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if n > 0 {
			a.logger.Info("updated project file", "path", f.Path, "packages", n)
			updated = append(updated, f.Path)
		}
	}
	return updated, diffs, errors.Join(errs...)
}

// Run discovers, analyzes and optionally updates the files named by opts,
// then evaluates the limits.
func (a *Analyzer) Run(ctx context.Context, opts Options) (*Outcome, error) {
	files, err := a.Load(opts.Paths, opts.Recursive)
	if err != nil {
		return nil, err
	}

	solution, err := a.Analyze(ctx, files)
	if err != nil {
		return nil, err
	}

	outcome := &Outcome{Solution: solution}
	if opts.Update {
		outcome.Updated, outcome.Diffs, err = a.Update(files, solution, opts.DryRun)
		if err != nil {
			return outcome, err
		}
	}

	outcome.Violations = opts.Limits.Evaluate(solution)
	return outcome, nil
}

// Run is a convenience for NewAnalyzer(aopts...).Run(ctx, opts).
func Run(ctx context.Context, opts Options, aopts ...AnalyzerOption) (*Outcome, error) {
	return NewAnalyzer(aopts...).Run(ctx, opts)
}
