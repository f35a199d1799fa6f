// Package core provides the shared libyear model, the registry system and
// the release resolver.
package core

import "time"

// Release is one published version of a package as reported by a registry.
// A zero Published time means the registry does not know the publish date.
type Release struct {
	Version    *Version
	Published  time.Time
	Listed     bool
	Deprecated bool
}

// HasPublishDate reports whether the publish date is known.
func (r *Release) HasPublishDate() bool {
	return r != nil && !r.Published.IsZero()
}

// PackageReference is a dependency declared in a project file.
type PackageReference struct {
	Name string

	// Version is nil when the declaration is missing, empty, or a range.
	Version *Version

	// Declared is the version token as written.
	Declared string
}

// IsWildcard reports whether the reference floats to the newest release.
func (p PackageReference) IsWildcard() bool {
	return p.Version != nil && p.Version.IsWildcard()
}

// NewPackageReference builds a reference from a declared version token.
// Empty tokens and ranges yield a nil Version; anything else must parse.
func NewPackageReference(name, declared string) (PackageReference, error) {
	ref := PackageReference{Name: name, Declared: declared}
	if declared == "" || IsRange(declared) {
		return ref, nil
	}
	v, err := ParseVersion(declared)
	if err != nil {
		return ref, err
	}
	ref.Version = v
	return ref, nil
}

// Result pairs a package with its installed and newest releases.
// Current and Latest are nil when unknown.
type Result struct {
	Name      string
	Installed *Version
	Current   *Release
	Latest    *Release
}

// Libyears returns how far Current lags behind Latest.
func (r Result) Libyears() float64 {
	return Libyears(r.Current, r.Latest)
}

// IsOutdated reports whether a newer release than the installed one exists.
func (r Result) IsOutdated() bool {
	if r.Latest == nil {
		return false
	}
	if r.Current == nil {
		return r.Installed == nil || r.Installed.LessThan(r.Latest.Version)
	}
	return r.Current.Version.LessThan(r.Latest.Version)
}

// ProjectResult is the outcome for one project file.
type ProjectResult struct {
	Source   string
	Dialect  string
	Results  []Result
	Failures []*ResolveError
}

// Libyears sums the libyears of every package in the project.
func (p ProjectResult) Libyears() float64 {
	var total float64
	for _, r := range p.Results {
		total += r.Libyears()
	}
	return total
}

// SolutionResult is the outcome for a whole run.
type SolutionResult struct {
	Projects []ProjectResult
}

// Libyears sums the libyears of every project.
func (s SolutionResult) Libyears() float64 {
	var total float64
	for _, p := range s.Projects {
		total += p.Libyears()
	}
	return total
}

// Failures returns every resolution failure across all projects.
func (s SolutionResult) Failures() []*ResolveError {
	var out []*ResolveError
	for _, p := range s.Projects {
		out = append(out, p.Failures...)
	}
	return out
}
