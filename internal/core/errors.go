package core

import (
	"errors"
	"fmt"
)

// ErrEmptyVersion is wrapped by VersionError for blank version tokens.
var ErrEmptyVersion = errors.New("empty version")

// VersionError is returned when a version token cannot be parsed.
type VersionError struct {
	Value string
	Err   error
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("invalid version %q: %v", e.Value, e.Err)
}

func (e *VersionError) Unwrap() error {
	return e.Err
}

// ResolveError records a package whose release history could not be fetched.
type ResolveError struct {
	Project string
	Name    string
	Err     error
}

func (e *ResolveError) Error() string {
	if e.Project != "" {
		return fmt.Sprintf("%s: resolving %s: %v", e.Project, e.Name, e.Err)
	}
	return fmt.Sprintf("resolving %s: %v", e.Name, e.Err)
}

func (e *ResolveError) Unwrap() error {
	return e.Err
}
