package core

import (
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Version is a package version as declared in a project file or published
// to a registry. It follows semantic versioning precedence, with two
// additions: an optional fourth "revision" segment (1.2.3.4) ordered after
// patch, and floating declarations (1.2.*) which parse to their fixed prefix
// and report IsWildcard.
//
// Versions are immutable; String returns the text exactly as it was parsed.
type Version struct {
	sv       *semver.Version
	revision uint64
	raw      string
	wildcard bool
}

// ParseVersion parses a version token. It returns a *VersionError when the
// token is empty or not a valid version.
func ParseVersion(s string) (*Version, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return nil, &VersionError{Value: s, Err: ErrEmptyVersion}
	}

	v := &Version{raw: raw}
	value := raw
	if i := strings.IndexByte(value, '*'); i >= 0 {
		v.wildcard = true
		value = strings.TrimRight(value[:i], ".-")
		if value == "" {
			value = "0"
		}
	}

	numbers, suffix := value, ""
	if i := strings.IndexAny(value, "-+"); i >= 0 {
		numbers, suffix = value[:i], value[i:]
	}
	if parts := strings.Split(numbers, "."); len(parts) == 4 {
		rev, err := strconv.ParseUint(parts[3], 10, 64)
		if err != nil {
			return nil, &VersionError{Value: s, Err: err}
		}
		v.revision = rev
		numbers = strings.Join(parts[:3], ".")
	}

	sv, err := semver.NewVersion(numbers + suffix)
	if err != nil {
		return nil, &VersionError{Value: s, Err: err}
	}
	v.sv = sv
	return v, nil
}

// MustParseVersion is like ParseVersion but panics on error.
func MustParseVersion(s string) *Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

// IsRange reports whether a declared token is a bracketed version range
// such as "[1.0,2.0)".
func IsRange(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "[") || strings.HasPrefix(s, "(")
}

func (v *Version) Major() uint64    { return v.sv.Major() }
func (v *Version) Minor() uint64    { return v.sv.Minor() }
func (v *Version) Patch() uint64    { return v.sv.Patch() }
func (v *Version) Revision() uint64 { return v.revision }

// Prerelease returns the pre-release label without the leading hyphen.
func (v *Version) Prerelease() string { return v.sv.Prerelease() }

// Metadata returns the build metadata without the leading plus.
func (v *Version) Metadata() string { return v.sv.Metadata() }

// IsPrerelease reports whether the version carries a pre-release label.
func (v *Version) IsPrerelease() bool { return v.sv.Prerelease() != "" }

// IsWildcard reports whether the version was declared as a floating token.
func (v *Version) IsWildcard() bool { return v.wildcard }

// Compare returns -1, 0 or 1. Build metadata does not take part in ordering.
func (v *Version) Compare(o *Version) int {
	if c := v.sv.Compare(o.sv); c != 0 {
		return c
	}
	switch {
	case v.revision < o.revision:
		return -1
	case v.revision > o.revision:
		return 1
	}
	return 0
}

// Equal reports whether both versions have the same precedence.
func (v *Version) Equal(o *Version) bool {
	if v == nil || o == nil {
		return v == o
	}
	return v.Compare(o) == 0
}

// LessThan reports whether v sorts before o.
func (v *Version) LessThan(o *Version) bool { return v.Compare(o) < 0 }

// String returns the version exactly as written.
func (v *Version) String() string {
	if v == nil {
		return ""
	}
	return v.raw
}

// Normalized returns the canonical major.minor.patch[.revision][-pre][+meta] form.
func (v *Version) Normalized() string {
	var b strings.Builder
	b.WriteString(strconv.FormatUint(v.Major(), 10))
	b.WriteByte('.')
	b.WriteString(strconv.FormatUint(v.Minor(), 10))
	b.WriteByte('.')
	b.WriteString(strconv.FormatUint(v.Patch(), 10))
	if v.revision != 0 {
		b.WriteByte('.')
		b.WriteString(strconv.FormatUint(v.revision, 10))
	}
	if pre := v.Prerelease(); pre != "" {
		b.WriteByte('-')
		b.WriteString(pre)
	}
	if meta := v.Metadata(); meta != "" {
		b.WriteByte('+')
		b.WriteString(meta)
	}
	return b.String()
}

// MarshalText implements encoding.TextMarshaler.
func (v *Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Version) UnmarshalText(text []byte) error {
	parsed, err := ParseVersion(string(text))
	if err != nil {
		return err
	}
	*v = *parsed
	return nil
}
