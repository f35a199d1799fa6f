// Package manifest reads and rewrites the package declarations of XML
// project files. Rewrites touch only the bytes of the version values they
// change, so formatting, comments and unrelated declarations survive.
package manifest

import (
	"path/filepath"
	"strings"
)

// Dialect describes one XML dependency-file format: which file names it
// claims, which elements declare packages, and where in those elements the
// identifier and the version live. Each of NameKeys and VersionKeys is
// probed in order, first as an attribute and then as a direct child
// element; the first present one wins.
type Dialect struct {
	Name        string
	Patterns    []string
	Elements    []string
	NameKeys    []string
	VersionKeys []string
}

var (
	// SDK-style project files.
	Project = Dialect{
		Name:        "csproj",
		Patterns:    []string{"*.csproj", "*.fsproj", "*.vbproj"},
		Elements:    []string{"PackageReference"},
		NameKeys:    []string{"Include", "Update"},
		VersionKeys: []string{"Version"},
	}

	// MSBuild files imported into every project below their directory.
	BuildProps = Dialect{
		Name:        "build-props",
		Patterns:    []string{"Directory.Build.props", "Directory.Build.targets"},
		Elements:    []string{"PackageReference"},
		NameKeys:    []string{"Include", "Update"},
		VersionKeys: []string{"Version"},
	}

	// Central package management.
	CentralPackages = Dialect{
		Name:        "central-packages",
		Patterns:    []string{"Directory.Packages.props"},
		Elements:    []string{"PackageVersion"},
		NameKeys:    []string{"Include", "Update"},
		VersionKeys: []string{"Version"},
	}

	// Legacy packages.config.
	PackagesConfig = Dialect{
		Name:        "packages-config",
		Patterns:    []string{"packages.config"},
		Elements:    []string{"package"},
		NameKeys:    []string{"id"},
		VersionKeys: []string{"version"},
	}
)

// Dialects returns the built-in dialects.
func Dialects() []Dialect {
	return []Dialect{Project, BuildProps, CentralPackages, PackagesConfig}
}

// Matches reports whether the base name of path is claimed by the dialect.
// File names compare case-insensitively.
func (d Dialect) Matches(path string) bool {
	base := strings.ToLower(filepath.Base(path))
	for _, pattern := range d.Patterns {
		if ok, _ := filepath.Match(strings.ToLower(pattern), base); ok {
			return true
		}
	}
	return false
}

// DialectFor returns the first built-in dialect claiming path.
func DialectFor(path string) (Dialect, bool) {
	for _, d := range Dialects() {
		if d.Matches(path) {
			return d, true
		}
	}
	return Dialect{}, false
}

func (d Dialect) isElement(local string) bool {
	return containsFold(d.Elements, local)
}

func (d Dialect) isKey(local string) bool {
	return containsFold(d.NameKeys, local) || containsFold(d.VersionKeys, local)
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
