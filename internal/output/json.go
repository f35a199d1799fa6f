package output

import (
	"encoding/json"
	"time"

	"github.com/git-pkgs/libyear/internal/core"
)

type jsonSolution struct {
	Projects []jsonProject `json:"Projects"`
	Total    float64       `json:"Total"`
}

type jsonProject struct {
	Project  string        `json:"Project"`
	Dialect  string        `json:"Dialect,omitempty"`
	Libyears float64       `json:"Libyears"`
	Packages []jsonPackage `json:"Packages"`
}

type jsonPackage struct {
	Name        string       `json:"Name"`
	Installed   string       `json:"Installed,omitempty"`
	Current     *jsonRelease `json:"Current"`
	Latest      *jsonRelease `json:"Latest"`
	Libyears    float64      `json:"Libyears"`
	Outdated    bool         `json:"Outdated"`
	PURL        string       `json:"PURL,omitempty"`
	RegistryURL string       `json:"RegistryURL,omitempty"`
}

type jsonRelease struct {
	Version    string     `json:"Version"`
	Published  *time.Time `json:"Published"`
	Deprecated bool       `json:"Deprecated,omitempty"`
}

// JSON writes the solution as one indented document. Quiet mode drops
// up-to-date packages and projects left empty; totals are unaffected.
func (r *Renderer) JSON(s core.SolutionResult) error {
	doc := jsonSolution{Projects: []jsonProject{}, Total: s.Libyears()}
	for _, p := range s.Projects {
		jp := jsonProject{
			Project:  p.Source,
			Dialect:  p.Dialect,
			Libyears: p.Libyears(),
			Packages: []jsonPackage{},
		}
		for _, res := range p.Results {
			if r.Quiet && !res.IsOutdated() {
				continue
			}
			jp.Packages = append(jp.Packages, r.jsonPackage(res))
		}
		if len(jp.Packages) == 0 {
			continue
		}
		doc.Projects = append(doc.Projects, jp)
	}

	enc := json.NewEncoder(r.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func (r *Renderer) jsonPackage(res core.Result) jsonPackage {
	pkg := jsonPackage{
		Name:     res.Name,
		Current:  toJSONRelease(res.Current),
		Latest:   toJSONRelease(res.Latest),
		Libyears: res.Libyears(),
		Outdated: res.IsOutdated(),
	}
	if res.Installed != nil {
		pkg.Installed = res.Installed.String()
	}
	if r.URLs != nil {
		version := pkg.Installed
		switch {
		case res.Current != nil:
			version = res.Current.Version.String()
		case res.Installed != nil && res.Installed.IsWildcard():
			version = ""
		}
		pkg.PURL = r.URLs.PURL(res.Name, version)
		pkg.RegistryURL = r.URLs.Registry(res.Name, version)
	}
	return pkg
}

func toJSONRelease(rel *core.Release) *jsonRelease {
	if rel == nil {
		return nil
	}
	out := &jsonRelease{Version: rel.Version.String(), Deprecated: rel.Deprecated}
	if rel.HasPublishDate() {
		t := rel.Published.UTC()
		out.Published = &t
	}
	return out
}
