package core

import "fmt"

// LimitKind names which threshold a Violation breached.
type LimitKind string

const (
	LimitTotal   LimitKind = "total"
	LimitProject LimitKind = "project"
	LimitAny     LimitKind = "any"
)

// Limits are optional libyear thresholds. A nil field is not checked.
// Each check is strict: a value equal to its limit passes.
type Limits struct {
	Total   *float64
	Project *float64
	Any     *float64
}

// IsZero reports whether no limit is set.
func (l Limits) IsZero() bool {
	return l.Total == nil && l.Project == nil && l.Any == nil
}

// Violation is a breached limit.
type Violation struct {
	Kind    LimitKind
	Project string
	Package string
	Value   float64
	Limit   float64
}

func (v Violation) String() string {
	switch v.Kind {
	case LimitProject:
		return fmt.Sprintf("project %s is %.2f libyears behind, limit is %.2f", v.Project, v.Value, v.Limit)
	case LimitAny:
		return fmt.Sprintf("package %s in %s is %.2f libyears behind, limit is %.2f", v.Package, v.Project, v.Value, v.Limit)
	default:
		return fmt.Sprintf("total is %.2f libyears behind, limit is %.2f", v.Value, v.Limit)
	}
}

// Evaluate checks the solution against every set limit. Violations are
// ordered total first, then per project with its package violations after it.
func (l Limits) Evaluate(s SolutionResult) []Violation {
	var out []Violation
	if l.Total != nil {
		if total := s.Libyears(); total > *l.Total {
			out = append(out, Violation{Kind: LimitTotal, Value: total, Limit: *l.Total})
		}
	}
	for _, p := range s.Projects {
		if l.Project != nil {
			if v := p.Libyears(); v > *l.Project {
				out = append(out, Violation{Kind: LimitProject, Project: p.Source, Value: v, Limit: *l.Project})
			}
		}
		if l.Any != nil {
			for _, r := range p.Results {
				if v := r.Libyears(); v > *l.Any {
					out = append(out, Violation{Kind: LimitAny, Project: p.Source, Package: r.Name, Value: v, Limit: *l.Any})
				}
			}
		}
	}
	return out
}
