package core

import (
	"math"
	"strings"
	"testing"
)

func ptr(f float64) *float64 { return &f }

func limitsSolution() SolutionResult {
	behind := Result{Name: "test1", Current: release("0.1.0", "2023-05-24"), Latest: release("1.0.0", "2024-05-24")}
	small := Result{Name: "test2", Current: release("1.0.0", "2024-04-24"), Latest: release("1.1.0", "2024-05-24")}
	return SolutionResult{Projects: []ProjectResult{
		{Source: "a.csproj", Results: []Result{behind, small}},
		{Source: "b.csproj", Results: []Result{small}},
	}}
}

func TestLimitsAny(t *testing.T) {
	violations := Limits{Any: ptr(0.5)}.Evaluate(limitsSolution())
	if len(violations) != 1 {
		t.Fatalf("got %d violations, want 1: %v", len(violations), violations)
	}
	v := violations[0]
	if v.Kind != LimitAny || v.Package != "test1" || v.Project != "a.csproj" {
		t.Errorf("unexpected violation %+v", v)
	}
	if math.Abs(v.Value-1.0) > 0.01 {
		t.Errorf("Value = %v, want about 1.0", v.Value)
	}
	if v.Limit != 0.5 {
		t.Errorf("Limit = %v, want 0.5", v.Limit)
	}
}

func TestLimitsProjectAndTotal(t *testing.T) {
	violations := Limits{Total: ptr(1.0), Project: ptr(0.5)}.Evaluate(limitsSolution())
	if len(violations) != 2 {
		t.Fatalf("got %d violations, want 2: %v", len(violations), violations)
	}
	if violations[0].Kind != LimitTotal {
		t.Errorf("first violation kind = %q, want total", violations[0].Kind)
	}
	if violations[1].Kind != LimitProject || violations[1].Project != "a.csproj" {
		t.Errorf("second violation = %+v, want project a.csproj", violations[1])
	}
}

func TestLimitsStrict(t *testing.T) {
	s := SolutionResult{Projects: []ProjectResult{{
		Source:  "a.csproj",
		Results: []Result{{Name: "x", Current: release("1.0.0", "2024-01-01"), Latest: release("1.0.0", "2024-01-01")}},
	}}}
	violations := Limits{Total: ptr(0), Project: ptr(0), Any: ptr(0)}.Evaluate(s)
	if len(violations) != 0 {
		t.Errorf("value equal to limit should pass, got %v", violations)
	}
}

func TestLimitsUnset(t *testing.T) {
	var l Limits
	if !l.IsZero() {
		t.Error("IsZero() = false for empty limits")
	}
	if violations := l.Evaluate(limitsSolution()); len(violations) != 0 {
		t.Errorf("unset limits produced %v", violations)
	}
}

func TestViolationString(t *testing.T) {
	tests := []struct {
		v    Violation
		want string
	}{
		{Violation{Kind: LimitTotal, Value: 2, Limit: 1}, "total is 2.00"},
		{Violation{Kind: LimitProject, Project: "a.csproj", Value: 2, Limit: 1}, "project a.csproj"},
		{Violation{Kind: LimitAny, Project: "a.csproj", Package: "test1", Value: 1, Limit: 0.5}, "package test1 in a.csproj"},
	}
	for _, tt := range tests {
		if got := tt.v.String(); !strings.Contains(got, tt.want) {
			t.Errorf("String() = %q, want it to contain %q", got, tt.want)
		}
	}
}
