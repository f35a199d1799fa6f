package core

import (
	"errors"
	"testing"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		input      string
		major      uint64
		minor      uint64
		patch      uint64
		revision   uint64
		prerelease string
		wildcard   bool
	}{
		{"1.2.3", 1, 2, 3, 0, "", false},
		{"1.2", 1, 2, 0, 0, "", false},
		{"1", 1, 0, 0, 0, "", false},
		{"1.2.3.4", 1, 2, 3, 4, "", false},
		{"1.2.3-beta.1", 1, 2, 3, 0, "beta.1", false},
		{"1.2.3.4-rc1", 1, 2, 3, 4, "rc1", false},
		{"1.2.3+build.5", 1, 2, 3, 0, "", false},
		{" 2.0.0 ", 2, 0, 0, 0, "", false},
		{"0.7.*", 0, 7, 0, 0, "", true},
		{"1.*", 1, 0, 0, 0, "", true},
		{"*", 0, 0, 0, 0, "", true},
		{"1.0.0-*", 1, 0, 0, 0, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := ParseVersion(tt.input)
			if err != nil {
				t.Fatalf("ParseVersion(%q) failed: %v", tt.input, err)
			}
			if v.Major() != tt.major || v.Minor() != tt.minor || v.Patch() != tt.patch || v.Revision() != tt.revision {
				t.Errorf("ParseVersion(%q) = %d.%d.%d.%d, want %d.%d.%d.%d", tt.input,
					v.Major(), v.Minor(), v.Patch(), v.Revision(),
					tt.major, tt.minor, tt.patch, tt.revision)
			}
			if v.Prerelease() != tt.prerelease {
				t.Errorf("Prerelease() = %q, want %q", v.Prerelease(), tt.prerelease)
			}
			if v.IsWildcard() != tt.wildcard {
				t.Errorf("IsWildcard() = %v, want %v", v.IsWildcard(), tt.wildcard)
			}
		})
	}
}

func TestParseVersionKeepsRawString(t *testing.T) {
	for _, s := range []string{"1.0", "1.2.3.0", "0.7.*", "2.0.0-Beta1"} {
		v := MustParseVersion(s)
		if v.String() != s {
			t.Errorf("String() = %q, want %q", v.String(), s)
		}
	}
}

func TestParseVersionErrors(t *testing.T) {
	for _, s := range []string{"", "   ", "abc", "1.2.3.x", "1..2"} {
		_, err := ParseVersion(s)
		var verr *VersionError
		if !errors.As(err, &verr) {
			t.Errorf("ParseVersion(%q) = %v, want *VersionError", s, err)
		}
	}

	_, err := ParseVersion("")
	if !errors.Is(err, ErrEmptyVersion) {
		t.Errorf("ParseVersion(\"\") = %v, want ErrEmptyVersion", err)
	}
}

func TestVersionCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0.0", "1.0.0", 0},
		{"1.0", "1.0.0", 0},
		{"1.0.0.0", "1.0.0", 0},
		{"1.0.0", "1.0.1", -1},
		{"1.0.0.1", "1.0.0", 1},
		{"1.0.0.2", "1.0.1", -1},
		{"1.0.0-beta", "1.0.0", -1},
		{"1.0.0-alpha", "1.0.0-beta", -1},
		{"2.0.0", "10.0.0", -1},
		{"1.0.0+a", "1.0.0+b", 0},
	}

	for _, tt := range tests {
		got := MustParseVersion(tt.a).Compare(MustParseVersion(tt.b))
		if got != tt.want {
			t.Errorf("Compare(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestVersionEqualNil(t *testing.T) {
	var a, b *Version
	if !a.Equal(b) {
		t.Error("nil versions should be equal")
	}
	if a.Equal(MustParseVersion("1.0.0")) {
		t.Error("nil should not equal a version")
	}
}

func TestVersionNormalized(t *testing.T) {
	tests := map[string]string{
		"1.0":            "1.0.0",
		"1.2.3.4":        "1.2.3.4",
		"1.2.3.0":        "1.2.3",
		"1.0-beta+sha.1": "1.0.0-beta+sha.1",
	}
	for in, want := range tests {
		if got := MustParseVersion(in).Normalized(); got != want {
			t.Errorf("Normalized(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsRange(t *testing.T) {
	tests := map[string]bool{
		"[1.0,2.0)": true,
		"(,1.0]":    true,
		"[1.0]":     true,
		"1.0":       false,
		"1.*":       false,
	}
	for in, want := range tests {
		if got := IsRange(in); got != want {
			t.Errorf("IsRange(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewPackageReference(t *testing.T) {
	tests := []struct {
		declared    string
		wantVersion string
		wantNil     bool
		wildcard    bool
		wantErr     bool
	}{
		{"1.2.3", "1.2.3", false, false, false},
		{"", "", true, false, false},
		{"[1.0,2.0)", "", true, false, false},
		{"1.*", "1.*", false, true, false},
		{"not-a-version", "", true, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.declared, func(t *testing.T) {
			ref, err := NewPackageReference("pkg", tt.declared)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if ref.Declared != tt.declared {
				t.Errorf("Declared = %q, want %q", ref.Declared, tt.declared)
			}
			if tt.wantErr {
				return
			}
			if (ref.Version == nil) != tt.wantNil {
				t.Fatalf("Version = %v, wantNil %v", ref.Version, tt.wantNil)
			}
			if ref.Version != nil && ref.Version.String() != tt.wantVersion {
				t.Errorf("Version = %q, want %q", ref.Version, tt.wantVersion)
			}
			if ref.IsWildcard() != tt.wildcard {
				t.Errorf("IsWildcard() = %v, want %v", ref.IsWildcard(), tt.wildcard)
			}
		})
	}
}

func TestVersionTextRoundTrip(t *testing.T) {
	var v Version
	if err := v.UnmarshalText([]byte("3.1.0-dev-02078")); err != nil {
		t.Fatalf("UnmarshalText failed: %v", err)
	}
	text, err := v.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText failed: %v", err)
	}
	if string(text) != "3.1.0-dev-02078" {
		t.Errorf("MarshalText() = %q", text)
	}
	if !v.IsPrerelease() {
		t.Error("expected pre-release")
	}
}
