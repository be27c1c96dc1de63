package convert

import (
	"errors"
	"testing"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		input string
		want  string
		major int
		minor int
	}{
		{"3", "3", 3, 0},
		{"3.12", "3.12", 3, 12},
		{"3.12.1", "3.12.1", 3, 12},
		{"3.0", "3.0", 3, 0},
	}
	for _, tt := range tests {
		got, err := ParseVersion(tt.input)
		if err != nil {
			t.Errorf("ParseVersion(%q): %v", tt.input, err)
			continue
		}
		if got.String() != tt.want || got.Major != tt.major || got.Minor != tt.minor {
			t.Errorf("ParseVersion(%q) = %+v (%s)", tt.input, got, got)
		}
	}
}

func TestParseVersionRejects(t *testing.T) {
	for _, input := range []string{"", "2", "2.7", "4.0", "3.x", "v3", "3.", "3.12.1.4", " 3"} {
		if _, err := ParseVersion(input); !errors.Is(err, ErrUnsupportedVersion) {
			t.Errorf("ParseVersion(%q): expected ErrUnsupportedVersion, got %v", input, err)
		}
	}
}

func TestNewRejectsUnsupportedVersion(t *testing.T) {
	if _, err := New("2.7"); !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("expected ErrUnsupportedVersion, got %v", err)
	}
	if _, err := Source("x = 1\n", "test.py", "4"); !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("Source: expected ErrUnsupportedVersion, got %v", err)
	}
}

func TestVersionAtLeast(t *testing.T) {
	v310, _ := ParseVersion("3.10")
	if !v310.AtLeast(3, 10) || v310.AtLeast(3, 11) {
		t.Errorf("3.10: unexpected AtLeast results")
	}
	bare, _ := ParseVersion("3")
	if !bare.AtLeast(3, 13) {
		t.Error("a bare major version accepts every minor version")
	}
}

func TestVersionGating(t *testing.T) {
	const (
		match     = "match x:\n    case 1:\n        pass\n"
		exceptStr = "try:\n    a()\nexcept* E:\n    pass\n"
		alias     = "type X = int\n"
		generic   = "def f[T](x):\n    return x\n"
		defaults  = "class C[T = int]:\n    pass\n"
	)
	tests := []struct {
		source  string
		version string
		ok      bool
	}{
		{match, "3.9", false},
		{match, "3.10", true},
		{match, "3", true},
		{exceptStr, "3.10", false},
		{exceptStr, "3.11", true},
		{alias, "3.11", false},
		{alias, "3.12", true},
		{generic, "3.11", false},
		{generic, "3.12.4", true},
		{defaults, "3.12", false},
		{defaults, "3.13", true},
		{"x = 1\n", "3.0", true},
	}
	for _, tt := range tests {
		_, err := Source(tt.source, "test.py", tt.version)
		switch {
		case tt.ok && err != nil:
			t.Errorf("%s %q: unexpected error %v", tt.version, tt.source, err)
		case !tt.ok && !errors.Is(err, ErrUnsupportedVersion):
			t.Errorf("%s %q: expected ErrUnsupportedVersion, got %v", tt.version, tt.source, err)
		}
	}
}
