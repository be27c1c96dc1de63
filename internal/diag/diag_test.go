package diag

import (
	"errors"
	"strings"
	"testing"

	"pyast/internal/span"
)

func TestDiagnosticString(t *testing.T) {
	s := span.Span{Start: span.Position{Offset: 4, Line: 2, Column: 3}}
	d := Errorf(CodeExpectedToken, s, "expected %q", ":")
	d.Hint = "blocks start with a colon"

	got := d.String()
	want := `[P2001] error at 2:3: expected ":" (hint: blocks start with a colon)`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestListError(t *testing.T) {
	diags := []Diagnostic{
		Errorf(CodeUnexpectedChar, span.Span{}, "unexpected character: '$'"),
		Warningf(CodeBadIndent, span.Span{}, "mixed tabs"),
	}
	var err error = &ListError{Filename: "sub.py", Diagnostics: diags}

	var le *ListError
	if !errors.As(err, &le) {
		t.Fatal("expected *ListError")
	}
	if !strings.HasPrefix(err.Error(), "sub.py: [P1002]") {
		t.Errorf("unexpected message %q", err.Error())
	}
	if !strings.HasSuffix(err.Error(), "(and 1 more)") {
		t.Errorf("expected count suffix, got %q", err.Error())
	}
	if !HasErrors(diags) {
		t.Error("HasErrors = false, want true")
	}
	if HasErrors(diags[1:]) {
		t.Error("warnings alone must not count as errors")
	}
}
