// Package diag provides diagnostic (error/warning) types reported by the Python
// lexer and parser.
package diag

import (
	"fmt"
	"strings"

	"pyast/internal/span"
)

// Severity indicates the severity of a diagnostic.
type Severity int

const (
	Error Severity = iota
	Warning
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	default:
		return "unknown"
	}
}

// Stable diagnostic codes. P1xxx come from the lexer, P2xxx from the parser.
const (
	CodeUnterminatedString = "P1001"
	CodeUnexpectedChar     = "P1002"
	CodeBadIndent          = "P1003"
	CodeUnbalancedBracket  = "P1004"
	CodeBadNumber          = "P1005"

	CodeExpectedToken    = "P2001"
	CodeUnexpectedToken  = "P2002"
	CodeInvalidTarget    = "P2003"
	CodeInvalidPattern   = "P2004"
	CodeInvalidParameter = "P2005"
)

// Diagnostic represents a lexer or parser diagnostic message.
type Diagnostic struct {
	Code     string    `json:"code"`
	Severity Severity  `json:"severity"`
	Message  string    `json:"message"`
	Span     span.Span `json:"span"`
	Hint     string    `json:"hint,omitempty"`
}

// String returns a human-readable representation of the diagnostic.
func (d Diagnostic) String() string {
	loc := fmt.Sprintf("%d:%d", d.Span.Start.Line, d.Span.Start.Column)
	msg := fmt.Sprintf("[%s] %s at %s: %s", d.Code, d.Severity, loc, d.Message)
	if d.Hint != "" {
		msg += " (hint: " + d.Hint + ")"
	}
	return msg
}

// Errorf creates an error diagnostic at the given span.
func Errorf(code string, s span.Span, format string, args ...interface{}) Diagnostic {
	return Diagnostic{
		Code:     code,
		Severity: Error,
		Message:  fmt.Sprintf(format, args...),
		Span:     s,
	}
}

// Warningf creates a warning diagnostic at the given span.
func Warningf(code string, s span.Span, format string, args ...interface{}) Diagnostic {
	return Diagnostic{
		Code:     code,
		Severity: Warning,
		Message:  fmt.Sprintf(format, args...),
		Span:     s,
	}
}

// HasErrors reports whether any diagnostic in diags is an error.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// ListError carries the diagnostics of a source file that failed to lex or
// parse. It is returned as an error by whole-pipeline helpers.
type ListError struct {
	Filename    string
	Diagnostics []Diagnostic
}

func (e *ListError) Error() string {
	var b strings.Builder
	if e.Filename != "" {
		b.WriteString(e.Filename)
		b.WriteString(": ")
	}
	switch len(e.Diagnostics) {
	case 0:
		b.WriteString("syntax error")
	case 1:
		b.WriteString(e.Diagnostics[0].String())
	default:
		fmt.Fprintf(&b, "%s (and %d more)", e.Diagnostics[0], len(e.Diagnostics)-1)
	}
	return b.String()
}
