// Package span provides source positions and ranges shared by tokens, syntax
// tree nodes and diagnostics.
package span

import "fmt"

// Position is a location in Python source text.
type Position struct {
	Offset int `json:"offset"` // byte offset from the beginning of the source
	Line   int `json:"line"`   // 1-based
	Column int `json:"column"` // 1-based, counted in bytes
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Before reports whether p comes strictly before q.
func (p Position) Before(q Position) bool {
	return p.Offset < q.Offset
}

// Span is the half-open range [Start, End).
type Span struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

func (s Span) String() string {
	return fmt.Sprintf("%s..%s", s.Start, s.End)
}

// Len returns the byte length of the span.
func (s Span) Len() int {
	return s.End.Offset - s.Start.Offset
}

// IsZero reports whether s was never set.
func (s Span) IsZero() bool {
	return s.Start == Position{} && s.End == Position{}
}

// Join returns the smallest span covering both a and b. A zero span is ignored.
func Join(a, b Span) Span {
	if a.IsZero() {
		return b
	}
	if b.IsZero() {
		return a
	}
	out := a
	if b.Start.Before(out.Start) {
		out.Start = b.Start
	}
	if out.End.Before(b.End) {
		out.End = b.End
	}
	return out
}
