package convert

import (
	"errors"
	"fmt"

	"pyast/internal/cst"
)

// Conversion errors. All of them are fatal: a conversion either succeeds
// completely or returns one of these wrapped with context. Only
// ErrUnsupportedVersion is caused by caller input; the others signal a
// mismatch between the parser's grammar and the converters.
var (
	ErrUnsupportedVersion = errors.New("unsupported python version")
	ErrUnexpectedNode     = errors.New("unexpected node kind")
	ErrUnexpectedResult   = errors.New("unexpected result kind")
	ErrHoistingInvariant  = errors.New("python functions are not hoisted but AST translation tries to do so")
	ErrMalformedConstruct = errors.New("malformed construct")
)

func unexpectedNode(n *cst.Node) error {
	if n == nil {
		return fmt.Errorf("%w: <nil>", ErrUnexpectedNode)
	}
	if n.IsTerminal() {
		return fmt.Errorf("%w: %s %q at %s", ErrUnexpectedNode, n.Kind, n.Token.Lexeme, n.Span.Start)
	}
	return fmt.Errorf("%w: %s at %s", ErrUnexpectedNode, n.Kind, n.Span.Start)
}

func malformed(n *cst.Node, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s at %s: %s", ErrMalformedConstruct, n.Kind, n.Span.Start, fmt.Sprintf(format, args...))
}

func unexpectedResult(n *cst.Node, want string, got interface{}) error {
	return fmt.Errorf("%w: %s at %s: expected %s, got %T", ErrUnexpectedResult, n.Kind, n.Span.Start, want, got)
}
