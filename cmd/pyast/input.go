package main

import (
	"strings"

	"pyast/internal/diag"
	"pyast/internal/lexer"
	"pyast/internal/token"
)

// blockReader accumulates REPL lines until they form a complete input. A
// compound statement or decorator is read up to the next blank line; other
// input is complete once its brackets are closed.
type blockReader struct {
	lines   []string
	inBlock bool
}

// pending reports whether a multi-line input is being read.
func (b *blockReader) pending() bool { return len(b.lines) > 0 }

func (b *blockReader) reset() {
	b.lines = nil
	b.inBlock = false
}

// add appends a line and returns the accumulated source once it is
// complete.
func (b *blockReader) add(line string) (string, bool) {
	if b.inBlock {
		if strings.TrimSpace(line) == "" {
			return b.flush(), true
		}
		b.lines = append(b.lines, line)
		return "", false
	}

	b.lines = append(b.lines, line)
	source := b.source()
	switch continuation(source) {
	case needsBlock:
		b.inBlock = true
		return "", false
	case needsBrackets:
		return "", false
	}
	return b.flush(), true
}

func (b *blockReader) source() string {
	return strings.Join(b.lines, "\n") + "\n"
}

func (b *blockReader) flush() string {
	source := b.source()
	b.reset()
	return source
}

type continuationKind int

const (
	complete continuationKind = iota
	needsBrackets
	needsBlock
)

// continuation decides whether source needs more lines.
func continuation(source string) continuationKind {
	tokens, diags := lexer.New(source, "<repl>").Tokenize()
	for _, d := range diags {
		if d.Code == diag.CodeUnbalancedBracket && d.Span.Start.Offset >= len(source) {
			return needsBrackets
		}
	}

	last := token.EOF
	for _, tok := range tokens {
		switch tok.Kind {
		case token.NEWLINE, token.INDENT, token.DEDENT, token.EOF:
		default:
			last = tok.Kind
		}
	}
	if last == token.COLON || strings.HasPrefix(strings.TrimSpace(source), "@") {
		return needsBlock
	}
	return complete
}
