package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"pyast/internal/diag"
	"pyast/internal/token"
)

// ---- output helpers ----

func printJSON(v interface{}) {
	if !writeJSON(os.Stdout, os.Stderr, v) {
		os.Exit(1)
	}
}

// writeJSON writes v indented to w and reports encoding failures to errw.
func writeJSON(w, errw io.Writer, v interface{}) bool {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(errw, "error: JSON encoding failed: %v\n", err)
		return false
	}
	return true
}

// printRawJSON indents already encoded JSON.
func printRawJSON(data []byte) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid JSON output: %v\n", err)
		os.Exit(1)
	}
	buf.WriteByte('\n')
	os.Stdout.Write(buf.Bytes())
}

func printDiagsText(diags []diag.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintln(os.Stderr, d.String())
	}
}

func diagsToSlice(diags []diag.Diagnostic) []map[string]interface{} {
	result := make([]map[string]interface{}, len(diags))
	for i, d := range diags {
		result[i] = map[string]interface{}{
			"code":     d.Code,
			"severity": d.Severity.String(),
			"message":  d.Message,
			"line":     d.Span.Start.Line,
			"column":   d.Span.Start.Column,
			"offset":   d.Span.Start.Offset,
		}
		if d.Hint != "" {
			result[i]["hint"] = d.Hint
		}
	}
	return result
}

// ---- token output helpers ----

func tokenLexeme(tok token.Token) string {
	switch tok.Kind {
	case token.NEWLINE:
		return "\\n"
	case token.INDENT, token.DEDENT, token.EOF:
		return ""
	}
	return tok.Lexeme
}

func printTokensText(tokens []token.Token, diags []diag.Diagnostic) {
	for _, tok := range tokens {
		fmt.Printf("%-16s %-20s %d:%d\n", tok.Kind, tokenLexeme(tok), tok.Span.Start.Line, tok.Span.Start.Column)
	}
	printDiagsText(diags)
}

func printTokensJSON(tokens []token.Token, diags []diag.Diagnostic) {
	type tokenJSON struct {
		Kind   string `json:"kind"`
		Lexeme string `json:"lexeme"`
		Line   int    `json:"line"`
		Column int    `json:"column"`
		Offset int    `json:"offset"`
	}

	toks := make([]tokenJSON, 0, len(tokens))
	for _, tok := range tokens {
		toks = append(toks, tokenJSON{
			Kind:   tok.Kind.String(),
			Lexeme: tok.Lexeme,
			Line:   tok.Span.Start.Line,
			Column: tok.Span.Start.Column,
			Offset: tok.Span.Start.Offset,
		})
	}

	printJSON(map[string]interface{}{
		"tokens":      toks,
		"diagnostics": diagsToSlice(diags),
	})
}
