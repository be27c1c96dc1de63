package lexer

import (
	"testing"

	"pyast/internal/diag"
	"pyast/internal/token"
)

// helper: tokenize and compare kinds
func expectKinds(t *testing.T, source string, expected ...token.Kind) []token.Token {
	t.Helper()
	tokens, diags := New(source, "test.py").Tokenize()
	if len(diags) > 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}
	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d: %v", len(expected), len(tokens), tokens)
	}
	for i, exp := range expected {
		if tokens[i].Kind != exp {
			t.Errorf("token[%d]: expected %s, got %s (%q)", i, exp, tokens[i].Kind, tokens[i].Lexeme)
		}
	}
	return tokens
}

func TestTokenizeSimple(t *testing.T) {
	expectKinds(t, `x = 1 + 2`,
		token.NAME, token.EQUAL, token.NUMBER, token.PLUS, token.NUMBER,
		token.NEWLINE, token.EOF)
}

func TestTokenizeIndentation(t *testing.T) {
	source := "if x:\n    y = 1\nz\n"
	expectKinds(t, source,
		token.KW_IF, token.NAME, token.COLON, token.NEWLINE,
		token.INDENT, token.NAME, token.EQUAL, token.NUMBER, token.NEWLINE,
		token.DEDENT, token.NAME, token.NEWLINE, token.EOF)
}

func TestTokenizeDedentsAtEOF(t *testing.T) {
	source := "def f():\n    if x:\n        return 1\n"
	expectKinds(t, source,
		token.KW_DEF, token.NAME, token.LPAR, token.RPAR, token.COLON, token.NEWLINE,
		token.INDENT, token.KW_IF, token.NAME, token.COLON, token.NEWLINE,
		token.INDENT, token.KW_RETURN, token.NUMBER, token.NEWLINE,
		token.DEDENT, token.DEDENT, token.EOF)
}

func TestTokenizeImplicitLineJoining(t *testing.T) {
	source := "x = (1,\n     2)\n"
	expectKinds(t, source,
		token.NAME, token.EQUAL, token.LPAR, token.NUMBER, token.COMMA,
		token.NUMBER, token.RPAR, token.NEWLINE, token.EOF)
}

func TestTokenizeBackslashContinuation(t *testing.T) {
	source := "x = 1 + \\\n    2\n"
	expectKinds(t, source,
		token.NAME, token.EQUAL, token.NUMBER, token.PLUS, token.NUMBER,
		token.NEWLINE, token.EOF)
}

func TestTokenizeCommentsAndBlankLines(t *testing.T) {
	source := "x = 1  # trailing\n\n   # only a comment\ny\n"
	expectKinds(t, source,
		token.NAME, token.EQUAL, token.NUMBER, token.NEWLINE,
		token.NAME, token.NEWLINE, token.EOF)
}

func TestTokenizeKeywords(t *testing.T) {
	source := `if elif else while for in not and or is lambda yield await async None True False`
	expectKinds(t, source,
		token.KW_IF, token.KW_ELIF, token.KW_ELSE, token.KW_WHILE, token.KW_FOR,
		token.KW_IN, token.KW_NOT, token.KW_AND, token.KW_OR, token.KW_IS,
		token.KW_LAMBDA, token.KW_YIELD, token.KW_AWAIT, token.KW_ASYNC,
		token.KW_NONE, token.KW_TRUE, token.KW_FALSE,
		token.NEWLINE, token.EOF)
}

func TestTokenizeSoftKeywordsAreNames(t *testing.T) {
	tokens := expectKinds(t, `match case type _`,
		token.NAME, token.NAME, token.NAME, token.NAME, token.NEWLINE, token.EOF)
	if !tokens[0].Is("match") || !tokens[3].Is("_") {
		t.Errorf("unexpected lexemes: %v", tokens)
	}
}

func TestTokenizeOperators(t *testing.T) {
	source := `** //= -> := ... != <<= >> @ ~ ^= |`
	expectKinds(t, source,
		token.DOUBLESTAR, token.DSLASHEQUAL, token.RARROW, token.COLONEQUAL,
		token.ELLIPSIS, token.NOTEQUAL, token.LSHIFTEQ, token.RIGHTSHIFT,
		token.AT, token.TILDE, token.CIRCUMEQ, token.VBAR,
		token.NEWLINE, token.EOF)
}

func TestTokenizeNumbers(t *testing.T) {
	source := `0x1F 1_000 3.14 1e-5 2j .5 10`
	tokens := expectKinds(t, source,
		token.NUMBER, token.NUMBER, token.NUMBER, token.NUMBER,
		token.NUMBER, token.NUMBER, token.NUMBER, token.NEWLINE, token.EOF)

	want := []string{"0x1F", "1_000", "3.14", "1e-5", "2j", ".5", "10"}
	for i, w := range want {
		if tokens[i].Lexeme != w {
			t.Errorf("token[%d]: expected %q, got %q", i, w, tokens[i].Lexeme)
		}
	}
}

func TestTokenizeStrings(t *testing.T) {
	source := `'a' r"\d" b'''x
y''' "it\"s"`
	tokens := expectKinds(t, source,
		token.STRING, token.STRING, token.STRING, token.STRING, token.NEWLINE, token.EOF)

	want := []string{`'a'`, `r"\d"`, "b'''x\ny'''", `"it\"s"`}
	for i, w := range want {
		if tokens[i].Lexeme != w {
			t.Errorf("token[%d]: expected %q, got %q", i, w, tokens[i].Lexeme)
		}
	}
}

func TestTokenizeFString(t *testing.T) {
	source := `f"a{x!r:>{w}}b"`
	tokens := expectKinds(t, source,
		token.FSTRING_START, token.FSTRING_MIDDLE, token.LBRACE,
		token.NAME, token.EXCLAMATION, token.NAME, token.COLON,
		token.FSTRING_MIDDLE, token.LBRACE, token.NAME, token.RBRACE, token.RBRACE,
		token.FSTRING_MIDDLE, token.FSTRING_END, token.NEWLINE, token.EOF)

	if tokens[0].Lexeme != `f"` {
		t.Errorf("FSTRING_START lexeme: got %q", tokens[0].Lexeme)
	}
	if tokens[1].Lexeme != "a" || tokens[7].Lexeme != ">" || tokens[12].Lexeme != "b" {
		t.Errorf("unexpected middle lexemes: %q %q %q", tokens[1].Lexeme, tokens[7].Lexeme, tokens[12].Lexeme)
	}
}

func TestTokenizeFStringEscapedBraces(t *testing.T) {
	tokens := expectKinds(t, `f"{{x}} {y=}"`,
		token.FSTRING_START, token.FSTRING_MIDDLE, token.LBRACE, token.NAME,
		token.EQUAL, token.RBRACE, token.FSTRING_END, token.NEWLINE, token.EOF)
	if tokens[1].Lexeme != "{{x}} " {
		t.Errorf("expected doubled braces kept verbatim, got %q", tokens[1].Lexeme)
	}
}

func TestTokenizeFStringNestedQuotesAndBrackets(t *testing.T) {
	expectKinds(t, `f"{d['k']:{n}}"`,
		token.FSTRING_START, token.LBRACE, token.NAME, token.LSQB, token.STRING,
		token.RSQB, token.COLON, token.LBRACE, token.NAME, token.RBRACE, token.RBRACE,
		token.FSTRING_END, token.NEWLINE, token.EOF)
}

func TestTokenizePositions(t *testing.T) {
	tokens, _ := New("x = 1\n  \nyy", "test.py").Tokenize()
	if tokens[0].Span.Start.Line != 1 || tokens[0].Span.Start.Column != 1 {
		t.Errorf("'x' position: expected 1:1, got %s", tokens[0].Span.Start)
	}
	if tokens[2].Span.Start.Column != 5 {
		t.Errorf("'1' column: expected 5, got %d", tokens[2].Span.Start.Column)
	}
	yy := tokens[4]
	if yy.Lexeme != "yy" || yy.Span.Start.Line != 3 {
		t.Errorf("'yy' position: expected line 3, got %s %q", yy.Span.Start, yy.Lexeme)
	}
}

func TestTokenizeErrors(t *testing.T) {
	tests := []struct {
		source string
		code   string
	}{
		{"x = 'abc\n", diag.CodeUnterminatedString},
		{"x = $\n", diag.CodeUnexpectedChar},
		{"if x:\n        a\n    b\n", diag.CodeBadIndent},
		{"x = (1,\n", diag.CodeUnbalancedBracket},
		{"x = 12abc\n", diag.CodeBadNumber},
		{"\xff = 1\n", diag.CodeUnexpectedChar},
		{"a\xffb = 1\n", diag.CodeUnexpectedChar},
		{"€ = 1\n", diag.CodeUnexpectedChar},
		{"if x:\n\tpass\n        pass\n", diag.CodeBadIndent},
		{"if x:\n    if y:\n\tpass\n", diag.CodeBadIndent},
	}
	for _, tt := range tests {
		_, diags := New(tt.source, "test.py").Tokenize()
		if len(diags) == 0 {
			t.Errorf("%q: expected diagnostic %s, got none", tt.source, tt.code)
			continue
		}
		if diags[0].Code != tt.code {
			t.Errorf("%q: expected code %s, got %s (%s)", tt.source, tt.code, diags[0].Code, diags[0].Message)
		}
	}
}

func TestIsIdentifier(t *testing.T) {
	for _, s := range []string{"x", "_private", "naïve", "a1"} {
		if !IsIdentifier(s) {
			t.Errorf("IsIdentifier(%q) = false", s)
		}
	}
	for _, s := range []string{"", "1a", "class", "a-b", "@match"} {
		if IsIdentifier(s) {
			t.Errorf("IsIdentifier(%q) = true", s)
		}
	}
}

func TestTokenizeCarriageReturns(t *testing.T) {
	kinds := []token.Kind{
		token.KW_IF, token.NAME, token.COLON, token.NEWLINE,
		token.INDENT, token.NAME, token.NEWLINE,
		token.DEDENT, token.NAME, token.NEWLINE, token.EOF,
	}
	expectKinds(t, "if x:\r    y\rz\r", kinds...)
	tokens := expectKinds(t, "if x:\r\n    y\r\nz\r\n", kinds...)
	if last := tokens[8]; last.Span.Start.Line != 3 || last.Span.Start.Offset != 14 {
		t.Errorf("z: expected line 3 offset 14, got %s offset %d", last.Span.Start, last.Span.Start.Offset)
	}
}

func TestTokenizeConsistentTabs(t *testing.T) {
	expectKinds(t, "if x:\n\tif y:\n\t\tpass\n\tpass\n",
		token.KW_IF, token.NAME, token.COLON, token.NEWLINE,
		token.INDENT, token.KW_IF, token.NAME, token.COLON, token.NEWLINE,
		token.INDENT, token.KW_PASS, token.NEWLINE,
		token.DEDENT, token.KW_PASS, token.NEWLINE,
		token.DEDENT, token.EOF)
}

func TestTokenizeUnicodeIdentifiers(t *testing.T) {
	tokens := expectKinds(t, "naïve = 变量\n",
		token.NAME, token.EQUAL, token.NAME, token.NEWLINE, token.EOF)
	if tokens[2].Lexeme != "变量" {
		t.Errorf("lexeme = %q", tokens[2].Lexeme)
	}
}
