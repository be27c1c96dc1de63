// Package lexer implements tokenization of Python source, including
// significant indentation, implicit line joining inside brackets and
// PEP 701 f-strings.
package lexer

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"pyast/internal/diag"
	"pyast/internal/span"
	"pyast/internal/token"
)

// modeKind identifies what the lexer is scanning inside an f-string.
type modeKind int

const (
	modeFString     modeKind = iota // literal text between the quotes
	modeReplacement                 // expression inside { }
	modeFormatSpec                  // text after a top-level ':' in a replacement field
)

type mode struct {
	kind  modeKind
	quote string // closing quote of the f-string (modeFString only)
	raw   bool
	depth int // bracket depth inside a replacement field
}

// Lexer tokenizes Python source into a sequence of tokens.
type Lexer struct {
	source   string
	filename string

	pos  int // current read position in source
	line int // current line (1-based)
	col  int // current column (1-based)

	diags []diag.Diagnostic

	indents     []int         // indentation stack, always starts with 0
	altIndents  []int         // the same levels measured with tabs as one column
	pending     []token.Token // queued INDENT/DEDENT tokens
	depth       int           // bracket depth outside f-strings
	atLineStart bool
	emitted     bool // a significant token was produced on the current logical line
	modes       []mode
	done        bool
}

// New creates a new Lexer for the given source text. A bare '\r' line
// ending is read as '\n'; offsets are unchanged.
func New(source, filename string) *Lexer {
	return &Lexer{
		source:      normalizeNewlines(source),
		filename:    filename,
		line:        1,
		col:         1,
		indents:     []int{0},
		altIndents:  []int{0},
		atLineStart: true,
	}
}

func normalizeNewlines(source string) string {
	if !strings.Contains(source, "\r") {
		return source
	}
	b := []byte(source)
	for i, ch := range b {
		if ch == '\r' && (i+1 == len(b) || b[i+1] != '\n') {
			b[i] = '\n'
		}
	}
	return string(b)
}

// Tokenize scans the entire source and returns all tokens and diagnostics.
// The token slice always ends with EOF, preceded by a NEWLINE and the DEDENTs
// needed to close every open block.
func (l *Lexer) Tokenize() ([]token.Token, []diag.Diagnostic) {
	var tokens []token.Token
	for {
		tok := l.nextToken()
		tokens = append(tokens, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	return tokens, l.diags
}

// ---- internal helpers ----

func (l *Lexer) peek() byte {
	if l.pos >= len(l.source) {
		return 0
	}
	return l.source[l.pos]
}

func (l *Lexer) peekAt(n int) byte {
	if l.pos+n >= len(l.source) {
		return 0
	}
	return l.source[l.pos+n]
}

func (l *Lexer) advance() byte {
	ch := l.source[l.pos]
	l.pos++
	if ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return ch
}

func (l *Lexer) advanceN(n int) {
	for i := 0; i < n && l.pos < len(l.source); i++ {
		l.advance()
	}
}

func (l *Lexer) curPos() span.Position {
	return span.Position{Offset: l.pos, Line: l.line, Column: l.col}
}

func (l *Lexer) makeSpan(start span.Position) span.Span {
	return span.Span{Start: start, End: l.curPos()}
}

func (l *Lexer) make(kind token.Kind, start span.Position) token.Token {
	return token.Token{Kind: kind, Lexeme: l.source[start.Offset:l.pos], Span: l.makeSpan(start)}
}

func (l *Lexer) addError(code string, s span.Span, msg string) {
	l.diags = append(l.diags, diag.Errorf(code, s, "%s", msg))
}

func (l *Lexer) top() *mode {
	if len(l.modes) == 0 {
		return nil
	}
	return &l.modes[len(l.modes)-1]
}

func (l *Lexer) push(m mode) { l.modes = append(l.modes, m) }

func (l *Lexer) pop() {
	if len(l.modes) > 0 {
		l.modes = l.modes[:len(l.modes)-1]
	}
}

// ---- token reading ----

func (l *Lexer) nextToken() token.Token {
	for {
		if len(l.pending) > 0 {
			tok := l.pending[0]
			l.pending = l.pending[1:]
			return tok
		}
		if l.done {
			return token.Token{Kind: token.EOF, Span: l.makeSpan(l.curPos())}
		}

		if m := l.top(); m != nil {
			switch m.kind {
			case modeFString:
				if tok, ok := l.scanFStringMiddle(); ok {
					return tok
				}
				continue
			case modeFormatSpec:
				if tok, ok := l.scanFormatSpec(); ok {
					return tok
				}
				continue
			}
		}

		if l.atLineStart && l.depth == 0 && len(l.modes) == 0 {
			if l.handleIndentation() {
				continue
			}
		}

		l.skipWhitespace()

		if l.pos >= len(l.source) {
			l.finish()
			continue
		}

		start := l.curPos()
		ch := l.peek()

		switch {
		case ch == '#':
			l.skipComment()
			continue
		case ch == '\\' && (l.peekAt(1) == '\n' || (l.peekAt(1) == '\r' && l.peekAt(2) == '\n')):
			l.advance()
			if l.peek() == '\r' {
				l.advance()
			}
			l.advance()
			continue
		case ch == '\n':
			l.advance()
			if l.depth > 0 || len(l.modes) > 0 {
				continue
			}
			l.atLineStart = true
			if !l.emitted {
				continue
			}
			l.emitted = false
			return token.Token{Kind: token.NEWLINE, Lexeme: "\n", Span: l.makeSpan(start)}
		}

		var tok token.Token
		switch {
		case isDigit(ch) || (ch == '.' && isDigit(l.peekAt(1))):
			tok = l.readNumber(start)
		case ch == '"' || ch == '\'':
			tok = l.readString(start, "")
		case isIdentStart(ch):
			tok = l.readIdentifierOrString(start)
		default:
			tok = l.readOperator(start)
		}
		l.emitted = true
		return tok
	}
}

// finish queues the tokens that close the file: a NEWLINE if the last
// logical line was not terminated, one DEDENT per open block, then EOF.
func (l *Lexer) finish() {
	end := l.makeSpan(l.curPos())
	if len(l.modes) > 0 {
		l.addError(diag.CodeUnterminatedString, end, "unterminated f-string at end of file")
		l.modes = nil
	}
	if l.depth > 0 {
		l.addError(diag.CodeUnbalancedBracket, end, "unexpected end of file inside brackets")
		l.depth = 0
	}
	if l.emitted {
		l.pending = append(l.pending, token.Token{Kind: token.NEWLINE, Lexeme: "", Span: end})
		l.emitted = false
	}
	for len(l.indents) > 1 {
		l.indents = l.indents[:len(l.indents)-1]
		l.pending = append(l.pending, token.Token{Kind: token.DEDENT, Span: end})
	}
	l.done = true
}

// handleIndentation measures the indentation of a new logical line and queues
// INDENT/DEDENT tokens. Blank and comment-only lines are skipped entirely.
// It returns true when the caller should restart token selection.
func (l *Lexer) handleIndentation() bool {
	start := l.curPos()
	width, alt := 0, 0
measure:
	for l.pos < len(l.source) {
		switch l.peek() {
		case ' ':
			width++
			alt++
		case '\t':
			width += 8 - width%8
			alt++
		case '\f', '\r':
		default:
			break measure
		}
		l.advance()
	}

	switch l.peek() {
	case 0:
		l.atLineStart = false
		return true
	case '\n':
		l.advance()
		return true
	case '#':
		l.skipComment()
		if l.peek() == '\n' {
			l.advance()
		}
		return true
	}

	l.atLineStart = false
	top := len(l.indents) - 1
	current, currentAlt := l.indents[top], l.altIndents[top]
	// Indentation must compare the same way whether a tab is eight columns
	// or one, otherwise tabs and spaces are mixed inconsistently.
	switch {
	case width == current:
		if alt != currentAlt {
			l.tabError(start)
		}
	case width > current:
		if alt <= currentAlt {
			l.tabError(start)
		}
		l.indents = append(l.indents, width)
		l.altIndents = append(l.altIndents, alt)
		l.pending = append(l.pending, token.Token{Kind: token.INDENT, Span: l.makeSpan(start)})
	default:
		for len(l.indents) > 1 && l.indents[len(l.indents)-1] > width {
			l.indents = l.indents[:len(l.indents)-1]
			l.altIndents = l.altIndents[:len(l.altIndents)-1]
			l.pending = append(l.pending, token.Token{Kind: token.DEDENT, Span: l.makeSpan(start)})
		}
		top = len(l.indents) - 1
		if l.indents[top] != width {
			l.addError(diag.CodeBadIndent, l.makeSpan(start), "unindent does not match any outer indentation level")
		} else if l.altIndents[top] != alt {
			l.tabError(start)
		}
	}
	return true
}

func (l *Lexer) tabError(start span.Position) {
	d := diag.Errorf(diag.CodeBadIndent, l.makeSpan(start), "inconsistent use of tabs and spaces in indentation")
	d.Hint = "indent with spaces only"
	l.diags = append(l.diags, d)
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.source) {
		switch l.peek() {
		case ' ', '\t', '\r', '\f':
			l.advance()
		default:
			return
		}
	}
}

func (l *Lexer) skipComment() {
	for l.pos < len(l.source) && l.source[l.pos] != '\n' {
		l.advance()
	}
}

// readNumber reads integer, float and imaginary literals, keeping underscores
// and base prefixes in the lexeme.
func (l *Lexer) readNumber(start span.Position) token.Token {
	if l.peek() == '0' && strings.ContainsRune("xXoObB", rune(l.peekAt(1))) {
		l.advanceN(2)
		for isHexDigit(l.peek()) || l.peek() == '_' {
			l.advance()
		}
		return l.make(token.NUMBER, start)
	}

	l.readDigits()
	if l.peek() == '.' && l.peekAt(1) != '.' {
		l.advance()
		l.readDigits()
	}
	if l.peek() == 'e' || l.peek() == 'E' {
		next := l.peekAt(1)
		if isDigit(next) || ((next == '+' || next == '-') && isDigit(l.peekAt(2))) {
			l.advanceN(2)
			l.readDigits()
		}
	}
	if l.peek() == 'j' || l.peek() == 'J' {
		l.advance()
	}
	if isIdentStart(l.peek()) {
		bad := l.curPos()
		for isIdentPart(l.peek()) {
			l.advance()
		}
		l.addError(diag.CodeBadNumber, l.makeSpan(bad), fmt.Sprintf("invalid number literal %q", l.source[start.Offset:l.pos]))
	}
	return l.make(token.NUMBER, start)
}

func (l *Lexer) readDigits() {
	for isDigit(l.peek()) || l.peek() == '_' {
		l.advance()
	}
}

// readIdentifierOrString reads an identifier or keyword, or a prefixed
// string literal such as rb'...' or f"...".
func (l *Lexer) readIdentifierOrString(start span.Position) token.Token {
	for l.pos < len(l.source) && isIdentPart(l.peek()) {
		l.advance()
	}
	lexeme := l.source[start.Offset:l.pos]
	if (l.peek() == '"' || l.peek() == '\'') && isStringPrefix(lexeme) {
		return l.readString(start, lexeme)
	}
	if msg := checkIdentifier(lexeme); msg != "" {
		l.addError(diag.CodeUnexpectedChar, l.makeSpan(start), msg)
		return l.make(token.ILLEGAL, start)
	}
	return token.Token{Kind: token.LookupIdent(lexeme), Lexeme: lexeme, Span: l.makeSpan(start)}
}

// checkIdentifier validates the non-ASCII characters of an identifier and
// returns an error message, or "" when the identifier is valid.
func checkIdentifier(lexeme string) string {
	for i, r := range lexeme {
		if r < utf8.RuneSelf {
			continue
		}
		if r == utf8.RuneError {
			return "invalid UTF-8 in identifier"
		}
		if unicode.IsLetter(r) || unicode.Is(unicode.Nl, r) {
			continue
		}
		if i > 0 && (unicode.IsDigit(r) || unicode.In(r, unicode.Mn, unicode.Mc, unicode.Pc)) {
			continue
		}
		return fmt.Sprintf("invalid character '%c' (U+%04X) in identifier", r, r)
	}
	return ""
}

// readString reads a quoted string starting at the opening quote. The lexeme
// keeps the prefix, quotes and escapes exactly as written.
func (l *Lexer) readString(start span.Position, prefix string) token.Token {
	q := string(l.peek())
	if l.peekAt(1) == l.peek() && l.peekAt(2) == l.peek() {
		q = strings.Repeat(q, 3)
	}
	lower := strings.ToLower(prefix)
	raw := strings.Contains(lower, "r")
	l.advanceN(len(q))

	if strings.Contains(lower, "f") {
		l.push(mode{kind: modeFString, quote: q, raw: raw})
		return l.make(token.FSTRING_START, start)
	}

	for l.pos < len(l.source) {
		if strings.HasPrefix(l.source[l.pos:], q) {
			l.advanceN(len(q))
			return l.make(token.STRING, start)
		}
		ch := l.peek()
		if ch == '\n' && len(q) == 1 {
			break
		}
		if ch == '\\' && l.pos+1 < len(l.source) {
			l.advance()
		}
		l.advance()
	}
	l.addError(diag.CodeUnterminatedString, l.makeSpan(start), "unterminated string literal")
	return l.make(token.STRING, start)
}

// scanFStringMiddle scans literal text of the innermost f-string. It returns
// false when it changed lexer state without producing a token.
func (l *Lexer) scanFStringMiddle() (token.Token, bool) {
	m := l.top()
	start := l.curPos()
	text := func() (token.Token, bool) {
		return l.make(token.FSTRING_MIDDLE, start), true
	}

	for {
		if l.pos >= len(l.source) {
			if l.pos > start.Offset {
				return text()
			}
			l.addError(diag.CodeUnterminatedString, l.makeSpan(start), "unterminated f-string")
			l.pop()
			return token.Token{Kind: token.FSTRING_END, Span: l.makeSpan(start)}, true
		}
		if strings.HasPrefix(l.source[l.pos:], m.quote) {
			if l.pos > start.Offset {
				return text()
			}
			l.advanceN(len(m.quote))
			l.pop()
			return l.make(token.FSTRING_END, start), true
		}
		ch := l.peek()
		switch {
		case ch == '\n' && len(m.quote) == 1:
			if l.pos > start.Offset {
				return text()
			}
			l.addError(diag.CodeUnterminatedString, l.makeSpan(start), "unterminated f-string")
			l.pop()
			return token.Token{Kind: token.FSTRING_END, Span: l.makeSpan(start)}, true
		case ch == '\\':
			l.advance()
			next := l.peek()
			switch {
			case m.raw:
				if next == '\\' || next == m.quote[0] {
					l.advance()
				}
			case next == 'N' && l.peekAt(1) == '{':
				for l.pos < len(l.source) && l.peek() != '}' {
					l.advance()
				}
				l.advanceN(1)
			case next != '{' && next != '}' && next != 0:
				l.advance()
			}
		case ch == '{' && l.peekAt(1) == '{', ch == '}' && l.peekAt(1) == '}':
			l.advanceN(2)
		case ch == '{':
			if l.pos > start.Offset {
				return text()
			}
			l.advance()
			l.push(mode{kind: modeReplacement})
			return l.make(token.LBRACE, start), true
		case ch == '}':
			l.advance()
			l.addError(diag.CodeUnbalancedBracket, l.makeSpan(start), "single '}' is not allowed in f-string")
		default:
			l.advance()
		}
	}
}

// scanFormatSpec scans the format specification of a replacement field.
func (l *Lexer) scanFormatSpec() (token.Token, bool) {
	start := l.curPos()
	for {
		if l.pos >= len(l.source) || (l.peek() == '\n' && !l.insideTripleQuote()) {
			if l.pos > start.Offset {
				return l.make(token.FSTRING_MIDDLE, start), true
			}
			// abandon the spec and the replacement field; the enclosing
			// f-string scanner reports the unterminated literal
			l.addError(diag.CodeUnbalancedBracket, l.makeSpan(start), "f-string: expecting '}'")
			l.pop()
			l.pop()
			return token.Token{}, false
		}
		switch l.peek() {
		case '{':
			if l.pos > start.Offset {
				return l.make(token.FSTRING_MIDDLE, start), true
			}
			l.advance()
			l.push(mode{kind: modeReplacement})
			return l.make(token.LBRACE, start), true
		case '}':
			if l.pos > start.Offset {
				return l.make(token.FSTRING_MIDDLE, start), true
			}
			l.advance()
			l.pop() // format spec
			l.pop() // replacement field
			return l.make(token.RBRACE, start), true
		case '\\':
			l.advanceN(2)
		default:
			l.advance()
		}
	}
}

func (l *Lexer) insideTripleQuote() bool {
	for i := len(l.modes) - 1; i >= 0; i-- {
		if l.modes[i].kind == modeFString {
			return len(l.modes[i].quote) == 3
		}
	}
	return false
}

var operators = []struct {
	text string
	kind token.Kind
}{
	{"**=", token.DSTAREQUAL}, {"//=", token.DSLASHEQUAL}, {">>=", token.RSHIFTEQ},
	{"<<=", token.LSHIFTEQ}, {"...", token.ELLIPSIS},
	{"**", token.DOUBLESTAR}, {"//", token.DOUBLESLASH}, {"<<", token.LEFTSHIFT},
	{">>", token.RIGHTSHIFT}, {"<=", token.LESSEQUAL}, {">=", token.GREATEREQ},
	{"==", token.EQEQUAL}, {"!=", token.NOTEQUAL}, {"->", token.RARROW},
	{":=", token.COLONEQUAL}, {"+=", token.PLUSEQUAL}, {"-=", token.MINEQUAL},
	{"*=", token.STAREQUAL}, {"/=", token.SLASHEQUAL}, {"%=", token.PERCENTEQ},
	{"@=", token.ATEQUAL}, {"&=", token.AMPEREQUAL}, {"|=", token.VBAREQUAL},
	{"^=", token.CIRCUMEQ},
	{"+", token.PLUS}, {"-", token.MINUS}, {"*", token.STAR}, {"/", token.SLASH},
	{"%", token.PERCENT}, {"@", token.AT}, {"|", token.VBAR}, {"&", token.AMPER},
	{"^", token.CIRCUMFLEX}, {"~", token.TILDE}, {"!", token.EXCLAMATION},
	{"<", token.LESS}, {">", token.GREATER}, {"=", token.EQUAL},
	{"(", token.LPAR}, {")", token.RPAR}, {"[", token.LSQB}, {"]", token.RSQB},
	{"{", token.LBRACE}, {"}", token.RBRACE}, {",", token.COMMA}, {".", token.DOT},
	{";", token.SEMI}, {":", token.COLON},
}

// readOperator reads an operator or delimiter token using longest match.
func (l *Lexer) readOperator(start span.Position) token.Token {
	if m := l.top(); m != nil && m.kind == modeReplacement && m.depth == 0 {
		switch l.peek() {
		case ':':
			// a top-level colon always starts the format spec, even before '='
			l.advance()
			l.push(mode{kind: modeFormatSpec})
			return l.make(token.COLON, start)
		case '}':
			l.advance()
			l.pop()
			return l.make(token.RBRACE, start)
		}
	}

	rest := l.source[l.pos:]
	for _, op := range operators {
		if strings.HasPrefix(rest, op.text) {
			l.advanceN(len(op.text))
			l.trackBrackets(op.kind, start)
			return l.make(op.kind, start)
		}
	}

	r, size := utf8.DecodeRuneInString(rest)
	l.advanceN(size)
	l.addError(diag.CodeUnexpectedChar, l.makeSpan(start), fmt.Sprintf("unexpected character: '%c'", r))
	return l.make(token.ILLEGAL, start)
}

// trackBrackets maintains the bracket depth used for implicit line joining,
// or the depth of the current replacement field inside an f-string.
func (l *Lexer) trackBrackets(kind token.Kind, start span.Position) {
	depth := &l.depth
	if m := l.top(); m != nil && m.kind == modeReplacement {
		depth = &m.depth
	}
	switch kind {
	case token.LPAR, token.LSQB, token.LBRACE:
		*depth++
	case token.RPAR, token.RSQB, token.RBRACE:
		if *depth == 0 {
			l.addError(diag.CodeUnbalancedBracket, l.makeSpan(start), fmt.Sprintf("unmatched '%s'", kind))
			return
		}
		*depth--
	}
}

// ---- character classification ----

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func isIdentStart(ch byte) bool {
	if ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') {
		return true
	}
	// multi-byte UTF-8 sequences are accepted as identifier bytes; Python
	// allows non-ASCII letters in names
	return ch >= 0x80
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}

// isStringPrefix reports whether s is a valid Python string prefix.
func isStringPrefix(s string) bool {
	switch strings.ToLower(s) {
	case "r", "u", "b", "f", "br", "rb", "fr", "rf":
		return true
	}
	return false
}

// IsIdentifier reports whether s is a valid Python identifier that is not a
// hard keyword.
func IsIdentifier(s string) bool {
	if s == "" || token.LookupIdent(s) != token.NAME {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return true
}
