// Package token defines the Python token kinds produced by the lexer.
package token

import (
	"fmt"

	"pyast/internal/span"
)

// Kind represents the type of a token.
type Kind int

const (
	// Special tokens
	ILLEGAL Kind = iota
	EOF
	NEWLINE
	INDENT
	DEDENT

	// Literals
	NAME
	NUMBER
	STRING
	FSTRING_START  // f" or rf''' etc.
	FSTRING_MIDDLE // literal text inside an f-string
	FSTRING_END    // closing quote of an f-string

	// Operators
	PLUS        // +
	MINUS       // -
	STAR        // *
	DOUBLESTAR  // **
	SLASH       // /
	DOUBLESLASH // //
	PERCENT     // %
	AT          // @
	VBAR        // |
	AMPER       // &
	CIRCUMFLEX  // ^
	TILDE       // ~
	LEFTSHIFT   // <<
	RIGHTSHIFT  // >>
	EXCLAMATION // ! (f-string conversion)

	EQEQUAL   // ==
	NOTEQUAL  // !=
	LESS      // <
	LESSEQUAL // <=
	GREATER   // >
	GREATEREQ // >=

	EQUAL       // =
	COLONEQUAL  // :=
	RARROW      // ->
	ELLIPSIS    // ...
	augStart    // marks the first augmented assignment kind
	PLUSEQUAL   // +=
	MINEQUAL    // -=
	STAREQUAL   // *=
	SLASHEQUAL  // /=
	DSLASHEQUAL // //=
	PERCENTEQ   // %=
	ATEQUAL     // @=
	AMPEREQUAL  // &=
	VBAREQUAL   // |=
	CIRCUMEQ    // ^=
	LSHIFTEQ    // <<=
	RSHIFTEQ    // >>=
	DSTAREQUAL  // **=
	augEnd

	// Delimiters
	LPAR // (
	RPAR // )
	LSQB // [
	RSQB // ]
	LBRACE
	RBRACE
	COMMA
	DOT
	SEMI
	COLON

	// Keywords
	KW_FALSE
	KW_NONE
	KW_TRUE
	KW_AND
	KW_AS
	KW_ASSERT
	KW_ASYNC
	KW_AWAIT
	KW_BREAK
	KW_CLASS
	KW_CONTINUE
	KW_DEF
	KW_DEL
	KW_ELIF
	KW_ELSE
	KW_EXCEPT
	KW_FINALLY
	KW_FOR
	KW_FROM
	KW_GLOBAL
	KW_IF
	KW_IMPORT
	KW_IN
	KW_IS
	KW_LAMBDA
	KW_NONLOCAL
	KW_NOT
	KW_OR
	KW_PASS
	KW_RAISE
	KW_RETURN
	KW_TRY
	KW_WHILE
	KW_WITH
	KW_YIELD

	numKinds
)

var kindNames = map[Kind]string{
	ILLEGAL: "ILLEGAL",
	EOF:     "EOF",
	NEWLINE: "NEWLINE",
	INDENT:  "INDENT",
	DEDENT:  "DEDENT",

	NAME:           "NAME",
	NUMBER:         "NUMBER",
	STRING:         "STRING",
	FSTRING_START:  "FSTRING_START",
	FSTRING_MIDDLE: "FSTRING_MIDDLE",
	FSTRING_END:    "FSTRING_END",

	PLUS:        "+",
	MINUS:       "-",
	STAR:        "*",
	DOUBLESTAR:  "**",
	SLASH:       "/",
	DOUBLESLASH: "//",
	PERCENT:     "%",
	AT:          "@",
	VBAR:        "|",
	AMPER:       "&",
	CIRCUMFLEX:  "^",
	TILDE:       "~",
	LEFTSHIFT:   "<<",
	RIGHTSHIFT:  ">>",
	EXCLAMATION: "!",

	EQEQUAL:   "==",
	NOTEQUAL:  "!=",
	LESS:      "<",
	LESSEQUAL: "<=",
	GREATER:   ">",
	GREATEREQ: ">=",

	EQUAL:       "=",
	COLONEQUAL:  ":=",
	RARROW:      "->",
	ELLIPSIS:    "...",
	PLUSEQUAL:   "+=",
	MINEQUAL:    "-=",
	STAREQUAL:   "*=",
	SLASHEQUAL:  "/=",
	DSLASHEQUAL: "//=",
	PERCENTEQ:   "%=",
	ATEQUAL:     "@=",
	AMPEREQUAL:  "&=",
	VBAREQUAL:   "|=",
	CIRCUMEQ:    "^=",
	LSHIFTEQ:    "<<=",
	RSHIFTEQ:    ">>=",
	DSTAREQUAL:  "**=",

	LPAR:   "(",
	RPAR:   ")",
	LSQB:   "[",
	RSQB:   "]",
	LBRACE: "{",
	RBRACE: "}",
	COMMA:  ",",
	DOT:    ".",
	SEMI:   ";",
	COLON:  ":",

	KW_FALSE:    "False",
	KW_NONE:     "None",
	KW_TRUE:     "True",
	KW_AND:      "and",
	KW_AS:       "as",
	KW_ASSERT:   "assert",
	KW_ASYNC:    "async",
	KW_AWAIT:    "await",
	KW_BREAK:    "break",
	KW_CLASS:    "class",
	KW_CONTINUE: "continue",
	KW_DEF:      "def",
	KW_DEL:      "del",
	KW_ELIF:     "elif",
	KW_ELSE:     "else",
	KW_EXCEPT:   "except",
	KW_FINALLY:  "finally",
	KW_FOR:      "for",
	KW_FROM:     "from",
	KW_GLOBAL:   "global",
	KW_IF:       "if",
	KW_IMPORT:   "import",
	KW_IN:       "in",
	KW_IS:       "is",
	KW_LAMBDA:   "lambda",
	KW_NONLOCAL: "nonlocal",
	KW_NOT:      "not",
	KW_OR:       "or",
	KW_PASS:     "pass",
	KW_RAISE:    "raise",
	KW_RETURN:   "return",
	KW_TRY:      "try",
	KW_WHILE:    "while",
	KW_WITH:     "with",
	KW_YIELD:    "yield",
}

// String returns the human-readable name of a token kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsAugAssign reports whether k is an augmented assignment operator such as +=.
func (k Kind) IsAugAssign() bool {
	return k > augStart && k < augEnd
}

// IsKeyword reports whether k is a hard keyword.
func (k Kind) IsKeyword() bool {
	return k >= KW_FALSE && k <= KW_YIELD
}

// keywords maps Python hard keywords to their token kinds. Soft keywords
// (match, case, type, _) are lexed as NAME and resolved by the parser.
var keywords = map[string]Kind{
	"False":    KW_FALSE,
	"None":     KW_NONE,
	"True":     KW_TRUE,
	"and":      KW_AND,
	"as":       KW_AS,
	"assert":   KW_ASSERT,
	"async":    KW_ASYNC,
	"await":    KW_AWAIT,
	"break":    KW_BREAK,
	"class":    KW_CLASS,
	"continue": KW_CONTINUE,
	"def":      KW_DEF,
	"del":      KW_DEL,
	"elif":     KW_ELIF,
	"else":     KW_ELSE,
	"except":   KW_EXCEPT,
	"finally":  KW_FINALLY,
	"for":      KW_FOR,
	"from":     KW_FROM,
	"global":   KW_GLOBAL,
	"if":       KW_IF,
	"import":   KW_IMPORT,
	"in":       KW_IN,
	"is":       KW_IS,
	"lambda":   KW_LAMBDA,
	"nonlocal": KW_NONLOCAL,
	"not":      KW_NOT,
	"or":       KW_OR,
	"pass":     KW_PASS,
	"raise":    KW_RAISE,
	"return":   KW_RETURN,
	"try":      KW_TRY,
	"while":    KW_WHILE,
	"with":     KW_WITH,
	"yield":    KW_YIELD,
}

// LookupIdent returns the keyword Kind for ident, or NAME if it is not a keyword.
func LookupIdent(ident string) Kind {
	if kind, ok := keywords[ident]; ok {
		return kind
	}
	return NAME
}

// Token represents a lexical token with its kind, source text, and location.
type Token struct {
	Kind   Kind      `json:"kind"`
	Lexeme string    `json:"lexeme"`
	Span   span.Span `json:"span"`
}

// String returns a human-readable representation of the token.
func (t Token) String() string {
	return fmt.Sprintf("%s %q %s", t.Kind, t.Lexeme, t.Span.Start)
}

// Is reports whether t is a NAME token spelled name. Used for soft keywords.
func (t Token) Is(name string) bool {
	return t.Kind == NAME && t.Lexeme == name
}
