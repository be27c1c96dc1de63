package convert

import (
	"strings"

	"pyast/internal/ast"
	"pyast/internal/cst"
	"pyast/internal/token"
)

// convertStrings concatenates adjacent literals into one n-ary concat
// operator. A single literal passes through.
func convertStrings(c *Converter, n *cst.Node) (Result, error) {
	if len(n.Children) == 1 {
		return c.Dispatch(n.Children[0])
	}
	k := c.collect()
	parts, err := k.exprs(n.Children)
	if err != nil {
		return Result{}, err
	}
	return k.result(ast.Op(ast.OpConcat, parts...))
}

// convertString converts a plain string literal. The value is the text
// between the quotes with escapes kept as written; a b prefix makes it a
// bytes literal.
func convertString(c *Converter, n *cst.Node) (Result, error) {
	tok := n.Tok(token.STRING)
	if tok == nil {
		return Result{}, malformed(n, "string without a STRING token")
	}
	prefix, body := splitStringLiteral(tok.Token.Lexeme)
	typ := ast.LiteralString
	if strings.ContainsAny(prefix, "bB") {
		typ = ast.LiteralBytes
	}
	return Result{Node: ast.Lit(typ, body)}, nil
}

// splitStringLiteral separates the prefix letters of a string literal from
// the text between its quotes.
func splitStringLiteral(lexeme string) (prefix, body string) {
	i := strings.IndexAny(lexeme, `"'`)
	if i < 0 {
		return "", lexeme
	}
	prefix, rest := lexeme[:i], lexeme[i:]
	quote := rest[:1]
	if strings.HasPrefix(rest, strings.Repeat(quote, 3)) && len(rest) >= 6 {
		quote = strings.Repeat(quote, 3)
	}
	rest = strings.TrimPrefix(rest, quote)
	rest = strings.TrimSuffix(rest, quote)
	return prefix, rest
}

// convertFString converts an f-string to an f-string operator whose
// operands alternate literal text and replacement fields.
func convertFString(c *Converter, n *cst.Node) (Result, error) {
	k := c.collect()
	parts, err := interpolationParts(k, n)
	if err != nil {
		return Result{}, err
	}
	return k.result(ast.Op(ast.OpFString, parts...))
}

// interpolationParts converts the literal text and replacement fields of an
// f-string or a format spec, skipping delimiters.
func interpolationParts(k *collector, n *cst.Node) ([]ast.Expression, error) {
	var parts []ast.Expression
	for _, child := range n.Children {
		switch {
		case child.Is(token.FSTRING_MIDDLE):
			parts = append(parts, ast.Str(child.Token.Lexeme))
		case child.Kind == cst.FStringReplacementField:
			field, err := k.expr(child)
			if err != nil {
				return nil, err
			}
			parts = append(parts, field)
		}
	}
	return parts, nil
}

// convertReplacementField converts {value[=][!conv][:spec]} to
// replacement-field[value, marker?, format-conversion?, format-spec?].
func convertReplacementField(c *Converter, n *cst.Node) (Result, error) {
	k := c.collect()
	var operands []ast.Expression
	for _, child := range n.Children {
		switch {
		case child.Is(token.EQUAL):
			operands = append(operands, ast.Lit(ast.LiteralMarker, "="))
		case child.IsTerminal():
		default:
			e, err := k.expr(child)
			if err != nil {
				return Result{}, err
			}
			operands = append(operands, e)
		}
	}
	if len(operands) == 0 {
		return Result{}, malformed(n, "replacement field without a value")
	}
	return k.result(ast.Op(ast.OpReplacementField, operands...))
}

func convertConversion(c *Converter, n *cst.Node) (Result, error) {
	name := n.Tok(token.NAME)
	if name == nil {
		return Result{}, malformed(n, "conversion without a name")
	}
	return Result{Node: ast.Op(ast.OpFormatConversion, ast.Str(name.Token.Lexeme))}, nil
}

func convertFormatSpec(c *Converter, n *cst.Node) (Result, error) {
	k := c.collect()
	parts, err := interpolationParts(k, n)
	if err != nil {
		return Result{}, err
	}
	return k.result(ast.Op(ast.OpFormatSpec, parts...))
}
