package convert

import (
	"strings"

	"pyast/internal/ast"
	"pyast/internal/cst"
	"pyast/internal/token"
)

// ============================================================
// Match statements
// ============================================================

// convertMatch builds @match[subject] followed by a sequence alternating
// @case[pattern, guard?] calls and case bodies.
func convertMatch(c *Converter, n *cst.Node) (Result, error) {
	subject := n.Child(cst.SubjectExpr)
	if subject == nil {
		return Result{}, malformed(n, "match without a subject")
	}
	k := c.collect()
	s, err := k.expr(subject)
	if err != nil {
		return Result{}, err
	}
	var cases []ast.Statement
	for _, block := range n.ChildrenOf(cst.CaseBlock) {
		part, err := convertAs[*ast.SequenceStatement](k, block, "sequence")
		if err != nil {
			return Result{}, err
		}
		cases = append(cases, part.Statements...)
	}
	return k.result(ast.Group(ast.MarkerCallStatement(ast.MarkerMatch, s), ast.Group(cases...)))
}

// convertCaseBlock builds @case[pattern, guard?] and the nested body.
func convertCaseBlock(c *Converter, n *cst.Node) (Result, error) {
	patterns := n.Child(cst.Patterns)
	block := n.Child(cst.Block)
	if patterns == nil || block == nil {
		return Result{}, malformed(n, "case without a pattern or body")
	}
	k := c.collect()
	args := make([]ast.Expression, 0, 2)
	pattern, err := k.expr(patterns)
	if err != nil {
		return Result{}, err
	}
	args = append(args, pattern)
	if guard := n.Child(cst.Guard); guard != nil {
		g, err := k.expr(guard)
		if err != nil {
			return Result{}, err
		}
		args = append(args, g)
	}
	body, err := k.seq(block)
	if err != nil {
		return Result{}, err
	}
	return k.result(ast.Group(ast.MarkerCallStatement(ast.MarkerCase, args...), body))
}

func convertGuard(c *Converter, n *cst.Node) (Result, error) {
	return unaryOp(c, n, ast.OpGuard)
}

// convertPatterns converts the top-level pattern of a case. An open
// sequence such as case a, *rest: is a sequence pattern.
func convertPatterns(c *Converter, n *cst.Node) (Result, error) {
	items := n.NonTerminals()
	if len(items) == 1 && !n.Has(token.COMMA) {
		return c.Dispatch(items[0])
	}
	return patternOf(ast.OpSequencePattern)(c, n)
}

// patternOf returns a converter wrapping every production child in op.
func patternOf(op ast.Operator) convertFunc {
	return func(c *Converter, n *cst.Node) (Result, error) {
		k := c.collect()
		items, err := k.exprs(n.NonTerminals())
		if err != nil {
			return Result{}, err
		}
		return k.result(ast.Op(op, items...))
	}
}

// ============================================================
// Patterns
// ============================================================

func convertOrPattern(c *Converter, n *cst.Node) (Result, error) {
	if len(n.Children) == 1 {
		return c.Dispatch(n.Children[0])
	}
	return patternOf(ast.OpOrPattern)(c, n)
}

// convertAsPattern builds as-pattern[pattern, variable].
func convertAsPattern(c *Converter, n *cst.Node) (Result, error) {
	parts := n.NonTerminals()
	name := n.Tok(token.NAME)
	if len(parts) != 1 || name == nil {
		return Result{}, malformed(n, "expected pattern as NAME")
	}
	k := c.collect()
	pattern, err := k.expr(parts[0])
	if err != nil {
		return Result{}, err
	}
	return k.result(ast.Op(ast.OpAsPattern, pattern, ast.Var(name.Token.Lexeme)))
}

// convertLiteralPattern converts strings and keyword constants like atoms.
// Signed and complex numbers become one number literal spelled without
// spaces, e.g. "-1" or "1+2j".
func convertLiteralPattern(c *Converter, n *cst.Node) (Result, error) {
	if strs := n.Child(cst.Strings); strs != nil {
		return c.Dispatch(strs)
	}
	if len(n.Children) == 1 {
		lit, err := terminalExpression(n.Children[0])
		if err != nil {
			return Result{}, err
		}
		return Result{Node: lit}, nil
	}
	var text strings.Builder
	for _, child := range n.Children {
		if !child.Is(token.NUMBER) && !child.Is(token.MINUS) && !child.Is(token.PLUS) {
			return Result{}, malformed(n, "unexpected %s in literal pattern", describe(child))
		}
		text.WriteString(child.Token.Lexeme)
	}
	return Result{Node: ast.Lit(ast.LiteralNumber, text.String())}, nil
}

func convertCapturePattern(c *Converter, n *cst.Node) (Result, error) {
	name := n.Tok(token.NAME)
	if name == nil {
		return Result{}, malformed(n, "capture pattern without a name")
	}
	return Result{Node: ast.Var(name.Token.Lexeme)}, nil
}

func convertWildcardPattern(*Converter, *cst.Node) (Result, error) {
	return Result{Node: wildcard()}, nil
}

func wildcard() ast.Expression {
	return ast.Lit(ast.LiteralWildcard, "_")
}

// convertValuePattern converts a dotted name to a field-access chain.
func convertValuePattern(c *Converter, n *cst.Node) (Result, error) {
	dotted := n.Child(cst.DottedName)
	if dotted == nil {
		return Result{}, malformed(n, "value pattern without a name")
	}
	var e ast.Expression
	for _, child := range dotted.Children {
		if !child.Is(token.NAME) {
			continue
		}
		if e == nil {
			e = ast.Var(child.Token.Lexeme)
			continue
		}
		e = ast.Op(ast.OpFieldAccess, e, ast.Str(child.Token.Lexeme))
	}
	if e == nil {
		return Result{}, malformed(n, "value pattern without a name")
	}
	return Result{Node: e}, nil
}

// convertStarPattern builds star-pattern[variable], or a wildcard for *_.
func convertStarPattern(c *Converter, n *cst.Node) (Result, error) {
	name := n.Tok(token.NAME)
	if name == nil {
		return Result{}, malformed(n, "star pattern without a name")
	}
	target := ast.Expression(ast.Var(name.Token.Lexeme))
	if name.Token.Lexeme == "_" {
		target = wildcard()
	}
	return Result{Node: ast.Op(ast.OpStarPattern, target)}, nil
}

func convertDoubleStarPattern(c *Converter, n *cst.Node) (Result, error) {
	name := n.Tok(token.NAME)
	if name == nil {
		return Result{}, malformed(n, "double star pattern without a name")
	}
	return Result{Node: ast.Op(ast.OpDoubleStarPattern, ast.Var(name.Token.Lexeme))}, nil
}

// convertClassPattern builds class-pattern[name, positional..., keyword...].
// The class name is a string literal of the dotted name.
func convertClassPattern(c *Converter, n *cst.Node) (Result, error) {
	dotted := n.Child(cst.DottedName)
	if dotted == nil {
		return Result{}, malformed(n, "class pattern without a class name")
	}
	k := c.collect()
	operands := []ast.Expression{ast.Str(dottedName(dotted))}
	for _, child := range n.NonTerminals() {
		if child == dotted {
			continue
		}
		p, err := k.expr(child)
		if err != nil {
			return Result{}, err
		}
		operands = append(operands, p)
	}
	return k.result(ast.Op(ast.OpClassPattern, operands...))
}

// convertKeywordPattern builds keyword-pattern[name, pattern].
func convertKeywordPattern(c *Converter, n *cst.Node) (Result, error) {
	name := n.Tok(token.NAME)
	parts := n.NonTerminals()
	if name == nil || len(parts) != 1 {
		return Result{}, malformed(n, "expected NAME = pattern")
	}
	k := c.collect()
	p, err := k.expr(parts[0])
	if err != nil {
		return Result{}, err
	}
	return k.result(ast.Op(ast.OpKeywordPattern, ast.Str(name.Token.Lexeme), p))
}
