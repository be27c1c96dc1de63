package convert

import (
	"strings"

	"pyast/internal/ast"
	"pyast/internal/cst"
	"pyast/internal/token"
)

// ============================================================
// Postfix chain
// ============================================================

// convertPrimary resolves attribute access, calls and subscripts. Each
// postfix wraps the previous Primary, so the chain is converted inside out.
func convertPrimary(c *Converter, n *cst.Node) (Result, error) {
	if len(n.Children) == 1 {
		return c.Dispatch(n.Children[0])
	}
	k := c.collect()
	object, err := k.expr(n.Children[0])
	if err != nil {
		return Result{}, err
	}

	switch second := n.Children[1]; {
	case second.Is(token.DOT):
		name := n.Tok(token.NAME)
		if name == nil {
			return Result{}, malformed(n, "attribute access without a name")
		}
		return k.result(ast.Op(ast.OpFieldAccess, object, ast.Str(name.Token.Lexeme)))

	case second.Is(token.LPAR):
		var args []ast.Expression
		if list := n.Child(cst.Arguments); list != nil {
			if args, err = k.exprs(list.NonTerminals()); err != nil {
				return Result{}, err
			}
		}
		return k.result(call(object, args))

	case second.Kind == cst.Genexp:
		arg, err := k.expr(second)
		if err != nil {
			return Result{}, err
		}
		return k.result(call(object, []ast.Expression{arg}))

	case second.Is(token.LSQB):
		slices := n.Child(cst.Slices)
		if slices == nil {
			return Result{}, malformed(n, "subscript without an index")
		}
		index, err := k.expr(slices)
		if err != nil {
			return Result{}, err
		}
		return k.result(ast.Op(ast.OpSlice, object, index))
	}
	return Result{}, unexpectedNode(n.Children[1])
}

// call builds a direct call when the callee is a bare name and an invoke
// operator with the callee as first operand otherwise.
func call(callee ast.Expression, args []ast.Expression) ast.Expression {
	if args == nil {
		args = []ast.Expression{}
	}
	if v, ok := callee.(*ast.VariableExpression); ok {
		return &ast.FunctionCallExpression{Name: v.Name, Arguments: args}
	}
	return ast.Op(ast.OpInvoke, append([]ast.Expression{callee}, args...)...)
}

// ============================================================
// Call arguments
// ============================================================

func convertKeywordArgument(c *Converter, n *cst.Node) (Result, error) {
	name := n.Tok(token.NAME)
	values := n.NonTerminals()
	if name == nil || len(values) != 1 {
		return Result{}, malformed(n, "expected NAME = expression")
	}
	k := c.collect()
	value, err := k.expr(values[0])
	if err != nil {
		return Result{}, err
	}
	return k.result(ast.Op(ast.OpKeywordArgument, ast.Str(name.Token.Lexeme), value))
}

func convertDoubleStarred(c *Converter, n *cst.Node) (Result, error) {
	return unaryOp(c, n, ast.OpUnpackMapping)
}

// ============================================================
// Slices
// ============================================================

// sliceOperators is indexed by a bit set of the present slice parts.
var sliceOperators = [...]ast.Operator{
	0:                                  ast.OpCreateSlice,
	sliceStart:                         ast.OpCreateSliceStart,
	sliceStop:                          ast.OpCreateSliceStop,
	sliceStep:                          ast.OpCreateSliceStep,
	sliceStart | sliceStop:             ast.OpCreateSliceStartStop,
	sliceStart | sliceStep:             ast.OpCreateSliceStartStep,
	sliceStop | sliceStep:              ast.OpCreateSliceStopStep,
	sliceStart | sliceStop | sliceStep: ast.OpCreateSliceStartStopStep,
}

const (
	sliceStart = 1 << iota
	sliceStop
	sliceStep
)

// convertSlice converts one subscript element. A plain index passes
// through. Otherwise the colons split the children into start, stop and
// step segments, each holding at most one expression; the operator is named
// after the segments that are present and its operands are their
// expressions in order.
func convertSlice(c *Converter, n *cst.Node) (Result, error) {
	colons := n.Count(token.COLON)
	if colons == 0 {
		return passThrough(c, n)
	}
	if colons > 2 {
		return Result{}, malformed(n, "slice with %d colons", colons)
	}

	var parts [3]*cst.Node
	segment := 0
	for _, child := range n.Children {
		if child.Is(token.COLON) {
			segment++
			continue
		}
		if child.IsTerminal() || parts[segment] != nil {
			return Result{}, malformed(n, "unexpected %s in slice", describe(child))
		}
		parts[segment] = child
	}

	k := c.collect()
	present := 0
	var operands []ast.Expression
	for i, part := range parts {
		if part == nil {
			continue
		}
		e, err := k.expr(part)
		if err != nil {
			return Result{}, err
		}
		present |= 1 << i
		operands = append(operands, e)
	}
	return k.result(ast.Op(sliceOperators[present], operands...))
}

// ============================================================
// Atoms
// ============================================================

// convertAtom converts names and keyword constants; composite atoms pass
// through to their production.
func convertAtom(c *Converter, n *cst.Node) (Result, error) {
	if len(n.Children) != 1 {
		return Result{}, malformed(n, "expected one child, got %d", len(n.Children))
	}
	child := n.Children[0]
	if !child.IsTerminal() {
		return c.Dispatch(child)
	}
	lit, err := terminalExpression(child)
	if err != nil {
		return Result{}, err
	}
	return Result{Node: lit}, nil
}

func terminalExpression(n *cst.Node) (ast.Expression, error) {
	switch n.Token.Kind {
	case token.NAME:
		return ast.Var(n.Token.Lexeme), nil
	case token.NUMBER:
		return ast.Lit(ast.LiteralNumber, n.Token.Lexeme), nil
	case token.KW_TRUE:
		return ast.Lit(ast.LiteralBoolean, "true"), nil
	case token.KW_FALSE:
		return ast.Lit(ast.LiteralBoolean, "false"), nil
	case token.KW_NONE:
		return ast.Lit(ast.LiteralNone, "null"), nil
	case token.ELLIPSIS:
		return ast.Lit(ast.LiteralEllipsis, "..."), nil
	}
	return nil, unexpectedNode(n)
}

func describe(n *cst.Node) string {
	if n.IsTerminal() {
		return "token " + n.Token.Kind.String()
	}
	return n.Kind.String()
}

// dottedName joins the NAME tokens of a DottedName with dots.
func dottedName(n *cst.Node) string {
	var parts []string
	for _, c := range n.Children {
		if c.Is(token.NAME) {
			parts = append(parts, c.Token.Lexeme)
		}
	}
	return strings.Join(parts, ".")
}
