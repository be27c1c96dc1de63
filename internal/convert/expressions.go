package convert

import (
	"pyast/internal/ast"
	"pyast/internal/cst"
	"pyast/internal/token"
)

// binaryOperators maps operator tokens of the binary precedence levels and
// the single-token comparisons to general AST operators.
var binaryOperators = map[token.Kind]ast.Operator{
	token.KW_OR:       ast.OpOr,
	token.KW_AND:      ast.OpAnd,
	token.VBAR:        ast.OpBitOr,
	token.CIRCUMFLEX:  ast.OpBitXor,
	token.AMPER:       ast.OpBitAnd,
	token.LEFTSHIFT:   ast.OpLShift,
	token.RIGHTSHIFT:  ast.OpRShift,
	token.PLUS:        ast.OpAdd,
	token.MINUS:       ast.OpSub,
	token.STAR:        ast.OpMul,
	token.SLASH:       ast.OpDiv,
	token.DOUBLESLASH: ast.OpFloorDiv,
	token.PERCENT:     ast.OpMod,
	token.AT:          ast.OpMatMul,
	token.DOUBLESTAR:  ast.OpPow,

	token.EQEQUAL:   ast.OpEq,
	token.NOTEQUAL:  ast.OpNotEq,
	token.LESS:      ast.OpLt,
	token.LESSEQUAL: ast.OpLtE,
	token.GREATER:   ast.OpGt,
	token.GREATEREQ: ast.OpGtE,
	token.KW_IN:     ast.OpIn,
	token.KW_IS:     ast.OpIs,
}

var unaryOperators = map[token.Kind]ast.Operator{
	token.PLUS:   ast.OpAdd,
	token.MINUS:  ast.OpSub,
	token.TILDE:  ast.OpInvert,
	token.KW_NOT: ast.OpNot,
}

func operatorFor(n *cst.Node, table map[token.Kind]ast.Operator) (ast.Operator, error) {
	if !n.IsTerminal() {
		return ast.OpInvalid, unexpectedNode(n)
	}
	op, ok := table[n.Token.Kind]
	if !ok {
		return ast.OpInvalid, malformed(n, "unknown operator %q", n.Token.Lexeme)
	}
	return op, nil
}

// ============================================================
// Expression lists
// ============================================================

// convertExpressionList handles comma separated lists. A single element
// without a trailing comma passes through; otherwise the elements form a
// sequence, as in a bare tuple.
func convertExpressionList(c *Converter, n *cst.Node) (Result, error) {
	items := n.NonTerminals()
	if len(items) == 1 && !n.Has(token.COMMA) {
		return c.Dispatch(items[0])
	}
	k := c.collect()
	exprs, err := k.exprs(items)
	if err != nil {
		return Result{}, err
	}
	return k.result(&ast.SequenceExpression{Expressions: exprs})
}

// convertStarredItem handles '*' bitwise_or and plain elements of
// expression lists.
func convertStarredItem(c *Converter, n *cst.Node) (Result, error) {
	if !n.Has(token.STAR) {
		return passThrough(c, n)
	}
	return unaryOp(c, n, ast.OpUnpackIterable)
}

// unaryOp wraps the only production child of n in a single-operand operator.
func unaryOp(c *Converter, n *cst.Node, op ast.Operator) (Result, error) {
	children := n.NonTerminals()
	if len(children) != 1 {
		return Result{}, malformed(n, "expected one operand, got %d", len(children))
	}
	k := c.collect()
	operand, err := k.expr(children[0])
	if err != nil {
		return Result{}, err
	}
	return k.result(ast.Op(op, operand))
}

// convertSequenceOf converts every production child into a sequence
// expression, whatever their number.
func convertSequenceOf(c *Converter, n *cst.Node) (Result, error) {
	k := c.collect()
	exprs, err := k.exprs(n.NonTerminals())
	if err != nil {
		return Result{}, err
	}
	return k.result(&ast.SequenceExpression{Expressions: exprs})
}

// ============================================================
// Precedence levels
// ============================================================

func convertAssignmentExpression(c *Converter, n *cst.Node) (Result, error) {
	name := n.Tok(token.NAME)
	values := n.NonTerminals()
	if name == nil || len(values) != 1 {
		return Result{}, malformed(n, "expected NAME := expression")
	}
	k := c.collect()
	value, err := k.expr(values[0])
	if err != nil {
		return Result{}, err
	}
	return k.result(&ast.AssignmentExpression{Variable: ast.Var(name.Token.Lexeme), Value: value})
}

// convertExpression handles lambdas, the ternary conditional and the pass
// through to the boolean levels. a if c else b becomes ternary[c, a, b].
func convertExpression(c *Converter, n *cst.Node) (Result, error) {
	if !n.Has(token.KW_IF) {
		return passThrough(c, n)
	}
	parts := n.NonTerminals()
	if len(parts) != 3 {
		return Result{}, malformed(n, "conditional expression needs three operands, got %d", len(parts))
	}
	k := c.collect()
	then, err := k.expr(parts[0])
	if err != nil {
		return Result{}, err
	}
	cond, err := k.expr(parts[1])
	if err != nil {
		return Result{}, err
	}
	otherwise, err := k.expr(parts[2])
	if err != nil {
		return Result{}, err
	}
	return k.result(ast.Op(ast.OpTernary, cond, then, otherwise))
}

func convertYield(c *Converter, n *cst.Node) (Result, error) {
	op := ast.OpYield
	if n.Has(token.KW_FROM) {
		op = ast.OpYieldFrom
	}
	k := c.collect()
	operands, err := k.exprs(n.NonTerminals())
	if err != nil {
		return Result{}, err
	}
	if op == ast.OpYieldFrom && len(operands) != 1 {
		return Result{}, malformed(n, "yield from needs one operand")
	}
	return k.result(ast.Op(op, operands...))
}

// convertBinaryChain handles the flat levels x (op x)*. Operators fold to
// the left: a - b - c becomes -(-(a, b), c).
func convertBinaryChain(c *Converter, n *cst.Node) (Result, error) {
	if len(n.Children) == 1 {
		return c.Dispatch(n.Children[0])
	}
	if len(n.Children)%2 == 0 {
		return Result{}, malformed(n, "operator without right operand")
	}
	k := c.collect()
	left, err := k.expr(n.Children[0])
	if err != nil {
		return Result{}, err
	}
	for i := 1; i < len(n.Children); i += 2 {
		op, err := operatorFor(n.Children[i], binaryOperators)
		if err != nil {
			return Result{}, err
		}
		right, err := k.expr(n.Children[i+1])
		if err != nil {
			return Result{}, err
		}
		left = ast.Op(op, left, right)
	}
	return k.result(left)
}

// convertPrefix handles 'not' inversion and the unary arithmetic operators.
func convertPrefix(c *Converter, n *cst.Node) (Result, error) {
	if len(n.Children) == 1 {
		return c.Dispatch(n.Children[0])
	}
	if len(n.Children) != 2 {
		return Result{}, malformed(n, "expected operator and operand")
	}
	op, err := operatorFor(n.Children[0], unaryOperators)
	if err != nil {
		return Result{}, err
	}
	return unaryOp(c, n, op)
}

// convertComparison folds compare pairs left to right: a < b <= c becomes
// <=(<(a, b), c).
func convertComparison(c *Converter, n *cst.Node) (Result, error) {
	if len(n.Children) == 1 {
		return c.Dispatch(n.Children[0])
	}
	k := c.collect()
	left, err := k.expr(n.Children[0])
	if err != nil {
		return Result{}, err
	}
	for _, pair := range n.Children[1:] {
		if pair.Kind != cst.CompareOpBitwiseOrPair {
			return Result{}, unexpectedNode(pair)
		}
		half, err := convertAs[*ast.OperatorExpression](k, pair, "comparison")
		if err != nil {
			return Result{}, err
		}
		left = ast.Op(half.Operator, left, half.Operands[0])
	}
	return k.result(left)
}

// convertComparePair converts one comparison operator and its right operand
// to an operator with only that operand. convertComparison supplies the
// left side.
func convertComparePair(c *Converter, n *cst.Node) (Result, error) {
	right := n.NonTerminals()
	if len(right) != 1 {
		return Result{}, malformed(n, "expected one right operand")
	}
	var op ast.Operator
	switch {
	case n.Has(token.KW_NOT) && n.Has(token.KW_IN):
		op = ast.OpNotIn
	case n.Has(token.KW_IS) && n.Has(token.KW_NOT):
		op = ast.OpIsNot
	default:
		var err error
		if op, err = operatorFor(n.Children[0], binaryOperators); err != nil {
			return Result{}, err
		}
	}
	k := c.collect()
	operand, err := k.expr(right[0])
	if err != nil {
		return Result{}, err
	}
	return k.result(ast.Op(op, operand))
}

// convertPower handles await_primary ['**' factor].
func convertPower(c *Converter, n *cst.Node) (Result, error) {
	if !n.Has(token.DOUBLESTAR) {
		return passThrough(c, n)
	}
	return convertBinaryChain(c, n)
}

func convertAwait(c *Converter, n *cst.Node) (Result, error) {
	if !n.Has(token.KW_AWAIT) {
		return passThrough(c, n)
	}
	return unaryOp(c, n, ast.OpAwait)
}
