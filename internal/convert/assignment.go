package convert

import (
	"strings"

	"pyast/internal/ast"
	"pyast/internal/cst"
	"pyast/internal/token"
)

// convertAssignment resolves the assignment shapes:
//
//	name: T            variableDeclaration{name, literal(T, "null")}
//	target: T = e      assignment{target, e}
//	t1 = t2 = e        multiAssignment{[t1, t2], values of e}
//	target OP= e       assignment{target, OP[target, e]}
//
// Any other shape is malformed.
func convertAssignment(c *Converter, n *cst.Node) (Result, error) {
	switch {
	case n.Child(cst.Annotation) != nil:
		return annotatedAssignment(c, n)
	case n.Has(token.EQUAL):
		return multiAssignment(c, n)
	case len(n.Children) == 3 && n.Children[1].IsTerminal() && n.Children[1].Token.Kind.IsAugAssign():
		return augmentedAssignment(c, n)
	}
	return Result{}, malformed(n, "unrecognized assignment shape")
}

func annotatedAssignment(c *Converter, n *cst.Node) (Result, error) {
	target := n.Children[0]
	annotation := n.Child(cst.Annotation)
	k := c.collect()
	variable, err := k.expr(target)
	if err != nil {
		return Result{}, err
	}
	if !isSingleTarget(variable) {
		return Result{}, malformed(n, "only a single name, attribute or subscript can be annotated")
	}

	if !n.Has(token.EQUAL) {
		// The annotation is kept only as text; its expression is never
		// converted.
		name, ok := dottedExprName(variable)
		if !ok {
			return Result{}, malformed(n, "only a name or attribute can be declared without a value")
		}
		typ := annotationText(annotation)
		return k.result(&ast.VariableDeclarationStatement{Name: name, Value: ast.Lit(typ, "null")})
	}

	values := n.NonTerminals()
	value, err := k.expr(values[len(values)-1])
	if err != nil {
		return Result{}, err
	}
	return k.result(&ast.AssignmentStatement{Variable: variable, Value: value})
}

func annotationText(annotation *cst.Node) string {
	parts := annotation.NonTerminals()
	if len(parts) == 0 {
		return ""
	}
	return parts[0].Text()
}

// dottedExprName renders a variable or a chain of attribute accesses on a
// variable as "a.b.c", independent of the source spacing.
func dottedExprName(e ast.Expression) (string, bool) {
	switch e := e.(type) {
	case *ast.VariableExpression:
		return e.Name, true
	case *ast.OperatorExpression:
		if e.Operator != ast.OpFieldAccess || len(e.Operands) != 2 {
			return "", false
		}
		attr, ok := e.Operands[1].(*ast.LiteralExpression)
		if !ok {
			return "", false
		}
		base, ok := dottedExprName(e.Operands[0])
		if !ok {
			return "", false
		}
		return base + "." + attr.Value, true
	}
	return "", false
}

// isSingleTarget reports whether e is a name, attribute or subscript.
func isSingleTarget(e ast.Expression) bool {
	switch e := e.(type) {
	case *ast.VariableExpression:
		return true
	case *ast.OperatorExpression:
		return e.Operator == ast.OpFieldAccess || e.Operator == ast.OpSlice
	}
	return false
}

// multiAssignment converts t1 = ... = tn = value. Each target becomes one
// assignment expression, a sequence when it destructures. A bare comma list
// of two or more values is flattened into the values list; a parenthesized
// tuple, an empty tuple and a one-element list such as "1," stay a single
// sequence value.
func multiAssignment(c *Converter, n *cst.Node) (Result, error) {
	parts := n.NonTerminals()
	if len(parts) < 2 || len(parts) != n.Count(token.EQUAL)+1 {
		return Result{}, malformed(n, "expected targets separated by '='")
	}
	k := c.collect()
	targets, err := k.exprs(parts[:len(parts)-1])
	if err != nil {
		return Result{}, err
	}
	value, err := k.expr(parts[len(parts)-1])
	if err != nil {
		return Result{}, err
	}
	values := []ast.Expression{value}
	last := parts[len(parts)-1]
	if seq, ok := value.(*ast.SequenceExpression); ok && isCommaList(last) && len(seq.Expressions) > 1 {
		values = seq.Expressions
	}
	return k.result(&ast.MultiAssignmentStatement{AssignmentExpressions: targets, Values: values})
}

// isCommaList reports whether n is an unparenthesized value list such as
// "1, 2".
func isCommaList(n *cst.Node) bool {
	return n.Kind == cst.StarExpressions && n.Has(token.COMMA)
}

// augmentedAssignment converts target OP= value. The target is converted
// twice so the result holds no shared subtrees.
func augmentedAssignment(c *Converter, n *cst.Node) (Result, error) {
	opTok := n.Children[1].Token
	op, ok := ast.ParseOperator(strings.TrimSuffix(opTok.Lexeme, "="))
	if !ok {
		return Result{}, malformed(n, "unknown augmented operator %q", opTok.Lexeme)
	}
	k := c.collect()
	variable, err := k.expr(n.Children[0])
	if err != nil {
		return Result{}, err
	}
	if !isSingleTarget(variable) {
		return Result{}, malformed(n, "illegal target for augmented assignment")
	}
	operand, err := k.expr(n.Children[0])
	if err != nil {
		return Result{}, err
	}
	value, err := k.expr(n.Children[2])
	if err != nil {
		return Result{}, err
	}
	return k.result(&ast.AssignmentStatement{Variable: variable, Value: ast.Op(op, operand, value)})
}
