package convert

import (
	"pyast/internal/ast"
	"pyast/internal/cst"
	"pyast/internal/token"
)

// ============================================================
// Module structure
// ============================================================

// convertStatements converts every production child to statements and
// splices them into one sequence. Used for the file root and blocks.
func convertStatements(c *Converter, n *cst.Node) (Result, error) {
	k := c.collect()
	stmts, err := k.stmts(n.NonTerminals())
	if err != nil {
		return Result{}, err
	}
	return k.result(ast.Seq(stmts...))
}

// convertSimpleStatements converts a ';' separated line. A line with one
// small statement passes its result through.
func convertSimpleStatements(c *Converter, n *cst.Node) (Result, error) {
	small := n.NonTerminals()
	if len(small) == 1 {
		return c.Dispatch(small[0])
	}
	return convertStatements(c, n)
}

// ============================================================
// Simple statements
// ============================================================

// convertExpressionStatement turns a bare-name call into a statement call
// and wraps any other expression.
func convertExpressionStatement(c *Converter, n *cst.Node) (Result, error) {
	children := n.NonTerminals()
	if len(children) != 1 {
		return Result{}, malformed(n, "expected one expression")
	}
	k := c.collect()
	e, err := k.expr(children[0])
	if err != nil {
		return Result{}, err
	}
	if call, ok := e.(*ast.FunctionCallExpression); ok {
		return k.result(&ast.FunctionCallStatement{Name: call.Name, Arguments: call.Arguments})
	}
	return k.result(&ast.ExpressionAsStatement{Expression: e})
}

func convertReturn(c *Converter, n *cst.Node) (Result, error) {
	values := n.NonTerminals()
	if len(values) == 0 {
		return Result{Node: &ast.ReturnStatement{}}, nil
	}
	k := c.collect()
	value, err := k.expr(values[0])
	if err != nil {
		return Result{}, err
	}
	return k.result(&ast.ReturnStatement{Value: value})
}

func convertPass(*Converter, *cst.Node) (Result, error) {
	return Result{}, nil
}

func convertBreak(*Converter, *cst.Node) (Result, error) {
	return Result{Node: &ast.BreakStatement{}}, nil
}

func convertContinue(*Converter, *cst.Node) (Result, error) {
	return Result{Node: &ast.ContinueStatement{}}, nil
}

// markerStatementOf returns a converter that passes the converted production
// children of a node as the arguments of a marker call. It serves raise,
// assert and del.
func markerStatementOf(m ast.Marker) convertFunc {
	return func(c *Converter, n *cst.Node) (Result, error) {
		var parts []*cst.Node
		for _, child := range n.NonTerminals() {
			if child.Kind == cst.StarTargets {
				parts = append(parts, child.NonTerminals()...)
				continue
			}
			parts = append(parts, child)
		}
		k := c.collect()
		args, err := k.exprs(parts)
		if err != nil {
			return Result{}, err
		}
		return k.result(ast.MarkerCallStatement(m, args...))
	}
}

// nameListOf returns a converter for global and nonlocal statements.
func nameListOf(m ast.Marker) convertFunc {
	return func(c *Converter, n *cst.Node) (Result, error) {
		var names []ast.Expression
		for _, child := range n.Children {
			if child.Is(token.NAME) {
				names = append(names, ast.Str(child.Token.Lexeme))
			}
		}
		return Result{Node: ast.MarkerCallStatement(m, names...)}, nil
	}
}

// ============================================================
// Conditionals and loops
// ============================================================

// convertIf converts if and elif. An elif chain nests in whenFalse; a
// missing else yields an empty sequence.
func convertIf(c *Converter, n *cst.Node) (Result, error) {
	parts := n.NonTerminals()
	if len(parts) < 2 || parts[1].Kind != cst.Block {
		return Result{}, malformed(n, "expected condition and block")
	}
	k := c.collect()
	cond, err := k.expr(parts[0])
	if err != nil {
		return Result{}, err
	}
	whenTrue, err := k.seq(parts[1])
	if err != nil {
		return Result{}, err
	}
	var whenFalse ast.Statement = ast.Seq()
	if len(parts) > 2 {
		if whenFalse, err = k.stmt(parts[2]); err != nil {
			return Result{}, err
		}
		if whenFalse == nil {
			whenFalse = ast.Seq()
		}
	}
	return k.result(&ast.ConditionStatement{Condition: cond, WhenTrue: whenTrue, WhenFalse: whenFalse})
}

// convertElse converts the block of an else clause.
func convertElse(c *Converter, n *cst.Node) (Result, error) {
	block := n.Child(cst.Block)
	if block == nil {
		return Result{}, malformed(n, "else without a block")
	}
	k := c.collect()
	body, err := k.seq(block)
	if err != nil {
		return Result{}, err
	}
	return k.result(body)
}

func convertWhile(c *Converter, n *cst.Node) (Result, error) {
	parts := n.NonTerminals()
	if len(parts) < 2 {
		return Result{}, malformed(n, "expected condition and block")
	}
	k := c.collect()
	cond, err := k.expr(parts[0])
	if err != nil {
		return Result{}, err
	}
	return loop(k, n, cond, parts[1])
}

// convertFor converts for loops to loop{for-each[target, iterable], body}.
func convertFor(c *Converter, n *cst.Node) (Result, error) {
	op := ast.OpForEach
	if n.Has(token.KW_ASYNC) {
		op = ast.OpAsyncForEach
	}
	parts := n.NonTerminals()
	if len(parts) < 3 || parts[0].Kind != cst.StarTargets {
		return Result{}, malformed(n, "expected target, iterable and block")
	}
	k := c.collect()
	target, err := k.expr(parts[0])
	if err != nil {
		return Result{}, err
	}
	iterable, err := k.expr(parts[1])
	if err != nil {
		return Result{}, err
	}
	return loop(k, n, ast.Op(op, target, iterable), parts[2])
}

// loop builds the loop statement. An else clause follows the loop as a
// condition on the last-loop-finished marker, in the same sequence.
func loop(k *collector, n *cst.Node, cond ast.Expression, block *cst.Node) (Result, error) {
	body, err := k.seq(block)
	if err != nil {
		return Result{}, err
	}
	stmt := &ast.LoopStatement{Condition: cond, Body: body}
	elseBlock := n.Child(cst.ElseBlock)
	if elseBlock == nil {
		return k.result(stmt)
	}
	orElse, err := k.seq(elseBlock)
	if err != nil {
		return Result{}, err
	}
	return k.result(ast.Seq(stmt, &ast.ConditionStatement{
		Condition: ast.MarkerCall(ast.MarkerLastLoopFinished),
		WhenTrue:  orElse,
		WhenFalse: ast.Seq(),
	}))
}

// ============================================================
// Exceptions and context managers
// ============================================================

// convertTry builds @try(), the protected body, each handler's marker and
// body, the else body, then @finally() followed by the finally statements.
// Bodies stay nested; the handler and finally parts are spliced.
func convertTry(c *Converter, n *cst.Node) (Result, error) {
	k := c.collect()
	stmts := []ast.Statement{ast.MarkerCallStatement(ast.MarkerTry)}
	for _, child := range n.NonTerminals() {
		switch child.Kind {
		case cst.Block, cst.ElseBlock:
			body, err := k.seq(child)
			if err != nil {
				return Result{}, err
			}
			stmts = append(stmts, body)
		case cst.ExceptBlock, cst.ExceptStarBlock, cst.FinallyBlock:
			part, err := convertAs[*ast.SequenceStatement](k, child, "sequence")
			if err != nil {
				return Result{}, err
			}
			stmts = append(stmts, part.Statements...)
		default:
			return Result{}, unexpectedNode(child)
		}
	}
	return k.result(ast.Group(stmts...))
}

// exceptOf returns a converter for handlers: the marker call with the
// exception expression and bound name, followed by the handler body.
func exceptOf(m ast.Marker) convertFunc {
	return func(c *Converter, n *cst.Node) (Result, error) {
		k := c.collect()
		var args []ast.Expression
		var body *ast.SequenceStatement
		for _, child := range n.Children {
			switch {
			case child.Is(token.NAME):
				args = append(args, ast.Str(child.Token.Lexeme))
			case child.Kind == cst.Block:
				var err error
				if body, err = k.seq(child); err != nil {
					return Result{}, err
				}
			case !child.IsTerminal():
				e, err := k.expr(child)
				if err != nil {
					return Result{}, err
				}
				args = append(args, e)
			}
		}
		if body == nil {
			return Result{}, malformed(n, "handler without a block")
		}
		return k.result(ast.Group(ast.MarkerCallStatement(m, args...), body))
	}
}

func convertFinally(c *Converter, n *cst.Node) (Result, error) {
	block := n.Child(cst.Block)
	if block == nil {
		return Result{}, malformed(n, "finally without a block")
	}
	k := c.collect()
	body, err := k.seq(block)
	if err != nil {
		return Result{}, err
	}
	return k.result(ast.Group(append([]ast.Statement{ast.MarkerCallStatement(ast.MarkerFinally)}, body.Statements...)...))
}

// convertWith builds @with[async, item...] followed by the body statements.
func convertWith(c *Converter, n *cst.Node) (Result, error) {
	async := "false"
	if n.Has(token.KW_ASYNC) {
		async = "true"
	}
	k := c.collect()
	args := []ast.Expression{ast.Lit(ast.LiteralBoolean, async)}
	var body *ast.SequenceStatement
	for _, child := range n.NonTerminals() {
		var err error
		switch child.Kind {
		case cst.WithItem:
			var item ast.Expression
			if item, err = k.expr(child); err == nil {
				args = append(args, item)
			}
		case cst.Block:
			body, err = k.seq(child)
		default:
			err = unexpectedNode(child)
		}
		if err != nil {
			return Result{}, err
		}
	}
	if body == nil {
		return Result{}, malformed(n, "with without a block")
	}
	return k.result(ast.Seq(ast.MarkerCallStatement(ast.MarkerWith, args...), body))
}

// convertWithItem converts expr or expr as target to the expression or
// as[expr, target].
func convertWithItem(c *Converter, n *cst.Node) (Result, error) {
	parts := n.NonTerminals()
	if len(parts) == 1 {
		return c.Dispatch(parts[0])
	}
	if len(parts) != 2 {
		return Result{}, malformed(n, "expected expression and target")
	}
	k := c.collect()
	operands, err := k.exprs(parts)
	if err != nil {
		return Result{}, err
	}
	return k.result(ast.Op(ast.OpAs, operands...))
}
