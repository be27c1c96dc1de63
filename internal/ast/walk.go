package ast

// Inspect traverses the tree rooted at node in depth-first order. It calls
// fn for each non-nil node; if fn returns false, the node's children are
// skipped.
func Inspect(node Node, fn func(Node) bool) {
	if node == nil || isNilNode(node) || !fn(node) {
		return
	}
	for _, child := range children(node) {
		Inspect(child, fn)
	}
}

// isNilNode catches typed nil pointers stored in an interface, such as a
// return statement without a value.
func isNilNode(node Node) bool {
	switch n := node.(type) {
	case *LiteralExpression:
		return n == nil
	case *VariableExpression:
		return n == nil
	case *OperatorExpression:
		return n == nil
	case *FunctionCallExpression:
		return n == nil
	case *LambdaExpression:
		return n == nil
	case *SequenceExpression:
		return n == nil
	case *AssignmentExpression:
		return n == nil
	case *SequenceStatement:
		return n == nil
	case *ConditionStatement:
		return n == nil
	case *LoopStatement:
		return n == nil
	case *BreakStatement:
		return n == nil
	case *ContinueStatement:
		return n == nil
	case *ReturnStatement:
		return n == nil
	case *AssignmentStatement:
		return n == nil
	case *MultiAssignmentStatement:
		return n == nil
	case *VariableDeclarationStatement:
		return n == nil
	case *FunctionDeclarationStatement:
		return n == nil
	case *ClassDeclarationStatement:
		return n == nil
	case *FunctionCallStatement:
		return n == nil
	case *ExpressionAsStatement:
		return n == nil
	case *Actor:
		return n == nil
	case *EventListener:
		return n == nil
	}
	return false
}

func children(node Node) []Node {
	var out []Node
	add := func(nodes ...Node) {
		for _, n := range nodes {
			if n != nil {
				out = append(out, n)
			}
		}
	}
	addExprs := func(exprs []Expression) {
		for _, e := range exprs {
			add(e)
		}
	}

	switch n := node.(type) {
	case *OperatorExpression:
		addExprs(n.Operands)
	case *FunctionCallExpression:
		addExprs(n.Arguments)
	case *LambdaExpression:
		if n.Body != nil {
			add(n.Body)
		}
	case *SequenceExpression:
		addExprs(n.Expressions)
	case *AssignmentExpression:
		add(n.Variable, n.Value)

	case *SequenceStatement:
		for _, s := range n.Statements {
			add(s)
		}
	case *ConditionStatement:
		add(n.Condition, n.WhenTrue, n.WhenFalse)
	case *LoopStatement:
		add(n.Condition, n.Body)
	case *ReturnStatement:
		add(n.Value)
	case *AssignmentStatement:
		add(n.Variable, n.Value)
	case *MultiAssignmentStatement:
		addExprs(n.AssignmentExpressions)
		addExprs(n.Values)
	case *VariableDeclarationStatement:
		add(n.Value)
	case *FunctionDeclarationStatement:
		addExprs(n.Decorators)
		add(n.Body)
	case *ClassDeclarationStatement:
		addExprs(n.Decorators)
		addExprs(n.BaseClasses)
		add(n.Body)
	case *FunctionCallStatement:
		addExprs(n.Arguments)
	case *ExpressionAsStatement:
		add(n.Expression)

	case *Actor:
		for _, l := range n.EventListeners {
			if l != nil {
				add(l)
			}
		}
		for _, f := range n.FunctionDeclarations {
			if f != nil {
				add(f)
			}
		}
	case *EventListener:
		addExprs(n.Condition.Parameters)
		if n.Action != nil {
			add(n.Action)
		}
	}
	return out
}
