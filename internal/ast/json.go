package ast

// ToMap converts a general AST node to a map suitable for JSON
// serialization. Every node carries a "nodeType" field; expressions and
// statements add an "expressionType" or "statementType" discriminator.
func ToMap(node Node) map[string]interface{} {
	if node == nil || isNilNode(node) {
		return nil
	}

	switch n := node.(type) {
	// ---- Expressions ----
	case *LiteralExpression:
		return expr("literal", "type", n.Type, "value", n.Value)
	case *VariableExpression:
		return expr("variable", "name", n.Name)
	case *OperatorExpression:
		return expr("operator",
			"operator", n.Operator.String(),
			"operands", exprSlice(n.Operands))
	case *FunctionCallExpression:
		return expr("functionCall",
			"name", n.Name,
			"arguments", exprSlice(n.Arguments))
	case *LambdaExpression:
		return expr("lambda",
			"parameterNames", stringSlice(n.ParameterNames),
			"body", ToMap(n.Body))
	case *SequenceExpression:
		return expr("sequence", "expressions", exprSlice(n.Expressions))
	case *AssignmentExpression:
		return expr("assignment",
			"variable", ToMap(n.Variable),
			"value", ToMap(n.Value))

	// ---- Statements ----
	case *SequenceStatement:
		return stmt("sequence", "statements", stmtSlice(n.Statements))
	case *ConditionStatement:
		return stmt("condition",
			"condition", ToMap(n.Condition),
			"whenTrue", ToMap(n.WhenTrue),
			"whenFalse", ToMap(n.WhenFalse))
	case *LoopStatement:
		return stmt("loop",
			"condition", ToMap(n.Condition),
			"body", ToMap(n.Body))
	case *BreakStatement:
		return stmt("break")
	case *ContinueStatement:
		return stmt("continue")
	case *ReturnStatement:
		return stmt("return", "value", ToMap(n.Value))
	case *AssignmentStatement:
		return stmt("assignment",
			"variable", ToMap(n.Variable),
			"value", ToMap(n.Value))
	case *MultiAssignmentStatement:
		return stmt("multiAssignment",
			"assignmentExpressions", exprSlice(n.AssignmentExpressions),
			"values", exprSlice(n.Values))
	case *VariableDeclarationStatement:
		return stmt("variableDeclaration",
			"name", n.Name,
			"value", ToMap(n.Value))
	case *FunctionDeclarationStatement:
		result := stmt("functionDeclaration",
			"name", n.Name,
			"parameterNames", stringSlice(n.ParameterNames),
			"body", ToMap(n.Body))
		if len(n.Decorators) > 0 {
			result["decorators"] = exprSlice(n.Decorators)
		}
		return result
	case *ClassDeclarationStatement:
		result := stmt("classDeclaration",
			"name", n.Name,
			"baseClasses", exprSlice(n.BaseClasses),
			"body", ToMap(n.Body))
		if len(n.Decorators) > 0 {
			result["decorators"] = exprSlice(n.Decorators)
		}
		return result
	case *FunctionCallStatement:
		return stmt("functionCall",
			"name", n.Name,
			"arguments", exprSlice(n.Arguments))
	case *ExpressionAsStatement:
		return stmt("expressionAsStatement", "expression", ToMap(n.Expression))

	// ---- Top level ----
	case *Actor:
		listeners := make([]interface{}, len(n.EventListeners))
		for i, l := range n.EventListeners {
			listeners[i] = ToMap(l)
		}
		decls := make([]interface{}, len(n.FunctionDeclarations))
		for i, d := range n.FunctionDeclarations {
			decls[i] = ToMap(d)
		}
		return map[string]interface{}{
			"nodeType":             "actor",
			"componentId":          n.ComponentID,
			"eventListeners":       listeners,
			"functionDeclarations": decls,
		}
	case *EventListener:
		return map[string]interface{}{
			"nodeType": "eventListener",
			"condition": map[string]interface{}{
				"event":      n.Condition.Event,
				"parameters": exprSlice(n.Condition.Parameters),
			},
			"action": ToMap(n.Action),
		}

	default:
		return map[string]interface{}{"nodeType": "unknown"}
	}
}

// GeneralAstToSlice converts a whole program to a slice of actor maps.
func GeneralAstToSlice(g GeneralAst) []interface{} {
	result := make([]interface{}, len(g))
	for i, a := range g {
		result[i] = ToMap(a)
	}
	return result
}

// ---- helpers ----

func expr(typ string, kvs ...interface{}) map[string]interface{} {
	return tagged("expression", "expressionType", typ, kvs)
}

func stmt(typ string, kvs ...interface{}) map[string]interface{} {
	return tagged("statement", "statementType", typ, kvs)
}

// tagged builds a map with nodeType, the type discriminator, and extra
// key-value pairs.
func tagged(nodeType, typeKey, typ string, kvs []interface{}) map[string]interface{} {
	result := map[string]interface{}{
		"nodeType": nodeType,
		typeKey:    typ,
	}
	for i := 0; i+1 < len(kvs); i += 2 {
		key := kvs[i].(string)
		result[key] = kvs[i+1]
	}
	return result
}

func exprSlice(exprs []Expression) []interface{} {
	result := make([]interface{}, len(exprs))
	for i, e := range exprs {
		result[i] = ToMap(e)
	}
	return result
}

func stmtSlice(stmts []Statement) []interface{} {
	result := make([]interface{}, len(stmts))
	for i, s := range stmts {
		result[i] = ToMap(s)
	}
	return result
}

func stringSlice(values []string) []interface{} {
	result := make([]interface{}, len(values))
	for i, v := range values {
		result[i] = v
	}
	return result
}
