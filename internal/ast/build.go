package ast

// Seq builds a statement sequence. Nil statements are dropped and child
// sequences are spliced in one level, so a sequence never directly nests a
// sequence built by Seq. A single child sequence is returned unchanged.
func Seq(stmts ...Statement) *SequenceStatement {
	if len(stmts) == 1 {
		if seq, ok := stmts[0].(*SequenceStatement); ok {
			return seq
		}
	}
	out := make([]Statement, 0, len(stmts))
	for _, s := range stmts {
		switch s := s.(type) {
		case nil:
		case *SequenceStatement:
			out = append(out, s.Statements...)
		default:
			out = append(out, s)
		}
	}
	return &SequenceStatement{Statements: out}
}

// Group builds a statement sequence that keeps its elements as they are.
// It is used where nested sequences carry meaning, such as the protected
// body following a try marker.
func Group(stmts ...Statement) *SequenceStatement {
	out := make([]Statement, 0, len(stmts))
	for _, s := range stmts {
		if s != nil {
			out = append(out, s)
		}
	}
	return &SequenceStatement{Statements: out}
}

// Op builds an operator expression.
func Op(op Operator, operands ...Expression) *OperatorExpression {
	if operands == nil {
		operands = []Expression{}
	}
	return &OperatorExpression{Operator: op, Operands: operands}
}

// Lit builds a literal expression.
func Lit(typ, value string) *LiteralExpression {
	return &LiteralExpression{Type: typ, Value: value}
}

// Str builds a string literal.
func Str(value string) *LiteralExpression {
	return Lit(LiteralString, value)
}

// Var builds a variable reference.
func Var(name string) *VariableExpression {
	return &VariableExpression{Name: name}
}

// MarkerCall builds a marker call in expression position.
func MarkerCall(m Marker, args ...Expression) *FunctionCallExpression {
	if args == nil {
		args = []Expression{}
	}
	return &FunctionCallExpression{Name: m.String(), Arguments: args}
}

// MarkerCallStatement builds a marker call in statement position.
func MarkerCallStatement(m Marker, args ...Expression) *FunctionCallStatement {
	if args == nil {
		args = []Expression{}
	}
	return &FunctionCallStatement{Name: m.String(), Arguments: args}
}

// NewProgram wraps the top-level statements of a script into the single
// executable actor with a main event listener.
func NewProgram(action *SequenceStatement, hoisted []*FunctionDeclarationStatement) GeneralAst {
	if hoisted == nil {
		hoisted = []*FunctionDeclarationStatement{}
	}
	return GeneralAst{{
		ComponentID: "executable",
		EventListeners: []*EventListener{{
			Condition: EventCondition{Event: "main", Parameters: []Expression{}},
			Action:    action,
		}},
		FunctionDeclarations: hoisted,
	}}
}
