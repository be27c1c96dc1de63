package convert

import (
	"encoding/json"
	"testing"

	"pyast/internal/ast"
)

// testVersion accepts every construct the parser knows.
const testVersion = "3.13"

// ---- helpers ----

func newConverter(t *testing.T, version string) *Converter {
	t.Helper()
	c, err := New(version)
	if err != nil {
		t.Fatalf("New(%q): %v", version, err)
	}
	return c
}

// convertOK converts source and returns the action of the main listener.
func convertOK(t *testing.T, source string) *ast.SequenceStatement {
	t.Helper()
	program, err := newConverter(t, testVersion).Source(source, "test.py")
	if err != nil {
		t.Fatalf("convert %q: %v", source, err)
	}
	if len(program) != 1 || len(program[0].EventListeners) != 1 {
		t.Fatalf("expected one actor with one listener, got %#v", program)
	}
	return program[0].EventListeners[0].Action
}

// firstStatement converts source and returns its first top-level statement.
func firstStatement(t *testing.T, source string) ast.Statement {
	t.Helper()
	action := convertOK(t, source)
	if len(action.Statements) == 0 {
		t.Fatalf("no statements converted from %q", source)
	}
	return action.Statements[0]
}

// expressionOf converts a one-line expression statement and returns the
// expression. Statement calls are turned back into call expressions.
func expressionOf(t *testing.T, source string) ast.Expression {
	t.Helper()
	switch s := firstStatement(t, source).(type) {
	case *ast.ExpressionAsStatement:
		return s.Expression
	case *ast.FunctionCallStatement:
		return &ast.FunctionCallExpression{Name: s.Name, Arguments: s.Arguments}
	default:
		t.Fatalf("%q: expected an expression statement, got %T", source, s)
	}
	return nil
}

func toJSON(t *testing.T, v interface{}) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(data)
}

// assertNode compares two nodes by their JSON form.
func assertNode(t *testing.T, got, want ast.Node) {
	t.Helper()
	g, w := toJSON(t, ast.ToMap(got)), toJSON(t, ast.ToMap(want))
	if g != w {
		t.Errorf("node mismatch\n got: %s\nwant: %s", g, w)
	}
}

// ---- expected-tree shorthands ----

func v(name string) ast.Expression        { return ast.Var(name) }
func str(value string) ast.Expression     { return ast.Str(value) }
func num(text string) ast.Expression      { return ast.Lit(ast.LiteralNumber, text) }
func boolean(value string) ast.Expression { return ast.Lit(ast.LiteralBoolean, value) }
func seqExpr(xs ...ast.Expression) ast.Expression {
	return &ast.SequenceExpression{Expressions: xs}
}

func op(o ast.Operator, operands ...ast.Expression) ast.Expression {
	return ast.Op(o, operands...)
}

func fcall(name string, args ...ast.Expression) *ast.FunctionCallExpression {
	return &ast.FunctionCallExpression{Name: name, Arguments: args}
}

func fcallStmt(name string, args ...ast.Expression) *ast.FunctionCallStatement {
	return &ast.FunctionCallStatement{Name: name, Arguments: args}
}

func marker(m ast.Marker, args ...ast.Expression) *ast.FunctionCallStatement {
	return ast.MarkerCallStatement(m, args...)
}

func multi(targets []ast.Expression, values ...ast.Expression) *ast.MultiAssignmentStatement {
	return &ast.MultiAssignmentStatement{AssignmentExpressions: targets, Values: values}
}

func exprs(xs ...ast.Expression) []ast.Expression { return xs }

// ============================================================
// Whole programs
// ============================================================

func TestConvertSimpleAssignmentProgram(t *testing.T) {
	program, err := Source("x = 1\n", "test.py", testVersion)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	want := ast.NewProgram(ast.Seq(multi(exprs(v("x")), num("1"))), nil)
	if got, w := toJSON(t, ast.GeneralAstToSlice(program)), toJSON(t, ast.GeneralAstToSlice(want)); got != w {
		t.Errorf("program mismatch\n got: %s\nwant: %s", got, w)
	}

	actor := program[0]
	if actor.ComponentID != "executable" {
		t.Errorf("componentId: got %q", actor.ComponentID)
	}
	if ev := actor.EventListeners[0].Condition.Event; ev != "main" {
		t.Errorf("event: got %q", ev)
	}
	if len(actor.FunctionDeclarations) != 0 {
		t.Errorf("expected no hoisted declarations, got %d", len(actor.FunctionDeclarations))
	}
}

func TestConvertEmptyProgram(t *testing.T) {
	for _, source := range []string{"", "\n", "# only a comment\n", "pass\n", "pass; pass\n"} {
		action := convertOK(t, source)
		if len(action.Statements) != 0 {
			t.Errorf("%q: expected an empty main action, got %d statements", source, len(action.Statements))
		}
	}
}

func TestConvertWhileElse(t *testing.T) {
	source := `x = 0
while True:
    x += 1
else:
    print("done")
`
	action := convertOK(t, source)
	want := ast.Group(
		multi(exprs(v("x")), num("0")),
		&ast.LoopStatement{
			Condition: boolean("true"),
			Body: ast.Seq(&ast.AssignmentStatement{
				Variable: v("x"),
				Value:    op(ast.OpAdd, v("x"), num("1")),
			}),
		},
		&ast.ConditionStatement{
			Condition: ast.MarkerCall(ast.MarkerLastLoopFinished),
			WhenTrue:  ast.Seq(fcallStmt("print", ast.Lit(ast.LiteralString, "done"))),
			WhenFalse: ast.Seq(),
		},
	)
	assertNode(t, action, want)
}

func TestConvertListComprehension(t *testing.T) {
	got := expressionOf(t, "[i*2 for i in range(10)]\n")
	want := op(ast.OpListComprehension,
		op(ast.OpMul, v("i"), num("2")),
		seqExpr(op(ast.OpForIfClause, v("i"), fcall("range", num("10")))),
	)
	assertNode(t, got, want)
}

func TestConvertSliceStop(t *testing.T) {
	got := expressionOf(t, "seq[:5]\n")
	assertNode(t, got, op(ast.OpSlice, v("seq"), op(ast.OpCreateSliceStop, num("5"))))
}

func TestConvertMatchWithGuard(t *testing.T) {
	source := `match v:
    case n if n > 0:
        r = "pos"
`
	action := convertOK(t, source)
	want := ast.Group(
		marker(ast.MarkerMatch, v("v")),
		ast.Group(
			marker(ast.MarkerCase, v("n"), op(ast.OpGuard, op(ast.OpGt, v("n"), num("0")))),
			ast.Seq(multi(exprs(v("r")), ast.Lit(ast.LiteralString, "pos"))),
		),
	)
	assertNode(t, action, want)
}

func TestConvertReturnsJSONKeysPerNodeType(t *testing.T) {
	program, err := Source("def f():\n    return\n", "test.py", testVersion)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	got := toJSON(t, ast.GeneralAstToSlice(program))
	want := `[{"componentId":"executable","eventListeners":[{"action":{"nodeType":"statement","statementType":"sequence","statements":[` +
		`{"body":{"nodeType":"statement","statementType":"sequence","statements":[{"nodeType":"statement","statementType":"return","value":null}]},` +
		`"name":"f","nodeType":"statement","parameterNames":[],"statementType":"functionDeclaration"}]},` +
		`"condition":{"event":"main","parameters":[]},"nodeType":"eventListener"}],"functionDeclarations":[],"nodeType":"actor"}]`
	if got != want {
		t.Errorf("JSON mismatch\n got: %s\nwant: %s", got, want)
	}
}
