package convert

import (
	"errors"
	"testing"

	"pyast/internal/ast"
)

func TestConvertAssignments(t *testing.T) {
	tests := []struct {
		source string
		want   ast.Statement
	}{
		{"x = 1\n", multi(exprs(v("x")), num("1"))},
		{"a = b = 0\n", multi(exprs(v("a"), v("b")), num("0"))},
		{"a, b = 1, 2\n", multi(exprs(seqExpr(v("a"), v("b"))), num("1"), num("2"))},
		{"x = *a, b\n", multi(exprs(v("x")), op(ast.OpUnpackIterable, v("a")), v("b"))},
		{"x = yield\n", multi(exprs(v("x")), op(ast.OpYield))},
		{"x = (1,)\n", multi(exprs(v("x")), seqExpr(num("1")))},
		{"x = 1,\n", multi(exprs(v("x")), seqExpr(num("1")))},
		{"x = ()\n", multi(exprs(v("x")), seqExpr())},
		{"x = (1, 2)\n", multi(exprs(v("x")), seqExpr(num("1"), num("2")))},
		{"x = (1, 2), 3\n", multi(exprs(v("x")), seqExpr(num("1"), num("2")), num("3"))},
		{"x: int = 1\n", &ast.AssignmentStatement{Variable: v("x"), Value: num("1")}},
		{"self.x: int = 0\n", &ast.AssignmentStatement{
			Variable: op(ast.OpFieldAccess, v("self"), str("x")),
			Value:    num("0"),
		}},
		{"x: int\n", &ast.VariableDeclarationStatement{Name: "x", Value: ast.Lit("int", "null")}},
		{"x: dict[str, int]\n", &ast.VariableDeclarationStatement{Name: "x", Value: ast.Lit("dict[str, int]", "null")}},
		{"self.x: int\n", &ast.VariableDeclarationStatement{Name: "self.x", Value: ast.Lit("int", "null")}},
		{"a . b .c: int\n", &ast.VariableDeclarationStatement{Name: "a.b.c", Value: ast.Lit("int", "null")}},
		{"x += 1\n", &ast.AssignmentStatement{Variable: v("x"), Value: op(ast.OpAdd, v("x"), num("1"))}},
		{"x //= 2\n", &ast.AssignmentStatement{Variable: v("x"), Value: op(ast.OpFloorDiv, v("x"), num("2"))}},
		{"x **= 2\n", &ast.AssignmentStatement{Variable: v("x"), Value: op(ast.OpPow, v("x"), num("2"))}},
		{"x >>= 1\n", &ast.AssignmentStatement{Variable: v("x"), Value: op(ast.OpRShift, v("x"), num("1"))}},
		{"m @= n\n", &ast.AssignmentStatement{Variable: v("m"), Value: op(ast.OpMatMul, v("m"), v("n"))}},
		{"a[i] += 1\n", &ast.AssignmentStatement{
			Variable: op(ast.OpSlice, v("a"), v("i")),
			Value:    op(ast.OpAdd, op(ast.OpSlice, v("a"), v("i")), num("1")),
		}},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			assertNode(t, firstStatement(t, tt.source), tt.want)
		})
	}
}

func TestConvertAugmentedAssignmentDoesNotShareTarget(t *testing.T) {
	s, ok := firstStatement(t, "a.b += 1\n").(*ast.AssignmentStatement)
	if !ok {
		t.Fatal("expected an assignment statement")
	}
	value := s.Value.(*ast.OperatorExpression)
	if s.Variable == value.Operands[0] {
		t.Error("target and left operand are the same node")
	}
}

func TestConvertSimpleStatements(t *testing.T) {
	tests := []struct {
		source string
		want   ast.Statement
	}{
		{"print(x)\n", fcallStmt("print", v("x"))},
		{"x\n", &ast.ExpressionAsStatement{Expression: v("x")}},
		{"del x\n", marker(ast.MarkerDelete, v("x"))},
		{"del a, b[0]\n", marker(ast.MarkerDelete, v("a"), op(ast.OpSlice, v("b"), num("0")))},
		{"raise\n", marker(ast.MarkerRaise)},
		{"raise E(1)\n", marker(ast.MarkerRaise, fcall("E", num("1")))},
		{"raise E from c\n", marker(ast.MarkerRaise, v("E"), v("c"))},
		{"assert x\n", marker(ast.MarkerAssert, v("x"))},
		{`assert x, "m"` + "\n", marker(ast.MarkerAssert, v("x"), lit(ast.LiteralString, "m"))},
		{"global a, b\n", marker(ast.MarkerGlobal, str("a"), str("b"))},
		{"nonlocal n\n", marker(ast.MarkerNonlocal, str("n"))},
		{"import os\n", marker(ast.MarkerImport, str("os"))},
		{"import os.path as p\n", marker(ast.MarkerImport, str("os.path"), str("p"))},
		{"from os import path\n", marker(ast.MarkerImportFrom, str("os"), str("path"))},
		{"from ..pkg import (a as b, c)\n", marker(ast.MarkerImportFrom, str("..pkg"), op(ast.OpAs, str("a"), str("b")), str("c"))},
		{"from . import *\n", marker(ast.MarkerImportFrom, str("."), lit(ast.LiteralWildcard, "*"))},
		{"type X = int\n", marker(ast.MarkerTypeAlias, str("X"), v("int"))},
		{"type Point[T] = tuple[T, T]\n", marker(ast.MarkerTypeAlias,
			str("Point"),
			op(ast.OpTypeParameter, str("T")),
			op(ast.OpSlice, v("tuple"), seqExpr(v("T"), v("T"))))},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			assertNode(t, firstStatement(t, tt.source), tt.want)
		})
	}
}

func TestConvertImportSplitsNames(t *testing.T) {
	action := convertOK(t, "import os.path as p, sys\n")
	want := ast.Seq(
		marker(ast.MarkerImport, str("os.path"), str("p")),
		marker(ast.MarkerImport, str("sys")),
	)
	assertNode(t, action, want)
}

func TestConvertSemicolonLine(t *testing.T) {
	action := convertOK(t, "a = 1; pass; b()\n")
	assertNode(t, action, ast.Seq(multi(exprs(v("a")), num("1")), fcallStmt("b")))
}

func TestConvertIfElifElse(t *testing.T) {
	source := `if a:
    x = 1
elif b:
    x = 2
else:
    x = 3
`
	want := &ast.ConditionStatement{
		Condition: v("a"),
		WhenTrue:  ast.Seq(multi(exprs(v("x")), num("1"))),
		WhenFalse: &ast.ConditionStatement{
			Condition: v("b"),
			WhenTrue:  ast.Seq(multi(exprs(v("x")), num("2"))),
			WhenFalse: ast.Seq(multi(exprs(v("x")), num("3"))),
		},
	}
	assertNode(t, firstStatement(t, source), want)
}

func TestConvertIfWithoutElse(t *testing.T) {
	want := &ast.ConditionStatement{Condition: v("a"), WhenTrue: ast.Seq(), WhenFalse: ast.Seq()}
	assertNode(t, firstStatement(t, "if a: pass\n"), want)
}

func TestConvertForElse(t *testing.T) {
	source := `for i, j in pairs:
    break
else:
    pass
`
	want := ast.Seq(
		&ast.LoopStatement{
			Condition: op(ast.OpForEach, seqExpr(v("i"), v("j")), v("pairs")),
			Body:      ast.Seq(&ast.BreakStatement{}),
		},
		&ast.ConditionStatement{
			Condition: ast.MarkerCall(ast.MarkerLastLoopFinished),
			WhenTrue:  ast.Seq(),
			WhenFalse: ast.Seq(),
		},
	)
	assertNode(t, convertOK(t, source), want)
}

func TestConvertWhileWithoutElse(t *testing.T) {
	want := &ast.LoopStatement{Condition: v("running"), Body: ast.Seq(&ast.ContinueStatement{})}
	assertNode(t, firstStatement(t, "while running:\n    continue\n"), want)
}

func TestConvertTry(t *testing.T) {
	source := `try:
    a()
except ValueError as e:
    b()
except:
    c()
else:
    d()
finally:
    f()
`
	want := ast.Group(
		marker(ast.MarkerTry),
		ast.Seq(fcallStmt("a")),
		marker(ast.MarkerExcept, v("ValueError"), str("e")),
		ast.Seq(fcallStmt("b")),
		marker(ast.MarkerExcept),
		ast.Seq(fcallStmt("c")),
		ast.Seq(fcallStmt("d")),
		marker(ast.MarkerFinally),
		fcallStmt("f"),
	)
	assertNode(t, convertOK(t, source), want)
}

func TestConvertTryFinallyOnly(t *testing.T) {
	source := `x = 0
try:
    a()
finally:
    b()
    c()
`
	want := ast.Group(
		multi(exprs(v("x")), num("0")),
		marker(ast.MarkerTry),
		ast.Seq(fcallStmt("a")),
		marker(ast.MarkerFinally),
		fcallStmt("b"),
		fcallStmt("c"),
	)
	assertNode(t, convertOK(t, source), want)
}

func TestConvertExceptStar(t *testing.T) {
	source := `try:
    a()
except* (E, F) as g:
    b()
`
	want := ast.Group(
		marker(ast.MarkerTry),
		ast.Seq(fcallStmt("a")),
		marker(ast.MarkerExceptStar, seqExpr(v("E"), v("F")), str("g")),
		ast.Seq(fcallStmt("b")),
	)
	assertNode(t, convertOK(t, source), want)
}

func TestConvertWith(t *testing.T) {
	source := `with open(p) as f, lock:
    read(f)
`
	want := ast.Seq(
		marker(ast.MarkerWith, boolean("false"), op(ast.OpAs, fcall("open", v("p")), v("f")), v("lock")),
		fcallStmt("read", v("f")),
	)
	assertNode(t, convertOK(t, source), want)
}

func TestConvertAsyncStatements(t *testing.T) {
	source := `async def g():
    async with a as x:
        pass
    async for i in xs:
        await i
`
	want := &ast.FunctionDeclarationStatement{
		Name:           "g",
		ParameterNames: []string{},
		Body: ast.Seq(
			marker(ast.MarkerWith, boolean("true"), op(ast.OpAs, v("a"), v("x"))),
			&ast.LoopStatement{
				Condition: op(ast.OpAsyncForEach, v("i"), v("xs")),
				Body:      ast.Seq(&ast.ExpressionAsStatement{Expression: op(ast.OpAwait, v("i"))}),
			},
		),
		Decorators: exprs(op(ast.OpAsync)),
	}
	assertNode(t, firstStatement(t, source), want)
}

func TestConvertFunctionDeclaration(t *testing.T) {
	source := `@dec
@pkg.deco(1)
async def f[T](a, /, b: int = 1, *args, c, **kw) -> T:
    return a
`
	want := &ast.FunctionDeclarationStatement{
		Name:           "f",
		ParameterNames: []string{"a", "/", "b", "*args", "c", "**kw"},
		Body:           ast.Seq(&ast.ReturnStatement{Value: v("a")}),
		Decorators: exprs(
			v("dec"),
			op(ast.OpInvoke, op(ast.OpFieldAccess, v("pkg"), str("deco")), num("1")),
			op(ast.OpTypeParameter, str("T")),
			op(ast.OpAsync),
		),
	}
	assertNode(t, firstStatement(t, source), want)
}

func TestConvertKeywordOnlyMarker(t *testing.T) {
	s, ok := firstStatement(t, "def f(a, *, b):\n    return a, b\n").(*ast.FunctionDeclarationStatement)
	if !ok {
		t.Fatal("expected a function declaration")
	}
	want := []string{"a", "*", "b"}
	if len(s.ParameterNames) != len(want) {
		t.Fatalf("parameter names: got %v, want %v", s.ParameterNames, want)
	}
	for i := range want {
		if s.ParameterNames[i] != want[i] {
			t.Errorf("parameter %d: got %q, want %q", i, s.ParameterNames[i], want[i])
		}
	}
	assertNode(t, s.Body, ast.Seq(&ast.ReturnStatement{Value: seqExpr(v("a"), v("b"))}))
}

func TestConvertClassDeclaration(t *testing.T) {
	source := `class C(Base, *mixins, metaclass=Meta, flag=True, **opts):
    pass
`
	want := &ast.ClassDeclarationStatement{
		Name:        "C",
		BaseClasses: exprs(v("Base"), op(ast.OpUnpackIterable, v("mixins"))),
		Body:        ast.Seq(),
		Decorators: exprs(
			op(ast.OpMetaclass, v("Meta")),
			op(ast.OpClassKeyword, op(ast.OpKeywordArgument, str("flag"), boolean("true"))),
			op(ast.OpClassKeyword, op(ast.OpUnpackMapping, v("opts"))),
		),
	}
	assertNode(t, firstStatement(t, source), want)
}

func TestConvertGenericClass(t *testing.T) {
	source := `@dataclass
class G[T: int, *Ts, **P = [int]](Base):
    x: T
`
	want := &ast.ClassDeclarationStatement{
		Name:        "G",
		BaseClasses: exprs(v("Base")),
		Body:        ast.Seq(&ast.VariableDeclarationStatement{Name: "x", Value: ast.Lit("T", "null")}),
		Decorators: exprs(
			v("dataclass"),
			op(ast.OpTypeParameter, str("T"), op(ast.OpTypeBound, v("int"))),
			op(ast.OpTypeParameter, str("*Ts")),
			op(ast.OpTypeParameter, str("**P"), op(ast.OpTypeDefault, op(ast.OpList, v("int")))),
		),
	}
	assertNode(t, firstStatement(t, source), want)
}

func TestConvertBareClass(t *testing.T) {
	want := &ast.ClassDeclarationStatement{Name: "A", BaseClasses: exprs(), Body: ast.Seq()}
	assertNode(t, firstStatement(t, "class A: pass\n"), want)
}

func TestConvertNestedDeclarationsStayInPlace(t *testing.T) {
	source := `class A:
    def m(self):
        def inner():
            return 1
        return inner
`
	inner := &ast.FunctionDeclarationStatement{
		Name:           "inner",
		ParameterNames: []string{},
		Body:           ast.Seq(&ast.ReturnStatement{Value: num("1")}),
	}
	method := &ast.FunctionDeclarationStatement{
		Name:           "m",
		ParameterNames: []string{"self"},
		Body:           ast.Seq(inner, &ast.ReturnStatement{Value: v("inner")}),
	}
	want := &ast.ClassDeclarationStatement{Name: "A", BaseClasses: exprs(), Body: ast.Seq(method)}
	assertNode(t, firstStatement(t, source), want)
}

func TestConvertDeclarationTargetMustBeDotted(t *testing.T) {
	for _, source := range []string{"a[0]: int\n", "a[ 0 ]: int\n", "f().x: int\n", "a[0].b: int\n"} {
		if _, err := Source(source, "test.py", testVersion); !errors.Is(err, ErrMalformedConstruct) {
			t.Errorf("%q: expected ErrMalformedConstruct, got %v", source, err)
		}
	}
	// With a value the subscript is an ordinary assignment target.
	got := firstStatement(t, "a[0]: int = 1\n")
	assertNode(t, got, &ast.AssignmentStatement{Variable: op(ast.OpSlice, v("a"), num("0")), Value: num("1")})
}

func TestConvertTupleValuesStayDistinct(t *testing.T) {
	sources := []string{"x = 1\n", "x = (1,)\n", "x = ()\n", "x = 1, 2\n", "x = (1, 2)\n"}
	seen := map[string]string{}
	for _, source := range sources {
		key := toJSON(t, ast.ToMap(firstStatement(t, source)))
		if prev, ok := seen[key]; ok {
			t.Errorf("%q and %q convert to the same tree %s", prev, source, key)
		}
		seen[key] = source
	}
}
