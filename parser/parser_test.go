package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"yuk/ast"
	"yuk/diag"
	"yuk/lexer"
)

func parse(t *testing.T, src string) ([]ast.Stmt, *diag.Sink) {
	t.Helper()
	sink := diag.NewSink("<test>")
	toks := lexer.New("<test>", src, sink).Tokens()
	prog := New(toks, sink).Parse()
	return prog, sink
}

func TestPrecedenceMulOverAdd(t *testing.T) {
	prog, sink := parse(t, "print 1 + 2 * 3;")
	require.False(t, sink.HasErrors())
	require.Len(t, prog, 1)

	print := prog[0].(*ast.Print)
	bin := print.Value.(*ast.Binary)
	require.Equal(t, ast.OpAdd, bin.Op)

	right := bin.Right.(*ast.Binary)
	require.Equal(t, ast.OpMul, right.Op)
}

func TestComparisonAndEquality(t *testing.T) {
	prog, sink := parse(t, "print 1 < 2 == true;")
	require.False(t, sink.HasErrors())

	print := prog[0].(*ast.Print)
	eq := print.Value.(*ast.Binary)
	require.Equal(t, ast.OpEq, eq.Op)
	require.Equal(t, ast.OpLt, eq.Left.(*ast.Binary).Op)
}

func TestVarDeclWithAndWithoutInitializer(t *testing.T) {
	prog, sink := parse(t, "var a = 1; var b;")
	require.False(t, sink.HasErrors())
	require.Len(t, prog, 2)

	a := prog[0].(*ast.VarDecl)
	require.Equal(t, "a", a.Name)
	require.NotNil(t, a.Initializer)

	b := prog[1].(*ast.VarDecl)
	require.Equal(t, "b", b.Name)
	require.Nil(t, b.Initializer)
}

func TestIfElseChain(t *testing.T) {
	prog, sink := parse(t, `
		if (1 < 2) {
			print 1;
		} else {
			print 2;
		}
	`)
	require.False(t, sink.HasErrors())
	stmt := prog[0].(*ast.If)
	require.NotNil(t, stmt.Then)
	require.NotNil(t, stmt.Else)
}

func TestWhileLoopWithBreakAndContinue(t *testing.T) {
	prog, sink := parse(t, `
		while (true) {
			if (1 < 2) { break; }
			continue;
		}
	`)
	require.False(t, sink.HasErrors())
	loop := prog[0].(*ast.While)
	block := loop.Body.(*ast.Block)
	require.Len(t, block.Stmts, 2)
	require.IsType(t, &ast.If{}, block.Stmts[0])
	require.IsType(t, &ast.Continue{}, block.Stmts[1])
}

func TestForLoopAllClauses(t *testing.T) {
	prog, sink := parse(t, "for (var i = 0; i < 10; i = i + 1) { print i; }")
	require.False(t, sink.HasErrors())
	loop := prog[0].(*ast.For)
	require.NotNil(t, loop.Init)
	require.NotNil(t, loop.Cond)
	require.NotNil(t, loop.Step)
}

func TestAssignmentExpression(t *testing.T) {
	prog, sink := parse(t, "var a = 1; a = 2;")
	require.False(t, sink.HasErrors())
	exprStmt := prog[1].(*ast.ExprStmt)
	assign := exprStmt.Expression.(*ast.Assign)
	require.Equal(t, "a", assign.Name)
}

func TestMissingSemicolonReportsError(t *testing.T) {
	_, sink := parse(t, "print 1")
	require.True(t, sink.HasErrors())
}

func TestUnaryOperators(t *testing.T) {
	prog, sink := parse(t, "print -1; print !true;")
	require.False(t, sink.HasErrors())
	require.Equal(t, ast.OpNeg, prog[0].(*ast.Print).Value.(*ast.Unary).Op)
	require.Equal(t, ast.OpNot, prog[1].(*ast.Print).Value.(*ast.Unary).Op)
}

func TestFunDeclParsed(t *testing.T) {
	prog, sink := parse(t, "fun add(a, b) { return a + b; }")
	require.False(t, sink.HasErrors())
	fn := prog[0].(*ast.FunDecl)
	require.Equal(t, "add", fn.Name)
	require.Len(t, fn.Params, 2)
	require.Len(t, fn.Body, 1)
}

func TestGroupingParsedAndAffectsPrecedence(t *testing.T) {
	prog, sink := parse(t, "print (1 + 2) * 3;")
	require.False(t, sink.HasErrors())
	bin := prog[0].(*ast.Print).Value.(*ast.Binary)
	require.Equal(t, ast.OpMul, bin.Op)
	require.IsType(t, &ast.Grouping{}, bin.Left)
}

func TestExprStmtSpanStartsAtFirstToken(t *testing.T) {
	prog, sink := parse(t, "1 + 2;")
	require.False(t, sink.HasErrors())
	sp := prog[0].Span()
	require.EqualValues(t, 0, sp.Start)
	require.EqualValues(t, 1, sp.Line)
	require.EqualValues(t, 1, sp.Column)
}
