package attrib

import (
	"testing"

	"github.com/stretchr/testify/require"

	"yuk/ast"
	"yuk/diag"
	"yuk/lexer"
	"yuk/parser"
)

func parseProgram(t *testing.T, src string) ([]ast.Stmt, *diag.Sink) {
	t.Helper()
	sink := diag.NewSink("<test>")
	toks := lexer.New("<test>", src, sink).Tokens()
	prog := parser.New(toks, sink).Parse()
	return prog, sink
}

func TestResolveAssignsMonotonicSlots(t *testing.T) {
	prog, sink := parseProgram(t, "var a = 1; var b = 2; { var c = 3; }")
	require.False(t, sink.HasErrors())
	top := ResolveProgram(prog, sink)
	require.False(t, sink.HasErrors())
	require.Equal(t, 3, top.next)

	a := prog[0].(*ast.VarDecl)
	b := prog[1].(*ast.VarDecl)
	require.Equal(t, 0, a.Slot)
	require.Equal(t, 1, b.Slot)
}

func TestResolveDuplicateBindingInSameScopeErrors(t *testing.T) {
	prog, sink := parseProgram(t, "var a = 1; var a = 2;")
	require.False(t, sink.HasErrors())
	ResolveProgram(prog, sink)
	require.True(t, sink.HasErrors())
}

func TestResolveShadowingInNestedScopeIsFine(t *testing.T) {
	prog, sink := parseProgram(t, "var a = 1; { var a = 2; }")
	require.False(t, sink.HasErrors())
	ResolveProgram(prog, sink)
	require.False(t, sink.HasErrors())
}

func TestResolveUndefinedIdentifierErrors(t *testing.T) {
	prog, sink := parseProgram(t, "print missing;")
	require.False(t, sink.HasErrors())
	ResolveProgram(prog, sink)
	require.True(t, sink.HasErrors())
}

func TestResolveBreakOutsideLoopErrors(t *testing.T) {
	prog, sink := parseProgram(t, "break;")
	require.False(t, sink.HasErrors())
	ResolveProgram(prog, sink)
	require.True(t, sink.HasErrors())
}

func TestFoldArithmeticConstantFolds(t *testing.T) {
	prog, sink := parseProgram(t, "print 1 + 2 * 3;")
	ResolveProgram(prog, sink)
	Fold(prog, FoldOpts{Enabled: true}, sink)

	printStmt := prog[0].(*ast.Print)
	v, ok := printStmt.Value.Folded()
	require.True(t, ok)
	require.Equal(t, 7.0, v)
}

func TestFoldDivisionByZeroNeverFolds(t *testing.T) {
	prog, sink := parseProgram(t, "print 1 / 0;")
	ResolveProgram(prog, sink)
	Fold(prog, FoldOpts{Enabled: true}, sink)

	printStmt := prog[0].(*ast.Print)
	_, ok := printStmt.Value.Folded()
	require.False(t, ok)
}

func TestFoldAndShortCircuitsOnFalseLeft(t *testing.T) {
	prog, sink := parseProgram(t, "print false and sideEffect;")
	ResolveProgram(prog, sink)
	// sideEffect is never declared; fold must still succeed on the left
	// operand alone without resolving the right side's identifier.
	Fold(prog, FoldOpts{Enabled: true}, sink)

	printStmt := prog[0].(*ast.Print)
	v, ok := printStmt.Value.Folded()
	require.True(t, ok)
	require.Equal(t, false, v)
}

func TestFoldDisabledLeavesNodesUnfolded(t *testing.T) {
	prog, sink := parseProgram(t, "print 1 + 2;")
	ResolveProgram(prog, sink)
	Fold(prog, FoldOpts{Enabled: false}, sink)

	printStmt := prog[0].(*ast.Print)
	_, ok := printStmt.Value.Folded()
	require.False(t, ok)
}

func TestFoldStringConcatenation(t *testing.T) {
	prog, sink := parseProgram(t, `print "a" + "b";`)
	ResolveProgram(prog, sink)
	Fold(prog, FoldOpts{Enabled: true}, sink)

	printStmt := prog[0].(*ast.Print)
	v, ok := printStmt.Value.Folded()
	require.True(t, ok)
	require.Equal(t, "ab", v)
}

func TestAnalyzeStackResetsBetweenStatements(t *testing.T) {
	prog, sink := parseProgram(t, "print 1 + 2 + 3; print 4;")
	ResolveProgram(prog, sink)
	info := AnalyzeProgram(prog, 0)
	require.GreaterOrEqual(t, info.MaxStack, int32(1))
}

func TestAnalyzeLocalsAccountsForNestedBlocks(t *testing.T) {
	prog, sink := parseProgram(t, "var a = 1; { var b = 2; var c = 3; }")
	top := ResolveProgram(prog, sink)
	info := AnalyzeProgram(prog, top.next)
	require.Equal(t, int32(3), info.MaxLocals)
}

func TestRunAppliesAllThreePasses(t *testing.T) {
	prog, sink := parseProgram(t, "var a = 1 + 2; print a;")
	result := Run(prog, Options{Fold: FoldOpts{Enabled: true}}, sink)
	require.False(t, sink.HasErrors())

	a := prog[0].(*ast.VarDecl)
	v, ok := a.Initializer.Folded()
	require.True(t, ok)
	require.Equal(t, 3.0, v)
	require.GreaterOrEqual(t, result.Top.MaxLocals, int32(1))
}
