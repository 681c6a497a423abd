package classfile

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"yuk/ast"
	"yuk/attrib"
	"yuk/token"
)

func TestDisassembleRendersLdcAndHalt(t *testing.T) {
	lit := &ast.Literal{Value: 3.5, Sp: token.Span{}}
	prog := []ast.Stmt{&ast.Print{Value: lit}}
	info := attrib.CodeInfo{MaxStack: 1, MaxLocals: 0}

	program := Emit(prog, info)
	file := Assemble(program, "")

	var buf bytes.Buffer
	require.NoError(t, Disassemble(&buf, file))

	out := buf.String()
	require.True(t, strings.Contains(out, "ldc"))
	require.True(t, strings.Contains(out, "Number 3.5"))
	require.True(t, strings.Contains(out, "print"))
	require.True(t, strings.Contains(out, "halt"))
}

func TestDisassembleReportsMissingCodeAttribute(t *testing.T) {
	file := &File{Pool: NewPool()}
	err := Disassemble(&bytes.Buffer{}, file)
	require.Error(t, err)
}
