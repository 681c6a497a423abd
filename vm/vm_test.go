package vm

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"yuk/classfile"
)

func makeFile(t *testing.T, pool *classfile.Pool, code []byte, maxStack, maxLocals uint16) *classfile.File {
	t.Helper()
	program := &classfile.Program{
		Pool: pool,
		Code: classfile.CodeAttribute{MaxStack: maxStack, MaxLocals: maxLocals, Code: code},
	}
	return classfile.Assemble(program, "")
}

func TestRunAddsTwoNumbers(t *testing.T) {
	pool := classfile.NewPool()
	a := pool.Number(2)
	b := pool.Number(3)
	code := []byte{
		byte(classfile.OpLdc), byte(a >> 8), byte(a),
		byte(classfile.OpLdc), byte(b >> 8), byte(b),
		byte(classfile.OpAdd),
		byte(classfile.OpPrint),
		byte(classfile.OpHalt),
	}
	file := makeFile(t, pool, code, 2, 0)

	var out bytes.Buffer
	m, err := New(file, &out)
	require.NoError(t, err)
	require.NoError(t, m.Run())
	require.Equal(t, "5\n", out.String())
}

func TestRunTypeErrorOnStringPlusNumber(t *testing.T) {
	pool := classfile.NewPool()
	s := pool.String("x")
	n := pool.Number(1)
	code := []byte{
		byte(classfile.OpLdc), byte(s >> 8), byte(s),
		byte(classfile.OpLdc), byte(n >> 8), byte(n),
		byte(classfile.OpAdd),
		byte(classfile.OpHalt),
	}
	file := makeFile(t, pool, code, 2, 0)

	m, err := New(file, &bytes.Buffer{})
	require.NoError(t, err)
	runErr := m.Run()
	require.Error(t, runErr)
	var fault *RuntimeFault
	require.ErrorAs(t, runErr, &fault)
	require.Equal(t, FaultTypeError, fault.Kind)
}

func TestRunBadConstantIndexFaults(t *testing.T) {
	pool := classfile.NewPool()
	code := []byte{byte(classfile.OpLdc), 0, 99, byte(classfile.OpHalt)}
	file := makeFile(t, pool, code, 1, 0)

	m, err := New(file, &bytes.Buffer{})
	require.NoError(t, err)
	runErr := m.Run()
	require.Error(t, runErr)
	var fault *RuntimeFault
	require.ErrorAs(t, runErr, &fault)
	require.Equal(t, FaultBadConstantIndex, fault.Kind)
}

func TestRunBadLocalIndexFaults(t *testing.T) {
	pool := classfile.NewPool()
	code := []byte{byte(classfile.OpLoad), 0, 5, byte(classfile.OpHalt)}
	file := makeFile(t, pool, code, 1, 1)

	m, err := New(file, &bytes.Buffer{})
	require.NoError(t, err)
	runErr := m.Run()
	require.Error(t, runErr)
	var fault *RuntimeFault
	require.ErrorAs(t, runErr, &fault)
	require.Equal(t, FaultBadLocalIndex, fault.Kind)
}

func TestRunZeroComparisonOpcodesAreSupported(t *testing.T) {
	// The emitter never produces ifeqz, but the VM must still execute it
	// correctly for a hand-assembled file.
	pool := classfile.NewPool()
	n := pool.Number(0)
	code := []byte{
		byte(classfile.OpLdc), byte(n >> 8), byte(n),
		byte(classfile.OpIfEqz), 0, 0,
		byte(classfile.OpPrint),
		byte(classfile.OpHalt),
	}
	file := makeFile(t, pool, code, 1, 0)

	var out bytes.Buffer
	m, err := New(file, &out)
	require.NoError(t, err)
	require.NoError(t, m.Run())
	require.Equal(t, "true\n", out.String())
}

func TestRunLocalsDefaultToNull(t *testing.T) {
	pool := classfile.NewPool()
	code := []byte{byte(classfile.OpLoad0), byte(classfile.OpPrint), byte(classfile.OpHalt)}
	file := makeFile(t, pool, code, 1, 1)

	var out bytes.Buffer
	m, err := New(file, &out)
	require.NoError(t, err)
	require.NoError(t, m.Run())
	require.Equal(t, "nil\n", out.String())
}

func TestNewErrorsWithoutCodeAttribute(t *testing.T) {
	file := &classfile.File{Pool: classfile.NewPool()}
	_, err := New(file, &bytes.Buffer{})
	require.Error(t, err)
}
