package classfile

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpcodeValuesAreBitExact(t *testing.T) {
	want := map[Opcode]byte{
		OpNop: 0x00, OpHalt: 0x01, OpAdd: 0x02, OpSub: 0x03, OpMult: 0x04,
		OpDiv: 0x05, OpPrint: 0x06, OpIfEq: 0x07, OpIfEqz: 0x08, OpIfNe: 0x09,
		OpIfNez: 0x0A, OpIfLt: 0x0B, OpIfLtz: 0x0C, OpIfLe: 0x0D, OpIfLez: 0x0E,
		OpIfGt: 0x0F, OpIfGtz: 0x10, OpIfGe: 0x11, OpIfGez: 0x12, OpLdc: 0x13,
		OpBpush0: 0x14, OpBpush1: 0x15, OpStore: 0x16, OpStore0: 0x17,
		OpStore1: 0x18, OpStore2: 0x19, OpStore3: 0x1A, OpLoad: 0x1B,
		OpLoad0: 0x1C, OpLoad1: 0x1D, OpLoad2: 0x1E, OpLoad3: 0x1F,
		OpIfTruthy: 0x20, OpIfFalsy: 0x21, OpJmp: 0x22, OpPop: 0x23,
	}
	require.Len(t, want, 36)
	for op, b := range want {
		require.Equal(t, b, byte(op))
	}
}

func TestWidthIncludesOperandBytes(t *testing.T) {
	require.Equal(t, 1, Width(OpHalt))
	require.Equal(t, 1, Width(OpAdd))
	require.Equal(t, 3, Width(OpLdc))
	require.Equal(t, 3, Width(OpJmp))
	require.Equal(t, 1, Width(OpStore0))
}

func TestLookupUnknownOpcodeErrors(t *testing.T) {
	_, err := Lookup(Opcode(0xFF))
	require.Error(t, err)
}

func TestLookupKnownOpcode(t *testing.T) {
	def, err := Lookup(OpLdc)
	require.NoError(t, err)
	require.Equal(t, "ldc", def.Name)
	require.Equal(t, []int{2}, def.OperandWidths)
}
