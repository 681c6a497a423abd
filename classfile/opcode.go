// Package classfile implements the bytecode emitter and the bit-exact
// reader/writer for the .ykb file format described in spec.md §4.4-§4.5
// and §6. Instruction encoding follows the same shape the teacher's
// compiler.MakeInstruction used - an opcode byte followed by big-endian
// fixed-width operands - generalized here to the full fixed 36-opcode
// table instead of the single OP_CONSTANT the teacher implemented.
package classfile

import "fmt"

// Opcode is one instruction in the fixed table of spec.md §4.4. The
// numeric values are normative; implementations must not renumber them.
type Opcode byte

const (
	OpNop     Opcode = 0x00
	OpHalt    Opcode = 0x01
	OpAdd     Opcode = 0x02
	OpSub     Opcode = 0x03
	OpMult    Opcode = 0x04
	OpDiv     Opcode = 0x05
	OpPrint   Opcode = 0x06
	OpIfEq    Opcode = 0x07
	OpIfEqz   Opcode = 0x08
	OpIfNe    Opcode = 0x09
	OpIfNez   Opcode = 0x0A
	OpIfLt    Opcode = 0x0B
	OpIfLtz   Opcode = 0x0C
	OpIfLe    Opcode = 0x0D
	OpIfLez   Opcode = 0x0E
	OpIfGt    Opcode = 0x0F
	OpIfGtz   Opcode = 0x10
	OpIfGe    Opcode = 0x11
	OpIfGez   Opcode = 0x12
	OpLdc     Opcode = 0x13
	OpBpush0  Opcode = 0x14
	OpBpush1  Opcode = 0x15
	OpStore   Opcode = 0x16
	OpStore0  Opcode = 0x17
	OpStore1  Opcode = 0x18
	OpStore2  Opcode = 0x19
	OpStore3  Opcode = 0x1A
	OpLoad    Opcode = 0x1B
	OpLoad0   Opcode = 0x1C
	OpLoad1   Opcode = 0x1D
	OpLoad2   Opcode = 0x1E
	OpLoad3   Opcode = 0x1F
	OpIfTruthy Opcode = 0x20
	OpIfFalsy  Opcode = 0x21
	OpJmp      Opcode = 0x22
	OpPop      Opcode = 0x23
)

// Def describes one opcode's mnemonic and the byte width of each of its
// operands, in order. Every operand in this table is a single u2.
type Def struct {
	Name          string
	OperandWidths []int
}

var defs = map[Opcode]*Def{
	OpNop:      {"nop", nil},
	OpHalt:     {"halt", nil},
	OpAdd:      {"add", nil},
	OpSub:      {"sub", nil},
	OpMult:     {"mult", nil},
	OpDiv:      {"div", nil},
	OpPrint:    {"print", nil},
	OpIfEq:     {"ifeq", []int{2}},
	OpIfEqz:    {"ifeqz", []int{2}},
	OpIfNe:     {"ifne", []int{2}},
	OpIfNez:    {"ifnez", []int{2}},
	OpIfLt:     {"iflt", []int{2}},
	OpIfLtz:    {"ifltz", []int{2}},
	OpIfLe:     {"ifle", []int{2}},
	OpIfLez:    {"iflez", []int{2}},
	OpIfGt:     {"ifgt", []int{2}},
	OpIfGtz:    {"ifgtz", []int{2}},
	OpIfGe:     {"ifge", []int{2}},
	OpIfGez:    {"ifgez", []int{2}},
	OpLdc:      {"ldc", []int{2}},
	OpBpush0:   {"bpush_0", nil},
	OpBpush1:   {"bpush_1", nil},
	OpStore:    {"store", []int{2}},
	OpStore0:   {"store_0", nil},
	OpStore1:   {"store_1", nil},
	OpStore2:   {"store_2", nil},
	OpStore3:   {"store_3", nil},
	OpLoad:     {"load", []int{2}},
	OpLoad0:    {"load_0", nil},
	OpLoad1:    {"load_1", nil},
	OpLoad2:    {"load_2", nil},
	OpLoad3:    {"load_3", nil},
	OpIfTruthy: {"iftruthy", []int{2}},
	OpIfFalsy:  {"iffalsy", []int{2}},
	OpJmp:      {"jmp", []int{2}},
	OpPop:      {"pop", nil},
}

func Lookup(op Opcode) (*Def, error) {
	d, ok := defs[op]
	if !ok {
		return nil, fmt.Errorf("classfile: opcode 0x%02X undefined", byte(op))
	}
	return d, nil
}

// Width reports the total instruction length (opcode byte + operands) for
// op, or 0 if op is unknown.
func Width(op Opcode) int {
	d, ok := defs[op]
	if !ok {
		return 0
	}
	n := 1
	for _, w := range d.OperandWidths {
		n += w
	}
	return n
}
