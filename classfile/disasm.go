package classfile

import (
	"fmt"
	"io"
)

// Disassemble writes a human-readable listing of f's Code attribute to
// w: one instruction per line, offset-prefixed, mnemonic, and decoded
// operand (a pool entry is rendered inline for ldc). This is a
// CLI/debugging convenience, not part of the bit-exact file format.
func Disassemble(w io.Writer, f *File) error {
	code, ok := f.CodeAttribute()
	if !ok {
		return fmt.Errorf("classfile: file has no Code attribute")
	}
	fmt.Fprintf(w, "max_stack=%d max_locals=%d code_length=%d\n", code.MaxStack, code.MaxLocals, len(code.Code))

	pc := 0
	for pc < len(code.Code) {
		op := Opcode(code.Code[pc])
		def, err := Lookup(op)
		if err != nil {
			fmt.Fprintf(w, "%04d  <unknown opcode 0x%02X>\n", pc, byte(op))
			pc++
			continue
		}
		width := Width(op)
		line := fmt.Sprintf("%04d  %s", pc, def.Name)
		if len(def.OperandWidths) == 1 && pc+width <= len(code.Code) {
			operand := uint16(code.Code[pc+1])<<8 | uint16(code.Code[pc+2])
			line += fmt.Sprintf(" %d", operand)
			if op == OpLdc {
				if e, ok := f.Pool.Get(operand); ok {
					line += fmt.Sprintf(" // %s", describeEntry(f, e))
				}
			}
		}
		fmt.Fprintln(w, line)
		pc += width
	}
	return nil
}

func describeEntry(f *File, e Entry) string {
	switch e.Tag {
	case TagUtf8:
		return fmt.Sprintf("Utf8 %q", e.Utf8)
	case TagNumber:
		return fmt.Sprintf("Number %v", e.Number)
	case TagString:
		if target, ok := f.Pool.Get(e.StringIndex); ok {
			return fmt.Sprintf("String -> %q", target.Utf8)
		}
		return "String <dangling>"
	}
	return "?"
}
