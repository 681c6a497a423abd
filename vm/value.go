// Package vm implements the stack-based virtual machine that executes a
// loaded classfile.File's top-level Code attribute (spec.md §4.6). Its
// texture follows the teacher's vm package - a small Stack type, a
// dedicated error type, a Run loop fetch-decoding one opcode at a time -
// generalized from the teacher's single-opcode OP_CONSTANT VM to the
// full 36-opcode table.
package vm

import (
	"fmt"
	"math"
	"strconv"
)

// Kind tags a runtime Value's dynamic type.
type Kind byte

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
)

// Value is the tagged union every operand-stack slot and local holds.
// Exactly one of Num/Str/Bool is meaningful, selected by Kind.
type Value struct {
	Kind Kind
	Num  float64
	Str  string
	Bool bool
}

var Null = Value{Kind: KindNull}

func NumberValue(f float64) Value { return Value{Kind: KindNumber, Num: f} }
func StringValue(s string) Value  { return Value{Kind: KindString, Str: s} }
func BoolValue(b bool) Value      { return Value{Kind: KindBool, Bool: b} }

// Truthy reports whether v counts as true for iftruthy/iffalsy: Null and
// Bool(false) are falsy, everything else (including Bool(true), any
// Number, any String) is truthy.
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindNull:
		return false
	case KindBool:
		return v.Bool
	default:
		return true
	}
}

// Equal implements the VM's cross-type equality rule: values of
// different Kind are never equal, never raising a TypeError (spec.md
// §4.6 - "Equality across differing runtime types yields false").
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindNull:
		return true
	case KindBool:
		return v.Bool == o.Bool
	case KindNumber:
		return v.Num == o.Num
	case KindString:
		return v.Str == o.Str
	}
	return false
}

// Print renders v exactly as spec.md §4.6 requires: numbers in shortest
// round-trip decimal (with lowercase inf/-inf/nan for the IEEE-754
// special values, rather than Go's default +Inf/NaN spelling), booleans
// as true/false, strings raw, null as nil.
func (v Value) Print() string {
	switch v.Kind {
	case KindNull:
		return "nil"
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case KindNumber:
		return formatNumber(v.Num)
	case KindString:
		return v.Str
	}
	return fmt.Sprintf("<invalid value kind %d>", v.Kind)
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	default:
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
}

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindBool:
		return "Bool"
	case KindNumber:
		return "Number"
	case KindString:
		return "String"
	}
	return "?"
}
