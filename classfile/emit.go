package classfile

import (
	"encoding/binary"
	"fmt"
	"math"

	"yuk/ast"
	"yuk/attrib"
)

// Attribute is one (name_index, payload) pair as described in spec.md §6.
type Attribute struct {
	NameIndex uint16
	Payload   []byte
}

// CodeAttribute carries the decoded form of a Code attribute's payload;
// EncodePayload/DecodeCodeAttribute convert it to and from the raw bytes
// an Attribute stores.
type CodeAttribute struct {
	MaxStack  uint16
	MaxLocals uint16
	Code      []byte
}

func (c CodeAttribute) EncodePayload() []byte {
	buf := make([]byte, 2+2+4+len(c.Code))
	binary.BigEndian.PutUint16(buf[0:2], c.MaxStack)
	binary.BigEndian.PutUint16(buf[2:4], c.MaxLocals)
	binary.BigEndian.PutUint32(buf[4:8], uint32(len(c.Code)))
	copy(buf[8:], c.Code)
	return buf
}

// Program is the emitter's output before it is laid out as a File: the
// constant pool and the raw Code bytes for the top-level program, plus
// the stack/locals budget attribution computed for it.
type Program struct {
	Pool *Pool
	Code CodeAttribute
}

// loopFrame is the set of pending jump patches for one open loop, keyed
// by the loop id attribution assigned. break targets the address just
// past the loop's exit; continue targets either the condition re-test
// (while) or the step code (for) - both are resolved as soon as that
// address is known, which for continue is before the loop finishes.
type loopFrame struct {
	breakPatches    []int
	continuePatches []int
}

// emitter walks an attributed statement list and appends bytecode to
// code, interning literals into pool as it goes. Mirrors the teacher's
// MakeInstruction in spirit: opcode byte first, then big-endian operand
// words, except generalized over the full 36-opcode table.
type emitter struct {
	pool  *Pool
	code  []byte
	loops map[int]*loopFrame

	// nullSlot is a local index reserved to hold the VM's default Null
	// value, used to materialize a `nil` literal anywhere one appears in
	// an expression. The opcode table has no dedicated "push null"
	// instruction (only bpush_0/bpush_1 for booleans and ldc for
	// pool-backed values), so nil is produced the same way any other
	// never-initialized local already is at VM startup: a load of a slot
	// this emitter guarantees is never stored to. The slot sits one past
	// every slot attribution assigned, and is only counted into the
	// Code attribute's max_locals if a nil literal actually appears.
	nullSlot     int
	nullSlotUsed bool
}

// Emit translates an attributed top-level program into a Program ready
// for file assembly. info is the CodeInfo the stack-depth pass computed
// for this same statement list.
func Emit(prog []ast.Stmt, info attrib.CodeInfo) *Program {
	e := &emitter{
		pool:     NewPool(),
		loops:    make(map[int]*loopFrame),
		nullSlot: int(info.MaxLocals),
	}
	for _, s := range prog {
		e.stmt(s)
	}
	e.emit0(OpHalt)
	maxLocals := info.MaxLocals
	if e.nullSlotUsed {
		maxLocals++
	}
	return &Program{
		Pool: e.pool,
		Code: CodeAttribute{
			MaxStack:  uint16(info.MaxStack),
			MaxLocals: maxLocals,
			Code:      e.code,
		},
	}
}

func (e *emitter) here() int { return len(e.code) }

func (e *emitter) emit0(op Opcode) {
	e.code = append(e.code, byte(op))
}

func (e *emitter) emitU16(op Opcode, operand uint16) {
	e.code = append(e.code, byte(op), byte(operand>>8), byte(operand))
}

// emitJump appends op with a zero placeholder offset and returns the
// byte position of the operand, for later patching with patchJump.
func (e *emitter) emitJump(op Opcode) int {
	e.code = append(e.code, byte(op), 0, 0)
	return len(e.code) - 2
}

// patchJump overwrites the placeholder at operandPos with the signed
// 16-bit delta from the instruction following the jump to target.
func (e *emitter) patchJump(operandPos, target int) {
	delta := target - (operandPos + 2)
	if delta < math.MinInt16 || delta > math.MaxInt16 {
		panic(fmt.Sprintf("classfile: jump delta %d exceeds signed 16-bit range", delta))
	}
	binary.BigEndian.PutUint16(e.code[operandPos:operandPos+2], uint16(int16(delta)))
}

// --- statements ---

func (e *emitter) stmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.FunDecl:
		// Never emitted: no CALL opcode exists in the fixed table (see
		// DESIGN.md). Resolution/folding still visit it for diagnostics.
	case *ast.VarDecl:
		e.varDecl(n)
	case *ast.Print:
		e.expr(n.Value)
		e.emit0(OpPrint)
	case *ast.Return:
		if n.Value != nil {
			e.expr(n.Value)
			e.emit0(OpPop)
		}
	case *ast.If:
		e.ifStmt(n)
	case *ast.While:
		e.whileStmt(n)
	case *ast.For:
		e.forStmt(n)
	case *ast.Block:
		for _, st := range n.Stmts {
			e.stmt(st)
		}
	case *ast.Break:
		e.breakOrContinue(n.LoopID, true)
	case *ast.Continue:
		e.breakOrContinue(n.LoopID, false)
	case *ast.ExprStmt:
		e.expr(n.Expression)
		e.emit0(OpPop)
	default:
		panic(fmt.Sprintf("classfile: unhandled statement %T", n))
	}
}

func (e *emitter) varDecl(n *ast.VarDecl) {
	if n.Initializer == nil {
		// The VM initializes every local to Null before the first
		// instruction runs (spec.md §4.6), so an omitted initializer
		// needs no bytecode at all - the slot already holds the right
		// value.
		return
	}
	e.expr(n.Initializer)
	e.storeSlot(n.Slot)
}

func (e *emitter) storeSlot(slot int) {
	switch slot {
	case 0:
		e.emit0(OpStore0)
	case 1:
		e.emit0(OpStore1)
	case 2:
		e.emit0(OpStore2)
	case 3:
		e.emit0(OpStore3)
	default:
		e.emitU16(OpStore, uint16(slot))
	}
}

func (e *emitter) loadSlot(slot int) {
	switch slot {
	case 0:
		e.emit0(OpLoad0)
	case 1:
		e.emit0(OpLoad1)
	case 2:
		e.emit0(OpLoad2)
	case 3:
		e.emit0(OpLoad3)
	default:
		e.emitU16(OpLoad, uint16(slot))
	}
}

func (e *emitter) ifStmt(n *ast.If) {
	e.expr(n.Cond)
	elseJump := e.emitJump(OpIfFalsy)
	e.emit0(OpPop)
	e.stmt(n.Then)
	if n.Else == nil {
		skipJump := e.emitJump(OpJmp)
		e.patchJump(elseJump, e.here())
		e.emit0(OpPop)
		e.patchJump(skipJump, e.here())
		return
	}
	endJump := e.emitJump(OpJmp)
	e.patchJump(elseJump, e.here())
	e.emit0(OpPop)
	e.stmt(n.Else)
	e.patchJump(endJump, e.here())
}

func (e *emitter) whileStmt(n *ast.While) {
	frame := &loopFrame{}
	e.loops[n.LoopID] = frame

	condStart := e.here()
	e.expr(n.Cond)
	exitJump := e.emitJump(OpIfFalsy)
	e.emit0(OpPop)
	e.stmt(n.Body)
	// continue re-enters at the condition: patch any continue jumps
	// recorded against this loop id now that condStart is fixed.
	e.patchContinues(n.LoopID, condStart)
	e.emitJump(OpJmp)
	e.patchJump(e.here()-2, condStart)
	e.patchJump(exitJump, e.here())
	e.emit0(OpPop)

	for _, pos := range frame.breakPatches {
		e.patchJump(pos, e.here())
	}
	delete(e.loops, n.LoopID)
}

func (e *emitter) forStmt(n *ast.For) {
	frame := &loopFrame{}
	e.loops[n.LoopID] = frame

	if n.Init != nil {
		e.stmt(n.Init)
	}

	condStart := e.here()
	var exitJump int
	hasCond := n.Cond != nil
	if hasCond {
		e.expr(n.Cond)
		exitJump = e.emitJump(OpIfFalsy)
		e.emit0(OpPop)
	}

	e.stmt(n.Body)

	stepStart := e.here()
	e.patchContinues(n.LoopID, stepStart)
	if n.Step != nil {
		e.expr(n.Step)
		e.emit0(OpPop)
	}
	e.emitJump(OpJmp)
	e.patchJump(e.here()-2, condStart)

	if hasCond {
		e.patchJump(exitJump, e.here())
		e.emit0(OpPop)
	}

	for _, pos := range frame.breakPatches {
		e.patchJump(pos, e.here())
	}
	delete(e.loops, n.LoopID)
}

// patchContinues resolves every continue recorded against loopID so far
// to target, then clears the list (a loop id is only ever patched once,
// since every continue for a given loop shares the same target).
func (e *emitter) patchContinues(loopID, target int) {
	frame := e.loops[loopID]
	for _, pos := range frame.continuePatches {
		e.patchJump(pos, target)
	}
	frame.continuePatches = nil
}

func (e *emitter) breakOrContinue(loopID int, isBreak bool) {
	if loopID < 0 {
		// Unresolved by attribution (diagnostic already reported); emit a
		// harmless nop so code generation for the rest of the program can
		// continue.
		e.emit0(OpNop)
		return
	}
	frame := e.loops[loopID]
	pos := e.emitJump(OpJmp)
	if isBreak {
		frame.breakPatches = append(frame.breakPatches, pos)
	} else {
		frame.continuePatches = append(frame.continuePatches, pos)
	}
}

// --- expressions ---

func (e *emitter) expr(x ast.Expr) {
	if v, ok := x.Folded(); ok {
		if _, isLit := x.(*ast.Literal); !isLit {
			e.pushValue(v)
			return
		}
	}
	switch n := x.(type) {
	case *ast.Literal:
		e.pushValue(n.Value)
	case *ast.Identifier:
		e.loadSlot(n.Slot)
	case *ast.Unary:
		e.unary(n)
	case *ast.Binary:
		e.binary(n)
	case *ast.Assign:
		e.expr(n.Value)
		e.storeSlot(n.Slot)
		e.loadSlot(n.Slot)
	case *ast.Grouping:
		e.expr(n.Inner)
	default:
		panic(fmt.Sprintf("classfile: unhandled expression %T", n))
	}
}

func (e *emitter) pushValue(v any) {
	switch vv := v.(type) {
	case float64:
		idx := e.pool.Number(vv)
		e.emitU16(OpLdc, idx)
	case string:
		idx := e.pool.String(vv)
		e.emitU16(OpLdc, idx)
	case bool:
		if vv {
			e.emit0(OpBpush1)
		} else {
			e.emit0(OpBpush0)
		}
	case nil:
		e.nullSlotUsed = true
		e.loadSlot(e.nullSlot)
	default:
		panic(fmt.Sprintf("classfile: unrepresentable constant value %#v", v))
	}
}

func (e *emitter) unary(n *ast.Unary) {
	switch n.Op {
	case ast.OpNeg:
		e.pushValue(float64(0))
		e.expr(n.Operand)
		e.emit0(OpSub)
	case ast.OpNot:
		e.expr(n.Operand)
		notFalse := e.emitJump(OpIfTruthy)
		e.emit0(OpPop)
		e.emit0(OpBpush1)
		end := e.emitJump(OpJmp)
		e.patchJump(notFalse, e.here())
		e.emit0(OpPop)
		e.emit0(OpBpush0)
		e.patchJump(end, e.here())
	}
}

func (e *emitter) binary(n *ast.Binary) {
	switch n.Op {
	case ast.OpAnd:
		e.expr(n.Left)
		skip := e.emitJump(OpIfFalsy)
		e.emit0(OpPop)
		e.expr(n.Right)
		e.patchJump(skip, e.here())
		return
	case ast.OpOr:
		e.expr(n.Left)
		skip := e.emitJump(OpIfTruthy)
		e.emit0(OpPop)
		e.expr(n.Right)
		e.patchJump(skip, e.here())
		return
	}

	e.expr(n.Left)
	e.expr(n.Right)
	switch n.Op {
	case ast.OpAdd:
		e.emit0(OpAdd)
	case ast.OpSub:
		e.emit0(OpSub)
	case ast.OpMul:
		e.emit0(OpMult)
	case ast.OpDiv:
		e.emit0(OpDiv)
	case ast.OpEq:
		e.compare(OpIfEq)
	case ast.OpNe:
		e.compare(OpIfNe)
	case ast.OpLt:
		e.compare(OpIfLt)
	case ast.OpLe:
		e.compare(OpIfLe)
	case ast.OpGt:
		e.compare(OpIfGt)
	case ast.OpGe:
		e.compare(OpIfGe)
	default:
		panic(fmt.Sprintf("classfile: unhandled binary operator %q", n.Op))
	}
}

// compare emits one of the two-operand if<cmp> opcodes as a pure boolean
// expression: the comparison's optional jump operand is given offset 0
// (a jump to the instruction immediately following), so the opcode's
// only observable effect here is the boolean it pushes. Control flow
// built from comparisons (If/While/For conditions) does not use the
// comparison's own jump - it branches with iftruthy/iffalsy on the
// boolean this leaves behind.
func (e *emitter) compare(op Opcode) {
	e.emitU16(op, 0)
}
