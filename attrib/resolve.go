// Package attrib implements the three attribution passes described in
// spec.md §4.3: name resolution, constant folding, and the stack-depth /
// locals analysis that produces each Code attribute's max_stack and
// max_locals. Each pass walks the AST the resolver's own way - a plain
// tree walker dispatching on the ast visitor interfaces, mirroring how
// mna-nenuphar's resolver walks a parsed chunk before handing it to the
// compiler.
package attrib

import (
	"yuk/ast"
	"yuk/diag"
	"yuk/token"
)

// scope is one lexical block within a frame. Declaring a name in a scope
// that already binds it is a DuplicateBinding error; looking a name up
// searches this scope and then its parents, stopping at the frame
// boundary (there are no closures - see spec.md Non-goals).
type scope struct {
	parent   *scope
	bindings map[string]int
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, bindings: make(map[string]int)}
}

// frame is the flat local-variable space of one function (or the
// top-level program, which is treated as an implicit function with no
// parameters). Slot indices are assigned once, monotonically, and never
// reused when a block scope ends - only the max index reached matters for
// max_locals.
type frame struct {
	next    int
	current *scope
}

func newFrame() *frame {
	f := &frame{}
	f.current = newScope(nil)
	return f
}

func (f *frame) push() { f.current = newScope(f.current) }
func (f *frame) pop()  { f.current = f.current.parent }

// declare binds name to the next free slot in the frame. It reports
// DuplicateBinding if name is already bound in the current (innermost)
// scope - shadowing a name from an enclosing scope is fine.
func (f *frame) declare(sink *diag.Sink, span token.Span, name string) int {
	if _, ok := f.current.bindings[name]; ok {
		sink.Errorf(span, "duplicate binding: '%s' is already declared in this scope", name)
		return -1
	}
	slot := f.next
	f.next++
	f.current.bindings[name] = slot
	return slot
}

func (f *frame) resolve(name string) (int, bool) {
	for s := f.current; s != nil; s = s.parent {
		if slot, ok := s.bindings[name]; ok {
			return slot, true
		}
	}
	return 0, false
}

type loopInfo struct {
	id    int
	label string
}

// resolver carries the state threaded through the name-resolution walk:
// the frame being built, the stack of enclosing loops (for break/continue
// and label lookup), and the next loop id to hand out.
type resolver struct {
	sink     *diag.Sink
	frame    *frame
	loops    []loopInfo
	nextLoop int
}

// ResolveProgram performs name resolution over the top-level program. It
// returns the program's frame so the caller (the stack-depth pass, and
// eventually the emitter) knows how many locals the top-level Code region
// needs.
func ResolveProgram(prog []ast.Stmt, sink *diag.Sink) *frame {
	r := &resolver{sink: sink, frame: newFrame()}
	for _, s := range prog {
		r.stmt(s)
	}
	return r.frame
}

func (r *resolver) stmt(s ast.Stmt) {
	s.Accept(r)
}

func (r *resolver) expr(e ast.Expr) {
	e.Accept(r)
}

// --- ast.StmtVisitor ---

func (r *resolver) VisitFunDecl(n *ast.FunDecl) any {
	// Function bodies get their own frame: parameters and locals declared
	// inside a function never share slot numbers with the top-level
	// program, since (per spec.md Non-goals) there are no closures to
	// capture an outer frame's locals anyway. The opcode table has no call
	// instruction, so a function's body is resolved (for diagnostics) but
	// never reaches the emitter - see DESIGN.md.
	saved := r.frame
	r.frame = newFrame()
	for _, p := range n.Params {
		r.frame.declare(r.sink, p.Sp, p.Name)
	}
	for _, s := range n.Body {
		r.stmt(s)
	}
	r.frame = saved
	return nil
}

func (r *resolver) VisitVarDecl(n *ast.VarDecl) any {
	if n.Initializer != nil {
		r.expr(n.Initializer)
	}
	n.Slot = r.frame.declare(r.sink, n.Sp, n.Name)
	return nil
}

func (r *resolver) VisitPrint(n *ast.Print) any {
	r.expr(n.Value)
	return nil
}

func (r *resolver) VisitReturn(n *ast.Return) any {
	if n.Value != nil {
		r.expr(n.Value)
	}
	return nil
}

func (r *resolver) VisitIf(n *ast.If) any {
	r.expr(n.Cond)
	r.stmt(n.Then)
	if n.Else != nil {
		r.stmt(n.Else)
	}
	return nil
}

func (r *resolver) pushLoop(span token.Span, label string) int {
	if label != "" {
		for _, l := range r.loops {
			if l.label == label {
				r.sink.Errorf(span, "label '%s' is already visible in an enclosing loop", label)
				break
			}
		}
	}
	id := r.nextLoop
	r.nextLoop++
	r.loops = append(r.loops, loopInfo{id: id, label: label})
	return id
}

func (r *resolver) popLoop() {
	r.loops = r.loops[:len(r.loops)-1]
}

func (r *resolver) VisitWhile(n *ast.While) any {
	n.LoopID = r.pushLoop(n.Sp, n.Label)
	r.expr(n.Cond)
	r.stmt(n.Body)
	r.popLoop()
	return nil
}

func (r *resolver) VisitFor(n *ast.For) any {
	r.frame.push()
	n.LoopID = r.pushLoop(n.Sp, n.Label)
	if n.Init != nil {
		r.stmt(n.Init)
	}
	if n.Cond != nil {
		r.expr(n.Cond)
	}
	r.stmt(n.Body)
	if n.Step != nil {
		r.expr(n.Step)
	}
	r.popLoop()
	r.frame.pop()
	return nil
}

func (r *resolver) VisitBlock(n *ast.Block) any {
	r.frame.push()
	for _, s := range n.Stmts {
		r.stmt(s)
	}
	r.frame.pop()
	return nil
}

func (r *resolver) resolveLoopTarget(span token.Span, label, kind string) int {
	if label == "" {
		if len(r.loops) == 0 {
			r.sink.Errorf(span, "%s outside of a loop", kind)
			return -1
		}
		return r.loops[len(r.loops)-1].id
	}
	for i := len(r.loops) - 1; i >= 0; i-- {
		if r.loops[i].label == label {
			return r.loops[i].id
		}
	}
	r.sink.Errorf(span, "%s references undefined label '%s'", kind, label)
	return -1
}

func (r *resolver) VisitBreak(n *ast.Break) any {
	n.LoopID = r.resolveLoopTarget(n.Sp, n.Label, "break")
	return nil
}

func (r *resolver) VisitContinue(n *ast.Continue) any {
	n.LoopID = r.resolveLoopTarget(n.Sp, n.Label, "continue")
	return nil
}

func (r *resolver) VisitExprStmt(n *ast.ExprStmt) any {
	r.expr(n.Expression)
	return nil
}

// --- ast.ExprVisitor ---

func (r *resolver) VisitLiteral(n *ast.Literal) any { return nil }

func (r *resolver) VisitIdentifier(n *ast.Identifier) any {
	slot, ok := r.frame.resolve(n.Name)
	if !ok {
		r.sink.Errorf(n.Sp, "undefined identifier '%s'", n.Name)
		n.Slot = -1
		return nil
	}
	n.Slot = slot
	return nil
}

func (r *resolver) VisitUnary(n *ast.Unary) any {
	r.expr(n.Operand)
	return nil
}

func (r *resolver) VisitBinary(n *ast.Binary) any {
	r.expr(n.Left)
	r.expr(n.Right)
	return nil
}

func (r *resolver) VisitAssign(n *ast.Assign) any {
	r.expr(n.Value)
	slot, ok := r.frame.resolve(n.Name)
	if !ok {
		r.sink.Errorf(n.Sp, "undefined identifier '%s'", n.Name)
		n.Slot = -1
		return nil
	}
	n.Slot = slot
	return nil
}

func (r *resolver) VisitGrouping(n *ast.Grouping) any {
	r.expr(n.Inner)
	return nil
}
