package attrib

import "yuk/ast"

// CodeInfo is the per-Code-region output of the stack-depth / locals
// analysis pass: the third of the three attribution passes, run after
// name resolution has assigned every local its slot. The emitter copies
// these two numbers straight into the Code attribute's max_stack and
// max_locals fields (spec.md §6.3).
type CodeInfo struct {
	MaxStack  int32
	MaxLocals int32
}

// AnalyzeProgram computes the CodeInfo for the top-level program. locals
// is the slot count already decided by name resolution (frame.next).
func AnalyzeProgram(prog []ast.Stmt, locals int) CodeInfo {
	return CodeInfo{MaxStack: int32(stmtsDepth(prog)), MaxLocals: int32(locals)}
}

// AnalyzeFunc computes the CodeInfo for one function body. Kept separate
// from AnalyzeProgram so a later emitter that does learn to call
// functions (see DESIGN.md - no CALL opcode exists today) has a ready
// per-function entry point instead of a top-level-only analysis.
func AnalyzeFunc(n *ast.FunDecl, locals int) CodeInfo {
	return CodeInfo{MaxStack: int32(stmtsDepth(n.Body)), MaxLocals: int32(locals)}
}

// stmtsDepth is the max operand-stack depth reached executing stmts in
// sequence. Every statement form here leaves the operand stack exactly as
// it found it once it completes (expression statements pop their own
// result, control flow pops its condition), so depth does not accumulate
// across statements - only the deepest single statement matters.
func stmtsDepth(stmts []ast.Stmt) int {
	max := 0
	for _, s := range stmts {
		if d := stmtDepth(s); d > max {
			max = d
		}
	}
	return max
}

func stmtDepth(s ast.Stmt) int {
	switch n := s.(type) {
	case *ast.VarDecl:
		if n.Initializer == nil {
			return 0
		}
		return exprDepth(n.Initializer)
	case *ast.Print:
		return exprDepth(n.Value)
	case *ast.Return:
		if n.Value == nil {
			return 0
		}
		return exprDepth(n.Value)
	case *ast.If:
		// iftruthy/iffalsy peeks the condition without popping it, so the
		// explicit pop that follows still needs the condition's own depth
		// accounted for; the branch bodies run with an empty stack.
		return maxOf(exprDepth(n.Cond), stmtDepth(n.Then), elseDepth(n.Else))
	case *ast.While:
		return maxOf(exprDepth(n.Cond), stmtDepth(n.Body))
	case *ast.For:
		d := 0
		if n.Init != nil {
			d = stmtDepth(n.Init)
		}
		if n.Cond != nil {
			d = maxOf(d, exprDepth(n.Cond))
		}
		d = maxOf(d, stmtDepth(n.Body))
		if n.Step != nil {
			d = maxOf(d, exprDepth(n.Step))
		}
		return d
	case *ast.Block:
		return stmtsDepth(n.Stmts)
	case *ast.Break, *ast.Continue:
		return 0
	case *ast.ExprStmt:
		return exprDepth(n.Expression)
	case *ast.FunDecl:
		// Function bodies are never emitted into the enclosing region (no
		// call opcode exists), so a declaration costs that region no stack.
		return 0
	}
	return 0
}

func elseDepth(s ast.Stmt) int {
	if s == nil {
		return 0
	}
	return stmtDepth(s)
}

func maxOf(vs ...int) int {
	m := 0
	for _, v := range vs {
		if v > m {
			m = v
		}
	}
	return m
}

// exprDepth is the max operand-stack depth needed to evaluate e, assuming
// the stack is empty when evaluation begins. Binary operators evaluate
// left-to-right with the left operand held on the stack while the right
// is computed, so the right subtree's own depth costs one extra slot of
// headroom; this is the standard conservative bound used by stack
// one-pass bytecode compilers and may over-count by a constant for deeply
// unbalanced trees, which is acceptable since max_stack only needs to be
// sufficient, not minimal.
func exprDepth(e ast.Expr) int {
	if _, ok := e.Folded(); ok {
		// The emitter pushes a folded node's value with one instruction.
		return 1
	}
	switch n := e.(type) {
	case *ast.Literal:
		return 1
	case *ast.Identifier:
		return 1
	case *ast.Grouping:
		return exprDepth(n.Inner)
	case *ast.Unary:
		if n.Op == ast.OpNeg {
			// Emitted as `push 0.0; <operand>; sub`: the zero sits under
			// the operand's own evaluation, costing one extra slot.
			return maxOf(1+exprDepth(n.Operand), 1)
		}
		return maxOf(exprDepth(n.Operand), 1)
	case *ast.Binary:
		l := exprDepth(n.Left)
		r := exprDepth(n.Right)
		return maxOf(l, r+1)
	case *ast.Assign:
		// The emitter stores the value and then loads it back from the
		// slot as the expression's result, so the value's own depth is
		// enough; the extra slot counted here is spare headroom.
		return maxOf(exprDepth(n.Value), 1) + 1
	}
	return 1
}
