package attrib

import (
	"yuk/ast"
	"yuk/diag"
)

// FoldOpts toggles the const-folding pass. It is feature-gated under the
// name "const-folding" (spec.md §6), default on.
type FoldOpts struct {
	Enabled bool
}

// Fold runs constant folding bottom-up over every expression reachable
// from prog, mutating Binary/Unary nodes it can fully evaluate into
// Literal-equivalent folded values (recorded in the node's own fold slot,
// not by replacing the node - the emitter asks Folded() first and falls
// back to normal emission otherwise, see classfile/emit.go).
//
// Folding never reorders evaluation: a Binary node is folded only after
// both of its operands have themselves been folded or shown to be
// literals, so any side effect order the unfolded program would have
// exhibited is preserved up to the point folding stops.
func Fold(prog []ast.Stmt, opts FoldOpts, sink *diag.Sink) {
	if !opts.Enabled {
		return
	}
	f := &folder{sink: sink}
	for _, s := range prog {
		s.Accept(f)
	}
}

type folder struct {
	sink *diag.Sink
}

func (f *folder) stmt(s ast.Stmt) { s.Accept(f) }
func (f *folder) expr(e ast.Expr) { e.Accept(f) }

func (f *folder) VisitFunDecl(n *ast.FunDecl) any {
	for _, s := range n.Body {
		f.stmt(s)
	}
	return nil
}

func (f *folder) VisitVarDecl(n *ast.VarDecl) any {
	if n.Initializer != nil {
		f.expr(n.Initializer)
	}
	return nil
}

func (f *folder) VisitPrint(n *ast.Print) any { f.expr(n.Value); return nil }

func (f *folder) VisitReturn(n *ast.Return) any {
	if n.Value != nil {
		f.expr(n.Value)
	}
	return nil
}

func (f *folder) VisitIf(n *ast.If) any {
	f.expr(n.Cond)
	f.stmt(n.Then)
	if n.Else != nil {
		f.stmt(n.Else)
	}
	return nil
}

func (f *folder) VisitWhile(n *ast.While) any {
	f.expr(n.Cond)
	f.stmt(n.Body)
	return nil
}

func (f *folder) VisitFor(n *ast.For) any {
	if n.Init != nil {
		f.stmt(n.Init)
	}
	if n.Cond != nil {
		f.expr(n.Cond)
	}
	f.stmt(n.Body)
	if n.Step != nil {
		f.expr(n.Step)
	}
	return nil
}

func (f *folder) VisitBlock(n *ast.Block) any {
	for _, s := range n.Stmts {
		f.stmt(s)
	}
	return nil
}

func (f *folder) VisitBreak(n *ast.Break) any       { return nil }
func (f *folder) VisitContinue(n *ast.Continue) any { return nil }

func (f *folder) VisitExprStmt(n *ast.ExprStmt) any { f.expr(n.Expression); return nil }

// --- expressions ---

func (f *folder) VisitLiteral(n *ast.Literal) any { return nil }

func (f *folder) VisitIdentifier(n *ast.Identifier) any { return nil }

func (f *folder) VisitGrouping(n *ast.Grouping) any {
	f.expr(n.Inner)
	if v, ok := n.Inner.Folded(); ok {
		n.SetFolded(v)
	}
	return nil
}

func (f *folder) VisitUnary(n *ast.Unary) any {
	f.expr(n.Operand)
	v, ok := n.Operand.Folded()
	if !ok {
		return nil
	}
	switch n.Op {
	case ast.OpNeg:
		if num, ok := v.(float64); ok {
			n.SetFolded(-num)
		}
	case ast.OpNot:
		n.SetFolded(!truthy(v))
	}
	return nil
}

func (f *folder) VisitBinary(n *ast.Binary) any {
	f.expr(n.Left)
	f.expr(n.Right)

	// "and"/"or" short-circuit: if the left operand alone determines the
	// result, fold without even requiring the right side to be constant -
	// this preserves the observable evaluation order (the right side,
	// if it has a side effect, is the one skipped, exactly as runtime
	// short-circuit evaluation would skip it).
	if n.Op == ast.OpAnd || n.Op == ast.OpOr {
		lv, lok := n.Left.Folded()
		if !lok {
			return nil
		}
		if n.Op == ast.OpAnd && !truthy(lv) {
			n.SetFolded(lv)
			return nil
		}
		if n.Op == ast.OpOr && truthy(lv) {
			n.SetFolded(lv)
			return nil
		}
		if rv, rok := n.Right.Folded(); rok {
			n.SetFolded(rv)
		}
		return nil
	}

	lv, lok := n.Left.Folded()
	rv, rok := n.Right.Folded()
	if !lok || !rok {
		return nil
	}

	switch n.Op {
	case ast.OpAdd:
		if ln, ok := lv.(float64); ok {
			if rn, ok := rv.(float64); ok {
				n.SetFolded(ln + rn)
				return nil
			}
		}
		if ls, ok := lv.(string); ok {
			if rs, ok := rv.(string); ok {
				n.SetFolded(ls + rs)
			}
		}
	case ast.OpSub:
		foldNumeric(n, lv, rv, func(a, b float64) float64 { return a - b })
	case ast.OpMul:
		foldNumeric(n, lv, rv, func(a, b float64) float64 { return a * b })
	case ast.OpDiv:
		// Division by zero is never folded (spec.md §4.3): it is left for
		// the VM, which follows IEEE-754 and produces ±Inf or NaN rather
		// than raising an error.
		if rn, ok := rv.(float64); ok && rn == 0 {
			return nil
		}
		foldNumeric(n, lv, rv, func(a, b float64) float64 { return a / b })
	case ast.OpEq:
		n.SetFolded(valuesEqual(lv, rv))
	case ast.OpNe:
		n.SetFolded(!valuesEqual(lv, rv))
	case ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		if ln, ok := lv.(float64); ok {
			if rn, ok := rv.(float64); ok {
				n.SetFolded(compareNumeric(n.Op, ln, rn))
			}
		}
	}
	return nil
}

func (f *folder) VisitAssign(n *ast.Assign) any {
	f.expr(n.Value)
	// An assignment's own value is never folded to a constant at its use
	// site: the VM must still execute the store so the local's slot is
	// updated, which Identifier references elsewhere depend on.
	return nil
}

func foldNumeric(n *ast.Binary, lv, rv any, op func(a, b float64) float64) {
	ln, lok := lv.(float64)
	rn, rok := rv.(float64)
	if lok && rok {
		n.SetFolded(op(ln, rn))
	}
}

func compareNumeric(op ast.BinaryOp, a, b float64) bool {
	switch op {
	case ast.OpLt:
		return a < b
	case ast.OpLe:
		return a <= b
	case ast.OpGt:
		return a > b
	case ast.OpGe:
		return a >= b
	}
	return false
}

func truthy(v any) bool {
	switch vv := v.(type) {
	case nil:
		return false
	case bool:
		return vv
	default:
		return true
	}
}

func valuesEqual(a, b any) bool {
	switch av := a.(type) {
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case nil:
		return b == nil
	}
	return false
}
