package attrib

import (
	"yuk/ast"
	"yuk/diag"
)

// Options gates the attribution passes that have an on/off switch.
// Name resolution and stack analysis always run - the emitter cannot
// function without them - only folding is optional.
type Options struct {
	Fold FoldOpts
}

// Result is what the classfile emitter needs out of attribution: the
// computed CodeInfo for the top-level program. Diagnostics go to the sink
// passed to Run, not into Result.
type Result struct {
	Top CodeInfo
}

// Run performs all three attribution passes over prog in the order
// spec.md §4.3 requires: name resolution, then constant folding, then
// stack-depth and locals analysis. Folding runs after resolution because
// it only concerns itself with expression value computation, not names;
// it runs before stack analysis because a folded node has a smaller,
// more accurate depth (a folded arithmetic chain costs exactly 1).
func Run(prog []ast.Stmt, opts Options, sink *diag.Sink) Result {
	top := ResolveProgram(prog, sink)
	Fold(prog, opts.Fold, sink)
	info := AnalyzeProgram(prog, top.next)
	return Result{Top: info}
}
