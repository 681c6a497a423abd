// Package compile owns a single compile job end to end: source text in,
// a classfile.File out (or a *diag.CompileError if any stage reported an
// error-severity diagnostic). This is the "compile-job object" spec.md
// §5 describes as owning the source buffer and the AST for the
// lifetime of one compilation.
package compile

import (
	"yuk/attrib"
	"yuk/classfile"
	"yuk/diag"
	"yuk/internal/config"
	"yuk/lexer"
	"yuk/parser"
)

// Source compiles src (read from path, used only for diagnostics and the
// SourceFile attribute) into a classfile.File. The pipeline runs every
// stage to gather as many diagnostics as possible (spec.md §7), but only
// emits bytecode if no error-severity diagnostic was recorded anywhere
// along the way.
func Source(path, src string, feats config.Features) (*classfile.File, *diag.Sink, error) {
	sink := diag.NewSink(path)

	toks := lexer.New(path, src, sink).Tokens()
	prog := parser.New(toks, sink).Parse()

	result := attrib.Run(prog, attrib.Options{Fold: attrib.FoldOpts{Enabled: feats.ConstFolding}}, sink)

	if sink.HasErrors() {
		return nil, sink, &diag.CompileError{Sink: sink}
	}

	program := classfile.Emit(prog, result.Top)
	file := classfile.Assemble(program, path)
	return file, sink, nil
}
