// Package diag collects positioned diagnostics produced by every compile
// stage (lexer, parser, attribution) into a single sink, so a compile job
// can report every error it found rather than bailing out on the first
// one.
package diag

import (
	"fmt"
	"io"

	"golang.org/x/exp/slices"

	"yuk/token"
)

type Severity int

const (
	Warning Severity = iota
	Error
)

func (s Severity) String() string {
	if s == Error {
		return "error"
	}
	return "warning"
}

// Diagnostic is one positioned error or warning.
type Diagnostic struct {
	Span     token.Span
	Severity Severity
	Message  string
}

// Sink accumulates diagnostics across every stage of a single compile job.
// It is never shared across jobs - see the compile job's ownership rules.
type Sink struct {
	Path  string
	items []Diagnostic
}

func NewSink(path string) *Sink {
	return &Sink{Path: path}
}

func (s *Sink) Errorf(span token.Span, format string, args ...any) {
	s.items = append(s.items, Diagnostic{Span: span, Severity: Error, Message: fmt.Sprintf(format, args...)})
}

func (s *Sink) Warnf(span token.Span, format string, args ...any) {
	s.items = append(s.items, Diagnostic{Span: span, Severity: Warning, Message: fmt.Sprintf(format, args...)})
}

// HasErrors reports whether any Error-severity diagnostic was recorded.
// The pipeline must never proceed to emission while this is true.
func (s *Sink) HasErrors() bool {
	for _, d := range s.items {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

func (s *Sink) Diagnostics() []Diagnostic {
	sorted := make([]Diagnostic, len(s.items))
	copy(sorted, s.items)
	slices.SortStableFunc(sorted, func(a, b Diagnostic) int {
		return int(a.Span.Start) - int(b.Span.Start)
	})
	return sorted
}

// Render writes one line per diagnostic, in the form
// "path:line:col: severity: message", sorted by source position so two
// independent compiles of the same source produce byte-identical output.
func (s *Sink) Render(w io.Writer) {
	for _, d := range s.Diagnostics() {
		fmt.Fprintf(w, "%s:%d:%d: %s: %s\n", s.Path, d.Span.Line, d.Span.Column, d.Severity, d.Message)
	}
}

// CompileError wraps the diagnostics of a failed compile job so callers can
// errors.As for it instead of parsing rendered text.
type CompileError struct {
	Sink *Sink
}

func (e *CompileError) Error() string {
	ds := e.Sink.Diagnostics()
	if len(ds) == 0 {
		return "compile failed"
	}
	return fmt.Sprintf("compile failed: %s", ds[0].Message)
}
