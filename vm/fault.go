package vm

import "fmt"

// FaultKind names the disjoint runtime-fault taxonomy from spec.md §4.6.
// Every fault is fatal to the run; none are retried or recovered from
// (spec.md §7).
type FaultKind string

const (
	FaultStackUnderflow  FaultKind = "StackUnderflow"
	FaultStackOverflow   FaultKind = "StackOverflow"
	FaultBadLocalIndex   FaultKind = "BadLocalIndex"
	FaultBadConstantIndex FaultKind = "BadConstantIndex"
	FaultBadJumpTarget   FaultKind = "BadJumpTarget"
	FaultTypeError       FaultKind = "TypeError"
)

// RuntimeFault is raised by the VM's fetch-decode-execute loop. pc is the
// byte offset of the instruction that raised it, for diagnostics.
type RuntimeFault struct {
	Kind    FaultKind
	Message string
	PC      int
}

func (e *RuntimeFault) Error() string {
	return fmt.Sprintf("💥 %s at pc=%d: %s", e.Kind, e.PC, e.Message)
}

func fault(pc int, kind FaultKind, format string, args ...any) *RuntimeFault {
	return &RuntimeFault{Kind: kind, Message: fmt.Sprintf(format, args...), PC: pc}
}
