package interp

import (
	"fmt"

	"github.com/cwbudde/scriptcore/internal/diag"
	"github.com/cwbudde/scriptcore/internal/value"
)

// Exception is the runtime error carrier spec.md §7 calls for: a thrown
// script Value plus the Backtrace accreted as each function frame unwinds
// past it. It implements error so the rest of the Go codebase (the
// pkg/script driver, the CLI) can treat a script-level throw the same way
// Go treats any other failure, without scriptcore itself ever using
// panic/recover to move one between interp functions — every evaluator
// and executor function returns its *Exception explicitly, the way the
// teacher's Eval returns an error Value rather than panicking.
//
// Fatal marks an exception the runtime raised itself (stack overflow,
// division semantics that have no catchable representation, an internal
// invariant violation) as opposed to a user `throw`; spec.md §7 reserves
// the right for a driver to treat the two differently. A try/catch does
// not catch a Fatal exception: execTry passes it straight through.
type Exception struct {
	Thrown    value.Value
	Backtrace diag.Backtrace
	Fatal     bool
}

func (e *Exception) Error() string {
	if e.Backtrace.String() == "" {
		return e.Thrown.Dump()
	}
	return fmt.Sprintf("%s\n%s", e.Thrown.Dump(), e.Backtrace.String())
}

// throwString builds a catchable Exception carrying a plain string value,
// the shape most built-in runtime errors take (spec.md §4.7's operator
// semantics table: division by zero, bad subscript, overflow, ...).
func throwString(message string) *Exception {
	return &Exception{Thrown: value.NewString(message)}
}

// throwStringf is throwString with fmt.Sprintf formatting.
func throwStringf(format string, args ...interface{}) *Exception {
	return throwString(fmt.Sprintf(format, args...))
}
