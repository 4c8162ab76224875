package interp

import (
	"github.com/cwbudde/scriptcore/internal/ast"
	"github.com/cwbudde/scriptcore/internal/ref"
)

// StatusKind tags which of the four control-flow outcomes a statement
// produced (spec.md §4.8/§9): a small value threaded up through the
// statement executor's return values rather than modeled with Go
// panic/recover or boolean signal fields. spec.md §9 is explicit that
// these are a tagged status, not host exceptions, and a Go-idiomatic
// rendition of "tagged status" is an explicit return value every caller
// must check.
type StatusKind int

const (
	// StatusNormal means the statement ran to completion; the caller
	// continues with whatever statement follows.
	StatusNormal StatusKind = iota
	StatusBreak
	StatusContinue
	StatusReturn
)

// Status is the outcome of executing one statement. Target identifies
// which enclosing construct a Break/Continue unwinds to (spec.md §4.8);
// ReturnRef carries the returned Reference for StatusReturn.
type Status struct {
	Kind      StatusKind
	Target    ast.LoopTarget
	ReturnRef *ref.Reference
}

var normalStatus = Status{Kind: StatusNormal}

// targetsMatch reports whether this status's Target matches the construct
// asking (a bare `break;`/`continue;` with TargetUnspecified matches the
// nearest enclosing construct of the asking kind).
func (s Status) targetsMatch(want ast.LoopTarget) bool {
	return s.Target == ast.TargetUnspecified || s.Target == want
}
