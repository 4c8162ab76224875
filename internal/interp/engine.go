package interp

import (
	"fmt"
	"io"

	"github.com/cwbudde/scriptcore/internal/diag"
	"github.com/cwbudde/scriptcore/internal/lexer"
	"github.com/cwbudde/scriptcore/internal/value"
)

// Engine is the per-execution driving state threaded through every
// evaluator/executor call: the source text and file name (for __file and
// diagnostic formatting), the live call stack (for backtrace capture at
// throw time and for the __line/__file bound at each call), and the
// collector's bookkeeping (spec.md §5/§6). One Engine exists per run,
// passed by pointer everywhere, carrying the richer bookkeeping
// scriptcore's GC and backtrace model need beyond a plain env/output
// pair.
type Engine struct {
	File       string
	Source     string
	callStack  []diag.Frame
	frames     []*callFrame // active invocations, innermost last; backs defer registration
	generation int
	gc         *collector

	// Trace is a nil-safe sink the CLI's --trace flag wires up (SPEC_FULL.md
	// §A): when set, pushCall writes one line per function call, a
	// functional-option-style toggle rather than pulling in a logging
	// framework the corpus never uses.
	Trace io.Writer

	// DeferWarnings accumulates "defer callback failed" notices runDefers
	// produces (spec.md §4.9: "exceptions escaping deferred callbacks are
	// logged and suppressed"). Logging itself is an external collaborator
	// (spec.md §1); the driver decides what to do with these.
	DeferWarnings []string
}

// NewEngine creates the execution state for one Program run (pkg/script's
// Program.Execute constructs exactly one of these per call).
func NewEngine(file, source string) *Engine {
	return &Engine{File: file, Source: source, gc: newCollector()}
}

// pushCall records a frame for the function named fn being entered at
// callSitePos; every later throw inside that call snapshots the stack as
// it stands, giving the innermost frame (the one about to throw) the
// highest index — which diag.Backtrace.String renders first, i.e.
// "most recent call first".
func (e *Engine) pushCall(fn string, callSitePos lexer.Position) {
	e.callStack = append(e.callStack, diag.Frame{File: e.File, Line: callSitePos.Line, Func: fn})
	if e.Trace != nil {
		fmt.Fprintf(e.Trace, "call %s at %s:%d (depth %d)\n", fn, e.File, callSitePos.Line, len(e.callStack))
	}
}

func (e *Engine) popCall() {
	if len(e.callStack) > 0 {
		e.callStack = e.callStack[:len(e.callStack)-1]
	}
}

// callFrame is one live invocation of a Function. Defers are registered
// here rather than on the *Function itself: fn is the single persistent
// instance for a declared closure, shared by every recursive or
// re-entrant call, so storing defers on fn would let an inner call's
// teardown drain registrations that belong to an outer, still-running
// call of the same fn.
type callFrame struct {
	fn     *Function
	defers []value.Value
}

// pushFrame/popFrame/currentFrame track which invocation is innermost, so
// a `defer` statement knows which frame's teardown should run its
// callback.
func (e *Engine) pushFrame(f *Function) *callFrame {
	cf := &callFrame{fn: f}
	e.frames = append(e.frames, cf)
	return cf
}

func (e *Engine) popFrame() {
	if len(e.frames) > 0 {
		e.frames = e.frames[:len(e.frames)-1]
	}
}

func (e *Engine) currentFrame() *callFrame {
	if len(e.frames) == 0 {
		return nil
	}
	return e.frames[len(e.frames)-1]
}

// backtrace snapshots the current call stack into a fresh Backtrace (an
// Exception must copy, never alias, since the Engine's callStack keeps
// unwinding after the Exception is constructed).
func (e *Engine) backtrace() diag.Backtrace {
	bt := make(diag.Backtrace, len(e.callStack))
	copy(bt, e.callStack)
	return bt
}

// Collect runs the mark-and-sweep collector over every Function instance
// created at generation <= maxGeneration, reachable from global's
// variables (spec.md §5/§6's GlobalContext.collect). It returns the
// number of instances reclaimed.
func (e *Engine) Collect(global *Context, maxGeneration int) int {
	n := e.gc.sweep(global, maxGeneration)
	e.generation++
	return n
}
