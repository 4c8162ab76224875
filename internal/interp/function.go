package interp

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/cwbudde/scriptcore/internal/ast"
	"github.com/cwbudde/scriptcore/internal/lexer"
	"github.com/cwbudde/scriptcore/internal/ref"
	"github.com/cwbudde/scriptcore/internal/value"
)

// Function is scriptcore's function object (spec.md §4.9): a declared
// header, its (analytically bound) body, and the Context it closes over.
// It implements value.Callable so a Function can be boxed into a
// value.Value and flow through the language like any other value.
//
// Every instantiation gets its own uuid (SPEC_FULL.md §B): two closures
// created from the same `func` literal on two different calls are
// distinct identities, which is what makes equality-by-identity
// (value.Value.Equal on Function) and the collector's per-instance
// generation bucket meaningful.
type Function struct {
	id         string
	header     *ast.FunctionHeader
	body       *ast.Block
	enclosing  *Context
	generation int
	builtin    BuiltinFunc // set instead of header/body/enclosing for a host-provided function
	debugName  string
}

// BuiltinFunc is a host function bridged into the language as a callable
// Value (internal/builtins' way of extending the runtime, spec.md §1/§6):
// it receives the already-evaluated argument References and the calling
// engine, and returns either a result Reference or an Exception.
type BuiltinFunc func(e *Engine, args []*ref.Reference) (*ref.Reference, *Exception)

// NewClosure instantiates a Function bound to header/body, closing over
// enclosing, tagged with the engine's current GC generation.
func NewClosure(e *Engine, header *ast.FunctionHeader, body *ast.Block, enclosing *Context) *Function {
	f := &Function{
		id:        uuid.NewString(),
		header:    header,
		body:      bindFunction(header, body, enclosing),
		enclosing: enclosing,
	}
	if e != nil {
		f.generation = e.generation
		e.gc.register(f)
	}
	return f
}

// NewBuiltin wraps a host Go function as a callable Value with no script
// body and no captured context (internal/builtins' registration path).
func NewBuiltin(name string, fn BuiltinFunc) *Function {
	return &Function{id: uuid.NewString(), builtin: fn, debugName: name}
}

func (f *Function) Identity() string { return f.id }

func (f *Function) Arity() (fixed int, variadic bool) {
	if f.builtin != nil {
		return 0, true
	}
	return len(f.header.Params), f.header.Variadic
}

func (f *Function) DebugName() string {
	if f.builtin != nil {
		return f.debugName
	}
	if f.header.Name != "" {
		return f.header.Name
	}
	return fmt.Sprintf("<closure %s>", f.id[:8])
}

func (f *Function) Value() value.Value { return value.NewFunction(f) }

// asFunction recovers the *Function behind a callable Value, the form
// every call-site unit (FunctionCall) needs before it can invoke.
func asFunction(v value.Value) (*Function, bool) {
	if v.Kind() != value.Function {
		return nil, false
	}
	fn, ok := v.Func().(*Function)
	return fn, ok
}

// reservedArgsNames are the parameter-binding reserved slots spec.md
// §4.9 documents: __this (the call's self-reference, null unless bound
// via a member call), __varg (excess positional arguments beyond the
// declared parameters, as an array), __file/__line (the call site),
// __source (the enclosing Program's source text).
const (
	reservedThis   = "__this"
	reservedVarg   = "__varg"
	reservedFile   = "__file"
	reservedLine   = "__line"
	reservedSource = "__source"
)

// callFunction implements spec.md §4.9's invocation contract. A builtin
// Function just runs its host callback directly; a script Function gets a
// fresh scope parented at its *captured* context (never the caller's —
// lexical, not dynamic, scoping), its parameters bound to the caller's
// argument References by identity, and its body run to a Status the way
// execStatements produces one, which is then folded into a single result
// Reference or a fatal Exception.
func callFunction(e *Engine, fn *Function, args []*ref.Reference, selfRef *ref.Reference, callPos lexer.Position) (*ref.Reference, *Exception) {
	if fn.builtin != nil {
		return fn.builtin(e, args)
	}

	e.pushCall(fn.DebugName(), callPos)
	frame := e.pushFrame(fn)
	defer func() {
		e.popFrame()
		e.popCall()
	}()

	scope := NewChildContext(fn.enclosing)

	for i, name := range fn.header.Params {
		if i < len(args) {
			scope.Bind(name, args[i])
		} else {
			scope.Declare(name, value.NewNull(), false)
		}
	}
	if fn.header.Variadic && len(args) > len(fn.header.Params) {
		extra := args[len(fn.header.Params):]
		items := make([]value.Value, len(extra))
		for i, a := range extra {
			v, err := a.Read()
			if err != nil {
				return nil, throwString(err.Error())
			}
			items[i] = v
		}
		scope.DeclareReserved(reservedVarg, value.NewArray(items))
	} else {
		scope.DeclareReserved(reservedVarg, value.NewArray(nil))
	}

	thisVal := value.NewNull()
	if selfRef != nil {
		if v, err := selfRef.Read(); err == nil {
			thisVal = v
		}
	}
	scope.DeclareReserved(reservedThis, thisVal)
	scope.DeclareReserved(reservedFile, value.NewString(e.File))
	scope.DeclareReserved(reservedLine, value.NewInt(int64(callPos.Line)))
	scope.DeclareReserved(reservedSource, value.NewString(e.Source))

	status, exc := execStatements(e, scope, fn.body.Statements)

	warnings := runDefers(e, frame)
	e.DeferWarnings = append(e.DeferWarnings, warnings...)

	if exc != nil {
		return nil, exc
	}

	switch status.Kind {
	case StatusReturn:
		return status.ReturnRef, nil
	case StatusBreak, StatusContinue:
		fatal := throwStringf("%s escaped %q's body with no enclosing loop or switch", statusKindName(status.Kind), fn.DebugName())
		fatal.Fatal = true
		return nil, fatal
	default:
		return ref.NewTemporary(value.NewNull()), nil
	}
}

func statusKindName(k StatusKind) string {
	switch k {
	case StatusBreak:
		return "break"
	case StatusContinue:
		return "continue"
	default:
		return "status"
	}
}
