package interp

import (
	"github.com/cwbudde/scriptcore/internal/ast"
	"github.com/cwbudde/scriptcore/internal/lexer"
	"github.com/cwbudde/scriptcore/internal/ref"
)

// Program wraps a parsed top-level unit (spec.md §6: "A Program is a
// bound top-level block executed as a zero-parameter function whose
// __varg exposes args"). The parser hands back the raw, unbound
// statement list; binding is deferred to Execute because the binder
// needs the caller-supplied global context as its lexical root, and
// that context isn't known until the host calls Execute (after it has
// finished installing builtins via GlobalContext.Declare).
type Program struct {
	source *ast.Program
}

// NewProgram wraps a parsed ast.Program for execution. pkg/script's
// Compile is the only intended caller.
func NewProgram(source *ast.Program) *Program {
	return &Program{source: source}
}

// programHeader is the synthetic zero-parameter, variadic header every
// Program runs under: no declared parameters, so every positional arg
// the host passes flows into __varg.
var programHeader = &ast.FunctionHeader{Variadic: true}

// Execute runs the program as a single call against global, with args
// exposed through __varg exactly as an ordinary variadic function call
// would see them (spec.md §6). Each call rebinds a fresh closure over
// global, so re-running the same Program against the same global
// context (e.g. a REPL re-entering the same globals) observes whatever
// the previous run left behind in global's own variables.
func (p *Program) Execute(e *Engine, global *Context, args []*ref.Reference) (*ref.Reference, *Exception) {
	body := &ast.Block{Statements: p.source.Statements}
	fn := NewClosure(e, programHeader, body, global)
	return callFunction(e, fn, args, nil, lexer.Position{Line: 1, Column: 1})
}
