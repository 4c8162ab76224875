// Package script is the Driver API spec.md §6 specifies: compile(source,
// filename) -> Program | ParseError, Program.execute(global_context, args)
// -> Reference, GlobalContext.declare, GlobalContext.collect. It is the
// thin public surface over internal/lexer, internal/parser, and
// internal/interp that a host (the CLI in cmd/scriptcore, an embedder)
// is meant to import; everything underneath stays internal because
// spec.md §1 scopes the core to the compilation-and-execution pipeline
// alone, not a stable extension API.
package script

import (
	"io"

	"github.com/cwbudde/scriptcore/internal/diag"
	"github.com/cwbudde/scriptcore/internal/interp"
	"github.com/cwbudde/scriptcore/internal/lexer"
	"github.com/cwbudde/scriptcore/internal/parser"
	"github.com/cwbudde/scriptcore/internal/ref"
	"github.com/cwbudde/scriptcore/internal/value"
)

// Program is a compiled, not-yet-bound top-level block, ready to Execute
// against a GlobalContext (spec.md §6).
type Program struct {
	inner *interp.Program
}

// Compile implements spec.md §6's compile(source, filename). Parse errors
// are returned as a diag.Code-tagged *diag.SourceError slice rather than a
// single error, matching "ParseError = {line, offset, length, code,
// description}" — a caller that wants the first one can just index [0].
func Compile(source, filename string) (*Program, []*diag.SourceError) {
	l := lexer.New(source)
	p := parser.New(l, source, filename)
	prog := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		return nil, errs
	}
	return &Program{inner: interp.NewProgram(prog)}, nil
}

// Execute runs the compiled Program as a zero-parameter variadic call
// against global, with args exposed through __varg (spec.md §6). A fresh
// Engine (the per-run call stack, backtrace, and collector state) is
// created for each Execute, so running the same Program twice against the
// same GlobalContext is safe — only global's own variables persist across
// the two runs, exactly as spec.md §6 describes.
func (p *Program) Execute(global *GlobalContext, args []*ref.Reference) (*ref.Reference, *interp.Exception) {
	e := interp.NewEngine(global.file, global.source)
	e.Trace = global.trace
	result, exc := p.inner.Execute(e, global.ctx, args)
	global.lastEngine = e
	return result, exc
}

// GlobalContext wraps the root interp.Context a host populates with
// builtins before Execute, plus the file/source text Engine needs for
// __file/__source and the most recent run's Engine (for Collect and
// DeferWarnings introspection after a call returns).
type GlobalContext struct {
	ctx        *interp.Context
	file       string
	source     string
	trace      io.Writer
	lastEngine *interp.Engine
}

// SetTrace wires an execution trace sink (the CLI's --trace flag,
// SPEC_FULL.md §A): nil disables tracing. Takes effect on the next
// Execute call.
func (g *GlobalContext) SetTrace(w io.Writer) { g.trace = w }

// NewGlobalContext creates an empty root context for file/source — the
// names Execute will bind __file/__source/__line to when running top-level
// statements (spec.md §6's "global context pre-populated with named
// bindings before execution").
func NewGlobalContext(file, source string) *GlobalContext {
	return &GlobalContext{ctx: interp.NewGlobalContext(), file: file, source: source}
}

// Declare installs a builtin binding into the root context (spec.md §6's
// GlobalContext.declare). isConst mirrors spec.md §3's Variable root
// const flag; builtins are conventionally declared const so user code
// can't shadow-reassign them out from under later calls.
func (g *GlobalContext) Declare(name string, v value.Value, isConst bool) *ref.Reference {
	return g.ctx.Declare(name, v, isConst)
}

// Context exposes the underlying interp.Context for callers (internal/
// builtins' Register) that need the full Context API rather than just
// Declare.
func (g *GlobalContext) Context() *interp.Context { return g.ctx }

// Collect runs the mark-and-sweep collector (spec.md §5/§6's
// GlobalContext.collect(max_generation)) over the most recent Execute's
// Engine, reclaiming unreachable Function instances at or below
// maxGeneration. maxGeneration < 0 collects regardless of age. Calling
// Collect before any Execute is a no-op (there is no Engine yet, hence
// nothing the collector could have registered).
func (g *GlobalContext) Collect(maxGeneration int) int {
	if g.lastEngine == nil {
		return 0
	}
	return g.lastEngine.Collect(g.ctx, maxGeneration)
}

// DeferWarnings returns the "defer callback failed" notices (spec.md
// §4.9) accumulated by the most recent Execute, or nil if none ran yet.
func (g *GlobalContext) DeferWarnings() []string {
	if g.lastEngine == nil {
		return nil
	}
	return g.lastEngine.DeferWarnings
}
