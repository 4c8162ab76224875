// Package interp implements the runtime core of spec.md §4.6-§4.9: the
// context tree, the analytic binder, the expression evaluator, the
// statement executor, the function object, and the mark-and-sweep
// collector. They live in one package because the pieces are mutually
// recursive (a function call evaluates a body that declares contexts
// that bind closures that call functions...) and Go has no way to split
// mutually recursive types across packages without an import cycle.
package interp

import (
	"strings"

	"github.com/cwbudde/scriptcore/internal/ref"
	"github.com/cwbudde/scriptcore/internal/value"
)

// Context is one node of the context tree (spec.md §4.3): "a mapping from
// name to Reference, plus an optional parent link and an analytic? flag."
// Binding a name directly to a *ref.Reference (rather than to a copied
// Value) is what lets a function parameter share identity with its
// caller's own argument Reference — the pass-by-reference contract
// spec.md §4.9 describes ("binds each parameter name to one of the
// passed argument references").
//
// It is a store-plus-outer-link shape keyed to *ref.Reference instead of
// a bare Value, plus an Analytic bit a single-phase evaluator would
// never need.
type Context struct {
	parent   *Context
	vars     map[string]*ref.Reference
	analytic bool
}

// NewGlobalContext creates the root of a context tree: no parent, not
// analytic.
func NewGlobalContext() *Context {
	return &Context{vars: make(map[string]*ref.Reference)}
}

// NewChildContext creates an executive context nested under parent,
// inheriting its Analytic flag (a block nested inside an analytic binder
// pass is itself analytic).
func NewChildContext(parent *Context) *Context {
	return &Context{parent: parent, vars: make(map[string]*ref.Reference), analytic: parent.analytic}
}

// NewAnalyticContext creates the root analytic context the binder runs a
// function body against: parented at the function's captured (lexical)
// context so names that resolve outside the function body still bind,
// but itself and every child created under it are analytic.
func NewAnalyticContext(lexical *Context) *Context {
	return &Context{parent: lexical, vars: make(map[string]*ref.Reference), analytic: true}
}

// Analytic reports whether this context (and anything declared in it) is
// part of a binder pre-pass rather than a running program.
func (c *Context) Analytic() bool { return c.analytic }

// Parent returns the enclosing context, or nil at the root.
func (c *Context) Parent() *Context { return c.parent }

// isReserved reports whether name is one of the driver-reserved names
// spec.md §6 forbids user code from declaring: __file, __line, __this,
// __varg, __source, __backtrace, and any other __-prefixed identifier.
func isReserved(name string) bool {
	return strings.HasPrefix(name, "__")
}

// IsReservedName reports whether name is reserved, for callers (the
// binder, VarDecl/FuncDecl execution) that must reject a user declaration
// before calling Declare.
func IsReservedName(name string) bool { return isReserved(name) }

// Declare introduces name in this context's own scope as a fresh variable
// slot holding v (spec.md §4.3): shadowing an ancestor's binding of the
// same name is allowed. Declare checks nothing: callers must reject a
// reserved name themselves (the executor's declareChecked does), and a
// second Declare of a name in the same scope replaces the earlier slot.
func (c *Context) Declare(name string, v value.Value, isConst bool) *ref.Reference {
	r := ref.NewVariable(name, v, isConst)
	c.vars[name] = r
	return r
}

// DeclareReserved is Declare's escape hatch for the handful of names the
// runtime itself binds (__this, __varg, __file, __line, __source) as
// constants; user declarations of those names are rejected by the
// executor (IsReservedName) before Declare is reached.
func (c *Context) DeclareReserved(name string, v value.Value) *ref.Reference {
	r := ref.NewVariable(name, v, true)
	c.vars[name] = r
	return r
}

// Bind installs an existing Reference under name directly, without
// wrapping it in a fresh variable slot — used for by-reference parameter
// binding, where the callee's parameter must be the very Reference the
// caller passed in.
func (c *Context) Bind(name string, r *ref.Reference) {
	c.vars[name] = r
}

// HasLocal reports whether name is declared directly in this context,
// without walking to the parent.
func (c *Context) HasLocal(name string) bool {
	_, ok := c.vars[name]
	return ok
}

// LookupReference walks from c up through ancestors and returns the
// Reference bound to name, or nil if no ancestor declares it.
func (c *Context) LookupReference(name string) *ref.Reference {
	for ctx := c; ctx != nil; ctx = ctx.parent {
		if r, ok := ctx.vars[name]; ok {
			return r
		}
	}
	return nil
}

// DefiningContext walks from c up through ancestors and returns the
// context that directly declares name, or nil. The binder uses this to
// decide whether a name resolves in a non-analytic ancestor (bindable to
// a BoundReference) or stays unresolved (left as a NamedReference).
func (c *Context) DefiningContext(name string) *Context {
	for ctx := c; ctx != nil; ctx = ctx.parent {
		if _, ok := ctx.vars[name]; ok {
			return ctx
		}
	}
	return nil
}
