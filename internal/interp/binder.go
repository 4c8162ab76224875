package interp

import (
	"github.com/cwbudde/scriptcore/internal/ast"
	"github.com/cwbudde/scriptcore/internal/value"
)

// bindFunction runs the analytic binder pass (spec.md §4.6) once per
// function instantiation: it walks header+body against a fresh analytic
// context parented at the captured (lexical) context, pre-declaring a
// dummy placeholder for every name the body itself introduces (so that a
// reference to a function-local variable is never mistaken for an
// upvalue), and rewrites every ast.NamedReference unit that resolves in a
// non-analytic ancestor — i.e. genuinely captured from the enclosing
// scope — into an ast.BoundReference carrying the live *ref.Reference
// from lexical. Names that stay local to the function (or that resolve
// nowhere, left for the evaluator to raise at run time) are left as
// NamedReference, resolved fresh against each call's own executive
// context.
//
// The rewrite produces a new Block rather than mutating body in place,
// since a closure literal evaluated twice (e.g. inside a loop) must bind
// against two different captured contexts and must not corrupt the AST
// the parser produced.
func bindFunction(header *ast.FunctionHeader, body *ast.Block, lexical *Context) *ast.Block {
	analytic := NewAnalyticContext(lexical)
	for _, p := range header.Params {
		if !IsReservedName(p) {
			analytic.Declare(p, zeroValue(), false)
		}
	}
	if header.Variadic {
		analytic.DeclareReserved(reservedVarg, zeroValue())
	}
	analytic.DeclareReserved(reservedThis, zeroValue())
	analytic.DeclareReserved(reservedFile, zeroValue())
	analytic.DeclareReserved(reservedLine, zeroValue())
	analytic.DeclareReserved(reservedSource, zeroValue())

	b := &binder{lexical: lexical}
	return b.bindBlock(body, analytic)
}

type binder struct {
	lexical *Context
}

func (b *binder) bindBlock(block *ast.Block, ctx *Context) *ast.Block {
	child := NewChildContext(ctx)
	out := &ast.Block{Position: block.Position, Statements: make([]ast.Statement, len(block.Statements))}
	for i, s := range block.Statements {
		out.Statements[i] = b.bindStatement(s, child)
	}
	return out
}

func (b *binder) bindStatement(s ast.Statement, ctx *Context) ast.Statement {
	switch st := s.(type) {
	case nil:
		return nil
	case *ast.ExpressionStatement:
		return &ast.ExpressionStatement{Position: st.Position, Expr: b.bindExpr(st.Expr, ctx)}
	case *ast.Block:
		return b.bindBlock(st, ctx)
	case *ast.VarDecl:
		inits := make([]ast.Expr, len(st.Initializers))
		for i, init := range st.Initializers {
			if init != nil {
				inits[i] = b.bindExpr(init, ctx)
			}
		}
		for _, name := range st.Names {
			if !IsReservedName(name) {
				ctx.Declare(name, zeroValue(), st.Const)
			}
		}
		return &ast.VarDecl{Position: st.Position, Names: st.Names, Initializers: inits, Const: st.Const}
	case *ast.FuncDecl:
		if st.Header.Name != "" && !IsReservedName(st.Header.Name) {
			ctx.Declare(st.Header.Name, zeroValue(), true)
		}
		// The nested function's own body binds lazily, once per
		// instantiation, against whatever context is live when the
		// FuncDecl actually executes — not here.
		return st
	case *ast.IfStatement:
		return &ast.IfStatement{
			Position:  st.Position,
			Condition: b.bindExpr(st.Condition, ctx),
			Negate:    st.Negate,
			Then:      b.bindStatement(st.Then, ctx),
			Else:      b.bindStatement(st.Else, ctx),
		}
	case *ast.SwitchStatement:
		child := NewChildContext(ctx)
		clauses := make([]*ast.SwitchClause, len(st.Clauses))
		for i, c := range st.Clauses {
			var expr ast.Expr
			if c.Expr != nil {
				expr = b.bindExpr(c.Expr, child)
			}
			body := make([]ast.Statement, len(c.Body))
			for j, bs := range c.Body {
				body[j] = b.bindStatement(bs, child)
			}
			clauses[i] = &ast.SwitchClause{Expr: expr, Body: body}
		}
		return &ast.SwitchStatement{Position: st.Position, Control: b.bindExpr(st.Control, ctx), Clauses: clauses}
	case *ast.DoWhileStatement:
		return &ast.DoWhileStatement{Position: st.Position, Body: b.bindStatement(st.Body, ctx), Condition: b.bindExpr(st.Condition, ctx), Negate: st.Negate}
	case *ast.WhileStatement:
		return &ast.WhileStatement{Position: st.Position, Condition: b.bindExpr(st.Condition, ctx), Body: b.bindStatement(st.Body, ctx)}
	case *ast.ForStatement:
		child := NewChildContext(ctx)
		var init ast.Statement
		if st.Init != nil {
			init = b.bindStatement(st.Init, child)
		}
		var cond ast.Expr
		if st.Condition != nil {
			cond = b.bindExpr(st.Condition, child)
		}
		var step ast.Expr
		if st.Step != nil {
			step = b.bindExpr(st.Step, child)
		}
		return &ast.ForStatement{Position: st.Position, Init: init, Condition: cond, Step: step, Body: b.bindStatement(st.Body, child)}
	case *ast.ForEachStatement:
		child := NewChildContext(ctx)
		if st.KeyName != "" && !IsReservedName(st.KeyName) {
			child.Declare(st.KeyName, zeroValue(), false)
		}
		if st.ValueName != "" && !IsReservedName(st.ValueName) {
			child.Declare(st.ValueName, zeroValue(), false)
		}
		rangeExpr := b.bindExpr(st.Range, ctx)
		return &ast.ForEachStatement{Position: st.Position, KeyName: st.KeyName, ValueName: st.ValueName, Range: rangeExpr, Body: b.bindStatement(st.Body, child)}
	case *ast.TryStatement:
		boundBody := b.bindBlock(st.Body, ctx)
		catchCtx := NewChildContext(ctx)
		if st.ExceptionName != "" && !IsReservedName(st.ExceptionName) {
			catchCtx.Declare(st.ExceptionName, zeroValue(), false)
		}
		boundCatch := b.bindBlock(st.Catch, catchCtx)
		return &ast.TryStatement{Position: st.Position, Body: boundBody, ExceptionName: st.ExceptionName, Catch: boundCatch}
	case *ast.BreakStatement, *ast.ContinueStatement:
		return st
	case *ast.ThrowStatement:
		return &ast.ThrowStatement{Position: st.Position, Expr: b.bindExpr(st.Expr, ctx)}
	case *ast.ReturnStatement:
		var expr ast.Expr
		if st.Expr != nil {
			expr = b.bindExpr(st.Expr, ctx)
		}
		return &ast.ReturnStatement{Position: st.Position, Expr: expr, ByRef: st.ByRef}
	case *ast.AssertStatement:
		var msg ast.Expr
		if st.Message != nil {
			msg = b.bindExpr(st.Message, ctx)
		}
		return &ast.AssertStatement{Position: st.Position, Expr: b.bindExpr(st.Expr, ctx), Message: msg, Negate: st.Negate}
	case *ast.DeferStatement:
		return &ast.DeferStatement{Position: st.Position, Expr: b.bindExpr(st.Expr, ctx)}
	default:
		return st
	}
}

// bindExpr rewrites every NamedReference unit of e that resolves in a
// non-analytic ancestor of ctx into a BoundReference; every other unit
// (including a nested ClosureFunction's Header/Body, which bind lazily at
// their own instantiation time) passes through unchanged.
func (b *binder) bindExpr(e ast.Expr, ctx *Context) ast.Expr {
	if e == nil {
		return nil
	}
	out := make(ast.Expr, len(e))
	for i, u := range e {
		switch unit := u.(type) {
		case *ast.NamedReference:
			if IsReservedName(unit.Name) {
				out[i] = unit
				continue
			}
			defCtx := ctx.DefiningContext(unit.Name)
			if defCtx != nil && !defCtx.analytic {
				if r := b.lexical.LookupReference(unit.Name); r != nil {
					out[i] = &ast.BoundReference{Position: unit.Position, Name: unit.Name, Ref: r}
					continue
				}
			}
			out[i] = unit
		default:
			out[i] = u
		}
	}
	return out
}

func zeroValue() value.Value { return value.NewNull() }
