package interp

import (
	"github.com/cwbudde/scriptcore/internal/ast"
	"github.com/cwbudde/scriptcore/internal/lexer"
	"github.com/cwbudde/scriptcore/internal/ref"
	"github.com/cwbudde/scriptcore/internal/value"
)

// ExecBlock implements spec.md §4.8's Block rule: open a child executive
// context, run every statement in order, short-circuit on the first
// non-normal Status, destroy the context on exit (Go's GC reclaims it —
// nothing to do explicitly, since scriptcore's contexts hold no host
// resources directly).
func ExecBlock(e *Engine, parent *Context, block *ast.Block) (Status, *Exception) {
	child := NewChildContext(parent)
	return execStatements(e, child, block.Statements)
}

func execStatements(e *Engine, ctx *Context, stmts []ast.Statement) (Status, *Exception) {
	for _, s := range stmts {
		status, exc := ExecStatement(e, ctx, s)
		if exc != nil {
			return normalStatus, exc
		}
		if status.Kind != StatusNormal {
			return status, nil
		}
	}
	return normalStatus, nil
}

// ExecStatement dispatches on the concrete Statement type, mirroring the
// teacher's big Eval(node ast.Node) type switch, generalized to return an
// explicit (Status, *Exception) pair instead of a Value — spec.md §9
// insists control flow not be modeled with host exceptions, and a plain
// Go return value is the idiomatic way to thread a "tagged status" up
// the call stack.
func ExecStatement(e *Engine, ctx *Context, s ast.Statement) (Status, *Exception) {
	switch st := s.(type) {
	case nil:
		return normalStatus, nil

	case *ast.ExpressionStatement:
		if _, exc := EvalExpr(e, ctx, st.Expr); exc != nil {
			return normalStatus, exc
		}
		return normalStatus, nil

	case *ast.Block:
		return ExecBlock(e, ctx, st)

	case *ast.VarDecl:
		return execVarDecl(e, ctx, st)

	case *ast.FuncDecl:
		return execFuncDecl(e, ctx, st)

	case *ast.IfStatement:
		return execIf(e, ctx, st)

	case *ast.SwitchStatement:
		return execSwitch(e, ctx, st)

	case *ast.DoWhileStatement:
		return execDoWhile(e, ctx, st)

	case *ast.WhileStatement:
		return execWhile(e, ctx, st)

	case *ast.ForStatement:
		return execFor(e, ctx, st)

	case *ast.ForEachStatement:
		return execForEach(e, ctx, st)

	case *ast.TryStatement:
		return execTry(e, ctx, st)

	case *ast.BreakStatement:
		return Status{Kind: StatusBreak, Target: st.Target}, nil

	case *ast.ContinueStatement:
		return Status{Kind: StatusContinue, Target: st.Target}, nil

	case *ast.ThrowStatement:
		return execThrow(e, ctx, st)

	case *ast.ReturnStatement:
		return execReturn(e, ctx, st)

	case *ast.AssertStatement:
		return execAssert(e, ctx, st)

	case *ast.DeferStatement:
		return execDefer(e, ctx, st)

	default:
		exc := throwStringf("unreachable statement type %T", s)
		exc.Fatal = true
		return normalStatus, exc
	}
}

// declareChecked rejects a reserved name before it is committed to ctx,
// so VarDecl/FuncDecl/catch/for-each report a reserved-name throw instead
// of silently shadowing __this et al. A name already declared in the same
// scope is not rejected.
func declareChecked(ctx *Context, name string) *Exception {
	if IsReservedName(name) {
		return throwStringf("%q is a reserved name and cannot be declared", name)
	}
	return nil
}

func execVarDecl(e *Engine, ctx *Context, st *ast.VarDecl) (Status, *Exception) {
	for _, name := range st.Names {
		if exc := declareChecked(ctx, name); exc != nil {
			return normalStatus, exc
		}
		ctx.Declare(name, value.NewNull(), false)
	}
	for i, name := range st.Names {
		if st.Initializers[i] == nil {
			continue
		}
		r, exc := EvalExpr(e, ctx, st.Initializers[i])
		if exc != nil {
			return normalStatus, exc
		}
		v, err := r.Read()
		if err != nil {
			return normalStatus, throwString(err.Error())
		}
		target := ctx.LookupReference(name)
		if err := target.Write(v.Clone()); err != nil {
			return normalStatus, throwString(err.Error())
		}
	}
	if st.Const {
		for _, name := range st.Names {
			if variable := ctx.LookupReference(name).Variable(); variable != nil {
				variable.Const = true
			}
		}
	}
	return normalStatus, nil
}

func execFuncDecl(e *Engine, ctx *Context, st *ast.FuncDecl) (Status, *Exception) {
	name := st.Header.Name
	if exc := declareChecked(ctx, name); exc != nil {
		return normalStatus, exc
	}
	fn := NewClosure(e, st.Header, st.Body, ctx)
	ctx.Declare(name, fn.Value(), true)
	return normalStatus, nil
}

func execIf(e *Engine, ctx *Context, st *ast.IfStatement) (Status, *Exception) {
	r, exc := EvalExpr(e, ctx, st.Condition)
	if exc != nil {
		return normalStatus, exc
	}
	v, err := r.Read()
	if err != nil {
		return normalStatus, throwString(err.Error())
	}
	cond := v.Truthy()
	if st.Negate {
		cond = !cond
	}
	if cond {
		return ExecStatement(e, ctx, st.Then)
	}
	if st.Else != nil {
		return ExecStatement(e, ctx, st.Else)
	}
	return normalStatus, nil
}

func execSwitch(e *Engine, ctx *Context, st *ast.SwitchStatement) (Status, *Exception) {
	controlRef, exc := EvalExpr(e, ctx, st.Control)
	if exc != nil {
		return normalStatus, exc
	}
	controlVal, err := controlRef.Read()
	if err != nil {
		return normalStatus, throwString(err.Error())
	}

	shared := NewChildContext(ctx)

	matchIdx := -1
	defaultIdx := -1
	for i, clause := range st.Clauses {
		if clause.Expr == nil {
			if defaultIdx == -1 {
				defaultIdx = i
			}
			continue
		}
		caseRef, exc := EvalExpr(e, shared, clause.Expr)
		if exc != nil {
			return normalStatus, exc
		}
		caseVal, err := caseRef.Read()
		if err != nil {
			return normalStatus, throwString(err.Error())
		}
		if controlVal.Equal(caseVal) {
			matchIdx = i
			break
		}
	}
	start := matchIdx
	if start == -1 {
		start = defaultIdx
	}
	if start == -1 {
		return normalStatus, nil
	}

	// Every clause strictly before start is never executed, but spec.md
	// §4.8 still requires its var/func declarations to exist (as null)
	// for fall-through's sake, mirroring Statement::fly_over_in_place's
	// two-pass structure: a name declared in a skipped clause must still
	// resolve, just to null, from a later clause reached by fall-through.
	for i := 0; i < start; i++ {
		if exc := flyOverClause(shared, st.Clauses[i]); exc != nil {
			return normalStatus, exc
		}
	}

	for i := start; i < len(st.Clauses); i++ {
		status, exc := execStatements(e, shared, st.Clauses[i].Body)
		if exc != nil {
			return normalStatus, exc
		}
		switch status.Kind {
		case StatusBreak:
			if status.targetsMatch(ast.TargetSwitch) {
				return normalStatus, nil
			}
			return status, nil
		case StatusContinue, StatusReturn:
			return status, nil
		}
	}
	return normalStatus, nil
}

// flyOverClause pre-declares as null the name of every top-level
// VarDecl/FuncDecl in a switch clause that fall-through is about to skip
// over, without running any initializer or closure capture. Only the
// direct statements of the clause are considered — a nested block/if/
// switch/etc. gets its own scope when (if ever) it actually executes, so
// it has nothing to pre-declare into shared.
func flyOverClause(shared *Context, clause *ast.SwitchClause) *Exception {
	for _, s := range clause.Body {
		switch st := s.(type) {
		case *ast.VarDecl:
			for _, name := range st.Names {
				if exc := declareChecked(shared, name); exc != nil {
					return exc
				}
				shared.Declare(name, value.NewNull(), false)
			}
		case *ast.FuncDecl:
			name := st.Header.Name
			if exc := declareChecked(shared, name); exc != nil {
				return exc
			}
			shared.Declare(name, value.NewNull(), false)
		}
	}
	return nil
}

func execDoWhile(e *Engine, ctx *Context, st *ast.DoWhileStatement) (Status, *Exception) {
	for {
		status, exc := ExecStatement(e, ctx, st.Body)
		if exc != nil {
			return normalStatus, exc
		}
		switch status.Kind {
		case StatusBreak:
			if status.targetsMatch(ast.TargetWhile) {
				return normalStatus, nil
			}
			return status, nil
		case StatusContinue:
			if !status.targetsMatch(ast.TargetWhile) {
				return status, nil
			}
		case StatusReturn:
			return status, nil
		}

		r, exc := EvalExpr(e, ctx, st.Condition)
		if exc != nil {
			return normalStatus, exc
		}
		v, err := r.Read()
		if err != nil {
			return normalStatus, throwString(err.Error())
		}
		cond := v.Truthy()
		if st.Negate {
			cond = !cond
		}
		if !cond {
			return normalStatus, nil
		}
	}
}

func execWhile(e *Engine, ctx *Context, st *ast.WhileStatement) (Status, *Exception) {
	for {
		r, exc := EvalExpr(e, ctx, st.Condition)
		if exc != nil {
			return normalStatus, exc
		}
		v, err := r.Read()
		if err != nil {
			return normalStatus, throwString(err.Error())
		}
		if !v.Truthy() {
			return normalStatus, nil
		}

		status, exc := ExecStatement(e, ctx, st.Body)
		if exc != nil {
			return normalStatus, exc
		}
		switch status.Kind {
		case StatusBreak:
			if status.targetsMatch(ast.TargetWhile) {
				return normalStatus, nil
			}
			return status, nil
		case StatusContinue:
			if !status.targetsMatch(ast.TargetWhile) {
				return status, nil
			}
		case StatusReturn:
			return status, nil
		}
	}
}

func execFor(e *Engine, ctx *Context, st *ast.ForStatement) (Status, *Exception) {
	scope := NewChildContext(ctx)
	if st.Init != nil {
		if _, exc := ExecStatement(e, scope, st.Init); exc != nil {
			return normalStatus, exc
		}
	}
	for {
		if st.Condition != nil {
			r, exc := EvalExpr(e, scope, st.Condition)
			if exc != nil {
				return normalStatus, exc
			}
			v, err := r.Read()
			if err != nil {
				return normalStatus, throwString(err.Error())
			}
			if !v.Truthy() {
				return normalStatus, nil
			}
		}

		status, exc := ExecStatement(e, scope, st.Body)
		if exc != nil {
			return normalStatus, exc
		}
		switch status.Kind {
		case StatusBreak:
			if status.targetsMatch(ast.TargetFor) {
				return normalStatus, nil
			}
			return status, nil
		case StatusContinue:
			if !status.targetsMatch(ast.TargetFor) {
				return status, nil
			}
		case StatusReturn:
			return status, nil
		}

		if st.Step != nil {
			if _, exc := EvalExpr(e, scope, st.Step); exc != nil {
				return normalStatus, exc
			}
		}
	}
}

// execForEach implements spec.md §4.8's for-each rule. Mutation of the
// container during iteration is left undefined (Open Question, §9);
// scriptcore snapshots the array length / object key list
// up front rather than detecting concurrent modification, so appending
// during iteration simply leaves the appended elements unvisited instead
// of corrupting the loop (documented as a DESIGN.md decision).
func execForEach(e *Engine, ctx *Context, st *ast.ForEachStatement) (Status, *Exception) {
	rangeRef, exc := EvalExpr(e, ctx, st.Range)
	if exc != nil {
		return normalStatus, exc
	}
	rangeVal, err := rangeRef.Read()
	if err != nil {
		return normalStatus, throwString(err.Error())
	}

	switch rangeVal.Kind() {
	case value.Array:
		n := len(rangeVal.ArrayData().Items)
		for i := 0; i < n; i++ {
			iter := NewChildContext(ctx)
			if st.KeyName != "" {
				iter.Declare(st.KeyName, value.NewInt(int64(i)), false)
			}
			if st.ValueName != "" {
				elemRef := rangeRef.ZoomIn(ref.IndexMod(int64(i)))
				iter.Bind(st.ValueName, elemRef)
			}
			status, exc := ExecStatement(e, iter, st.Body)
			if exc != nil {
				return normalStatus, exc
			}
			if done, final, exc := forEachControl(status); done {
				return final, exc
			}
		}
		return normalStatus, nil

	case value.Object:
		keys := append([]string(nil), rangeVal.ObjectData().Keys()...)
		for _, key := range keys {
			iter := NewChildContext(ctx)
			if st.KeyName != "" {
				iter.Declare(st.KeyName, value.NewString(key), false)
			}
			if st.ValueName != "" {
				elemRef := rangeRef.ZoomIn(ref.KeyMod(key))
				iter.Bind(st.ValueName, elemRef)
			}
			status, exc := ExecStatement(e, iter, st.Body)
			if exc != nil {
				return normalStatus, exc
			}
			if done, final, exc := forEachControl(status); done {
				return final, exc
			}
		}
		return normalStatus, nil

	default:
		return normalStatus, throwStringf("for-each requires an array or object, got %s", rangeVal.TypeName())
	}
}

// forEachControl centralizes the break/continue/return dispatch shared
// by both the array and object iteration branches above.
func forEachControl(status Status) (done bool, final Status, exc *Exception) {
	switch status.Kind {
	case StatusBreak:
		if status.targetsMatch(ast.TargetFor) {
			return true, normalStatus, nil
		}
		return true, status, nil
	case StatusContinue:
		if !status.targetsMatch(ast.TargetFor) {
			return true, status, nil
		}
		return false, normalStatus, nil
	case StatusReturn:
		return true, status, nil
	default:
		return false, normalStatus, nil
	}
}

func execTry(e *Engine, ctx *Context, st *ast.TryStatement) (Status, *Exception) {
	status, exc := ExecBlock(e, ctx, st.Body)
	if exc == nil {
		return status, nil
	}
	if exc.Fatal {
		return normalStatus, exc
	}

	catchCtx := NewChildContext(ctx)
	if st.ExceptionName != "" {
		catchCtx.Declare(st.ExceptionName, exc.Thrown, false)
	}
	backtraceItems := make([]value.Value, len(exc.Backtrace))
	for i, f := range exc.Backtrace {
		data := value.NewObjectData()
		data.Set("file", value.NewString(f.File))
		data.Set("line", value.NewInt(int64(f.Line)))
		data.Set("func", value.NewString(f.Func))
		backtraceItems[i] = value.NewObject(data)
	}
	catchCtx.DeclareReserved(reservedBacktrace, value.NewArray(backtraceItems))

	return execStatements(e, catchCtx, st.Catch.Statements)
}

func execThrow(e *Engine, ctx *Context, st *ast.ThrowStatement) (Status, *Exception) {
	r, exc := EvalExpr(e, ctx, st.Expr)
	if exc != nil {
		return normalStatus, exc
	}
	v, err := r.Read()
	if err != nil {
		return normalStatus, throwString(err.Error())
	}
	return normalStatus, &Exception{Thrown: v, Backtrace: e.backtrace()}
}

func execReturn(e *Engine, ctx *Context, st *ast.ReturnStatement) (Status, *Exception) {
	if st.Expr == nil {
		return Status{Kind: StatusReturn, ReturnRef: ref.NewTemporary(value.NewNull())}, nil
	}
	r, exc := EvalExpr(e, ctx, st.Expr)
	if exc != nil {
		return normalStatus, exc
	}
	if st.ByRef {
		return Status{Kind: StatusReturn, ReturnRef: r}, nil
	}
	materialized, err := r.Materialize()
	if err != nil {
		return normalStatus, throwString(err.Error())
	}
	return Status{Kind: StatusReturn, ReturnRef: materialized}, nil
}

func execAssert(e *Engine, ctx *Context, st *ast.AssertStatement) (Status, *Exception) {
	r, exc := EvalExpr(e, ctx, st.Expr)
	if exc != nil {
		return normalStatus, exc
	}
	v, err := r.Read()
	if err != nil {
		return normalStatus, throwString(err.Error())
	}
	failed := !v.Truthy()
	if st.Negate {
		failed = !failed
	}
	if !failed {
		return normalStatus, nil
	}

	msg := "assertion failed"
	if st.Message != nil {
		mr, exc := EvalExpr(e, ctx, st.Message)
		if exc != nil {
			return normalStatus, exc
		}
		mv, err := mr.Read()
		if err != nil {
			return normalStatus, throwString(err.Error())
		}
		msg = mv.Dump() + ": assertion failed"
	}
	pos := st.Position
	return normalStatus, &Exception{
		Thrown:    value.NewString(diagLocate(e, pos, msg)),
		Backtrace: e.backtrace(),
	}
}

func diagLocate(e *Engine, pos lexer.Position, msg string) string {
	if e.File == "" {
		return msg
	}
	return msg + " (" + e.File + ")"
}

func execDefer(e *Engine, ctx *Context, st *ast.DeferStatement) (Status, *Exception) {
	// `defer f();` registers f itself: a trailing zero-argument call is
	// dropped, so the callee runs at teardown instead of right now.
	expr := st.Expr
	if n := len(expr); n > 0 {
		if call, ok := expr[n-1].(*ast.FunctionCall); ok && call.ArgCount == 0 {
			expr = expr[:n-1]
		}
	}
	r, exc := EvalExpr(e, ctx, expr)
	if exc != nil {
		return normalStatus, exc
	}
	v, err := r.Read()
	if err != nil {
		return normalStatus, throwString(err.Error())
	}
	if v.Kind() != value.Function {
		return normalStatus, throwStringf("defer requires a function value, got %s", v.TypeName())
	}
	frame := e.currentFrame()
	if frame == nil {
		return normalStatus, throwStringf("defer used outside of a function body")
	}
	frame.defers = append(frame.defers, v)
	return normalStatus, nil
}

const reservedBacktrace = "__backtrace"

// runDefers invokes frame's registered defer callbacks in LIFO order; an
// exception escaping a deferred callback is recorded as a "defer callback
// failed" warning in the returned slice (callFunction appends it to
// Engine.DeferWarnings) rather than propagated, so teardown of one callback never prevents the rest from
// running. Defers live on the per-invocation callFrame rather than the
// shared *Function, so a recursive or re-entrant call only ever drains
// its own registrations.
func runDefers(e *Engine, frame *callFrame) []string {
	var warnings []string
	for i := len(frame.defers) - 1; i >= 0; i-- {
		cb := frame.defers[i]
		closure, ok := asFunction(cb)
		if !ok {
			continue
		}
		if _, exc := callFunction(e, closure, nil, nil, lexer.Position{}); exc != nil {
			warnings = append(warnings, "defer callback failed: "+exc.Error())
		}
	}
	frame.defers = nil
	return warnings
}
