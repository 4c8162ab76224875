package interp

import (
	"math"

	"github.com/cwbudde/scriptcore/internal/ast"
	"github.com/cwbudde/scriptcore/internal/ref"
	"github.com/cwbudde/scriptcore/internal/value"
)

// refStack is the evaluator's working stack (spec.md §4.7): "Evaluation
// consumes an Expression-Unit vector and maintains a stack of
// References."
type refStack []*ref.Reference

func (s *refStack) push(r *ref.Reference) { *s = append(*s, r) }

func (s *refStack) pop() *ref.Reference {
	old := *s
	n := len(old)
	r := old[n-1]
	*s = old[:n-1]
	return r
}

// popN pops n references, returning them in their original (pushed)
// order.
func (s *refStack) popN(n int) []*ref.Reference {
	old := *s
	at := len(old) - n
	out := make([]*ref.Reference, n)
	copy(out, old[at:])
	*s = old[:at]
	return out
}

// EvalExpr runs expr's unit vector against a fresh stack and returns the
// single Reference left behind (spec.md §4.7's stack-discipline
// invariant); anything else is a fatal (non-catchable) bug, per spec.md
// §7, not a thrown value.
func EvalExpr(e *Engine, ctx *Context, expr ast.Expr) (*ref.Reference, *Exception) {
	var stack refStack
	for _, unit := range expr {
		if exc := evalUnit(e, ctx, &stack, unit); exc != nil {
			return nil, exc
		}
	}
	if len(stack) != 1 {
		exc := throwStringf("stack discipline violated: expression left %d references, expected 1", len(stack))
		exc.Fatal = true
		return nil, exc
	}
	return stack[0], nil
}

func evalUnit(e *Engine, ctx *Context, stack *refStack, unit ast.Unit) *Exception {
	switch u := unit.(type) {
	case *ast.Literal:
		stack.push(ref.NewConstant(u.Value))
		return nil

	case *ast.NamedReference:
		r := ctx.LookupReference(u.Name)
		if r == nil {
			return throwStringf("undefined name %q", u.Name)
		}
		stack.push(r)
		return nil

	case *ast.BoundReference:
		stack.push(u.Ref)
		return nil

	case *ast.ClosureFunction:
		fn := NewClosure(e, u.Header, u.Body, ctx)
		stack.push(ref.NewTemporary(fn.Value()))
		return nil

	case *ast.FunctionCall:
		return evalCall(e, stack, u)

	case *ast.MemberAccess:
		parent := stack.pop()
		stack.push(parent.ZoomIn(ref.KeyMod(u.Key)))
		return nil

	case *ast.UnnamedArray:
		items := make([]value.Value, u.ElementCount)
		refs := stack.popN(u.ElementCount)
		for i, r := range refs {
			v, err := r.Read()
			if err != nil {
				return throwString(err.Error())
			}
			items[i] = v
		}
		stack.push(ref.NewTemporary(value.NewArray(items)))
		return nil

	case *ast.UnnamedObject:
		refs := stack.popN(len(u.Keys))
		data := value.NewObjectData()
		for i, key := range u.Keys {
			v, err := refs[i].Read()
			if err != nil {
				return throwString(err.Error())
			}
			data.Set(key, v)
		}
		stack.push(ref.NewTemporary(value.NewObject(data)))
		return nil

	case *ast.Branch:
		return evalBranch(e, ctx, stack, u)

	case *ast.Coalescence:
		return evalCoalescence(e, ctx, stack, u)

	case *ast.OperatorRPN:
		return evalOperator(stack, u)

	default:
		exc := throwStringf("unreachable expression unit %T", unit)
		exc.Fatal = true
		return exc
	}
}

func evalCall(e *Engine, stack *refStack, u *ast.FunctionCall) *Exception {
	argRefs := stack.popN(u.ArgCount)
	calleeRef := stack.pop()
	calleeVal, err := calleeRef.Read()
	if err != nil {
		return throwString(err.Error())
	}
	fn, ok := asFunction(calleeVal)
	if !ok {
		return throwStringf("type error: cannot call a %s value", calleeVal.TypeName())
	}

	var selfRef *ref.Reference
	if mods := calleeRef.Modifiers(); len(mods) > 0 {
		selfRef = calleeRef.ZoomOut()
	}

	result, exc := callFunction(e, fn, argRefs, selfRef, u.Position)
	if exc != nil {
		return exc
	}
	stack.push(result)
	return nil
}

func evalBranch(e *Engine, ctx *Context, stack *refStack, u *ast.Branch) *Exception {
	cond := stack.pop()
	condVal, err := cond.Read()
	if err != nil {
		return throwString(err.Error())
	}

	var chosen ast.Expr
	if condVal.Truthy() {
		chosen = u.True
	} else {
		chosen = u.False
	}

	var result *ref.Reference
	if chosen == nil {
		result = cond
	} else {
		r, exc := EvalExpr(e, ctx, chosen)
		if exc != nil {
			return exc
		}
		result = r
	}

	if u.Assign {
		v, err := result.Read()
		if err != nil {
			return throwString(err.Error())
		}
		if err := cond.Write(v); err != nil {
			return throwString(err.Error())
		}
		stack.push(cond)
		return nil
	}
	stack.push(result)
	return nil
}

func evalCoalescence(e *Engine, ctx *Context, stack *refStack, u *ast.Coalescence) *Exception {
	cond := stack.pop()
	condVal, err := cond.Read()
	if err != nil {
		return throwString(err.Error())
	}

	if !condVal.IsNull() {
		stack.push(cond)
		return nil
	}

	result, exc := EvalExpr(e, ctx, u.Right)
	if exc != nil {
		return exc
	}

	if u.Assign {
		v, err := result.Read()
		if err != nil {
			return throwString(err.Error())
		}
		if err := cond.Write(v); err != nil {
			return throwString(err.Error())
		}
		stack.push(cond)
		return nil
	}
	stack.push(result)
	return nil
}

func evalOperator(stack *refStack, u *ast.OperatorRPN) *Exception {
	switch u.Op {
	case ast.OpMaterialize:
		r := stack.pop()
		materialized, err := r.Materialize()
		if err != nil {
			return throwString(err.Error())
		}
		stack.push(materialized)
		return nil

	case ast.OpIndex:
		idxRef := stack.pop()
		containerRef := stack.pop()
		idxVal, err := idxRef.Read()
		if err != nil {
			return throwString(err.Error())
		}
		switch idxVal.Kind() {
		case value.Int:
			stack.push(containerRef.ZoomIn(ref.IndexMod(idxVal.Int())))
		case value.String:
			stack.push(containerRef.ZoomIn(ref.KeyMod(idxVal.Str())))
		default:
			return typeError("[]", idxVal.Kind())
		}
		return nil

	case ast.OpAssign:
		return evalAssign(stack, nil)

	case ast.OpUnset:
		r := stack.pop()
		v, err := r.Unset()
		if err != nil {
			return throwString(err.Error())
		}
		stack.push(ref.NewTemporary(v))
		return nil

	case ast.OpLengthOf:
		r := stack.pop()
		v, err := r.Read()
		if err != nil {
			return throwString(err.Error())
		}
		n, exc := lengthOf(v)
		if exc != nil {
			return exc
		}
		stack.push(ref.NewTemporary(value.NewInt(n)))
		return nil

	case ast.OpTypeOf:
		r := stack.pop()
		v, err := r.Read()
		if err != nil {
			return throwString(err.Error())
		}
		stack.push(ref.NewTemporary(value.NewString(v.TypeName())))
		return nil

	case ast.OpPreInc, ast.OpPreDec, ast.OpPostInc, ast.OpPostDec:
		return evalIncDec(stack, u.Op)

	case ast.OpNeg, ast.OpPos, ast.OpBitNot, ast.OpNot,
		ast.OpAbs, ast.OpSqrt, ast.OpSignb, ast.OpIsNan, ast.OpIsInf,
		ast.OpRound, ast.OpFloor, ast.OpCeil, ast.OpTrunc,
		ast.OpIRound, ast.OpIFloor, ast.OpICeil, ast.OpITrunc:
		return evalUnaryMath(stack, u.Op)

	case ast.OpFma:
		c := stack.pop()
		bArg := stack.pop()
		aArg := stack.pop()
		av, err := aArg.Read()
		if err != nil {
			return throwString(err.Error())
		}
		bv, err := bArg.Read()
		if err != nil {
			return throwString(err.Error())
		}
		cv, err := c.Read()
		if err != nil {
			return throwString(err.Error())
		}
		result, exc := applyFma(av, bv, cv)
		if exc != nil {
			return exc
		}
		stack.push(ref.NewTemporary(result))
		return nil

	default:
		if u.Assign {
			return evalAssign(stack, &u.Op)
		}
		return evalBinary(stack, u.Op)
	}
}

func lengthOf(v value.Value) (int64, *Exception) {
	switch v.Kind() {
	case value.Array:
		return int64(len(v.ArrayData().Items)), nil
	case value.Object:
		return int64(v.ObjectData().Len()), nil
	case value.String:
		return int64(len(v.Str())), nil
	default:
		return 0, typeError("lengthof", v.Kind())
	}
}

// evalAssign implements `=` and every compound-assign form (spec.md
// §4.7's Assignment paragraph): op == nil means plain `=`; otherwise the
// right-hand side is first combined with the left's current value via
// op, then written through. Either way the left Reference's identity is
// preserved on the stack so `a = b = c` and `a += (b += c)` chain.
func evalAssign(stack *refStack, op *ast.Opcode) *Exception {
	rightRef := stack.pop()
	leftRef := stack.pop()

	rv, err := rightRef.Read()
	if err != nil {
		return throwString(err.Error())
	}

	if op != nil {
		lv, err := leftRef.Read()
		if err != nil {
			return throwString(err.Error())
		}
		sym, ok := toOpSymbol(*op)
		if !ok {
			exc := throwStringf("unreachable compound-assign opcode %v", *op)
			exc.Fatal = true
			return exc
		}
		result, exc := applyBinaryArith(sym, lv, rv)
		if exc != nil {
			return exc
		}
		rv = result
	}

	if err := leftRef.Write(rv); err != nil {
		return throwString(err.Error())
	}
	stack.push(leftRef)
	return nil
}

func evalBinary(stack *refStack, op ast.Opcode) *Exception {
	rightRef := stack.pop()
	leftRef := stack.pop()
	lv, err := leftRef.Read()
	if err != nil {
		return throwString(err.Error())
	}
	rv, err := rightRef.Read()
	if err != nil {
		return throwString(err.Error())
	}
	sym, ok := toOpSymbol(op)
	if !ok {
		exc := throwStringf("unreachable binary opcode %v", op)
		exc.Fatal = true
		return exc
	}
	result, exc := applyBinaryArith(sym, lv, rv)
	if exc != nil {
		return exc
	}
	stack.push(ref.NewTemporary(result))
	return nil
}

func toOpSymbol(op ast.Opcode) (opSymbol, bool) {
	switch op {
	case ast.OpAdd:
		return opAdd, true
	case ast.OpSub:
		return opSub, true
	case ast.OpMul:
		return opMul, true
	case ast.OpDiv:
		return opDiv, true
	case ast.OpMod:
		return opMod, true
	case ast.OpShl:
		return opShl, true
	case ast.OpShr:
		return opShr, true
	case ast.OpUshl:
		return opUshl, true
	case ast.OpUshr:
		return opUshr, true
	case ast.OpBitAnd:
		return opBitAnd, true
	case ast.OpBitXor:
		return opBitXor, true
	case ast.OpBitOr:
		return opBitOr, true
	case ast.OpLt:
		return opLt, true
	case ast.OpLe:
		return opLe, true
	case ast.OpGt:
		return opGt, true
	case ast.OpGe:
		return opGe, true
	case ast.OpEq:
		return opEq, true
	case ast.OpNe:
		return opNe, true
	case ast.OpSpaceship:
		return opSpaceship, true
	default:
		return 0, false
	}
}

func evalIncDec(stack *refStack, op ast.Opcode) *Exception {
	r := stack.pop()
	old, err := r.Read()
	if err != nil {
		return throwString(err.Error())
	}

	pre := op == ast.OpPreInc || op == ast.OpPreDec
	inc := op == ast.OpPreInc || op == ast.OpPostInc

	var updated value.Value
	var exc *Exception
	switch old.Kind() {
	case value.Int:
		delta := int64(1)
		if !inc {
			delta = -1
		}
		n, ok := checkedAdd(old.Int(), delta)
		if !ok {
			exc = throwStringf("integer overflow: ++/-- on %d overflows a 64-bit signed integer", old.Int())
			break
		}
		updated = value.NewInt(n)
	case value.Real:
		if inc {
			updated = value.NewReal(old.Real() + 1)
		} else {
			updated = value.NewReal(old.Real() - 1)
		}
	default:
		exc = typeError("++/--", old.Kind())
	}
	if exc != nil {
		return exc
	}

	if err := r.Write(updated); err != nil {
		return throwString(err.Error())
	}
	if pre {
		stack.push(ref.NewTemporary(updated))
	} else {
		stack.push(ref.NewTemporary(old))
	}
	return nil
}

func evalUnaryMath(stack *refStack, op ast.Opcode) *Exception {
	r := stack.pop()
	v, err := r.Read()
	if err != nil {
		return throwString(err.Error())
	}

	var result value.Value
	var exc *Exception
	switch op {
	case ast.OpNeg:
		result, exc = applyNeg(v)
	case ast.OpPos:
		result, exc = applyPos(v)
	case ast.OpBitNot:
		result, exc = applyBitNot(v)
	case ast.OpNot:
		result, exc = applyNot(v)
	case ast.OpAbs:
		result, exc = applyAbs(v)
	case ast.OpSqrt:
		result, exc = applyMathUnary("__sqrt", v, math.Sqrt)
	case ast.OpSignb:
		result, exc = applySignb(v)
	case ast.OpIsNan:
		result, exc = applyIsNan(v)
	case ast.OpIsInf:
		result, exc = applyIsInf(v)
	case ast.OpRound:
		result, exc = applyMathUnary("__round", v, math.Round)
	case ast.OpFloor:
		result, exc = applyMathUnary("__floor", v, math.Floor)
	case ast.OpCeil:
		result, exc = applyMathUnary("__ceil", v, math.Ceil)
	case ast.OpTrunc:
		result, exc = applyMathUnary("__trunc", v, math.Trunc)
	case ast.OpIRound:
		result, exc = applyRoundedInt("__iround", v, math.Round)
	case ast.OpIFloor:
		result, exc = applyRoundedInt("__ifloor", v, math.Floor)
	case ast.OpICeil:
		result, exc = applyRoundedInt("__iceil", v, math.Ceil)
	case ast.OpITrunc:
		result, exc = applyRoundedInt("__itrunc", v, math.Trunc)
	default:
		exc = throwStringf("unreachable unary opcode %v", op)
		exc.Fatal = true
	}
	if exc != nil {
		return exc
	}
	stack.push(ref.NewTemporary(result))
	return nil
}

func applyRoundedInt(name string, v value.Value, fn func(float64) float64) (value.Value, *Exception) {
	r, ok := toReal(v)
	if !ok {
		return value.Value{}, typeError(name, v.Kind())
	}
	return toRoundedInt(name, fn(r))
}
