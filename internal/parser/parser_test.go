package parser

import (
	"testing"

	"github.com/cwbudde/scriptcore/internal/ast"
	"github.com/cwbudde/scriptcore/internal/lexer"
)

func parse(t *testing.T, source string) *ast.Program {
	t.Helper()
	p := New(lexer.New(source), source, "test.sc")
	prog := p.ParseProgram()
	if len(p.Errors()) > 0 {
		t.Fatalf("unexpected parse errors for %q: %v", source, p.Errors())
	}
	return prog
}

func exprStmt(t *testing.T, prog *ast.Program) ast.Expr {
	t.Helper()
	if len(prog.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(prog.Statements))
	}
	es, ok := prog.Statements[0].(*ast.ExpressionStatement)
	if !ok {
		t.Fatalf("expected ExpressionStatement, got %T", prog.Statements[0])
	}
	return es.Expr
}

func lastOpcode(t *testing.T, units ast.Expr) ast.Opcode {
	t.Helper()
	last := units[len(units)-1]
	op, ok := last.(*ast.OperatorRPN)
	if !ok {
		t.Fatalf("expected last unit to be OperatorRPN, got %T", last)
	}
	return op.Op
}

func TestArithmeticPrecedence(t *testing.T) {
	// 1 + 2 * 3 should RPN as [1 2 3 * +]: multiplication binds tighter.
	units := exprStmt(t, parse(t, "1 + 2 * 3;"))
	if len(units) != 5 {
		t.Fatalf("expected 5 units, got %d: %s", len(units), units.String())
	}
	mul, ok := units[3].(*ast.OperatorRPN)
	if !ok || mul.Op != ast.OpMul {
		t.Fatalf("expected unit 3 to be OpMul, got %#v", units[3])
	}
	add, ok := units[4].(*ast.OperatorRPN)
	if !ok || add.Op != ast.OpAdd {
		t.Fatalf("expected unit 4 to be OpAdd, got %#v", units[4])
	}
}

func TestAssignmentIsLowestAndRightAssociative(t *testing.T) {
	// a = b = c should parse as a single chained assignment, not (a=b)=c.
	units := exprStmt(t, parse(t, "a = b = c;"))
	count := 0
	for _, u := range units {
		if op, ok := u.(*ast.OperatorRPN); ok && op.Op == ast.OpAssign {
			count++
			if !op.Assign {
				t.Fatalf("OpAssign unit must carry Assign=true")
			}
		}
	}
	if count != 2 {
		t.Fatalf("expected 2 OpAssign units for a = b = c, got %d", count)
	}
	if len(units) != 5 {
		t.Fatalf("expected 5 units for a = b = c, got %d: %s", len(units), units.String())
	}
	for _, i := range []int{3, 4} {
		if op, ok := units[i].(*ast.OperatorRPN); !ok || op.Op != ast.OpAssign {
			t.Fatalf("expected [a b c = =] (b = c grouped first), got %s", units.String())
		}
	}
}

func TestCompoundAssignOpcodeMapping(t *testing.T) {
	cases := map[string]ast.Opcode{
		"a += 1;":  ast.OpAdd,
		"a -= 1;":  ast.OpSub,
		"a *= 1;":  ast.OpMul,
		"a /= 1;":  ast.OpDiv,
		"a %= 1;":  ast.OpMod,
		"a <<= 1;": ast.OpShl,
		"a >>= 1;": ast.OpShr,
		"a &= 1;":  ast.OpBitAnd,
		"a ^= 1;":  ast.OpBitXor,
		"a |= 1;":  ast.OpBitOr,
	}
	for src, want := range cases {
		units := exprStmt(t, parse(t, src))
		op, ok := units[len(units)-1].(*ast.OperatorRPN)
		if !ok || !op.Assign || op.Op != want {
			t.Fatalf("%q: expected assign opcode %s, got %#v", src, want, units[len(units)-1])
		}
	}
}

func TestLogicalAndLowersToBranch(t *testing.T) {
	units := exprStmt(t, parse(t, "a && b;"))
	last := units[len(units)-1]
	branch, ok := last.(*ast.Branch)
	if !ok {
		t.Fatalf("expected Branch unit for &&, got %T", last)
	}
	if branch.True == nil || branch.False != nil {
		t.Fatalf("&& must set True and leave False nil, got %#v", branch)
	}
}

func TestLogicalOrLowersToBranch(t *testing.T) {
	units := exprStmt(t, parse(t, "a || b;"))
	branch, ok := units[len(units)-1].(*ast.Branch)
	if !ok {
		t.Fatalf("expected Branch unit for ||, got %T", units[len(units)-1])
	}
	if branch.False == nil || branch.True != nil {
		t.Fatalf("|| must set False and leave True nil, got %#v", branch)
	}
}

func TestTernaryAssignSetsAssignFlag(t *testing.T) {
	units := exprStmt(t, parse(t, "a ?= b : c;"))
	branch, ok := units[len(units)-1].(*ast.Branch)
	if !ok || !branch.Assign {
		t.Fatalf("expected Branch with Assign=true for ?=, got %#v", units[len(units)-1])
	}
}

func TestCoalesce(t *testing.T) {
	units := exprStmt(t, parse(t, "a ?? b;"))
	co, ok := units[len(units)-1].(*ast.Coalescence)
	if !ok || co.Assign {
		t.Fatalf("expected Coalescence with Assign=false for ??, got %#v", units[len(units)-1])
	}
}

func TestIndexVsMemberAccess(t *testing.T) {
	units := exprStmt(t, parse(t, "a[0];"))
	if _, ok := units[len(units)-1].(*ast.OperatorRPN); !ok {
		t.Fatalf("a[0] should end in OperatorRPN{OpIndex}, got %T", units[len(units)-1])
	}
	if lastOpcode(t, units) != ast.OpIndex {
		t.Fatalf("expected OpIndex")
	}

	units2 := exprStmt(t, parse(t, "a.b;"))
	if _, ok := units2[len(units2)-1].(*ast.MemberAccess); !ok {
		t.Fatalf("a.b should end in MemberAccess, got %T", units2[len(units2)-1])
	}
}

func TestCallArgumentsMaterializeUnlessByRef(t *testing.T) {
	units := exprStmt(t, parse(t, "f(a, &b);"))
	call, ok := units[len(units)-1].(*ast.FunctionCall)
	if !ok {
		t.Fatalf("expected FunctionCall unit, got %T", units[len(units)-1])
	}
	if call.ArgCount != 2 {
		t.Fatalf("expected ArgCount 2, got %d", call.ArgCount)
	}
	if call.ByRef[0] || !call.ByRef[1] {
		t.Fatalf("expected ByRef = [false, true], got %v", call.ByRef)
	}

	foundMaterialize := false
	for _, u := range units {
		if op, ok := u.(*ast.OperatorRPN); ok && op.Op == ast.OpMaterialize {
			foundMaterialize = true
		}
	}
	if !foundMaterialize {
		t.Fatalf("expected an OpMaterialize unit for the non-ref argument")
	}
}

func TestArrayAndObjectLiterals(t *testing.T) {
	units := exprStmt(t, parse(t, "[1, 2, 3];"))
	arr, ok := units[len(units)-1].(*ast.UnnamedArray)
	if !ok || arr.ElementCount != 3 {
		t.Fatalf("expected UnnamedArray(3), got %#v", units[len(units)-1])
	}

	units2 := exprStmt(t, parse(t, `{ a: 1, b: 2 };`))
	obj, ok := units2[len(units2)-1].(*ast.UnnamedObject)
	if !ok || len(obj.Keys) != 2 || obj.Keys[0] != "a" || obj.Keys[1] != "b" {
		t.Fatalf("expected UnnamedObject([a b]), got %#v", units2[len(units2)-1])
	}
}

func TestFmaIsTernaryDispatch(t *testing.T) {
	units := exprStmt(t, parse(t, "__fma(a, b, c);"))
	if lastOpcode(t, units) != ast.OpFma {
		t.Fatalf("expected trailing OpFma unit, got %#v", units[len(units)-1])
	}
}

func TestIntegerAndFloatLiterals(t *testing.T) {
	units := exprStmt(t, parse(t, "0x1_00;"))
	lit, ok := units[0].(*ast.Literal)
	if !ok {
		t.Fatalf("expected Literal, got %T", units[0])
	}
	if lit.Value.Dump() != "256" {
		t.Fatalf("expected 0x1_00 == 256, got %s", lit.Value.Dump())
	}

	units2 := exprStmt(t, parse(t, "1.5e2;"))
	lit2 := units2[0].(*ast.Literal)
	if lit2.Value.Dump() != "150" {
		t.Fatalf("expected 1.5e2 == 150, got %s", lit2.Value.Dump())
	}
}

func TestVarDeclMultipleNames(t *testing.T) {
	prog := parse(t, "var a = 1, b, c = 2;")
	decl := prog.Statements[0].(*ast.VarDecl)
	if len(decl.Names) != 3 || decl.Names[1] != "b" {
		t.Fatalf("expected 3 names with b unset, got %#v", decl.Names)
	}
	if decl.Initializers[1] != nil {
		t.Fatalf("expected nil initializer for b, got %#v", decl.Initializers[1])
	}
}

func TestFuncDeclWithVariadic(t *testing.T) {
	prog := parse(t, "func f(a, b, ...) { return a; }")
	fn := prog.Statements[0].(*ast.FuncDecl)
	if fn.Header.Name != "f" || !fn.Header.Variadic {
		t.Fatalf("expected variadic func f, got %#v", fn.Header)
	}
	if len(fn.Header.Params) != 2 {
		t.Fatalf("expected 2 named params, got %v", fn.Header.Params)
	}
}

func TestIfElse(t *testing.T) {
	prog := parse(t, "if (!a) { x; } else { y; }")
	ifs := prog.Statements[0].(*ast.IfStatement)
	if !ifs.Negate {
		t.Fatalf("expected Negate=true for if (!a)")
	}
	if ifs.Else == nil {
		t.Fatalf("expected an else branch")
	}
}

func TestSwitchFallThroughClauses(t *testing.T) {
	prog := parse(t, `switch (x) { case 1: a; case 2: b; default: c; }`)
	sw := prog.Statements[0].(*ast.SwitchStatement)
	if len(sw.Clauses) != 3 {
		t.Fatalf("expected 3 clauses, got %d", len(sw.Clauses))
	}
	if sw.Clauses[2].Expr != nil {
		t.Fatalf("expected default clause to have nil Expr")
	}
}

func TestForThreeClause(t *testing.T) {
	prog := parse(t, "for (var i = 0; i < 10; i += 1) { x; }")
	f := prog.Statements[0].(*ast.ForStatement)
	if f.Init == nil || f.Condition == nil || f.Step == nil {
		t.Fatalf("expected all three for-clauses populated, got %#v", f)
	}
}

func TestForEachWithKeyAndValue(t *testing.T) {
	prog := parse(t, "for each(k, v : arr) { x; }")
	fe := prog.Statements[0].(*ast.ForEachStatement)
	if fe.KeyName != "k" || fe.ValueName != "v" {
		t.Fatalf("expected key=k value=v, got %#v", fe)
	}
}

func TestForEachValueOnly(t *testing.T) {
	prog := parse(t, "for each(v : arr) { x; }")
	fe := prog.Statements[0].(*ast.ForEachStatement)
	if fe.KeyName != "" || fe.ValueName != "v" {
		t.Fatalf("expected bare value binding, got %#v", fe)
	}
}

func TestTryCatch(t *testing.T) {
	prog := parse(t, "try { risky(); } catch (e) { handle(e); }")
	ts := prog.Statements[0].(*ast.TryStatement)
	if ts.ExceptionName != "e" {
		t.Fatalf("expected exception name e, got %q", ts.ExceptionName)
	}
}

func TestBreakContinueWithTarget(t *testing.T) {
	prog := parse(t, "while (true) { switch (x) { case 1: break switch; } }")
	ws := prog.Statements[0].(*ast.WhileStatement)
	block := ws.Body.(*ast.Block)
	sw := block.Statements[0].(*ast.SwitchStatement)
	brk := sw.Clauses[0].Body[0].(*ast.BreakStatement)
	if brk.Target != ast.TargetSwitch {
		t.Fatalf("expected TargetSwitch, got %v", brk.Target)
	}
}

func TestReturnByRef(t *testing.T) {
	prog := parse(t, "func f() { return &x; }")
	fn := prog.Statements[0].(*ast.FuncDecl)
	ret := fn.Body.Statements[0].(*ast.ReturnStatement)
	if !ret.ByRef {
		t.Fatalf("expected ByRef=true for return &x")
	}
}

func TestReturnBare(t *testing.T) {
	prog := parse(t, "func f() { return; }")
	fn := prog.Statements[0].(*ast.FuncDecl)
	ret := fn.Body.Statements[0].(*ast.ReturnStatement)
	if ret.Expr != nil {
		t.Fatalf("expected nil Expr for bare return, got %#v", ret.Expr)
	}
}

func TestAssertWithMessage(t *testing.T) {
	prog := parse(t, `assert(x > 0, "must be positive");`)
	a := prog.Statements[0].(*ast.AssertStatement)
	if a.Message == nil {
		t.Fatalf("expected a message expression")
	}
}

func TestDeferStatement(t *testing.T) {
	prog := parse(t, "defer cleanup();")
	if _, ok := prog.Statements[0].(*ast.DeferStatement); !ok {
		t.Fatalf("expected DeferStatement, got %T", prog.Statements[0])
	}
}

func TestParserRecordsErrorOnMalformedExpression(t *testing.T) {
	p := New(lexer.New("1 +;"), "1 +;", "test.sc")
	p.ParseProgram()
	if len(p.Errors()) == 0 {
		t.Fatalf("expected a parse error for '1 +;'")
	}
}

func TestIntegerLiteralAtMaxInt64Parses(t *testing.T) {
	units := exprStmt(t, parse(t, "9223372036854775807;"))
	lit, ok := units[0].(*ast.Literal)
	if !ok {
		t.Fatalf("expected Literal, got %T", units[0])
	}
	if lit.Value.Int() != 9223372036854775807 {
		t.Fatalf("expected MaxInt64, got %s", lit.Value.Dump())
	}
}

func TestIntegerLiteralOverflowIsParseError(t *testing.T) {
	// MaxUint64 (2^64-1): fits in a uint64 but has no bare (unsigned)
	// int64 representation, so it must be a parse error rather than
	// silently wrapping negative.
	src := "18446744073709551615;"
	p := New(lexer.New(src), src, "test.sc")
	p.ParseProgram()
	if len(p.Errors()) == 0 {
		t.Fatalf("expected a parse error for integer literal overflow")
	}
}
