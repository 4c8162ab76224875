package interp_test

import (
	"testing"

	"github.com/cwbudde/scriptcore/internal/interp"
	"github.com/cwbudde/scriptcore/internal/lexer"
	"github.com/cwbudde/scriptcore/internal/parser"
	"github.com/cwbudde/scriptcore/internal/ref"
	"github.com/cwbudde/scriptcore/internal/value"
)

// run compiles source through the real lexer/parser and executes it as a
// Program against a fresh global context, the same path pkg/script's
// driver will take — exercising the binder, evaluator, and executor
// together rather than any one of them in isolation.
func run(t *testing.T, source string, args ...*ref.Reference) (value.Value, *interp.Exception) {
	t.Helper()
	p := parser.New(lexer.New(source), source, "test.sc")
	prog := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("unexpected parse errors for %q: %v", source, errs)
	}

	global := interp.NewGlobalContext()
	e := interp.NewEngine("test.sc", source)
	result, exc := interp.NewProgram(prog).Execute(e, global, args)
	if exc != nil {
		return value.Value{}, exc
	}
	v, err := result.Read()
	if err != nil {
		t.Fatalf("unexpected read error: %v", err)
	}
	return v, nil
}

func TestRunFibonacci(t *testing.T) {
	v, exc := run(t, `
		func fib(n) {
			if (n < 2) return n;
			return fib(n - 1) + fib(n - 2);
		}
		return fib(10);
	`)
	if exc != nil {
		t.Fatalf("unexpected exception: %v", exc)
	}
	if v.Kind() != value.Int || v.Int() != 55 {
		t.Errorf("fib(10) = %v, want 55", v.Dump())
	}
}

func TestRunIntegerOverflowThrows(t *testing.T) {
	_, exc := run(t, `return 9223372036854775807 + 1;`)
	if exc == nil {
		t.Fatal("expected an overflow exception")
	}
	if exc.Fatal {
		t.Error("an arithmetic overflow is catchable, not fatal")
	}
}

func TestRunSwitchFallThrough(t *testing.T) {
	v, exc := run(t, `
		var out = "";
		switch (2) {
		case 1:
			out += "a";
		case 2:
			out += "b";
		case 3:
			out += "c";
			break;
		default:
			out += "d";
		}
		return out;
	`)
	if exc != nil {
		t.Fatalf("unexpected exception: %v", exc)
	}
	if v.Str() != "bc" {
		t.Errorf("got %q, want %q (fall through from case 2 into case 3, stopping at break)", v.Str(), "bc")
	}
}

func TestRunSwitchFlyOverSkippedClauseDeclarations(t *testing.T) {
	// case 1's `var y` is never executed, but fall-through from a later
	// clause reaching it must still see y declared (as null), not throw
	// an undefined-name error.
	v, exc := run(t, `
		switch (2) {
		case 1:
			var y = 5;
			break;
		case 2:
			return y;
		}
	`)
	if exc != nil {
		t.Fatalf("unexpected exception: %v", exc)
	}
	if v.Kind() != value.Null {
		t.Errorf("got %s, want null (y's clause was skipped, so it was never assigned)", v.Dump())
	}
}

func TestRunSwitchFlyOverStopsEvaluatingLaterCaseExpressions(t *testing.T) {
	// Once case 2 matches, case 3's expression must never be evaluated —
	// its side effect (appending "c") should not run even though it
	// physically follows the matched clause in the clause list.
	v, exc := run(t, `
		var out = "";
		func sideEffect() {
			out += "c";
			return 3;
		}
		switch (2) {
		case 1:
			out += "a";
			break;
		case 2:
			out += "b";
			break;
		case sideEffect():
			out += "x";
			break;
		}
		return out;
	`)
	if exc != nil {
		t.Fatalf("unexpected exception: %v", exc)
	}
	if v.Str() != "b" {
		t.Errorf("got %q, want %q (case sideEffect() must not run once case 2 matched)", v.Str(), "b")
	}
}

func TestRunObjectIterationInsertionOrder(t *testing.T) {
	v, exc := run(t, `
		var o = { x: 1, y: 2 };
		var out = "";
		for each (k, val : o) {
			out += k;
		}
		return out;
	`)
	if exc != nil {
		t.Fatalf("unexpected exception: %v", exc)
	}
	if v.Str() != "xy" {
		t.Errorf("got %q, want %q (insertion order)", v.Str(), "xy")
	}
}

func TestRunForEachLiveValueBinding(t *testing.T) {
	v, exc := run(t, `
		var a = [1, 2, 3];
		for each (val : a) {
			val = val * 10;
		}
		var out = "";
		for each (val : a) {
			out += lengthof(out) == 0 ? "" : ",";
		}
		return a;
	`)
	if exc != nil {
		t.Fatalf("unexpected exception: %v", exc)
	}
	if v.Kind() != value.Array {
		t.Fatalf("expected an array result, got %s", v.TypeName())
	}
	items := v.ArrayData().Items
	want := []int64{10, 20, 30}
	for i, w := range want {
		if items[i].Int() != w {
			t.Errorf("a[%d] = %d, want %d (for-each value name must bind a live reference into the array)", i, items[i].Int(), w)
		}
	}
}

func TestRunTryCatchBacktrace(t *testing.T) {
	v, exc := run(t, `
		func inner() {
			throw "boom";
		}
		func outer() {
			inner();
		}
		try {
			outer();
		} catch (e) {
			return lengthof(__backtrace) >= 2 ? e : "no backtrace";
		}
	`)
	if exc != nil {
		t.Fatalf("unexpected exception: %v", exc)
	}
	if v.Str() != "boom" {
		t.Errorf("got %q, want %q — caught value plus at least a two-frame backtrace (inner, outer)", v.Dump(), "boom")
	}
}

func TestRunDeferLIFO(t *testing.T) {
	v, exc := run(t, `
		var out = "";
		func run() {
			defer func() { out += "1"; }();
			defer func() { out += "2"; }();
			defer func() { out += "3"; }();
		}
		run();
		return out;
	`)
	if exc != nil {
		t.Fatalf("unexpected exception: %v", exc)
	}
	if v.Str() != "321" {
		t.Errorf("got %q, want %q (defers run LIFO)", v.Str(), "321")
	}
}

func TestRunDeferIsPerInvocationNotPerFunction(t *testing.T) {
	// f is one persistent *Function shared by every recursive call
	// (f(2) -> f(1) -> f(0)); each call's own defer must fire at that
	// call's own return, interleaved with each frame's own post-recursion
	// statement, rather than all three draining at once at the innermost
	// return (which is what happens if defers are stored on the shared
	// *Function instead of a per-call frame).
	v, exc := run(t, `
		var out = [-1, -1, -1, -1, -1, -1, -1];
		var idx = 0;
		func record(v) {
			out[idx] = v;
			idx = idx + 1;
		}
		func f(n) {
			defer func() { record(n); }();
			if (n > 0) {
				f(n - 1);
			}
			record(-(n + 10));
		}
		f(2);
		return out;
	`)
	if exc != nil {
		t.Fatalf("unexpected exception: %v", exc)
	}
	if v.Kind() != value.Array {
		t.Fatalf("expected an array result, got %s", v.TypeName())
	}
	items := v.ArrayData().Items
	want := []int64{-10, 0, -11, 1, -12, 2, -1}
	if len(items) != len(want) {
		t.Fatalf("got %d items, want %d", len(items), len(want))
	}
	for i, w := range want {
		if items[i].Int() != w {
			t.Errorf("out[%d] = %d, want %d (full sequence %v)", i, items[i].Int(), w, dumpInts(items))
		}
	}
}

func dumpInts(items []value.Value) []int64 {
	out := make([]int64, len(items))
	for i, v := range items {
		out[i] = v.Int()
	}
	return out
}

func TestRunVariadicVarg(t *testing.T) {
	v, exc := run(t, `
		func sum(...) {
			var total = 0;
			for each (arg : __varg) {
				total += arg;
			}
			return total;
		}
		return sum(1, 2, 3, 4);
	`)
	if exc != nil {
		t.Fatalf("unexpected exception: %v", exc)
	}
	if v.Int() != 10 {
		t.Errorf("got %d, want 10", v.Int())
	}
}

func TestRunProgramArgsExposedThroughVarg(t *testing.T) {
	args := []*ref.Reference{
		ref.NewTemporary(value.NewString("a")),
		ref.NewTemporary(value.NewString("b")),
	}
	v, exc := run(t, `return lengthof(__varg);`, args...)
	if exc != nil {
		t.Fatalf("unexpected exception: %v", exc)
	}
	if v.Int() != 2 {
		t.Errorf("Program.Execute's args should flow through __varg, got lengthof %d", v.Int())
	}
}

func TestRunClosureCapturesEnclosingVariable(t *testing.T) {
	v, exc := run(t, `
		func makeCounter() {
			var n = 0;
			return func() {
				n = n + 1;
				return n;
			};
		}
		var counter = makeCounter();
		counter();
		counter();
		return counter();
	`)
	if exc != nil {
		t.Fatalf("unexpected exception: %v", exc)
	}
	if v.Int() != 3 {
		t.Errorf("closure should capture and mutate its own persistent n, got %d", v.Int())
	}
}

func TestRunBreakOutsideLoopIsFatal(t *testing.T) {
	_, exc := run(t, `
		func bad() {
			break;
		}
		bad();
	`)
	if exc == nil {
		t.Fatal("expected a fatal exception")
	}
	if !exc.Fatal {
		t.Error("break escaping a function body should be fatal, not catchable")
	}
}

func TestRunAssertFailureThrows(t *testing.T) {
	_, exc := run(t, `assert(1 == 2, "one is not two");`)
	if exc == nil {
		t.Fatal("expected an assertion exception")
	}
}

func TestRunReservedNameRedeclarationThrows(t *testing.T) {
	_, exc := run(t, `var __this = 1;`)
	if exc == nil {
		t.Fatal("declaring a reserved name should throw")
	}
}
