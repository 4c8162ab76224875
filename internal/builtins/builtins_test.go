package builtins_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cwbudde/scriptcore/internal/builtins"
	"github.com/cwbudde/scriptcore/pkg/script"
)

func runOutput(t *testing.T, source string) string {
	t.Helper()
	prog, errs := script.Compile(source, "builtins_test.sc")
	if len(errs) > 0 {
		var sb strings.Builder
		for _, e := range errs {
			sb.WriteString(e.Description)
			sb.WriteString("\n")
		}
		t.Fatalf("unexpected compile errors:\n%s", sb.String())
	}

	var out bytes.Buffer
	global := script.NewGlobalContext("builtins_test.sc", source)
	builtins.Register(global.Context(), &out)

	if _, exc := prog.Execute(global, nil); exc != nil {
		t.Fatalf("unexpected exception: %s", exc.Error())
	}
	return out.String()
}

func TestRegisterIO(t *testing.T) {
	tests := []struct {
		name, source, want string
	}{
		{"print no newline", `print("a", "b");`, "a b"},
		{"println adds newline", `println("hello");`, "hello\n"},
		{"non-string uses Dump", `println(42);`, "42\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := runOutput(t, tt.source); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRegisterConversion(t *testing.T) {
	tests := []struct {
		name, source, want string
	}{
		{"to_string int", `println(to_string(42));`, "42\n"},
		{"to_int string", `println(to_int("7"));`, "7\n"},
		{"to_real string", `println(to_real("1.5"));`, "1.5\n"},
		{"to_bool truthy int", `println(to_bool(1));`, "true\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := runOutput(t, tt.source); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRegisterString(t *testing.T) {
	tests := []struct {
		name, source, want string
	}{
		{"upper_case", `println(upper_case("abc"));`, "ABC\n"},
		{"lower_case", `println(lower_case("ABC"));`, "abc\n"},
		{"trim", `println(trim("  hi  "));`, "hi\n"},
		{"substr", `println(substr("hello", 1, 3));`, "ell\n"},
		{"index_of", `println(index_of("hello", "ll"));`, "2\n"},
		{"replace", `println(replace("aXaXa", "X", "-"));`, "a-a-a\n"},
		{"join", `println(join(split("a,b,c", ","), "-"));`, "a-b-c\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := runOutput(t, tt.source); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRegisterMath(t *testing.T) {
	tests := []struct {
		name, source, want string
	}{
		{"min ints", `println(min(3, 1));`, "1\n"},
		{"max ints", `println(max(3, 1));`, "3\n"},
		{"pow", `println(pow(2, 10));`, "1024\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := runOutput(t, tt.source); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRegisterArray(t *testing.T) {
	tests := []struct {
		name, source, want string
	}{
		{"push returns new length", `var a = [1, 2]; println(push(a, 3));`, "3\n"},
		{"push mutates in place", `var a = [1, 2]; push(&a, 3); println(a[2]);`, "3\n"},
		{"pop returns last item", `var a = [1, 2, 3]; println(pop(a));`, "3\n"},
		{"pop shrinks array", `var a = [1, 2, 3]; pop(&a); println(lengthof(a));`, "2\n"},
		{"sort ascending", `var a = [3, 1, 2]; var s = sort(a); println(s[0]); println(s[1]); println(s[2]);`, "1\n2\n3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := runOutput(t, tt.source); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestArrayBuiltinErrors(t *testing.T) {
	tests := []struct {
		name, source string
	}{
		{"pop empty array", `pop([]);`},
		{"push wrong arg count", `push([1]);`},
		{"sort non-array", `sort(5);`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog, errs := script.Compile(tt.source, "builtins_test.sc")
			if len(errs) > 0 {
				t.Fatalf("unexpected compile errors: %v", errs)
			}
			var out bytes.Buffer
			global := script.NewGlobalContext("builtins_test.sc", tt.source)
			builtins.Register(global.Context(), &out)
			if _, exc := prog.Execute(global, nil); exc == nil {
				t.Fatalf("expected an exception, got none")
			}
		})
	}
}
