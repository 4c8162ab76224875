package builtins

import (
	"strings"

	"github.com/cwbudde/scriptcore/internal/interp"
	"github.com/cwbudde/scriptcore/internal/ref"
	"github.com/cwbudde/scriptcore/internal/value"
)

// registerString registers the string-manipulation family: upper_case,
// lower_case, trim, substr, index_of, split, join, replace.
func registerString(global *interp.Context) {
	declare(global, "upper_case", stringUnary("upper_case", strings.ToUpper))
	declare(global, "lower_case", stringUnary("lower_case", strings.ToLower))
	declare(global, "trim", stringUnary("trim", strings.TrimSpace))

	declare(global, "substr", func(e *interp.Engine, args []*ref.Reference) (*ref.Reference, *interp.Exception) {
		if len(args) != 2 && len(args) != 3 {
			return nil, throwf("substr expects 2 or 3 arguments, got %d", len(args))
		}
		s, exc := stringArg(args, 0, "substr")
		if exc != nil {
			return nil, exc
		}
		start, exc := intArg(args, 1, "substr")
		if exc != nil {
			return nil, exc
		}
		length := int64(len(s)) - start
		if len(args) == 3 {
			length, exc = intArg(args, 2, "substr")
			if exc != nil {
				return nil, exc
			}
		}
		if start < 0 {
			start = 0
		}
		if start > int64(len(s)) {
			start = int64(len(s))
		}
		end := start + length
		if length < 0 || end > int64(len(s)) {
			end = int64(len(s))
		}
		if end < start {
			end = start
		}
		return ref.NewTemporary(value.NewString(s[start:end])), nil
	})

	declare(global, "index_of", func(e *interp.Engine, args []*ref.Reference) (*ref.Reference, *interp.Exception) {
		if len(args) != 2 {
			return nil, throwf("index_of expects 2 arguments, got %d", len(args))
		}
		s, exc := stringArg(args, 0, "index_of")
		if exc != nil {
			return nil, exc
		}
		needle, exc := stringArg(args, 1, "index_of")
		if exc != nil {
			return nil, exc
		}
		return ref.NewTemporary(value.NewInt(int64(strings.Index(s, needle)))), nil
	})

	declare(global, "replace", func(e *interp.Engine, args []*ref.Reference) (*ref.Reference, *interp.Exception) {
		if len(args) != 3 {
			return nil, throwf("replace expects 3 arguments, got %d", len(args))
		}
		s, exc := stringArg(args, 0, "replace")
		if exc != nil {
			return nil, exc
		}
		from, exc := stringArg(args, 1, "replace")
		if exc != nil {
			return nil, exc
		}
		to, exc := stringArg(args, 2, "replace")
		if exc != nil {
			return nil, exc
		}
		return ref.NewTemporary(value.NewString(strings.ReplaceAll(s, from, to))), nil
	})

	declare(global, "split", func(e *interp.Engine, args []*ref.Reference) (*ref.Reference, *interp.Exception) {
		if len(args) != 2 {
			return nil, throwf("split expects 2 arguments, got %d", len(args))
		}
		s, exc := stringArg(args, 0, "split")
		if exc != nil {
			return nil, exc
		}
		sep, exc := stringArg(args, 1, "split")
		if exc != nil {
			return nil, exc
		}
		parts := strings.Split(s, sep)
		items := make([]value.Value, len(parts))
		for i, p := range parts {
			items[i] = value.NewString(p)
		}
		return ref.NewTemporary(value.NewArray(items)), nil
	})

	declare(global, "join", func(e *interp.Engine, args []*ref.Reference) (*ref.Reference, *interp.Exception) {
		if len(args) != 2 {
			return nil, throwf("join expects 2 arguments, got %d", len(args))
		}
		arrVal, err := args[0].Read()
		if err != nil {
			return nil, throwf("join: %s", err.Error())
		}
		if arrVal.Kind() != value.Array {
			return nil, throwf("join: first argument must be an array, got %s", arrVal.TypeName())
		}
		sep, exc := stringArg(args, 1, "join")
		if exc != nil {
			return nil, exc
		}
		parts := make([]string, 0, len(arrVal.ArrayData().Items))
		for _, item := range arrVal.ArrayData().Items {
			if item.Kind() == value.String {
				parts = append(parts, item.Str())
			} else {
				parts = append(parts, item.Dump())
			}
		}
		return ref.NewTemporary(value.NewString(strings.Join(parts, sep))), nil
	})
}

func stringUnary(name string, fn func(string) string) interp.BuiltinFunc {
	return func(e *interp.Engine, args []*ref.Reference) (*ref.Reference, *interp.Exception) {
		s, exc := stringArg(args, -1, name)
		if exc != nil {
			return nil, exc
		}
		return ref.NewTemporary(value.NewString(fn(s))), nil
	}
}

// stringArg reads args[idx] (or the sole argument when idx < 0) and
// requires it to be a string.
func stringArg(args []*ref.Reference, idx int, name string) (string, *interp.Exception) {
	if idx < 0 {
		if len(args) != 1 {
			return "", throwf("%s expects 1 argument, got %d", name, len(args))
		}
		idx = 0
	}
	if idx >= len(args) {
		return "", throwf("%s: missing argument %d", name, idx)
	}
	v, err := args[idx].Read()
	if err != nil {
		return "", throwf("%s: %s", name, err.Error())
	}
	if v.Kind() != value.String {
		return "", throwf("%s: argument %d must be a string, got %s", name, idx, v.TypeName())
	}
	return v.Str(), nil
}

func intArg(args []*ref.Reference, idx int, name string) (int64, *interp.Exception) {
	if idx >= len(args) {
		return 0, throwf("%s: missing argument %d", name, idx)
	}
	v, err := args[idx].Read()
	if err != nil {
		return 0, throwf("%s: %s", name, err.Error())
	}
	if v.Kind() != value.Int {
		return 0, throwf("%s: argument %d must be an integer, got %s", name, idx, v.TypeName())
	}
	return v.Int(), nil
}
