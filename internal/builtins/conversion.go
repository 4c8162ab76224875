package builtins

import (
	"strconv"

	"github.com/cwbudde/scriptcore/internal/interp"
	"github.com/cwbudde/scriptcore/internal/ref"
	"github.com/cwbudde/scriptcore/internal/value"
)

// registerConversion registers the type-conversion family: to_string,
// to_int, to_real, to_bool.
func registerConversion(global *interp.Context) {
	declare(global, "to_string", func(e *interp.Engine, args []*ref.Reference) (*ref.Reference, *interp.Exception) {
		v, exc := arg1(args, "to_string")
		if exc != nil {
			return nil, exc
		}
		if v.Kind() == value.String {
			return ref.NewTemporary(v), nil
		}
		return ref.NewTemporary(value.NewString(v.Dump())), nil
	})

	declare(global, "to_int", func(e *interp.Engine, args []*ref.Reference) (*ref.Reference, *interp.Exception) {
		v, exc := arg1(args, "to_int")
		if exc != nil {
			return nil, exc
		}
		switch v.Kind() {
		case value.Int:
			return ref.NewTemporary(v), nil
		case value.Real:
			return ref.NewTemporary(value.NewInt(int64(v.Real()))), nil
		case value.Bool:
			if v.Bool() {
				return ref.NewTemporary(value.NewInt(1)), nil
			}
			return ref.NewTemporary(value.NewInt(0)), nil
		case value.String:
			n, err := strconv.ParseInt(v.Str(), 10, 64)
			if err != nil {
				return nil, throwf("to_int: %q is not a valid integer", v.Str())
			}
			return ref.NewTemporary(value.NewInt(n)), nil
		default:
			return nil, throwf("to_int: cannot convert %s to integer", v.TypeName())
		}
	})

	declare(global, "to_real", func(e *interp.Engine, args []*ref.Reference) (*ref.Reference, *interp.Exception) {
		v, exc := arg1(args, "to_real")
		if exc != nil {
			return nil, exc
		}
		switch v.Kind() {
		case value.Real:
			return ref.NewTemporary(v), nil
		case value.Int:
			return ref.NewTemporary(value.NewReal(float64(v.Int()))), nil
		case value.String:
			f, err := strconv.ParseFloat(v.Str(), 64)
			if err != nil {
				return nil, throwf("to_real: %q is not a valid real", v.Str())
			}
			return ref.NewTemporary(value.NewReal(f)), nil
		default:
			return nil, throwf("to_real: cannot convert %s to real", v.TypeName())
		}
	})

	declare(global, "to_bool", func(e *interp.Engine, args []*ref.Reference) (*ref.Reference, *interp.Exception) {
		v, exc := arg1(args, "to_bool")
		if exc != nil {
			return nil, exc
		}
		return ref.NewTemporary(value.NewBool(v.Truthy())), nil
	})
}

// arg1 reads the sole argument a single-argument builtin expects, the
// same "arity check then Read" shape every teacher builtinX function
// starts with.
func arg1(args []*ref.Reference, name string) (value.Value, *interp.Exception) {
	if len(args) != 1 {
		return value.Value{}, throwf("%s expects 1 argument, got %d", name, len(args))
	}
	v, err := args[0].Read()
	if err != nil {
		return value.Value{}, throwf("%s: %s", name, err.Error())
	}
	return v, nil
}
