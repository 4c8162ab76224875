package builtins

import (
	"math"
	"math/rand"

	"github.com/cwbudde/scriptcore/internal/interp"
	"github.com/cwbudde/scriptcore/internal/ref"
	"github.com/cwbudde/scriptcore/internal/value"
)

// registerMath registers the handful of math helpers spec.md's operator
// table doesn't already cover as keyword-level unary operators (`__abs`,
// `__sqrt`, `__round`, ... are part of the core per spec.md §4.4/§4.7;
// min/max/pow/random are ordinary library functions instead).
func registerMath(global *interp.Context) {
	declare(global, "min", func(e *interp.Engine, args []*ref.Reference) (*ref.Reference, *interp.Exception) {
		return minMax(args, "min", false)
	})
	declare(global, "max", func(e *interp.Engine, args []*ref.Reference) (*ref.Reference, *interp.Exception) {
		return minMax(args, "max", true)
	})
	declare(global, "pow", func(e *interp.Engine, args []*ref.Reference) (*ref.Reference, *interp.Exception) {
		if len(args) != 2 {
			return nil, throwf("pow expects 2 arguments, got %d", len(args))
		}
		base, exc := numArg(args, 0, "pow")
		if exc != nil {
			return nil, exc
		}
		exp, exc := numArg(args, 1, "pow")
		if exc != nil {
			return nil, exc
		}
		return ref.NewTemporary(value.NewReal(math.Pow(base, exp))), nil
	})
	declare(global, "random", func(e *interp.Engine, args []*ref.Reference) (*ref.Reference, *interp.Exception) {
		if len(args) != 0 {
			return nil, throwf("random expects 0 arguments, got %d", len(args))
		}
		return ref.NewTemporary(value.NewReal(rand.Float64())), nil
	})
}

func minMax(args []*ref.Reference, name string, wantMax bool) (*ref.Reference, *interp.Exception) {
	if len(args) == 0 {
		return nil, throwf("%s expects at least 1 argument, got 0", name)
	}
	best, exc := numArg(args, 0, name)
	if exc != nil {
		return nil, exc
	}
	allInt := true
	if v, _ := args[0].Read(); v.Kind() != value.Int {
		allInt = false
	}
	for i := 1; i < len(args); i++ {
		n, exc := numArg(args, i, name)
		if exc != nil {
			return nil, exc
		}
		if v, _ := args[i].Read(); v.Kind() != value.Int {
			allInt = false
		}
		if (wantMax && n > best) || (!wantMax && n < best) {
			best = n
		}
	}
	if allInt {
		return ref.NewTemporary(value.NewInt(int64(best))), nil
	}
	return ref.NewTemporary(value.NewReal(best)), nil
}

func numArg(args []*ref.Reference, idx int, name string) (float64, *interp.Exception) {
	if idx >= len(args) {
		return 0, throwf("%s: missing argument %d", name, idx)
	}
	v, err := args[idx].Read()
	if err != nil {
		return 0, throwf("%s: %s", name, err.Error())
	}
	switch v.Kind() {
	case value.Int:
		return float64(v.Int()), nil
	case value.Real:
		return v.Real(), nil
	default:
		return 0, throwf("%s: argument %d must be numeric, got %s", name, idx, v.TypeName())
	}
}
