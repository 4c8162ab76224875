package builtins

import (
	"sort"

	"github.com/cwbudde/scriptcore/internal/interp"
	"github.com/cwbudde/scriptcore/internal/ref"
	"github.com/cwbudde/scriptcore/internal/value"
)

// registerArray registers push/pop/keys/sort, the array/object-container
// helpers a builtin library typically groups alongside its string and
// math families. lengthof itself is a core keyword operator (spec.md
// §4.7), not a builtin, so it is not duplicated here.
func registerArray(global *interp.Context) {
	declare(global, "push", func(e *interp.Engine, args []*ref.Reference) (*ref.Reference, *interp.Exception) {
		if len(args) != 2 {
			return nil, throwf("push expects 2 arguments, got %d", len(args))
		}
		arrVal, err := args[0].Read()
		if err != nil {
			return nil, throwf("push: %s", err.Error())
		}
		if arrVal.Kind() != value.Array {
			return nil, throwf("push: first argument must be an array, got %s", arrVal.TypeName())
		}
		item, err := args[1].Read()
		if err != nil {
			return nil, throwf("push: %s", err.Error())
		}
		data := arrVal.ArrayData()
		data.Items = append(data.Items, item)
		if err := args[0].Write(value.NewArrayData(data)); err != nil {
			return nil, throwf("push: %s", err.Error())
		}
		return ref.NewTemporary(value.NewInt(int64(len(data.Items)))), nil
	})

	declare(global, "pop", func(e *interp.Engine, args []*ref.Reference) (*ref.Reference, *interp.Exception) {
		if len(args) != 1 {
			return nil, throwf("pop expects 1 argument, got %d", len(args))
		}
		arrVal, err := args[0].Read()
		if err != nil {
			return nil, throwf("pop: %s", err.Error())
		}
		if arrVal.Kind() != value.Array {
			return nil, throwf("pop: argument must be an array, got %s", arrVal.TypeName())
		}
		data := arrVal.ArrayData()
		if len(data.Items) == 0 {
			return nil, throwf("pop: array is empty")
		}
		last := data.Items[len(data.Items)-1]
		data.Items = data.Items[:len(data.Items)-1]
		if err := args[0].Write(value.NewArrayData(data)); err != nil {
			return nil, throwf("pop: %s", err.Error())
		}
		return ref.NewTemporary(last), nil
	})

	declare(global, "keys", func(e *interp.Engine, args []*ref.Reference) (*ref.Reference, *interp.Exception) {
		if len(args) != 1 {
			return nil, throwf("keys expects 1 argument, got %d", len(args))
		}
		objVal, err := args[0].Read()
		if err != nil {
			return nil, throwf("keys: %s", err.Error())
		}
		if objVal.Kind() != value.Object {
			return nil, throwf("keys: argument must be an object, got %s", objVal.TypeName())
		}
		ks := objVal.ObjectData().Keys()
		items := make([]value.Value, len(ks))
		for i, k := range ks {
			items[i] = value.NewString(k)
		}
		return ref.NewTemporary(value.NewArray(items)), nil
	})

	declare(global, "sort", func(e *interp.Engine, args []*ref.Reference) (*ref.Reference, *interp.Exception) {
		if len(args) != 1 {
			return nil, throwf("sort expects 1 argument, got %d", len(args))
		}
		arrVal, err := args[0].Read()
		if err != nil {
			return nil, throwf("sort: %s", err.Error())
		}
		if arrVal.Kind() != value.Array {
			return nil, throwf("sort: argument must be an array, got %s", arrVal.TypeName())
		}
		items := append([]value.Value(nil), arrVal.ArrayData().Items...)
		var sortErr *interp.Exception
		sort.SliceStable(items, func(i, j int) bool {
			ord := items[i].Compare(items[j])
			if ord == value.Unordered && sortErr == nil {
				sortErr = throwf("sort: elements at positions %d and %d are unordered", i, j)
			}
			return ord == value.Less
		})
		if sortErr != nil {
			return nil, sortErr
		}
		return ref.NewTemporary(value.NewArray(items)), nil
	})
}
