package interp

import "github.com/cwbudde/scriptcore/internal/value"

// collector implements spec.md §5's mark-and-sweep collector: every
// Function instance (a closure, tagged with the generation it was
// created in) is registered here on construction; GlobalContext.Collect
// reclaims every registered instance at or below a generation bound that
// is not reachable from the global context's variables.
//
// Reachability is computed with an enumeration callback walking Values
// rather than a fixed traversal: a closure is reachable if some
// live Value holds it directly, or holds an array/object that
// (transitively) holds it, or is itself a Function whose captured
// context holds it.
type collector struct {
	instances map[string]*Function
}

func newCollector() *collector {
	return &collector{instances: make(map[string]*Function)}
}

func (c *collector) register(f *Function) {
	c.instances[f.id] = f
}

// sweep marks every Function reachable from global's own variable slots,
// then removes every unreached, unmarked instance whose generation is
// <= maxGeneration from the registry, returning the count reclaimed.
// maxGeneration < 0 means "no generation bound" (collect every
// unreachable instance regardless of age).
func (c *collector) sweep(global *Context, maxGeneration int) int {
	marked := make(map[string]bool, len(c.instances))
	for _, r := range global.vars {
		if v, err := r.Read(); err == nil {
			markValue(v, marked)
		}
	}

	reclaimed := 0
	for id, f := range c.instances {
		if marked[id] {
			continue
		}
		if maxGeneration >= 0 && f.generation > maxGeneration {
			continue
		}
		delete(c.instances, id)
		reclaimed++
	}
	return reclaimed
}

// markValue enumerates every Function reachable from v, recording each
// visited closure's id in marked so a cyclic capture (a closure whose
// enclosing context holds a variable pointing back at itself, directly
// or through another closure) is visited at most once per sweep.
func markValue(v value.Value, marked map[string]bool) {
	switch v.Kind() {
	case value.Function:
		fn, ok := v.Func().(*Function)
		if !ok || fn.builtin != nil || marked[fn.id] {
			return
		}
		marked[fn.id] = true
		for ctx := fn.enclosing; ctx != nil; ctx = ctx.parent {
			for _, slot := range ctx.vars {
				if v, err := slot.Read(); err == nil {
					markValue(v, marked)
				}
			}
		}
	case value.Array:
		for _, item := range v.ArrayData().Items {
			markValue(item, marked)
		}
	case value.Object:
		data := v.ObjectData()
		for _, k := range data.Keys() {
			item, _ := data.Get(k)
			markValue(item, marked)
		}
	}
}
