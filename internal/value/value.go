// Package value implements the tagged Value union of spec.md §3/§4.1: the
// eight primitive kinds a scriptcore program can hold, their comparison and
// truthiness rules, and their textual dump form.
package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind tags which alternative of the Value union is populated.
type Kind int

const (
	Null Kind = iota
	Bool
	Int
	Real
	String
	Function
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "boolean"
	case Int:
		return "integer"
	case Real:
		return "real"
	case String:
		return "string"
	case Function:
		return "function"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return "unknown"
	}
}

// Callable is implemented by internal/interp's function-object type. Value
// stays a leaf package — it only needs to call, dump, and identify a
// function value, never to instantiate one.
type Callable interface {
	Identity() string // stable per-instance id (e.g. a UUID), for dump/equality-by-identity
	Arity() (fixed int, variadic bool)
	DebugName() string
}

// Value is a value-typed tagged union over the eight primitive kinds.
// Copying a Value by assignment in Go already does the right thing for
// Null/Bool/Int/Real/String/Function (the Callable is an identity handle);
// Array/Object are deep-cloned explicitly by Clone so that two Values never
// alias a mutable container — observationally value-type, as spec.md §3
// requires, traded here for COW sharing in exchange for a much simpler
// implementation (see DESIGN.md).
type Value struct {
	kind Kind
	b    bool
	i    int64
	r    float64
	s    string
	fn   Callable
	arr  *ArrayData
	obj  *ObjectData
}

// ArrayData is the mutable backing store a Reference navigates into.
type ArrayData struct {
	Items []Value
}

// ObjectData is an insertion-ordered string-keyed map.
type ObjectData struct {
	keys   []string
	values map[string]Value
}

func NewObjectData() *ObjectData {
	return &ObjectData{values: make(map[string]Value)}
}

func (o *ObjectData) Get(key string) (Value, bool) {
	v, ok := o.values[key]
	return v, ok
}

func (o *ObjectData) Set(key string, v Value) {
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

func (o *ObjectData) Delete(key string) (Value, bool) {
	v, ok := o.values[key]
	if !ok {
		return Value{}, false
	}
	delete(o.values, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
	return v, true
}

func (o *ObjectData) Keys() []string { return o.keys }
func (o *ObjectData) Len() int       { return len(o.keys) }

func (o *ObjectData) Clone() *ObjectData {
	clone := &ObjectData{
		keys:   append([]string(nil), o.keys...),
		values: make(map[string]Value, len(o.values)),
	}
	for k, v := range o.values {
		clone.values[k] = v.Clone()
	}
	return clone
}

// Constructors.

func NewNull() Value           { return Value{kind: Null} }
func NewBool(b bool) Value     { return Value{kind: Bool, b: b} }
func NewInt(i int64) Value     { return Value{kind: Int, i: i} }
func NewReal(r float64) Value  { return Value{kind: Real, r: r} }
func NewString(s string) Value { return Value{kind: String, s: s} }
func NewFunction(c Callable) Value {
	return Value{kind: Function, fn: c}
}
func NewArray(items []Value) Value {
	return Value{kind: Array, arr: &ArrayData{Items: items}}
}
func NewArrayData(d *ArrayData) Value { return Value{kind: Array, arr: d} }
func NewObject(d *ObjectData) Value {
	if d == nil {
		d = NewObjectData()
	}
	return Value{kind: Object, obj: d}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == Null }

func (v Value) Bool() bool           { return v.b }
func (v Value) Int() int64           { return v.i }
func (v Value) Real() float64        { return v.r }
func (v Value) Str() string          { return v.s }
func (v Value) Func() Callable       { return v.fn }
func (v Value) ArrayData() *ArrayData {
	if v.arr == nil {
		return &ArrayData{}
	}
	return v.arr
}
func (v Value) ObjectData() *ObjectData {
	if v.obj == nil {
		return NewObjectData()
	}
	return v.obj
}

// Clone returns a Value with its own, independent Array/Object backing
// store (deep copy), or v itself for every other kind.
func (v Value) Clone() Value {
	switch v.kind {
	case Array:
		items := make([]Value, len(v.arr.Items))
		for i, item := range v.arr.Items {
			items[i] = item.Clone()
		}
		return Value{kind: Array, arr: &ArrayData{Items: items}}
	case Object:
		return Value{kind: Object, obj: v.obj.Clone()}
	default:
		return v
	}
}

// TypeName is the string `typeof` returns.
func (v Value) TypeName() string { return v.kind.String() }

// Truthy implements spec.md §4.1's truthiness rule.
func (v Value) Truthy() bool {
	switch v.kind {
	case Null:
		return false
	case Bool:
		return v.b
	case Int:
		return v.i != 0
	case Real:
		return v.r != 0 && !math.IsNaN(v.r)
	case String:
		return v.s != ""
	case Function, Array, Object:
		return true
	default:
		return false
	}
}

// Equal implements spec.md §4.1's value equality: deep for arrays/objects,
// false (not a throw) across mismatched types except integer/real which
// numerically compare, and NaN is never equal to anything including itself.
func (v Value) Equal(other Value) bool {
	if v.kind == Real && math.IsNaN(v.r) {
		return false
	}
	if other.kind == Real && math.IsNaN(other.r) {
		return false
	}
	if v.kind != other.kind {
		if v.kind == Int && other.kind == Real {
			return float64(v.i) == other.r
		}
		if v.kind == Real && other.kind == Int {
			return v.r == float64(other.i)
		}
		return false
	}
	switch v.kind {
	case Null:
		return true
	case Bool:
		return v.b == other.b
	case Int:
		return v.i == other.i
	case Real:
		return v.r == other.r
	case String:
		return v.s == other.s
	case Function:
		return v.fn != nil && other.fn != nil && v.fn.Identity() == other.fn.Identity()
	case Array:
		a, b := v.arr.Items, other.arr.Items
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if !a[i].Equal(b[i]) {
				return false
			}
		}
		return true
	case Object:
		if v.obj.Len() != other.obj.Len() {
			return false
		}
		for _, k := range v.obj.keys {
			ov, ok := other.obj.Get(k)
			if !ok {
				return false
			}
			vv, _ := v.obj.Get(k)
			if !vv.Equal(ov) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Ordering is the three-way comparison result plus the "unordered" case
// spec.md §4.1/§4.7 needs for `<=>`.
type Ordering int

const (
	Less Ordering = iota
	Equal
	Greater
	Unordered
)

// Compare implements spec.md §4.1's comparison ordering table.
func (v Value) Compare(other Value) Ordering {
	lk, rk := v.kind, other.kind

	if lk == Real && math.IsNaN(v.r) {
		return Unordered
	}
	if rk == Real && math.IsNaN(other.r) {
		return Unordered
	}

	if lk == Int && rk == Real {
		return compareFloat(float64(v.i), other.r)
	}
	if lk == Real && rk == Int {
		return compareFloat(v.r, float64(other.i))
	}
	if lk != rk {
		return Unordered
	}

	switch lk {
	case Bool:
		return compareBool(v.b, other.b)
	case Int:
		return compareInt(v.i, other.i)
	case Real:
		return compareFloat(v.r, other.r)
	case String:
		return compareString(v.s, other.s)
	case Array:
		a, b := v.arr.Items, other.arr.Items
		n := len(a)
		if len(b) < n {
			n = len(b)
		}
		for i := 0; i < n; i++ {
			if c := a[i].Compare(b[i]); c != Equal {
				return c
			}
		}
		return compareInt(int64(len(a)), int64(len(b)))
	default:
		// Objects and functions: unordered except equality, handled above.
		if v.Equal(other) {
			return Equal
		}
		return Unordered
	}
}

func compareBool(a, b bool) Ordering {
	if a == b {
		return Equal
	}
	if !a && b {
		return Less
	}
	return Greater
}

func compareInt(a, b int64) Ordering {
	switch {
	case a < b:
		return Less
	case a > b:
		return Greater
	default:
		return Equal
	}
}

func compareFloat(a, b float64) Ordering {
	switch {
	case a < b:
		return Less
	case a > b:
		return Greater
	case a == b:
		return Equal
	default:
		return Unordered
	}
}

func compareString(a, b string) Ordering {
	switch {
	case a < b:
		return Less
	case a > b:
		return Greater
	default:
		return Equal
	}
}

// Dump renders a textual, debug-oriented form of v, used by the CLI's
// --dump-ast/trace output and by user code that stringifies a non-string
// Value (e.g. string concatenation against a number).
func (v Value) Dump() string {
	switch v.kind {
	case Null:
		return "null"
	case Bool:
		if v.b {
			return "true"
		}
		return "false"
	case Int:
		return strconv.FormatInt(v.i, 10)
	case Real:
		if math.IsNaN(v.r) {
			return "nan"
		}
		if math.IsInf(v.r, 1) {
			return "infinity"
		}
		if math.IsInf(v.r, -1) {
			return "-infinity"
		}
		return strconv.FormatFloat(v.r, 'g', -1, 64)
	case String:
		return v.s
	case Function:
		if v.fn != nil {
			return fmt.Sprintf("function %s", v.fn.DebugName())
		}
		return "function"
	case Array:
		parts := make([]string, len(v.arr.Items))
		for i, item := range v.arr.Items {
			parts[i] = item.quotedDump()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case Object:
		parts := make([]string, 0, v.obj.Len())
		for _, k := range v.obj.keys {
			val, _ := v.obj.Get(k)
			parts = append(parts, k+": "+val.quotedDump())
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return "<unknown>"
	}
}

// quotedDump is Dump but quotes strings, for nesting inside array/object dumps.
func (v Value) quotedDump() string {
	if v.kind == String {
		return strconv.Quote(v.s)
	}
	return v.Dump()
}

func (v Value) String() string { return v.Dump() }
