// Package ref implements the Reference model of spec.md §3/§4.2: a place
// expression rooted at a constant, a temporary, or a mutable variable slot,
// with a chain of array-index/object-key modifiers applied left to right.
// Reads and writes re-walk the chain every time rather than caching the
// resolved slot, since intervening mutation must stay observable.
package ref

import (
	"fmt"

	"github.com/cwbudde/scriptcore/internal/value"
)

// RootKind is which of the three Reference roots is populated.
type RootKind int

const (
	RootConstant RootKind = iota
	RootTemporary
	RootVariable
)

// Variable is a mutable named slot: a Value plus a constness flag set once
// its initializer completes (spec.md §4.8, variable-definition).
type Variable struct {
	Val   value.Value
	Const bool
	Name  string
}

// ModKind distinguishes the two modifier forms spec.md §3 allows.
type ModKind int

const (
	ModIndex ModKind = iota
	ModKey
)

// Modifier is one array-index or object-key step in a Reference's chain.
type Modifier struct {
	Kind  ModKind
	Index int64
	Key   string
}

func IndexMod(i int64) Modifier { return Modifier{Kind: ModIndex, Index: i} }
func KeyMod(k string) Modifier  { return Modifier{Kind: ModKey, Key: k} }

// Reference is a place expression: a root plus an ordered modifier chain.
type Reference struct {
	rootKind RootKind
	constVal value.Value
	temp     *value.Value
	variable *Variable
	mods     []Modifier
}

// NewConstant wraps a read-only Value; every Write/Unset on it fails.
func NewConstant(v value.Value) *Reference {
	return &Reference{rootKind: RootConstant, constVal: v}
}

// NewTemporary wraps an rvalue produced by expression evaluation.
func NewTemporary(v value.Value) *Reference {
	return &Reference{rootKind: RootTemporary, temp: &v}
}

// NewVariable wraps a freshly allocated mutable slot.
func NewVariable(name string, v value.Value, isConst bool) *Reference {
	return &Reference{rootKind: RootVariable, variable: &Variable{Val: v, Const: isConst, Name: name}}
}

// FromVariable wraps an existing Variable slot (used by the context tree,
// which owns the Variable and hands out References to it on lookup).
func FromVariable(v *Variable) *Reference {
	return &Reference{rootKind: RootVariable, variable: v}
}

// cell is the resolved get/set/unset triple for one point in the chain.
// Building the chain as nested closures lets each modifier level read its
// parent's current value, including after the parent has been autovivified
// from null, without a separate "path of pointers" type.
type cell struct {
	get   func() (value.Value, error)
	set   func(value.Value) error
	unset func() (value.Value, error)
}

var errReadOnly = fmt.Errorf("cannot write through a constant reference")

func (r *Reference) rootCell() cell {
	switch r.rootKind {
	case RootConstant:
		return cell{
			get:   func() (value.Value, error) { return r.constVal, nil },
			set:   func(value.Value) error { return errReadOnly },
			unset: func() (value.Value, error) { return value.Value{}, errReadOnly },
		}
	case RootTemporary:
		return cell{
			get: func() (value.Value, error) { return *r.temp, nil },
			set: func(v value.Value) error { *r.temp = v; return nil },
			unset: func() (value.Value, error) {
				old := *r.temp
				*r.temp = value.NewNull()
				return old, nil
			},
		}
	default: // RootVariable
		return cell{
			get: func() (value.Value, error) { return r.variable.Val, nil },
			set: func(v value.Value) error {
				if r.variable.Const {
					return fmt.Errorf("cannot assign to constant %q", r.variable.Name)
				}
				r.variable.Val = v
				return nil
			},
			unset: func() (value.Value, error) {
				if r.variable.Const {
					return value.Value{}, fmt.Errorf("cannot unset constant %q", r.variable.Name)
				}
				old := r.variable.Val
				r.variable.Val = value.NewNull()
				return old, nil
			},
		}
	}
}

func arrayIndexCell(parent cell, idx int64) cell {
	resolve := func() (value.Value, *value.ArrayData, int64, error) {
		pv, err := parent.get()
		if err != nil {
			return value.Value{}, nil, 0, err
		}
		if pv.Kind() != value.Array {
			return value.Value{}, nil, 0, fmt.Errorf("bad subscript: cannot index a %s value", pv.TypeName())
		}
		data := pv.ArrayData()
		i := idx
		if i < 0 {
			i += int64(len(data.Items))
		}
		return pv, data, i, nil
	}

	return cell{
		get: func() (value.Value, error) {
			pv, err := parent.get()
			if err != nil {
				return value.Value{}, err
			}
			if pv.IsNull() {
				return value.NewNull(), nil
			}
			if pv.Kind() != value.Array {
				return value.Value{}, fmt.Errorf("bad subscript: cannot index a %s value", pv.TypeName())
			}
			data := pv.ArrayData()
			i := idx
			if i < 0 {
				i += int64(len(data.Items))
			}
			if i < 0 || i >= int64(len(data.Items)) {
				return value.NewNull(), nil
			}
			return data.Items[i], nil
		},
		set: func(nv value.Value) error {
			pv, err := parent.get()
			if err != nil {
				return err
			}
			if pv.IsNull() {
				pv = value.NewArray(nil)
				if err := parent.set(pv); err != nil {
					return err
				}
			}
			if pv.Kind() != value.Array {
				return fmt.Errorf("bad subscript: cannot index a %s value", pv.TypeName())
			}
			data := pv.ArrayData()
			i := idx
			if i < 0 {
				i += int64(len(data.Items))
			}
			if i < 0 {
				return fmt.Errorf("array index %d out of range", idx)
			}
			if i >= int64(len(data.Items)) {
				grown := make([]value.Value, i+1)
				copy(grown, data.Items)
				for j := len(data.Items); j < int(i); j++ {
					grown[j] = value.NewNull()
				}
				data.Items = grown
			}
			data.Items[i] = nv
			return nil
		},
		unset: func() (value.Value, error) {
			_, data, i, err := resolve()
			if err != nil {
				return value.Value{}, err
			}
			if i < 0 || i >= int64(len(data.Items)) {
				return value.NewNull(), nil
			}
			removed := data.Items[i]
			data.Items = append(data.Items[:i], data.Items[i+1:]...)
			return removed, nil
		},
	}
}

func objectKeyCell(parent cell, key string) cell {
	return cell{
		get: func() (value.Value, error) {
			pv, err := parent.get()
			if err != nil {
				return value.Value{}, err
			}
			if pv.IsNull() {
				return value.NewNull(), nil
			}
			if pv.Kind() != value.Object {
				return value.Value{}, fmt.Errorf("bad subscript: cannot access member %q of a %s value", key, pv.TypeName())
			}
			v, ok := pv.ObjectData().Get(key)
			if !ok {
				return value.NewNull(), nil
			}
			return v, nil
		},
		set: func(nv value.Value) error {
			pv, err := parent.get()
			if err != nil {
				return err
			}
			if pv.IsNull() {
				pv = value.NewObject(nil)
				if err := parent.set(pv); err != nil {
					return err
				}
			}
			if pv.Kind() != value.Object {
				return fmt.Errorf("bad subscript: cannot access member %q of a %s value", key, pv.TypeName())
			}
			pv.ObjectData().Set(key, nv)
			return nil
		},
		unset: func() (value.Value, error) {
			pv, err := parent.get()
			if err != nil {
				return value.Value{}, err
			}
			if pv.Kind() != value.Object {
				return value.NewNull(), nil
			}
			removed, ok := pv.ObjectData().Delete(key)
			if !ok {
				return value.NewNull(), nil
			}
			return removed, nil
		},
	}
}

func (r *Reference) resolveCell() cell {
	c := r.rootCell()
	for _, m := range r.mods {
		if m.Kind == ModIndex {
			c = arrayIndexCell(c, m.Index)
		} else {
			c = objectKeyCell(c, m.Key)
		}
	}
	return c
}

// Read dereferences the Reference to a Value.
func (r *Reference) Read() (value.Value, error) { return r.resolveCell().get() }

// Write replaces the designated slot.
func (r *Reference) Write(v value.Value) error { return r.resolveCell().set(v) }

// Unset removes the designated member and returns the removed value.
func (r *Reference) Unset() (value.Value, error) { return r.resolveCell().unset() }

// ZoomIn returns a new Reference with one more modifier appended.
func (r *Reference) ZoomIn(m Modifier) *Reference {
	mods := make([]Modifier, len(r.mods)+1)
	copy(mods, r.mods)
	mods[len(r.mods)] = m
	clone := *r
	clone.mods = mods
	return &clone
}

// ZoomOut returns a new Reference with the last modifier removed. Zooming
// out of a reference with no modifiers returns the root reference.
func (r *Reference) ZoomOut() *Reference {
	if len(r.mods) == 0 {
		clone := *r
		return &clone
	}
	clone := *r
	clone.mods = r.mods[:len(r.mods)-1]
	return &clone
}

// Modifiers returns the reference's modifier chain (used by the evaluator
// to derive `self` for a method call: the parent of the last modifier).
func (r *Reference) Modifiers() []Modifier { return r.mods }

// RootKind reports which root this Reference was built on.
func (r *Reference) RootKind() RootKind { return r.rootKind }

// Variable returns the underlying Variable slot, or nil if the root isn't
// RootVariable.
func (r *Reference) Variable() *Variable {
	if r.rootKind != RootVariable {
		return nil
	}
	return r.variable
}

// Materialize converts this Reference into a fresh, independent variable
// root holding a copy of its currently-denoted value (spec.md §4.2): after
// materializing, further writes never retroactively affect whatever this
// Reference used to point at.
func (r *Reference) Materialize() (*Reference, error) {
	v, err := r.Read()
	if err != nil {
		return nil, err
	}
	return NewVariable("", v.Clone(), false), nil
}
