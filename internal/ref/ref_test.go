package ref

import (
	"testing"

	"github.com/cwbudde/scriptcore/internal/value"
)

func TestVariableReadWrite(t *testing.T) {
	r := NewVariable("x", value.NewInt(1), false)
	if v, err := r.Read(); err != nil || v.Int() != 1 {
		t.Fatalf("read: got %v, %v", v, err)
	}
	if err := r.Write(value.NewInt(2)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if v, _ := r.Read(); v.Int() != 2 {
		t.Fatalf("expected 2, got %v", v)
	}
}

func TestConstantIsReadOnly(t *testing.T) {
	r := NewConstant(value.NewInt(42))
	if v, err := r.Read(); err != nil || v.Int() != 42 {
		t.Fatalf("read: got %v, %v", v, err)
	}
	if err := r.Write(value.NewInt(1)); err == nil {
		t.Fatal("expected write through constant to fail")
	}
	if _, err := r.Unset(); err == nil {
		t.Fatal("expected unset through constant to fail")
	}
}

func TestConstVariableRejectsWrite(t *testing.T) {
	r := NewVariable("PI", value.NewReal(3.14), true)
	if err := r.Write(value.NewReal(1)); err == nil {
		t.Fatal("expected write to const variable to fail")
	}
}

func TestArrayIndexZoomInReadWrite(t *testing.T) {
	arr := value.NewArray([]value.Value{value.NewInt(10), value.NewInt(20), value.NewInt(30)})
	r := NewVariable("a", arr, false)

	elem := r.ZoomIn(IndexMod(1))
	if v, err := elem.Read(); err != nil || v.Int() != 20 {
		t.Fatalf("expected 20, got %v, %v", v, err)
	}
	if err := elem.Write(value.NewInt(99)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if v, _ := r.ZoomIn(IndexMod(1)).Read(); v.Int() != 99 {
		t.Fatalf("expected mutation visible through fresh zoom-in, got %v", v)
	}
}

func TestArrayNegativeIndex(t *testing.T) {
	arr := value.NewArray([]value.Value{value.NewInt(1), value.NewInt(2), value.NewInt(3)})
	r := NewVariable("a", arr, false)
	if v, _ := r.ZoomIn(IndexMod(-1)).Read(); v.Int() != 3 {
		t.Fatalf("expected last element 3, got %v", v)
	}
}

func TestArrayReadOutOfRangeIsNull(t *testing.T) {
	arr := value.NewArray([]value.Value{value.NewInt(1)})
	r := NewVariable("a", arr, false)
	v, err := r.ZoomIn(IndexMod(5)).Read()
	if err != nil || !v.IsNull() {
		t.Fatalf("expected null, got %v, %v", v, err)
	}
}

func TestArrayWriteAutoExtendsWithNulls(t *testing.T) {
	arr := value.NewArray([]value.Value{value.NewInt(1)})
	r := NewVariable("a", arr, false)
	if err := r.ZoomIn(IndexMod(3)).Write(value.NewInt(7)); err != nil {
		t.Fatalf("write: %v", err)
	}
	v, _ := r.Read()
	items := v.ArrayData().Items
	if len(items) != 4 {
		t.Fatalf("expected length 4, got %d", len(items))
	}
	if !items[1].IsNull() || !items[2].IsNull() {
		t.Fatalf("expected auto-extended slots to be null, got %v", items)
	}
	if items[3].Int() != 7 {
		t.Fatalf("expected 7 at index 3, got %v", items[3])
	}
}

func TestArrayWriteNegativeOutOfRangeErrors(t *testing.T) {
	arr := value.NewArray([]value.Value{value.NewInt(1)})
	r := NewVariable("a", arr, false)
	if err := r.ZoomIn(IndexMod(-5)).Write(value.NewInt(1)); err == nil {
		t.Fatal("expected error writing before index 0")
	}
}

func TestObjectKeyReadMissingIsNull(t *testing.T) {
	r := NewVariable("o", value.NewObject(nil), false)
	v, err := r.ZoomIn(KeyMod("missing")).Read()
	if err != nil || !v.IsNull() {
		t.Fatalf("expected null, got %v, %v", v, err)
	}
}

func TestObjectKeyWriteInsertsMember(t *testing.T) {
	r := NewVariable("o", value.NewObject(nil), false)
	if err := r.ZoomIn(KeyMod("a")).Write(value.NewInt(1)); err != nil {
		t.Fatalf("write: %v", err)
	}
	v, _ := r.Read()
	got, ok := v.ObjectData().Get("a")
	if !ok || got.Int() != 1 {
		t.Fatalf("expected a=1, got %v, %v", got, ok)
	}
}

func TestAutovivifyNestedNull(t *testing.T) {
	r := NewVariable("o", value.NewNull(), false)
	inner := r.ZoomIn(KeyMod("a")).ZoomIn(IndexMod(0))
	if err := inner.Write(value.NewInt(5)); err != nil {
		t.Fatalf("write: %v", err)
	}
	v, _ := r.Read()
	if v.Kind() != value.Object {
		t.Fatalf("expected root to autovivify as object, got %v", v.Kind())
	}
	a, ok := v.ObjectData().Get("a")
	if !ok || a.Kind() != value.Array {
		t.Fatalf("expected member 'a' to autovivify as array, got %v", a)
	}
	if a.ArrayData().Items[0].Int() != 5 {
		t.Fatalf("expected 5, got %v", a.ArrayData().Items[0])
	}
}

func TestUnsetArrayElementShifts(t *testing.T) {
	arr := value.NewArray([]value.Value{value.NewInt(1), value.NewInt(2), value.NewInt(3)})
	r := NewVariable("a", arr, false)
	removed, err := r.ZoomIn(IndexMod(1)).Unset()
	if err != nil || removed.Int() != 2 {
		t.Fatalf("unset: got %v, %v", removed, err)
	}
	v, _ := r.Read()
	items := v.ArrayData().Items
	if len(items) != 2 || items[0].Int() != 1 || items[1].Int() != 3 {
		t.Fatalf("expected [1,3], got %v", items)
	}
}

func TestUnsetObjectKey(t *testing.T) {
	obj := value.NewObjectData()
	obj.Set("a", value.NewInt(1))
	r := NewVariable("o", value.NewObject(obj), false)
	removed, err := r.ZoomIn(KeyMod("a")).Unset()
	if err != nil || removed.Int() != 1 {
		t.Fatalf("unset: got %v, %v", removed, err)
	}
	v, _ := r.Read()
	if v.ObjectData().Len() != 0 {
		t.Fatalf("expected key removed, got %v", v.ObjectData().Keys())
	}
}

func TestZoomOutPopsModifier(t *testing.T) {
	arr := value.NewArray([]value.Value{value.NewObject(nil)})
	r := NewVariable("a", arr, false)
	inner := r.ZoomIn(IndexMod(0)).ZoomIn(KeyMod("x"))
	back := inner.ZoomOut()
	v, err := back.Read()
	if err != nil || v.Kind() != value.Object {
		t.Fatalf("expected object after zoom-out, got %v, %v", v, err)
	}
}

func TestMaterializeDetachesFromOriginal(t *testing.T) {
	arr := value.NewArray([]value.Value{value.NewInt(1), value.NewInt(2)})
	r := NewVariable("a", arr, false)
	elem := r.ZoomIn(IndexMod(0))

	mat, err := elem.Materialize()
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}
	if err := mat.Write(value.NewInt(100)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if v, _ := elem.Read(); v.Int() != 1 {
		t.Fatalf("expected original slot untouched, got %v", v)
	}
}

func TestIndexIntoNonArrayErrors(t *testing.T) {
	r := NewVariable("x", value.NewInt(5), false)
	if _, err := r.ZoomIn(IndexMod(0)).Read(); err == nil {
		t.Fatal("expected error indexing a non-array")
	}
}

func TestTemporaryRootWritable(t *testing.T) {
	r := NewTemporary(value.NewInt(1))
	if err := r.Write(value.NewInt(2)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if v, _ := r.Read(); v.Int() != 2 {
		t.Fatalf("expected 2, got %v", v)
	}
}
