package interp

import (
	"math"
	"testing"

	"github.com/cwbudde/scriptcore/internal/value"
)

func TestCheckedArith(t *testing.T) {
	if _, ok := checkedAdd(math.MaxInt64, 1); ok {
		t.Error("checkedAdd(MaxInt64, 1) should overflow")
	}
	if sum, ok := checkedAdd(40, 2); !ok || sum != 42 {
		t.Errorf("checkedAdd(40, 2) = %d, %v, want 42, true", sum, ok)
	}
	if _, ok := checkedSub(math.MinInt64, 1); ok {
		t.Error("checkedSub(MinInt64, 1) should overflow")
	}
	if _, ok := checkedMul(math.MinInt64, -1); ok {
		t.Error("checkedMul(MinInt64, -1) should overflow (the classic wraparound trap)")
	}
	if p, ok := checkedMul(6, 7); !ok || p != 42 {
		t.Errorf("checkedMul(6, 7) = %d, %v, want 42, true", p, ok)
	}
}

func TestApplyAddBoolIsOr(t *testing.T) {
	v, exc := applyAdd(value.NewBool(false), value.NewBool(true))
	if exc != nil {
		t.Fatalf("unexpected exception: %v", exc)
	}
	if !v.Bool() {
		t.Error("bool + bool should be OR")
	}
}

func TestApplySubBoolIsXor(t *testing.T) {
	v, exc := applySub(value.NewBool(true), value.NewBool(true))
	if exc != nil {
		t.Fatalf("unexpected exception: %v", exc)
	}
	if v.Bool() {
		t.Error("true - true should be XOR = false")
	}
}

func TestApplyMulBoolIsAnd(t *testing.T) {
	v, exc := applyMul(value.NewBool(true), value.NewBool(false))
	if exc != nil {
		t.Fatalf("unexpected exception: %v", exc)
	}
	if v.Bool() {
		t.Error("true * false should be AND = false")
	}
}

func TestApplyMulStringRepeat(t *testing.T) {
	v, exc := applyMul(value.NewString("ab"), value.NewInt(3))
	if exc != nil {
		t.Fatalf("unexpected exception: %v", exc)
	}
	if v.Str() != "ababab" {
		t.Errorf("got %q, want %q", v.Str(), "ababab")
	}
}

func TestApplyDivModZeroDivision(t *testing.T) {
	if _, exc := applyDivMod(value.NewInt(1), value.NewInt(0), false); exc == nil {
		t.Error("division by zero should throw")
	}
	if _, exc := applyDivMod(value.NewInt(1), value.NewInt(0), true); exc == nil {
		t.Error("modulo by zero should throw")
	}
	if _, exc := applyDivMod(value.NewInt(math.MinInt64), value.NewInt(-1), false); exc == nil {
		t.Error("MinInt64 / -1 should throw overflow, not wrap")
	}
}

func TestApplyArithShiftSignOverflow(t *testing.T) {
	// Shifting a small positive value left by 63 flips the sign bit of a
	// 64-bit integer; the arithmetic (sign-preserving) shift must reject it.
	if _, exc := applyArithShift(value.NewInt(1), value.NewInt(63), true); exc == nil {
		t.Error("<< that changes the sign bit should throw")
	}
	v, exc := applyArithShift(value.NewInt(-8), value.NewInt(1), false)
	if exc != nil {
		t.Fatalf("unexpected exception: %v", exc)
	}
	if v.Int() != -4 {
		t.Errorf(">> should sign-extend: got %d, want -4", v.Int())
	}
}

func TestApplyLogicalShiftPastWidthYieldsZero(t *testing.T) {
	v, exc := applyLogicalShift(value.NewInt(-1), value.NewInt(64), true)
	if exc != nil {
		t.Fatalf("unexpected exception: %v", exc)
	}
	if v.Int() != 0 {
		t.Errorf("logical shift by >= 64 should yield 0, got %d", v.Int())
	}
	if _, exc := applyLogicalShift(value.NewInt(1), value.NewInt(-1), true); exc == nil {
		t.Error("negative shift amount should throw")
	}
}

func TestShiftStringLogicalPreservesLength(t *testing.T) {
	v, exc := applyLogicalShift(value.NewString("abcd"), value.NewInt(1), true)
	if exc != nil {
		t.Fatalf("unexpected exception: %v", exc)
	}
	if v.Str() != "bcd\x00" {
		t.Errorf("got %q, want %q", v.Str(), "bcd\x00")
	}
}

func TestShiftStringArithmeticExtendsOrTruncates(t *testing.T) {
	v, exc := applyArithShift(value.NewString("ab"), value.NewInt(2), true)
	if exc != nil {
		t.Fatalf("unexpected exception: %v", exc)
	}
	if v.Str() != "ab\x00\x00" {
		t.Errorf("left arithmetic shift should extend: got %q", v.Str())
	}
	v, exc = applyArithShift(value.NewString("abcd"), value.NewInt(1), false)
	if exc != nil {
		t.Fatalf("unexpected exception: %v", exc)
	}
	if v.Str() != "abc" {
		t.Errorf("right arithmetic shift should truncate: got %q", v.Str())
	}
}

func TestApplySpaceship(t *testing.T) {
	v, _ := applySpaceship(value.NewInt(1), value.NewInt(2))
	if v.Int() != -1 {
		t.Errorf("1 <=> 2 should be -1, got %v", v.Dump())
	}
	v, _ = applySpaceship(value.NewReal(math.NaN()), value.NewReal(1))
	if v.Kind() != value.String || v.Str() != "unordered" {
		t.Errorf("NaN <=> 1 should be \"unordered\", got %v", v.Dump())
	}
}

func TestApplyOrderingThrowsOnUnordered(t *testing.T) {
	_, exc := applyOrdering(opLt, value.NewReal(math.NaN()), value.NewReal(1))
	if exc == nil {
		t.Error("< between unordered operands should throw")
	}
}

func TestApplyNegOverflow(t *testing.T) {
	if _, exc := applyNeg(value.NewInt(math.MinInt64)); exc == nil {
		t.Error("negating MinInt64 should overflow")
	}
}

func TestApplyAbsOverflow(t *testing.T) {
	if _, exc := applyAbs(value.NewInt(math.MinInt64)); exc == nil {
		t.Error("abs(MinInt64) should overflow")
	}
}

func TestToRoundedIntRange(t *testing.T) {
	if _, exc := toRoundedInt("__iround", math.MaxFloat64); exc == nil {
		t.Error("out-of-range float should throw converting to int64")
	}
	v, exc := toRoundedInt("__iround", 3.0)
	if exc != nil {
		t.Fatalf("unexpected exception: %v", exc)
	}
	if v.Int() != 3 {
		t.Errorf("got %d, want 3", v.Int())
	}
}
