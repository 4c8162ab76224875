package parser

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// stripGrouping removes the '_' digit-grouping separators spec.md §4.4
// allows in numeric literals; the lexer preserves them verbatim in Literal.
func stripGrouping(s string) string {
	if !strings.ContainsRune(s, '_') {
		return s
	}
	return strings.ReplaceAll(s, "_", "")
}

// parseIntLiteral parses an integer literal in the lexer's verbatim form
// (optional 0x/0b prefix, '_' grouping) into an int64, reporting overflow
// distinctly from a malformed literal.
func parseIntLiteral(lit string) (int64, error) {
	s := stripGrouping(lit)
	base := 10
	switch {
	case strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X"):
		base = 16
		s = s[2:]
	case strings.HasPrefix(s, "0b") || strings.HasPrefix(s, "0B"):
		base = 2
		s = s[2:]
	}
	// Bit size 63, not 64: a bare literal carries no sign token, so its
	// only valid range is [0, math.MaxInt64] (2^63-1) — anything from
	// 2^63 up to 2^64-1 parses fine as a uint64 but would silently wrap
	// negative once cast to int64, which spec.md §4.4 requires be a
	// parser error instead.
	v, err := strconv.ParseUint(s, base, 63)
	if err != nil {
		if numErr, ok := err.(*strconv.NumError); ok && numErr.Err == strconv.ErrRange {
			return 0, fmt.Errorf("integer literal %q overflows a 64-bit signed integer", lit)
		}
		return 0, fmt.Errorf("invalid integer literal %q", lit)
	}
	return int64(v), nil
}

// parseFloatLiteral parses a real literal in the lexer's verbatim form: a
// decimal mantissa, an optional fractional part, and an optional exponent
// introduced by e/E (decimal, base 10) or p/P (binary, base 2) — spec.md
// §4.4. strconv.ParseFloat natively understands e/E but not a bare decimal
// mantissa with a p/P binary exponent, so that form is split and scaled by
// hand.
func parseFloatLiteral(lit string) (float64, error) {
	s := stripGrouping(lit)

	expIdx, expBase := -1, 10
	for i, c := range s {
		if c == 'e' || c == 'E' {
			expIdx, expBase = i, 10
			break
		}
		if c == 'p' || c == 'P' {
			expIdx, expBase = i, 2
			break
		}
	}
	if expIdx < 0 || expBase == 10 {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid real literal %q", lit)
		}
		return v, nil
	}

	mantissa, expPart := s[:expIdx], s[expIdx+1:]
	m, err := strconv.ParseFloat(mantissa, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid real literal %q", lit)
	}
	e, err := strconv.Atoi(expPart)
	if err != nil {
		return 0, fmt.Errorf("invalid real literal exponent in %q", lit)
	}
	v := m * math.Pow(2, float64(e))
	if math.IsInf(v, 0) {
		return 0, fmt.Errorf("real literal %q is out of range", lit)
	}
	return v, nil
}
