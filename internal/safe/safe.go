// Package safe coerces untrusted numeric input before arithmetic.
package safe

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Float returns v, or 0 when v is NaN or infinite.
func Float(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Number converts an arbitrary decoded value to a finite float.
// Anything that is not a finite number or a numeric string becomes 0.
func Number(v any) float64 {
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		return Float(n)
	case float32:
		return Float(float64(n))
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0
		}
		return Float(f)
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return Float(f)
	default:
		return 0
	}
}

// Divide returns a/b, or 0 when b is 0 or the quotient is not finite.
func Divide(a, b float64) float64 {
	a = Float(a)
	b = Float(b)
	if b == 0 {
		return 0
	}
	return Float(a / b)
}

// NonNegative clamps v to zero from below after the finite check.
func NonNegative(v float64) float64 {
	v = Float(v)
	if v < 0 {
		return 0
	}
	return v
}
