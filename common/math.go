package common

import "math"

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Sign returns -1, 0 or 1.
func Sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// PositiveOr returns v when it is a usable positive number, otherwise fallback.
// Timer and divisor settings go through this before use.
func PositiveOr(v, fallback float64) float64 {
	if v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0) {
		return v
	}
	return fallback
}

// NonNegative clamps negative and NaN values to zero.
func NonNegative(v float64) float64 {
	if v > 0 {
		return v
	}
	return 0
}
