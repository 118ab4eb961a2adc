package vmath

import "math"

// Float helpers for the tile simulation
// All inputs are assumed finite unless a function states otherwise

// Clamp limits v to [lo, hi]; hi below lo collapses to lo
func Clamp(v, lo, hi float64) float64 {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampInt limits v to [lo, hi]
func ClampInt(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

// Finite reports whether v is neither NaN nor ±Inf
func Finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// OrZero returns v when finite, 0 otherwise
func OrZero(v float64) float64 {
	if Finite(v) {
		return v
	}
	return 0
}

// FramePow raises base to dt*60, the per-frame factor normalized to a 60 Hz cadence
func FramePow(base, dt float64) float64 {
	return math.Pow(base, dt*60)
}

// Settle zeroes v when its magnitude is below eps
func Settle(v, eps float64) float64 {
	if math.Abs(v) < eps {
		return 0
	}
	return v
}

// RoundHalfUp rounds to the nearest integer, halves toward +Inf
func RoundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
