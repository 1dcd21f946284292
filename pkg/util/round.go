package util

import (
	"math"

	"github.com/shopspring/decimal"
)

// RoundHalfUp rounds x to the given number of decimal places, halves away from zero.
// The decimal representation of x is used, so 12.75 rounds to 12.8 rather than
// following the binary value of the float.
func RoundHalfUp(x float64, places int32) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	f, _ := decimal.NewFromFloat(x).Round(places).Float64()
	return f
}

// Clamp limits x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	return math.Min(math.Max(x, lo), hi)
}
