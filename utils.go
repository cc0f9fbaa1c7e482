package gbtune

import (
	"math"

	"golang.org/x/exp/constraints"
)

//////
// Helper functions.
//////

// normalCDF is the cumulative distribution function of the standard normal
// distribution, used by PI and EI.
func normalCDF(x float64) float64 {
	return 0.5 * (1.0 + math.Erf(x/math.Sqrt2))
}

// normalPDF is the probability density function of the standard normal
// distribution, used by EI.
func normalPDF(x float64) float64 {
	return math.Exp(-x*x/2.0) / math.Sqrt(2.0*math.Pi)
}

// clamp bounds v to the inclusive range [lo, hi].
func clamp[T constraints.Integer | constraints.Float](v, lo, hi T) T {
	if v < lo {
		return lo
	}

	if v > hi {
		return hi
	}

	return v
}
