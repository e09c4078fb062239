// Package normalize maps raw mutual information onto a bounded, signed
// correlation-like scale so non-linear dependency scores read like Pearson
// coefficients.
package normalize

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Coefficient converts MI (nats) into a statistic in [-1, 1] via the
// Gaussian-equivalent transform sqrt(1 - exp(-2*MI)). MI carries no sign of
// its own, so the sign is borrowed from the ordinary linear correlation of
// the same aligned samples; a zero or undefined correlation (constant input)
// defaults to positive. NaN in, NaN out.
func Coefficient(mi float64, x, y []float64) float64 {
	if math.IsNaN(mi) {
		return math.NaN()
	}
	// Negative MI is estimator noise around independence; floor it here, at
	// the reporting boundary, never inside the estimator.
	if mi < 0 {
		mi = 0
	}
	magnitude := math.Sqrt(1 - math.Exp(-2*mi))
	return TrendSign(x, y) * magnitude
}

// TrendSign returns -1 when the linear correlation of x and y is negative,
// +1 otherwise (including zero and undefined correlations).
func TrendSign(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 2 {
		return 1
	}
	corr := stat.Correlation(x, y, nil)
	if math.IsNaN(corr) || corr >= 0 {
		return 1
	}
	return -1
}
