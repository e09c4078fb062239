package ingest

import (
	"math"

	"estiscan/domain/core"
	"estiscan/ports"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// discreteDistinctLimit is the distinct-count ceiling under which a column
// is hinted as discrete. Mirrors the rule of thumb used for categorical
// detection upstream of the mixed estimator variant.
const discreteDistinctLimit = 20

// profileColumn summarizes a coerced column for the command surface
func profileColumn(key core.VariableKey, values []float64) ports.ColumnProfile {
	profile := ports.ColumnProfile{Key: key, Count: len(values)}

	distinct := make(map[float64]struct{}, len(values))
	allIntegral := true
	for _, v := range values {
		distinct[v] = struct{}{}
		if v != math.Trunc(v) {
			allIntegral = false
		}
	}
	profile.DistinctCount = len(distinct)
	profile.LooksDiscrete = allIntegral &&
		(profile.DistinctCount <= discreteDistinctLimit ||
			float64(profile.DistinctCount) < 0.05*float64(len(values)))

	profile.Mean, _ = stats.Mean(values)
	profile.StdDev, _ = stats.StandardDeviation(values)
	profile.Min, _ = stats.Min(values)
	profile.Max, _ = stats.Max(values)
	profile.NormalityScore = normalityScore(values, profile.Mean, profile.StdDev)
	return profile
}

// normalityScore is a Jarque-Bera style p-value: how plausibly Gaussian the
// column looks. Purely advisory; the estimator itself is nonparametric.
func normalityScore(values []float64, mean, stdDev float64) float64 {
	n := float64(len(values))
	if n < 8 || stdDev == 0 {
		return 0
	}

	var m3, m4 float64
	for _, v := range values {
		d := (v - mean) / stdDev
		m3 += d * d * d
		m4 += d * d * d * d
	}
	skew := m3 / n
	kurt := m4/n - 3

	jb := n / 6 * (skew*skew + kurt*kurt/4)
	chi := distuv.ChiSquared{K: 2}
	return 1 - chi.CDF(jb)
}
