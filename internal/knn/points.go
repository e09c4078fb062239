package knn

import (
	"math"
	"sort"
)

// PointSet is a column-major set of N points in d dimensions under the
// Chebyshev (max-coordinate-difference) metric. Dimensions flagged discrete
// use exact-match distance instead: 0 on equality, +Inf otherwise, so a
// neighborhood never crosses a category boundary.
type PointSet struct {
	cols     [][]float64
	discrete []bool
	n        int
}

// NewPointSet builds a point set from dimension slices of equal length
func NewPointSet(cols [][]float64) PointSet {
	n := 0
	if len(cols) > 0 {
		n = len(cols[0])
	}
	return PointSet{cols: cols, discrete: make([]bool, len(cols)), n: n}
}

// NewMixedPointSet builds a point set with per-dimension discreteness flags
func NewMixedPointSet(cols [][]float64, discrete []bool) PointSet {
	ps := NewPointSet(cols)
	copy(ps.discrete, discrete)
	return ps
}

// Len returns the number of points
func (p PointSet) Len() int { return p.n }

// Dims returns the dimensionality
func (p PointSet) Dims() int { return len(p.cols) }

// HasDiscrete reports whether any dimension uses the exact-match metric
func (p PointSet) HasDiscrete() bool {
	for _, d := range p.discrete {
		if d {
			return true
		}
	}
	return false
}

// At gathers point i into dst (len >= Dims) and returns it
func (p PointSet) At(i int, dst []float64) []float64 {
	for d, col := range p.cols {
		dst[d] = col[i]
	}
	return dst[:len(p.cols)]
}

// Dist returns the distance between points i and j
func (p PointSet) Dist(i, j int) float64 {
	best := 0.0
	for d, col := range p.cols {
		if p.discrete[d] {
			if col[i] != col[j] {
				return math.Inf(1)
			}
			continue
		}
		if diff := math.Abs(col[i] - col[j]); diff > best {
			best = diff
		}
	}
	return best
}

// Counter1D answers open-interval count queries over a single dimension via
// a sorted copy. This is the fast path for univariate marginal counts.
type Counter1D struct {
	sorted []float64
}

// NewCounter1D copies and sorts the values
func NewCounter1D(values []float64) Counter1D {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return Counter1D{sorted: sorted}
}

// CountWithin returns the number of values v with |v-center| < r, excluding
// one occurrence of the center itself. The interval is open on both sides:
// ties at exactly r are not neighbors.
func (c Counter1D) CountWithin(center, r float64) int {
	if r <= 0 {
		return 0
	}
	lo := sort.Search(len(c.sorted), func(i int) bool { return c.sorted[i] > center-r })
	hi := sort.Search(len(c.sorted), func(i int) bool { return c.sorted[i] >= center+r })
	count := hi - lo - 1 // exclude the query point, which lies inside any open interval
	if count < 0 {
		count = 0
	}
	return count
}
