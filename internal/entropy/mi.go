package entropy

import (
	"math"

	"estiscan/internal/knn"

	"gonum.org/v1/gonum/mathext"
)

// Space is one variable's aligned sample columns plus its metric flavor.
// Discrete spaces count neighbors by exact value match instead of the
// continuous Chebyshev radius (mixed KSG variant).
type Space struct {
	Cols     [][]float64
	Discrete bool
}

// N returns the sample count
func (s Space) N() int {
	if len(s.Cols) == 0 {
		return 0
	}
	return len(s.Cols[0])
}

// Dims returns the dimensionality
func (s Space) Dims() int { return len(s.Cols) }

// EstimateMI computes the KSG estimate of I(X;Y) in nats:
//
//	I = psi(k) + psi(N) - mean_i[psi(nx_i+1) + psi(ny_i+1)]
//
// where nx_i and ny_i count the points strictly inside the ball whose radius
// is the distance to the i-th point's k-th neighbor in the joint space.
// The value may come out slightly negative on independent data; that is
// estimator variance, not an error, and is deliberately not floored here.
func EstimateMI(x, y Space, k int) (float64, error) {
	n, err := checkSpaces(k, x, y)
	if err != nil {
		return math.NaN(), err
	}

	joint := knn.NewSearcher(jointSet(x, y))
	countX := newMarginalCounter(x)
	countY := newMarginalCounter(y)

	sum := 0.0
	for i := 0; i < n; i++ {
		r := joint.KthDistance(i, k)
		nx := countX.count(i, r)
		ny := countY.count(i, r)
		sum += mathext.Digamma(float64(nx)+1) + mathext.Digamma(float64(ny)+1)
	}

	return mathext.Digamma(float64(k)) + mathext.Digamma(float64(n)) - sum/float64(n), nil
}

// EstimateConditionalMI computes the Frenzel-Pompe estimate of I(X;Y|Z):
//
//	I = psi(k) - mean_i[psi(nxz_i+1) + psi(nyz_i+1) - psi(nz_i+1)]
//
// with the radius taken from the (X,Y,Z) joint space and counts in the
// (X,Z), (Y,Z) and Z subspaces.
func EstimateConditionalMI(x, y, z Space, k int) (float64, error) {
	n, err := checkSpaces(k, x, y, z)
	if err != nil {
		return math.NaN(), err
	}

	joint := knn.NewSearcher(jointSet(x, y, z))
	countXZ := newMarginalCounter(x, z)
	countYZ := newMarginalCounter(y, z)
	countZ := newMarginalCounter(z)

	sum := 0.0
	for i := 0; i < n; i++ {
		r := joint.KthDistance(i, k)
		nxz := countXZ.count(i, r)
		nyz := countYZ.count(i, r)
		nz := countZ.count(i, r)
		sum += mathext.Digamma(float64(nxz)+1) + mathext.Digamma(float64(nyz)+1) -
			mathext.Digamma(float64(nz)+1)
	}

	return mathext.Digamma(float64(k)) - sum/float64(n), nil
}

func checkSpaces(k int, spaces ...Space) (int, error) {
	cols := make([][]float64, 0, 4)
	for _, s := range spaces {
		cols = append(cols, s.Cols...)
	}
	return checkInput(cols, k)
}

// jointSet embeds the given spaces side by side into one point set,
// carrying each space's metric flavor on its own dimensions.
func jointSet(spaces ...Space) knn.PointSet {
	var cols [][]float64
	var discrete []bool
	for _, s := range spaces {
		for _, col := range s.Cols {
			cols = append(cols, col)
			discrete = append(discrete, s.Discrete)
		}
	}
	return knn.NewMixedPointSet(cols, discrete)
}

// marginalCounter counts the neighbors of point i strictly within radius r
// when the points are re-projected onto a subspace.
type marginalCounter interface {
	count(i int, r float64) int
}

// newMarginalCounter picks the cheapest correct counter for a subspace:
// sorted binary search for the univariate continuous case, exact-match
// frequencies for a lone discrete variable, a spatial searcher otherwise.
func newMarginalCounter(spaces ...Space) marginalCounter {
	if len(spaces) == 1 && spaces[0].Dims() == 1 {
		if spaces[0].Discrete {
			return newExactCounter(spaces[0].Cols[0])
		}
		return &sortedCounter{values: spaces[0].Cols[0], counter: knn.NewCounter1D(spaces[0].Cols[0])}
	}
	s := knn.NewSearcher(jointSet(spaces...))
	return searcherCounter{s}
}

type sortedCounter struct {
	values  []float64
	counter knn.Counter1D
}

func (c *sortedCounter) count(i int, r float64) int {
	return c.counter.CountWithin(c.values[i], r)
}

type searcherCounter struct {
	s knn.Searcher
}

func (c searcherCounter) count(i int, r float64) int {
	return c.s.CountWithin(i, r)
}

// exactCounter counts same-valued points, self excluded. The radius is
// irrelevant for a discrete variable: a neighbor either matches or it does
// not, which is what keeps the estimate unbiased when ties are common.
type exactCounter struct {
	values []float64
	freq   map[float64]int
}

func newExactCounter(values []float64) *exactCounter {
	freq := make(map[float64]int)
	for _, v := range values {
		freq[v]++
	}
	return &exactCounter{values: values, freq: freq}
}

func (c *exactCounter) count(i int, _ float64) int {
	return c.freq[c.values[i]] - 1
}
