// Package entropy implements the nearest-neighbor information estimators:
// Kozachenko-Leonenko differential entropy and the Kraskov-Stögbauer-
// Grassberger mutual information family, all under the Chebyshev metric.
package entropy

import (
	"fmt"
	"math"

	"estiscan/domain/core"
	"estiscan/internal/knn"

	"gonum.org/v1/gonum/mathext"
)

// EstimateEntropy computes the Kozachenko-Leonenko differential entropy of a
// d-dimensional point cloud from k-th-neighbor distances, in nats. The unit
// ball in the max metric has volume (2r)^d, which yields the d*log(2r) term.
// The result can be negative; exact duplicate saturation drives it to -Inf.
func EstimateEntropy(cols [][]float64, k int) (float64, error) {
	n, err := checkInput(cols, k)
	if err != nil {
		return math.NaN(), err
	}

	searcher := knn.NewSearcher(knn.NewPointSet(cols))
	dims := float64(len(cols))

	logSum := 0.0
	for i := 0; i < n; i++ {
		r := searcher.KthDistance(i, k)
		logSum += math.Log(2 * r)
	}

	return mathext.Digamma(float64(n)) - mathext.Digamma(float64(k)) + dims*logSum/float64(n), nil
}

// checkInput validates a point cloud for estimation: at least k+1 samples
// and every value finite.
func checkInput(cols [][]float64, k int) (int, error) {
	if k < 1 {
		return 0, fmt.Errorf("%w: got k=%d", core.ErrInvalidNeighborCount, k)
	}
	if len(cols) == 0 || len(cols[0]) == 0 {
		return 0, core.ErrNoVariables
	}
	n := len(cols[0])
	if n < k+1 {
		return 0, fmt.Errorf("%w: need at least k+1=%d samples, got %d",
			core.ErrInsufficientData, k+1, n)
	}
	for _, col := range cols {
		if len(col) != n {
			return 0, core.ErrLengthMismatch
		}
		for _, v := range col {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return 0, fmt.Errorf("%w: non-finite value in input", core.ErrInsufficientData)
			}
		}
	}
	return n, nil
}
