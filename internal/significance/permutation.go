// Package significance implements the repeated-shuffle permutation test for
// "this dependency could arise by chance". Each repetition shuffles the
// y-samples with its own deterministically derived stream, recomputes the
// statistic, and the p-value is the continuity-corrected fraction of shuffled
// magnitudes meeting or exceeding the observed one.
package significance

import (
	"context"
	"fmt"
	"math"

	"estiscan/ports"
)

// StatFunc recomputes the statistic of interest with the y-variable's
// columns replaced by a shuffled copy. The x and condition samples are held
// fixed by the caller's closure.
type StatFunc func(yCols [][]float64) (float64, error)

// Config identifies the unit under test so repetition seeds derive purely
// from (base seed, combination, repetition index).
type Config struct {
	Repetitions    int
	Seed           int64
	RunID          string
	CombinationKey string
}

// Tester runs permutation tests against a seeded stream source
type Tester struct {
	rng ports.RNGPort
}

// NewTester creates a permutation tester
func NewTester(rng ports.RNGPort) *Tester {
	return &Tester{rng: rng}
}

// PValue estimates the empirical p-value for the observed statistic. The
// (count+1)/(repetitions+1) correction keeps the result inside (0, 1]: an
// empirical test can never certify a zero probability.
func (t *Tester) PValue(ctx context.Context, yCols [][]float64, observed float64, stat StatFunc, cfg Config) (float64, error) {
	if cfg.Repetitions <= 0 {
		return math.NaN(), fmt.Errorf("permutation test needs at least one repetition, got %d", cfg.Repetitions)
	}
	if math.IsNaN(observed) {
		return math.NaN(), nil
	}

	n := 0
	if len(yCols) > 0 {
		n = len(yCols[0])
	}
	threshold := math.Abs(observed)

	count := 0
	shuffled := make([][]float64, len(yCols))
	for c := range shuffled {
		shuffled[c] = make([]float64, n)
	}

	for rep := 0; rep < cfg.Repetitions; rep++ {
		stream, err := t.rng.Stream(ctx, cfg.RunID, "permutation",
			fmt.Sprintf("%s#%d", cfg.CombinationKey, rep), cfg.Seed)
		if err != nil {
			return math.NaN(), err
		}

		// One row permutation shared by all of y's dimensions, so a
		// multivariate y keeps its internal structure intact.
		perm := stream.Perm(n)
		for c, col := range yCols {
			for i, p := range perm {
				shuffled[c][i] = col[p]
			}
		}

		value, err := stat(shuffled)
		if err != nil {
			return math.NaN(), fmt.Errorf("permutation repetition %d: %w", rep, err)
		}
		if math.Abs(value) >= threshold {
			count++
		}
	}

	return float64(count+1) / float64(cfg.Repetitions+1), nil
}
