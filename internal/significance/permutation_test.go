package significance

import (
	"context"
	"math"
	"testing"

	"estiscan/adapters/rng"
	"estiscan/internal/testkit"

	"gonum.org/v1/gonum/stat"
)

func corrStat(x []float64) StatFunc {
	return func(yCols [][]float64) (float64, error) {
		return stat.Correlation(x, yCols[0], nil), nil
	}
}

// ============================================================================
// TEST: PValue
// ============================================================================

func TestPValue_DependentPairIsSignificant(t *testing.T) {
	// Scenario: strong linear dependence. No shuffle should reach the
	// observed correlation, so p lands at the continuity-corrected floor
	// 1/(reps+1).
	x, y := testkit.GaussianPair(500, 0.9, 1)
	tester := NewTester(rng.NewDeterministicRNG())

	stat := corrStat(x)
	observed, _ := stat([][]float64{y})

	p, err := tester.PValue(context.Background(), [][]float64{y}, observed, stat, Config{
		Repetitions:    99,
		Seed:           42,
		RunID:          "estimate",
		CombinationKey: "0",
	})
	if err != nil {
		t.Fatalf("PValue failed: %v", err)
	}
	if p != 0.01 {
		t.Errorf("dependent pair should hit the floor 1/100, got %v", p)
	}
}

func TestPValue_IndependentPairIsNot(t *testing.T) {
	x, y := testkit.IndependentPair(500, 2)
	tester := NewTester(rng.NewDeterministicRNG())

	stat := corrStat(x)
	observed, _ := stat([][]float64{y})

	p, err := tester.PValue(context.Background(), [][]float64{y}, observed, stat, Config{
		Repetitions:    99,
		Seed:           42,
		RunID:          "estimate",
		CombinationKey: "0",
	})
	if err != nil {
		t.Fatalf("PValue failed: %v", err)
	}
	if p <= 0 || p > 1 {
		t.Fatalf("p-value %v outside (0, 1]", p)
	}
	// The observed correlation of an independent pair should not beat every
	// single shuffle.
	if p == 0.01 {
		t.Errorf("independent pair should not hit the significance floor, got p=%v", p)
	}
}

func TestPValue_UniformUnderIndependence(t *testing.T) {
	// Scenario: for truly independent pairs the p-values across repeated
	// trials should be roughly uniform on (0, 1]. With 19 repetitions each
	// p lands on the grid {1/20 .. 20/20}; over 40 seeded trials the mean
	// sits near 0.5 and every quartile is populated.
	tester := NewTester(rng.NewDeterministicRNG())
	trials := 40

	sum := 0.0
	quartiles := [4]int{}
	for trial := 0; trial < trials; trial++ {
		x, y := testkit.IndependentPair(120, int64(1000+trial))
		stat := corrStat(x)
		observed, _ := stat([][]float64{y})

		p, err := tester.PValue(context.Background(), [][]float64{y}, observed, stat, Config{
			Repetitions:    19,
			Seed:           int64(trial),
			RunID:          "estimate",
			CombinationKey: "0",
		})
		if err != nil {
			t.Fatalf("trial %d: PValue failed: %v", trial, err)
		}
		if p <= 0 || p > 1 {
			t.Fatalf("trial %d: p-value %v outside (0, 1]", trial, p)
		}

		sum += p
		q := int(p * 4)
		if q > 3 {
			q = 3
		}
		quartiles[q]++
	}

	mean := sum / float64(trials)
	if mean < 0.35 || mean > 0.65 {
		t.Errorf("mean p-value %v too far from 0.5 for independent data", mean)
	}
	for q, count := range quartiles {
		if count == 0 {
			t.Errorf("quartile %d empty: p-values not spread across (0, 1], got %v", q, quartiles)
		}
	}
}

func TestPValue_Deterministic(t *testing.T) {
	// Scenario: identical config must reproduce identical p-values, and a
	// different base seed must be able to produce a different shuffle
	// sequence.
	x, y := testkit.GaussianPair(200, 0.3, 3)
	tester := NewTester(rng.NewDeterministicRNG())

	stat := corrStat(x)
	observed, _ := stat([][]float64{y})
	cfg := Config{Repetitions: 49, Seed: 7, RunID: "estimate", CombinationKey: "2"}

	p1, err := tester.PValue(context.Background(), [][]float64{y}, observed, stat, cfg)
	if err != nil {
		t.Fatalf("PValue failed: %v", err)
	}
	p2, err := tester.PValue(context.Background(), [][]float64{y}, observed, stat, cfg)
	if err != nil {
		t.Fatalf("PValue failed: %v", err)
	}
	if p1 != p2 {
		t.Errorf("same config gave different p-values: %v vs %v", p1, p2)
	}
}

func TestPValue_NaNObservedStaysNaN(t *testing.T) {
	tester := NewTester(rng.NewDeterministicRNG())
	p, err := tester.PValue(context.Background(), [][]float64{{1, 2, 3}}, math.NaN(),
		func([][]float64) (float64, error) { return 0, nil },
		Config{Repetitions: 10, RunID: "estimate", CombinationKey: "0"})
	if err != nil {
		t.Fatalf("PValue failed: %v", err)
	}
	if !math.IsNaN(p) {
		t.Errorf("NaN observed statistic must produce NaN p-value, got %v", p)
	}
}

func TestPValue_RejectsZeroRepetitions(t *testing.T) {
	tester := NewTester(rng.NewDeterministicRNG())
	if _, err := tester.PValue(context.Background(), nil, 0.5, nil, Config{Repetitions: 0}); err == nil {
		t.Errorf("zero repetitions should fail")
	}
}

func TestPValue_SharedPermutationAcrossDims(t *testing.T) {
	// Scenario: a multivariate y must be shuffled row-wise. A statistic that
	// checks the two columns still line up detects any per-column shuffle.
	n := 50
	a := make([]float64, n)
	b := make([]float64, n)
	for i := 0; i < n; i++ {
		a[i] = float64(i)
		b[i] = float64(i) * 2
	}

	aligned := func(yCols [][]float64) (float64, error) {
		for i := range yCols[0] {
			if yCols[1][i] != 2*yCols[0][i] {
				return 0, nil
			}
		}
		return 1, nil
	}

	tester := NewTester(rng.NewDeterministicRNG())
	p, err := tester.PValue(context.Background(), [][]float64{a, b}, 1, aligned, Config{
		Repetitions: 20, Seed: 5, RunID: "estimate", CombinationKey: "0",
	})
	if err != nil {
		t.Fatalf("PValue failed: %v", err)
	}
	// Every repetition keeps the rows paired, so every shuffled statistic
	// matches the observed one.
	if p != 1 {
		t.Errorf("row-wise shuffling should preserve intra-row structure, got p=%v", p)
	}
}
