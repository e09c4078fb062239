package batch

import (
	"math"
	"testing"
)

// ============================================================================
// TEST: maskColumns
// ============================================================================

func TestMaskColumns_NilPassthrough(t *testing.T) {
	cols := [][]float64{{1, 2, 3}}
	got := maskColumns(cols, nil)
	if &got[0][0] != &cols[0][0] {
		t.Errorf("nil mask should return the columns as-is")
	}
}

func TestMaskColumns_FiltersAndCopies(t *testing.T) {
	cols := [][]float64{{1, 2, 3, 4}, {10, 20, 30, 40}}
	mask := []bool{true, false, true, false}

	got := maskColumns(cols, mask)
	if len(got[0]) != 2 || got[0][0] != 1 || got[0][1] != 3 {
		t.Errorf("first column misfiltered: %v", got[0])
	}
	if len(got[1]) != 2 || got[1][0] != 10 || got[1][1] != 30 {
		t.Errorf("second column misfiltered: %v", got[1])
	}

	got[0][0] = 99
	if cols[0][0] != 1 {
		t.Errorf("mask filtering must not mutate the source columns")
	}
}

// ============================================================================
// TEST: alignLagged
// ============================================================================

func TestAlignLagged_ZeroLag(t *testing.T) {
	x := [][]float64{{1, 2, 3, 4, 5}}
	y := [][]float64{{10, 20, 30, 40, 50}}

	xs, ys, zs, n := alignLagged(x, y, nil, 0, 0, false)
	if n != 5 {
		t.Fatalf("zero lag should keep all 5 samples, got %d", n)
	}
	if xs[0][0] != 1 || ys[0][0] != 10 || zs != nil {
		t.Errorf("zero lag must pair samples as-is")
	}
}

func TestAlignLagged_PositiveLag(t *testing.T) {
	// Scenario: lag 2 pairs x[t] with y[t+2], leaving 3 of 5 samples.
	x := [][]float64{{1, 2, 3, 4, 5}}
	y := [][]float64{{10, 20, 30, 40, 50}}

	xs, ys, _, n := alignLagged(x, y, nil, 2, 0, false)
	if n != 3 {
		t.Fatalf("lag 2 over 5 samples should leave 3, got %d", n)
	}
	for i := 0; i < n; i++ {
		if xs[0][i] != x[0][i] {
			t.Errorf("x should start at t=0, got %v", xs[0])
		}
		if ys[0][i] != y[0][i+2] {
			t.Errorf("y should be offset by the lag, got %v", ys[0])
		}
	}
}

func TestAlignLagged_NegativeLag(t *testing.T) {
	// Scenario: lag -2 pairs x[t] with y[t-2], so x starts late instead.
	x := [][]float64{{1, 2, 3, 4, 5}}
	y := [][]float64{{10, 20, 30, 40, 50}}

	xs, ys, _, n := alignLagged(x, y, nil, -2, 0, false)
	if n != 3 {
		t.Fatalf("lag -2 over 5 samples should leave 3, got %d", n)
	}
	if xs[0][0] != 3 || ys[0][0] != 10 {
		t.Errorf("negative lag misaligned: x=%v y=%v", xs[0], ys[0])
	}
}

func TestAlignLagged_ConditionLag(t *testing.T) {
	// Scenario: the condition carries its own lag; the overlap must satisfy
	// both offsets at once.
	x := [][]float64{{1, 2, 3, 4, 5, 6}}
	y := [][]float64{{10, 20, 30, 40, 50, 60}}
	z := [][]float64{{100, 200, 300, 400, 500, 600}}

	xs, ys, zs, n := alignLagged(x, y, z, 1, -2, true)
	// t ranges over [2, 5): x[2..4], y[3..5], z[0..2].
	if n != 3 {
		t.Fatalf("expected overlap 3, got %d", n)
	}
	if xs[0][0] != 3 || ys[0][0] != 40 || zs[0][0] != 100 {
		t.Errorf("condition lag misaligned: x=%v y=%v z=%v", xs[0], ys[0], zs[0])
	}
}

func TestAlignLagged_NoOverlap(t *testing.T) {
	x := [][]float64{{1, 2, 3}}
	y := [][]float64{{1, 2, 3}}

	if _, _, _, n := alignLagged(x, y, nil, 5, 0, false); n != 0 {
		t.Errorf("lag beyond the series length should leave nothing, got %d", n)
	}
	if _, _, _, n := alignLagged(nil, nil, nil, 0, 0, false); n != 0 {
		t.Errorf("empty input should leave nothing, got %d", n)
	}
}

// ============================================================================
// TEST: allFinite
// ============================================================================

func TestAllFinite(t *testing.T) {
	if !allFinite([][]float64{{1, 2}}, [][]float64{{3}}) {
		t.Errorf("finite values misreported")
	}
	if allFinite([][]float64{{1, math.NaN()}}) {
		t.Errorf("NaN must be detected")
	}
	if allFinite(nil, [][]float64{{math.Inf(-1)}}) {
		t.Errorf("infinity must be detected")
	}
}
