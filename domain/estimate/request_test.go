package estimate

import (
	"errors"
	"testing"

	"estiscan/domain/core"
)

func sampleVars() map[core.VariableKey]Variable {
	return map[core.VariableKey]Variable{
		"a": NewVariable("a", []float64{1, 2, 3, 4, 5}),
		"b": NewVariable("b", []float64{5, 4, 3, 2, 1}),
		"c": NewVariable("c", []float64{1, 1, 2, 2, 3}),
	}
}

// ============================================================================
// TEST: Request defaults and expansion
// ============================================================================

func TestNewRequest_Defaults(t *testing.T) {
	req := NewRequest([]core.VariableKey{"a"}, []core.VariableKey{"b"})
	if req.K != DefaultK {
		t.Errorf("default k should be %d, got %d", DefaultK, req.K)
	}
	if len(req.Lags) != 1 || req.Lags[0] != 0 {
		t.Errorf("default lags should be [0], got %v", req.Lags)
	}
	if req.Permutations != 0 {
		t.Errorf("significance testing should be off by default")
	}
}

func TestCombinations_XMajorOrdering(t *testing.T) {
	req := NewRequest([]core.VariableKey{"a", "b"}, []core.VariableKey{"c"})
	req.Lags = []int{-1, 0, 1}

	combos := req.Combinations()
	want := []CombinationKey{
		{X: "a", Y: "c", Lag: -1}, {X: "a", Y: "c", Lag: 0}, {X: "a", Y: "c", Lag: 1},
		{X: "b", Y: "c", Lag: -1}, {X: "b", Y: "c", Lag: 0}, {X: "b", Y: "c", Lag: 1},
	}
	if len(combos) != len(want) {
		t.Fatalf("expected %d combinations, got %d", len(want), len(combos))
	}
	for i := range want {
		if combos[i] != want[i] {
			t.Errorf("combination %d: got %v, want %v", i, combos[i], want[i])
		}
	}
}

// ============================================================================
// TEST: Validate
// ============================================================================

func TestValidate_AcceptsWellFormedRequest(t *testing.T) {
	req := NewRequest([]core.VariableKey{"a"}, []core.VariableKey{"b"})
	req.CondVar = "c"
	req.Mask = []bool{true, true, false, true, true}
	if err := req.Validate(sampleVars()); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}
}

func TestValidate_Rejections(t *testing.T) {
	vars := sampleVars()

	cases := []struct {
		name   string
		mutate func(*Request)
		want   error
	}{
		{"zero k", func(r *Request) { r.K = 0 }, core.ErrInvalidNeighborCount},
		{"empty x list", func(r *Request) { r.XVars = nil }, core.ErrNoVariables},
		{"negative permutations", func(r *Request) { r.Permutations = -5 }, core.ErrNegativePermutations},
		{"bad mask length", func(r *Request) { r.Mask = []bool{true} }, core.ErrMaskLengthMismatch},
		{"unknown condition", func(r *Request) { r.CondVar = "ghost" }, core.ErrVariableNotFound},
	}

	for _, tc := range cases {
		req := NewRequest([]core.VariableKey{"a"}, []core.VariableKey{"b"})
		tc.mutate(&req)
		if err := req.Validate(vars); !errors.Is(err, tc.want) {
			t.Errorf("%s: got %v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestValidate_MismatchedSampleCounts(t *testing.T) {
	vars := sampleVars()
	vars["short"] = NewVariable("short", []float64{1, 2})

	req := NewRequest([]core.VariableKey{"a"}, []core.VariableKey{"short"})
	if err := req.Validate(vars); !errors.Is(err, core.ErrLengthMismatch) {
		t.Errorf("expected ErrLengthMismatch, got %v", err)
	}
}

func TestValidate_EmptyLags(t *testing.T) {
	req := NewRequest([]core.VariableKey{"a"}, []core.VariableKey{"b"})
	req.Lags = nil
	if err := req.Validate(sampleVars()); err == nil {
		t.Errorf("empty lag list should be rejected")
	}
}

// ============================================================================
// TEST: Variable and Table
// ============================================================================

func TestVariable_Validate(t *testing.T) {
	ragged := NewMultiVariable("m", [][]float64{{1, 2, 3}, {1, 2}})
	if err := ragged.Validate(); !errors.Is(err, core.ErrLengthMismatch) {
		t.Errorf("ragged columns should be rejected, got %v", err)
	}

	empty := Variable{Key: "e"}
	if err := empty.Validate(); !errors.Is(err, core.ErrNoVariables) {
		t.Errorf("column-less variable should be rejected, got %v", err)
	}
}

func TestNewRun_AdoptsTableID(t *testing.T) {
	table := NewTable(core.RunID(core.NewID()), []Cell{
		{Key: CombinationKey{X: "a", Y: "b", Lag: 0}},
	})
	run := NewRun("test.csv", NewRequest([]core.VariableKey{"a"}, []core.VariableKey{"b"}), table)
	if run.ID != table.RunID {
		t.Errorf("run id %s must match the table id %s", run.ID, table.RunID)
	}
}

func TestTable_LookupAndOrder(t *testing.T) {
	cells := []Cell{
		{Key: CombinationKey{X: "a", Y: "b", Lag: 0}, Statistic: 0.5},
		{Key: CombinationKey{X: "a", Y: "b", Lag: 1}, Statistic: 0.7},
	}
	table := NewTable(core.RunID(core.NewID()), cells)

	if table.Len() != 2 {
		t.Fatalf("expected 2 cells, got %d", table.Len())
	}
	got, ok := table.Get(CombinationKey{X: "a", Y: "b", Lag: 1})
	if !ok || got.Statistic != 0.7 {
		t.Errorf("lookup returned %+v, ok=%v", got, ok)
	}
	if _, ok := table.Get(CombinationKey{X: "z", Y: "b", Lag: 0}); ok {
		t.Errorf("missing combination should not resolve")
	}

	// Cells returns a copy; mutating it must not reach the table.
	copied := table.Cells()
	copied[0].Statistic = -1
	again, _ := table.Get(CombinationKey{X: "a", Y: "b", Lag: 0})
	if again.Statistic != 0.5 {
		t.Errorf("table cells should be immutable through the accessor")
	}
}
