package estimate

import (
	"fmt"
	"math"

	"estiscan/domain/core"
)

// ============================================================================
// STABLE PRIMITIVES (Canonical, never change)
// ============================================================================

// Variable is a named sample array, or a matrix of arrays sharing the same
// observation count for multivariate embeddings. The engine treats the
// columns as read-only; shuffles and lag slices always act on copies.
type Variable struct {
	Key      core.VariableKey `json:"key"`
	Cols     [][]float64      `json:"cols"`
	Discrete bool             `json:"discrete,omitempty"`
}

// NewVariable wraps a single sample array
func NewVariable(key core.VariableKey, samples []float64) Variable {
	return Variable{Key: key, Cols: [][]float64{samples}}
}

// NewMultiVariable wraps a multivariate embedding (one slice per dimension)
func NewMultiVariable(key core.VariableKey, cols [][]float64) Variable {
	return Variable{Key: key, Cols: cols}
}

// N returns the observation count
func (v Variable) N() int {
	if len(v.Cols) == 0 {
		return 0
	}
	return len(v.Cols[0])
}

// Dims returns the embedding dimensionality
func (v Variable) Dims() int {
	return len(v.Cols)
}

// Validate checks internal consistency of the variable
func (v Variable) Validate() error {
	if v.Key.String() == "" {
		return core.NewValidationError("variable", "key cannot be empty")
	}
	if len(v.Cols) == 0 {
		return fmt.Errorf("%w: variable %s has no columns", core.ErrNoVariables, v.Key)
	}
	n := len(v.Cols[0])
	for i, col := range v.Cols {
		if len(col) != n {
			return fmt.Errorf("%w: variable %s column %d has %d samples, expected %d",
				core.ErrLengthMismatch, v.Key, i, len(col), n)
		}
	}
	return nil
}

// CombinationKey identifies one (x, y, lag) cell of a batch
type CombinationKey struct {
	X   core.VariableKey `json:"x"`
	Y   core.VariableKey `json:"y"`
	Lag int              `json:"lag"`
}

func (k CombinationKey) String() string {
	return fmt.Sprintf("%s~%s@%d", k.X, k.Y, k.Lag)
}

// Degeneracy explains why a combination produced NaN instead of a statistic
type Degeneracy string

const (
	DegeneracyNone          Degeneracy = ""
	DegeneracyOverlap       Degeneracy = "insufficient_overlap"
	DegeneracyNonFinite     Degeneracy = "non_finite_values"
	DegeneracyNeighborCount Degeneracy = "k_exceeds_neighbors"
)

// Cell is the outcome of one combination. A degenerate cell carries NaN in
// Statistic and MI plus the reason; sibling cells are unaffected.
type Cell struct {
	Key        CombinationKey `json:"key"`
	MI         float64        `json:"mi"`
	Statistic  float64        `json:"statistic"`
	PValue     float64        `json:"p_value"` // NaN unless significance testing was requested
	SampleSize int            `json:"sample_size"`
	Degeneracy Degeneracy     `json:"degeneracy,omitempty"`
}

// Degenerate reports whether this cell failed locally
func (c Cell) Degenerate() bool {
	return c.Degeneracy != DegeneracyNone
}

// DegenerateCell builds a NaN cell for a failed combination
func DegenerateCell(key CombinationKey, reason Degeneracy) Cell {
	return Cell{
		Key:        key,
		MI:         math.NaN(),
		Statistic:  math.NaN(),
		PValue:     math.NaN(),
		Degeneracy: reason,
	}
}

// Table collects the cells of one batch request, preserving the caller's
// combination ordering. Immutable once built.
type Table struct {
	RunID core.RunID `json:"run_id"`
	cells []Cell
	index map[CombinationKey]int
}

// NewTable assembles a table from request-ordered cells
func NewTable(runID core.RunID, cells []Cell) *Table {
	index := make(map[CombinationKey]int, len(cells))
	for i, c := range cells {
		index[c.Key] = i
	}
	return &Table{RunID: runID, cells: cells, index: index}
}

// Cells returns the cells in request order
func (t *Table) Cells() []Cell {
	out := make([]Cell, len(t.cells))
	copy(out, t.cells)
	return out
}

// Get looks up the cell for a combination
func (t *Table) Get(key CombinationKey) (Cell, bool) {
	i, ok := t.index[key]
	if !ok {
		return Cell{}, false
	}
	return t.cells[i], true
}

// Len returns the number of combinations
func (t *Table) Len() int {
	return len(t.cells)
}
