package ports

import (
	"estiscan/domain/core"
	"estiscan/domain/estimate"
)

// ColumnProfile summarizes one ingested column for the caller; the engine
// itself never needs it, but the command surface uses the discreteness hint
// to pre-fill per-variable flags.
type ColumnProfile struct {
	Key            core.VariableKey
	Count          int
	Missing        int
	DistinctCount  int
	Mean           float64
	StdDev         float64
	Min            float64
	Max            float64
	NormalityScore float64
	LooksDiscrete  bool
}

// DatasetReaderPort is the tabular collaborator boundary: it must deliver
// aligned-length numeric columns (or fail) before the core runs.
type DatasetReaderPort interface {
	Read(path string) (map[core.VariableKey]estimate.Variable, []ColumnProfile, error)
}
