package estimate

import (
	"time"

	"estiscan/domain/core"
)

// Run is one completed batch estimation with its request and result table,
// as persisted by the run repository.
type Run struct {
	ID        core.RunID `json:"id"`
	Source    string     `json:"source,omitempty"` // dataset path or caller tag
	Request   Request    `json:"request"`
	Table     *Table     `json:"table"`
	CreatedAt time.Time  `json:"created_at"`
}

// RunSummary is the listing view of a persisted run
type RunSummary struct {
	ID        core.RunID `json:"id"`
	Source    string     `json:"source,omitempty"`
	CellCount int        `json:"cell_count"`
	CreatedAt time.Time  `json:"created_at"`
}

// NewRun stamps a run around a finished table. The run adopts the table's
// identity so the id a caller sees on the result is the id the run is
// stored under.
func NewRun(source string, req Request, table *Table) *Run {
	return &Run{
		ID:        table.RunID,
		Source:    source,
		Request:   req,
		Table:     table,
		CreatedAt: time.Now().UTC(),
	}
}
