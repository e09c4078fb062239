package ports

import (
	"context"

	"estiscan/domain/core"
	"estiscan/domain/estimate"
)

// RunRepository persists completed estimation runs and their cells
type RunRepository interface {
	SaveRun(ctx context.Context, run *estimate.Run) error
	GetRun(ctx context.Context, id core.RunID) (*estimate.Run, error)
	ListRuns(ctx context.Context, limit, offset int) ([]estimate.RunSummary, error)
}
