package ports

import (
	"context"

	"estiscan/domain/core"
	"estiscan/domain/estimate"
)

// EstimatorPort is the core-facing contract: callers hand over named sample
// arrays plus request parameters and receive the request-ordered result
// table. Configuration errors abort before computation; per-combination
// degeneracy surfaces as NaN cells, never as an error.
type EstimatorPort interface {
	Estimate(ctx context.Context, vars map[core.VariableKey]estimate.Variable, req estimate.Request) (*estimate.Table, error)

	// Entropy estimates the differential entropy (nats) of one variable,
	// optionally masked. Unlike batch cells there is no sibling to isolate,
	// so degenerate input surfaces as an error.
	Entropy(ctx context.Context, v estimate.Variable, k int, mask []bool) (float64, error)
}
