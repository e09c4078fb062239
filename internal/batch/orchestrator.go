// Package batch is the lag/batch orchestrator: it expands an estimation
// request into its (x, y, lag) combination set, aligns the sample arrays per
// combination, dispatches the estimator across bounded workers, and
// assembles the request-ordered result table. Combinations share no mutable
// state, so a degenerate cell never disturbs its siblings.
package batch

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"estiscan/domain/core"
	"estiscan/domain/estimate"
	"estiscan/internal/entropy"
	"estiscan/internal/normalize"
	"estiscan/internal/significance"
	"estiscan/ports"

	"golang.org/x/sync/semaphore"
)

// sequentialBatchLimit mirrors the original driver's heuristic: tiny batches
// are not worth the dispatch overhead.
const sequentialBatchLimit = 1

// Engine implements ports.EstimatorPort on top of the KSG estimators
type Engine struct {
	rng    ports.RNGPort
	tester *significance.Tester
}

// NewEngine creates the orchestrator with its random-stream source
func NewEngine(rng ports.RNGPort) *Engine {
	return &Engine{rng: rng, tester: significance.NewTester(rng)}
}

// Estimate runs the whole batch. Configuration errors abort before any
// computation; afterwards every combination yields a cell, NaN-valued when
// it degenerates locally.
func (e *Engine) Estimate(ctx context.Context, vars map[core.VariableKey]estimate.Variable, req estimate.Request) (*estimate.Table, error) {
	if err := req.Validate(vars); err != nil {
		return nil, err
	}

	combos := req.Combinations()
	cells := make([]estimate.Cell, len(combos))

	workers := req.WorkerCount()
	if len(combos) <= sequentialBatchLimit || workers == 1 {
		for i, key := range combos {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			cells[i] = e.estimateCell(ctx, i, key, vars, req)
		}
		return estimate.NewTable(core.RunID(core.NewID()), cells), nil
	}

	sem := semaphore.NewWeighted(int64(workers))
	var wg sync.WaitGroup
	for i, key := range combos {
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return nil, err
		}
		wg.Add(1)
		go func(i int, key estimate.CombinationKey) {
			defer wg.Done()
			defer sem.Release(1)
			cells[i] = e.estimateCell(ctx, i, key, vars, req)
		}(i, key)
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return estimate.NewTable(core.RunID(core.NewID()), cells), nil
}

// estimateCell computes one combination: mask, lag alignment, MI estimate,
// normalization, and the optional permutation p-value.
func (e *Engine) estimateCell(ctx context.Context, comboIndex int, key estimate.CombinationKey, vars map[core.VariableKey]estimate.Variable, req estimate.Request) estimate.Cell {
	xv := vars[key.X]
	yv := vars[key.Y]

	hasCond := req.CondVar.String() != ""
	var zCols [][]float64
	var zDiscrete bool
	if hasCond {
		cv := vars[req.CondVar]
		zCols = maskColumns(cv.Cols, req.Mask)
		zDiscrete = cv.Discrete
	}

	xs, ys, zs, n := alignLagged(
		maskColumns(xv.Cols, req.Mask),
		maskColumns(yv.Cols, req.Mask),
		zCols, key.Lag, req.CondLag, hasCond)

	if n < req.K+1 {
		return estimate.DegenerateCell(key, estimate.DegeneracyOverlap)
	}
	if !allFinite(xs, ys, zs) {
		return estimate.DegenerateCell(key, estimate.DegeneracyNonFinite)
	}

	xSpace := entropy.Space{Cols: xs, Discrete: xv.Discrete}
	zSpace := entropy.Space{Cols: zs, Discrete: zDiscrete}

	// stat recomputes the normalized statistic for any y-columns of the
	// aligned length; the permutation tester reuses it on shuffled copies.
	stat := func(yCols [][]float64) (float64, error) {
		ySpace := entropy.Space{Cols: yCols, Discrete: yv.Discrete}
		var mi float64
		var err error
		if hasCond {
			mi, err = entropy.EstimateConditionalMI(xSpace, ySpace, zSpace, req.K)
		} else {
			mi, err = entropy.EstimateMI(xSpace, ySpace, req.K)
		}
		if err != nil {
			return math.NaN(), err
		}
		return normalize.Coefficient(mi, xs[0], yCols[0]), nil
	}

	var mi float64
	var err error
	if hasCond {
		mi, err = entropy.EstimateConditionalMI(xSpace, entropy.Space{Cols: ys, Discrete: yv.Discrete}, zSpace, req.K)
	} else {
		mi, err = entropy.EstimateMI(xSpace, entropy.Space{Cols: ys, Discrete: yv.Discrete}, req.K)
	}
	if err != nil {
		return estimate.DegenerateCell(key, classifyDegeneracy(err))
	}

	cell := estimate.Cell{
		Key:        key,
		MI:         mi,
		Statistic:  normalize.Coefficient(mi, xs[0], ys[0]),
		PValue:     math.NaN(),
		SampleSize: n,
	}

	if req.Permutations > 0 {
		p, perr := e.tester.PValue(ctx, ys, cell.Statistic, stat, significance.Config{
			Repetitions: req.Permutations,
			Seed:        req.Seed,
			RunID:       "estimate",
			// Seeds derive from the combination's index in the request, not
			// from any per-run identity, so identical requests reproduce
			// identical p-values.
			CombinationKey: fmt.Sprintf("%d", comboIndex),
		})
		if perr != nil {
			return estimate.DegenerateCell(key, classifyDegeneracy(perr))
		}
		cell.PValue = p
	}

	return cell
}

// Entropy estimates the differential entropy of a single variable after
// applying the optional mask. Discrete variables have no differential
// entropy; exact duplicates in continuous data drive the estimate to -Inf,
// which is the correct saturation and is returned as-is.
func (e *Engine) Entropy(ctx context.Context, v estimate.Variable, k int, mask []bool) (float64, error) {
	if err := v.Validate(); err != nil {
		return math.NaN(), err
	}
	if mask != nil && len(mask) != v.N() {
		return math.NaN(), fmt.Errorf("%w: mask has %d entries, variable has %d samples",
			core.ErrMaskLengthMismatch, len(mask), v.N())
	}
	if err := ctx.Err(); err != nil {
		return math.NaN(), err
	}
	return entropy.EstimateEntropy(maskColumns(v.Cols, mask), k)
}

func classifyDegeneracy(err error) estimate.Degeneracy {
	switch {
	case errors.Is(err, core.ErrInsufficientData):
		return estimate.DegeneracyOverlap
	case errors.Is(err, core.ErrInvalidNeighborCount):
		return estimate.DegeneracyNeighborCount
	default:
		return estimate.DegeneracyNonFinite
	}
}

var _ ports.EstimatorPort = (*Engine)(nil)
