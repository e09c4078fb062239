package estimate

import (
	"fmt"
	"runtime"

	"estiscan/domain/core"
)

// DefaultK is the default neighbor count for the estimator
const DefaultK = 3

// Request describes one batch estimation: every x-candidate against every
// y-candidate at every lag, with optional conditioning, masking and
// permutation significance testing.
type Request struct {
	XVars []core.VariableKey `json:"x_vars"`
	YVars []core.VariableKey `json:"y_vars"`
	Lags  []int              `json:"lags"`

	// CondVar, when set, switches the estimator to conditional MI. CondLag is
	// the condition's own lag relative to x.
	CondVar core.VariableKey `json:"cond_var,omitempty"`
	CondLag int              `json:"cond_lag,omitempty"`

	K    int    `json:"k"`
	Mask []bool `json:"mask,omitempty"`

	// Permutations enables significance testing when > 0
	Permutations int   `json:"permutations"`
	Seed         int64 `json:"seed"`

	// Workers bounds parallel dispatch; 0 means one worker per CPU
	Workers int `json:"workers"`
}

// NewRequest builds a request with the defaults of the one-line interface:
// k=3, lags=[0], no conditioning, no significance testing.
func NewRequest(xVars, yVars []core.VariableKey) Request {
	return Request{
		XVars: xVars,
		YVars: yVars,
		Lags:  []int{0},
		K:     DefaultK,
	}
}

// Combinations expands the request into its ordered combination set:
// x-major, then y, then lag, matching the caller's list ordering.
func (r Request) Combinations() []CombinationKey {
	keys := make([]CombinationKey, 0, len(r.XVars)*len(r.YVars)*len(r.Lags))
	for _, x := range r.XVars {
		for _, y := range r.YVars {
			for _, lag := range r.Lags {
				keys = append(keys, CombinationKey{X: x, Y: y, Lag: lag})
			}
		}
	}
	return keys
}

// WorkerCount resolves the effective parallelism degree
func (r Request) WorkerCount() int {
	if r.Workers > 0 {
		return r.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// Validate checks the request against the supplied variables. Any error here
// is a configuration error: the whole batch is rejected before computation.
func (r Request) Validate(vars map[core.VariableKey]Variable) error {
	if r.K < 1 {
		return fmt.Errorf("%w: got k=%d", core.ErrInvalidNeighborCount, r.K)
	}
	if len(r.XVars) == 0 || len(r.YVars) == 0 {
		return core.ErrNoVariables
	}
	if len(r.Lags) == 0 {
		return core.NewValidationError("lags", "lag list cannot be empty")
	}
	if r.Permutations < 0 {
		return fmt.Errorf("%w: got %d", core.ErrNegativePermutations, r.Permutations)
	}

	n := -1
	check := func(key core.VariableKey) error {
		v, ok := vars[key]
		if !ok {
			return fmt.Errorf("%w: %s", core.ErrVariableNotFound, key)
		}
		if err := v.Validate(); err != nil {
			return err
		}
		if n == -1 {
			n = v.N()
		} else if v.N() != n {
			return fmt.Errorf("%w: variable %s has %d samples, expected %d",
				core.ErrLengthMismatch, key, v.N(), n)
		}
		return nil
	}

	for _, key := range r.XVars {
		if err := check(key); err != nil {
			return err
		}
	}
	for _, key := range r.YVars {
		if err := check(key); err != nil {
			return err
		}
	}
	if r.CondVar.String() != "" {
		if err := check(r.CondVar); err != nil {
			return err
		}
	}

	if r.Mask != nil && len(r.Mask) != n {
		return fmt.Errorf("%w: mask has %d entries, variables have %d samples",
			core.ErrMaskLengthMismatch, len(r.Mask), n)
	}
	return nil
}
