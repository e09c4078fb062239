package ports

import (
	"context"
	"math/rand"
)

// RNGPort provides seeded random number generation for deterministic operations
type RNGPort interface {
	// SeededStream creates a deterministic random number generator for a named operation
	SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error)

	// Stream creates a deterministic RNG stream for a specific combination unit.
	// The stream must be a pure function of its arguments so that permutation
	// repetitions reproduce identical shuffles no matter which worker runs them.
	Stream(ctx context.Context, runID, stageName, combinationKey string, baseSeed int64) (*rand.Rand, error)
}
