package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound         = errors.New("resource not found")
	ErrRunNotFound      = fmt.Errorf("%w: run", ErrNotFound)
	ErrVariableNotFound = fmt.Errorf("%w: variable", ErrNotFound)

	// Request validation errors
	ErrInvalidNeighborCount = errors.New("neighbor count must be at least 1")
	ErrNoVariables          = errors.New("variable list is empty")
	ErrLengthMismatch       = errors.New("variables have mismatched sample counts")
	ErrNegativePermutations = errors.New("permutation count cannot be negative")
	ErrLagTooLarge          = errors.New("lag leaves no overlapping observations")
	ErrMaskLengthMismatch   = errors.New("mask length does not match sample count")
	ErrInsufficientData     = errors.New("insufficient data for estimation")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewValidationError(field string, reason string) error {
	return fmt.Errorf("validation failed for %s: %s", field, reason)
}

// IsNotFoundError reports whether err is a not-found domain error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsRequestError reports whether err is a request validation error
func IsRequestError(err error) bool {
	return errors.Is(err, ErrInvalidNeighborCount) ||
		errors.Is(err, ErrNoVariables) ||
		errors.Is(err, ErrLengthMismatch) ||
		errors.Is(err, ErrNegativePermutations) ||
		errors.Is(err, ErrLagTooLarge) ||
		errors.Is(err, ErrMaskLengthMismatch)
}
