package engine

import "errors"

// Error taxonomy for the book. Callers match with errors.Is; the engine wraps
// these with a human-readable reason.
var (
	// ErrInvalidOrder rejects a submission before any state mutation.
	ErrInvalidOrder = errors.New("invalid order")

	// ErrDuplicateOrder rejects a submission whose id is already registered.
	ErrDuplicateOrder = errors.New("duplicate order id")

	// ErrOrderNotFound reports a lookup on an unknown order id.
	ErrOrderNotFound = errors.New("order not found")
)
