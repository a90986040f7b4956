package simulation

import "errors"

// Common sentinel errors
var (
	// ErrSamplingExhausted fires when the sampler finds zero connected OD
	// pairs within its full retry budget, or when the largest component has
	// fewer than two nodes. It is fatal for the call and not retried.
	ErrSamplingExhausted = errors.New("no connected origin-destination pairs found")

	// ErrDeadlineExceeded marks a simulation call that ran past its
	// wall-clock budget.
	ErrDeadlineExceeded = errors.New("simulation deadline exceeded")
)
