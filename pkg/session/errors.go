package session

import "errors"

var (
	// ErrIterationBudgetExhausted signals that the configured iteration bound
	// was reached. This is a normal termination condition for the review
	// loop, not a failure.
	ErrIterationBudgetExhausted = errors.New("iteration budget exhausted")

	// ErrInvalidTransition signals a stage transition outside the allowed
	// forward order. It indicates a caller contract violation.
	ErrInvalidTransition = errors.New("invalid stage transition")
)

// IsBudgetExhausted checks if an error indicates the iteration bound was hit.
func IsBudgetExhausted(err error) bool {
	return errors.Is(err, ErrIterationBudgetExhausted)
}
