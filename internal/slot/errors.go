package slot

import "errors"

var (
	// ErrInfeasible means no gap of the requested length exists inside the bounds.
	ErrInfeasible      = errors.New("no room left this day")
	ErrInvalidDuration = errors.New("duration must be positive")
	ErrInvalidProposal = errors.New("proposed slot rejected")
)
