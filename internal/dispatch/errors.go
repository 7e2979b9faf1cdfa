package dispatch

import (
	"errors"
	"fmt"

	"weekly-scheduler/internal/compose"
)

var (
	ErrUnknownIntent  = errors.New("unknown intent")
	ErrNothingPending = errors.New("there is nothing waiting for confirmation")
	ErrTaskNotFound   = errors.New("no open task with that name")
)

// AmbiguousInputError reports several events matching one target.
type AmbiguousInputError struct {
	Target     string
	Candidates []compose.Candidate
}

func (e *AmbiguousInputError) Error() string {
	return fmt.Sprintf("%d events match %q", len(e.Candidates), e.Target)
}
