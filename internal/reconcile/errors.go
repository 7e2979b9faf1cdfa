package reconcile

import (
	"errors"
	"fmt"
)

var (
	// ErrCursorExpired tells the engine to drop the cursor and pull everything.
	ErrCursorExpired = errors.New("sync cursor expired")
	// ErrRemoteNotFound is returned when the remote copy is already gone.
	ErrRemoteNotFound = errors.New("remote event not found")
	ErrInProgress     = errors.New("a reconciliation cycle is already running")
)

// SyncError reports a failed cycle. The cursor was left unchanged.
type SyncError struct {
	Phase  Phase
	Source string
	Err    error
}

func (e *SyncError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("sync %s: %v", e.Phase, e.Err)
	}
	return fmt.Sprintf("sync %s %s: %v", e.Phase, e.Source, e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }
