package week

import (
	"errors"
	"fmt"

	"weekly-scheduler/internal/model"
)

var (
	// ErrBusy means another mutation held the week past the lock timeout.
	ErrBusy         = errors.New("week is being modified, try again")
	ErrNotFound     = errors.New("event not found")
	ErrRemoteOwned  = errors.New("event is owned by the external calendar")
	ErrTaskNotFound = errors.New("task not found")
	// ErrOutsideWeek is returned for dates outside the current week.
	ErrOutsideWeek  = errors.New("date is outside the current week")
)

// ConflictError reports that an event overlaps a fixed event. The week is unchanged.
type ConflictError struct {
	Day         model.Weekday
	Attempted   model.Event
	Conflicting model.Event
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %s on %s conflicts with %s %s",
		e.Attempted.Name, e.Attempted.Range(), e.Day, e.Conflicting.Name, e.Conflicting.Range())
}
