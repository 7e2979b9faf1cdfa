package usecase

import (
	"time"

	"weekly-scheduler/internal/week"
	"weekly-scheduler/pkg/log"
)

// implUseCase serves read-only views of the current week.
type implUseCase struct {
	store week.Store
	loc   *time.Location
	now   func() time.Time
	l     log.Logger
}

// New creates a week.UseCase. loc places exported events on the calendar.
func New(store week.Store, loc *time.Location, l log.Logger) week.UseCase {
	if loc == nil {
		loc = time.UTC
	}
	return &implUseCase{
		store: store,
		loc:   loc,
		now:   time.Now,
		l:     l,
	}
}
