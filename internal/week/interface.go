package week

import (
	"context"
	"time"

	"weekly-scheduler/internal/model"
)

// Store hands out the lock-guarded handle of the week being scheduled.
type Store interface {
	// Current returns the handle for the week containing now, rolling over if needed.
	Current(ctx context.Context) (*Handle, error)
	// At returns the current week's handle when t falls inside it. It never rolls over.
	At(ctx context.Context, t time.Time) (*Handle, error)
}

//go:generate mockery --name UseCase
type UseCase interface {
	GetWeek(ctx context.Context) (model.WeekSchedule, error)
	GetDay(ctx context.Context, day model.Weekday) (model.Day, error)
	ExportICS(ctx context.Context) (string, error)
}
