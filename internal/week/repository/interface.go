package repository

import (
	"context"
	"time"

	"weekly-scheduler/internal/model"
)

// Repository persists whole weeks keyed by their Monday.
type Repository interface {
	// LoadWeek returns ErrNotFound when no week is stored for weekStart.
	LoadWeek(ctx context.Context, weekStart time.Time) (*model.WeekSchedule, error)
	SaveWeek(ctx context.Context, w *model.WeekSchedule) error
	DeleteWeek(ctx context.Context, weekStart time.Time) error
}

// Key is the storage key of a week.
func Key(weekStart time.Time) string {
	return weekStart.Format("2006-01-02")
}
