package reconcile

import (
	"context"

	"weekly-scheduler/internal/model"
)

// Remote is the primary external calendar. Writes are keyed by ref and may be
// repeated safely.
type Remote interface {
	Name() string
	// PullChangedSince returns changes after cursor, or the whole week when
	// cursor is empty. An unusable cursor fails with ErrCursorExpired.
	PullChangedSince(ctx context.Context, w Window, cursor string) (Batch, error)
	CreateEvent(ctx context.Context, w Window, day model.Weekday, ev model.Event) (string, error)
	UpdateEvent(ctx context.Context, ref string, w Window, day model.Weekday, ev model.Event) error
	// DeleteEvent fails with ErrRemoteNotFound when nothing is left to delete.
	DeleteEvent(ctx context.Context, ref string) error
}

// Feed is a read-only calendar. Its events are fixed and owned remotely.
type Feed interface {
	Name() string
	Pull(ctx context.Context, w Window, cursor string) (Batch, error)
}

//go:generate mockery --name UseCase
type UseCase interface {
	// Run executes one cycle against the current week.
	Run(ctx context.Context) (Report, error)
}
