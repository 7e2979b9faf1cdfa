package week

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"weekly-scheduler/internal/model"
	"weekly-scheduler/internal/week/repository"
	"weekly-scheduler/pkg/log"
)

const DefaultLockTimeout = 2 * time.Second

// Handle owns one week. Mutations are serialized and persisted before they
// become visible. Reads see the last committed snapshot.
type Handle struct {
	weekStart   time.Time
	lock        chan struct{}
	snap        atomic.Pointer[model.WeekSchedule]
	repo        repository.Repository
	now         func() time.Time
	lockTimeout time.Duration
	l           log.Logger
}

func newHandle(w *model.WeekSchedule, repo repository.Repository, now func() time.Time, lockTimeout time.Duration, l log.Logger) *Handle {
	if lockTimeout <= 0 {
		lockTimeout = DefaultLockTimeout
	}
	h := &Handle{
		weekStart:   w.WeekStart,
		lock:        make(chan struct{}, 1),
		repo:        repo,
		now:         now,
		lockTimeout: lockTimeout,
		l:           l,
	}
	h.snap.Store(w)
	return h
}

func (h *Handle) WeekStart() time.Time { return h.weekStart }

// Snapshot returns a copy of the last committed state.
func (h *Handle) Snapshot() *model.WeekSchedule {
	return h.snap.Load().Clone()
}

// Day returns a copy of one committed day.
func (h *Handle) Day(d model.Weekday) model.Day {
	return h.snap.Load().Day(d).Clone()
}

// Update runs fn on a private copy of the week. When fn returns nil and changed
// anything, the copy is saved and published. Otherwise the week is unchanged.
// The lock is released on every path. Waiting longer than the lock timeout
// fails with ErrBusy.
func (h *Handle) Update(ctx context.Context, fn func(tx *Tx) error) (model.ChangeSet, error) {
	if err := h.acquire(ctx); err != nil {
		return model.ChangeSet{}, err
	}
	defer h.release()

	tx := newTx(h.snap.Load().Clone(), h.now())
	if err := fn(tx); err != nil {
		return model.ChangeSet{}, err
	}
	if !tx.dirty {
		return tx.changes, nil
	}

	if err := h.repo.SaveWeek(ctx, tx.w); err != nil {
		h.l.Errorf(ctx, "week.Handle.Update: save %s: %v", h.weekStart.Format(weekKeyLayout), err)
		return model.ChangeSet{}, fmt.Errorf("save week: %w", err)
	}
	h.snap.Store(tx.w)
	return tx.changes, nil
}

func (h *Handle) acquire(ctx context.Context) error {
	select {
	case h.lock <- struct{}{}:
		return nil
	default:
	}

	t := time.NewTimer(h.lockTimeout)
	defer t.Stop()
	select {
	case h.lock <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return ErrBusy
	}
}

func (h *Handle) release() { <-h.lock }
