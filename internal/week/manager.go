package week

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"weekly-scheduler/internal/model"
	"weekly-scheduler/internal/week/repository"
	"weekly-scheduler/pkg/log"
)

const weekKeyLayout = "2006-01-02"

// Options configure a Manager.
type Options struct {
	Location    *time.Location
	LockTimeout time.Duration
	// ArchiveWeeks keeps rolled-over weeks in the repository instead of deleting them.
	ArchiveWeeks bool
}

// Manager keeps the handle of the current week and rolls over to a fresh week
// when the calendar moves past it.
type Manager struct {
	repo repository.Repository
	opts Options
	now  func() time.Time
	l    log.Logger

	mu      sync.Mutex
	current *Handle
}

// NewManager returns a Store. now defaults to time.Now.
func NewManager(repo repository.Repository, opts Options, now func() time.Time, l log.Logger) *Manager {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &Manager{repo: repo, opts: opts, now: now, l: l}
}

// Current returns the handle of the week containing the server clock's now,
// rolling over to a fresh week when the calendar has moved past the held one.
func (m *Manager) Current(ctx context.Context) (*Handle, error) {
	start := model.WeekStartOf(m.now().In(m.opts.Location))

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil {
		switch cur := m.current.WeekStart(); {
		case cur.Equal(start):
			return m.current, nil
		case start.Before(cur):
			return nil, ErrOutsideWeek
		}
	}

	w, err := m.repo.LoadWeek(ctx, start)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		w = model.NewWeek(start, m.now())
		if err := m.repo.SaveWeek(ctx, w); err != nil {
			return nil, fmt.Errorf("create week %s: %w", start.Format(weekKeyLayout), err)
		}
		m.l.Infof(ctx, "week.Manager.Current: initialized week %s", start.Format(weekKeyLayout))
	case err != nil:
		return nil, fmt.Errorf("load week %s: %w", start.Format(weekKeyLayout), err)
	}

	if m.current != nil {
		m.retire(ctx, m.current)
	}
	m.current = newHandle(w, m.repo, m.now, m.opts.LockTimeout, m.l)
	return m.current, nil
}

// At returns the current week's handle if t falls inside it. Callers' clocks
// never move the store: any other t fails with ErrOutsideWeek.
func (m *Manager) At(ctx context.Context, t time.Time) (*Handle, error) {
	h, err := m.Current(ctx)
	if err != nil {
		return nil, err
	}
	if !model.WeekStartOf(t.In(m.opts.Location)).Equal(h.WeekStart()) {
		return nil, ErrOutsideWeek
	}
	return h, nil
}

// retire archives or discards a week that is no longer current.
func (m *Manager) retire(ctx context.Context, h *Handle) {
	key := h.WeekStart().Format(weekKeyLayout)
	if m.opts.ArchiveWeeks {
		m.l.Infof(ctx, "week.Manager.retire: archived week %s", key)
		return
	}
	if err := m.repo.DeleteWeek(ctx, h.WeekStart()); err != nil {
		m.l.Warnf(ctx, "week.Manager.retire: delete week %s: %v", key, err)
		return
	}
	m.l.Infof(ctx, "week.Manager.retire: discarded week %s", key)
}
