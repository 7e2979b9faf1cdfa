// Package memory keeps weeks in process memory. Used in tests and when
// storage.driver is memory.
package memory

import (
	"context"
	"sync"
	"time"

	"weekly-scheduler/internal/model"
	"weekly-scheduler/internal/week/repository"
)

type implRepository struct {
	mu    sync.RWMutex
	weeks map[string]*model.WeekSchedule
}

func New() repository.Repository {
	return &implRepository{weeks: map[string]*model.WeekSchedule{}}
}

func (r *implRepository) LoadWeek(_ context.Context, weekStart time.Time) (*model.WeekSchedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.weeks[repository.Key(weekStart)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return w.Clone(), nil
}

func (r *implRepository) SaveWeek(_ context.Context, w *model.WeekSchedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.weeks[repository.Key(w.WeekStart)] = w.Clone()
	return nil
}

func (r *implRepository) DeleteWeek(_ context.Context, weekStart time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.weeks, repository.Key(weekStart))
	return nil
}
