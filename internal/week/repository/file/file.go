// Package file stores one YAML document per week in a directory.
package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"

	"weekly-scheduler/internal/model"
	"weekly-scheduler/internal/week/repository"
	"weekly-scheduler/pkg/log"
)

type implRepository struct {
	dir string
	l   log.Logger
}

// New creates dir if needed.
func New(dir string, l log.Logger) (repository.Repository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create week dir: %w", err)
	}
	return &implRepository{dir: dir, l: l}, nil
}

func (r *implRepository) path(weekStart time.Time) string {
	return filepath.Join(r.dir, "week-"+repository.Key(weekStart)+".yaml")
}

func (r *implRepository) LoadWeek(ctx context.Context, weekStart time.Time) (*model.WeekSchedule, error) {
	data, err := os.ReadFile(r.path(weekStart))
	if errors.Is(err, os.ErrNotExist) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		r.l.Errorf(ctx, "week/repository/file.LoadWeek: %v", err)
		return nil, repository.ErrFailedToGet
	}

	var w model.WeekSchedule
	if err := yaml.Unmarshal(data, &w); err != nil {
		r.l.Errorf(ctx, "week/repository/file.LoadWeek: decode %s: %v", r.path(weekStart), err)
		return nil, repository.ErrFailedToGet
	}
	return &w, nil
}

// SaveWeek replaces the file atomically so a crash never leaves half a week.
func (r *implRepository) SaveWeek(ctx context.Context, w *model.WeekSchedule) error {
	data, err := yaml.Marshal(w)
	if err != nil {
		r.l.Errorf(ctx, "week/repository/file.SaveWeek: encode: %v", err)
		return repository.ErrFailedToSave
	}
	if err := atomic.WriteFile(r.path(w.WeekStart), bytes.NewReader(data)); err != nil {
		r.l.Errorf(ctx, "week/repository/file.SaveWeek: %v", err)
		return repository.ErrFailedToSave
	}
	return nil
}

func (r *implRepository) DeleteWeek(ctx context.Context, weekStart time.Time) error {
	err := os.Remove(r.path(weekStart))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		r.l.Errorf(ctx, "week/repository/file.DeleteWeek: %v", err)
		return repository.ErrFailedToDelete
	}
	return nil
}
