package postgre

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"weekly-scheduler/internal/model"
	"weekly-scheduler/internal/week/repository"
)

type weekRow struct {
	WeekStart    time.Time `db:"week_start"`
	Data         []byte    `db:"data"`
	LastModified time.Time `db:"last_modified"`
}

func (r *implRepository) LoadWeek(ctx context.Context, weekStart time.Time) (*model.WeekSchedule, error) {
	const query = `SELECT week_start, data, last_modified FROM schedule_weeks WHERE week_start = $1`

	var row weekRow
	err := r.db.GetContext(ctx, &row, query, repository.Key(weekStart))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		r.l.Errorf(ctx, "%s: %v", r.dsn("LoadWeek"), err)
		return nil, repository.ErrFailedToGet
	}

	var w model.WeekSchedule
	if err := json.Unmarshal(row.Data, &w); err != nil {
		r.l.Errorf(ctx, "%s decode: %v", r.dsn("LoadWeek"), err)
		return nil, repository.ErrFailedToGet
	}
	return &w, nil
}

func (r *implRepository) SaveWeek(ctx context.Context, w *model.WeekSchedule) error {
	const query = `
		INSERT INTO schedule_weeks (week_start, data, last_modified, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (week_start) DO UPDATE
		SET data = EXCLUDED.data, last_modified = EXCLUDED.last_modified, updated_at = NOW()`

	data, err := json.Marshal(w)
	if err != nil {
		r.l.Errorf(ctx, "%s encode: %v", r.dsn("SaveWeek"), err)
		return repository.ErrFailedToSave
	}
	if _, err := r.db.ExecContext(ctx, query, repository.Key(w.WeekStart), data, w.LastModified); err != nil {
		r.l.Errorf(ctx, "%s: %v", r.dsn("SaveWeek"), err)
		return repository.ErrFailedToSave
	}
	return nil
}

func (r *implRepository) DeleteWeek(ctx context.Context, weekStart time.Time) error {
	const query = `DELETE FROM schedule_weeks WHERE week_start = $1`
	if _, err := r.db.ExecContext(ctx, query, repository.Key(weekStart)); err != nil {
		r.l.Errorf(ctx, "%s: %v", r.dsn("DeleteWeek"), err)
		return repository.ErrFailedToDelete
	}
	return nil
}
