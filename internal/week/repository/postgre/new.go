// Package postgre stores weeks as JSONB rows.
package postgre

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"weekly-scheduler/internal/week/repository"
	"weekly-scheduler/pkg/log"
)

const schema = `
CREATE TABLE IF NOT EXISTS schedule_weeks (
	week_start    DATE PRIMARY KEY,
	data          JSONB NOT NULL,
	last_modified TIMESTAMPTZ NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

type implRepository struct {
	db *sqlx.DB
	l  log.Logger
}

// New creates a new PostgreSQL-backed week repository.
func New(db *sqlx.DB, l log.Logger) repository.Repository {
	if db == nil {
		panic("week/repository/postgre: db is required")
	}
	return &implRepository{db: db, l: l}
}

// Migrate creates the weeks table if missing.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate schedule_weeks: %w", err)
	}
	return nil
}

// dsn is a helper to return a method-scoped context string for logging.
func (r *implRepository) dsn(method string) string {
	return fmt.Sprintf("week/repository/postgre.%s", method)
}
