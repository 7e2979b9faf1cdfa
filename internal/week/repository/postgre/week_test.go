package postgre

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"weekly-scheduler/internal/model"
	"weekly-scheduler/internal/week/repository"
	"weekly-scheduler/pkg/log"
)

func newMock(t *testing.T) (*implRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(sqlx.NewDb(db, "sqlmock"), log.NewNop()).(*implRepository), mock
}

func TestLoadWeek(t *testing.T) {
	monday := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)
	w := model.NewWeek(monday, monday)
	w.Day(model.Monday).Events = []model.Event{{ID: "a", Name: "meeting", Start: model.NewClock(14, 0), End: model.NewClock(15, 0), Kind: model.KindFixed}}
	data, _ := json.Marshal(w)

	query := regexp.QuoteMeta(`SELECT week_start, data, last_modified FROM schedule_weeks WHERE week_start = $1`)

	tests := []struct {
		name    string
		setup   func(m sqlmock.Sqlmock)
		wantErr error
		want    int
	}{
		{
			name: "found",
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(query).WithArgs("2024-05-06").
					WillReturnRows(sqlmock.NewRows([]string{"week_start", "data", "last_modified"}).AddRow(monday, data, monday))
			},
			want: 1,
		},
		{
			name: "missing",
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(query).WithArgs("2024-05-06").
					WillReturnRows(sqlmock.NewRows([]string{"week_start", "data", "last_modified"}))
			},
			wantErr: repository.ErrNotFound,
		},
		{
			name: "driver error",
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(query).WithArgs("2024-05-06").WillReturnError(errors.New("connection reset"))
			},
			wantErr: repository.ErrFailedToGet,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMock(t)
			tt.setup(mock)

			got, err := repo.LoadWeek(context.Background(), monday)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("LoadWeek() error = %v, want %v", err, tt.wantErr)
			}
			if err == nil && got.TotalEvents() != tt.want {
				t.Errorf("TotalEvents() = %d, want %d", got.TotalEvents(), tt.want)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unmet expectations: %v", err)
			}
		})
	}
}

func TestSaveAndDeleteWeek(t *testing.T) {
	repo, mock := newMock(t)
	monday := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)
	w := model.NewWeek(monday, monday)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO schedule_weeks`)).
		WithArgs("2024-05-06", sqlmock.AnyArg(), monday).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM schedule_weeks WHERE week_start = $1`)).
		WithArgs("2024-05-06").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.SaveWeek(context.Background(), w); err != nil {
		t.Fatalf("SaveWeek() error = %v", err)
	}
	if err := repo.DeleteWeek(context.Background(), monday); err != nil {
		t.Fatalf("DeleteWeek() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
