// Package redis stores weeks as JSON values.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"

	"weekly-scheduler/internal/model"
	"weekly-scheduler/internal/week/repository"
	"weekly-scheduler/pkg/log"
)

const DefaultKeyPrefix = "weekly-scheduler:week:"

type implRepository struct {
	client *redis.Client
	prefix string
	l      log.Logger
}

func New(client *redis.Client, prefix string, l log.Logger) repository.Repository {
	if client == nil {
		panic("week/repository/redis: client is required")
	}
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &implRepository{client: client, prefix: prefix, l: l}
}

func (r *implRepository) key(weekStart time.Time) string {
	return r.prefix + repository.Key(weekStart)
}

func (r *implRepository) LoadWeek(ctx context.Context, weekStart time.Time) (*model.WeekSchedule, error) {
	data, err := r.client.Get(ctx, r.key(weekStart)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		r.l.Errorf(ctx, "week/repository/redis.LoadWeek: %v", err)
		return nil, repository.ErrFailedToGet
	}

	var w model.WeekSchedule
	if err := json.Unmarshal(data, &w); err != nil {
		r.l.Errorf(ctx, "week/repository/redis.LoadWeek: decode: %v", err)
		return nil, repository.ErrFailedToGet
	}
	return &w, nil
}

func (r *implRepository) SaveWeek(ctx context.Context, w *model.WeekSchedule) error {
	data, err := json.Marshal(w)
	if err != nil {
		r.l.Errorf(ctx, "week/repository/redis.SaveWeek: encode: %v", err)
		return repository.ErrFailedToSave
	}
	if err := r.client.Set(ctx, r.key(w.WeekStart), data, 0).Err(); err != nil {
		r.l.Errorf(ctx, "week/repository/redis.SaveWeek: %v", err)
		return repository.ErrFailedToSave
	}
	return nil
}

func (r *implRepository) DeleteWeek(ctx context.Context, weekStart time.Time) error {
	if err := r.client.Del(ctx, r.key(weekStart)).Err(); err != nil {
		r.l.Errorf(ctx, "week/repository/redis.DeleteWeek: %v", err)
		return repository.ErrFailedToDelete
	}
	return nil
}
