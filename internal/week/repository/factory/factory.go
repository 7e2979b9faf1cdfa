// Package factory opens the week repository selected by storage.driver.
package factory

import (
	"context"
	"fmt"

	"weekly-scheduler/config"
	"weekly-scheduler/config/postgre"
	"weekly-scheduler/config/redis"
	"weekly-scheduler/internal/week/repository"
	"weekly-scheduler/internal/week/repository/file"
	"weekly-scheduler/internal/week/repository/memory"
	pgRepo "weekly-scheduler/internal/week/repository/postgre"
	redisRepo "weekly-scheduler/internal/week/repository/redis"
	"weekly-scheduler/pkg/log"
)

// Open returns the repository and a func releasing its connections.
func Open(ctx context.Context, cfg config.StorageConfig, l log.Logger) (repository.Repository, func(), error) {
	noop := func() {}

	switch cfg.Driver {
	case "memory":
		l.Warnf(ctx, "factory.Open: memory storage, weeks are lost on restart")
		return memory.New(), noop, nil

	case "file", "":
		repo, err := file.New(cfg.File.Dir, l)
		if err != nil {
			return nil, noop, err
		}
		return repo, noop, nil

	case "redis":
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return nil, noop, err
		}
		return redisRepo.New(client, cfg.Redis.KeyPrefix, l), func() { redis.Disconnect(client) }, nil

	case "postgres":
		db, err := postgre.Connect(ctx, cfg.Postgres)
		if err != nil {
			return nil, noop, err
		}
		if err := pgRepo.Migrate(ctx, db); err != nil {
			postgre.Disconnect(db)
			return nil, noop, err
		}
		return pgRepo.New(db, l), func() { postgre.Disconnect(db) }, nil
	}
	return nil, noop, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}
