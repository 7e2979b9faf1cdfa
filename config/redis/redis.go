// Package redis opens the Redis client used by the week store.
package redis

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"

	"weekly-scheduler/config"
)

// Connect creates a client and pings it.
func Connect(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", cfg.Addr, err)
	}
	return client, nil
}

func Disconnect(client *redis.Client) {
	if client != nil {
		_ = client.Close()
	}
}
