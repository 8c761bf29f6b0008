package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type Options struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient connects and pings; the client is closed again if the
// server does not answer.
func NewRedisClient(ctx context.Context, opts Options) (*redis.Client, error) {
	addr := opts.Addr
	if addr == "" {
		addr = "localhost:6379" // fallback for local dev
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return rdb, nil
}
