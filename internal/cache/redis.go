package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ArbeitTechnology/cid-visitor-backend/internal/config"
)

// Keys written by the hourly stats job and read by the stats endpoint.
const (
	KeyVisitsToday = "stats:visits:today"
	KeyVisitsWeek  = "stats:visits:week"
	KeyVisitsMonth = "stats:visits:month"
	KeyVisitsTotal = "stats:visits:total"
)

func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return client, nil
}
