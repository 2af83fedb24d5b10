package infra

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisSettings tunes the client built from a redis:// URL. Zero values keep
// whatever the URL or the driver defaults say.
type RedisSettings struct {
	URL      string
	PoolSize int
	// Timeout bounds dialing and each read or write.
	Timeout time.Duration
}

// NewRedisClient builds a client from settings and pings the server.
func NewRedisClient(ctx context.Context, settings RedisSettings) (*redis.Client, error) {
	if settings.URL == "" {
		return nil, fmt.Errorf("redis url is required")
	}

	opt, err := redis.ParseURL(settings.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if settings.PoolSize > 0 {
		opt.PoolSize = settings.PoolSize
		opt.MinIdleConns = min(2, settings.PoolSize)
	}
	if settings.Timeout > 0 {
		opt.DialTimeout = settings.Timeout
		opt.ReadTimeout = settings.Timeout
		opt.WriteTimeout = settings.Timeout
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", opt.Addr, err)
	}
	return client, nil
}
