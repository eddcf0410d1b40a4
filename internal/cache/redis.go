package cache

import (
	"context"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
)

// NewRedisClient accepts a redis:// URL or a bare host:port and pings once.
func NewRedisClient(ctx context.Context, url string) (*redisv9.Client, error) {
	opt, err := redisv9.ParseURL(url)
	if err != nil {
		opt = &redisv9.Options{Addr: url}
	}
	client := redisv9.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}
