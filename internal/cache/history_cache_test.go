package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	redisv9 "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestHistoryKey(t *testing.T) {
	id := uuid.MustParse("6f1c2f0e-3a0b-4a55-9a43-1f1e0b7f2c11")
	assert.Equal(t, "chat:history:6f1c2f0e-3a0b-4a55-9a43-1f1e0b7f2c11", historyKey(id))
}

func TestHistoryCacheReportsUnreachableRedis(t *testing.T) {
	client := redisv9.NewClient(&redisv9.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()
	c := NewHistoryCache(client, 0)

	_, found, err := c.GetHistory(context.Background(), uuid.New())
	assert.Error(t, err)
	assert.False(t, found)
	assert.Error(t, c.DeleteHistory(context.Background(), uuid.New()))
}

func TestNewRedisClientFailsFast(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := NewRedisClient(ctx, "redis://127.0.0.1:1/0")
	assert.Error(t, err)
}
