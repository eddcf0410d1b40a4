package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"edushelf-be/internal/entity"

	"github.com/google/uuid"
	redisv9 "github.com/redis/go-redis/v9"
)

// HistoryCache keeps a session's ordered messages in Redis between turns.
// The database stays the source of truth; entries are dropped on every write.
type HistoryCache struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewHistoryCache(client *redisv9.Client, ttl time.Duration) *HistoryCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &HistoryCache{client: client, ttl: ttl}
}

func (c *HistoryCache) GetHistory(ctx context.Context, sessionId uuid.UUID) ([]*entity.ChatMessage, bool, error) {
	raw, err := c.client.Get(ctx, historyKey(sessionId)).Result()
	if errors.Is(err, redisv9.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get history failed: %w", err)
	}

	var messages []*entity.ChatMessage
	if err := json.Unmarshal([]byte(raw), &messages); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached history failed: %w", err)
	}
	return messages, true, nil
}

func (c *HistoryCache) SetHistory(ctx context.Context, sessionId uuid.UUID, messages []*entity.ChatMessage) error {
	payload, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("marshal history cache failed: %w", err)
	}
	if err := c.client.Set(ctx, historyKey(sessionId), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set history failed: %w", err)
	}
	return nil
}

func (c *HistoryCache) DeleteHistory(ctx context.Context, sessionId uuid.UUID) error {
	if err := c.client.Del(ctx, historyKey(sessionId)).Err(); err != nil {
		return fmt.Errorf("redis delete history failed: %w", err)
	}
	return nil
}

func historyKey(sessionId uuid.UUID) string {
	return fmt.Sprintf("chat:history:%s", sessionId)
}
