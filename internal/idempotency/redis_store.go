package idempotency

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const StatusProcessed = "processed"

type RedisStore struct {
	client *redis.Client
	log    *slog.Logger
}

func NewRedisStore(client *redis.Client, log *slog.Logger) *RedisStore {
	if log == nil {
		log = slog.Default()
	}

	return &RedisStore{
		client: client,
		log:    log,
	}
}

func (s *RedisStore) MarkSeen(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	acquired, err := s.client.SetNX(ctx, recordKey(key), StatusProcessed, ttl).Result()
	if err != nil {
		s.log.Error("failed to record update key", slog.String("key", key), slog.Any("error", err))
		return false, err
	}

	return acquired, nil
}

func recordKey(key string) string {
	return fmt.Sprintf("idempotency:%s", key)
}
