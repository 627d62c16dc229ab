package access

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// CachedLookup remembers platform admin answers in Redis for a short TTL so
// repeated admin commands do not hit the Telegram API each time.
type CachedLookup struct {
	next   PlatformAdminLookup
	client *redis.Client
	ttl    time.Duration
	log    *slog.Logger
}

// NewCachedLookup wraps next with a Redis cache.
func NewCachedLookup(next PlatformAdminLookup, client *redis.Client, ttl time.Duration, log *slog.Logger) *CachedLookup {
	if log == nil {
		log = slog.Default()
	}

	return &CachedLookup{next: next, client: client, ttl: ttl, log: log}
}

// IsPlatformAdmin serves from cache when possible. Cache failures fall
// through to the wrapped lookup.
func (c *CachedLookup) IsPlatformAdmin(ctx context.Context, chatID, userID int64) (bool, error) {
	if c.client == nil || c.ttl <= 0 {
		return c.next.IsPlatformAdmin(ctx, chatID, userID)
	}

	key := cacheKey(chatID, userID)

	cached, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		return cached == "1", nil
	case !errors.Is(err, redis.Nil):
		c.log.WarnContext(ctx, "admin cache read failed", slog.String("key", key), slog.Any("error", err))
	}

	ok, err := c.next.IsPlatformAdmin(ctx, chatID, userID)
	if err != nil {
		return false, err
	}

	value := "0"
	if ok {
		value = "1"
	}
	if err := c.client.Set(ctx, key, value, c.ttl).Err(); err != nil {
		c.log.WarnContext(ctx, "admin cache write failed", slog.String("key", key), slog.Any("error", err))
	}

	return ok, nil
}

// Invalidate drops the cached answer for userID in chatID.
func (c *CachedLookup) Invalidate(ctx context.Context, chatID, userID int64) error {
	if c.client == nil {
		return nil
	}

	if err := c.client.Del(ctx, cacheKey(chatID, userID)).Err(); err != nil {
		return fmt.Errorf("delete cached admin status: %w", err)
	}

	return nil
}

func cacheKey(chatID, userID int64) string {
	return fmt.Sprintf("admincache:%d:%d", chatID, userID)
}
