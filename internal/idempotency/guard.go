// Package idempotency suppresses Telegram updates that are delivered more than once.
package idempotency

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// DefaultTTL bounds how long a processed update key is remembered.
const DefaultTTL = 24 * time.Hour

// Store records update keys. MarkSeen returns true only for the first caller.
type Store interface {
	MarkSeen(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// Guard decides whether an update may run.
type Guard struct {
	store Store
	ttl   time.Duration
	log   *slog.Logger
}

// NewGuard creates a Guard. A nil store lets every update through.
func NewGuard(store Store, ttl time.Duration, log *slog.Logger) *Guard {
	if log == nil {
		log = slog.Default()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Guard{store: store, ttl: ttl, log: log}
}

// First reports whether key is seen for the first time. Store failures let
// the update through so a Redis outage never blocks the bot.
func (g *Guard) First(ctx context.Context, key string) bool {
	if g == nil || g.store == nil || key == "" {
		return true
	}

	first, err := g.store.MarkSeen(ctx, key, g.ttl)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			g.log.WarnContext(ctx, "update dedupe unavailable", slog.String("key", key), slog.Any("error", err))
		}
		return true
	}

	if !first {
		g.log.InfoContext(ctx, "duplicate update suppressed", slog.String("key", key))
	}

	return first
}
