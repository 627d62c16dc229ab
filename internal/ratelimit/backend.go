package ratelimit

import (
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/Proton-105/shulk-bot/pkg/config"
)

// NewFromConfig builds the configured limiter. The Redis backend is wrapped
// in a FailoverLimiter over the in-memory one, which is always returned so the
// caller can run its janitor.
func NewFromConfig(cfg config.RateLimitConfig, client *redis.Client, log *slog.Logger) (Limiter, *MemoryLimiter) {
	memory := NewMemoryLimiter(log)
	if cfg.Backend == "redis" && client != nil {
		return NewFailoverLimiter(NewRedisLimiter(client, log), memory, cfg.FallbackRatio, log), memory
	}
	return memory, memory
}
