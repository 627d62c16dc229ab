package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/shulk-bot/internal/bot/handlers"
	apperrors "github.com/Proton-105/shulk-bot/internal/errors"
	"github.com/Proton-105/shulk-bot/internal/ratelimit"
)

// RateLimitMiddleware enforces per-user and per-command limits for incoming Telegram updates.
type RateLimitMiddleware struct {
	limiter ratelimit.Limiter
	rules   *ratelimit.Rules
	log     *slog.Logger
}

// NewRateLimitMiddleware constructs a rate-limit middleware component.
func NewRateLimitMiddleware(limiter ratelimit.Limiter, rules *ratelimit.Rules, log *slog.Logger) *RateLimitMiddleware {
	if log == nil {
		log = slog.Default()
	}

	return &RateLimitMiddleware{
		limiter: limiter,
		rules:   rules,
		log:     log,
	}
}

// Handle returns a middleware that rejects over-limit updates with a rate limit error.
func (m *RateLimitMiddleware) Handle(next handlers.Handler) handlers.Handler {
	if next == nil {
		return nil
	}

	return func(c telebot.Context) error {
		if m.limiter == nil || !m.rules.Enabled() {
			return next(c)
		}

		sender := c.Sender()
		if sender == nil || m.rules.IsWhitelisted(sender.ID) {
			return next(c)
		}

		command := handlers.CommandName(c)

		if limit, window, ok := m.rules.PerUserLimit(); ok {
			if err := m.check(c, fmt.Sprintf("user:%d", sender.ID), limit, window); err != nil {
				return err
			}
		}

		if limit, window, ok := m.rules.CommandLimit(command); ok {
			if err := m.check(c, fmt.Sprintf("cmd:%s:%d", command, sender.ID), limit, window); err != nil {
				return err
			}
		}

		return next(c)
	}
}

func (m *RateLimitMiddleware) check(c telebot.Context, key string, limit int, window time.Duration) error {
	ctx := handlers.RequestContext(c)

	result, err := m.limiter.Check(ctx, key, limit, window)
	switch {
	case err == nil && result != nil && result.Allowed:
		return nil
	case err != nil && !errors.Is(err, ratelimit.ErrLimitExceeded):
		m.log.WarnContext(ctx, "rate limiter error", slog.String("key", key), slog.Any("error", err))
		return nil
	}

	m.log.WarnContext(ctx, "rate limit exceeded", slog.String("key", key))
	return apperrors.NewRateLimitError(result.RetryAfter(time.Now()))
}
