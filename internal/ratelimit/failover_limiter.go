package ratelimit

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/Proton-105/shulk-bot/pkg/metrics"
)

// DefaultFallbackRatio scales limits while the shared backend is down.
const DefaultFallbackRatio = 0.5

const (
	backendRedis  = "redis"
	backendMemory = "memory"
)

// FailoverLimiter checks limits against a shared backend and switches to an
// in-process limiter while that backend errors.
type FailoverLimiter struct {
	shared  Limiter
	local   Limiter
	ratio   float64
	log     *slog.Logger
	offline atomic.Bool
}

// NewFailoverLimiter creates a FailoverLimiter. A ratio outside (0, 1]
// selects DefaultFallbackRatio.
func NewFailoverLimiter(shared, local Limiter, ratio float64, log *slog.Logger) *FailoverLimiter {
	if log == nil {
		log = slog.Default()
	}
	if ratio <= 0 || ratio > 1 {
		ratio = DefaultFallbackRatio
	}

	return &FailoverLimiter{
		shared: shared,
		local:  local,
		ratio:  ratio,
		log:    log,
	}
}

// Check evaluates key against the shared backend, or locally at the reduced
// limit when the shared backend fails.
func (f *FailoverLimiter) Check(ctx context.Context, key string, limit int, window time.Duration) (*Result, error) {
	result, err := f.shared.Check(ctx, key, limit, window)
	if err == nil || errors.Is(err, ErrLimitExceeded) {
		if f.offline.CompareAndSwap(true, false) {
			f.log.InfoContext(ctx, "shared rate limiter is back")
		}
		return record(backendRedis, result, err)
	}

	if f.offline.CompareAndSwap(false, true) {
		metrics.RecordRateLimitFailover()
		f.log.WarnContext(ctx, "shared rate limiter failed, counting locally",
			slog.String("key", key),
			slog.Float64("ratio", f.ratio),
			slog.Any("error", err),
		)
	}

	result, err = f.local.Check(ctx, key, f.scaled(limit), window)
	if err != nil && !errors.Is(err, ErrLimitExceeded) {
		return result, err
	}
	return record(backendMemory, result, err)
}

func (f *FailoverLimiter) scaled(limit int) int {
	scaled := int(float64(limit) * f.ratio)
	if scaled < 1 {
		return 1
	}
	return scaled
}

// record counts the verdict and normalizes rejections to ErrLimitExceeded.
func record(backend string, result *Result, err error) (*Result, error) {
	allowed := err == nil && result != nil && result.Allowed
	metrics.RecordRateLimitCheck(backend, allowed)
	if !allowed {
		return result, ErrLimitExceeded
	}
	return result, nil
}
