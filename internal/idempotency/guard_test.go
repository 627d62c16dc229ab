package idempotency

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGuard_RedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	guard := NewGuard(NewRedisStore(client, testLogger()), time.Minute, testLogger())
	ctx := context.Background()

	assert.True(t, guard.First(ctx, "upd:1"))
	assert.False(t, guard.First(ctx, "upd:1"))
	assert.True(t, guard.First(ctx, "upd:2"))

	ttl := mr.TTL("idempotency:upd:1")
	assert.Equal(t, time.Minute, ttl)

	mr.FastForward(2 * time.Minute)
	assert.True(t, guard.First(ctx, "upd:1"))
}

func TestGuard_FailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	guard := NewGuard(NewRedisStore(client, testLogger()), time.Minute, testLogger())

	assert.True(t, guard.First(context.Background(), "upd:1"))
	assert.True(t, guard.First(context.Background(), "upd:1"))
}

func TestGuard_NilStoreAndEmptyKey(t *testing.T) {
	guard := NewGuard(nil, 0, nil)
	require.Equal(t, DefaultTTL, guard.ttl)

	assert.True(t, guard.First(context.Background(), "upd:1"))
	assert.True(t, guard.First(context.Background(), "upd:1"))

	var nilGuard *Guard
	assert.True(t, nilGuard.First(context.Background(), ""))
}
