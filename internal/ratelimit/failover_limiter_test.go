package ratelimit

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFailoverFixture(t *testing.T, ratio float64) (*FailoverLimiter, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})

	limiter := NewFailoverLimiter(NewRedisLimiter(client, testLogger()), NewMemoryLimiter(testLogger()), ratio, testLogger())
	return limiter, mr
}

func TestFailoverLimiter_UsesRedisWhileHealthy(t *testing.T) {
	limiter, mr := newFailoverFixture(t, 0.5)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		result, err := limiter.Check(ctx, "cmd:daily:5", 2, time.Minute)
		require.NoError(t, err)
		assert.True(t, result.Allowed)
	}

	result, err := limiter.Check(ctx, "cmd:daily:5", 2, time.Minute)
	require.ErrorIs(t, err, ErrLimitExceeded)
	assert.False(t, result.Allowed)
	assert.False(t, limiter.offline.Load())

	members, err := mr.ZMembers("ratelimit:cmd:daily:5")
	require.NoError(t, err)
	assert.Len(t, members, 2)
}

func TestFailoverLimiter_CountsLocallyAtReducedLimit(t *testing.T) {
	limiter, mr := newFailoverFixture(t, 0.5)
	ctx := context.Background()

	mr.Close()

	for i := 0; i < 2; i++ {
		result, err := limiter.Check(ctx, "user:5", 4, time.Minute)
		require.NoError(t, err)
		assert.True(t, result.Allowed)
	}

	_, err := limiter.Check(ctx, "user:5", 4, time.Minute)
	require.ErrorIs(t, err, ErrLimitExceeded)
	assert.True(t, limiter.offline.Load())

	require.NoError(t, mr.Restart())

	result, err := limiter.Check(ctx, "user:6", 4, time.Minute)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.False(t, limiter.offline.Load())
}

func TestFailoverLimiter_Scaled(t *testing.T) {
	testCases := []struct {
		name   string
		ratio  float64
		limit  int
		expect int
	}{
		{name: "half", ratio: 0.5, limit: 10, expect: 5},
		{name: "full", ratio: 1, limit: 10, expect: 10},
		{name: "never below one", ratio: 0.1, limit: 3, expect: 1},
		{name: "invalid ratio uses default", ratio: 0, limit: 10, expect: 5},
		{name: "ratio above one uses default", ratio: 2, limit: 10, expect: 5},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			limiter := NewFailoverLimiter(nil, nil, tc.ratio, testLogger())
			assert.Equal(t, tc.expect, limiter.scaled(tc.limit))
		})
	}
}
