package roles

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})

	return client, mr
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStaticResolver(t *testing.T) {
	resolver := NewStaticResolver(map[int64][]int64{10: {1, 2}})

	roles, err := resolver.Roles(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, roles)

	roles, err = resolver.Roles(context.Background(), 11)
	require.NoError(t, err)
	assert.Empty(t, roles)
}

func TestRedisResolver_Roles(t *testing.T) {
	client, mr := setupTestRedis(t)
	_, err := mr.SAdd(UserRolesKey(42), "1432249242419728439", "oops", "7")
	require.NoError(t, err)

	resolver := NewRedisResolver(client, testLogger())

	roles, err := resolver.Roles(context.Background(), 42)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{1432249242419728439, 7}, roles)

	roles, err = resolver.Roles(context.Background(), 43)
	require.NoError(t, err)
	assert.Empty(t, roles)
}

func TestRedisResolver_ConnectionError(t *testing.T) {
	client, mr := setupTestRedis(t)
	mr.Close()

	_, err := NewRedisResolver(client, testLogger()).Roles(context.Background(), 1)
	assert.Error(t, err)
}

type staticErr struct{ err error }

func (s staticErr) Roles(context.Context, int64) ([]int64, error) { return nil, s.err }

func TestMultiResolver(t *testing.T) {
	resolver := MultiResolver{
		NewStaticResolver(map[int64][]int64{5: {3, 1}}),
		NewStaticResolver(map[int64][]int64{5: {2, 3}}),
		nil,
	}

	roles, err := resolver.Roles(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, roles)

	failing := errors.New("boom")
	_, err = MultiResolver{resolver, staticErr{err: failing}}.Roles(context.Background(), 5)
	assert.ErrorIs(t, err, failing)
}
