// Package roles resolves the community roles a user holds.
package roles

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const userRolesKeyPattern = "roles:user:%d"

// Resolver returns the role identifiers held by a user.
type Resolver interface {
	Roles(ctx context.Context, userID int64) ([]int64, error)
}

// StaticResolver serves role assignments fixed in configuration.
type StaticResolver struct {
	members map[int64][]int64
}

// NewStaticResolver creates a resolver from a user id → roles map.
func NewStaticResolver(members map[int64][]int64) *StaticResolver {
	copied := make(map[int64][]int64, len(members))
	for userID, roles := range members {
		copied[userID] = append([]int64(nil), roles...)
	}
	return &StaticResolver{members: copied}
}

// Roles returns the configured roles for userID.
func (r *StaticResolver) Roles(_ context.Context, userID int64) ([]int64, error) {
	if r == nil {
		return nil, nil
	}
	return append([]int64(nil), r.members[userID]...), nil
}

// RedisResolver reads role sets maintained in Redis under roles:user:<id>.
// Whoever syncs community roles writes those sets; the bot only reads them.
type RedisResolver struct {
	client *redis.Client
	log    *slog.Logger
}

// NewRedisResolver creates a Redis-backed Resolver.
func NewRedisResolver(client *redis.Client, log *slog.Logger) *RedisResolver {
	if log == nil {
		log = slog.Default()
	}
	return &RedisResolver{client: client, log: log}
}

// Roles returns the role ids stored for userID. Non-numeric members are skipped.
func (r *RedisResolver) Roles(ctx context.Context, userID int64) ([]int64, error) {
	if r == nil || r.client == nil {
		return nil, errors.New("redis client is not configured for role lookup")
	}

	members, err := r.client.SMembers(ctx, UserRolesKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		r.log.Error("failed to load user roles", slog.Int64("user_id", userID), slog.Any("error", err))
		return nil, fmt.Errorf("load roles for %d: %w", userID, err)
	}

	result := make([]int64, 0, len(members))
	for _, member := range members {
		role, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			r.log.Warn("skipping malformed role id", slog.Int64("user_id", userID), slog.String("role", member))
			continue
		}
		result = append(result, role)
	}

	return result, nil
}

// UserRolesKey returns the Redis set key holding userID's roles.
func UserRolesKey(userID int64) string {
	return fmt.Sprintf(userRolesKeyPattern, userID)
}

// MultiResolver merges the roles reported by several resolvers.
type MultiResolver []Resolver

// Roles returns the sorted union of every resolver's roles. The first error aborts.
func (m MultiResolver) Roles(ctx context.Context, userID int64) ([]int64, error) {
	seen := make(map[int64]struct{})
	for _, resolver := range m {
		if resolver == nil {
			continue
		}
		roles, err := resolver.Roles(ctx, userID)
		if err != nil {
			return nil, err
		}
		for _, role := range roles {
			seen[role] = struct{}{}
		}
	}

	result := make([]int64, 0, len(seen))
	for role := range seen {
		result = append(result, role)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })

	return result, nil
}
