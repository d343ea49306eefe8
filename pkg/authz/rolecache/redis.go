package rolecache

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kart-io/aegis/pkg/utils/errors"
)

// DefaultKeyPrefix namespaces role-set keys in Redis.
const DefaultKeyPrefix = "aegis:roles:"

// RedisCache stores role sets as Redis SET values. Suitable for
// distributed deployments where every instance must observe login and
// invalidation events immediately.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache creates a Redis-backed role cache. The client is owned by
// the caller; Close on the cache is a no-op.
func NewRedisCache(client *redis.Client, prefix ...string) *RedisCache {
	p := DefaultKeyPrefix
	if len(prefix) > 0 && prefix[0] != "" {
		p = prefix[0]
	}
	return &RedisCache{client: client, prefix: p}
}

func (c *RedisCache) key(subject string) string {
	return c.prefix + subject
}

// Get returns the cached roles for subject. A missing key is an empty set.
func (c *RedisCache) Get(ctx context.Context, subject string) ([]string, error) {
	roles, err := c.client.SMembers(ctx, c.key(subject)).Result()
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) {
			return nil, errors.ErrTimeout.WithCause(err)
		}
		return nil, errors.ErrCache.WithCause(err)
	}
	return roles, nil
}

// Set replaces the role set for subject and applies the TTL atomically.
func (c *RedisCache) Set(ctx context.Context, subject string, roles []string, ttl time.Duration) error {
	key := c.key(subject)

	pipe := c.client.TxPipeline()
	pipe.Del(ctx, key)
	if len(roles) > 0 {
		members := make([]interface{}, len(roles))
		for i, r := range roles {
			members[i] = r
		}
		pipe.SAdd(ctx, key, members...)
		if ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.ErrCache.WithCause(err)
	}
	return nil
}

// Invalidate drops the cached role set for subject.
func (c *RedisCache) Invalidate(ctx context.Context, subject string) error {
	if err := c.client.Del(ctx, c.key(subject)).Err(); err != nil {
		return errors.ErrCache.WithCause(err)
	}
	return nil
}

// Close is a no-op; the Redis client is managed externally.
func (c *RedisCache) Close() error {
	return nil
}

var _ Cache = (*RedisCache)(nil)
