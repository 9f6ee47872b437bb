package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"postboard/internal/domain"
)

const redisKeyPrefix = "posts:user:"

// RedisCache is the Redis-backed PostCache, for deployments that want the
// cache to survive restarts or be shared across instances.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisCache returns a RedisCache with the given entry TTL.
func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl}
}

// GetPosts returns the cached list and extends the key's TTL on a hit.
func (c *RedisCache) GetPosts(ctx context.Context, userID string) ([]domain.Post, bool, error) {
	key := redisKeyPrefix + userID
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var posts []domain.Post
	if err := json.Unmarshal(b, &posts); err != nil {
		return nil, false, err
	}
	// Sliding window.
	_ = c.rdb.Expire(ctx, key, c.ttl).Err()
	return posts, true, nil
}

// SetPosts stores the list as a JSON blob.
func (c *RedisCache) SetPosts(ctx context.Context, userID string, posts []domain.Post) error {
	b, err := json.Marshal(posts)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, redisKeyPrefix+userID, b, c.ttl).Err()
}

// Invalidate removes the key; DEL on an absent key is a no-op.
func (c *RedisCache) Invalidate(ctx context.Context, userID string) error {
	return c.rdb.Del(ctx, redisKeyPrefix+userID).Err()
}
