package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"enrollment-api/internal/model"
)

const profileKeyPrefix = "profile:"

// RedisCache is a ProfileCache backed by Redis. Every operation is best
// effort: a Redis outage degrades to cache misses, never to request
// failures.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, uid string) (*model.UserProfile, bool) {
	raw, err := c.client.Get(ctx, profileKeyPrefix+uid).Bytes()
	if err != nil {
		if err != redis.Nil {
			slog.Warn("profile cache read failed", "error", err)
		}
		return nil, false
	}

	var profile model.UserProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		slog.Warn("profile cache entry corrupt, evicting", "uid", uid)
		c.Evict(ctx, uid)
		return nil, false
	}
	return &profile, true
}

func (c *RedisCache) Set(ctx context.Context, uid string, profile *model.UserProfile, ttl time.Duration) {
	if profile == nil || ttl <= 0 {
		return
	}
	raw, err := json.Marshal(profile)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, profileKeyPrefix+uid, raw, ttl).Err(); err != nil {
		slog.Warn("profile cache write failed", "error", err)
	}
}

func (c *RedisCache) Evict(ctx context.Context, uid string) {
	if err := c.client.Del(ctx, profileKeyPrefix+uid).Err(); err != nil {
		slog.Warn("profile cache evict failed", "error", err)
	}
}
