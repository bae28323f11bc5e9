package payment

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenCache shares short-lived provider tokens across instances.
type TokenCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

type redisTokenCache struct {
	client *redis.Client
}

// NewRedisTokenCache backs the token cache with Redis.
func NewRedisTokenCache(client *redis.Client) TokenCache {
	return &redisTokenCache{client: client}
}

func (c *redisTokenCache) Get(ctx context.Context, key string) (string, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	return val, err
}

func (c *redisTokenCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}
