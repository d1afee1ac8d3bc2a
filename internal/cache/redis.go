package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisKeyPrefix отделяет ключи кэша от ключей лимитера в общей базе Redis
const redisKeyPrefix = "link:"

// RedisCache реализует Cache поверх Redis, общий для всех экземпляров сервиса
type RedisCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisCache создаёт кэш поверх клиента Redis
func NewRedisCache(client redis.Cmdable, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func redisKey(shortID string) string {
	return redisKeyPrefix + shortID
}

// Get возвращает исходный URL по короткому ID
func (c *RedisCache) Get(ctx context.Context, shortID string) (string, bool, error) {
	url, err := c.client.Get(ctx, redisKey(shortID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	return url, true, nil
}

// Set сохраняет исходный URL с истечением через ttl
func (c *RedisCache) Set(ctx context.Context, shortID, originalURL string) error {
	if err := c.client.Set(ctx, redisKey(shortID), originalURL, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
