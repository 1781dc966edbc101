package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores decoded entities between reads.
type Cache interface {
	Get(ctx context.Context, key string) (map[string]any, bool, error)
	Set(ctx context.Context, key string, entity map[string]any) error
	Invalidate(ctx context.Context, key string) error
}

// CacheKey scopes an entity read to its game and player, since the API
// answers differently per player.
func CacheKey(session Session, path, idHint string) string {
	parts := []string{"sheetform", session.GameID, session.PlayerID, strings.Trim(path, "/")}
	if idHint != "" {
		parts = append(parts, idHint)
	}
	return strings.Join(parts, ":")
}

// RedisCache keeps entities as JSON strings with a TTL.
type RedisCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisCache(client redis.UniversalClient, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) (map[string]any, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("client: redis get %s: %w", key, err)
	}
	var entity map[string]any
	if err := json.Unmarshal(data, &entity); err != nil {
		return nil, false, fmt.Errorf("client: decode cached %s: %w", key, err)
	}
	return entity, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, entity map[string]any) error {
	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("client: encode cached %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, string(data), c.ttl).Err(); err != nil {
		return fmt.Errorf("client: redis set %s: %w", key, err)
	}
	return nil
}

func (c *RedisCache) Invalidate(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("client: redis del %s: %w", key, err)
	}
	return nil
}
