package cache

import (
	"context"
	"encoding/json"
	"time"

	redis "github.com/redis/go-redis/v9"

	"kantinku/backend/internal/domain"
)

type RedisMenuBoardCache struct {
	client *redis.Client
}

func NewRedisMenuBoardCache(addr string, password string, db int) *RedisMenuBoardCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisMenuBoardCache{client: client}
}

func (c *RedisMenuBoardCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisMenuBoardCache) Close() error {
	return c.client.Close()
}

func (c *RedisMenuBoardCache) Get(ctx context.Context, key string) (*domain.MenuBoard, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var board domain.MenuBoard
	if err := json.Unmarshal([]byte(val), &board); err != nil {
		return nil, false, err
	}
	return &board, true, nil
}

func (c *RedisMenuBoardCache) Set(ctx context.Context, key string, value *domain.MenuBoard, ttl time.Duration) error {
	if value == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, ttl).Err()
}

func (c *RedisMenuBoardCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}
