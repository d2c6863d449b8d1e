package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"healmymind_backend/internal/model"

	"github.com/go-redis/redis/v8"
)

// TestCache keeps fully loaded tests in redis. A nil client makes every
// call a miss.
type TestCache struct {
	Redis  *redis.Client
	prefix string
	ttl    time.Duration
}

func NewTestCache(rdb *redis.Client, prefix string, ttl time.Duration) *TestCache {
	return &TestCache{Redis: rdb, prefix: prefix, ttl: ttl}
}

func (c *TestCache) key(id uint) string {
	return fmt.Sprintf("%stest:%d", c.prefix, id)
}

func (c *TestCache) Get(ctx context.Context, id uint) (*model.Test, bool, error) {
	if c == nil || c.Redis == nil {
		return nil, false, nil
	}
	val, err := c.Redis.Get(ctx, c.key(id)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	} else if err != nil {
		return nil, false, err
	}
	var t model.Test
	if err := json.Unmarshal(val, &t); err != nil {
		return nil, false, err
	}
	return &t, true, nil
}

func (c *TestCache) Set(ctx context.Context, t *model.Test) error {
	if c == nil || c.Redis == nil {
		return nil
	}
	data, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return c.Redis.Set(ctx, c.key(t.ID), data, c.ttl).Err()
}

func (c *TestCache) Invalidate(ctx context.Context, id uint) error {
	if c == nil || c.Redis == nil {
		return nil
	}
	return c.Redis.Del(ctx, c.key(id)).Err()
}
