// Package cache holds short-lived batch responses in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const namespace = "proofpop:batch"

var ErrMiss = errors.New("cache miss")

type Cache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr})
}

func New(client redis.UniversalClient, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// BatchKey identifies one batch request.
func BatchKey(siteID, widgetID string, limit int) string {
	return namespace + ":" + siteID + ":" + widgetID + ":" + strconv.Itoa(limit)
}

// Get decodes a cached value into dst, returning ErrMiss when absent.
func (c *Cache) Get(ctx context.Context, key string, dst any) error {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return fmt.Errorf("failed to read cache: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("failed to decode cached value: %w", err)
	}
	return nil
}

func (c *Cache) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache value: %w", err)
	}
	return c.client.Set(ctx, key, raw, c.ttl).Err()
}

// InvalidateSite drops every cached batch for a site.
func (c *Cache) InvalidateSite(ctx context.Context, siteID string) error {
	iter := c.client.Scan(ctx, 0, namespace+":"+siteID+":*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
