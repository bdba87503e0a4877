// Package cache holds the Redis-backed schedule cache. The schedule
// endpoint is by far the hottest read path, so rendered responses are
// kept as raw JSON under a per-day key and invalidated on any write
// that can change the schedule.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Config struct {
	Addr     string
	Password string
	TTL      time.Duration
}

type ScheduleCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewScheduleCache(cfg Config) (*ScheduleCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return &ScheduleCache{client: client, ttl: cfg.TTL}, nil
}

func scheduleKey(day string) string {
	return "schedule:" + day
}

// Get returns the cached schedule JSON for a day, or (nil, nil) on miss.
func (c *ScheduleCache) Get(ctx context.Context, day string) ([]byte, error) {
	data, err := c.client.Get(ctx, scheduleKey(day)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading schedule cache: %w", err)
	}
	return data, nil
}

func (c *ScheduleCache) Set(ctx context.Context, day string, data []byte) error {
	if err := c.client.Set(ctx, scheduleKey(day), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("writing schedule cache: %w", err)
	}
	return nil
}

// Invalidate drops every cached schedule day. Writes are rare compared
// to schedule reads, so a full flush of the keyspace prefix is fine.
func (c *ScheduleCache) Invalidate(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, scheduleKey("*"), 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scanning schedule cache keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("invalidating schedule cache: %w", err)
	}
	return nil
}

func (c *ScheduleCache) Close() error {
	return c.client.Close()
}
