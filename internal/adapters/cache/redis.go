package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/KabiruH/attendance-agent/internal/domain"
	"github.com/KabiruH/attendance-agent/internal/ports"
)

const (
	lastKnownLocationKey = "agent:location:last_known"
	todayViewKey         = "agent:attendance:today_view"
)

// Connect initializes a Redis client from URL or host:port input.
// Supporting both formats keeps local and container config paths simple.
func Connect(_ context.Context, redisURL string) (*redis.Client, error) {
	if strings.HasPrefix(redisURL, "redis://") {
		opt, parseErr := redis.ParseURL(redisURL)
		if parseErr != nil {
			return nil, fmt.Errorf("parse redis url: %w", parseErr)
		}
		return redis.NewClient(opt), nil
	}
	return redis.NewClient(&redis.Options{Addr: redisURL}), nil
}

// RedisLocationCache keeps the display-only last-known sample with a short TTL.
type RedisLocationCache struct {
	client *redis.Client
}

func NewRedisLocationCache(client *redis.Client) *RedisLocationCache {
	return &RedisLocationCache{client: client}
}

func (c *RedisLocationCache) PutLastKnown(ctx context.Context, sample domain.LocationSample, ttl time.Duration) error {
	raw, err := json.Marshal(sample)
	if err != nil {
		return fmt.Errorf("encode location sample: %w", err)
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return c.client.Set(ctx, lastKnownLocationKey, raw, ttl).Err()
}

func (c *RedisLocationCache) LastKnown(ctx context.Context) (*domain.LocationSample, error) {
	raw, err := c.client.Get(ctx, lastKnownLocationKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var sample domain.LocationSample
	if err := json.Unmarshal(raw, &sample); err != nil {
		return nil, fmt.Errorf("decode location sample: %w", err)
	}
	return &sample, nil
}

// RedisSnapshotCache keeps the last good TodayView for display during outages.
type RedisSnapshotCache struct {
	client *redis.Client
}

func NewRedisSnapshotCache(client *redis.Client) *RedisSnapshotCache {
	return &RedisSnapshotCache{client: client}
}

func (c *RedisSnapshotCache) PutTodayView(ctx context.Context, view domain.TodayView, ttl time.Duration) error {
	raw, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("encode today view: %w", err)
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return c.client.Set(ctx, todayViewKey, raw, ttl).Err()
}

func (c *RedisSnapshotCache) TodayView(ctx context.Context) (*domain.TodayView, error) {
	raw, err := c.client.Get(ctx, todayViewKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var view domain.TodayView
	if err := json.Unmarshal(raw, &view); err != nil {
		return nil, fmt.Errorf("decode today view: %w", err)
	}
	return &view, nil
}

var (
	_ ports.LocationCache = (*RedisLocationCache)(nil)
	_ ports.SnapshotCache = (*RedisSnapshotCache)(nil)
)
