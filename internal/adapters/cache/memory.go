package cache

import (
	"context"
	"sync"
	"time"

	"github.com/KabiruH/attendance-agent/internal/domain"
	"github.com/KabiruH/attendance-agent/internal/ports"
)

// MemoryLocationCache is the in-process fallback used when no Redis endpoint
// is configured. TTL semantics match the Redis-backed store.
type MemoryLocationCache struct {
	mu        sync.Mutex
	sample    *domain.LocationSample
	expiresAt time.Time
	nowFn     func() time.Time
}

func NewMemoryLocationCache() *MemoryLocationCache {
	return &MemoryLocationCache{nowFn: func() time.Time { return time.Now().UTC() }}
}

func (c *MemoryLocationCache) PutLastKnown(_ context.Context, sample domain.LocationSample, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	copied := sample
	c.sample = &copied
	c.expiresAt = c.nowFn().Add(ttl)
	return nil
}

func (c *MemoryLocationCache) LastKnown(context.Context) (*domain.LocationSample, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sample == nil || c.nowFn().After(c.expiresAt) {
		return nil, nil
	}
	copied := *c.sample
	return &copied, nil
}

// MemorySnapshotCache mirrors RedisSnapshotCache in process memory.
type MemorySnapshotCache struct {
	mu        sync.Mutex
	view      *domain.TodayView
	expiresAt time.Time
	nowFn     func() time.Time
}

func NewMemorySnapshotCache() *MemorySnapshotCache {
	return &MemorySnapshotCache{nowFn: func() time.Time { return time.Now().UTC() }}
}

func (c *MemorySnapshotCache) PutTodayView(_ context.Context, view domain.TodayView, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	copied := view
	c.view = &copied
	c.expiresAt = c.nowFn().Add(ttl)
	return nil
}

func (c *MemorySnapshotCache) TodayView(context.Context) (*domain.TodayView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.view == nil || c.nowFn().After(c.expiresAt) {
		return nil, nil
	}
	copied := *c.view
	return &copied, nil
}

var (
	_ ports.LocationCache = (*MemoryLocationCache)(nil)
	_ ports.SnapshotCache = (*MemorySnapshotCache)(nil)
)
