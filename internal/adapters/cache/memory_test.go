package cache

import (
	"context"
	"testing"
	"time"

	"github.com/KabiruH/attendance-agent/internal/domain"
)

func TestMemoryLocationCacheRoundTrip(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	c := NewMemoryLocationCache()
	c.nowFn = func() time.Time { return now }

	sample := domain.LocationSample{
		Coordinate:     domain.Coordinate{Latitude: -1.22486, Longitude: 36.70958},
		AccuracyMeters: 8,
		CapturedAt:     now,
	}
	if err := c.PutLastKnown(context.Background(), sample, time.Minute); err != nil {
		t.Fatalf("PutLastKnown: %v", err)
	}

	got, err := c.LastKnown(context.Background())
	if err != nil {
		t.Fatalf("LastKnown: %v", err)
	}
	if got == nil || got.Coordinate != sample.Coordinate {
		t.Fatalf("got %+v, want stored sample", got)
	}

	// Mutating the returned copy must not touch the cached value.
	got.AccuracyMeters = 999
	again, _ := c.LastKnown(context.Background())
	if again.AccuracyMeters != 8 {
		t.Fatal("cache handed out a shared pointer")
	}
}

func TestMemoryLocationCacheExpiry(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	c := NewMemoryLocationCache()
	c.nowFn = func() time.Time { return now }

	if err := c.PutLastKnown(context.Background(), domain.LocationSample{}, time.Minute); err != nil {
		t.Fatalf("PutLastKnown: %v", err)
	}

	now = now.Add(61 * time.Second)
	got, err := c.LastKnown(context.Background())
	if err != nil {
		t.Fatalf("LastKnown: %v", err)
	}
	if got != nil {
		t.Fatalf("expired entry returned: %+v", got)
	}
}

func TestMemoryLocationCacheEmpty(t *testing.T) {
	t.Parallel()

	got, err := NewMemoryLocationCache().LastKnown(context.Background())
	if err != nil || got != nil {
		t.Fatalf("empty cache: got %+v err %v, want nil nil", got, err)
	}
}

func TestMemorySnapshotCacheRoundTripAndExpiry(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	c := NewMemorySnapshotCache()
	c.nowFn = func() time.Time { return now }

	view := domain.TodayView{IsCheckedInToWork: true, RefreshedAt: now}
	if err := c.PutTodayView(context.Background(), view, 10*time.Minute); err != nil {
		t.Fatalf("PutTodayView: %v", err)
	}

	got, err := c.TodayView(context.Background())
	if err != nil {
		t.Fatalf("TodayView: %v", err)
	}
	if got == nil || !got.IsCheckedInToWork {
		t.Fatalf("got %+v, want stored view", got)
	}

	now = now.Add(11 * time.Minute)
	got, err = c.TodayView(context.Background())
	if err != nil || got != nil {
		t.Fatalf("expired: got %+v err %v, want nil nil", got, err)
	}
}
