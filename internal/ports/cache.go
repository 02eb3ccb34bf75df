package ports

import (
	"context"
	"time"

	"github.com/KabiruH/attendance-agent/internal/domain"
)

// LocationCache keeps the last successful sample for informational display.
// Verification flows never read it; they always re-sample live.
type LocationCache interface {
	PutLastKnown(ctx context.Context, sample domain.LocationSample, ttl time.Duration) error
	LastKnown(ctx context.Context) (*domain.LocationSample, error)
}

// SnapshotCache holds the last good TodayView so the UI can render something
// during a partial outage. Cached snapshots are display-only and short-lived;
// they never authorize an action.
type SnapshotCache interface {
	PutTodayView(ctx context.Context, view domain.TodayView, ttl time.Duration) error
	TodayView(ctx context.Context) (*domain.TodayView, error)
}
