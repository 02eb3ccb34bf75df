package ports

import (
	"context"
	"time"

	"github.com/KabiruH/attendance-agent/internal/domain"
)

// PositionRequest tunes a single fix acquisition. Verification flows always
// request high accuracy with a bounded wait.
type PositionRequest struct {
	HighAccuracy bool
	Timeout      time.Duration
}

// Geolocator abstracts the platform location capability so implementations
// can be swapped at startup instead of branching on platform per call site.
type Geolocator interface {
	// RequestPermission resolves the location permission state. A false result
	// maps to domain.ErrLocationPermission at the probe layer.
	RequestPermission(ctx context.Context) (bool, error)
	// CurrentPosition acquires one fresh fix. CapturedAt is stamped at
	// acquisition time by the implementation, not at request time.
	CurrentPosition(ctx context.Context, req PositionRequest) (domain.LocationSample, error)
}

// BiometricAuthenticator abstracts the device identity challenge.
type BiometricAuthenticator interface {
	HasHardware(ctx context.Context) (bool, error)
	IsEnrolled(ctx context.Context) (bool, error)
	// Challenge issues one platform-mediated prompt and reduces the result.
	Challenge(ctx context.Context, promptText string) (domain.BiometricResult, error)
}
