package platform

import (
	"context"
	"time"

	"github.com/KabiruH/attendance-agent/internal/domain"
	"github.com/KabiruH/attendance-agent/internal/ports"
)

// StaticGeolocator reports a fixed coordinate. It backs local development and
// kiosk installs with a surveyed, permanently mounted device.
type StaticGeolocator struct {
	coordinate     domain.Coordinate
	accuracyMeters float64
}

func NewStaticGeolocator(coordinate domain.Coordinate, accuracyMeters float64) *StaticGeolocator {
	if accuracyMeters <= 0 {
		accuracyMeters = 5
	}
	return &StaticGeolocator{coordinate: coordinate, accuracyMeters: accuracyMeters}
}

func (s *StaticGeolocator) RequestPermission(context.Context) (bool, error) {
	return true, nil
}

func (s *StaticGeolocator) CurrentPosition(ctx context.Context, _ ports.PositionRequest) (domain.LocationSample, error) {
	if err := ctx.Err(); err != nil {
		return domain.LocationSample{}, err
	}
	return domain.LocationSample{
		Coordinate:     s.coordinate,
		AccuracyMeters: s.accuracyMeters,
		CapturedAt:     time.Now().UTC(),
	}, nil
}

// ApproveBiometric auto-verifies every challenge. Development only; real
// installs wire the daemon-backed authenticator.
type ApproveBiometric struct{}

func NewApproveBiometric() *ApproveBiometric {
	return &ApproveBiometric{}
}

func (ApproveBiometric) HasHardware(context.Context) (bool, error) { return true, nil }
func (ApproveBiometric) IsEnrolled(context.Context) (bool, error)  { return true, nil }

func (ApproveBiometric) Challenge(ctx context.Context, _ string) (domain.BiometricResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.BiometricResult{}, err
	}
	return domain.BiometricResult{Status: domain.BiometricVerified}, nil
}

var (
	_ ports.Geolocator             = (*StaticGeolocator)(nil)
	_ ports.BiometricAuthenticator = (*ApproveBiometric)(nil)
)
