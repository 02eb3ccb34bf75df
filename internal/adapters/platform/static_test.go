package platform

import (
	"context"
	"testing"

	"github.com/KabiruH/attendance-agent/internal/domain"
	"github.com/KabiruH/attendance-agent/internal/ports"
)

func TestStaticGeolocator(t *testing.T) {
	t.Parallel()

	coord := domain.Coordinate{Latitude: -1.22486, Longitude: 36.70958}
	loc := NewStaticGeolocator(coord, 0)

	granted, err := loc.RequestPermission(context.Background())
	if err != nil || !granted {
		t.Fatalf("permission: %v %v", granted, err)
	}

	sample, err := loc.CurrentPosition(context.Background(), ports.PositionRequest{HighAccuracy: true})
	if err != nil {
		t.Fatalf("CurrentPosition: %v", err)
	}
	if sample.Coordinate != coord {
		t.Fatalf("coordinate = %+v", sample.Coordinate)
	}
	if sample.AccuracyMeters != 5 {
		t.Fatalf("default accuracy = %v, want 5", sample.AccuracyMeters)
	}
	if sample.CapturedAt.IsZero() {
		t.Fatal("sample must be stamped")
	}
}

func TestStaticGeolocatorHonorsCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	loc := NewStaticGeolocator(domain.Coordinate{}, 5)
	if _, err := loc.CurrentPosition(ctx, ports.PositionRequest{}); err == nil {
		t.Fatal("cancelled context must error")
	}
}

func TestApproveBiometric(t *testing.T) {
	t.Parallel()

	b := NewApproveBiometric()
	result, err := b.Challenge(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Challenge: %v", err)
	}
	if !result.Verified() {
		t.Fatalf("result = %+v, want verified", result)
	}
}
