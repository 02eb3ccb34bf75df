package domain

import (
	"math"
	"testing"
)

var campusCenter = Coordinate{Latitude: -1.22486, Longitude: 36.70958}

func TestDistanceZeroForSamePoint(t *testing.T) {
	t.Parallel()

	if d := Distance(campusCenter, campusCenter); d != 0 {
		t.Fatalf("expected zero distance for identical points, got %v", d)
	}
}

func TestDistanceSymmetry(t *testing.T) {
	t.Parallel()

	other := Coordinate{Latitude: -1.22586, Longitude: 36.71058}
	ab := Distance(campusCenter, other)
	ba := Distance(other, campusCenter)
	if math.Abs(ab-ba) > 1e-9 {
		t.Fatalf("distance not symmetric: %v vs %v", ab, ba)
	}
}

func TestDistanceKnownOffset(t *testing.T) {
	t.Parallel()

	// One millidegree of latitude is roughly 111 meters anywhere on Earth.
	offset := Coordinate{Latitude: campusCenter.Latitude + 0.001, Longitude: campusCenter.Longitude}
	d := Distance(campusCenter, offset)
	if d < 110 || d > 112 {
		t.Fatalf("expected ~111m for 0.001 degree latitude offset, got %v", d)
	}
}

func TestEvaluateBoundaryIsInside(t *testing.T) {
	t.Parallel()

	spec := GeofenceSpec{Center: campusCenter, RadiusMeters: 50}

	inside := Evaluate(campusCenter, spec)
	if !inside.IsInside {
		t.Fatal("center must be inside the fence")
	}

	// ~111m north of center, well past a 50m radius.
	outside := Evaluate(Coordinate{Latitude: campusCenter.Latitude + 0.001, Longitude: campusCenter.Longitude}, spec)
	if outside.IsInside {
		t.Fatalf("expected outside verdict at %vm", outside.DistanceMeters)
	}
	if outside.DistanceMeters <= spec.RadiusMeters {
		t.Fatalf("distance %v should exceed radius %v", outside.DistanceMeters, spec.RadiusMeters)
	}

	// A verdict exactly on the radius counts as inside.
	exact := Evaluate(campusCenter, GeofenceSpec{Center: campusCenter, RadiusMeters: 0})
	if !exact.IsInside {
		t.Fatal("zero distance with zero radius must be inside")
	}
}

func TestEvaluateExactRadiusBoundary(t *testing.T) {
	t.Parallel()

	// Build a fence whose radius equals the measured distance exactly, so the
	// sample sits on the boundary regardless of floating point rounding.
	sample := Coordinate{Latitude: campusCenter.Latitude + 0.00045, Longitude: campusCenter.Longitude}
	d := Distance(campusCenter, sample)
	if d <= 0 {
		t.Fatalf("setup: distance %v", d)
	}

	onBoundary := Evaluate(sample, GeofenceSpec{Center: campusCenter, RadiusMeters: d})
	if !onBoundary.IsInside {
		t.Fatalf("sample at exactly radius %vm must be inside", d)
	}

	justOutside := Evaluate(sample, GeofenceSpec{Center: campusCenter, RadiusMeters: d - 1})
	if justOutside.IsInside {
		t.Fatal("sample one meter past the radius must be outside")
	}
}

func TestGeofenceSpecValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		spec    GeofenceSpec
		wantErr bool
	}{
		{"valid", GeofenceSpec{Center: campusCenter, RadiusMeters: 50}, false},
		{"zero radius", GeofenceSpec{Center: campusCenter, RadiusMeters: 0}, true},
		{"negative radius", GeofenceSpec{Center: campusCenter, RadiusMeters: -1}, true},
		{"latitude out of range", GeofenceSpec{Center: Coordinate{Latitude: 91}, RadiusMeters: 10}, true},
		{"longitude out of range", GeofenceSpec{Center: Coordinate{Longitude: -181}, RadiusMeters: 10}, true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := tc.spec.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
