package domain

import (
	"fmt"
	"math"
	"time"
)

// meanEarthRadiusMeters is the mean Earth radius used for great-circle distance.
const meanEarthRadiusMeters = 6371000.0

// Coordinate is an immutable WGS84 point.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// LocationSample is a single position fix taken for one attendance action.
// It is never persisted beyond the action except as a display-only cached copy.
type LocationSample struct {
	Coordinate     Coordinate `json:"coordinate"`
	AccuracyMeters float64    `json:"accuracy_meters"`
	CapturedAt     time.Time  `json:"captured_at"`
}

// GeofenceSpec is the circular region within which attendance actions are permitted.
// It is configured once at startup and validated there.
type GeofenceSpec struct {
	Center       Coordinate `json:"center"`
	RadiusMeters float64    `json:"radius_meters"`
}

// Validate rejects malformed fences at startup rather than at action time.
func (g GeofenceSpec) Validate() error {
	if g.RadiusMeters <= 0 {
		return fmt.Errorf("%w: geofence radius must be positive, got %v", ErrInvalidInput, g.RadiusMeters)
	}
	if g.Center.Latitude < -90 || g.Center.Latitude > 90 {
		return fmt.Errorf("%w: geofence center latitude out of range", ErrInvalidInput)
	}
	if g.Center.Longitude < -180 || g.Center.Longitude > 180 {
		return fmt.Errorf("%w: geofence center longitude out of range", ErrInvalidInput)
	}
	return nil
}

// GeofenceVerdict is the derived containment result for one sample.
type GeofenceVerdict struct {
	DistanceMeters float64 `json:"distance_meters"`
	IsInside       bool    `json:"is_inside"`
}

// Distance returns the haversine great-circle distance between two coordinates
// in meters. The full haversine form stays accurate at the tens-of-meters scale
// the geofence operates on.
func Distance(a, b Coordinate) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon
	return 2 * meanEarthRadiusMeters * math.Asin(math.Sqrt(h))
}

// Evaluate classifies a sample against the fence. A sample exactly on the
// boundary counts as inside.
func Evaluate(sample Coordinate, spec GeofenceSpec) GeofenceVerdict {
	d := Distance(sample, spec.Center)
	return GeofenceVerdict{
		DistanceMeters: d,
		IsInside:       d <= spec.RadiusMeters,
	}
}
