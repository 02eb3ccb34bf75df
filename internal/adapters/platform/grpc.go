package platform

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/KabiruH/attendance-agent/internal/domain"
	"github.com/KabiruH/attendance-agent/internal/ports"
)

// The device's native capabilities are exposed by a small platform daemon
// over loopback gRPC. The methods are invoked by full name with Struct
// payloads, so no generated stubs are needed on the agent side.
const (
	locationPermissionMethod = "/attendance.platform.v1.LocationService/RequestPermission"
	locationPositionMethod   = "/attendance.platform.v1.LocationService/GetPosition"
	biometricHardwareMethod  = "/attendance.platform.v1.BiometricService/HasHardware"
	biometricEnrolledMethod  = "/attendance.platform.v1.BiometricService/IsEnrolled"
	biometricChallengeMethod = "/attendance.platform.v1.BiometricService/Challenge"
)

// Daemon wraps one loopback connection shared by both capability clients.
type Daemon struct {
	conn *grpc.ClientConn
}

func DialDaemon(endpoint string) (*Daemon, error) {
	conn, err := grpc.NewClient(endpoint, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial platform daemon: %w", err)
	}
	return &Daemon{conn: conn}, nil
}

func (d *Daemon) Close() error {
	if d.conn != nil {
		return d.conn.Close()
	}
	return nil
}

// GRPCGeolocator satisfies ports.Geolocator against the daemon's location
// service.
type GRPCGeolocator struct {
	conn *grpc.ClientConn
}

func NewGRPCGeolocator(daemon *Daemon) *GRPCGeolocator {
	return &GRPCGeolocator{conn: daemon.conn}
}

func (g *GRPCGeolocator) RequestPermission(ctx context.Context) (bool, error) {
	in := &structpb.Struct{}
	out := &structpb.Struct{}
	if err := g.conn.Invoke(ctx, locationPermissionMethod, in, out); err != nil {
		return false, mapLocationError(err)
	}
	return out.GetFields()["granted"].GetBoolValue(), nil
}

func (g *GRPCGeolocator) CurrentPosition(ctx context.Context, req ports.PositionRequest) (domain.LocationSample, error) {
	in, err := structpb.NewStruct(map[string]any{
		"high_accuracy": req.HighAccuracy,
		"timeout_ms":    req.Timeout.Milliseconds(),
	})
	if err != nil {
		return domain.LocationSample{}, fmt.Errorf("build position request: %w", err)
	}
	out := &structpb.Struct{}
	if err := g.conn.Invoke(ctx, locationPositionMethod, in, out); err != nil {
		return domain.LocationSample{}, mapLocationError(err)
	}

	fields := out.GetFields()
	sample := domain.LocationSample{
		Coordinate: domain.Coordinate{
			Latitude:  fields["latitude"].GetNumberValue(),
			Longitude: fields["longitude"].GetNumberValue(),
		},
		AccuracyMeters: fields["accuracy_meters"].GetNumberValue(),
	}
	if epochMs := int64(fields["epoch_ms"].GetNumberValue()); epochMs > 0 {
		sample.CapturedAt = time.UnixMilli(epochMs).UTC()
	} else {
		sample.CapturedAt = time.Now().UTC()
	}
	return sample, nil
}

func mapLocationError(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("%w: %v", domain.ErrLocationUnavailable, err)
	}
	switch st.Code() {
	case codes.PermissionDenied:
		return domain.ErrLocationPermission
	case codes.DeadlineExceeded:
		return domain.ErrLocationTimeout
	case codes.Canceled:
		return fmt.Errorf("%w: %v", domain.ErrCancelled, err)
	default:
		return fmt.Errorf("%w: %s", domain.ErrLocationUnavailable, st.Message())
	}
}

// GRPCBiometric satisfies ports.BiometricAuthenticator against the daemon's
// biometric service.
type GRPCBiometric struct {
	conn *grpc.ClientConn
}

func NewGRPCBiometric(daemon *Daemon) *GRPCBiometric {
	return &GRPCBiometric{conn: daemon.conn}
}

func (b *GRPCBiometric) HasHardware(ctx context.Context) (bool, error) {
	out := &structpb.Struct{}
	if err := b.conn.Invoke(ctx, biometricHardwareMethod, &structpb.Struct{}, out); err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrBiometricUnavailable, err)
	}
	return out.GetFields()["available"].GetBoolValue(), nil
}

func (b *GRPCBiometric) IsEnrolled(ctx context.Context) (bool, error) {
	out := &structpb.Struct{}
	if err := b.conn.Invoke(ctx, biometricEnrolledMethod, &structpb.Struct{}, out); err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrBiometricUnavailable, err)
	}
	return out.GetFields()["enrolled"].GetBoolValue(), nil
}

func (b *GRPCBiometric) Challenge(ctx context.Context, promptText string) (domain.BiometricResult, error) {
	in, err := structpb.NewStruct(map[string]any{"prompt": promptText})
	if err != nil {
		return domain.BiometricResult{}, fmt.Errorf("build challenge request: %w", err)
	}
	out := &structpb.Struct{}
	if err := b.conn.Invoke(ctx, biometricChallengeMethod, in, out); err != nil {
		st, ok := status.FromError(err)
		if ok && st.Code() == codes.Canceled {
			return domain.BiometricResult{}, fmt.Errorf("%w: %v", domain.ErrCancelled, err)
		}
		return domain.BiometricResult{}, fmt.Errorf("%w: %v", domain.ErrBiometricUnavailable, err)
	}

	fields := out.GetFields()
	outcome := fields["outcome"].GetStringValue()
	reason := fields["reason"].GetStringValue()
	switch outcome {
	case "success":
		return domain.BiometricResult{Status: domain.BiometricVerified}, nil
	case "cancelled":
		if reason == "" {
			reason = "challenge cancelled"
		}
		return domain.BiometricResult{Status: domain.BiometricDenied, Reason: reason}, nil
	case "not_enrolled":
		return domain.BiometricResult{Status: domain.BiometricNotEnrolled, Reason: reason}, nil
	default:
		if reason == "" {
			reason = "challenge failed"
		}
		return domain.BiometricResult{Status: domain.BiometricDenied, Reason: reason}, nil
	}
}

var (
	_ ports.Geolocator             = (*GRPCGeolocator)(nil)
	_ ports.BiometricAuthenticator = (*GRPCBiometric)(nil)
)
