package application

import (
	"time"

	"github.com/KabiruH/attendance-agent/internal/domain"
)

// Config carries the behavior knobs resolved at bootstrap.
type Config struct {
	Geofence         domain.GeofenceSpec
	BiometricPrompt  string
	LocationTimeout  time.Duration
	LocationCacheTTL time.Duration
	SnapshotCacheTTL time.Duration
}

// ActionState names the coordinator's per-invocation pipeline states.
type ActionState string

const (
	StateIdle               ActionState = "IDLE"
	StateLocatingUser       ActionState = "LOCATING_USER"
	StateEvaluatingGeofence ActionState = "EVALUATING_GEOFENCE"
	StateAwaitingBiometric  ActionState = "AWAITING_BIOMETRIC"
	StateSubmitting         ActionState = "SUBMITTING"
	StateSucceeded          ActionState = "SUCCEEDED"
	StateFailed             ActionState = "FAILED"
)

// ActionRequest is one user-initiated attendance action. ClassID is required
// for class check-in; class check-out may omit it and resolve against the
// active session.
type ActionRequest struct {
	Kind    domain.ActionKind `json:"kind"`
	ClassID int64             `json:"class_id,omitempty"`
}

// ActionResult reports a completed action. Verdict carries the measured
// distance so the UI can show how far inside the fence the sample landed.
type ActionResult struct {
	Kind        domain.ActionKind      `json:"kind"`
	ClassID     int64                  `json:"class_id,omitempty"`
	State       ActionState            `json:"state"`
	Verdict     domain.GeofenceVerdict `json:"verdict"`
	CompletedAt time.Time              `json:"completed_at"`
}
