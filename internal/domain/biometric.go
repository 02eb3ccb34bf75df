package domain

// BiometricStatus is the reduced outcome of one biometric gate attempt.
type BiometricStatus string

const (
	BiometricVerified    BiometricStatus = "VERIFIED"
	BiometricDenied      BiometricStatus = "DENIED"
	BiometricUnavailable BiometricStatus = "UNAVAILABLE"
	BiometricNotEnrolled BiometricStatus = "NOT_ENROLLED"
)

// BiometricResult carries the outcome plus a reason for the non-verified
// variants so the caller can show a precise remedy message.
type BiometricResult struct {
	Status BiometricStatus `json:"status"`
	Reason string          `json:"reason,omitempty"`
}

// Verified is the only state that may set the submission's biometric bit.
func (r BiometricResult) Verified() bool {
	return r.Status == BiometricVerified
}
