package domain

import "errors"

var (
	// ErrLocationPermission is returned when the platform denies location access.
	// The action never proceeds on a denied permission; the user gets a remedy hint.
	ErrLocationPermission = errors.New("location permission denied")
	// ErrLocationUnavailable signals the platform could not produce a fix.
	ErrLocationUnavailable = errors.New("position unavailable")
	// ErrLocationTimeout is returned when the bounded wait for a fix elapses.
	// A stuck probe fails rather than hanging the whole pipeline.
	ErrLocationTimeout = errors.New("position acquisition timed out")

	// ErrOutOfRange is returned when the fresh sample falls outside the geofence.
	// It carries no retry semantics; the user moves and re-initiates.
	ErrOutOfRange = errors.New("outside attendance geofence")

	// ErrBiometricUnavailable signals missing biometric hardware on this device.
	ErrBiometricUnavailable = errors.New("biometric hardware unavailable")
	// ErrBiometricNotEnrolled signals no credentials enrolled on the device.
	// Distinct from unavailable so the remedy message differs.
	ErrBiometricNotEnrolled = errors.New("no biometric credentials enrolled")
	// ErrBiometricDenied covers a failed or cancelled challenge.
	ErrBiometricDenied = errors.New("biometric verification denied")

	// Business preconditions checked client-side before any gate runs.
	// The server remains authoritative and re-validates on submit.
	ErrAlreadyCheckedIn     = errors.New("already checked in to work today")
	ErrNotCheckedIn         = errors.New("not checked in to work")
	ErrWorkCheckInRequired  = errors.New("work check-in required before class actions")
	ErrAnotherClassActive   = errors.New("another class session is active")
	ErrClassRequired        = errors.New("class id required")
	ErrNoActiveClassSession = errors.New("no active class session")

	// ErrActionInFlight rejects re-entrant attempts of the same action, which
	// is what prevents a double-tap from double-submitting.
	ErrActionInFlight = errors.New("action already in flight")

	// ErrSubmissionFailed wraps network or server failures on the write. Never
	// retried automatically; a retried submit could double-record a check-in.
	ErrSubmissionFailed = errors.New("attendance submission failed")

	ErrSessionExpired = errors.New("session token expired")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInvalidInput   = errors.New("invalid input")
	ErrCancelled      = errors.New("action cancelled")
)
