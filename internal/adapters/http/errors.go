package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/KabiruH/attendance-agent/internal/domain"
)

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("request body must contain a single JSON value")
	}
	return nil
}

func parseIntDefault(raw string, fallback int) int {
	if strings.TrimSpace(raw) == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func writeMappedError(ctx context.Context, w http.ResponseWriter, operation string, err error) {
	status, code, msg := mapDomainError(err)
	logHTTPOperationError(ctx, operation, status, code, msg, err)
	writeError(w, status, code, msg)
}

func writeValidationError(ctx context.Context, w http.ResponseWriter, operation string, err error) {
	code := "VALIDATION_ERROR"
	msg := err.Error()
	logHTTPOperationError(ctx, operation, http.StatusBadRequest, code, msg, err)
	writeError(w, http.StatusBadRequest, code, msg)
}

// mapDomainError is the single place pipeline failures become HTTP outcomes.
// Precondition and gate failures are client-state conflicts, not server
// faults, so they map to 409/422-family statuses the UI can message from.
func mapDomainError(err error) (int, string, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "VALIDATION_ERROR", err.Error()
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED", "no valid session token"
	case errors.Is(err, domain.ErrSessionExpired):
		return http.StatusUnauthorized, "SESSION_EXPIRED", "session expired, sign in again"
	case errors.Is(err, domain.ErrLocationPermission):
		return http.StatusForbidden, "LOCATION_PERMISSION_DENIED", "location permission denied; enable location access and retry"
	case errors.Is(err, domain.ErrLocationTimeout):
		return http.StatusGatewayTimeout, "LOCATION_TIMEOUT", "timed out acquiring a position fix"
	case errors.Is(err, domain.ErrLocationUnavailable):
		return http.StatusServiceUnavailable, "LOCATION_UNAVAILABLE", "could not acquire a position fix"
	case errors.Is(err, domain.ErrOutOfRange):
		return http.StatusConflict, "OUT_OF_RANGE", err.Error()
	case errors.Is(err, domain.ErrBiometricUnavailable):
		return http.StatusConflict, "BIOMETRIC_UNAVAILABLE", "biometric hardware unavailable on this device"
	case errors.Is(err, domain.ErrBiometricNotEnrolled):
		return http.StatusConflict, "BIOMETRIC_NOT_ENROLLED", "enroll a fingerprint or face unlock, then retry"
	case errors.Is(err, domain.ErrBiometricDenied):
		return http.StatusConflict, "BIOMETRIC_DENIED", err.Error()
	case errors.Is(err, domain.ErrAlreadyCheckedIn):
		return http.StatusConflict, "ALREADY_CHECKED_IN", err.Error()
	case errors.Is(err, domain.ErrNotCheckedIn):
		return http.StatusConflict, "NOT_CHECKED_IN", err.Error()
	case errors.Is(err, domain.ErrWorkCheckInRequired):
		return http.StatusConflict, "WORK_CHECK_IN_REQUIRED", err.Error()
	case errors.Is(err, domain.ErrAnotherClassActive):
		return http.StatusConflict, "ANOTHER_CLASS_ACTIVE", err.Error()
	case errors.Is(err, domain.ErrClassRequired):
		return http.StatusBadRequest, "CLASS_REQUIRED", err.Error()
	case errors.Is(err, domain.ErrNoActiveClassSession):
		return http.StatusConflict, "NO_ACTIVE_CLASS_SESSION", err.Error()
	case errors.Is(err, domain.ErrActionInFlight):
		return http.StatusTooManyRequests, "ACTION_IN_FLIGHT", "the same action is already in progress"
	case errors.Is(err, domain.ErrSubmissionFailed):
		return http.StatusBadGateway, "SUBMISSION_FAILED", err.Error()
	case errors.Is(err, domain.ErrCancelled):
		return http.StatusConflict, "CANCELLED", "action cancelled before submission"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error"
	}
}
