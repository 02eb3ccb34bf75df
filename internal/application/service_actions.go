package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/KabiruH/attendance-agent/internal/domain"
	"github.com/KabiruH/attendance-agent/internal/ports"
)

// PerformAction runs the ordered verification pipeline for one user gesture:
// precondition guard, fresh location fix, geofence evaluation, biometric
// challenge, then exactly one submission. The first failure short-circuits the
// rest; nothing is retried automatically.
func (s *Service) PerformAction(ctx context.Context, req ActionRequest) (ActionResult, error) {
	if !req.Kind.Valid() {
		return ActionResult{}, fmt.Errorf("%w: unknown action kind %q", domain.ErrInvalidInput, req.Kind)
	}

	classID, err := s.checkPreconditions(req)
	if err != nil {
		s.recordAttempt(ctx, req.Kind, classID, StateIdle, 0, err)
		return ActionResult{}, err
	}

	release, err := s.acquireSlot(req.Kind, classID)
	if err != nil {
		return ActionResult{}, err
	}
	defer release()

	result, err := s.runPipeline(ctx, req.Kind, classID)
	if err != nil {
		return ActionResult{}, err
	}
	return result, nil
}

// checkPreconditions applies the client-side advisory guard against the held
// TodayView. It is a fast local check; the server re-validates on submit. For
// class check-out it also resolves the target class from the active session.
func (s *Service) checkPreconditions(req ActionRequest) (int64, error) {
	view := s.TodayView()
	classID := req.ClassID

	switch req.Kind {
	case domain.ActionWorkCheckIn:
		if view.IsCheckedInToWork {
			return classID, domain.ErrAlreadyCheckedIn
		}
	case domain.ActionWorkCheckOut:
		if !view.IsCheckedInToWork {
			return classID, domain.ErrNotCheckedIn
		}
	case domain.ActionClassCheckIn:
		if !view.IsCheckedInToWork {
			return classID, domain.ErrWorkCheckInRequired
		}
		if classID == 0 {
			return classID, domain.ErrClassRequired
		}
		if active := view.ActiveClassSession; active != nil {
			if active.ClassID == classID {
				return classID, domain.ErrAlreadyCheckedIn
			}
			return classID, fmt.Errorf("%w: class %d", domain.ErrAnotherClassActive, active.ClassID)
		}
	case domain.ActionClassCheckOut:
		active := view.ActiveClassSession
		if active == nil {
			return classID, domain.ErrNoActiveClassSession
		}
		if classID == 0 {
			classID = active.ClassID
		} else if active.ClassID != classID {
			return classID, domain.ErrNoActiveClassSession
		}
	}
	return classID, nil
}

func (s *Service) runPipeline(ctx context.Context, kind domain.ActionKind, classID int64) (ActionResult, error) {
	state := StateLocatingUser
	sample, err := s.acquireLocation(ctx)
	if err != nil {
		s.recordAttempt(ctx, kind, classID, state, 0, err)
		return ActionResult{}, err
	}

	state = StateEvaluatingGeofence
	verdict := domain.Evaluate(sample.Coordinate, s.cfg.Geofence)
	if !verdict.IsInside {
		err := fmt.Errorf("%w: %.0fm from site center", domain.ErrOutOfRange, verdict.DistanceMeters)
		s.recordAttempt(ctx, kind, classID, state, verdict.DistanceMeters, err)
		return ActionResult{}, err
	}

	// The geofence check runs before the prompt so a user who cannot possibly
	// succeed is not made to spend a biometric attempt.
	state = StateAwaitingBiometric
	if err := s.verifyBiometric(ctx); err != nil {
		s.recordAttempt(ctx, kind, classID, state, verdict.DistanceMeters, err)
		return ActionResult{}, err
	}

	if ctx.Err() != nil {
		err := fmt.Errorf("%w: %v", domain.ErrCancelled, ctx.Err())
		s.recordAttempt(ctx, kind, classID, state, verdict.DistanceMeters, err)
		return ActionResult{}, err
	}

	state = StateSubmitting
	submission := domain.AttendanceSubmission{
		Kind:              kind,
		ClassID:           classID,
		Location:          sample,
		BiometricVerified: true,
		IdempotencyKey:    uuid.NewString(),
		SubmittedAt:       s.nowFn(),
	}
	if _, err := s.ledger.SubmitAction(ctx, submission); err != nil {
		wrapped := err
		if !errors.Is(err, domain.ErrSubmissionFailed) {
			wrapped = fmt.Errorf("%w: %v", domain.ErrSubmissionFailed, err)
		}
		s.recordAttempt(ctx, kind, classID, state, verdict.DistanceMeters, wrapped)
		return ActionResult{}, wrapped
	}

	s.recordAttempt(ctx, kind, classID, StateSucceeded, verdict.DistanceMeters, nil)

	// Refresh only follows a confirmed successful mutation. A failed refresh
	// leaves the action succeeded; the view is just stale until the next one.
	if _, err := s.Refresh(ctx); err != nil {
		appLogger().WarnContext(ctx, "post-action refresh failed",
			"operation", "perform_action",
			"outcome", "partial",
			"kind", string(kind),
			"error", err,
		)
	}

	return ActionResult{
		Kind:        kind,
		ClassID:     classID,
		State:       StateSucceeded,
		Verdict:     verdict,
		CompletedAt: s.nowFn(),
	}, nil
}

// acquireLocation is the location probe: permission first, then one bounded
// high-accuracy fix. The cached last-known sample is written for display only
// and never read back by any verification path.
func (s *Service) acquireLocation(ctx context.Context) (domain.LocationSample, error) {
	granted, err := s.locator.RequestPermission(ctx)
	if err != nil {
		return domain.LocationSample{}, fmt.Errorf("%w: %v", domain.ErrLocationUnavailable, err)
	}
	if !granted {
		return domain.LocationSample{}, domain.ErrLocationPermission
	}

	probeCtx, cancel := context.WithTimeout(ctx, s.cfg.LocationTimeout)
	defer cancel()

	sample, err := s.locator.CurrentPosition(probeCtx, ports.PositionRequest{
		HighAccuracy: true,
		Timeout:      s.cfg.LocationTimeout,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrLocationPermission),
			errors.Is(err, domain.ErrLocationTimeout),
			errors.Is(err, domain.ErrLocationUnavailable):
			return domain.LocationSample{}, err
		case errors.Is(err, context.DeadlineExceeded):
			return domain.LocationSample{}, fmt.Errorf("%w after %s", domain.ErrLocationTimeout, s.cfg.LocationTimeout)
		case errors.Is(err, context.Canceled):
			return domain.LocationSample{}, fmt.Errorf("%w: %v", domain.ErrCancelled, err)
		default:
			return domain.LocationSample{}, fmt.Errorf("%w: %v", domain.ErrLocationUnavailable, err)
		}
	}
	if sample.CapturedAt.IsZero() {
		sample.CapturedAt = s.nowFn()
	}

	if s.locations != nil {
		if cacheErr := s.locations.PutLastKnown(ctx, sample, s.cfg.LocationCacheTTL); cacheErr != nil {
			appLogger().WarnContext(ctx, "failed to cache last known location",
				"operation", "acquire_location",
				"outcome", "partial",
				"error", cacheErr,
			)
		}
	}
	return sample, nil
}

// verifyBiometric walks the precondition ladder before issuing the challenge:
// hardware present, credentials enrolled, then one platform prompt. Each rung
// short-circuits with its own error so the UI can show the right remedy.
func (s *Service) verifyBiometric(ctx context.Context) error {
	hasHardware, err := s.biometrics.HasHardware(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrBiometricUnavailable, err)
	}
	if !hasHardware {
		return domain.ErrBiometricUnavailable
	}

	enrolled, err := s.biometrics.IsEnrolled(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrBiometricUnavailable, err)
	}
	if !enrolled {
		return domain.ErrBiometricNotEnrolled
	}

	result, err := s.biometrics.Challenge(ctx, s.cfg.BiometricPrompt)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("%w: %v", domain.ErrCancelled, err)
		}
		return fmt.Errorf("%w: %v", domain.ErrBiometricDenied, err)
	}
	switch result.Status {
	case domain.BiometricVerified:
		return nil
	case domain.BiometricNotEnrolled:
		return domain.ErrBiometricNotEnrolled
	case domain.BiometricUnavailable:
		if result.Reason != "" {
			return fmt.Errorf("%w: %s", domain.ErrBiometricUnavailable, result.Reason)
		}
		return domain.ErrBiometricUnavailable
	default:
		if result.Reason != "" {
			return fmt.Errorf("%w: %s", domain.ErrBiometricDenied, result.Reason)
		}
		return domain.ErrBiometricDenied
	}
}

// recordAttempt writes the local journal trace. Journal failures are logged,
// never propagated; the trail is diagnostic, not authoritative.
func (s *Service) recordAttempt(ctx context.Context, kind domain.ActionKind, classID int64, state ActionState, distance float64, attemptErr error) {
	if s.journal == nil {
		return
	}
	entry := ports.JournalEntry{
		Kind:           kind,
		ClassID:        classID,
		State:          string(state),
		Outcome:        "success",
		DistanceMeters: distance,
		RecordedAt:     s.nowFn(),
	}
	if attemptErr != nil {
		entry.Outcome = "failure"
		entry.FailureReason = attemptErr.Error()
	}
	if err := s.journal.Record(ctx, entry); err != nil {
		appLogger().WarnContext(ctx, "failed to journal attendance attempt",
			"operation", "record_attempt",
			"outcome", "failure",
			"kind", string(kind),
			"error", err,
		)
	}
}
