package application

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/KabiruH/attendance-agent/internal/domain"
	"github.com/KabiruH/attendance-agent/internal/ports"
)

const serviceName = "attendance-agent"

// Service owns the single TodayView instance and runs both halves of the
// verification pipeline: the action coordinator and the state reconciler.
type Service struct {
	cfg        Config
	locator    ports.Geolocator
	biometrics ports.BiometricAuthenticator
	ledger     ports.AttendanceLedger
	locations  ports.LocationCache
	snapshots  ports.SnapshotCache
	journal    ports.ActionJournal
	nowFn      func() time.Time

	mu          sync.Mutex
	view        domain.TodayView
	subscribers []func(domain.TodayView)

	inflightMu sync.Mutex
	inflight   map[string]struct{}
}

type Dependencies struct {
	Config     Config
	Locator    ports.Geolocator
	Biometrics ports.BiometricAuthenticator
	Ledger     ports.AttendanceLedger
	Locations  ports.LocationCache
	Snapshots  ports.SnapshotCache
	Journal    ports.ActionJournal
}

func NewService(deps Dependencies) (*Service, error) {
	if err := deps.Config.Geofence.Validate(); err != nil {
		return nil, fmt.Errorf("geofence spec: %w", err)
	}
	cfg := deps.Config
	if cfg.LocationTimeout <= 0 {
		cfg.LocationTimeout = 10 * time.Second
	}
	if cfg.BiometricPrompt == "" {
		cfg.BiometricPrompt = "Verify your identity to record attendance"
	}
	return &Service{
		cfg:        cfg,
		locator:    deps.Locator,
		biometrics: deps.Biometrics,
		ledger:     deps.Ledger,
		locations:  deps.Locations,
		snapshots:  deps.Snapshots,
		journal:    deps.Journal,
		nowFn:      func() time.Time { return time.Now().UTC() },
		inflight:   map[string]struct{}{},
		view:       domain.TodayView{ClassRecords: []domain.ClassAttendanceRecord{}},
	}, nil
}

// TodayView returns a copy of the current reconciled snapshot. Callers never
// see a half-merged view; the swap happens atomically under the lock.
func (s *Service) TodayView() domain.TodayView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneView(s.view)
}

// Subscribe registers a callback invoked with every new snapshot. Callbacks
// run outside the service lock on the refreshing goroutine.
func (s *Service) Subscribe(fn func(domain.TodayView)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// LastKnownLocation returns the display-only cached sample, if any.
func (s *Service) LastKnownLocation(ctx context.Context) (*domain.LocationSample, error) {
	if s.locations == nil {
		return nil, nil
	}
	return s.locations.LastKnown(ctx)
}

// RecentJournal exposes the local attempt trail.
func (s *Service) RecentJournal(ctx context.Context, limit int) ([]ports.JournalEntry, error) {
	if s.journal == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}
	return s.journal.Recent(ctx, limit)
}

// acquireSlot reserves the per-action busy flag. Class actions are keyed by
// class so independent classes do not block each other.
func (s *Service) acquireSlot(kind domain.ActionKind, classID int64) (func(), error) {
	key := string(kind)
	if kind.IsClassAction() {
		key += "#" + strconv.FormatInt(classID, 10)
	}
	s.inflightMu.Lock()
	defer s.inflightMu.Unlock()
	if _, busy := s.inflight[key]; busy {
		return nil, domain.ErrActionInFlight
	}
	s.inflight[key] = struct{}{}
	return func() {
		s.inflightMu.Lock()
		delete(s.inflight, key)
		s.inflightMu.Unlock()
	}, nil
}

func cloneView(v domain.TodayView) domain.TodayView {
	out := v
	if v.WorkRecord != nil {
		rec := *v.WorkRecord
		out.WorkRecord = &rec
	}
	if v.ActiveClassSession != nil {
		rec := *v.ActiveClassSession
		out.ActiveClassSession = &rec
	}
	out.ClassRecords = append([]domain.ClassAttendanceRecord(nil), v.ClassRecords...)
	out.WorkHistory = append([]domain.WorkAttendanceRecord(nil), v.WorkHistory...)
	out.ClassHistory = append([]domain.ClassAttendanceRecord(nil), v.ClassHistory...)
	return out
}

func appLogger() *slog.Logger {
	return slog.Default().With(
		"service", serviceName,
		"module", "application",
		"layer", "application",
	)
}
