package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/KabiruH/attendance-agent/internal/domain"
	"github.com/KabiruH/attendance-agent/internal/ports"
)

// Refresh fires the two independent reads concurrently, merges the results
// into a fresh TodayView, and swaps it in atomically. A failed half keeps the
// previous snapshot's data for that half and marks it stale instead of
// discarding the other half's result.
func (s *Service) Refresh(ctx context.Context) (domain.TodayView, error) {
	var (
		wg       sync.WaitGroup
		workSnap ports.WorkAttendanceSnapshot
		workErr  error
		classSnap ports.ClassAttendanceSnapshot
		classErr  error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		workSnap, workErr = s.ledger.FetchWorkAttendance(ctx)
	}()
	go func() {
		defer wg.Done()
		classSnap, classErr = s.ledger.FetchClassAttendance(ctx)
	}()
	wg.Wait()

	now := s.nowFn()
	today := domain.DayKey(now)

	s.mu.Lock()
	next := cloneView(s.view)
	next.RefreshedAt = now

	if workErr == nil {
		next.WorkRecord = workSnap.Today
		next.WorkHistory = workSnap.History
		next.IsCheckedInToWork = domain.DeriveWorkCheckedIn(workSnap.Today, workSnap.IsCheckedIn, today)
		next.WorkStale = false
	} else {
		next.WorkStale = true
	}

	if classErr == nil {
		records := classSnap.Today
		if records == nil {
			records = []domain.ClassAttendanceRecord{}
		}
		next.ClassRecords = records
		next.ClassHistory = classSnap.History
		active, surplus := domain.SelectActiveClassSession(records)
		if active == nil && classSnap.ActiveSession != nil && classSnap.ActiveSession.Active() {
			active = classSnap.ActiveSession
		}
		next.ActiveClassSession = active
		next.ClassStale = false
		if surplus > 0 {
			appLogger().WarnContext(ctx, "ledger returned multiple active class sessions",
				"operation", "refresh",
				"outcome", "partial",
				"surplus_active_sessions", surplus,
			)
		}
	} else {
		next.ClassStale = true
	}

	s.view = next
	snapshot := cloneView(next)
	subscribers := append(([]func(domain.TodayView))(nil), s.subscribers...)
	s.mu.Unlock()

	for _, fn := range subscribers {
		fn(cloneView(snapshot))
	}

	if s.snapshots != nil && (workErr == nil || classErr == nil) {
		if cacheErr := s.snapshots.PutTodayView(ctx, snapshot, s.cfg.SnapshotCacheTTL); cacheErr != nil {
			appLogger().WarnContext(ctx, "failed to cache today view",
				"operation", "refresh",
				"outcome", "partial",
				"error", cacheErr,
			)
		}
	}

	switch {
	case workErr != nil && classErr != nil:
		return snapshot, fmt.Errorf("refresh attendance: work: %v; class: %w", workErr, classErr)
	case workErr != nil:
		appLogger().WarnContext(ctx, "work attendance fetch failed, serving stale half",
			"operation", "refresh",
			"outcome", "partial",
			"error", workErr,
		)
	case classErr != nil:
		appLogger().WarnContext(ctx, "class attendance fetch failed, serving stale half",
			"operation", "refresh",
			"outcome", "partial",
			"error", classErr,
		)
	}
	return snapshot, nil
}
