package ports

import (
	"context"
	"time"

	"github.com/KabiruH/attendance-agent/internal/domain"
)

// JournalEntry is the device-local trace of one attendance attempt, recorded
// whether or not the attempt reached the ledger. It exists for support and
// debugging; the ledger remains the record of truth.
type JournalEntry struct {
	ID             int64
	Kind           domain.ActionKind
	ClassID        int64
	State          string
	Outcome        string
	FailureReason  string
	DistanceMeters float64
	RecordedAt     time.Time
}

// ActionJournal persists attempt traces locally.
type ActionJournal interface {
	Record(ctx context.Context, entry JournalEntry) error
	Recent(ctx context.Context, limit int) ([]JournalEntry, error)
}
