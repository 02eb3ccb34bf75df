package ports

import (
	"context"

	"github.com/KabiruH/attendance-agent/internal/domain"
)

// WorkAttendanceSnapshot is the normalized result of the work-attendance read.
// IsCheckedIn is the server's explicit flag when the payload carries one; nil
// means the agent derives the bit from the record's times.
type WorkAttendanceSnapshot struct {
	Today       *domain.WorkAttendanceRecord
	IsCheckedIn *bool
	History     []domain.WorkAttendanceRecord
}

// ClassAttendanceSnapshot is the normalized result of the class-attendance read.
type ClassAttendanceSnapshot struct {
	Today         []domain.ClassAttendanceRecord
	ActiveSession *domain.ClassAttendanceRecord
	History       []domain.ClassAttendanceRecord
}

// SubmissionReceipt echoes whatever record the ledger returned for the write.
// Either field may be nil; the authoritative state comes from the refresh that
// follows a successful submission.
type SubmissionReceipt struct {
	WorkRecord  *domain.WorkAttendanceRecord
	ClassRecord *domain.ClassAttendanceRecord
}

// AttendanceLedger is the remote attendance API contract. The two reads are
// independent collaborators; either may fail without poisoning the other.
// Submit must be called at most once per user gesture.
type AttendanceLedger interface {
	FetchWorkAttendance(ctx context.Context) (WorkAttendanceSnapshot, error)
	FetchClassAttendance(ctx context.Context) (ClassAttendanceSnapshot, error)
	SubmitAction(ctx context.Context, submission domain.AttendanceSubmission) (SubmissionReceipt, error)
}
