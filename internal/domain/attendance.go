package domain

import (
	"sort"
	"time"
)

// ActionKind identifies the four attendance mutations an employee can request.
type ActionKind string

const (
	ActionWorkCheckIn   ActionKind = "WORK_CHECK_IN"
	ActionWorkCheckOut  ActionKind = "WORK_CHECK_OUT"
	ActionClassCheckIn  ActionKind = "CLASS_CHECK_IN"
	ActionClassCheckOut ActionKind = "CLASS_CHECK_OUT"
)

// IsClassAction reports whether the kind targets a class session rather than
// the work day.
func (k ActionKind) IsClassAction() bool {
	return k == ActionClassCheckIn || k == ActionClassCheckOut
}

// Valid reports whether the kind is one of the four known actions.
func (k ActionKind) Valid() bool {
	switch k {
	case ActionWorkCheckIn, ActionWorkCheckOut, ActionClassCheckIn, ActionClassCheckOut:
		return true
	}
	return false
}

// WorkStatus is the server-assigned day status.
type WorkStatus string

const (
	WorkStatusPresent WorkStatus = "PRESENT"
	WorkStatusLate    WorkStatus = "LATE"
	WorkStatusAbsent  WorkStatus = "ABSENT"
)

// WorkAttendanceRecord is the remote ledger's record for one employee-day.
// The agent holds read-only copies; mutations happen only through submissions.
type WorkAttendanceRecord struct {
	ID           int64      `json:"id"`
	EmployeeID   int64      `json:"employee_id"`
	Date         string     `json:"date"`
	CheckInTime  *time.Time `json:"check_in_time,omitempty"`
	CheckOutTime *time.Time `json:"check_out_time,omitempty"`
	Status       WorkStatus `json:"status"`
}

// Open reports whether the record has a check-in with no matching check-out.
func (r WorkAttendanceRecord) Open() bool {
	return r.CheckInTime != nil && r.CheckOutTime == nil
}

// ClassAttendanceRecord is the remote ledger's record for one class session.
type ClassAttendanceRecord struct {
	ID           int64      `json:"id"`
	ClassID      int64      `json:"class_id"`
	CheckInTime  *time.Time `json:"check_in_time,omitempty"`
	CheckOutTime *time.Time `json:"check_out_time,omitempty"`
	Status       string     `json:"status"`
}

// Active reports whether the session is checked in and not yet checked out.
func (r ClassAttendanceRecord) Active() bool {
	return r.CheckInTime != nil && r.CheckOutTime == nil
}

// DayKey formats a time as the calendar-day key used by the ledger.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// AttendanceSubmission is the single write sent to the ledger after both gates
// pass. It is constructed once per user gesture and never resubmitted.
type AttendanceSubmission struct {
	Kind              ActionKind     `json:"kind"`
	ClassID           int64          `json:"class_id,omitempty"`
	Location          LocationSample `json:"location"`
	BiometricVerified bool           `json:"biometric_verified"`
	IdempotencyKey    string         `json:"idempotency_key"`
	SubmittedAt       time.Time      `json:"submitted_at"`
}

// TodayView is the reconciled client-side snapshot of "today". It is rebuilt
// wholesale by the reconciler; callers never observe a partial merge.
type TodayView struct {
	WorkRecord         *WorkAttendanceRecord  `json:"work_record"`
	IsCheckedInToWork  bool                   `json:"is_checked_in_to_work"`
	ClassRecords       []ClassAttendanceRecord `json:"class_records"`
	ActiveClassSession *ClassAttendanceRecord `json:"active_class_session"`
	WorkHistory        []WorkAttendanceRecord `json:"work_history,omitempty"`
	ClassHistory       []ClassAttendanceRecord `json:"class_history,omitempty"`

	// Stale flags mark the halves whose last fetch failed; their data is the
	// previous snapshot's, shown rather than blanked.
	WorkStale  bool      `json:"work_stale"`
	ClassStale bool      `json:"class_stale"`
	RefreshedAt time.Time `json:"refreshed_at"`
}

// DeriveWorkCheckedIn decides the checked-in bit for the current day. An
// explicit server flag wins when present; otherwise the bit is derived from
// the record's times. Missing data defaults to not-checked-in so a malformed
// payload can never fake completed attendance.
func DeriveWorkCheckedIn(record *WorkAttendanceRecord, serverFlag *bool, today string) bool {
	if serverFlag != nil {
		return *serverFlag
	}
	if record == nil {
		return false
	}
	if record.Date != "" && record.Date != today {
		return false
	}
	return record.Open()
}

// SelectActiveClassSession returns the active session among today's class
// records. At most one should exist; if the server returns several, the most
// recently checked-in wins deterministically and the surplus count is reported
// so the caller can log the inconsistency.
func SelectActiveClassSession(records []ClassAttendanceRecord) (*ClassAttendanceRecord, int) {
	active := make([]ClassAttendanceRecord, 0, 1)
	for _, r := range records {
		if r.Active() {
			active = append(active, r)
		}
	}
	if len(active) == 0 {
		return nil, 0
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].CheckInTime.After(*active[j].CheckInTime)
	})
	chosen := active[0]
	return &chosen, len(active) - 1
}
