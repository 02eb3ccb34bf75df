package ledger

import (
	"testing"
	"time"
)

func TestDecodeWorkSnapshotAcrossEnvelopeGenerations(t *testing.T) {
	t.Parallel()

	// The same day rendered by four server generations.
	payloads := map[string]string{
		"bare record": `{
			"id": 7, "employee_id": 42, "date": "2026-09-01",
			"check_in_time": "2026-09-01T08:02:00Z", "status": "PRESENT"
		}`,
		"success envelope": `{
			"success": true,
			"data": {
				"today": {
					"record": {"id": 7, "employeeId": 42, "date": "2026-09-01",
						"checkInTime": "2026-09-01T08:02:00Z", "status": "present"},
					"isCheckedIn": true
				}
			}
		}`,
		"nested attendance envelope": `{
			"data": {
				"attendance": {
					"today": {
						"attendance": {"id": 7, "user_id": 42, "attendance_date": "2026-09-01 00:00:00",
							"clock_in": "2026-09-01 08:02:00", "status": "Present"},
						"is_checked_in": true
					}
				}
			}
		}`,
		"epoch millis": `{
			"result": {
				"today": {
					"record": {"id": 7, "employee_id": 42, "date": "2026-09-01",
						"check_in_time": 1788249720000, "status": "PRESENT"}
				}
			}
		}`,
	}

	wantCheckIn := time.Date(2026, 9, 1, 8, 2, 0, 0, time.UTC)

	for name, payload := range payloads {
		name, payload := name, payload
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			snap := decodeWorkSnapshot([]byte(payload))
			if snap.Today == nil {
				t.Fatal("today record missing")
			}
			if snap.Today.ID != 7 {
				t.Fatalf("id = %d, want 7", snap.Today.ID)
			}
			if snap.Today.EmployeeID != 42 {
				t.Fatalf("employee id = %d, want 42", snap.Today.EmployeeID)
			}
			if snap.Today.Date != "2026-09-01" {
				t.Fatalf("date = %q, want 2026-09-01", snap.Today.Date)
			}
			if snap.Today.CheckInTime == nil || !snap.Today.CheckInTime.Equal(wantCheckIn) {
				t.Fatalf("check-in = %v, want %v", snap.Today.CheckInTime, wantCheckIn)
			}
			if snap.Today.CheckOutTime != nil {
				t.Fatalf("check-out should be nil, got %v", snap.Today.CheckOutTime)
			}
			if snap.Today.Status != "PRESENT" {
				t.Fatalf("status = %q, want PRESENT", snap.Today.Status)
			}
			if !snap.Today.Open() {
				t.Fatal("record should read as open")
			}
		})
	}
}

func TestDecodeWorkSnapshotMissingDataIsSafe(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"empty object":     `{}`,
		"null data":        `{"success": true, "data": null}`,
		"not json":         `<html>gateway timeout</html>`,
		"wrong types":      `{"today": {"record": {"id": "not-a-number", "check_in_time": false}}}`,
		"empty today node": `{"data": {"today": {}}}`,
	}

	for name, payload := range cases {
		name, payload := name, payload
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			snap := decodeWorkSnapshot([]byte(payload))
			if snap.Today != nil && snap.Today.Open() {
				t.Fatal("malformed payload must never read as checked in")
			}
			if snap.IsCheckedIn != nil && *snap.IsCheckedIn {
				t.Fatal("malformed payload must never set the checked-in flag")
			}
		})
	}
}

func TestDecodeWorkSnapshotExplicitFlagSurvives(t *testing.T) {
	t.Parallel()

	snap := decodeWorkSnapshot([]byte(`{"data": {"today": {"is_checked_in": false, "record": {
		"id": 1, "employee_id": 2, "date": "2026-09-01",
		"check_in_time": "2026-09-01T08:00:00Z"
	}}}}`))
	if snap.IsCheckedIn == nil || *snap.IsCheckedIn {
		t.Fatal("explicit false flag must be preserved, not re-derived")
	}
}

func TestDecodeClassSnapshotVariants(t *testing.T) {
	t.Parallel()

	t.Run("list under today node", func(t *testing.T) {
		t.Parallel()
		snap := decodeClassSnapshot([]byte(`{
			"data": {
				"today": {
					"sessions": [
						{"id": 1, "classId": 3, "checkInTime": "2026-09-01T09:00:00Z",
							"checkOutTime": "2026-09-01T10:00:00Z", "status": "completed"},
						{"id": 2, "class_id": 5, "check_in_time": "2026-09-01T11:00:00Z"}
					]
				}
			}
		}`))
		if len(snap.Today) != 2 {
			t.Fatalf("records = %d, want 2", len(snap.Today))
		}
		if snap.Today[1].ClassID != 5 || !snap.Today[1].Active() {
			t.Fatalf("second record = %+v, want active class 5", snap.Today[1])
		}
	})

	t.Run("bare list", func(t *testing.T) {
		t.Parallel()
		snap := decodeClassSnapshot([]byte(`{"today": [
			{"id": 2, "class_id": 5, "check_in_time": "2026-09-01T11:00:00Z"}
		]}`))
		if len(snap.Today) != 1 || snap.Today[0].ClassID != 5 {
			t.Fatalf("records = %+v, want one record for class 5", snap.Today)
		}
	})

	t.Run("server designated active session", func(t *testing.T) {
		t.Parallel()
		snap := decodeClassSnapshot([]byte(`{"data": {"today": {
			"records": [],
			"active_session": {"id": 9, "class_id": 7, "check_in_time": "2026-09-01T13:00:00Z"}
		}}}`))
		if snap.ActiveSession == nil || snap.ActiveSession.ClassID != 7 {
			t.Fatalf("active session = %+v, want class 7", snap.ActiveSession)
		}
	})

	t.Run("empty payload", func(t *testing.T) {
		t.Parallel()
		snap := decodeClassSnapshot([]byte(`{}`))
		if snap.Today == nil || len(snap.Today) != 0 {
			t.Fatalf("today = %+v, want empty non-nil slice", snap.Today)
		}
	})
}

func TestDecodeReceiptPicksRecordKind(t *testing.T) {
	t.Parallel()

	work := decodeReceipt([]byte(`{"data": {"record": {
		"id": 7, "employee_id": 42, "date": "2026-09-01",
		"check_in_time": "2026-09-01T08:02:00Z"
	}}}`))
	if work.WorkRecord == nil || work.ClassRecord != nil {
		t.Fatalf("receipt = %+v, want work record only", work)
	}

	class := decodeReceipt([]byte(`{"data": {"record": {
		"id": 9, "class_id": 5, "check_in_time": "2026-09-01T11:00:00Z"
	}}}`))
	if class.ClassRecord == nil || class.ClassRecord.ClassID != 5 {
		t.Fatalf("receipt = %+v, want class record for class 5", class)
	}
}

func TestRejectionMessage(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		payload  string
		rejected bool
		message  string
	}{
		{"success true", `{"success": true, "data": {}}`, false, ""},
		{"success false", `{"success": false, "error": "already checked in"}`, true, "already checked in"},
		{"status error", `{"status": "error", "message": "session conflict"}`, true, "session conflict"},
		{"status ok", `{"status": "ok"}`, false, ""},
		{"bare record", `{"id": 1}`, false, ""},
		{"rejection without message", `{"success": false}`, true, "submission rejected"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			msg, rejected := rejectionMessage([]byte(tc.payload))
			if rejected != tc.rejected {
				t.Fatalf("rejected = %v, want %v", rejected, tc.rejected)
			}
			if msg != tc.message {
				t.Fatalf("message = %q, want %q", msg, tc.message)
			}
		})
	}
}

func TestTimeFieldLayouts(t *testing.T) {
	t.Parallel()

	node := map[string]any{
		"rfc3339":  "2026-09-01T08:02:00Z",
		"sqlish":   "2026-09-01 08:02:00",
		"no_zone":  "2026-09-01T08:02:00",
		"epoch_ms": float64(1788249720000),
		"garbage":  "half past eight",
		"blank":    "  ",
	}
	want := time.Date(2026, 9, 1, 8, 2, 0, 0, time.UTC)

	for _, key := range []string{"rfc3339", "sqlish", "no_zone", "epoch_ms"} {
		got := timeField(node, key)
		if got == nil || !got.Equal(want) {
			t.Fatalf("key %s: got %v, want %v", key, got, want)
		}
	}
	for _, key := range []string{"garbage", "blank", "missing"} {
		if got := timeField(node, key); got != nil {
			t.Fatalf("key %s: got %v, want nil", key, got)
		}
	}
}
