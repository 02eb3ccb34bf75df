package ledger

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/KabiruH/attendance-agent/internal/domain"
	"github.com/KabiruH/attendance-agent/internal/ports"
)

// The attendance API has shipped four generations of response shapes for the
// same endpoints: a bare record, a {success,data} envelope, a doubly nested
// {data:{attendance:...}} envelope, and a list-wrapped form. Everything here
// decodes loosely into maps and normalizes at this boundary so nothing above
// the adapter ever branches on wire shape. Missing or unreadable fields fall
// back to safe defaults: absent data never reads as completed attendance.

// unwrapPayload peels envelope layers until it reaches the payload object.
func unwrapPayload(raw []byte) map[string]any {
	var root map[string]any
	if err := json.Unmarshal(raw, &root); err != nil {
		return nil
	}
	return descend(root, 0)
}

func descend(node map[string]any, depth int) map[string]any {
	if node == nil || depth > 3 {
		return node
	}
	for _, key := range []string{"data", "result", "attendance", "payload"} {
		if inner, ok := node[key].(map[string]any); ok {
			return descend(inner, depth+1)
		}
	}
	return node
}

func decodeWorkSnapshot(raw []byte) ports.WorkAttendanceSnapshot {
	payload := unwrapPayload(raw)
	snap := ports.WorkAttendanceSnapshot{}
	if payload == nil {
		return snap
	}

	todayNode := objectField(payload, "today")
	if todayNode != nil {
		if rec := objectField(todayNode, "record", "attendance", "work_attendance", "workAttendance"); rec != nil {
			r := decodeWorkRecord(rec)
			snap.Today = &r
		} else if looksLikeRecord(todayNode) {
			// Generation one returned the day's record directly under "today".
			r := decodeWorkRecord(todayNode)
			snap.Today = &r
		}
		snap.IsCheckedIn = boolField(todayNode, "is_checked_in", "isCheckedIn", "checked_in", "checkedIn")
	} else if looksLikeRecord(payload) {
		r := decodeWorkRecord(payload)
		snap.Today = &r
		snap.IsCheckedIn = boolField(payload, "is_checked_in", "isCheckedIn")
	}

	for _, item := range listField(payload, "history", "records", "items") {
		snap.History = append(snap.History, decodeWorkRecord(item))
	}
	return snap
}

func decodeClassSnapshot(raw []byte) ports.ClassAttendanceSnapshot {
	payload := unwrapPayload(raw)
	snap := ports.ClassAttendanceSnapshot{Today: []domain.ClassAttendanceRecord{}}
	if payload == nil {
		return snap
	}

	todayNode := objectField(payload, "today")
	var todayItems []map[string]any
	if todayNode != nil {
		todayItems = listField(todayNode, "records", "sessions", "attendances", "items")
		if active := objectField(todayNode, "active_session", "activeSession", "active"); active != nil {
			r := decodeClassRecord(active)
			snap.ActiveSession = &r
		}
	} else {
		todayItems = listField(payload, "today", "records", "sessions")
	}
	for _, item := range todayItems {
		snap.Today = append(snap.Today, decodeClassRecord(item))
	}

	for _, item := range listField(payload, "history", "items") {
		snap.History = append(snap.History, decodeClassRecord(item))
	}
	return snap
}

func decodeReceipt(raw []byte) ports.SubmissionReceipt {
	payload := unwrapPayload(raw)
	receipt := ports.SubmissionReceipt{}
	if payload == nil {
		return receipt
	}
	if rec := objectField(payload, "work_attendance", "workAttendance", "attendance", "record"); rec != nil {
		if _, hasClass := rec["class_id"]; hasClass {
			r := decodeClassRecord(rec)
			receipt.ClassRecord = &r
		} else if _, hasClass := rec["classId"]; hasClass {
			r := decodeClassRecord(rec)
			receipt.ClassRecord = &r
		} else {
			r := decodeWorkRecord(rec)
			receipt.WorkRecord = &r
		}
	}
	if rec := objectField(payload, "class_attendance", "classAttendance", "session"); rec != nil {
		r := decodeClassRecord(rec)
		receipt.ClassRecord = &r
	}
	return receipt
}

func decodeWorkRecord(node map[string]any) domain.WorkAttendanceRecord {
	return domain.WorkAttendanceRecord{
		ID:           intField(node, "id", "record_id", "recordId"),
		EmployeeID:   intField(node, "employee_id", "employeeId", "user_id", "userId"),
		Date:         dayField(node, "date", "attendance_date", "attendanceDate", "day"),
		CheckInTime:  timeField(node, "check_in_time", "checkInTime", "clock_in", "clockIn", "checked_in_at"),
		CheckOutTime: timeField(node, "check_out_time", "checkOutTime", "clock_out", "clockOut", "checked_out_at"),
		Status:       workStatus(stringField(node, "status")),
	}
}

func decodeClassRecord(node map[string]any) domain.ClassAttendanceRecord {
	return domain.ClassAttendanceRecord{
		ID:           intField(node, "id", "record_id", "recordId"),
		ClassID:      intField(node, "class_id", "classId", "class"),
		CheckInTime:  timeField(node, "check_in_time", "checkInTime", "checked_in_at", "checkedInAt"),
		CheckOutTime: timeField(node, "check_out_time", "checkOutTime", "checked_out_at", "checkedOutAt"),
		Status:       stringField(node, "status"),
	}
}

func workStatus(raw string) domain.WorkStatus {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "PRESENT":
		return domain.WorkStatusPresent
	case "LATE":
		return domain.WorkStatusLate
	case "ABSENT":
		return domain.WorkStatusAbsent
	default:
		return domain.WorkStatus(strings.ToUpper(strings.TrimSpace(raw)))
	}
}

// looksLikeRecord guards against mistaking an envelope for a bare record.
func looksLikeRecord(node map[string]any) bool {
	for _, key := range []string{"check_in_time", "checkInTime", "clock_in", "clockIn", "employee_id", "employeeId"} {
		if _, ok := node[key]; ok {
			return true
		}
	}
	return false
}

func objectField(node map[string]any, keys ...string) map[string]any {
	for _, key := range keys {
		if obj, ok := node[key].(map[string]any); ok {
			return obj
		}
	}
	return nil
}

func listField(node map[string]any, keys ...string) []map[string]any {
	for _, key := range keys {
		items, ok := node[key].([]any)
		if !ok {
			continue
		}
		out := make([]map[string]any, 0, len(items))
		for _, item := range items {
			if obj, ok := item.(map[string]any); ok {
				out = append(out, obj)
			}
		}
		return out
	}
	return nil
}

func stringField(node map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := node[key].(string); ok {
			return s
		}
	}
	return ""
}

func boolField(node map[string]any, keys ...string) *bool {
	for _, key := range keys {
		if b, ok := node[key].(bool); ok {
			v := b
			return &v
		}
	}
	return nil
}

func intField(node map[string]any, keys ...string) int64 {
	for _, key := range keys {
		switch v := node[key].(type) {
		case float64:
			return int64(v)
		case string:
			if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
				return n
			}
		case json.Number:
			if n, err := v.Int64(); err == nil {
				return n
			}
		}
	}
	return 0
}

// dayField keeps only the calendar-day part of whatever timestamp shape the
// server used for the date column.
func dayField(node map[string]any, keys ...string) string {
	raw := stringField(node, keys...)
	if raw == "" {
		return ""
	}
	if len(raw) >= 10 {
		if _, err := time.Parse("2006-01-02", raw[:10]); err == nil {
			return raw[:10]
		}
	}
	return raw
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"15:04:05",
}

func timeField(node map[string]any, keys ...string) *time.Time {
	for _, key := range keys {
		switch v := node[key].(type) {
		case string:
			trimmed := strings.TrimSpace(v)
			if trimmed == "" {
				continue
			}
			for _, layout := range timeLayouts {
				if t, err := time.Parse(layout, trimmed); err == nil {
					t = t.UTC()
					return &t
				}
			}
		case float64:
			// Epoch milliseconds, the shape one generation used.
			if v > 0 {
				t := time.UnixMilli(int64(v)).UTC()
				return &t
			}
		}
	}
	return nil
}
