package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/KabiruH/attendance-agent/internal/domain"
	"github.com/KabiruH/attendance-agent/internal/ports"
)

// SQLiteJournal persists the device-local attempt trail. The file lives in
// the agent's data directory; it is diagnostic state, safe to delete.
type SQLiteJournal struct {
	db *sql.DB
}

func Open(dbPath string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	j := &SQLiteJournal{db: db}
	if err := j.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return j, nil
}

func (j *SQLiteJournal) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS action_attempts (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  kind TEXT NOT NULL,
  class_id INTEGER NOT NULL DEFAULT 0,
  state TEXT NOT NULL,
  outcome TEXT NOT NULL,
  failure_reason TEXT NOT NULL DEFAULT '',
  distance_meters REAL NOT NULL DEFAULT 0,
  recorded_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_action_attempts_recorded_at ON action_attempts(recorded_at);
`
	if _, err := j.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create action_attempts table: %w", err)
	}
	return nil
}

func (j *SQLiteJournal) Record(ctx context.Context, entry ports.JournalEntry) error {
	recordedAt := entry.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now().UTC()
	}
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO action_attempts (kind, class_id, state, outcome, failure_reason, distance_meters, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(entry.Kind), entry.ClassID, entry.State, entry.Outcome,
		entry.FailureReason, entry.DistanceMeters, recordedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

func (j *SQLiteJournal) Recent(ctx context.Context, limit int) ([]ports.JournalEntry, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, kind, class_id, state, outcome, failure_reason, distance_meters, recorded_at
		 FROM action_attempts ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries := make([]ports.JournalEntry, 0, limit)
	for rows.Next() {
		var entry ports.JournalEntry
		var kind, recordedAt string
		if err := rows.Scan(&entry.ID, &kind, &entry.ClassID, &entry.State,
			&entry.Outcome, &entry.FailureReason, &entry.DistanceMeters, &recordedAt); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		entry.Kind = domain.ActionKind(kind)
		if t, parseErr := time.Parse(time.RFC3339Nano, recordedAt); parseErr == nil {
			entry.RecordedAt = t
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}

var _ ports.ActionJournal = (*SQLiteJournal)(nil)
