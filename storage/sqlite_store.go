package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"hoursync/timeentry"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps a local snapshot of source time entries. It satisfies
// toggl.Client so a snapshot can stand in for the remote tracker.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &SQLiteStore{db: db, now: time.Now}
	if err := store.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ensureSchema() error {
	// start_datetime keeps the reported offset; start_unix_ms is used for
	// range filters and ordering.
	const schema = `
CREATE TABLE IF NOT EXISTS time_entries (
	id INTEGER PRIMARY KEY,
	project_id INTEGER NOT NULL,
	start_datetime TEXT NOT NULL,
	start_unix_ms INTEGER NOT NULL,
	duration INTEGER NOT NULL,
	description TEXT NOT NULL,
	fetched_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_time_entries_start ON time_entries(start_unix_ms, id);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// SaveEntries upserts entries by ID and returns the number of rows written.
func (s *SQLiteStore) SaveEntries(entries []timeentry.Entry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}

	const upsertStmt = `
INSERT INTO time_entries (
	id,
	project_id,
	start_datetime,
	start_unix_ms,
	duration,
	description,
	fetched_at
) VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	project_id = excluded.project_id,
	start_datetime = excluded.start_datetime,
	start_unix_ms = excluded.start_unix_ms,
	duration = excluded.duration,
	description = excluded.description,
	fetched_at = excluded.fetched_at;`

	stmt, err := tx.Prepare(upsertStmt)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("prepare upsert statement: %w", err)
	}
	defer stmt.Close()

	fetchedAt := s.now().UTC().Format(time.RFC3339)
	written := 0
	for _, entry := range entries {
		if entry.ID <= 0 {
			_ = tx.Rollback()
			return written, fmt.Errorf("time entry id must be > 0, got %d", entry.ID)
		}
		res, err := stmt.Exec(
			entry.ID,
			entry.ProjectID,
			entry.Start.Format(time.RFC3339Nano),
			entry.Start.UnixMilli(),
			entry.Duration,
			entry.Description,
			fetchedAt,
		)
		if err != nil {
			_ = tx.Rollback()
			return written, fmt.Errorf("upsert time entry %d: %w", entry.ID, err)
		}

		rows, err := res.RowsAffected()
		if err == nil && rows > 0 {
			written++
		}
	}

	if err := tx.Commit(); err != nil {
		return written, fmt.Errorf("commit transaction: %w", err)
	}

	return written, nil
}

// TimeEntries lists stored entries whose start lies in [from, to], ordered by
// start then ID.
func (s *SQLiteStore) TimeEntries(ctx context.Context, from, to time.Time) ([]timeentry.Entry, error) {
	const query = `
SELECT
	id,
	project_id,
	start_datetime,
	duration,
	description
FROM time_entries
WHERE start_unix_ms BETWEEN ? AND ?
ORDER BY start_unix_ms, id;
`

	rows, err := s.db.QueryContext(ctx, query, from.UnixMilli(), to.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("query time entries: %w", err)
	}
	defer rows.Close()

	entries := make([]timeentry.Entry, 0, 64)
	for rows.Next() {
		var (
			entry    timeentry.Entry
			startRaw string
		)
		if err := rows.Scan(
			&entry.ID,
			&entry.ProjectID,
			&startRaw,
			&entry.Duration,
			&entry.Description,
		); err != nil {
			return nil, fmt.Errorf("scan time entry: %w", err)
		}

		entry.Start, err = time.Parse(time.RFC3339Nano, startRaw)
		if err != nil {
			return nil, fmt.Errorf("parse start datetime %q: %w", startRaw, err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate time entries: %w", err)
	}

	return entries, nil
}

func (s *SQLiteStore) CountEntries() (int64, error) {
	var count int64
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM time_entries;`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count time entries: %w", err)
	}
	return count, nil
}

func (s *SQLiteStore) DeleteAllEntries() (int64, error) {
	res, err := s.db.Exec(`DELETE FROM time_entries;`)
	if err != nil {
		return 0, fmt.Errorf("delete time entries: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("read deleted row count: %w", err)
	}
	return rows, nil
}
