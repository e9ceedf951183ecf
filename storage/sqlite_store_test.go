package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"hoursync/timeentry"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "hoursync_test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func mustParseRFC3339(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse time %q: %v", value, err)
	}
	return parsed
}

func TestSQLiteStore_SnapshotRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	entries := []timeentry.Entry{
		{ID: 2, ProjectID: 5, Start: mustParseRFC3339(t, "2024-01-01T10:00:00+01:00"), Duration: 900, Description: "B"},
		{ID: 1, ProjectID: 5, Start: mustParseRFC3339(t, "2024-01-01T09:00:00+01:00"), Duration: 1800, Description: "A"},
		{ID: 3, ProjectID: 9, Start: mustParseRFC3339(t, "2024-01-02T23:30:00-05:00"), Duration: -1, Description: "running"},
	}

	written, err := store.SaveEntries(entries)
	if err != nil {
		t.Fatalf("save entries: %v", err)
	}
	if written != 3 {
		t.Fatalf("expected 3 written rows, got %d", written)
	}

	listed, err := store.TimeEntries(context.Background(),
		mustParseRFC3339(t, "2024-01-01T00:00:00Z"),
		mustParseRFC3339(t, "2024-01-07T00:00:00Z"),
	)
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(listed) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(listed))
	}
	if listed[0].ID != 1 || listed[1].ID != 2 || listed[2].ID != 3 {
		t.Fatalf("expected start order [1 2 3], got [%d %d %d]", listed[0].ID, listed[1].ID, listed[2].ID)
	}

	last := listed[2]
	if last.ProjectID != 9 || last.Duration != -1 || last.Description != "running" {
		t.Fatalf("unexpected round-tripped entry: %+v", last)
	}
	if _, offset := last.Start.Zone(); offset != -5*60*60 {
		t.Fatalf("expected -05:00 offset to survive, got %d", offset)
	}
	if !last.Start.Equal(entries[2].Start) {
		t.Fatalf("expected start %s, got %s", entries[2].Start, last.Start)
	}
}

func TestSQLiteStore_SaveEntriesUpsertsByID(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	start := mustParseRFC3339(t, "2024-01-01T09:00:00Z")

	if _, err := store.SaveEntries([]timeentry.Entry{{ID: 1, ProjectID: 5, Start: start, Duration: 60, Description: "old"}}); err != nil {
		t.Fatalf("save entries: %v", err)
	}
	if _, err := store.SaveEntries([]timeentry.Entry{{ID: 1, ProjectID: 5, Start: start, Duration: 120, Description: "new"}}); err != nil {
		t.Fatalf("save entries again: %v", err)
	}

	count, err := store.CountEntries()
	if err != nil {
		t.Fatalf("count entries: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 row after upsert, got %d", count)
	}

	listed, err := store.TimeEntries(context.Background(), start, start)
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(listed) != 1 || listed[0].Duration != 120 || listed[0].Description != "new" {
		t.Fatalf("expected updated entry, got %+v", listed)
	}
}

func TestSQLiteStore_TimeEntriesFiltersByInstant(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	_, err := store.SaveEntries([]timeentry.Entry{
		{ID: 1, ProjectID: 5, Start: mustParseRFC3339(t, "2023-12-31T23:59:59Z"), Duration: 60, Description: "before"},
		// 2024-01-01T00:30:00Z expressed with a +02:00 offset.
		{ID: 2, ProjectID: 5, Start: mustParseRFC3339(t, "2024-01-01T02:30:00+02:00"), Duration: 60, Description: "inside"},
		{ID: 3, ProjectID: 5, Start: mustParseRFC3339(t, "2024-01-02T00:00:01Z"), Duration: 60, Description: "after"},
	})
	if err != nil {
		t.Fatalf("save entries: %v", err)
	}

	listed, err := store.TimeEntries(context.Background(),
		mustParseRFC3339(t, "2024-01-01T00:00:00Z"),
		mustParseRFC3339(t, "2024-01-02T00:00:00Z"),
	)
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != 2 {
		t.Fatalf("expected only entry 2, got %+v", listed)
	}
}

func TestSQLiteStore_SaveEntriesRejectsMissingID(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	if _, err := store.SaveEntries([]timeentry.Entry{{ProjectID: 5, Start: time.Now()}}); err == nil {
		t.Fatalf("expected error for entry without id")
	}

	count, err := store.CountEntries()
	if err != nil {
		t.Fatalf("count entries: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected rollback to leave no rows, got %d", count)
	}
}

func TestSQLiteStore_DeleteAllEntries(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	start := mustParseRFC3339(t, "2024-01-01T09:00:00Z")
	if _, err := store.SaveEntries([]timeentry.Entry{
		{ID: 1, ProjectID: 5, Start: start, Duration: 60},
		{ID: 2, ProjectID: 5, Start: start, Duration: 60},
	}); err != nil {
		t.Fatalf("save entries: %v", err)
	}

	deleted, err := store.DeleteAllEntries()
	if err != nil {
		t.Fatalf("delete all: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("expected 2 deleted rows, got %d", deleted)
	}
}
