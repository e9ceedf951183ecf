package toggl

import (
	"context"
	"time"

	"hoursync/timeentry"
)

// FetchProjectEntries loads the range once and keeps only finished entries of
// projectID.
func FetchProjectEntries(ctx context.Context, client Client, from, to time.Time, projectID int64) ([]timeentry.Entry, error) {
	entries, err := client.TimeEntries(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return FilterEntries(entries, projectID), nil
}

// FilterEntries drops entries of other projects and running entries. The
// relative order of the remaining entries is kept.
func FilterEntries(entries []timeentry.Entry, projectID int64) []timeentry.Entry {
	out := make([]timeentry.Entry, 0, len(entries))
	for _, entry := range entries {
		if entry.ProjectID != projectID {
			continue
		}
		if entry.Running() {
			continue
		}
		out = append(out, entry)
	}
	return out
}
