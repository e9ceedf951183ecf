package timeentry

import "time"

// Entry is a time entry as reported by the source tracker. Duration is in
// seconds; a negative value marks a timer that is still running.
type Entry struct {
	ID          int64
	ProjectID   int64
	Start       time.Time
	Duration    int64
	Description string
}

func (e Entry) Running() bool {
	return e.Duration < 0
}
