package output

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"hoursync/internal/timeutil"
	"hoursync/timeentry"
)

// Writer exports raw time entries, one row per entry.
type Writer interface {
	Write(path string, entries []timeentry.Entry) error
}

func WriterForFormat(format string) (Writer, error) {
	switch normalizeFormat(format) {
	case "csv":
		return &CSVWriter{}, nil
	case "excel", "xlsx":
		return &ExcelWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

func normalizeFormat(value string) string {
	return strings.TrimSpace(strings.ToLower(value))
}

var entryHeaders = []string{"ID", "ProjectID", "Start", "Date", "DurationSeconds", "Duration", "Description"}

func entryValues(entry timeentry.Entry) []string {
	return []string{
		strconv.FormatInt(entry.ID, 10),
		strconv.FormatInt(entry.ProjectID, 10),
		entry.Start.Format(time.RFC3339),
		timeutil.ISODate(entry.Start),
		strconv.FormatInt(entry.Duration, 10),
		FormatDuration(entry.Duration),
		entry.Description,
	}
}
