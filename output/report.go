package output

import (
	"fmt"
	"io"
	"text/tabwriter"

	"hoursync/aggregate"
)

const (
	secondsPerHour   = 60 * 60
	secondsPerMinute = 60
)

type ReportRow struct {
	Date         string `yaml:"date"`
	Duration     string `yaml:"duration"`
	TotalSeconds int64  `yaml:"total_seconds"`
	EntryCount   int    `yaml:"entries"`
	Comment      string `yaml:"comment"`
}

var reportHeaders = []string{"Date", "Duration", "TotalSeconds", "Entries", "Comment"}

// FormatDuration renders seconds as "{H}h {M}min". Hours are floored and the
// remaining minutes rounded up, so 3599 seconds is "0h 60min".
func FormatDuration(seconds int64) string {
	hours := floorDiv(seconds, secondsPerHour)
	remainder := seconds - hours*secondsPerHour
	minutes := (remainder + secondsPerMinute - 1) / secondsPerMinute
	return fmt.Sprintf("%dh %dmin", hours, minutes)
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func BuildReport(summaries []aggregate.DaySummary) []ReportRow {
	rows := make([]ReportRow, 0, len(summaries))
	for _, summary := range summaries {
		rows = append(rows, ReportRow{
			Date:         summary.Date.String(),
			Duration:     FormatDuration(summary.TotalSeconds),
			TotalSeconds: summary.TotalSeconds,
			EntryCount:   summary.EntryCount,
			Comment:      summary.Comment,
		})
	}
	return rows
}

func (r ReportRow) values() []string {
	return []string{
		r.Date,
		r.Duration,
		fmt.Sprintf("%d", r.TotalSeconds),
		fmt.Sprintf("%d", r.EntryCount),
		r.Comment,
	}
}

// WriteReportText prints one "date  duration" line per day.
func WriteReportText(w io.Writer, rows []ReportRow) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, row := range rows {
		if _, err := fmt.Fprintf(tw, "%s\t%s\n", row.Date, row.Duration); err != nil {
			return fmt.Errorf("write report line: %w", err)
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flush report: %w", err)
	}
	return nil
}

func WriteReport(path, format string, rows []ReportRow) error {
	switch normalizeFormat(format) {
	case "csv":
		return writeReportCSV(path, rows)
	case "excel", "xlsx":
		return writeReportExcel(path, rows)
	case "yaml", "yml":
		return writeReportYAML(path, rows)
	default:
		return fmt.Errorf("unsupported output format for reports: %s", format)
	}
}
