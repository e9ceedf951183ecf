package timeutil

import "time"

const (
	ISODateLayout    = "2006-01-02"
	isoInstantLayout = "2006-01-02T15:04:05.000Z"
)

func StartOfDay(value time.Time) time.Time {
	return time.Date(value.Year(), value.Month(), value.Day(), 0, 0, 0, 0, value.Location())
}

// EndOfYesterday returns the last millisecond before midnight of now's day,
// in now's location.
func EndOfYesterday(now time.Time) time.Time {
	return StartOfDay(now).Add(-time.Millisecond)
}

// ISODate formats the calendar date of value in its own location.
func ISODate(value time.Time) string {
	return value.Format(ISODateLayout)
}

// ISOInstant formats value as a UTC instant with millisecond precision.
func ISOInstant(value time.Time) string {
	return value.UTC().Format(isoInstantLayout)
}
