// Package aggregate turns raw time entries into one summary per calendar day.
//
// Days are keyed by the calendar fields of each entry's start instant in the
// instant's own location, so an entry reported as 23:30-05:00 belongs to that
// date even when the process runs in another timezone.
package aggregate

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"hoursync/timeentry"
)

type DayOrder string

const (
	// OrderEncounter keeps days in the order their first entry was seen.
	OrderEncounter DayOrder = "encounter"
	// OrderChronological sorts days by date.
	OrderChronological DayOrder = "chronological"
)

func ParseDayOrder(value string) (DayOrder, error) {
	switch DayOrder(strings.ToLower(strings.TrimSpace(value))) {
	case "", OrderEncounter:
		return OrderEncounter, nil
	case OrderChronological:
		return OrderChronological, nil
	default:
		return "", fmt.Errorf("unsupported day order %q (valid: encounter, chronological)", value)
	}
}

type DayKey struct {
	Year  int
	Month time.Month
	Day   int
}

func KeyOf(value time.Time) DayKey {
	return DayKey{Year: value.Year(), Month: value.Month(), Day: value.Day()}
}

func (k DayKey) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", k.Year, int(k.Month), k.Day)
}

func (k DayKey) Before(other DayKey) bool {
	if k.Year != other.Year {
		return k.Year < other.Year
	}
	if k.Month != other.Month {
		return k.Month < other.Month
	}
	return k.Day < other.Day
}

type DayGroup struct {
	Key     DayKey
	Entries []timeentry.Entry
}

type DayGroups []DayGroup

type DaySummary struct {
	Date         DayKey
	TotalSeconds int64
	Comment      string
	EntryCount   int
}

// Group partitions entries by day. Groups appear in first-encounter order and
// keep their entries in encounter order.
func Group(entries []timeentry.Entry) DayGroups {
	index := make(map[DayKey]int)
	groups := make(DayGroups, 0, 8)
	for _, entry := range entries {
		key := KeyOf(entry.Start)
		pos, ok := index[key]
		if !ok {
			pos = len(groups)
			index[key] = pos
			groups = append(groups, DayGroup{Key: key})
		}
		groups[pos].Entries = append(groups[pos].Entries, entry)
	}
	return groups
}

// SortGroups orders each day's entries by start. Equal starts keep their
// relative order.
func SortGroups(groups DayGroups) {
	for i := range groups {
		entries := groups[i].Entries
		sort.SliceStable(entries, func(a, b int) bool {
			return entries[a].Start.Before(entries[b].Start)
		})
	}
}

// SortDays reorders groups by date.
func SortDays(groups DayGroups) {
	sort.SliceStable(groups, func(a, b int) bool {
		return groups[a].Key.Before(groups[b].Key)
	})
}

func Summarize(groups DayGroups) []DaySummary {
	out := make([]DaySummary, 0, len(groups))
	for _, group := range groups {
		out = append(out, summarizeDay(group))
	}
	return out
}

func summarizeDay(group DayGroup) DaySummary {
	var total int64
	descriptions := make([]string, 0, len(group.Entries))
	seen := make(map[string]struct{}, len(group.Entries))
	for _, entry := range group.Entries {
		total += entry.Duration
		if _, ok := seen[entry.Description]; ok {
			continue
		}
		seen[entry.Description] = struct{}{}
		descriptions = append(descriptions, entry.Description)
	}

	return DaySummary{
		Date:         group.Key,
		TotalSeconds: total,
		Comment:      strings.Join(descriptions, "\n"),
		EntryCount:   len(group.Entries),
	}
}

// Aggregate groups, sorts and summarizes entries. Input is not modified.
func Aggregate(entries []timeentry.Entry, order DayOrder) []DaySummary {
	groups := GroupAndSort(entries, order)
	return Summarize(groups)
}

// GroupAndSort returns the sorted day groups Aggregate summarizes.
func GroupAndSort(entries []timeentry.Entry, order DayOrder) DayGroups {
	groups := Group(entries)
	SortGroups(groups)
	if order == OrderChronological {
		SortDays(groups)
	}
	return groups
}
