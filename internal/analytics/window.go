package analytics

import (
	"fmt"
	"time"
)

// Windows holds the day-aligned reference boundaries every stage derives its
// buckets from. All values share the location of the instant passed to
// NewWindows.
type Windows struct {
	Now             time.Time
	Today           time.Time
	Yesterday       time.Time
	SevenDaysAgo    time.Time
	FourteenDaysAgo time.Time
	ThirtyDaysAgo   time.Time
}

type DayRange struct {
	Start time.Time
	End   time.Time
}

func (d DayRange) Range() TimeRange {
	return TimeRange{From: d.Start, To: d.End}
}

// Label formats the day as M/D.
func (d DayRange) Label() string {
	return fmt.Sprintf("%d/%d", int(d.Start.Month()), d.Start.Day())
}

// Weekday returns the three-letter weekday abbreviation (Sun..Sat).
func (d DayRange) Weekday() string {
	return d.Start.Format("Mon")
}

func NewWindows(now time.Time) Windows {
	today := startOfDay(now)
	return Windows{
		Now:             now,
		Today:           today,
		Yesterday:       today.AddDate(0, 0, -1),
		SevenDaysAgo:    today.AddDate(0, 0, -7),
		FourteenDaysAgo: today.AddDate(0, 0, -14),
		ThirtyDaysAgo:   today.AddDate(0, 0, -30),
	}
}

// Day returns the bounds of the day offset days before today (0 is today).
func (w Windows) Day(offset int) DayRange {
	start := w.Today.AddDate(0, 0, -offset)
	end := start.AddDate(0, 0, 1).Add(-time.Nanosecond)
	return DayRange{Start: start, End: end}
}

// LastDays returns n consecutive day descriptors, oldest first, ending today.
func (w Windows) LastDays(n int) []DayRange {
	if n <= 0 {
		return []DayRange{}
	}
	days := make([]DayRange, 0, n)
	for offset := n - 1; offset >= 0; offset-- {
		days = append(days, w.Day(offset))
	}
	return days
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
