// Package dateutil provides week and month identity helpers.
//
// Weeks follow ISO-8601: they start on Monday, and week 1 is the week
// containing the year's first Thursday.
package dateutil

import (
	"fmt"
	"time"
)

// WeekIdentifier returns the ISO week key for t, e.g. "2026-W09".
func WeekIdentifier(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// MonthIdentifier returns the calendar month key for t, e.g. "2026-08".
func MonthIdentifier(t time.Time) string {
	return t.Format("2006-01")
}

// startOfWeek returns the Monday 00:00:00 of the week containing t,
// in t's location. Sunday counts as day 7 of the preceding Monday's week.
func startOfWeek(t time.Time) time.Time {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	dow := int(midnight.Weekday())
	if dow == 0 {
		dow = 7
	}
	return midnight.AddDate(0, 0, -(dow - 1))
}

// IsSameWeek reports whether a and b fall in the same Monday-start week.
func IsSameWeek(a, b time.Time) bool {
	sa, sb := startOfWeek(a), startOfWeek(b)
	return sa.Year() == sb.Year() && sa.Month() == sb.Month() && sa.Day() == sb.Day()
}

// WeekRange returns the Monday 00:00:00.000 and Sunday 23:59:59.999
// bracketing t.
func WeekRange(t time.Time) (start, end time.Time) {
	start = startOfWeek(t)
	end = start.AddDate(0, 0, 7).Add(-time.Millisecond)
	return start, end
}

// SameMonth reports whether a and b fall in the same calendar month.
func SameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}
