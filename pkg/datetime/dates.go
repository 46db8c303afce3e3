// Package datetime provides calendar-month date utilities for due dates.
package datetime

import (
	"time"
)

// MustParseTime parses a date string using the given layout and panics on
// error. This is intended for use in tests where the date string is known to
// be valid.
func MustParseTime(layout, dateStr string) time.Time {
	t, err := time.Parse(layout, dateStr)
	if err != nil {
		panic(err)
	}
	return t
}

// DaysIn returns the number of days in date's calendar month.
func DaysIn(date time.Time) int {
	first := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location())
	return first.AddDate(0, 1, -1).Day()
}

// DueDate returns start advanced by the given number of calendar months with
// its day of month held at day, clamped to the length of the target month
// (e.g. a day of 31 lands on February 28). A non-positive day falls back to
// start's day of month.
func DueDate(start time.Time, months int, day int) time.Time {
	if day <= 0 {
		day = start.Day()
	}
	year, month, _ := start.Date()
	first := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, start.Location())
	if last := DaysIn(first); day > last {
		day = last
	}
	return first.AddDate(0, 0, day-1)
}

// SameMonth reports whether a and b fall in the same calendar year and month.
func SameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// BeforeMonth reports whether a falls in a calendar month strictly earlier
// than b's.
func BeforeMonth(a, b time.Time) bool {
	if a.Year() != b.Year() {
		return a.Year() < b.Year()
	}
	return a.Month() < b.Month()
}
