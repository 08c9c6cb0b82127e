// utils/dates.go
package utils

import (
	"fmt"
	"time"
)

const (
	FilterThisMonth     = "THIS_MONTH"
	FilterPreviousMonth = "PREVIOUS_MONTH"
	FilterLast7Days     = "LAST_7_DAYS"
	FilterLast3Months   = "LAST_3_MONTHS"
	FilterLast6Months   = "LAST_6_MONTHS"
	FilterThisYear      = "THIS_YEAR"
	FilterCustomMonth   = "CUSTOM_MONTH"
)

func BeginningOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func EndOfDay(t time.Time) time.Time {
	return BeginningOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

func BeginningOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// DateRange resolves a totals filter to an inclusive [start, end] window. month is
// only read for CUSTOM_MONTH and has the form YYYY-MM. Unknown filters behave like
// THIS_MONTH.
func DateRange(filter, month string, now time.Time) (time.Time, time.Time, error) {
	monthStart := BeginningOfMonth(now)

	switch filter {
	case FilterPreviousMonth:
		start := monthStart.AddDate(0, -1, 0)
		return start, monthStart.Add(-time.Nanosecond), nil
	case FilterLast7Days:
		return BeginningOfDay(now.AddDate(0, 0, -6)), EndOfDay(now), nil
	case FilterLast3Months:
		return monthStart.AddDate(0, -2, 0), EndOfDay(now), nil
	case FilterLast6Months:
		return monthStart.AddDate(0, -5, 0), EndOfDay(now), nil
	case FilterThisYear:
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location()), EndOfDay(now), nil
	case FilterCustomMonth:
		m, err := time.ParseInLocation("2006-01", month, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("month must be YYYY-MM: %w", err)
		}
		return m, m.AddDate(0, 1, 0).Add(-time.Nanosecond), nil
	default:
		return monthStart, EndOfDay(now), nil
	}
}
