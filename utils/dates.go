package utils

import (
	"fmt"
	"strings"
	"time"
)

const (
	DateLayout      = "2006-01-02"
	YearMonthLayout = "2006-01"
)

// ParseDate accepts YYYY-MM-DD or RFC3339 and returns midnight UTC of that day.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(DateLayout, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", raw)
	}
	return TruncateDay(t), nil
}

// ParseOptionalDate returns nil for an empty string.
func ParseOptionalDate(raw string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	t, err := ParseDate(raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// TruncateDay drops the clock part, keeping the calendar day of t in UTC.
func TruncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseYearMonth parses "YYYY-MM" into the first day of that month (UTC).
func ParseYearMonth(raw string) (time.Time, error) {
	t, err := time.Parse(YearMonthLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid year-month %q", raw)
	}
	return t.UTC(), nil
}

func YearMonthOf(t time.Time) string {
	return t.UTC().Format(YearMonthLayout)
}

// MonthRange returns [first day of month, first day of next month).
func MonthRange(monthStart time.Time) (time.Time, time.Time) {
	start := time.Date(monthStart.Year(), monthStart.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// DueDateIn places paymentDay inside the month, clamping to the last day
// (payment day 31 in February becomes the 28th or 29th).
func DueDateIn(monthStart time.Time, paymentDay int) time.Time {
	start, next := MonthRange(monthStart)
	last := next.AddDate(0, 0, -1).Day()
	if paymentDay < 1 {
		paymentDay = 1
	}
	if paymentDay > last {
		paymentDay = last
	}
	return start.AddDate(0, 0, paymentDay-1)
}
