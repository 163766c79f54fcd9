// Package dates implements the date-range normalization rules shared by the
// CRUD listing and the analytics operations: optional bounds are filled with
// month-to-date defaults, "YYYY-MM" tokens resolve to first/last day pairs,
// and (year, month) pairs shift by whole months with calendar rollover.
package dates

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	dayLayout   = "2006-01-02"
	monthLayout = "2006-01"
)

var (
	ErrMalformedDate  = errors.New("malformed date, expected YYYY-MM-DD")
	ErrMalformedMonth = errors.New("malformed month, expected YYYY-MM")
)

// Range is an inclusive [Start, End] pair of calendar days. Start > End is
// accepted and simply selects nothing; ordering is not enforced here.
type Range struct {
	Start string
	End   string
}

// Normalize fills missing bounds relative to the current day: an empty end
// becomes today, an empty start becomes the first day of end's month.
func Normalize(start, end string) (Range, error) {
	return NormalizeAt(time.Now(), start, end)
}

// NormalizeAt is Normalize with an explicit "today", so callers and tests can
// pin the clock.
func NormalizeAt(now time.Time, start, end string) (Range, error) {
	if end == "" {
		end = now.Format(dayLayout)
	}
	endDt, err := time.Parse(dayLayout, end)
	if err != nil {
		return Range{}, fmt.Errorf("%w: %q", ErrMalformedDate, end)
	}

	if start == "" {
		start = time.Date(endDt.Year(), endDt.Month(), 1, 0, 0, 0, 0, time.UTC).Format(dayLayout)
	} else if _, err := time.Parse(dayLayout, start); err != nil {
		return Range{}, fmt.Errorf("%w: %q", ErrMalformedDate, start)
	}

	return Range{Start: start, End: end}, nil
}

// MonthBounds resolves a "YYYY-MM" token to the month's first and last day,
// handling 28/29/30/31-day months and leap years.
func MonthBounds(token string) (first, last string, err error) {
	t, err := time.Parse(monthLayout, strings.TrimSpace(token))
	if err != nil {
		return "", "", fmt.Errorf("%w: %q", ErrMalformedMonth, token)
	}
	year, month := t.Year(), t.Month()
	// Day 0 of the next month is the last day of this one.
	lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
	first = fmt.Sprintf("%04d-%02d-01", year, int(month))
	last = lastDay.Format(dayLayout)
	return first, last, nil
}

// ShiftMonth adds delta whole months to a (year, month) pair, rolling the
// year in either direction. Month is 1-12 on both sides.
func ShiftMonth(year, month, delta int) (int, int) {
	total := year*12 + (month - 1) + delta
	y := total / 12
	m := total%12 + 1
	if total < 0 && total%12 != 0 {
		// Go's integer division truncates toward zero; floor it for
		// negative look-back windows.
		y--
		m += 12
	}
	return y, m
}
