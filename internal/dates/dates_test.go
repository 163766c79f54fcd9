package dates

import (
	"errors"
	"testing"
	"time"
)

func TestNormalizeAt(t *testing.T) {
	now := time.Date(2025, 6, 17, 14, 30, 0, 0, time.UTC)

	cases := []struct {
		name       string
		start, end string
		want       Range
		wantErr    bool
	}{
		{"both given", "2025-01-01", "2025-03-31", Range{"2025-01-01", "2025-03-31"}, false},
		{"end missing", "2025-06-01", "", Range{"2025-06-01", "2025-06-17"}, false},
		{"start missing", "", "2025-02-10", Range{"2025-02-01", "2025-02-10"}, false},
		{"both missing month-to-date", "", "", Range{"2025-06-01", "2025-06-17"}, false},
		{"start after end accepted", "2025-09-01", "2025-01-01", Range{"2025-09-01", "2025-01-01"}, false},
		{"bad start", "01-06-2025", "2025-06-17", Range{}, true},
		{"bad end", "", "2025-6-17", Range{}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeAt(now, tc.start, tc.end)
			if tc.wantErr {
				if !errors.Is(err, ErrMalformedDate) {
					t.Fatalf("expected ErrMalformedDate, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestMonthBounds(t *testing.T) {
	cases := []struct {
		token       string
		first, last string
		wantErr     bool
	}{
		{"2024-02", "2024-02-01", "2024-02-29", false}, // leap year
		{"2023-02", "2023-02-01", "2023-02-28", false},
		{"2025-12", "2025-12-01", "2025-12-31", false},
		{"2025-04", "2025-04-01", "2025-04-30", false},
		{"2000-02", "2000-02-01", "2000-02-29", false}, // divisible-by-400 leap
		{"2025-13", "", "", true},
		{"2025", "", "", true},
		{"garbage", "", "", true},
	}
	for _, tc := range cases {
		first, last, err := MonthBounds(tc.token)
		if tc.wantErr {
			if !errors.Is(err, ErrMalformedMonth) {
				t.Fatalf("%q: expected ErrMalformedMonth, got %v", tc.token, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: unexpected error %v", tc.token, err)
		}
		if first != tc.first || last != tc.last {
			t.Fatalf("%q: got (%s, %s), want (%s, %s)", tc.token, first, last, tc.first, tc.last)
		}
	}
}

func TestShiftMonth(t *testing.T) {
	cases := []struct {
		y, m, delta int
		wantY       int
		wantM       int
	}{
		{2025, 6, 0, 2025, 6},
		{2025, 6, 3, 2025, 9},
		{2025, 11, 2, 2026, 1},
		{2025, 1, -1, 2024, 12},
		{2025, 3, -6, 2024, 9},
		{2025, 6, 12, 2026, 6},
		{2025, 6, -18, 2023, 12},
	}
	for _, tc := range cases {
		y, m := ShiftMonth(tc.y, tc.m, tc.delta)
		if y != tc.wantY || m != tc.wantM {
			t.Fatalf("ShiftMonth(%d, %d, %d) = (%d, %d), want (%d, %d)",
				tc.y, tc.m, tc.delta, y, m, tc.wantY, tc.wantM)
		}
	}
}
