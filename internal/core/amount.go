// Package core holds the transaction domain model and the amount parsing
// and rounding helpers shared by the storage, analytics and import layers.
package core

import (
	"math"
	"strconv"
	"strings"
)

// Round2 rounds a monetary value to two decimal places, half away from zero.
// Aggregations accumulate unrounded and round once at the response boundary.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ParseAmount converts a decimal string to a float64 amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and a
// leading sign; ledger amounts are signed. Returns ErrInvalidAmount for
// anything that is not a plain decimal number.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34, nil
//	ParseAmount("12,34")  -> 12.34, nil
//	ParseAmount("-5")     -> -5, nil
//	ParseAmount("1.2.3")  -> 0, ErrInvalidAmount
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.Count(s, ".") > 1 {
		return 0, ErrInvalidAmount
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrInvalidAmount
	}
	return v, nil
}
