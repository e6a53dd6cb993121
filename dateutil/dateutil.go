// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package dateutil

import (
	"fmt"
	"time"
)

// ISOLayout is the stored wire format for all calendar dates.
const ISOLayout = "2006-01-02"

// German short month names, indexed by time.Month.
var monthsShort = [13]string{
	"", "Jan.", "Feb.", "März", "Apr.", "Mai", "Juni",
	"Juli", "Aug.", "Sept.", "Okt.", "Nov.", "Dez.",
}

// German short weekday names, indexed by time.Weekday (Sunday first).
var weekdaysShort = [7]string{"So.", "Mo.", "Di.", "Mi.", "Do.", "Fr.", "Sa."}

// Parse parses a strict ISO calendar date (YYYY-MM-DD), timezone-naive.
func Parse(s string) (time.Time, error) {
	t, err := time.Parse(ISOLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid calendar date %q: %w", s, err)
	}
	return t, nil
}

// IsValid reports whether s is a well-formed ISO calendar date.
func IsValid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// Format renders an ISO date as a short German display string,
// e.g. "2. März". Malformed input comes back unchanged.
func Format(s string) string {
	t, err := Parse(s)
	if err != nil {
		return s
	}
	return fmt.Sprintf("%d. %s", t.Day(), monthsShort[t.Month()])
}

// FormatLong renders an ISO date with its weekday,
// e.g. "Mo., 2. März". Malformed input comes back unchanged.
func FormatLong(s string) string {
	t, err := Parse(s)
	if err != nil {
		return s
	}
	return fmt.Sprintf("%s, %d. %s", weekdaysShort[t.Weekday()], t.Day(), monthsShort[t.Month()])
}

// Weekday renders just the short weekday name, e.g. "Mo.".
// Malformed input comes back unchanged.
func Weekday(s string) string {
	t, err := Parse(s)
	if err != nil {
		return s
	}
	return weekdaysShort[t.Weekday()]
}
