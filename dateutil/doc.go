// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package dateutil parses and formats the ISO calendar dates (YYYY-MM-DD)
used throughout MeetVote.

Stored dates are always the raw ISO string; these helpers only produce
German display strings for the voter-facing views:

	Format("2026-03-02")     → "2. März"
	FormatLong("2026-03-02") → "Mo., 2. März"
	Weekday("2026-03-02")    → "Mo."

All functions are pure and tolerate malformed input by returning it
unchanged.
*/
package dateutil
