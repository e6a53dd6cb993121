// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package tally is the vote aggregation engine.

Everything here is a pure function of poll data already in memory: no I/O,
no clock reads, no randomness. Identical input always produces identical
output, so results are safe to recompute anywhere.

# Scoring

Each vote contributes per date:

	yes   → 2 points
	maybe → 1 point
	no    → 0 points
	(no response) → 0 points

BestDates returns the dates sharing the maximum score, in the poll's date
order. When the maximum is zero there are no best dates: zero positive
signal is not a win.

# Ballot Upsert

Apply replaces a participant's entire selection set when the same
case-folded name votes again. Partial merges are never performed; dates
left out of the new ballot are dropped.

The engine only produces ValidationError and ErrState. Auth and transport
concerns never reach this package.
*/
package tally
