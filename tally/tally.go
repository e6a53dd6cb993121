// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"sort"
	"strings"
	"time"

	"github.com/meetvote/meetvote/dateutil"
	"github.com/meetvote/meetvote/models"
)

// Score weights
const (
	yesPoints   = 2
	maybePoints = 1
)

// Result holds the derived values for one poll: a score per candidate
// date and the set of best dates, in the poll's date order.
type Result struct {
	Scores    map[string]int `json:"scores"`
	BestDates []string       `json:"bestDates"`
}

// Scores computes the per-date score across all votes. Yes counts 2,
// maybe counts 1, no and missing count 0. Every candidate date gets an
// entry, even at zero.
func Scores(dates []string, votes []models.Vote) map[string]int {
	scores := make(map[string]int, len(dates))
	for _, d := range dates {
		scores[d] = 0
	}
	for _, v := range votes {
		for date, value := range v.Selections {
			if _, ok := scores[date]; !ok {
				continue
			}
			switch value {
			case models.VoteYes:
				scores[date] += yesPoints
			case models.VoteMaybe:
				scores[date] += maybePoints
			}
		}
	}
	return scores
}

// BestDates returns the candidate dates sharing the maximum score, in
// the poll's date order. A maximum of zero yields no best dates: a tie
// at zero means nobody can make it, not that every date won.
func BestDates(dates []string, votes []models.Vote) []string {
	scores := Scores(dates, votes)

	max := 0
	for _, d := range dates {
		if scores[d] > max {
			max = scores[d]
		}
	}
	if max == 0 {
		return []string{}
	}

	best := []string{}
	for _, d := range dates {
		if scores[d] == max {
			best = append(best, d)
		}
	}
	return best
}

// Tally computes the full result for a poll.
func Tally(p *models.Poll) Result {
	return Result{
		Scores:    Scores(p.Dates, p.Votes),
		BestDates: BestDates(p.Dates, p.Votes),
	}
}

// ValidateBallot checks a vote submission against a poll's candidate
// dates. It returns a ValidationError describing the first problem
// found, or nil. The poll's lifecycle state is not checked here.
func ValidateBallot(dates []string, name string, selections map[string]string) error {
	if strings.TrimSpace(name) == "" {
		return models.Validationf("name is required")
	}
	if len(selections) == 0 {
		return models.Validationf("selections must not be empty")
	}

	known := make(map[string]bool, len(dates))
	for _, d := range dates {
		known[d] = true
	}
	for date, value := range selections {
		if !known[date] {
			return models.Validationf("invalid date %q", date)
		}
		if !models.ValidVoteValue(value) {
			return models.Validationf("invalid vote value %q", value)
		}
	}
	return nil
}

// NormalizeSelections converts the wire shape (a list of date/value
// pairs) into the selection map, trimming whitespace and lower-casing
// values. Later entries for the same date win.
func NormalizeSelections(selections []models.VoteSelection) map[string]string {
	out := make(map[string]string, len(selections))
	for _, s := range selections {
		date := strings.TrimSpace(s.Date)
		value := strings.ToLower(strings.TrimSpace(s.Value))
		if date == "" {
			continue
		}
		out[date] = value
	}
	return out
}

// Apply upserts a ballot into the poll in memory: it validates the
// submission, rejects it when the poll is closed, and then replaces the
// whole selection set of any existing vote under the same folded name,
// or appends a new vote. The poll is modified in place and also
// returned. Persistence is the caller's job.
func Apply(p *models.Poll, name string, selections map[string]string, now time.Time) (*models.Poll, error) {
	if p.IsClosed {
		return nil, models.ErrState
	}
	if err := ValidateBallot(p.Dates, name, selections); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if existing := p.VoteFor(name); existing != nil {
		existing.Name = name
		existing.Selections = selections
		existing.UpdatedAt = now
		return p, nil
	}

	p.Votes = append(p.Votes, models.Vote{
		Name:       name,
		Selections: selections,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	return p, nil
}

// ValidatePollInput normalizes and validates poll creation input. The
// returned dates are trimmed, de-duplicated, sorted, and verified to be
// well-formed ISO calendar dates with a count between MinDates and
// MaxDates. The date set is fixed for the poll's lifetime.
func ValidatePollInput(title string, dates []string) (string, []string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", nil, models.Validationf("title is required")
	}

	seen := make(map[string]bool, len(dates))
	normalized := make([]string, 0, len(dates))
	for _, d := range dates {
		d = strings.TrimSpace(d)
		if d == "" || seen[d] {
			continue
		}
		if !dateutil.IsValid(d) {
			return "", nil, models.Validationf("invalid date %q, want YYYY-MM-DD", d)
		}
		seen[d] = true
		normalized = append(normalized, d)
	}
	// ISO dates sort chronologically as strings.
	sort.Strings(normalized)

	if len(normalized) < models.MinDates || len(normalized) > models.MaxDates {
		return "", nil, models.Validationf("between %d and %d unique dates are required, got %d",
			models.MinDates, models.MaxDates, len(normalized))
	}
	return title, normalized, nil
}
