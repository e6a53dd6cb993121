// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/meetvote/meetvote/auth"
	"github.com/meetvote/meetvote/models"
	"github.com/meetvote/meetvote/tally"
)

// DefaultSessionTTL is how long a login credential stays valid.
const DefaultSessionTTL = 24 * time.Hour

// SQLStore implements Store on a sql.DB (sqlite or postgres).
//
// Writes to a single poll are serialized through a per-poll mutex so
// that two simultaneous ballots for different names both persist and a
// close never interleaves with a half-written ballot. Same-name races
// are last-write-wins.
type SQLStore struct {
	db         *sql.DB
	sessionTTL time.Duration

	mu        sync.Mutex
	pollLocks map[int64]*sync.Mutex
}

// NewSQL creates a SQLStore with the default session TTL.
func NewSQL(conn *sql.DB) *SQLStore {
	return NewSQLWithTTL(conn, DefaultSessionTTL)
}

// NewSQLWithTTL creates a SQLStore with an explicit session TTL.
func NewSQLWithTTL(conn *sql.DB, ttl time.Duration) *SQLStore {
	return &SQLStore{
		db:         conn,
		sessionTTL: ttl,
		pollLocks:  make(map[int64]*sync.Mutex),
	}
}

// lockPoll returns the write lock for one poll record.
func (s *SQLStore) lockPoll(id int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.pollLocks[id]
	if !ok {
		l = &sync.Mutex{}
		s.pollLocks[id] = l
	}
	return l
}

func (s *SQLStore) forgetPoll(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pollLocks, id)
}

// isUniqueViolation matches constraint errors from both backends.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}

// Identity and sessions

func (s *SQLStore) CreateUser(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	password = strings.TrimSpace(password)
	if username == "" || password == "" {
		return nil, models.Validationf("username and password are required")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:        uuid.NewString(),
		Username:  username,
		CreatedAt: time.Now().UTC(),
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO users (id, username, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`, user.ID, user.Username, hash, user.CreatedAt)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("username %q: %w", username, models.ErrExists)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	return user, nil
}

func (s *SQLStore) Login(ctx context.Context, username, password string) (*models.Session, *models.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))

	var user models.User
	var hash string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, created_at
		FROM users WHERE username = $1
	`, username).Scan(&user.ID, &user.Username, &hash, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil, models.ErrAuth
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query user: %w", err)
	}

	if !auth.CheckPassword(hash, strings.TrimSpace(password)) {
		return nil, nil, models.ErrAuth
	}

	token, err := auth.GenerateSessionToken()
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	session := &models.Session{
		Token:     token,
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (token, user_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
	`, session.Token, session.UserID, session.CreatedAt, session.ExpiresAt)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to insert session: %w", err)
	}

	return session, &user, nil
}

func (s *SQLStore) Identity(ctx context.Context, credential string) (*models.User, error) {
	if credential == "" {
		return nil, models.ErrAuth
	}

	var user models.User
	var expiresAt time.Time
	err := s.db.QueryRowContext(ctx, `
		SELECT u.id, u.username, u.created_at, s.expires_at
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.token = $1
	`, credential).Scan(&user.ID, &user.Username, &user.CreatedAt, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, models.ErrAuth
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	if auth.SessionExpired(expiresAt, time.Now().UTC()) {
		// Expired sessions are dead; drop the row so the token cannot
		// come back to life through clock weirdness.
		s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = $1`, credential)
		return nil, models.ErrAuth
	}

	return &user, nil
}

// Polls

func (s *SQLStore) CreatePoll(ctx context.Context, credential, title, description string, dates []string) (*models.PollSummary, error) {
	owner, err := s.Identity(ctx, credential)
	if err != nil {
		return nil, err
	}

	title, dates, err = tally.ValidatePollInput(title, dates)
	if err != nil {
		return nil, err
	}
	description = strings.TrimSpace(description)

	token, err := auth.GeneratePublicToken()
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	var pollID int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO polls (owner_id, token, title, description, is_closed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, owner.ID, token, title, nullString(description), false, now).Scan(&pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert poll: %w", err)
	}

	for _, d := range dates {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO poll_dates (poll_id, date) VALUES ($1, $2)
		`, pollID, d); err != nil {
			return nil, fmt.Errorf("failed to insert poll date: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit poll: %w", err)
	}

	return &models.PollSummary{
		ID:          pollID,
		Token:       token,
		Title:       title,
		Description: description,
		Dates:       dates,
		VoteCount:   0,
		IsClosed:    false,
		CreatedAt:   now,
		CreatedAgo:  humanize.Time(now),
	}, nil
}

func (s *SQLStore) PollByToken(ctx context.Context, token string) (*models.Poll, error) {
	poll, err := s.pollByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	// Closing a poll removes it from public reachability.
	if poll.IsClosed {
		return nil, models.ErrNotFound
	}
	return poll, nil
}

func (s *SQLStore) PollByID(ctx context.Context, credential string, id int64) (*models.Poll, error) {
	owner, err := s.Identity(ctx, credential)
	if err != nil {
		return nil, err
	}

	poll, err := s.loadPoll(ctx, `WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	if poll.OwnerID != owner.ID {
		return nil, models.ErrAuth
	}
	return poll, nil
}

func (s *SQLStore) ListMine(ctx context.Context, credential string) ([]models.PollSummary, error) {
	owner, err := s.Identity(ctx, credential)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.token, p.title, p.description, p.is_closed, p.closed_at, p.created_at,
		       (SELECT COUNT(*) FROM votes v WHERE v.poll_id = p.id) AS vote_count
		FROM polls p
		WHERE p.owner_id = $1
		ORDER BY p.created_at DESC, p.id DESC
	`, owner.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query polls: %w", err)
	}
	defer rows.Close()

	summaries := []models.PollSummary{}
	for rows.Next() {
		var sum models.PollSummary
		var description sql.NullString
		var closedAt sql.NullTime
		if err := rows.Scan(&sum.ID, &sum.Token, &sum.Title, &description,
			&sum.IsClosed, &closedAt, &sum.CreatedAt, &sum.VoteCount); err != nil {
			return nil, fmt.Errorf("failed to scan poll summary: %w", err)
		}
		sum.Description = description.String
		if closedAt.Valid {
			t := closedAt.Time
			sum.ClosedAt = &t
		}
		sum.CreatedAgo = humanize.Time(sum.CreatedAt)
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate polls: %w", err)
	}

	for i := range summaries {
		dates, err := s.pollDates(ctx, s.db, summaries[i].ID)
		if err != nil {
			return nil, err
		}
		summaries[i].Dates = dates
	}

	return summaries, nil
}

func (s *SQLStore) ClosePoll(ctx context.Context, credential string, id int64) (*models.PollSummary, error) {
	owner, err := s.Identity(ctx, credential)
	if err != nil {
		return nil, err
	}

	lock := s.lockPoll(id)
	lock.Lock()
	defer lock.Unlock()

	poll, err := s.loadPoll(ctx, `WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	if poll.OwnerID != owner.ID {
		return nil, models.ErrAuth
	}

	if !poll.IsClosed {
		// One statement sets is_closed and closed_at together, so a
		// concurrent read never sees the transition half-applied.
		now := time.Now().UTC()
		res, err := s.db.ExecContext(ctx, `
			UPDATE polls SET is_closed = $1, closed_at = $2
			WHERE id = $3 AND is_closed = $4
		`, true, now, id, false)
		if err != nil {
			return nil, fmt.Errorf("failed to close poll: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 1 {
			poll.IsClosed = true
			poll.ClosedAt = &now
		} else {
			// Lost a race with another close; already-closed is fine.
			poll, err = s.loadPoll(ctx, `WHERE id = $1`, id)
			if err != nil {
				return nil, err
			}
		}
	}

	return summarize(poll), nil
}

func (s *SQLStore) DeletePoll(ctx context.Context, credential string, id int64) error {
	owner, err := s.Identity(ctx, credential)
	if err != nil {
		return err
	}

	lock := s.lockPoll(id)
	lock.Lock()
	defer lock.Unlock()

	poll, err := s.loadPoll(ctx, `WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if poll.OwnerID != owner.ID {
		return models.ErrAuth
	}

	// Votes and selections go with the poll (ON DELETE CASCADE).
	if _, err := s.db.ExecContext(ctx, `DELETE FROM polls WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete poll: %w", err)
	}

	s.forgetPoll(id)
	return nil
}

// Votes

func (s *SQLStore) SubmitVote(ctx context.Context, token, name string, selections map[string]string) (*models.Poll, error) {
	var pollID int64
	err := s.db.QueryRowContext(ctx, `
		SELECT id FROM polls WHERE token = $1
	`, token).Scan(&pollID)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query poll: %w", err)
	}

	lock := s.lockPoll(pollID)
	lock.Lock()
	defer lock.Unlock()

	poll, err := s.loadPoll(ctx, `WHERE id = $1`, pollID)
	if err != nil {
		return nil, err
	}

	// Apply decides the whole upsert in memory, under the poll lock:
	// closed state (re-checked here, so once a close commits no later
	// ballot gets in), ballot validation, and the replace-by-folded-name
	// rule. The rows written below only persist what Apply decided.
	now := time.Now().UTC()
	if _, err := tally.Apply(poll, name, selections, now); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	voterKey := models.FoldName(name)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var voteID string
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM votes WHERE poll_id = $1 AND voter_key = $2
	`, pollID, voterKey).Scan(&voteID)

	switch {
	case err == sql.ErrNoRows:
		voteID = uuid.NewString()
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO votes (id, poll_id, voter_name, voter_key, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, voteID, pollID, name, voterKey, now, now); err != nil {
			return nil, fmt.Errorf("failed to insert vote: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to query vote: %w", err)
	default:
		// Re-vote: the new ballot replaces the old selection set
		// entirely. The display name follows the latest submission.
		if _, err := tx.ExecContext(ctx, `
			UPDATE votes SET voter_name = $1, updated_at = $2 WHERE id = $3
		`, name, now, voteID); err != nil {
			return nil, fmt.Errorf("failed to update vote: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM vote_selections WHERE vote_id = $1
		`, voteID); err != nil {
			return nil, fmt.Errorf("failed to clear selections: %w", err)
		}
	}

	for date, value := range selections {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO vote_selections (vote_id, date, value)
			VALUES ($1, $2, $3)
		`, voteID, date, value); err != nil {
			return nil, fmt.Errorf("failed to insert selection: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit vote: %w", err)
	}

	return s.loadPoll(ctx, `WHERE id = $1`, pollID)
}

// Seed creates the demo user and sample poll the first time the server
// starts against an empty database. Safe to call repeatedly.
func (s *SQLStore) Seed(ctx context.Context) error {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)
	`, "demo").Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check seed user: %w", err)
	}
	if exists {
		return nil
	}

	demo, err := s.CreateUser(ctx, "demo", "demo123")
	if err != nil {
		return err
	}

	session, _, err := s.Login(ctx, demo.Username, "demo123")
	if err != nil {
		return err
	}
	defer s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = $1`, session.Token)

	summary, err := s.CreatePoll(ctx, session.Token,
		"Team Meeting März", "Bitte tragt ein, wann ihr Zeit habt.",
		[]string{"2026-03-02", "2026-03-03", "2026-03-05", "2026-03-06"})
	if err != nil {
		return err
	}

	seedVotes := []struct {
		name       string
		selections map[string]string
	}{
		{"Anna", map[string]string{
			"2026-03-02": models.VoteYes, "2026-03-03": models.VoteMaybe,
			"2026-03-05": models.VoteNo, "2026-03-06": models.VoteYes,
		}},
		{"Ben", map[string]string{
			"2026-03-02": models.VoteMaybe, "2026-03-03": models.VoteYes,
			"2026-03-05": models.VoteYes, "2026-03-06": models.VoteNo,
		}},
	}
	for _, v := range seedVotes {
		if _, err := s.SubmitVote(ctx, summary.Token, v.name, v.selections); err != nil {
			return err
		}
	}

	return nil
}

// Internal helpers

func (s *SQLStore) pollByToken(ctx context.Context, token string) (*models.Poll, error) {
	return s.loadPoll(ctx, `WHERE token = $1`, token)
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *SQLStore) pollDates(ctx context.Context, q querier, pollID int64) ([]string, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT date FROM poll_dates WHERE poll_id = $1 ORDER BY date
	`, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to query poll dates: %w", err)
	}
	defer rows.Close()

	dates := []string{}
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan poll date: %w", err)
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// loadPoll fetches the full aggregate: poll row, dates, votes, and
// selections. where must bind exactly one parameter.
func (s *SQLStore) loadPoll(ctx context.Context, where string, arg any) (*models.Poll, error) {
	var poll models.Poll
	var description sql.NullString
	var closedAt sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, token, title, description, is_closed, closed_at, created_at
		FROM polls `+where, arg).Scan(
		&poll.ID, &poll.OwnerID, &poll.Token, &poll.Title, &description,
		&poll.IsClosed, &closedAt, &poll.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query poll: %w", err)
	}
	poll.Description = description.String
	if closedAt.Valid {
		t := closedAt.Time
		poll.ClosedAt = &t
	}

	if poll.Dates, err = s.pollDates(ctx, s.db, poll.ID); err != nil {
		return nil, err
	}

	voteRows, err := s.db.QueryContext(ctx, `
		SELECT id, voter_name, created_at, updated_at
		FROM votes WHERE poll_id = $1
		ORDER BY created_at, id
	`, poll.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query votes: %w", err)
	}
	defer voteRows.Close()

	poll.Votes = []models.Vote{}
	voteIndex := map[string]int{}
	for voteRows.Next() {
		var id string
		var v models.Vote
		if err := voteRows.Scan(&id, &v.Name, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		v.Selections = map[string]string{}
		voteIndex[id] = len(poll.Votes)
		poll.Votes = append(poll.Votes, v)
	}
	if err := voteRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate votes: %w", err)
	}

	selRows, err := s.db.QueryContext(ctx, `
		SELECT s.vote_id, s.date, s.value
		FROM vote_selections s
		JOIN votes v ON v.id = s.vote_id
		WHERE v.poll_id = $1
	`, poll.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query selections: %w", err)
	}
	defer selRows.Close()

	for selRows.Next() {
		var voteID, date, value string
		if err := selRows.Scan(&voteID, &date, &value); err != nil {
			return nil, fmt.Errorf("failed to scan selection: %w", err)
		}
		if i, ok := voteIndex[voteID]; ok {
			poll.Votes[i].Selections[date] = value
		}
	}
	if err := selRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate selections: %w", err)
	}

	return &poll, nil
}

func summarize(p *models.Poll) *models.PollSummary {
	return &models.PollSummary{
		ID:          p.ID,
		Token:       p.Token,
		Title:       p.Title,
		Description: p.Description,
		Dates:       p.Dates,
		VoteCount:   len(p.Votes),
		IsClosed:    p.IsClosed,
		ClosedAt:    p.ClosedAt,
		CreatedAt:   p.CreatedAt,
		CreatedAgo:  humanize.Time(p.CreatedAt),
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

var _ Store = (*SQLStore)(nil)
