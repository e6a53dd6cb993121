// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Backend names accepted by CreateSchema and store.Open.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
//
// The DDL is shared between sqlite and postgres; the only divergence is
// the auto-incrementing poll id column, substituted per backend.
func CreateSchema(db *sql.DB, backend string) error {
	serial := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if backend == BackendPostgres {
		serial = "BIGSERIAL PRIMARY KEY"
	}

	_, err := db.Exec(strings.ReplaceAll(schema, "{{serial}}", serial))
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Users (poll owners)
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    username TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_users_username ON users(username);

-- Sessions (bearer credentials)
CREATE TABLE IF NOT EXISTS sessions (
    token TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    created_at TIMESTAMP NOT NULL,
    expires_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions(user_id);

-- Polls
CREATE TABLE IF NOT EXISTS polls (
    id {{serial}},
    owner_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    token TEXT NOT NULL UNIQUE,
    title TEXT NOT NULL,
    description TEXT,
    is_closed BOOLEAN NOT NULL DEFAULT FALSE,
    closed_at TIMESTAMP,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_polls_owner_id ON polls(owner_id);
CREATE INDEX IF NOT EXISTS idx_polls_token ON polls(token);

-- Candidate dates (fixed at poll creation)
CREATE TABLE IF NOT EXISTS poll_dates (
    poll_id BIGINT NOT NULL REFERENCES polls(id) ON DELETE CASCADE,
    date TEXT NOT NULL,
    PRIMARY KEY (poll_id, date)
);

-- Votes (one row per participant, keyed by folded name)
CREATE TABLE IF NOT EXISTS votes (
    id TEXT PRIMARY KEY,
    poll_id BIGINT NOT NULL REFERENCES polls(id) ON DELETE CASCADE,
    voter_name TEXT NOT NULL,
    voter_key TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL,
    UNIQUE (poll_id, voter_key)
);

CREATE INDEX IF NOT EXISTS idx_votes_poll_id ON votes(poll_id);

-- Per-date selections (replaced wholesale on re-vote)
CREATE TABLE IF NOT EXISTS vote_selections (
    vote_id TEXT NOT NULL REFERENCES votes(id) ON DELETE CASCADE,
    date TEXT NOT NULL,
    value TEXT NOT NULL CHECK (value IN ('yes', 'no', 'maybe')),
    PRIMARY KEY (vote_id, date)
);
`
