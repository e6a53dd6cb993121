// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/meetvote/meetvote/db"
	"github.com/meetvote/meetvote/models"
)

// Store is the repository contract for polls and owner identity. It is
// implemented by SQLStore (local sqlite or shared postgres) and by
// client.Remote (this server's own HTTP API), so everything above this
// interface is backend-agnostic.
//
// The credential parameter is an owner's bearer session token, threaded
// explicitly into every gated call. A missing, unknown, or expired
// credential surfaces as models.ErrAuth; the caller must then discard
// it and re-authenticate.
type Store interface {
	// CreateUser registers a new owner account. The username is trimmed
	// and lower-cased; duplicates fail with models.ErrExists.
	CreateUser(ctx context.Context, username, password string) (*models.User, error)

	// Login verifies credentials and issues a fresh bearer session.
	Login(ctx context.Context, username, password string) (*models.Session, *models.User, error)

	// Identity resolves a bearer credential to its owner.
	Identity(ctx context.Context, credential string) (*models.User, error)

	// CreatePoll validates title and dates (3..6 unique ISO dates after
	// trim/dedupe/sort) and creates an open poll owned by the credential's
	// identity.
	CreatePoll(ctx context.Context, credential, title, description string, dates []string) (*models.PollSummary, error)

	// PollByToken returns the poll behind a public sharing token. A
	// closed or unknown token is models.ErrNotFound either way, so the
	// public path never reveals that a closed poll exists.
	PollByToken(ctx context.Context, token string) (*models.Poll, error)

	// PollByID returns the full poll, votes included, to its owner.
	// Unknown id is models.ErrNotFound; someone else's poll is
	// models.ErrAuth.
	PollByID(ctx context.Context, credential string, id int64) (*models.Poll, error)

	// ListMine returns summaries of the credential's polls, newest first.
	ListMine(ctx context.Context, credential string) ([]models.PollSummary, error)

	// ClosePoll transitions a poll to closed, recording closedAt
	// atomically with isClosed. Closing an already-closed poll is a
	// no-op success and leaves closedAt untouched.
	ClosePoll(ctx context.Context, credential string, id int64) (*models.PollSummary, error)

	// DeletePoll permanently removes a poll and all its votes.
	DeletePoll(ctx context.Context, credential string, id int64) error

	// SubmitVote upserts a participant's ballot on an open poll reached
	// by its public token. A second ballot under the same case-folded
	// name replaces the whole selection set. A closed poll is
	// models.ErrState. The returned poll is the server's truth after
	// the write.
	SubmitVote(ctx context.Context, token, name string, selections map[string]string) (*models.Poll, error)
}

// Open opens a database handle for the configured backend and prepares
// the schema. backend is db.BackendSQLite or db.BackendPostgres.
func Open(backend, databaseURL string) (*sql.DB, error) {
	var driver, dsn string
	switch backend {
	case db.BackendSQLite:
		driver = "sqlite"
		dsn = sqliteDSN(databaseURL)
	case db.BackendPostgres:
		driver = "postgres"
		dsn = databaseURL
	default:
		return nil, fmt.Errorf("unknown database type %q", backend)
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", backend, err)
	}

	if backend == db.BackendSQLite {
		// sqlite allows one writer; a single pooled connection avoids
		// SQLITE_BUSY under concurrent handlers and keeps in-memory
		// databases alive.
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	if err := db.CreateSchema(conn, backend); err != nil {
		conn.Close()
		return nil, err
	}

	return conn, nil
}

// sqliteDSN turns a plain file path into a DSN with foreign keys and a
// busy timeout enabled.
func sqliteDSN(url string) string {
	const pragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if strings.Contains(url, "?") {
		return url + "&" + pragmas
	}
	return url + "?" + pragmas
}
