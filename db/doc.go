// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db creates the database schema.

The same DDL runs against both supported backends (sqlite for local
durable storage, postgres for shared deployments); only the poll id
column type is substituted. All timestamps are written by the
application as bind parameters so no backend-specific NOW() appears in
the schema.

Tables:

  - users, sessions: owner identity and bearer credentials
  - polls, poll_dates: the aggregate root and its fixed candidate dates
  - votes, vote_selections: one vote row per folded participant name,
    with per-date selections replaced wholesale on re-vote

Deleting a poll cascades to its dates, votes, and selections.
*/
package db
