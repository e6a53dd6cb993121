// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models contains the domain types, request/response types, and the
error taxonomy shared by the MeetVote server and client.

# Domain Types

  - Poll: aggregate of candidate dates and collected votes, owned by one user
  - Vote: one participant's per-date selections, keyed by case-folded name
  - User / Session: owner identity and bearer credential
  - PollSummary: owner listing shape with vote counts

# Identifier Spaces

A poll has two identifiers that must never be confused:

  - ID: numeric, owner-facing, required for close/delete/list operations
  - Token: unguessable, voter-facing, used in the public sharing URL

# Error Taxonomy

  - ValidationError: malformed input (title, dates, selections)
  - ErrAuth: missing/expired/mismatched credential
  - ErrNotFound: unknown id/token, or a closed poll on the public path
  - ErrState: operation invalid for the current lifecycle state
  - ErrTransport: backend unreachable (remote client only, retryable)
*/
package models
