// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package client implements the store contract against a remote MeetVote
server over HTTP.

Remote satisfies store.Store, so a frontend or tool can switch between
the local SQL store and a remote deployment without changing any logic
above the repository boundary.

Status codes map back onto the shared error taxonomy (400 validation,
401 auth, 404 not-found, 409 state/exists). Connection failures and
timeouts wrap models.ErrTransport and are the only retryable errors;
the client itself never retries.

The server's response is the source of truth: after SubmitVote the
returned poll is the server's state, not a locally mutated copy.
*/
package client
