// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains the HTTP request handlers for the MeetVote API.

# Handler Types

Each handler is a struct built over the store contract:

  - AuthHandler: register, login, me
  - PollHandler: owner operations (create, list, get, close, delete)
  - PublicHandler: voter operations via the public sharing token

Handlers are created via constructor functions that accept a store.Store:

	pollHandler := handlers.NewPollHandler(st)

# Poll Lifecycle

Polls are open on creation and move one way:

	open → closed   (owner only, idempotent, ends public reachability)
	open/closed → deleted (owner only, terminal, cascades votes)

Owner operations carry the bearer credential in the Authorization
header; voter operations need only the sharing token in the URL.
*/
package handlers
