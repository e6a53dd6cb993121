// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the MeetVote API server.

MeetVote is a date-poll service: an owner proposes 3 to 6 candidate
dates, named participants mark yes/no/maybe per date through a sharing
link, and the dates with the broadest support win.

# Starting the Server

The server runs on a local sqlite file by default:

	go run main.go

Or against postgres:

	DATABASE_TYPE=postgres DATABASE_URL=postgres://... go run main.go

# Configuration

Optional settings (flags or env, see package cliparse):

  - PORT (-p): server port (default: 5000)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - DATABASE_URL (-d): postgres URL or sqlite file path
  - SESSION_TTL (-session-ttl): login session lifetime (default: 24h)
  - ALLOWED_ORIGIN (-origin): CORS origin for the frontend
  - -seed: create the demo user and sample poll on startup

# Architecture

The server uses a handler-based architecture over a swappable
repository:

  - handlers: HTTP request handlers (auth, polls, public voting)
  - router: route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers, login rate limiting
  - store: the repository contract and its SQL implementation
  - client: the same contract spoken over HTTP (remote backend)
  - tally: the pure vote aggregation engine
  - models: domain types and the error taxonomy
  - auth: password hashing and token generation
  - dateutil: German display formatting for ISO dates
  - db: schema creation
  - cliparse: configuration parsing

See package documentation for each component.
*/
package main
