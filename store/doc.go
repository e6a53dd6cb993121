// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store defines the poll repository contract and its SQL
implementation.

# The Contract

Store is the single persistence abstraction: the HTTP handlers, the
lifecycle rules, and the tests all talk to it, never to a concrete
backend. Two implementations exist:

  - SQLStore (this package): sqlite for local durable storage, postgres
    for shared deployments, selected by Open.
  - client.Remote: the same contract spoken over HTTP against a running
    MeetVote server.

Owner credentials are explicit arguments on every gated method; there is
no ambient session state anywhere in the core.

# Write Serialization

SQLStore serializes all writes to a single poll record through a
per-poll mutex on top of per-statement transactions. Concurrent ballots
from different participants both persist; concurrent ballots under the
same folded name are last-write-wins; a ballot and a close may race, but
once the close commits no later ballot is accepted, and no accepted
ballot is ever silently dropped.
*/
package store
