// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines all HTTP routes using Go 1.22+ method patterns.

	GET    /health
	POST   /auth/register
	POST   /auth/login                 (rate limited per IP)
	GET    /auth/me
	POST   /polls                      (owner)
	GET    /polls/mine                 (owner)
	GET    /polls/{id}                 (owner)
	POST   /polls/{id}/close           (owner)
	DELETE /polls/{id}                 (owner)
	GET    /public/polls/{token}       (voter)
	POST   /public/polls/{token}/vote  (voter)

The numeric {id} routes and the token route live in different URL
spaces, mirroring the two identifier spaces of a poll.
*/
package router
