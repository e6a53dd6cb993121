// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP helpers shared by all handlers.

  - JSONResponse / ErrorResponse: the JSON response envelope
  - StoreError: maps the store error taxonomy onto status codes
    (validation 400, auth 401, not-found 404, state/conflict 409)
  - ParseJSONBody: request body decoding
  - BearerToken: Authorization header extraction
  - WithLogging: slog request logging
  - CORS: cross-origin headers for the configured frontend origin
  - LoginLimiter: per-IP login throttling (token bucket)
*/
package middleware
