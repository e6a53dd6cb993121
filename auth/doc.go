// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides password hashing and token generation.

# Passwords

Owner passwords are hashed with bcrypt at the default cost. Verification
is constant-time via bcrypt.CompareHashAndPassword.

# Tokens

Two token kinds exist, both crypto/rand with URL-safe base64 encoding:

  - Session tokens (24 bytes): the bearer credential for owner operations.
    Opaque to every layer; expiry lives in the sessions table.
  - Public tokens (12 bytes): the unguessable poll sharing identifier.
    Grants voter access only, never owner access.
*/
package auth
