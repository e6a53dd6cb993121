// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

A .env file in the working directory is loaded before flags are
evaluated; explicit environment variables take precedence over it.

# CLI Flags

	-p            Server port (default: 5000)
	-d            Database URL (postgres) or file path (sqlite)
	-t            Database type: sqlite (default) or postgres
	-session-ttl  Login session lifetime (default: 24h)
	-origin       Allowed CORS origin (default: http://localhost:3000)
	-seed         Seed demo data on startup

# Environment Variables

Flags fall back to environment variables:

	PORT, DATABASE_URL, DATABASE_TYPE, SESSION_TTL, ALLOWED_ORIGIN,
	SEED_DEMO_DATA
*/
package cliparse
