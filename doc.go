// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Quickly Vote API server.

Quickly Vote hosts phase-gated voting workflows: an administrator registers
voters, voters register proposals, everyone registered votes once, and the
administrator tallies a single winner. Every accepted operation is journaled
as an event before it is applied, so workflows survive restarts.

# Starting the Server

The server requires a token salt; everything else has defaults:

	TOKEN_SALT=change-me go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." -token-salt change-me

Print a caller token for an identity and exit:

	go run . -token-salt change-me -issue-token alice

# Configuration

Required settings:

  - TOKEN_SALT (-token-salt): Secret for caller token HMAC

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - DATABASE_URL (-d): DSN (default: file:quickly-vote.db)
  - LOG_LEVEL (-log-level): debug, info, warn, error (default: info)
  - -env-file: dotenv file to load first (default: .env)

# Architecture

The server uses a handler-based architecture with dependency injection:

  - workflow: the voting state machine, its errors and events
  - registry: many workflows keyed by id, restored from the journal
  - db: SQL schema and event journal (SQLite or PostgreSQL)
  - notify: in-process event bus
  - metrics: Prometheus collectors
  - handlers: HTTP request handlers
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, metrics, caller authentication, JSON helpers
  - models: Request/response types
  - auth: Caller token issue and verification
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
