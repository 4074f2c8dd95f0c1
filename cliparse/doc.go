// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: SQLite DSN or PostgreSQL connection string (default: file:quickly-vote.db)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - TokenSalt: Secret for caller token HMAC (required)
  - LogLevel: slog level (default: info)
  - EnvFile: dotenv file loaded before the environment is read (default: .env)
  - IssueToken: identity to print a caller token for

# CLI Flags

	-p            Server port
	-d            Database URL
	-t            Database type
	-token-salt   Caller token salt
	-log-level    Log level
	-env-file     Env file to load
	-issue-token  Print a caller token and exit

# Environment Variables

Flags fall back to environment variables:

	PORT          → -p
	DATABASE_URL  → -d
	DATABASE_TYPE → -t
	TOKEN_SALT    → -token-salt
	LOG_LEVEL     → -log-level

CLI flags take precedence over environment variables, and variables already
set take precedence over the env file. A missing env file is ignored.

# Validation

ParseFlags returns an error if:

  - TOKEN_SALT is not provided
  - PORT is not a valid port number
  - DATABASE_TYPE is neither sqlite nor postgres

# Example

	// In main.go
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	// ...
	mux := router.NewRouter(reg, bus, m, cfg)
*/
package cliparse
