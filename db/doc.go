// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connections, schema creation, and the workflow
event journal.

# Connecting

Open selects the driver from the database type:

	conn, err := db.Open("sqlite", "file:quickly-vote.db")
	conn, err := db.Open("postgres", "postgres://...")

SQLite uses modernc.org/sqlite (no cgo). PostgreSQL uses lib/pq.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - workflow: id, admin identity, title, creation time
  - workflow_event: one JSON-encoded workflow.Event per accepted mutation

	workflow 1──* workflow_event

# Journal

Journal implements workflow.Journal. Workflows append each event before
applying it, so replaying LoadEvents through workflow.Restore yields the
state at the last accepted operation.
*/
package db
