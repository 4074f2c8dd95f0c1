// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// The schema sticks to types both SQLite and PostgreSQL accept. Timestamps
// are RFC 3339 text so both drivers scan them the same way.
const schema = `
-- Workflows
CREATE TABLE IF NOT EXISTS workflow (
    id TEXT PRIMARY KEY,
    admin TEXT NOT NULL,
    title TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_workflow_admin ON workflow(admin);

-- Event journal, one row per accepted mutation
CREATE TABLE IF NOT EXISTS workflow_event (
    workflow_id TEXT NOT NULL REFERENCES workflow(id) ON DELETE CASCADE,
    seq BIGINT NOT NULL,
    kind TEXT NOT NULL,
    payload TEXT NOT NULL,
    recorded_at TEXT NOT NULL,
    PRIMARY KEY (workflow_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_workflow_event_kind ON workflow_event(workflow_id, kind);
`
