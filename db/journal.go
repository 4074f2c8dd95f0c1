// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/quickly-vote/workflow"
)

var ErrWorkflowNotFound = errors.New("workflow not found")

// timeLayout is fixed width so TEXT columns sort chronologically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// WorkflowRecord is the stored metadata of one workflow.
type WorkflowRecord struct {
	ID        string
	Admin     string
	Title     string
	CreatedAt time.Time
}

// Journal persists workflow metadata and the event journal. It implements
// workflow.Journal.
type Journal struct {
	db *sql.DB
}

func NewJournal(db *sql.DB) *Journal {
	return &Journal{db: db}
}

// SaveWorkflow inserts a workflow row.
func (j *Journal) SaveWorkflow(ctx context.Context, rec WorkflowRecord) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO workflow (id, admin, title, created_at)
		VALUES ($1, $2, $3, $4)
	`, rec.ID, rec.Admin, rec.Title, rec.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("failed to insert workflow %s: %w", rec.ID, err)
	}
	return nil
}

// GetWorkflow returns the workflow row with the given id.
func (j *Journal) GetWorkflow(ctx context.Context, id string) (WorkflowRecord, error) {
	var rec WorkflowRecord
	var createdAt string
	err := j.db.QueryRowContext(ctx, `
		SELECT id, admin, title, created_at FROM workflow WHERE id = $1
	`, id).Scan(&rec.ID, &rec.Admin, &rec.Title, &createdAt)
	if err == sql.ErrNoRows {
		return WorkflowRecord{}, ErrWorkflowNotFound
	}
	if err != nil {
		return WorkflowRecord{}, fmt.Errorf("failed to query workflow %s: %w", id, err)
	}
	rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return WorkflowRecord{}, fmt.Errorf("workflow %s: bad created_at %q: %w", id, createdAt, err)
	}
	return rec, nil
}

// ListWorkflows returns every workflow ordered by creation time.
func (j *Journal) ListWorkflows(ctx context.Context) ([]WorkflowRecord, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, admin, title, created_at FROM workflow ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflows: %w", err)
	}
	defer rows.Close()

	records := []WorkflowRecord{}
	for rows.Next() {
		var rec WorkflowRecord
		var createdAt string
		if err := rows.Scan(&rec.ID, &rec.Admin, &rec.Title, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan workflow: %w", err)
		}
		rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("workflow %s: bad created_at %q: %w", rec.ID, createdAt, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Append stores ev. The (workflow_id, seq) primary key rejects a second
// writer racing on the same sequence number.
func (j *Journal) Append(ctx context.Context, ev workflow.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	_, err = j.db.ExecContext(ctx, `
		INSERT INTO workflow_event (workflow_id, seq, kind, payload, recorded_at)
		VALUES ($1, $2, $3, $4, $5)
	`, ev.WorkflowID, int64(ev.Seq), string(ev.Kind), string(payload), ev.At.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("failed to insert event %s/%d: %w", ev.WorkflowID, ev.Seq, err)
	}
	return nil
}

// LoadEvents returns the journal of one workflow in sequence order.
func (j *Journal) LoadEvents(ctx context.Context, workflowID string) ([]workflow.Event, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT payload FROM workflow_event WHERE workflow_id = $1 ORDER BY seq
	`, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	events := []workflow.Event{}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		var ev workflow.Event
		if err := json.Unmarshal([]byte(payload), &ev); err != nil {
			return nil, fmt.Errorf("failed to decode event: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
