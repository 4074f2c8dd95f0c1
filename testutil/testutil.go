// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/neilotoole/slogt"

	"github.com/danielhkuo/quickly-vote/auth"
	"github.com/danielhkuo/quickly-vote/cliparse"
	"github.com/danielhkuo/quickly-vote/db"
	"github.com/danielhkuo/quickly-vote/metrics"
	"github.com/danielhkuo/quickly-vote/notify"
	"github.com/danielhkuo/quickly-vote/registry"
	"github.com/danielhkuo/quickly-vote/workflow"
)

// TestTokenSalt signs caller tokens in tests
const TestTokenSalt = "test-token-salt"

// SetupTestDB opens a fresh in-memory SQLite database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(db.TypeSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         cliparse.DefaultPort,
		DatabaseURL:  ":memory:",
		DatabaseType: db.TypeSQLite,
		TokenSalt:    TestTokenSalt,
	}
}

// Env bundles the pieces a handler test needs
type Env struct {
	DB       *sql.DB
	Journal  *db.Journal
	Bus      *notify.Bus
	Metrics  *metrics.Metrics
	Registry *registry.Registry
}

// SetupEnv wires a registry to a fresh database, bus, and metrics
func SetupEnv(t *testing.T) *Env {
	t.Helper()

	conn := SetupTestDB(t)
	env := &Env{
		DB:      conn,
		Journal: db.NewJournal(conn),
		Bus:     notify.NewBus(),
		Metrics: metrics.New(),
	}
	env.Bus.Subscribe(notify.TopicAll, env.Metrics.ObserveEvent)
	env.Registry = registry.New(registry.Config{
		Store:    env.Journal,
		Notifier: env.Bus,
		Metrics:  env.Metrics,
		Logger:   slogt.New(t),
	})
	return env
}

// Token issues a caller token for identity under TestTokenSalt
func Token(t *testing.T, identity string) string {
	t.Helper()

	token, err := auth.IssueToken(identity, TestTokenSalt)
	if err != nil {
		t.Fatalf("Failed to issue token for %q: %v", identity, err)
	}
	return token
}

// AuthHeaders returns request headers authenticating as identity
func AuthHeaders(t *testing.T, identity string) map[string]string {
	t.Helper()
	return map[string]string{"Authorization": "Bearer " + Token(t, identity)}
}

// CreateTestWorkflow creates a workflow administered by admin and registers
// the given voters
func CreateTestWorkflow(t *testing.T, reg *registry.Registry, admin string, voters ...string) *workflow.Workflow {
	t.Helper()

	ctx := context.Background()
	wf, err := reg.Create(ctx, admin, "Test Workflow")
	if err != nil {
		t.Fatalf("Failed to create test workflow: %v", err)
	}
	for _, v := range voters {
		if err := wf.RegisterVoter(ctx, admin, v); err != nil {
			t.Fatalf("Failed to register voter %q: %v", v, err)
		}
	}
	return wf
}

// OpenVoting moves wf from voter registration to an open voting session,
// registering each proposal as proposer
func OpenVoting(t *testing.T, wf *workflow.Workflow, proposer string, proposals ...string) {
	t.Helper()

	ctx := context.Background()
	admin := wf.Admin()
	if err := wf.StartProposalRegistration(ctx, admin); err != nil {
		t.Fatalf("Failed to start proposal registration: %v", err)
	}
	for _, p := range proposals {
		if _, err := wf.RegisterProposal(ctx, proposer, p); err != nil {
			t.Fatalf("Failed to register proposal %q: %v", p, err)
		}
	}
	if err := wf.EndProposalRegistration(ctx, admin); err != nil {
		t.Fatalf("Failed to end proposal registration: %v", err)
	}
	if err := wf.StartVotingSession(ctx, admin); err != nil {
		t.Fatalf("Failed to start voting session: %v", err)
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}

// AssertErrorCode checks the status and the code field of an error response
func AssertErrorCode(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	AssertStatus(t, w, status)

	var resp struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	if resp.Code != code {
		t.Errorf("Expected error code %q, got %q", code, resp.Code)
	}
}
