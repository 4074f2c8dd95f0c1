// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package registry

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/neilotoole/slogt"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/quickly-vote/db"
	"github.com/danielhkuo/quickly-vote/metrics"
	"github.com/danielhkuo/quickly-vote/notify"
	"github.com/danielhkuo/quickly-vote/workflow"
)

func setupStore(t *testing.T) *db.Journal {
	t.Helper()
	conn, err := db.Open(db.TypeSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, db.CreateSchema(conn))
	return db.NewJournal(conn)
}

// fixedIDs makes ids and timestamps predictable.
func fixedIDs(r *Registry) {
	var n int
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	r.newID = func() string {
		n++
		return fmt.Sprintf("wf-%d", n)
	}
	r.now = func() time.Time { return base.Add(time.Duration(n) * time.Minute) }
}

func TestCreateAndGet(t *testing.T) {
	ctx := context.Background()
	m := metrics.New()
	r := New(Config{Store: setupStore(t), Metrics: m, Logger: slogt.New(t)})

	wf, err := r.Create(ctx, " alice ", " Lunch ")
	require.NoError(t, err)
	require.Equal(t, "alice", wf.Admin())
	require.Equal(t, "Lunch", wf.Title())
	require.Equal(t, 1, r.Len())

	got, err := r.Get(ctx, wf.ID())
	require.NoError(t, err)
	require.Same(t, wf, got)

	_, err = r.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrWorkflowNotFound)
}

func TestCreateRequiresAdmin(t *testing.T) {
	r := New(Config{Logger: slogt.New(t)})

	_, err := r.Create(context.Background(), "  ", "x")
	require.ErrorIs(t, err, workflow.ErrInvalidArgument)
	require.Zero(t, r.Len())
}

func TestCreateWithoutStore(t *testing.T) {
	ctx := context.Background()
	r := New(Config{Logger: slogt.New(t)})

	wf, err := r.Create(ctx, "alice", "")
	require.NoError(t, err)
	require.NoError(t, wf.RegisterVoter(ctx, "alice", "bob"))

	n, err := r.Load(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestLoadReplaysJournal(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	first := New(Config{Store: store, Logger: slogt.New(t)})
	wf, err := first.Create(ctx, "alice", "Lunch")
	require.NoError(t, err)
	require.NoError(t, wf.RegisterVoter(ctx, "alice", "bob"))
	require.NoError(t, wf.StartProposalRegistration(ctx, "alice"))
	_, err = wf.RegisterProposal(ctx, "bob", "Pizza")
	require.NoError(t, err)
	require.NoError(t, wf.EndProposalRegistration(ctx, "alice"))
	require.NoError(t, wf.StartVotingSession(ctx, "alice"))
	require.NoError(t, wf.CastVote(ctx, "bob", 0))

	second := New(Config{Store: store, Logger: slogt.New(t)})
	n, err := second.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	restored, err := second.Get(ctx, wf.ID())
	require.NoError(t, err)
	require.Equal(t, wf.Snapshot(), restored.Snapshot())

	// Restored workflows keep journaling.
	require.NoError(t, restored.EndVotingSession(ctx, "alice"))
	events, err := store.LoadEvents(ctx, wf.ID())
	require.NoError(t, err)
	require.Len(t, events, len(restored.Events()))

	// A second load skips workflows already in memory.
	n, err = second.Load(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestGetFallsBackToStore(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	writer := New(Config{Store: store, Logger: slogt.New(t)})
	wf, err := writer.Create(ctx, "alice", "Lunch")
	require.NoError(t, err)
	require.NoError(t, wf.RegisterVoter(ctx, "alice", "bob"))

	m := metrics.New()
	reader := New(Config{Store: store, Metrics: m, Logger: slogt.New(t)})
	require.Zero(t, reader.Len())

	got, err := reader.Get(ctx, wf.ID())
	require.NoError(t, err)
	require.Equal(t, wf.Snapshot(), got.Snapshot())
	require.Equal(t, 1, reader.Len())
	require.Equal(t, 1.0, testutil.ToFloat64(m.Workflows))

	again, err := reader.Get(ctx, wf.ID())
	require.NoError(t, err)
	require.Same(t, got, again)

	_, err = reader.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrWorkflowNotFound)
	require.Equal(t, 1, reader.Len())
}

func TestNotifierWired(t *testing.T) {
	ctx := context.Background()
	bus := notify.NewBus()

	var got []workflow.EventKind
	bus.Subscribe(notify.TopicAll, func(ev workflow.Event) {
		got = append(got, ev.Kind)
	})

	r := New(Config{Notifier: bus, Logger: slogt.New(t)})
	wf, err := r.Create(ctx, "alice", "")
	require.NoError(t, err)
	require.NoError(t, wf.RegisterVoter(ctx, "alice", "bob"))
	require.NoError(t, wf.StartProposalRegistration(ctx, "alice"))

	require.Equal(t, []workflow.EventKind{workflow.EventVoterRegistered, workflow.EventWorkflowStatusChange}, got)
}

func TestMemberships(t *testing.T) {
	ctx := context.Background()
	r := New(Config{Logger: slogt.New(t)})
	fixedIDs(r)

	a, err := r.Create(ctx, "alice", "First")
	require.NoError(t, err)
	b, err := r.Create(ctx, "bob", "Second")
	require.NoError(t, err)
	_, err = r.Create(ctx, "carol", "Third")
	require.NoError(t, err)

	require.NoError(t, b.RegisterVoter(ctx, "bob", "alice"))

	got := r.Memberships("alice")
	require.Len(t, got, 2)
	require.Equal(t, a.ID(), got[0].WorkflowID)
	require.Equal(t, RoleAdmin, got[0].Role)
	require.Equal(t, "First", got[0].Title)
	require.Equal(t, b.ID(), got[1].WorkflowID)
	require.Equal(t, RoleVoter, got[1].Role)
	require.Equal(t, workflow.RegisteringVoters, got[1].Phase)

	require.Empty(t, r.Memberships("dave"))
}

func TestConcurrentCreate(t *testing.T) {
	ctx := context.Background()
	r := New(Config{Logger: slogt.New(t)})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := r.Create(ctx, fmt.Sprintf("admin-%d", i), "")
			require.NoError(t, err)
			_ = r.Memberships("admin-0")
		}(i)
	}
	wg.Wait()

	require.Equal(t, 20, r.Len())
}
