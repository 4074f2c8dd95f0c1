// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

import (
	"context"
	"sync"
	"testing"

	"github.com/neilotoole/slogt"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/quickly-vote/workflow"
)

func TestBusDeliversToTopics(t *testing.T) {
	bus := NewBus()

	var (
		mu     sync.Mutex
		all    []workflow.Event
		voted  []workflow.Event
		scoped []workflow.Event
		wg     sync.WaitGroup
	)
	record := func(dst *[]workflow.Event) func(workflow.Event) {
		return func(ev workflow.Event) {
			mu.Lock()
			*dst = append(*dst, ev)
			mu.Unlock()
			wg.Done()
		}
	}
	defer bus.Subscribe(TopicAll, record(&all))()
	defer bus.Subscribe(KindTopic(workflow.EventVoterRegistered), record(&voted))()
	defer bus.Subscribe(WorkflowTopic("wf-1"), record(&scoped))()
	defer bus.LogEvents(slogt.New(t))()

	wf := workflow.New("wf-1", "alice", workflow.WithNotifier(bus))
	// One registration reaches all three subscribers.
	wg.Add(3)
	require.NoError(t, wf.RegisterVoter(context.Background(), "alice", "bob"))
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, all, 1)
	require.Len(t, voted, 1)
	require.Len(t, scoped, 1)
	require.Equal(t, "bob", all[0].Identity)
	require.Equal(t, workflow.EventVoterRegistered, voted[0].Kind)
}

func TestBusUnsubscribe(t *testing.T) {
	bus := NewBus()
	calls := 0
	unsubscribe := bus.Subscribe(TopicAll, func(workflow.Event) { calls++ })

	bus.Notify(workflow.Event{WorkflowID: "wf-1", Seq: 1, Kind: workflow.EventVoted})
	require.Equal(t, 1, calls)

	unsubscribe()
	bus.Notify(workflow.Event{WorkflowID: "wf-1", Seq: 2, Kind: workflow.EventVoted})
	require.Equal(t, 1, calls)
}

func TestBusUnsubscribeKeepsOtherSubscribers(t *testing.T) {
	bus := NewBus()
	first, second := 0, 0
	unsubscribe := bus.Subscribe(TopicAll, func(workflow.Event) { first++ })
	bus.Subscribe(TopicAll, func(workflow.Event) { second++ })

	unsubscribe()
	bus.Notify(workflow.Event{WorkflowID: "wf-1", Seq: 1, Kind: workflow.EventVoted})
	require.Equal(t, 0, first)
	require.Equal(t, 1, second)
}
