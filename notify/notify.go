// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package notify fans workflow events out to in-process subscribers.
package notify

import (
	"log/slog"

	"github.com/GianlucaGuarini/go-observable"

	"github.com/danielhkuo/quickly-vote/workflow"
)

// TopicAll receives every event.
const TopicAll = "workflow-event"

// WorkflowTopic is the topic carrying the events of one workflow.
func WorkflowTopic(workflowID string) string {
	return "workflow-" + workflowID
}

// KindTopic is the topic carrying one kind of event across all workflows.
func KindTopic(kind workflow.EventKind) string {
	return "kind-" + string(kind)
}

// Bus implements workflow.Notifier on top of an observable. Subscribers run
// synchronously on the publishing goroutine, inside the workflow lock, so
// they must be quick and must not call back into the workflow or the bus.
type Bus struct {
	obs *observable.Observable
}

func NewBus() *Bus {
	return &Bus{obs: observable.New()}
}

func (b *Bus) Notify(ev workflow.Event) {
	b.obs.Trigger(TopicAll, ev)
	b.obs.Trigger(KindTopic(ev.Kind), ev)
	b.obs.Trigger(WorkflowTopic(ev.WorkflowID), ev)
}

// Subscribe registers fn for topic and returns a function that removes it.
func (b *Bus) Subscribe(topic string, fn func(workflow.Event)) (unsubscribe func()) {
	cb := func(args ...interface{}) {
		if len(args) == 0 {
			return
		}
		if ev, ok := args[0].(workflow.Event); ok {
			fn(ev)
		}
	}
	b.obs.On(topic, cb)
	return func() { b.obs.Off(topic, cb) }
}

// LogEvents subscribes a logger that records every event.
func (b *Bus) LogEvents(logger *slog.Logger) (unsubscribe func()) {
	if logger == nil {
		logger = slog.Default()
	}
	return b.Subscribe(TopicAll, func(ev workflow.Event) {
		logger.Info("workflow event",
			"workflow_id", ev.WorkflowID,
			"seq", ev.Seq,
			"kind", string(ev.Kind),
			"identity", ev.Identity,
			"proposal_id", ev.ProposalID,
			"from", ev.From.String(),
			"to", ev.To.String(),
		)
	})
}
