// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package workflow

import (
	"context"
	"time"
)

type EventKind string

const (
	EventVoterRegistered      EventKind = "VoterRegistered"
	EventWorkflowStatusChange EventKind = "WorkflowStatusChange"
	EventProposalRegistered   EventKind = "ProposalRegistered"
	EventVoted                EventKind = "Voted"
	EventProposalCancelled    EventKind = "ProposalCancelled"
	EventVoteWithdrawn        EventKind = "VoteWithdrawn"
)

// Event records one accepted mutation. Seq starts at 1 and increases by one
// per event within a workflow. From and To are equal for events that do not
// change the phase.
type Event struct {
	WorkflowID  string    `json:"workflow_id"`
	Seq         uint64    `json:"seq"`
	Kind        EventKind `json:"kind"`
	Identity    string    `json:"identity,omitempty"`
	ProposalID  int       `json:"proposal_id"`
	Description string    `json:"description,omitempty"`
	From        Phase     `json:"from"`
	To          Phase     `json:"to"`
	At          time.Time `json:"at"`
}

// Journal durably records events before they are applied.
type Journal interface {
	Append(ctx context.Context, ev Event) error
}

// Notifier receives events after they are applied. Notify is called with the
// workflow lock held, so implementations must not call back into the
// workflow that produced the event.
type Notifier interface {
	Notify(ev Event)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ev Event)

func (f NotifierFunc) Notify(ev Event) { f(ev) }
