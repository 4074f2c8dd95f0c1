// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package workflow implements the voting workflow state machine.

A Workflow owns three collections: registered voters, proposals, and cast
votes. Every mutating operation is legal only in one phase and only for one
caller role, and the phase advances along a fixed chain:

	RegisteringVoters
	  → ProposalsRegistrationStarted
	  → ProposalsRegistrationEnded
	  → VotingSessionStarted
	  → VotingSessionEnded
	  → VotesTallied

# Roles

The admin is the identity passed to New. Only the admin registers voters and
moves the phase. Proposal registration, cancellation, voting, and withdrawal
require a registered voter. The admin is registered as the first voter.

	wf := workflow.New(id, "alice")
	err := wf.RegisterVoter(ctx, "alice", "bob")

# Errors

Failures are reported with sentinel errors that callers test with errors.Is:

  - ErrPhaseViolation
  - ErrAuthorizationViolation
  - ErrDuplicateRegistration
  - ErrAlreadyVoted, ErrNotYetVoted, ErrVoteMismatch
  - ErrOutOfRange
  - ErrInsufficientVoters
  - ErrInvalidArgument

A rejected operation never changes state. Code maps an error to a stable
string suitable for API responses.

# Events

Every accepted mutation produces exactly one Event. The event is appended to
the optional Journal first, then applied to memory, then handed to the
optional Notifier, all under the workflow lock. Restore rebuilds a workflow
from journalled events.
*/
package workflow
