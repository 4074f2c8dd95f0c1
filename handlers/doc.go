// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Quickly Vote API.

# Handler Types

Each handler is a struct holding the workflow registry and, for mutating
handlers, the metrics collector:

  - WorkflowHandler: workflow creation, voter registration, phase changes
  - VotingHandler: proposals, votes, withdrawals
  - ResultsHandler: proposal list, winner, ranking, event journal
  - MembershipHandler: workflows the caller belongs to

Handlers are created via constructor functions:

	workflowHandler := handlers.NewWorkflowHandler(reg, m)

# Caller Identity

Every route is wrapped with middleware.WithCaller, so handlers read the
authenticated identity from the request context. The workflow decides what
that identity may do; handlers never check roles themselves.

# Workflow Lifecycle

Workflows advance through six phases, one step at a time:

	RegisteringVoters → ProposalsRegistrationStarted → ProposalsRegistrationEnded
	→ VotingSessionStarted → VotingSessionEnded → VotesTallied

	POST /workflows                      → CreateWorkflow (caller becomes admin)
	POST /workflows/{id}/voters          → RegisterVoter (admin)
	POST /workflows/{id}/phase/{action}  → ChangePhase (admin)

# Voting Flow

	POST   /workflows/{id}/proposals          → RegisterProposal
	DELETE /workflows/{id}/proposals/{index}  → CancelProposal
	POST   /workflows/{id}/votes              → CastVote
	DELETE /workflows/{id}/votes              → WithdrawVote

# Errors

Workflow errors map to a status and a stable code carried in every error
body:

	phase_violation, duplicate_registration,
	already_voted, not_yet_voted, vote_mismatch  → 409
	authorization_violation                      → 403
	out_of_range                                 → 404
	insufficient_voters                          → 412
	invalid_argument                             → 400
	internal                                     → 500

Request bodies are validated with go-playground/validator struct tags before
they reach the workflow.
*/
package handlers
