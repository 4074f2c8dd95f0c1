// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON, validated with go-playground/validator tags:

  - CreateWorkflowRequest: title
  - RegisterVoterRequest: identity
  - RegisterProposalRequest: description
  - VoteRequest: proposal_id

# Response Types

Types for JSON responses:

  - CreateWorkflowResponse: workflow_id, admin, phase
  - RegisterProposalResponse: proposal_id
  - PhaseResponse: workflow_id, phase
  - ErrorResponse: error, code, message

# Domain Types

Views of workflow state:

  - Workflow: phase, admin, voter count, proposals, winner once tallied
  - Proposal: index, description, vote count
  - Voter: registration and vote status of one identity
  - Winner, Ranking, RankedProposal: results
  - Event: one journal entry
  - Membership: a workflow the caller administers or votes in

# Constants

Phase actions accepted by POST /workflows/{id}/phase/{action}:

	ActionStartProposals = "start-proposals"
	ActionEndProposals   = "end-proposals"
	ActionStartVoting    = "start-voting"
	ActionEndVoting      = "end-voting"
	ActionTally          = "tally"
*/
package models
