package models

import "time"

// Phase action path values
const (
	ActionStartProposals = "start-proposals"
	ActionEndProposals   = "end-proposals"
	ActionStartVoting    = "start-voting"
	ActionEndVoting      = "end-voting"
	ActionTally          = "tally"
)

// Request types

type CreateWorkflowRequest struct {
	Title string `json:"title" validate:"max=200"`
}

type RegisterVoterRequest struct {
	Identity string `json:"identity" validate:"required,max=200"`
}

type RegisterProposalRequest struct {
	Description string `json:"description" validate:"required,max=1000"`
}

// ProposalID is a pointer so that index 0 is distinguishable from a missing
// field. Range is checked by the workflow, after role and phase.
type VoteRequest struct {
	ProposalID *int `json:"proposal_id" validate:"required"`
}

// Response types

type CreateWorkflowResponse struct {
	WorkflowID string `json:"workflow_id"`
	Admin      string `json:"admin"`
	Phase      string `json:"phase"`
}

type RegisterProposalResponse struct {
	ProposalID int `json:"proposal_id"`
}

type PhaseResponse struct {
	WorkflowID string `json:"workflow_id"`
	Phase      string `json:"phase"`
}

// Domain types

type Proposal struct {
	ProposalID  int    `json:"proposal_id"`
	Description string `json:"description"`
	VoteCount   int    `json:"vote_count"`
	Cancelled   bool   `json:"cancelled,omitempty"`
}

type Workflow struct {
	ID                string     `json:"id"`
	Title             string     `json:"title,omitempty"`
	Admin             string     `json:"admin"`
	Phase             string     `json:"phase"`
	VotersCount       int        `json:"voters_count"`
	Proposals         []Proposal `json:"proposals"`
	WinningProposalID *int       `json:"winning_proposal_id,omitempty"`
	EventCount        uint64     `json:"event_count"`
	CreatedAt         time.Time  `json:"created_at"`
}

type Voter struct {
	Identity        string `json:"identity"`
	IsRegistered    bool   `json:"is_registered"`
	HasVoted        bool   `json:"has_voted"`
	VotedProposalID *int   `json:"voted_proposal_id,omitempty"`
}

type Winner struct {
	Proposal
}

// RankedProposal is one row of the ranking. Place is 1-indexed; Ordinal is
// the human form ("1st", "2nd").
type RankedProposal struct {
	Proposal
	Place   int    `json:"place"`
	Ordinal string `json:"ordinal"`
}

type Ranking struct {
	WorkflowID string           `json:"workflow_id"`
	Phase      string           `json:"phase"`
	Proposals  []RankedProposal `json:"proposals"`
}

type Event struct {
	Seq         uint64    `json:"seq"`
	Kind        string    `json:"kind"`
	Identity    string    `json:"identity,omitempty"`
	ProposalID  int       `json:"proposal_id"`
	Description string    `json:"description,omitempty"`
	From        string    `json:"from"`
	To          string    `json:"to"`
	At          time.Time `json:"at"`
}

type Membership struct {
	WorkflowID string    `json:"workflow_id"`
	Title      string    `json:"title,omitempty"`
	Role       string    `json:"role"`
	Phase      string    `json:"phase"`
	CreatedAt  time.Time `json:"created_at"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}
