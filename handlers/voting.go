// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/quickly-vote/metrics"
	"github.com/danielhkuo/quickly-vote/middleware"
	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/registry"
)

type VotingHandler struct {
	reg     *registry.Registry
	metrics *metrics.Metrics
}

func NewVotingHandler(reg *registry.Registry, m *metrics.Metrics) *VotingHandler {
	return &VotingHandler{reg: reg, metrics: m}
}

// RegisterProposal handles POST /workflows/{id}/proposals
// Any registered voter may propose while proposal registration is open.
func (h *VotingHandler) RegisterProposal(w http.ResponseWriter, r *http.Request) {
	voter, ok := caller(w, r)
	if !ok {
		return
	}
	wf, ok := lookup(w, r, h.reg)
	if !ok {
		return
	}

	var req models.RegisterProposalRequest
	if !decodeBody(w, r, &req) {
		return
	}

	index, err := wf.RegisterProposal(r.Context(), voter, req.Description)
	h.metrics.Operation("register_proposal", err)
	if err != nil {
		workflowError(w, r, "register_proposal", err)
		return
	}

	slog.Info("proposal registered", "workflow_id", wf.ID(), "proposal_id", index, "voter", voter)

	middleware.JSONResponse(w, http.StatusCreated, models.RegisterProposalResponse{
		ProposalID: index,
	})
}

// CancelProposal handles DELETE /workflows/{id}/proposals/{index}
// The slot keeps its index; later proposals do not shift.
func (h *VotingHandler) CancelProposal(w http.ResponseWriter, r *http.Request) {
	voter, ok := caller(w, r)
	if !ok {
		return
	}
	wf, ok := lookup(w, r, h.reg)
	if !ok {
		return
	}
	index, ok := pathIndex(w, r)
	if !ok {
		return
	}

	err := wf.CancelProposal(r.Context(), voter, index)
	h.metrics.Operation("cancel_proposal", err)
	if err != nil {
		workflowError(w, r, "cancel_proposal", err)
		return
	}

	slog.Info("proposal cancelled", "workflow_id", wf.ID(), "proposal_id", index, "voter", voter)

	p, err := wf.Proposal(index)
	if err != nil {
		workflowError(w, r, "cancel_proposal", err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, toProposal(index, p))
}

// CastVote handles POST /workflows/{id}/votes
func (h *VotingHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	voter, ok := caller(w, r)
	if !ok {
		return
	}
	wf, ok := lookup(w, r, h.reg)
	if !ok {
		return
	}

	var req models.VoteRequest
	if !decodeBody(w, r, &req) {
		return
	}

	err := wf.CastVote(r.Context(), voter, *req.ProposalID)
	h.metrics.Operation("cast_vote", err)
	if err != nil {
		workflowError(w, r, "cast_vote", err)
		return
	}

	slog.Info("vote cast", "workflow_id", wf.ID(), "proposal_id", *req.ProposalID, "voter", voter)

	v, _ := wf.Voter(voter)
	middleware.JSONResponse(w, http.StatusOK, toVoter(voter, v))
}

// WithdrawVote handles DELETE /workflows/{id}/votes
// The body must name the proposal the caller voted for.
func (h *VotingHandler) WithdrawVote(w http.ResponseWriter, r *http.Request) {
	voter, ok := caller(w, r)
	if !ok {
		return
	}
	wf, ok := lookup(w, r, h.reg)
	if !ok {
		return
	}

	var req models.VoteRequest
	if !decodeBody(w, r, &req) {
		return
	}

	err := wf.WithdrawVote(r.Context(), voter, *req.ProposalID)
	h.metrics.Operation("withdraw_vote", err)
	if err != nil {
		workflowError(w, r, "withdraw_vote", err)
		return
	}

	slog.Info("vote withdrawn", "workflow_id", wf.ID(), "proposal_id", *req.ProposalID, "voter", voter)

	v, _ := wf.Voter(voter)
	middleware.JSONResponse(w, http.StatusOK, toVoter(voter, v))
}
