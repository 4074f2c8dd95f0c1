// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/quickly-vote/middleware"
	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/registry"
)

type ResultsHandler struct {
	reg *registry.Registry
}

func NewResultsHandler(reg *registry.Registry) *ResultsHandler {
	return &ResultsHandler{reg: reg}
}

// ListProposals handles GET /workflows/{id}/proposals
// Cancelled slots are included so indices stay stable.
func (h *ResultsHandler) ListProposals(w http.ResponseWriter, r *http.Request) {
	wf, ok := lookup(w, r, h.reg)
	if !ok {
		return
	}
	middleware.JSONResponse(w, http.StatusOK, toProposals(wf.Proposals()))
}

// GetProposal handles GET /workflows/{id}/proposals/{index}
func (h *ResultsHandler) GetProposal(w http.ResponseWriter, r *http.Request) {
	wf, ok := lookup(w, r, h.reg)
	if !ok {
		return
	}
	index, ok := pathIndex(w, r)
	if !ok {
		return
	}

	p, err := wf.Proposal(index)
	if err != nil {
		workflowError(w, r, "get_proposal", err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, toProposal(index, p))
}

// GetWinner handles GET /workflows/{id}/winner
// Only available once votes are tallied.
func (h *ResultsHandler) GetWinner(w http.ResponseWriter, r *http.Request) {
	wf, ok := lookup(w, r, h.reg)
	if !ok {
		return
	}

	index, err := wf.WinningProposalID()
	if err != nil {
		workflowError(w, r, "get_winner", err)
		return
	}
	p, err := wf.Winner()
	if err != nil {
		workflowError(w, r, "get_winner", err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.Winner{Proposal: toProposal(index, p)})
}

// GetRanking handles GET /workflows/{id}/ranking
// Proposals ordered by vote count; ties keep index order.
func (h *ResultsHandler) GetRanking(w http.ResponseWriter, r *http.Request) {
	wf, ok := lookup(w, r, h.reg)
	if !ok {
		return
	}
	middleware.JSONResponse(w, http.StatusOK, toRanking(wf, wf.RankedProposals()))
}

// GetEvents handles GET /workflows/{id}/events
func (h *ResultsHandler) GetEvents(w http.ResponseWriter, r *http.Request) {
	wf, ok := lookup(w, r, h.reg)
	if !ok {
		return
	}

	events := wf.Events()
	out := make([]models.Event, len(events))
	for i, ev := range events {
		out[i] = toEvent(ev)
	}
	middleware.JSONResponse(w, http.StatusOK, out)
}
