// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/quickly-vote/metrics"
	"github.com/danielhkuo/quickly-vote/middleware"
	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/registry"
	"github.com/danielhkuo/quickly-vote/workflow"
)

type WorkflowHandler struct {
	reg     *registry.Registry
	metrics *metrics.Metrics
}

func NewWorkflowHandler(reg *registry.Registry, m *metrics.Metrics) *WorkflowHandler {
	return &WorkflowHandler{reg: reg, metrics: m}
}

// phaseActions maps the {action} path value to the workflow transition.
var phaseActions = map[string]struct {
	op  string
	run func(wf *workflow.Workflow, ctx context.Context, caller string) error
}{
	models.ActionStartProposals: {"start_proposal_registration", (*workflow.Workflow).StartProposalRegistration},
	models.ActionEndProposals:   {"end_proposal_registration", (*workflow.Workflow).EndProposalRegistration},
	models.ActionStartVoting:    {"start_voting_session", (*workflow.Workflow).StartVotingSession},
	models.ActionEndVoting:      {"end_voting_session", (*workflow.Workflow).EndVotingSession},
	models.ActionTally:          {"tally_votes", (*workflow.Workflow).TallyVotes},
}

// CreateWorkflow handles POST /workflows
// The caller becomes the administrator and first registered voter.
func (h *WorkflowHandler) CreateWorkflow(w http.ResponseWriter, r *http.Request) {
	admin, ok := caller(w, r)
	if !ok {
		return
	}

	var req models.CreateWorkflowRequest
	if !decodeBody(w, r, &req) {
		return
	}

	wf, err := h.reg.Create(r.Context(), admin, req.Title)
	h.metrics.Operation("create_workflow", err)
	if err != nil {
		workflowError(w, r, "create_workflow", err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.CreateWorkflowResponse{
		WorkflowID: wf.ID(),
		Admin:      wf.Admin(),
		Phase:      wf.Phase().String(),
	})
}

// GetWorkflow handles GET /workflows/{id}
func (h *WorkflowHandler) GetWorkflow(w http.ResponseWriter, r *http.Request) {
	wf, ok := lookup(w, r, h.reg)
	if !ok {
		return
	}
	middleware.JSONResponse(w, http.StatusOK, toWorkflow(wf.Snapshot()))
}

// RegisterVoter handles POST /workflows/{id}/voters
// Admin only, while voters are being registered.
func (h *WorkflowHandler) RegisterVoter(w http.ResponseWriter, r *http.Request) {
	admin, ok := caller(w, r)
	if !ok {
		return
	}
	wf, ok := lookup(w, r, h.reg)
	if !ok {
		return
	}

	var req models.RegisterVoterRequest
	if !decodeBody(w, r, &req) {
		return
	}

	err := wf.RegisterVoter(r.Context(), admin, req.Identity)
	h.metrics.Operation("register_voter", err)
	if err != nil {
		workflowError(w, r, "register_voter", err)
		return
	}

	identity := strings.TrimSpace(req.Identity)
	slog.Info("voter registered", "workflow_id", wf.ID(), "identity", identity)

	v, _ := wf.Voter(identity)
	middleware.JSONResponse(w, http.StatusCreated, toVoter(identity, v))
}

// GetVoter handles GET /workflows/{id}/voters/{identity}
func (h *WorkflowHandler) GetVoter(w http.ResponseWriter, r *http.Request) {
	wf, ok := lookup(w, r, h.reg)
	if !ok {
		return
	}

	identity := strings.TrimSpace(r.PathValue("identity"))
	v, found := wf.Voter(identity)
	if !found {
		middleware.ErrorResponse(w, http.StatusNotFound, middleware.CodeNotFound, "Voter not registered")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, toVoter(identity, v))
}

// ChangePhase handles POST /workflows/{id}/phase/{action}
func (h *WorkflowHandler) ChangePhase(w http.ResponseWriter, r *http.Request) {
	admin, ok := caller(w, r)
	if !ok {
		return
	}

	action, known := phaseActions[r.PathValue("action")]
	if !known {
		invalidArgument(w, "unknown phase action: "+r.PathValue("action"))
		return
	}

	wf, ok := lookup(w, r, h.reg)
	if !ok {
		return
	}

	err := action.run(wf, r.Context(), admin)
	h.metrics.Operation(action.op, err)
	if err != nil {
		workflowError(w, r, action.op, err)
		return
	}

	phase := wf.Phase()
	slog.Info("workflow phase changed", "workflow_id", wf.ID(), "phase", phase.String())

	middleware.JSONResponse(w, http.StatusOK, models.PhaseResponse{
		WorkflowID: wf.ID(),
		Phase:      phase.String(),
	})
}
