// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/danielhkuo/quickly-vote/middleware"
	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/workflow"

	tu "github.com/danielhkuo/quickly-vote/testutil"
)

func intPtr(i int) *int { return &i }

func TestRegisterProposal(t *testing.T) {
	env := tu.SetupEnv(t)
	handler := NewVotingHandler(env.Registry, env.Metrics)
	wf := tu.CreateTestWorkflow(t, env.Registry, "alice", "bob")

	propose := func(description string) models.RegisterProposalRequest {
		return models.RegisterProposalRequest{Description: description}
	}

	// Registration not open yet
	req := tu.MakeRequest("POST", "/workflows/"+wf.ID()+"/proposals", propose("Pizza"), tu.AuthHeaders(t, "bob"))
	w := serve(handler.RegisterProposal, req, "id", wf.ID())
	tu.AssertErrorCode(t, w, http.StatusConflict, workflow.CodePhaseViolation)

	if err := wf.StartProposalRegistration(t.Context(), "alice"); err != nil {
		t.Fatal(err)
	}

	for i, desc := range []string{"Pizza", "Sushi"} {
		req := tu.MakeRequest("POST", "/workflows/"+wf.ID()+"/proposals", propose(desc), tu.AuthHeaders(t, "bob"))
		w := serve(handler.RegisterProposal, req, "id", wf.ID())
		tu.AssertStatus(t, w, http.StatusCreated)

		var resp models.RegisterProposalResponse
		tu.AssertJSON(t, w, &resp)
		if resp.ProposalID != i {
			t.Errorf("Expected proposal_id %d, got %d", i, resp.ProposalID)
		}
	}

	t.Run("unregistered caller", func(t *testing.T) {
		req := tu.MakeRequest("POST", "/workflows/"+wf.ID()+"/proposals", propose("Tacos"), tu.AuthHeaders(t, "mallory"))
		w := serve(handler.RegisterProposal, req, "id", wf.ID())
		tu.AssertErrorCode(t, w, http.StatusForbidden, workflow.CodeAuthorizationViolation)
	})

	t.Run("empty description", func(t *testing.T) {
		req := tu.MakeRequest("POST", "/workflows/"+wf.ID()+"/proposals", propose(""), tu.AuthHeaders(t, "bob"))
		w := serve(handler.RegisterProposal, req, "id", wf.ID())
		tu.AssertErrorCode(t, w, http.StatusBadRequest, workflow.CodeInvalidArgument)
	})

	if got := len(wf.Proposals()); got != 2 {
		t.Errorf("Expected 2 proposals, got %d", got)
	}
}

func TestCancelProposal(t *testing.T) {
	env := tu.SetupEnv(t)
	handler := NewVotingHandler(env.Registry, env.Metrics)
	wf := tu.CreateTestWorkflow(t, env.Registry, "alice", "bob")
	if err := wf.StartProposalRegistration(t.Context(), "alice"); err != nil {
		t.Fatal(err)
	}
	for _, d := range []string{"Pizza", "Sushi", "Tacos"} {
		if _, err := wf.RegisterProposal(t.Context(), "bob", d); err != nil {
			t.Fatal(err)
		}
	}

	cancel := func(caller, index string) *models.Proposal {
		t.Helper()
		req := tu.MakeRequest("DELETE", "/workflows/"+wf.ID()+"/proposals/"+index, nil, tu.AuthHeaders(t, caller))
		w := serve(handler.CancelProposal, req, "id", wf.ID(), "index", index)
		if w.Code != http.StatusOK {
			return nil
		}
		var resp models.Proposal
		tu.AssertJSON(t, w, &resp)
		return &resp
	}

	got := cancel("bob", "1")
	if got == nil || !got.Cancelled || got.ProposalID != 1 || got.Description != "" {
		t.Fatalf("Unexpected cancel response %+v", got)
	}

	// Indices do not shift
	p, err := wf.Proposal(2)
	if err != nil || p.Description != "Tacos" {
		t.Errorf("Expected Tacos at index 2, got %+v (%v)", p, err)
	}

	tests := []struct {
		name       string
		caller     string
		index      string
		wantStatus int
		wantCode   string
	}{
		{"out of range", "bob", "3", http.StatusNotFound, workflow.CodeOutOfRange},
		{"negative", "bob", "-1", http.StatusNotFound, workflow.CodeOutOfRange},
		{"not a number", "bob", "abc", http.StatusBadRequest, workflow.CodeInvalidArgument},
		{"unregistered", "mallory", "0", http.StatusForbidden, workflow.CodeAuthorizationViolation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tu.MakeRequest("DELETE", "/workflows/"+wf.ID()+"/proposals/"+tt.index, nil, tu.AuthHeaders(t, tt.caller))
			w := serve(handler.CancelProposal, req, "id", wf.ID(), "index", tt.index)
			tu.AssertErrorCode(t, w, tt.wantStatus, tt.wantCode)
		})
	}
}

func TestCastVote(t *testing.T) {
	env := tu.SetupEnv(t)
	handler := NewVotingHandler(env.Registry, env.Metrics)
	wf := tu.CreateTestWorkflow(t, env.Registry, "alice", "bob", "carol")
	tu.OpenVoting(t, wf, "bob", "Pizza", "Sushi")

	vote := func(caller string, body interface{}) *models.Voter {
		t.Helper()
		req := tu.MakeRequest("POST", "/workflows/"+wf.ID()+"/votes", body, tu.AuthHeaders(t, caller))
		w := serve(handler.CastVote, req, "id", wf.ID())
		tu.AssertStatus(t, w, http.StatusOK)
		var resp models.Voter
		tu.AssertJSON(t, w, &resp)
		return &resp
	}

	v := vote("bob", models.VoteRequest{ProposalID: intPtr(1)})
	if !v.HasVoted || v.VotedProposalID == nil || *v.VotedProposalID != 1 {
		t.Errorf("Unexpected voter after vote %+v", v)
	}
	// Index 0 is a valid choice
	v = vote("carol", models.VoteRequest{ProposalID: intPtr(0)})
	if v.VotedProposalID == nil || *v.VotedProposalID != 0 {
		t.Errorf("Expected vote for 0, got %+v", v)
	}

	tests := []struct {
		name       string
		caller     string
		body       interface{}
		wantStatus int
		wantCode   string
	}{
		{"already voted", "bob", models.VoteRequest{ProposalID: intPtr(0)}, http.StatusConflict, workflow.CodeAlreadyVoted},
		{"out of range", "alice", models.VoteRequest{ProposalID: intPtr(5)}, http.StatusNotFound, workflow.CodeOutOfRange},
		{"missing proposal_id", "alice", map[string]string{}, http.StatusBadRequest, workflow.CodeInvalidArgument},
		{"negative proposal_id", "alice", models.VoteRequest{ProposalID: intPtr(-1)}, http.StatusNotFound, workflow.CodeOutOfRange},
		{"unregistered", "mallory", models.VoteRequest{ProposalID: intPtr(0)}, http.StatusForbidden, workflow.CodeAuthorizationViolation},
		{"unregistered negative proposal_id", "mallory", models.VoteRequest{ProposalID: intPtr(-1)}, http.StatusForbidden, workflow.CodeAuthorizationViolation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tu.MakeRequest("POST", "/workflows/"+wf.ID()+"/votes", tt.body, tu.AuthHeaders(t, tt.caller))
			w := serve(handler.CastVote, req, "id", wf.ID())
			tu.AssertErrorCode(t, w, tt.wantStatus, tt.wantCode)
		})
	}

	ps := wf.Proposals()
	if ps[0].VoteCount != 1 || ps[1].VoteCount != 1 {
		t.Errorf("Expected one vote each, got %+v", ps)
	}
}

func TestCastVote_BeforeVoting(t *testing.T) {
	env := tu.SetupEnv(t)
	handler := NewVotingHandler(env.Registry, env.Metrics)
	wf := tu.CreateTestWorkflow(t, env.Registry, "alice", "bob")

	for _, index := range []int{0, -1} {
		req := tu.MakeRequest("POST", "/workflows/"+wf.ID()+"/votes", models.VoteRequest{ProposalID: intPtr(index)}, tu.AuthHeaders(t, "bob"))
		w := serve(handler.CastVote, req, "id", wf.ID())
		tu.AssertErrorCode(t, w, http.StatusConflict, workflow.CodePhaseViolation)
	}
}

func TestWithdrawVote(t *testing.T) {
	env := tu.SetupEnv(t)
	handler := NewVotingHandler(env.Registry, env.Metrics)
	wf := tu.CreateTestWorkflow(t, env.Registry, "alice", "bob")
	tu.OpenVoting(t, wf, "bob", "Pizza", "Sushi")

	withdraw := func(caller string, index int) *httptest.ResponseRecorder {
		req := tu.MakeRequest("DELETE", "/workflows/"+wf.ID()+"/votes", models.VoteRequest{ProposalID: intPtr(index)}, tu.AuthHeaders(t, caller))
		return serve(handler.WithdrawVote, req, "id", wf.ID())
	}

	tu.AssertErrorCode(t, withdraw("bob", 0), http.StatusConflict, workflow.CodeNotYetVoted)

	if err := wf.CastVote(t.Context(), "bob", 1); err != nil {
		t.Fatal(err)
	}

	tu.AssertErrorCode(t, withdraw("bob", 0), http.StatusConflict, workflow.CodeVoteMismatch)
	tu.AssertErrorCode(t, withdraw("bob", -1), http.StatusConflict, workflow.CodeVoteMismatch)
	tu.AssertErrorCode(t, withdraw("mallory", -1), http.StatusForbidden, workflow.CodeAuthorizationViolation)

	res := withdraw("bob", 1)
	tu.AssertStatus(t, res, http.StatusOK)
	var v models.Voter
	tu.AssertJSON(t, res, &v)
	if v.HasVoted || v.VotedProposalID != nil {
		t.Errorf("Expected cleared vote, got %+v", v)
	}

	p, _ := wf.Proposal(1)
	if p.VoteCount != 0 {
		t.Errorf("Expected count 0 after withdraw, got %d", p.VoteCount)
	}

	// Voting again is allowed after a withdrawal
	if err := wf.CastVote(t.Context(), "bob", 0); err != nil {
		t.Errorf("Expected re-vote to succeed: %v", err)
	}
}

func TestVotingHandler_UnknownWorkflow(t *testing.T) {
	env := tu.SetupEnv(t)
	handler := NewVotingHandler(env.Registry, env.Metrics)

	routes := []struct {
		method string
		h      http.HandlerFunc
		body   interface{}
	}{
		{"POST", handler.RegisterProposal, models.RegisterProposalRequest{Description: "x"}},
		{"POST", handler.CastVote, models.VoteRequest{ProposalID: intPtr(0)}},
		{"DELETE", handler.WithdrawVote, models.VoteRequest{ProposalID: intPtr(0)}},
		{"DELETE", handler.CancelProposal, nil},
	}
	for i, r := range routes {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			req := tu.MakeRequest(r.method, "/workflows/nope", r.body, tu.AuthHeaders(t, "alice"))
			w := serve(r.h, req, "id", "nope", "index", "0")
			tu.AssertErrorCode(t, w, http.StatusNotFound, middleware.CodeNotFound)
		})
	}
}
