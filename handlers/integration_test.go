// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"testing"

	"github.com/neilotoole/slogt"

	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/registry"
	"github.com/danielhkuo/quickly-vote/workflow"

	tu "github.com/danielhkuo/quickly-vote/testutil"
)

// TestFullVotingWorkflow tests the complete end-to-end workflow:
// 1. Create workflow
// 2. Register voters
// 3. Register and cancel proposals
// 4. Vote, withdraw, and vote again
// 5. Close voting and tally
// 6. Verify winner and ranking
// 7. Restart from the journal and verify the same state
func TestFullVotingWorkflow(t *testing.T) {
	env := tu.SetupEnv(t)
	workflowHandler := NewWorkflowHandler(env.Registry, env.Metrics)
	votingHandler := NewVotingHandler(env.Registry, env.Metrics)
	resultsHandler := NewResultsHandler(env.Registry)

	// Step 1: Create a workflow
	req := tu.MakeRequest("POST", "/workflows", models.CreateWorkflowRequest{Title: "Team lunch"}, tu.AuthHeaders(t, "alice"))
	w := serve(workflowHandler.CreateWorkflow, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("Step 1 - Create workflow failed: %d - %s", w.Code, w.Body.String())
	}
	var created models.CreateWorkflowResponse
	tu.AssertJSON(t, w, &created)
	id := created.WorkflowID
	t.Logf("Step 1 - Created workflow: %s", id)

	// Step 2: Register voters
	for _, voter := range []string{"bob", "carol"} {
		req := tu.MakeRequest("POST", "/workflows/"+id+"/voters", models.RegisterVoterRequest{Identity: voter}, tu.AuthHeaders(t, "alice"))
		w := serve(workflowHandler.RegisterVoter, req, "id", id)
		if w.Code != http.StatusCreated {
			t.Fatalf("Step 2 - Register %s failed: %d - %s", voter, w.Code, w.Body.String())
		}
	}

	phase := func(action string) {
		t.Helper()
		req := tu.MakeRequest("POST", "/workflows/"+id+"/phase/"+action, nil, tu.AuthHeaders(t, "alice"))
		w := serve(workflowHandler.ChangePhase, req, "id", id, "action", action)
		if w.Code != http.StatusOK {
			t.Fatalf("Phase %s failed: %d - %s", action, w.Code, w.Body.String())
		}
	}

	// Step 3: Proposals
	phase(models.ActionStartProposals)
	for _, p := range []struct{ by, desc string }{{"bob", "Pizza"}, {"carol", "Sushi"}, {"alice", "Tacos"}} {
		req := tu.MakeRequest("POST", "/workflows/"+id+"/proposals", models.RegisterProposalRequest{Description: p.desc}, tu.AuthHeaders(t, p.by))
		w := serve(votingHandler.RegisterProposal, req, "id", id)
		if w.Code != http.StatusCreated {
			t.Fatalf("Step 3 - Proposal %s failed: %d - %s", p.desc, w.Code, w.Body.String())
		}
	}
	req = tu.MakeRequest("DELETE", "/workflows/"+id+"/proposals/2", nil, tu.AuthHeaders(t, "alice"))
	w = serve(votingHandler.CancelProposal, req, "id", id, "index", "2")
	if w.Code != http.StatusOK {
		t.Fatalf("Step 3 - Cancel failed: %d - %s", w.Code, w.Body.String())
	}
	phase(models.ActionEndProposals)
	phase(models.ActionStartVoting)

	// Step 4: Votes
	vote := func(method, voter string, index int) {
		t.Helper()
		req := tu.MakeRequest(method, "/workflows/"+id+"/votes", models.VoteRequest{ProposalID: intPtr(index)}, tu.AuthHeaders(t, voter))
		h := votingHandler.CastVote
		if method == "DELETE" {
			h = votingHandler.WithdrawVote
		}
		w := serve(h, req, "id", id)
		if w.Code != http.StatusOK {
			t.Fatalf("Step 4 - %s vote %s/%d failed: %d - %s", method, voter, index, w.Code, w.Body.String())
		}
	}
	vote("POST", "bob", 0)
	vote("POST", "carol", 0)
	vote("DELETE", "carol", 0)
	vote("POST", "carol", 1)
	vote("POST", "alice", 1)

	// Step 5: Close and tally
	phase(models.ActionEndVoting)
	phase(models.ActionTally)

	// Step 6: Results
	req = tu.MakeRequest("GET", "/workflows/"+id+"/winner", nil, tu.AuthHeaders(t, "bob"))
	w = serve(resultsHandler.GetWinner, req, "id", id)
	tu.AssertStatus(t, w, http.StatusOK)
	var winner models.Winner
	tu.AssertJSON(t, w, &winner)
	if winner.ProposalID != 1 || winner.Description != "Sushi" || winner.VoteCount != 2 {
		t.Fatalf("Step 6 - Unexpected winner %+v", winner)
	}

	req = tu.MakeRequest("GET", "/workflows/"+id+"/ranking", nil, tu.AuthHeaders(t, "bob"))
	w = serve(resultsHandler.GetRanking, req, "id", id)
	var ranking models.Ranking
	tu.AssertJSON(t, w, &ranking)
	if ranking.Proposals[0].ProposalID != 1 || ranking.Proposals[1].ProposalID != 0 || ranking.Proposals[2].ProposalID != 2 {
		t.Errorf("Step 6 - Unexpected ranking %+v", ranking.Proposals)
	}

	// Step 7: Restart from the journal
	live, err := env.Registry.Get(t.Context(), id)
	if err != nil {
		t.Fatal(err)
	}
	restarted := registry.New(registry.Config{Store: env.Journal, Logger: slogt.New(t)})
	if _, err := restarted.Load(t.Context()); err != nil {
		t.Fatalf("Step 7 - Load failed: %v", err)
	}
	restored, err := restarted.Get(t.Context(), id)
	if err != nil {
		t.Fatalf("Step 7 - Restored workflow missing: %v", err)
	}
	if restored.Phase() != workflow.VotesTallied {
		t.Errorf("Step 7 - Expected tallied phase, got %s", restored.Phase())
	}
	winnerID, err := restored.WinningProposalID()
	if err != nil || winnerID != 1 {
		t.Errorf("Step 7 - Expected winner 1, got %d (%v)", winnerID, err)
	}
	if len(restored.Events()) != len(live.Events()) {
		t.Errorf("Step 7 - Expected %d events, got %d", len(live.Events()), len(restored.Events()))
	}
}
