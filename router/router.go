// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/quickly-vote/cliparse"
	"github.com/danielhkuo/quickly-vote/handlers"
	"github.com/danielhkuo/quickly-vote/metrics"
	"github.com/danielhkuo/quickly-vote/middleware"
	"github.com/danielhkuo/quickly-vote/registry"
)

func NewRouter(reg *registry.Registry, m *metrics.Metrics, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	workflowHandler := handlers.NewWorkflowHandler(reg, m)
	votingHandler := handlers.NewVotingHandler(reg, m)
	resultsHandler := handlers.NewResultsHandler(reg)
	membershipHandler := handlers.NewMembershipHandler(reg)

	// Authenticated API route: logging, metrics, then caller identity
	api := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.WithMetrics(m, middleware.WithCaller(cfg.TokenSalt, h)))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Prometheus scrape endpoint
	mux.Handle("GET /metrics", m.Handler())

	// Workflow management (admin operations)
	mux.HandleFunc("POST /workflows", api(workflowHandler.CreateWorkflow))
	mux.HandleFunc("GET /workflows/{id}", api(workflowHandler.GetWorkflow))
	mux.HandleFunc("POST /workflows/{id}/voters", api(workflowHandler.RegisterVoter))
	mux.HandleFunc("GET /workflows/{id}/voters/{identity}", api(workflowHandler.GetVoter))
	mux.HandleFunc("POST /workflows/{id}/phase/{action}", api(workflowHandler.ChangePhase))

	// Proposals and votes (registered voters)
	mux.HandleFunc("POST /workflows/{id}/proposals", api(votingHandler.RegisterProposal))
	mux.HandleFunc("DELETE /workflows/{id}/proposals/{index}", api(votingHandler.CancelProposal))
	mux.HandleFunc("POST /workflows/{id}/votes", api(votingHandler.CastVote))
	mux.HandleFunc("DELETE /workflows/{id}/votes", api(votingHandler.WithdrawVote))

	// Results and journal
	mux.HandleFunc("GET /workflows/{id}/proposals", api(resultsHandler.ListProposals))
	mux.HandleFunc("GET /workflows/{id}/proposals/{index}", api(resultsHandler.GetProposal))
	mux.HandleFunc("GET /workflows/{id}/winner", api(resultsHandler.GetWinner))
	mux.HandleFunc("GET /workflows/{id}/ranking", api(resultsHandler.GetRanking))
	mux.HandleFunc("GET /workflows/{id}/events", api(resultsHandler.GetEvents))

	// Memberships
	mux.HandleFunc("GET /me/workflows", api(membershipHandler.GetMyWorkflows))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("quickly-vote API v1"))
	})

	return mux
}
