// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Quickly Vote API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(reg, m, cfg)

# Endpoints

Operations (no token):

	GET /health
	GET /metrics
	GET /

Workflow management (admin):

	POST /workflows                          - Create workflow
	POST /workflows/{id}/voters              - Register voter
	POST /workflows/{id}/phase/{action}      - start-proposals, end-proposals,
	                                           start-voting, end-voting, tally

Proposals and votes (registered voters):

	POST   /workflows/{id}/proposals          - Register proposal
	DELETE /workflows/{id}/proposals/{index}  - Cancel proposal
	POST   /workflows/{id}/votes              - Cast vote
	DELETE /workflows/{id}/votes              - Withdraw vote

Reads (any authenticated caller):

	GET /workflows/{id}                    - Phase, voters count, proposals
	GET /workflows/{id}/voters/{identity}  - Voter status
	GET /workflows/{id}/proposals          - Proposal list
	GET /workflows/{id}/proposals/{index}  - One proposal
	GET /workflows/{id}/winner             - Winner (tallied only)
	GET /workflows/{id}/ranking            - Proposals by vote count
	GET /workflows/{id}/events             - Event journal
	GET /me/workflows                      - Caller's workflows

# Middleware

Every API route is wrapped, outermost first, with request logging, request
metrics, and bearer-token authentication:

	middleware.WithLogging(middleware.WithMetrics(m, middleware.WithCaller(cfg.TokenSalt, h)))
*/
package router
