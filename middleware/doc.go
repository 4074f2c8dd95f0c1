// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (method, path, remote) and completion (status, duration_ms).

# Metrics

WithMetrics counts requests and observes latency, labelled by the matched
mux pattern:

	mux.HandleFunc("GET /workflows/{id}", middleware.WithMetrics(m, handler))

# Caller Identity

WithCaller verifies the bearer token and stores the caller identity in the
request context; handlers read it back with Caller:

	mux.HandleFunc("POST /workflows", middleware.WithCaller(salt, handler))

	caller, ok := middleware.Caller(r.Context())

Requests without a valid token receive 401 with code "unauthorized".

# CORS Middleware

Enable cross-origin requests for frontend access:

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

Allows methods GET, POST, PUT, DELETE, OPTIONS with headers
Content-Type and Authorization.

# JSON Helpers

Write JSON responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "invalid_argument", "message")

Parse JSON request bodies:

	var req models.RegisterProposalRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "invalid_argument", "Invalid JSON")
		return
	}

# Client IP Extraction

Get the original client IP (handles X-Forwarded-For, X-Real-IP):

	ip := middleware.GetClientIP(r)

Used as the remote address in request logs.
*/
package middleware
