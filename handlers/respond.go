// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/danielhkuo/quickly-vote/middleware"
	"github.com/danielhkuo/quickly-vote/registry"
	"github.com/danielhkuo/quickly-vote/workflow"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// statusFor maps a workflow error code to its HTTP status.
func statusFor(code string) int {
	switch code {
	case workflow.CodePhaseViolation,
		workflow.CodeDuplicateRegistration,
		workflow.CodeAlreadyVoted,
		workflow.CodeNotYetVoted,
		workflow.CodeVoteMismatch:
		return http.StatusConflict
	case workflow.CodeAuthorizationViolation:
		return http.StatusForbidden
	case workflow.CodeOutOfRange:
		return http.StatusNotFound
	case workflow.CodeInsufficientVoters:
		return http.StatusPreconditionFailed
	case workflow.CodeInvalidArgument:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// workflowError writes the response for an error returned by a workflow
// operation. Internal failures are logged and hidden from the client.
func workflowError(w http.ResponseWriter, r *http.Request, op string, err error) {
	code := workflow.Code(err)
	status := statusFor(code)
	if status == http.StatusInternalServerError {
		slog.Error("workflow operation failed",
			"operation", op,
			"workflow_id", r.PathValue("id"),
			"error", err,
		)
		middleware.ErrorResponse(w, status, code, "Internal error")
		return
	}
	middleware.ErrorResponse(w, status, code, err.Error())
}

func invalidArgument(w http.ResponseWriter, message string) {
	middleware.ErrorResponse(w, http.StatusBadRequest, workflow.CodeInvalidArgument, message)
}

// decodeBody parses and validates a JSON request body. It writes the error
// response itself and reports whether the handler should continue.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := middleware.ParseJSONBody(r, v); err != nil {
		invalidArgument(w, "Invalid JSON")
		return false
	}
	if err := validate.Struct(v); err != nil {
		invalidArgument(w, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid request"
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

// caller returns the authenticated identity. Routes are wrapped with
// middleware.WithCaller, so a missing identity means a wiring mistake.
func caller(w http.ResponseWriter, r *http.Request) (string, bool) {
	identity, ok := middleware.Caller(r.Context())
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, middleware.CodeUnauthorized, "Bearer token required")
		return "", false
	}
	return identity, true
}

// lookup resolves the {id} path value to a workflow.
func lookup(w http.ResponseWriter, r *http.Request, reg *registry.Registry) (*workflow.Workflow, bool) {
	id := r.PathValue("id")
	if id == "" {
		invalidArgument(w, "workflow id is required")
		return nil, false
	}
	wf, err := reg.Get(r.Context(), id)
	if errors.Is(err, registry.ErrWorkflowNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, middleware.CodeNotFound, "Workflow not found")
		return nil, false
	}
	if err != nil {
		slog.Error("failed to look up workflow", "workflow_id", id, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, workflow.CodeInternal, "Internal error")
		return nil, false
	}
	return wf, true
}

// pathIndex parses the {index} path value. Range checking is left to the
// workflow.
func pathIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		invalidArgument(w, "proposal index must be an integer")
		return 0, false
	}
	return index, true
}
