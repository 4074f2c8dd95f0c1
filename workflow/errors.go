// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package workflow

import "errors"

var (
	ErrPhaseViolation         = errors.New("operation not allowed in current phase")
	ErrAuthorizationViolation = errors.New("caller not authorized")
	ErrDuplicateRegistration  = errors.New("voter already registered")
	ErrAlreadyVoted           = errors.New("voter has already voted")
	ErrNotYetVoted            = errors.New("voter has not voted")
	ErrVoteMismatch           = errors.New("proposal does not match recorded vote")
	ErrOutOfRange             = errors.New("proposal index out of range")
	ErrInsufficientVoters     = errors.New("at least two registered voters required")
	ErrInvalidArgument        = errors.New("invalid argument")
)

// Error codes returned by Code.
const (
	CodePhaseViolation         = "phase_violation"
	CodeAuthorizationViolation = "authorization_violation"
	CodeDuplicateRegistration  = "duplicate_registration"
	CodeAlreadyVoted           = "already_voted"
	CodeNotYetVoted            = "not_yet_voted"
	CodeVoteMismatch           = "vote_mismatch"
	CodeOutOfRange             = "out_of_range"
	CodeInsufficientVoters     = "insufficient_voters"
	CodeInvalidArgument        = "invalid_argument"
	CodeInternal               = "internal"
)

var errorCodes = []struct {
	err  error
	code string
}{
	{ErrPhaseViolation, CodePhaseViolation},
	{ErrAuthorizationViolation, CodeAuthorizationViolation},
	{ErrDuplicateRegistration, CodeDuplicateRegistration},
	{ErrAlreadyVoted, CodeAlreadyVoted},
	{ErrNotYetVoted, CodeNotYetVoted},
	{ErrVoteMismatch, CodeVoteMismatch},
	{ErrOutOfRange, CodeOutOfRange},
	{ErrInsufficientVoters, CodeInsufficientVoters},
	{ErrInvalidArgument, CodeInvalidArgument},
}

// Code returns the stable code for a workflow error, or CodeInternal for
// anything else (journal failures included).
func Code(err error) string {
	if err == nil {
		return ""
	}
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return CodeInternal
}
