// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth issues and verifies caller tokens.

# Caller Tokens

A caller token binds an identity to an HMAC-SHA256 signature keyed by the
server's token salt:

	token, err := auth.IssueToken("alice", salt) // "alice.<signature>"
	identity, err := auth.VerifyToken(token, salt)

The signature is URL-safe base64 encoded without padding. Since it's
deterministic, the same identity and salt always produce the same token, so
nothing needs to be stored server-side. Identities may contain dots; the
signature is split off at the last one.

# Bearer Header

Clients send the token in the Authorization header:

	Authorization: Bearer alice.<signature>

BearerToken extracts it, returning ErrMissingToken when the header is absent
and ErrInvalidToken when it uses another scheme.
*/
package auth
