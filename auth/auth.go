// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"
)

var (
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
)

// Sign returns the HMAC-SHA256 of identity under salt, URL-safe base64
// without padding.
func Sign(identity, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(identity))
	sum := h.Sum(nil)
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}

// IssueToken creates a caller token of the form "<identity>.<signature>".
func IssueToken(identity, salt string) (string, error) {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return "", ErrInvalidToken
	}
	return identity + "." + Sign(identity, salt), nil
}

// VerifyToken checks the signature of token and returns the identity it
// carries. Identities may contain dots; the signature never does.
func VerifyToken(token, salt string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrMissingToken
	}
	i := strings.LastIndexByte(token, '.')
	if i <= 0 || i == len(token)-1 {
		return "", ErrInvalidToken
	}
	identity, sig := token[:i], token[i+1:]
	if !hmac.Equal([]byte(sig), []byte(Sign(identity, salt))) {
		return "", ErrInvalidToken
	}
	return identity, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	const prefix = "Bearer "
	if header == "" {
		return "", ErrMissingToken
	}
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", ErrInvalidToken
	}
	token := strings.TrimSpace(header[len(prefix):])
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}
