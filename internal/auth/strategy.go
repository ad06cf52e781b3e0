// Package auth is the authentication and authorization core: principals,
// the two interchangeable artifact strategies (signed bearer tokens and
// server-side sessions) and the ownership authorizer.
package auth

import (
	"net/http"
	"strings"
	"time"
)

// Authenticator resolves the artifact carried by a request into a principal.
// A failed resolution returns one of the rejection errors, or an
// infrastructure error that is none of them.
type Authenticator interface {
	Authenticate(r *http.Request) (Principal, error)
}

// Strategy mints, resolves and discards artifacts. Implementations must be
// safe for concurrent use.
type Strategy interface {
	Authenticator

	Name() string

	// Issue binds p to the client, either by returning a token to hand
	// back in the body or by setting a cookie on w.
	Issue(w http.ResponseWriter, r *http.Request, p Principal) (Issued, error)

	// Revoke discards the artifact presented on r. revoked is false when
	// there was nothing valid to discard; that is not an error.
	Revoke(w http.ResponseWriter, r *http.Request) (revoked bool, err error)
}

// Issued describes a freshly minted artifact. Token is empty for strategies
// that deliver the artifact out of band (cookies).
type Issued struct {
	Token     string
	TokenType string
	ExpiresAt time.Time
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", ErrMissingCredential
	}

	scheme, raw, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrMalformedCredential
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrMalformedCredential
	}

	return raw, nil
}
