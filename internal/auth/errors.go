package auth

import "errors"

// Rejection reasons. Callers log and count them, but every one of them is
// reported to the client as the same generic 401.
var (
	ErrMissingCredential   = errors.New("credential missing")
	ErrMalformedCredential = errors.New("credential malformed")
	ErrInvalidSignature    = errors.New("credential signature invalid")
	ErrExpiredCredential   = errors.New("credential expired")
)

// ErrSessionNotFound is returned by session stores for unknown or expired ids.
var ErrSessionNotFound = errors.New("session not found")

// IsRejection reports whether err is one of the rejection reasons, as opposed
// to an infrastructure failure (e.g. the session store being unreachable).
func IsRejection(err error) bool {
	return errors.Is(err, ErrMissingCredential) ||
		errors.Is(err, ErrMalformedCredential) ||
		errors.Is(err, ErrInvalidSignature) ||
		errors.Is(err, ErrExpiredCredential)
}

// RejectReason is the diagnostic label for a rejection.
func RejectReason(err error) string {
	switch {
	case errors.Is(err, ErrMissingCredential):
		return "missing"
	case errors.Is(err, ErrMalformedCredential):
		return "malformed"
	case errors.Is(err, ErrInvalidSignature):
		return "invalid_signature"
	case errors.Is(err, ErrExpiredCredential):
		return "expired"
	default:
		return "error"
	}
}
