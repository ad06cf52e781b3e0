// Package apperr is the error taxonomy shared by handlers and middlewares.
// Stores and services return plain sentinel errors; the HTTP layer wraps
// them in an *Error with a Kind so the response status and the client
// facing message are decided in one place.
package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation_error"
	case KindAuthentication:
		return "authentication_error"
	case KindAuthorization:
		return "authorization_error"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal_error"
	}
}

// Status maps a kind onto the HTTP status it is reported with.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// E builds an *Error. err may be nil.
func E(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(message string) *Error { return E(KindValidation, message, nil) }

func Unauthenticated(message string) *Error { return E(KindAuthentication, message, nil) }

func Forbidden(message string) *Error { return E(KindAuthorization, message, nil) }

func NotFound(message string) *Error { return E(KindNotFound, message, nil) }

func Conflict(message string) *Error { return E(KindConflict, message, nil) }

func Internal(message string, err error) *Error { return E(KindInternal, message, err) }

// KindOf reports the kind of the first *Error in err's chain. Anything
// unclassified is internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
