// Package apperr carries a stable error kind alongside a user-facing message.
// The wrapped cause is for logs only and never leaves the process.
package apperr

import (
	"errors"
	"net/http"
)

type Kind string

const (
	NotFound                   Kind = "not_found"
	ValidationFailed           Kind = "validation_failed"
	UpstreamUnavailable        Kind = "upstream_unavailable"
	ConflictAlreadyInitialized Kind = "conflict_already_initialized"
	PartialWriteInconsistency  Kind = "partial_write_inconsistency"
	Forbidden                  Kind = "forbidden"
	Unauthorized               Kind = "unauthorized"
	RateLimited                Kind = "rate_limited"
	Internal                   Kind = "internal"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return string(e.Kind) + ": " + e.Message + ": " + e.Err.Error()
	}
	return string(e.Kind) + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, apperr.New(NotFound, ""))
// works regardless of message.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Kind == e.Kind
	}
	return false
}

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func Missing(what string) *Error { return New(NotFound, what+" not found") }
func Invalid(msg string) *Error { return New(ValidationFailed, msg) }
func Upstream(err error) *Error { return Wrap(UpstreamUnavailable, "external plan unavailable", err) }
func InternalErr(msg string, err error) *Error { return Wrap(Internal, msg, err) }

// KindOf returns the kind of the first *Error in the chain, or Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Message returns the user-facing message, hiding anything that is not an *Error.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return "internal server error"
}

func HTTPStatus(kind Kind) int {
	switch kind {
	case NotFound:
		return http.StatusNotFound
	case ValidationFailed:
		return http.StatusBadRequest
	case Forbidden:
		return http.StatusForbidden
	case Unauthorized:
		return http.StatusUnauthorized
	case RateLimited:
		return http.StatusTooManyRequests
	case PartialWriteInconsistency:
		return http.StatusAccepted
	case UpstreamUnavailable:
		return http.StatusBadGateway
	case ConflictAlreadyInitialized:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
