// Package apperr defines the error kinds returned by services and how they
// translate to HTTP status codes.
package apperr

import (
	"context"
	"errors"
	"net/http"
)

type Kind string

const (
	KindValidation  Kind = "ValidationError"
	KindAuth        Kind = "AuthError"
	KindForbidden   Kind = "AuthorizationError"
	KindNotFound    Kind = "NotFoundError"
	KindConflict    Kind = "ConflictError"
	KindTimeout     Kind = "GatewayTimeout"
	KindUnavailable Kind = "ServiceUnavailable"
	KindRateLimited Kind = "TooManyRequests"
	KindInternal    Kind = "InternalError"
)

type Error struct {
	Kind    Kind
	Message string
	Details map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(msg string) *Error { return &Error{Kind: KindValidation, Message: msg} }
func Auth(msg string) *Error { return &Error{Kind: KindAuth, Message: msg} }
func Forbidden(msg string) *Error { return &Error{Kind: KindForbidden, Message: msg} }
func NotFound(msg string) *Error { return &Error{Kind: KindNotFound, Message: msg} }
func Conflict(msg string) *Error { return &Error{Kind: KindConflict, Message: msg} }

// Invalid is a validation error carrying per-field messages.
func Invalid(msg string, details map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: msg, Details: details}
}

func Unavailable(msg string, err error) *Error {
	return &Error{Kind: KindUnavailable, Message: msg, Err: err}
}

// Internal wraps an unexpected failure. The message is what the client sees;
// err is kept for logs only.
func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf classifies err. Context deadlines become KindTimeout whether or not
// they were wrapped by a service.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// Message returns the client-facing text for err.
func Message(err error) string {
	if KindOf(err) == KindTimeout {
		return "The request timed out"
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return "Internal server error"
}

// Details returns the per-field messages attached to err, if any.
func Details(err error) map[string]string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Details
	}
	return nil
}

func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindTimeout:
		return http.StatusGatewayTimeout
	case KindUnavailable:
		return http.StatusServiceUnavailable
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
