// Package apierror centralizes the error vocabulary of the service and the
// response envelopes derived from it. Every failure returned to a client goes
// through this package so that internal details (stack traces, SQL errors)
// never leak and every kind of failure maps to a stable HTTP status.
package apierror

import (
	"errors"
	"net/http"
)

// Kind classifies a failure. Handlers translate kinds into HTTP statuses;
// services pick the kind at the point where the rule is violated.
type Kind int

const (
	KindInternal     Kind = iota // unclassified — last resort
	KindValidation               // malformed or out-of-range input
	KindConflict                 // uniqueness violation (e.g. duplicate open session)
	KindInvalidState             // operation not valid for the current status
	KindNotFound                 // unknown id
	KindTimeout                  // backing store unavailable or slow
)

// Error is a kinded error carrying a client-safe message.
type Error struct {
	kind Kind
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.err }

// Kind returns the classification of the error.
func (e *Error) Kind() Kind { return e.kind }

// Message returns the client-safe message without any wrapped cause.
func (e *Error) Message() string { return e.msg }

func Validation(msg string) *Error   { return &Error{kind: KindValidation, msg: msg} }
func Conflict(msg string) *Error     { return &Error{kind: KindConflict, msg: msg} }
func InvalidState(msg string) *Error { return &Error{kind: KindInvalidState, msg: msg} }
func NotFound(msg string) *Error     { return &Error{kind: KindNotFound, msg: msg} }
func Timeout(msg string) *Error      { return &Error{kind: KindTimeout, msg: msg} }

// Wrap attaches a cause to a kinded error. The cause is logged server-side
// but never serialized to the client.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{kind: kind, msg: msg, err: err}
}

// KindOf extracts the kind of err, or KindInternal when err is not kinded.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return KindInternal
}

// Status maps an error to the HTTP status code of its kind.
func Status(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict, KindInvalidState:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// Message extracts the client-safe detail of err. Unkinded errors collapse to
// a generic message so internals never reach the client.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.msg
	}
	return "internal server error"
}

// APIError is the canonical error envelope for all 4xx/5xx responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError wraps multiple field errors from request binding.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "validation failed", Fields: fields}
}
