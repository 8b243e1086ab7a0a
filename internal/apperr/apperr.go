// Package apperr defines the error kinds surfaced by the service layer.
// Services return *Error values; the HTTP layer maps the kind to a status
// code and a stable machine readable code, and replaces the message of
// internal errors with a generic one.
package apperr

import (
	"context"
	"errors"
	"fmt"
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
	KindTimeout
)

var kindInfo = map[Kind]struct {
	status int
	code   string
}{
	KindInternal:       {http.StatusInternalServerError, "internal_error"},
	KindValidation:     {http.StatusBadRequest, "validation_error"},
	KindAuthentication: {http.StatusUnauthorized, "authentication_error"},
	KindAuthorization:  {http.StatusForbidden, "authorization_error"},
	KindNotFound:       {http.StatusNotFound, "not_found"},
	KindConflict:       {http.StatusConflict, "conflict"},
	KindTimeout:        {http.StatusGatewayTimeout, "timeout"},
}

// Status returns the HTTP status for k.
func (k Kind) Status() int { return kindInfo[k].status }

// Code returns the stable code for k.
func (k Kind) Code() string { return kindInfo[k].code }

// Error is a classified failure. Err, when set, is the underlying cause
// and is only ever logged.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind.Code(), e.Message, e.Err)
	}
	return e.Kind.Code() + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func Authentication(msg string) *Error {
	return &Error{Kind: KindAuthentication, Message: msg}
}

func Authorization(msg string) *Error {
	return &Error{Kind: KindAuthorization, Message: msg}
}

func NotFound(what string) *Error {
	return &Error{Kind: KindNotFound, Message: what + " not found"}
}

func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// Internal wraps an unexpected failure. A deadline hit while waiting on
// storage is reported as a timeout instead.
func Internal(op string, err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Message: "request timed out", Err: fmt.Errorf("%s: %w", op, err)}
	}
	return &Error{Kind: KindInternal, Message: "internal server error", Err: fmt.Errorf("%s: %w", op, err)}
}

// KindOf returns the kind of err; unclassified errors are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindInternal
}

// Is reports whether err is classified as kind k.
func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}
