package rpc

import (
	"errors"
	"fmt"
)

// Transport-level failures. Distinct from AppError so the gateway can pick
// the right externally visible status (502/504 vs business mapping).
var (
	// ErrTimeout is returned when the dispatcher deadline elapses before a
	// correlated reply arrives. Never retried automatically.
	ErrTimeout = errors.New("rpc call timed out")
	// ErrUnreachable is returned when the transport has no listener for the
	// target service or reports a connection-level failure.
	ErrUnreachable = errors.New("target service unreachable")
)

// Application error codes shared by backend services and the gateway.
const (
	CodeNotFound           = "not_found"
	CodeAlreadyExists      = "already_exists"
	CodeInvalidCredentials = "invalid_credentials"
	CodeForbidden          = "forbidden"
	CodeRateLimited        = "rate_limited"
	CodeBadRequest         = "bad_request"
	CodeInternal           = "internal"
)

// AppError is a business failure surfaced by a backend service. The
// dispatcher propagates it verbatim; the gateway decides the HTTP status.
type AppError struct {
	Code    string
	Message string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewAppError constructs a typed application error.
func NewAppError(code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// AsAppError unwraps err into an *AppError if it carries one.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
