package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/wispcms/wispgate/internal/domain/content"
	"github.com/wispcms/wispgate/internal/domain/rpc"
	"github.com/wispcms/wispgate/internal/domain/user"
)

// OperationFunc handles one operation's decoded payload.
type OperationFunc func(ctx context.Context, payload json.RawMessage) (any, error)

// Registry maps operation names to handlers for one backend service and
// turns envelopes into replies. Domain errors are translated into wire
// error codes here, at the process boundary, so handlers keep returning
// plain sentinel errors.
type Registry struct {
	service  string
	logger   *slog.Logger
	handlers map[string]OperationFunc
}

// NewRegistry creates an empty registry for the named service.
func NewRegistry(service string, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		service:  service,
		logger:   logger.With("service", service),
		handlers: make(map[string]OperationFunc),
	}
}

// Register binds an operation name to its handler.
// Registration happens once at startup; the map is read-only afterwards.
func (r *Registry) Register(operation string, fn OperationFunc) {
	r.handlers[operation] = fn
}

// Handle executes the envelope's operation and builds the correlated reply.
func (r *Registry) Handle(ctx context.Context, env *rpc.Envelope) *rpc.Reply {
	fn, ok := r.handlers[env.Operation]
	if !ok {
		r.logger.Warn("unknown operation", "operation", env.Operation)
		return errorReply(env, &rpc.WireError{
			Code:    rpc.CodeBadRequest,
			Message: "unknown operation: " + env.Operation,
		})
	}

	result, err := fn(ctx, env.Payload)
	if err != nil {
		wireErr := toWireError(err)
		if wireErr.Code == rpc.CodeInternal {
			r.logger.Error("operation failed", "operation", env.Operation, "error", err)
		} else {
			r.logger.Debug("operation rejected", "operation", env.Operation, "code", wireErr.Code)
		}
		return errorReply(env, wireErr)
	}

	body, err := json.Marshal(result)
	if err != nil {
		r.logger.Error("marshal reply failed", "operation", env.Operation, "error", err)
		return errorReply(env, &rpc.WireError{Code: rpc.CodeInternal, Message: "encode reply"})
	}

	return &rpc.Reply{
		CorrelationID: env.CorrelationID,
		Status:        rpc.StatusOK,
		Body:          body,
	}
}

// errorReply builds an error reply correlated to the envelope.
func errorReply(env *rpc.Envelope, wireErr *rpc.WireError) *rpc.Reply {
	return &rpc.Reply{
		CorrelationID: env.CorrelationID,
		Status:        rpc.StatusError,
		Error:         wireErr,
	}
}

// toWireError maps handler errors onto the shared wire error codes.
// Anything unrecognized is an internal error; its detail stays in the
// service log and off the wire.
func toWireError(err error) *rpc.WireError {
	if appErr, ok := rpc.AsAppError(err); ok {
		return &rpc.WireError{Code: appErr.Code, Message: appErr.Message}
	}

	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return &rpc.WireError{Code: rpc.CodeInvalidCredentials, Message: "invalid username or password"}
	case errors.Is(err, ErrForbidden):
		return &rpc.WireError{Code: rpc.CodeForbidden, Message: "operation not permitted"}
	case errors.Is(err, user.ErrUserNotFound):
		return &rpc.WireError{Code: rpc.CodeNotFound, Message: "user not found"}
	case errors.Is(err, user.ErrDuplicateUsername):
		return &rpc.WireError{Code: rpc.CodeAlreadyExists, Message: "username already exists"}
	case errors.Is(err, user.ErrMasterExists):
		return &rpc.WireError{Code: rpc.CodeAlreadyExists, Message: "master already registered"}
	case errors.Is(err, content.ErrPostNotFound):
		return &rpc.WireError{Code: rpc.CodeNotFound, Message: "post not found"}
	case errors.Is(err, content.ErrDuplicateSlug):
		return &rpc.WireError{Code: rpc.CodeAlreadyExists, Message: "slug already exists"}
	default:
		return &rpc.WireError{Code: rpc.CodeInternal, Message: "internal error"}
	}
}
