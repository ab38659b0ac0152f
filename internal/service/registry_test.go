package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/wispcms/wispgate/internal/domain/rpc"
	"github.com/wispcms/wispgate/internal/domain/user"
)

func envelope(operation string, payload string) *rpc.Envelope {
	return &rpc.Envelope{
		CorrelationID: "corr-1",
		Service:       "user",
		Operation:     operation,
		Payload:       json.RawMessage(payload),
		Deadline:      time.Now().Add(time.Second),
	}
}

func TestRegistry_UnknownOperation(t *testing.T) {
	t.Parallel()

	r := NewRegistry("user", nil)
	reply := r.Handle(context.Background(), envelope("nope", `{}`))

	if reply.CorrelationID != "corr-1" {
		t.Errorf("CorrelationID = %q, want corr-1", reply.CorrelationID)
	}
	if reply.Status != rpc.StatusError {
		t.Fatalf("Status = %q, want error", reply.Status)
	}
	if reply.Error.Code != rpc.CodeBadRequest {
		t.Errorf("Error.Code = %q, want %q", reply.Error.Code, rpc.CodeBadRequest)
	}
}

func TestRegistry_SuccessReply(t *testing.T) {
	t.Parallel()

	r := NewRegistry("user", nil)
	r.Register("ping", func(ctx context.Context, payload json.RawMessage) (any, error) {
		return &OkResponse{Ok: true}, nil
	})

	reply := r.Handle(context.Background(), envelope("ping", `{}`))
	if reply.Status != rpc.StatusOK {
		t.Fatalf("Status = %q, want ok", reply.Status)
	}
	var resp OkResponse
	if err := json.Unmarshal(reply.Body, &resp); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if !resp.Ok {
		t.Error("Ok = false, want true")
	}
}

func TestRegistry_ErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{name: "invalid credentials", err: ErrInvalidCredentials, wantCode: rpc.CodeInvalidCredentials},
		{name: "forbidden", err: ErrForbidden, wantCode: rpc.CodeForbidden},
		{name: "user not found", err: user.ErrUserNotFound, wantCode: rpc.CodeNotFound},
		{name: "duplicate username", err: user.ErrDuplicateUsername, wantCode: rpc.CodeAlreadyExists},
		{name: "master exists", err: user.ErrMasterExists, wantCode: rpc.CodeAlreadyExists},
		{name: "app error passthrough", err: rpc.NewAppError(rpc.CodeRateLimited, "slow down"), wantCode: rpc.CodeRateLimited},
		{name: "wrapped sentinel", err: errors.Join(errors.New("lookup"), user.ErrUserNotFound), wantCode: rpc.CodeNotFound},
		{name: "unknown error hidden", err: errors.New("db exploded"), wantCode: rpc.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry("user", nil)
			r.Register("op", func(ctx context.Context, payload json.RawMessage) (any, error) {
				return nil, tt.err
			})

			reply := r.Handle(context.Background(), envelope("op", `{}`))
			if reply.Status != rpc.StatusError {
				t.Fatalf("Status = %q, want error", reply.Status)
			}
			if reply.Error.Code != tt.wantCode {
				t.Errorf("Error.Code = %q, want %q", reply.Error.Code, tt.wantCode)
			}
		})
	}
}

func TestRegistry_InternalErrorDetailStaysOffTheWire(t *testing.T) {
	t.Parallel()

	r := NewRegistry("user", nil)
	r.Register("op", func(ctx context.Context, payload json.RawMessage) (any, error) {
		return nil, errors.New("password hash column corrupt")
	})

	reply := r.Handle(context.Background(), envelope("op", `{}`))
	if reply.Error.Message != "internal error" {
		t.Errorf("Error.Message = %q, want generic internal error", reply.Error.Message)
	}
}

func TestRegistry_MalformedPayload(t *testing.T) {
	t.Parallel()

	r := NewRegistry("user", nil)
	r.Register("op", decode(func(ctx context.Context, req LoginRequest) (any, error) {
		t.Error("handler ran with malformed payload")
		return nil, nil
	}))

	reply := r.Handle(context.Background(), envelope("op", `{not json`))
	if reply.Status != rpc.StatusError || reply.Error.Code != rpc.CodeBadRequest {
		t.Errorf("reply = %+v, want bad_request error", reply)
	}
}
