package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// DefaultCallTimeout bounds how long a Call waits for a correlated reply.
const DefaultCallTimeout = 10 * time.Second

// Transport carries envelopes to backend services. Implementations must
// return ErrUnreachable (possibly wrapped) when no service listens on the
// target topic or the connection is down.
type Transport interface {
	Send(ctx context.Context, env *Envelope) error
}

// Dispatcher performs send-and-await calls over a Transport and matches
// replies strictly by correlation ID, never by arrival order.
type Dispatcher struct {
	transport Transport
	timeout   time.Duration
	tracer    trace.Tracer

	mu      sync.Mutex
	pending map[string]chan *Reply
}

// Option is a functional option for configuring a Dispatcher.
type Option func(*Dispatcher)

// WithTimeout sets the per-call deadline. Default is DefaultCallTimeout.
func WithTimeout(d time.Duration) Option {
	return func(disp *Dispatcher) {
		if d > 0 {
			disp.timeout = d
		}
	}
}

// WithTracer sets the tracer used to span each call.
func WithTracer(t trace.Tracer) Option {
	return func(disp *Dispatcher) {
		disp.tracer = t
	}
}

// NewDispatcher creates a Dispatcher over the given transport.
func NewDispatcher(transport Transport, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		transport: transport,
		timeout:   DefaultCallTimeout,
		tracer:    noop.NewTracerProvider().Tracer("rpc"),
		pending:   make(map[string]chan *Reply),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Call sends payload to the target and suspends the calling goroutine until
// the correlated reply arrives, the deadline elapses (ErrTimeout), the caller
// cancels, or the transport fails (ErrUnreachable). Business failures from
// the target surface as *AppError. Retrying is the caller's decision; a Call
// is never retried here to avoid duplicating non-idempotent operations.
func (d *Dispatcher) Call(ctx context.Context, target Target, payload any) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload for %s: %w", target, err)
	}

	correlationID := uuid.New().String()
	deadline := time.Now().Add(d.timeout)

	ctx, span := d.tracer.Start(ctx, "rpc.call", trace.WithAttributes(
		attribute.String("rpc.target", target.String()),
		attribute.String("rpc.correlation_id", correlationID),
	))
	defer span.End()

	// Buffered so Deliver never blocks on a caller that already gave up.
	ch := make(chan *Reply, 1)
	d.mu.Lock()
	d.pending[correlationID] = ch
	d.mu.Unlock()

	env := &Envelope{
		CorrelationID: correlationID,
		Service:       target.Service,
		Operation:     target.Operation,
		Payload:       body,
		Deadline:      deadline,
	}

	if err := d.transport.Send(ctx, env); err != nil {
		d.discard(correlationID)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("send to %s: %w", target, err)
	}

	timer := time.NewTimer(time.Until(deadline))
	defer timer.Stop()

	select {
	case reply := <-ch:
		return d.unpack(span, target, reply)
	case <-timer.C:
		d.discard(correlationID)
		span.SetStatus(codes.Error, "deadline elapsed")
		return nil, fmt.Errorf("%s after %s: %w", target, d.timeout, ErrTimeout)
	case <-ctx.Done():
		// Caller gave up (client disconnect). Abandon the wait; a reply that
		// arrives later finds no pending slot and is discarded.
		d.discard(correlationID)
		span.SetStatus(codes.Error, "caller cancelled")
		return nil, ctx.Err()
	}
}

// unpack maps a wire reply into a result or a typed application error.
func (d *Dispatcher) unpack(span trace.Span, target Target, reply *Reply) (json.RawMessage, error) {
	if reply.Status == StatusError {
		wireErr := reply.Error
		if wireErr == nil {
			wireErr = &WireError{Code: CodeInternal, Message: "error reply without detail"}
		}
		span.SetStatus(codes.Error, wireErr.Code)
		return nil, fmt.Errorf("%s: %w", target, NewAppError(wireErr.Code, wireErr.Message))
	}
	span.SetStatus(codes.Ok, "")
	return reply.Body, nil
}

// Deliver hands a reply to the caller waiting on its correlation ID.
// Returns false when no caller waits (timed out, cancelled, or duplicate
// reply); such replies are discarded harmlessly.
func (d *Dispatcher) Deliver(reply *Reply) bool {
	d.mu.Lock()
	ch, ok := d.pending[reply.CorrelationID]
	if ok {
		delete(d.pending, reply.CorrelationID)
	}
	d.mu.Unlock()

	if !ok {
		return false
	}
	ch <- reply
	return true
}

// Pending reports the number of calls currently awaiting a reply.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// discard releases the correlation slot so a late reply cannot leak.
func (d *Dispatcher) discard(correlationID string) {
	d.mu.Lock()
	delete(d.pending, correlationID)
	d.mu.Unlock()
}
