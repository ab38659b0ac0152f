// Package bus adapts an in-process event bus to the rpc.Transport contract.
//
// Backend services subscribe to one topic per service name; the gateway
// publishes envelopes there and receives replies on a shared reply topic.
// Swapping in a networked broker only requires another implementation of
// rpc.Transport with the same topic discipline.
package bus

import (
	"context"
	"fmt"
	"log/slog"

	evbus "github.com/asaskevich/EventBus"

	"github.com/wispcms/wispgate/internal/domain/rpc"
)

// replyTopic is the shared topic replies are published on. Correlation, not
// topic fan-out, links a reply to its caller.
const replyTopic = "rpc.reply"

// HandlerFunc processes one envelope on the service side and returns the reply.
type HandlerFunc func(ctx context.Context, env *rpc.Envelope) *rpc.Reply

// Transport implements rpc.Transport over an asaskevich/EventBus instance.
type Transport struct {
	bus    evbus.Bus
	logger *slog.Logger
}

// NewTransport creates a transport over a fresh event bus.
func NewTransport(logger *slog.Logger) *Transport {
	if logger == nil {
		logger = slog.Default()
	}
	return &Transport{
		bus:    evbus.New(),
		logger: logger,
	}
}

// Send publishes the envelope to the target service's topic.
// Returns rpc.ErrUnreachable when no service is subscribed there, which is
// the in-process equivalent of a connection failure.
func (t *Transport) Send(ctx context.Context, env *rpc.Envelope) error {
	topic := "rpc." + env.Service
	if !t.bus.HasCallback(topic) {
		return fmt.Errorf("no subscriber on %s: %w", topic, rpc.ErrUnreachable)
	}
	t.bus.Publish(topic, env)
	return nil
}

// Serve registers a handler for all operations of a service. Each envelope is
// handled on its own goroutine with a context bounded by the envelope
// deadline, so a slow backend cannot stall the bus.
func (t *Transport) Serve(service string, handler HandlerFunc) error {
	topic := "rpc." + service
	err := t.bus.SubscribeAsync(topic, func(env *rpc.Envelope) {
		ctx, cancel := context.WithDeadline(context.Background(), env.Deadline)
		defer cancel()

		reply := handler(ctx, env)
		if reply == nil {
			t.logger.Error("handler returned no reply", "service", service, "operation", env.Operation)
			reply = &rpc.Reply{
				CorrelationID: env.CorrelationID,
				Status:        rpc.StatusError,
				Error:         &rpc.WireError{Code: rpc.CodeInternal, Message: "no reply produced"},
			}
		}
		t.bus.Publish(replyTopic, reply)
	}, false)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", topic, err)
	}
	return nil
}

// Replies routes every reply into sink. The sink reports whether a caller was
// still waiting; late replies are logged and dropped.
func (t *Transport) Replies(sink func(*rpc.Reply) bool) error {
	err := t.bus.Subscribe(replyTopic, func(reply *rpc.Reply) {
		if !sink(reply) {
			t.logger.Debug("discarded late reply", "correlation_id", reply.CorrelationID)
		}
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", replyTopic, err)
	}
	return nil
}

// Close waits for in-flight async handlers to finish.
func (t *Transport) Close() {
	t.bus.WaitAsync()
}

// Compile-time interface verification.
var _ rpc.Transport = (*Transport)(nil)
