// Package rpc implements the gateway-side dispatch layer: it serializes a
// call into an envelope, hands it to a transport, and correlates the reply
// back to the suspended caller. The package holds no domain state; it is a
// pure routing/correlation layer.
package rpc

import (
	"encoding/json"
	"time"
)

// Target addresses an operation on a backend service.
type Target struct {
	// Service is the backend service name (e.g. "user", "content").
	Service string
	// Operation is the operation name within the service (e.g. "login").
	Operation string
}

// Topic returns the transport topic the target's service listens on.
func (t Target) Topic() string {
	return "rpc." + t.Service
}

// String returns the fully qualified operation name.
func (t Target) String() string {
	return t.Service + "." + t.Operation
}

// Envelope is one dispatched call. Created per call, consumed by the
// receiving service, discarded after the matching reply or timeout.
type Envelope struct {
	// CorrelationID uniquely links this call to its eventual reply.
	CorrelationID string `json:"correlation_id"`
	// Service and Operation address the receiving handler.
	Service   string `json:"service"`
	Operation string `json:"operation"`
	// Payload is the JSON-encoded request body.
	Payload json.RawMessage `json:"payload,omitempty"`
	// Deadline is when the caller stops waiting. Receivers should abandon
	// work past this point; the reply would be discarded anyway.
	Deadline time.Time `json:"deadline"`
}

// Status discriminates reply outcomes on the wire.
type Status string

const (
	// StatusOK marks a successful reply carrying a body.
	StatusOK Status = "ok"
	// StatusError marks a business failure carrying a WireError.
	StatusError Status = "error"
)

// Reply is the response half of an envelope.
type Reply struct {
	// CorrelationID matches the originating envelope.
	CorrelationID string `json:"correlation_id"`
	// Status is ok or error.
	Status Status `json:"status"`
	// Body is the JSON-encoded result when Status is ok.
	Body json.RawMessage `json:"body,omitempty"`
	// Error describes the business failure when Status is error.
	Error *WireError `json:"error,omitempty"`
}

// WireError is a typed business failure crossing the process boundary.
type WireError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
