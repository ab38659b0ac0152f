// Package ctxkey defines shared context key types used across multiple packages.
// This package should have no dependencies on other internal packages to avoid import cycles.
package ctxkey

// LoggerKey is the context key type for the enriched logger.
// Used by HTTP middleware to store and retrieve the logger with request_id fields.
type LoggerKey struct{}

// SessionKey is the context key type for the resolved session.
// Set by the auth guard after a bearer token has been resolved.
type SessionKey struct{}

// IPAddressKey is the context key type for the client's real IP address.
type IPAddressKey struct{}

// RequestIDKey is the context key type for the request ID.
type RequestIDKey struct{}
