// Package session manages authenticated device logins.
package session

import (
	"time"
)

// ClientMeta describes the device a session was created from.
// Recorded once at login and immutable afterwards.
type ClientMeta struct {
	// IP is the client address observed at login.
	IP string
	// UserAgent is the client's user-agent or device descriptor.
	UserAgent string
}

// Session is one authenticated device login bound to an opaque token.
type Session struct {
	// TokenID is the opaque token identifying this session. Immutable.
	TokenID string
	// UserID is the owning account. Immutable.
	UserID string
	// Client is the device metadata recorded at creation. Immutable.
	Client ClientMeta
	// IssuedAt is when the session was created (UTC).
	IssuedAt time.Time
	// LastSeenAt is the last time the token passed validation (UTC).
	LastSeenAt time.Time
}
