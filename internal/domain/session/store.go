package session

import (
	"context"
	"errors"
)

// Store is the process-wide authority over active sessions.
// All lifecycle mutations go through it; no other component touches the
// underlying maps. Every operation is atomic with respect to concurrent
// callers, and mutations affecting one user's session set are serialized
// against each other.
type Store interface {
	// Create mints a token and inserts a new session for the user.
	// Fails only on resource exhaustion (token generation).
	Create(ctx context.Context, userID string, meta ClientMeta) (*Session, error)

	// Get looks up a session by token. Read-only: LastSeenAt is not updated
	// here so read-heavy validation stays cheap (see Touch).
	// Returns ErrSessionNotFound for unknown or revoked tokens.
	Get(ctx context.Context, tokenID string) (*Session, error)

	// Touch updates LastSeenAt. A token that no longer exists is a silent
	// no-op, not an error: the session was revoked between Get and Touch.
	Touch(ctx context.Context, tokenID string)

	// Revoke removes the session from the store. Idempotent: revoking a
	// non-existent token is a silent success, which keeps logout replay-safe.
	Revoke(ctx context.Context, tokenID string) error

	// RevokeAll removes every session of the user and returns how many were
	// revoked. Linearizable with respect to a concurrent Create for the same
	// user: the new session is either included in the revoked set or survives
	// untouched, never half-created.
	RevokeAll(ctx context.Context, userID string) (int, error)

	// List returns the user's sessions ordered by IssuedAt ascending.
	List(ctx context.Context, userID string) ([]*Session, error)
}

// ErrSessionNotFound is returned when a token doesn't map to a live session.
var ErrSessionNotFound = errors.New("session not found")
