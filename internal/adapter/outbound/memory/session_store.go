// Package memory provides in-memory implementations of outbound ports.
package memory

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/wispcms/wispgate/internal/domain/session"
	"github.com/wispcms/wispgate/internal/domain/token"
)

// SessionStore implements session.Store with a primary token map plus a
// derived per-user index. Both maps are always mutated together under one
// lock, so readers observe a point-in-time snapshot and the index never
// drifts from the primary map. Serializing all mutations through the lock
// also gives RevokeAll its happens-before contract against a racing Create:
// the new session completes either before the sweep (and is revoked with the
// rest) or after it (and survives).
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*session.Session // tokenID -> session
	byUser   map[string]map[string]struct{}
	logger   *slog.Logger
}

// NewSessionStore creates an empty in-memory session store.
func NewSessionStore(logger *slog.Logger) *SessionStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionStore{
		sessions: make(map[string]*session.Session),
		byUser:   make(map[string]map[string]struct{}),
		logger:   logger,
	}
}

// Create mints a token and inserts the session into both maps.
func (s *SessionStore) Create(ctx context.Context, userID string, meta session.ClientMeta) (*session.Session, error) {
	tokenID, err := token.Issue()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	sess := &session.Session{
		TokenID:    tokenID,
		UserID:     userID,
		Client:     meta,
		IssuedAt:   now,
		LastSeenAt: now,
	}

	s.mu.Lock()
	s.sessions[tokenID] = sess
	tokens, ok := s.byUser[userID]
	if !ok {
		tokens = make(map[string]struct{})
		s.byUser[userID] = tokens
	}
	tokens[tokenID] = struct{}{}
	s.mu.Unlock()

	s.logger.Debug("session created", "user_id", userID, "ip", meta.IP)
	return copySession(sess), nil
}

// Get looks up a session by token. Returns a copy to prevent mutation.
// LastSeenAt is deliberately not updated here; that is Touch's job.
func (s *SessionStore) Get(ctx context.Context, tokenID string) (*session.Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[tokenID]
	s.mu.RUnlock()

	if !ok {
		return nil, session.ErrSessionNotFound
	}
	return copySession(sess), nil
}

// Touch updates LastSeenAt. A token revoked between Get and Touch is a
// silent no-op; the update is simply lost, never resurrecting the session.
func (s *SessionStore) Touch(ctx context.Context, tokenID string) {
	s.mu.Lock()
	if sess, ok := s.sessions[tokenID]; ok {
		sess.LastSeenAt = time.Now().UTC()
	}
	s.mu.Unlock()
}

// Revoke removes the session from both maps. Idempotent.
func (s *SessionStore) Revoke(ctx context.Context, tokenID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[tokenID]
	if !ok {
		// Already gone. Logout must be replay-safe, so this is a success.
		return nil
	}
	delete(s.sessions, tokenID)
	s.dropFromIndex(sess.UserID, tokenID)
	return nil
}

// RevokeAll removes every session of the user in one critical section and
// returns the number revoked.
func (s *SessionStore) RevokeAll(ctx context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tokens := s.byUser[userID]
	count := len(tokens)
	for tokenID := range tokens {
		delete(s.sessions, tokenID)
	}
	delete(s.byUser, userID)

	if count > 0 {
		s.logger.Debug("sessions revoked", "user_id", userID, "count", count)
	}
	return count, nil
}

// List returns the user's sessions ordered by IssuedAt ascending.
// Ties (same timestamp granularity) break on token ID for a stable order.
func (s *SessionStore) List(ctx context.Context, userID string) ([]*session.Session, error) {
	s.mu.RLock()
	tokens := s.byUser[userID]
	result := make([]*session.Session, 0, len(tokens))
	for tokenID := range tokens {
		if sess, ok := s.sessions[tokenID]; ok {
			result = append(result, copySession(sess))
		}
	}
	s.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].IssuedAt.Equal(result[j].IssuedAt) {
			return result[i].TokenID < result[j].TokenID
		}
		return result[i].IssuedAt.Before(result[j].IssuedAt)
	})
	return result, nil
}

// Count returns the number of live sessions across all users.
// Exposed for the active_sessions gauge and for tests.
func (s *SessionStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// dropFromIndex removes one token from the per-user index.
// Caller must hold s.mu.
func (s *SessionStore) dropFromIndex(userID, tokenID string) {
	tokens, ok := s.byUser[userID]
	if !ok {
		return
	}
	delete(tokens, tokenID)
	if len(tokens) == 0 {
		delete(s.byUser, userID)
	}
}

// copySession creates a copy of a session so callers cannot mutate the store.
func copySession(sess *session.Session) *session.Session {
	sessCopy := *sess
	return &sessCopy
}

// Compile-time interface verification.
var _ session.Store = (*SessionStore)(nil)
