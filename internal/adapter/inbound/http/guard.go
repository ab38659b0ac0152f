package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/wispcms/wispgate/internal/ctxkey"
	"github.com/wispcms/wispgate/internal/domain/session"
	"github.com/wispcms/wispgate/internal/domain/token"
	"github.com/wispcms/wispgate/internal/domain/user"
)

// Guard gates protected operations. It resolves the bearer token to a
// session before any handler logic runs, touches the session's freshness,
// and attaches the resolved session to the request context. A missing or
// unknown token is Unauthenticated (401); a valid session lacking the
// required role is Forbidden (403) - the two are never conflated.
type Guard struct {
	sessions session.Store
	users    user.Store
}

// NewGuard creates an auth guard over the given stores.
func NewGuard(sessions session.Store, users user.Store) *Guard {
	return &Guard{sessions: sessions, users: users}
}

// Require resolves the bearer token or rejects the request with 401.
func (g *Guard) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := bearerToken(r)
		if tok == "" || !token.WellFormed(tok) {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		sess, err := g.sessions.Get(r.Context(), tok)
		if err != nil {
			if errors.Is(err, session.ErrSessionNotFound) {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			LoggerFromContext(r.Context()).Error("session lookup failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		// Freshness update is separate from the lookup; losing it to a
		// concurrent revoke is acceptable.
		g.sessions.Touch(r.Context(), tok)

		ctx := context.WithValue(r.Context(), ctxkey.SessionKey{}, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// MasterOnly rejects sessions whose user lacks the master role with 403.
// Must be composed inside Require.
func (g *Guard) MasterOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := SessionFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		u, err := g.users.GetByID(r.Context(), sess.UserID)
		if err != nil {
			if errors.Is(err, user.ErrUserNotFound) {
				// Session outlived its account; treat as unauthenticated.
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			LoggerFromContext(r.Context()).Error("user lookup failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		if !u.IsMaster() {
			writeError(w, http.StatusForbidden, "master role required")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// SessionFromContext retrieves the session attached by Require.
func SessionFromContext(ctx context.Context) (*session.Session, bool) {
	sess, ok := ctx.Value(ctxkey.SessionKey{}).(*session.Session)
	return sess, ok
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}
