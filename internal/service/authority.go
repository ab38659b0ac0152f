package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/google/uuid"

	"github.com/wispcms/wispgate/internal/domain/ratelimit"
	"github.com/wispcms/wispgate/internal/domain/rpc"
	"github.com/wispcms/wispgate/internal/domain/session"
	"github.com/wispcms/wispgate/internal/domain/user"
)

// Authority errors.
var (
	// ErrInvalidCredentials is intentionally non-specific: it never reveals
	// whether the username or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrForbidden marks a valid session attempting something it may not do,
	// distinct from missing authentication.
	ErrForbidden = errors.New("forbidden")
)

// dummyHash is a valid Argon2id hash of an unguessable throwaway value.
// Login verifies against it when the username is unknown so both failure
// paths cost one hash comparison.
const dummyHash = "$argon2id$v=19$m=65536,t=1,p=2$bNZPsFo7223upkVC0OiGXw$Nb4cf9AfSXHos+ZyhL3MEU7XjF9WEhkVRgnkb7bZ5yE"

// Authority is the session & token authority: it owns login, logout and
// session management for every account, composing the user store, the
// session store and the login throttle. It is reached through the RPC
// dispatcher under target service "user".
type Authority struct {
	users      user.Store
	sessions   session.Store
	limiter    ratelimit.Limiter
	loginLimit ratelimit.Config
	logger     *slog.Logger
}

// NewAuthority creates the session authority.
// limiter may be nil to disable login throttling (tests, dev mode).
func NewAuthority(users user.Store, sessions session.Store, limiter ratelimit.Limiter, loginLimit ratelimit.Config, logger *slog.Logger) *Authority {
	if logger == nil {
		logger = slog.Default()
	}
	return &Authority{
		users:      users,
		sessions:   sessions,
		limiter:    limiter,
		loginLimit: loginLimit,
		logger:     logger,
	}
}

// Mount registers every authority operation on the registry.
func (a *Authority) Mount(r *Registry) {
	r.Register(OpLogin, decode(a.Login))
	r.Register(OpLogout, decode(a.Logout))
	r.Register(OpLogoutAll, decode(a.LogoutAll))
	r.Register(OpListSessions, decode(a.ListSessions))
	r.Register(OpDeleteSession, decode(a.DeleteSession))
	r.Register(OpRegister, decode(a.Register))
	r.Register(OpUserInfo, decode(a.UserInfo))
	r.Register(OpMasterInfo, func(ctx context.Context, _ json.RawMessage) (any, error) {
		return a.MasterInfo(ctx)
	})
}

// decode adapts a typed handler to an OperationFunc.
func decode[Req any](fn func(ctx context.Context, req Req) (any, error)) OperationFunc {
	return func(ctx context.Context, payload json.RawMessage) (any, error) {
		var req Req
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &req); err != nil {
				return nil, rpc.NewAppError(rpc.CodeBadRequest, "malformed payload")
			}
		}
		return fn(ctx, req)
	}
}

// Login verifies credentials and creates a session on success.
func (a *Authority) Login(ctx context.Context, req LoginRequest) (any, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return nil, ErrInvalidCredentials
	}

	if a.limiter != nil {
		key := ratelimit.LoginKey(req.ClientIP, username)
		result, err := a.limiter.Allow(ctx, key, a.loginLimit)
		if err != nil {
			return nil, fmt.Errorf("login throttle: %w", err)
		}
		if !result.Allowed {
			a.logger.Warn("login throttled", "ip", req.ClientIP)
			return nil, rpc.NewAppError(rpc.CodeRateLimited,
				fmt.Sprintf("too many attempts, retry in %s", result.RetryAfter.Round(time.Second)))
		}
	}

	u, err := a.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			// Burn a comparison anyway so unknown users cost the same.
			_, _ = argon2id.ComparePasswordAndHash(req.Password, dummyHash)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	match, err := argon2id.ComparePasswordAndHash(req.Password, u.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !match {
		return nil, ErrInvalidCredentials
	}

	sess, err := a.sessions.Create(ctx, u.ID, session.ClientMeta{
		IP:        req.ClientIP,
		UserAgent: req.UserAgent,
	})
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	if err := a.users.RecordLogin(ctx, u.ID, req.ClientIP); err != nil {
		// The session is already live; losing the login stamp is not worth
		// failing the whole login over.
		a.logger.Warn("record login failed", "user_id", u.ID, "error", err)
	}

	a.logger.Info("login", "user_id", u.ID, "ip", req.ClientIP)
	return &LoginResponse{
		Session:  summarize(sess),
		Nickname: u.Nickname,
		Role:     string(u.Role),
	}, nil
}

// Logout revokes the session. Always reports success: revoking an already
// revoked token is a no-op, which keeps logout replay-safe.
func (a *Authority) Logout(ctx context.Context, req LogoutRequest) (any, error) {
	if err := a.sessions.Revoke(ctx, req.TokenID); err != nil {
		return nil, fmt.Errorf("revoke session: %w", err)
	}
	return &OkResponse{Ok: true}, nil
}

// LogoutAll revokes every session of the user and reports the count.
func (a *Authority) LogoutAll(ctx context.Context, req LogoutAllRequest) (any, error) {
	count, err := a.sessions.RevokeAll(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("revoke all sessions: %w", err)
	}
	a.logger.Info("logout all", "user_id", req.UserID, "revoked", count)
	return &LogoutAllResponse{Revoked: count}, nil
}

// ListSessions returns the user's sessions ordered by issue time ascending.
func (a *Authority) ListSessions(ctx context.Context, req ListSessionsRequest) (any, error) {
	sessions, err := a.sessions.List(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	resp := &ListSessionsResponse{Sessions: make([]SessionSummary, 0, len(sessions))}
	for _, s := range sessions {
		resp.Sessions = append(resp.Sessions, summarize(s))
	}
	return resp, nil
}

// DeleteSession revokes one of the requester's own sessions. The ownership
// check runs before the revoke because the revoke primitive itself is
// token-keyed: without the check any caller could kill any session.
func (a *Authority) DeleteSession(ctx context.Context, req DeleteSessionRequest) (any, error) {
	target, err := a.sessions.Get(ctx, req.TokenID)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			// Already gone; deletion is idempotent like logout.
			return &OkResponse{Ok: true}, nil
		}
		return nil, fmt.Errorf("lookup session: %w", err)
	}

	if target.UserID != req.UserID {
		a.logger.Warn("cross-user session delete rejected", "user_id", req.UserID)
		return nil, ErrForbidden
	}

	if err := a.sessions.Revoke(ctx, req.TokenID); err != nil {
		return nil, fmt.Errorf("revoke session: %w", err)
	}
	return &OkResponse{Ok: true}, nil
}

// Register creates the deployment's master account. Exactly one master
// exists; once registered, further registration is rejected.
func (a *Authority) Register(ctx context.Context, req RegisterRequest) (any, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return nil, rpc.NewAppError(rpc.CodeBadRequest, "username and password are required")
	}

	hash, err := argon2id.CreateHash(req.Password, argon2id.DefaultParams)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &user.User{
		ID:           uuid.New().String(),
		Username:     username,
		Nickname:     req.Nickname,
		PasswordHash: hash,
		Role:         user.RoleMaster,
		CreatedAt:    time.Now().UTC(),
	}
	if u.Nickname == "" {
		u.Nickname = username
	}

	if err := a.users.Create(ctx, u); err != nil {
		return nil, err
	}

	a.logger.Info("master registered", "user_id", u.ID, "username", u.Username)
	return userInfo(u), nil
}

// UserInfo returns the credential-free record of an account.
func (a *Authority) UserInfo(ctx context.Context, req UserInfoRequest) (any, error) {
	u, err := a.users.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	return userInfo(u), nil
}

// MasterInfo returns the public profile of the deployment's master.
func (a *Authority) MasterInfo(ctx context.Context) (any, error) {
	u, err := a.users.GetMaster(ctx)
	if err != nil {
		return nil, err
	}
	info := userInfo(u)
	// Public endpoint: do not leak login telemetry.
	info.LastLoginAt = time.Time{}
	info.LastLoginIP = ""
	return info, nil
}

// userInfo maps a user to its external, credential-free shape.
func userInfo(u *user.User) *UserInfo {
	return &UserInfo{
		ID:          u.ID,
		Username:    u.Username,
		Nickname:    u.Nickname,
		Role:        string(u.Role),
		CreatedAt:   u.CreatedAt,
		LastLoginAt: u.LastLoginAt,
		LastLoginIP: u.LastLoginIP,
	}
}
