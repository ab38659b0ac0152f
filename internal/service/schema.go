// Package service implements the backend services reached through the
// RPC dispatcher: the session authority and the content service.
package service

import (
	"time"

	"github.com/wispcms/wispgate/internal/domain/session"
)

// Operation names served by the session authority (target service "user").
const (
	OpLogin         = "login"
	OpLogout        = "logout"
	OpLogoutAll     = "logoutAll"
	OpListSessions  = "listSessions"
	OpDeleteSession = "deleteSession"
	OpRegister      = "register"
	OpUserInfo      = "info"
	OpMasterInfo    = "masterInfo"
)

// Operation names served by the content service (target service "content").
const (
	OpCreatePost = "createPost"
	OpGetPost    = "getPost"
	OpListPosts  = "listPosts"
)

// LoginRequest carries credentials plus the client metadata recorded on the
// new session.
type LoginRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	ClientIP  string `json:"client_ip"`
	UserAgent string `json:"user_agent"`
}

// SessionSummary is the externally visible shape of a session.
type SessionSummary struct {
	TokenID    string    `json:"token_id"`
	UserID     string    `json:"user_id"`
	IP         string    `json:"ip"`
	UserAgent  string    `json:"user_agent"`
	IssuedAt   time.Time `json:"issued_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

// summarize maps a domain session to its external shape.
func summarize(s *session.Session) SessionSummary {
	return SessionSummary{
		TokenID:    s.TokenID,
		UserID:     s.UserID,
		IP:         s.Client.IP,
		UserAgent:  s.Client.UserAgent,
		IssuedAt:   s.IssuedAt,
		LastSeenAt: s.LastSeenAt,
	}
}

// LoginResponse is returned on successful authentication.
type LoginResponse struct {
	Session  SessionSummary `json:"session"`
	Nickname string         `json:"nickname"`
	Role     string         `json:"role"`
}

// LogoutRequest names the token to revoke.
type LogoutRequest struct {
	TokenID string `json:"token_id"`
}

// OkResponse acknowledges an idempotent operation.
type OkResponse struct {
	Ok bool `json:"ok"`
}

// LogoutAllRequest revokes every session of a user.
type LogoutAllRequest struct {
	UserID string `json:"user_id"`
}

// LogoutAllResponse reports how many sessions were revoked.
type LogoutAllResponse struct {
	Revoked int `json:"revoked"`
}

// ListSessionsRequest asks for a user's sessions.
type ListSessionsRequest struct {
	UserID string `json:"user_id"`
}

// ListSessionsResponse carries sessions ordered by issue time ascending.
type ListSessionsResponse struct {
	Sessions []SessionSummary `json:"sessions"`
}

// DeleteSessionRequest revokes one of the requester's own sessions.
// UserID is the requester, resolved by the gateway's auth guard, never
// taken from the client.
type DeleteSessionRequest struct {
	UserID  string `json:"user_id"`
	TokenID string `json:"token_id"`
}

// RegisterRequest creates the deployment's master account.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
}

// UserInfoRequest asks for one account's public record.
type UserInfoRequest struct {
	UserID string `json:"user_id"`
}

// UserInfo is the credential-free view of an account.
type UserInfo struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Nickname    string    `json:"nickname"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
	LastLoginAt time.Time `json:"last_login_at,omitempty"`
	LastLoginIP string    `json:"last_login_ip,omitempty"`
}

// CreatePostRequest creates a post. AuthorID is resolved by the gateway.
type CreatePostRequest struct {
	Slug     string `json:"slug"`
	Title    string `json:"title"`
	Text     string `json:"text"`
	AuthorID string `json:"author_id"`
}

// PostView is the external shape of a post.
type PostView struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Text      string    `json:"text"`
	AuthorID  string    `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
}

// GetPostRequest fetches a post by slug.
type GetPostRequest struct {
	Slug string `json:"slug"`
}

// ListPostsResponse carries posts ordered by creation time descending.
type ListPostsResponse struct {
	Posts []PostView `json:"posts"`
}
