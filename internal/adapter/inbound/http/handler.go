package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/wispcms/wispgate/internal/domain/rpc"
	"github.com/wispcms/wispgate/internal/service"
)

// maxBodySize bounds inbound request bodies.
// Posts are text; 1MB is generous.
const maxBodySize = 1 * 1024 * 1024

// Handler composes gateway commands and dispatches them to the owning
// backend service. It holds no domain state; every mutation happens behind
// the dispatcher.
type Handler struct {
	dispatcher *rpc.Dispatcher
}

// NewHandler creates the gateway handler over the dispatcher.
func NewHandler(dispatcher *rpc.Dispatcher) *Handler {
	return &Handler{dispatcher: dispatcher}
}

// userTarget addresses an operation on the session authority.
func userTarget(operation string) rpc.Target {
	return rpc.Target{Service: "user", Operation: operation}
}

// contentTarget addresses an operation on the content service.
func contentTarget(operation string) rpc.Target {
	return rpc.Target{Service: "content", Operation: operation}
}

// handleRegister creates the master account.
func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h.dispatch(w, r, userTarget(service.OpRegister), req, http.StatusCreated)
}

// handleLogin authenticates and returns the new session with its token.
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	// Client metadata comes from the connection, never from the body.
	req.ClientIP = ClientIPFromContext(r.Context())
	req.UserAgent = r.UserAgent()
	h.dispatch(w, r, userTarget(service.OpLogin), req, http.StatusOK)
}

// handleLogout revokes the caller's own session.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess, ok := SessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	h.dispatch(w, r, userTarget(service.OpLogout), service.LogoutRequest{TokenID: sess.TokenID}, http.StatusOK)
}

// handleLogoutAll revokes every session of the caller.
func (h *Handler) handleLogoutAll(w http.ResponseWriter, r *http.Request) {
	sess, ok := SessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	h.dispatch(w, r, userTarget(service.OpLogoutAll), service.LogoutAllRequest{UserID: sess.UserID}, http.StatusOK)
}

// handleSessions lists the caller's sessions ordered by issue time.
func (h *Handler) handleSessions(w http.ResponseWriter, r *http.Request) {
	sess, ok := SessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	h.dispatch(w, r, userTarget(service.OpListSessions), service.ListSessionsRequest{UserID: sess.UserID}, http.StatusOK)
}

// handleDeleteSession revokes one of the caller's own sessions by token.
// The requester identity comes from the guard, so the authority can refuse
// cross-user deletion.
func (h *Handler) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := SessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	req := service.DeleteSessionRequest{
		UserID:  sess.UserID,
		TokenID: r.PathValue("tokenId"),
	}
	h.dispatch(w, r, userTarget(service.OpDeleteSession), req, http.StatusOK)
}

// handleUserInfo returns the caller's own record.
func (h *Handler) handleUserInfo(w http.ResponseWriter, r *http.Request) {
	sess, ok := SessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	h.dispatch(w, r, userTarget(service.OpUserInfo), service.UserInfoRequest{UserID: sess.UserID}, http.StatusOK)
}

// handleMasterInfo returns the public master profile.
func (h *Handler) handleMasterInfo(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, userTarget(service.OpMasterInfo), struct{}{}, http.StatusOK)
}

// handleCreatePost creates a post; the guard has already enforced master.
func (h *Handler) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	sess, ok := SessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	var req service.CreatePostRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.AuthorID = sess.UserID
	h.dispatch(w, r, contentTarget(service.OpCreatePost), req, http.StatusCreated)
}

// handleGetPost fetches one post by slug.
func (h *Handler) handleGetPost(w http.ResponseWriter, r *http.Request) {
	req := service.GetPostRequest{Slug: r.PathValue("slug")}
	h.dispatch(w, r, contentTarget(service.OpGetPost), req, http.StatusOK)
}

// handleListPosts lists posts newest first.
func (h *Handler) handleListPosts(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, contentTarget(service.OpListPosts), struct{}{}, http.StatusOK)
}

// dispatch sends the command to the addressed backend and shapes the
// HTTP-visible result, translating the error taxonomy into status codes.
func (h *Handler) dispatch(w http.ResponseWriter, r *http.Request, target rpc.Target, payload any, okStatus int) {
	body, err := h.dispatcher.Call(r.Context(), target, payload)
	if err != nil {
		status, message := statusForError(err)
		if status == http.StatusInternalServerError || status == http.StatusBadGateway || status == http.StatusGatewayTimeout {
			LoggerFromContext(r.Context()).Error("dispatch failed", "target", target.String(), "error", err)
		}
		writeError(w, status, message)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(okStatus)
	_, _ = w.Write(body)
}

// statusForError maps dispatch errors onto externally visible statuses.
// Transport failures and business failures stay distinguishable: the
// dispatcher propagates backend errors verbatim and the choice of surface
// status is made here, at the edge.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, rpc.ErrTimeout):
		return http.StatusGatewayTimeout, "backend timed out"
	case errors.Is(err, rpc.ErrUnreachable):
		return http.StatusBadGateway, "backend unavailable"
	}

	appErr, ok := rpc.AsAppError(err)
	if !ok {
		return http.StatusInternalServerError, "internal error"
	}

	switch appErr.Code {
	case rpc.CodeInvalidCredentials:
		return http.StatusUnauthorized, appErr.Message
	case rpc.CodeForbidden:
		return http.StatusForbidden, appErr.Message
	case rpc.CodeNotFound:
		return http.StatusNotFound, appErr.Message
	case rpc.CodeAlreadyExists:
		return http.StatusConflict, appErr.Message
	case rpc.CodeRateLimited:
		return http.StatusTooManyRequests, appErr.Message
	case rpc.CodeBadRequest:
		return http.StatusBadRequest, appErr.Message
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// decodeBody parses a JSON request body into dst, rejecting oversized or
// malformed bodies with 400. Returns false when a response was written.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		writeError(w, http.StatusBadRequest, "malformed JSON body")
		return false
	}
	return true
}

// errorResponse is the uniform error body.
type errorResponse struct {
	Error string `json:"error"`
}

// writeError writes the uniform JSON error shape.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: message})
}
