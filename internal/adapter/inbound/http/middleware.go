package http

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/wispcms/wispgate/internal/ctxkey"
)

// RequestIDMiddleware extracts or generates a request ID and enriches the logger.
// The request ID is stored in context using ctxkey.RequestIDKey.
// An enriched logger with a request_id field is stored using ctxkey.LoggerKey.
func RequestIDMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = uuid.New().String()
			}

			enrichedLogger := logger.With("request_id", requestID)

			ctx := context.WithValue(r.Context(), ctxkey.RequestIDKey{}, requestID)
			ctx = context.WithValue(ctx, ctxkey.LoggerKey{}, enrichedLogger)

			// Echo the ID so clients can correlate.
			w.Header().Set("X-Request-ID", requestID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// LoggerFromContext retrieves the enriched logger from context.
// Returns slog.Default() if no logger is in context.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(ctxkey.LoggerKey{}).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// RealIPMiddleware extracts the client's real IP address.
// It checks X-Forwarded-For and X-Real-IP headers (for reverse proxy support),
// falling back to r.RemoteAddr if no proxy headers are present.
// Only the first IP in X-Forwarded-For is trusted to avoid spoofing.
// The IP is stored in context using ctxkey.IPAddressKey.
func RealIPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := extractRealIP(r)
		ctx := context.WithValue(r.Context(), ctxkey.IPAddressKey{}, ip)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClientIPFromContext retrieves the client IP stored by RealIPMiddleware.
func ClientIPFromContext(ctx context.Context) string {
	if ip, ok := ctx.Value(ctxkey.IPAddressKey{}).(string); ok {
		return ip
	}
	return ""
}

// extractRealIP extracts the client's real IP address from the request.
func extractRealIP(r *http.Request) string {
	// X-Forwarded-For: client, proxy1, proxy2 - trust only the first entry.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			ip := strings.TrimSpace(ips[0])
			if ip != "" {
				return ip
			}
		}
	}

	// X-Real-IP (nginx-style header).
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	// RemoteAddr is "host:port"; extract the host.
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
