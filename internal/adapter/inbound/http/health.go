package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"

	"github.com/wispcms/wispgate/internal/adapter/outbound/memory"
	"github.com/wispcms/wispgate/internal/domain/rpc"
)

// HealthResponse is the JSON response from the /health endpoint.
type HealthResponse struct {
	Status  string            `json:"status"`            // "healthy" or "unhealthy"
	Checks  map[string]string `json:"checks"`            // Component check results
	Version string            `json:"version,omitempty"` // Optional version info
}

// HealthChecker verifies component health.
type HealthChecker struct {
	sessionStore *memory.SessionStore
	rateLimiter  *memory.RateLimiter
	dispatcher   *rpc.Dispatcher
	version      string
}

// NewHealthChecker creates a HealthChecker with optional components.
// Pass nil for components that aren't available.
func NewHealthChecker(
	sessionStore *memory.SessionStore,
	rateLimiter *memory.RateLimiter,
	dispatcher *rpc.Dispatcher,
	version string,
) *HealthChecker {
	return &HealthChecker{
		sessionStore: sessionStore,
		rateLimiter:  rateLimiter,
		dispatcher:   dispatcher,
		version:      version,
	}
}

// Check performs health checks on all components.
func (h *HealthChecker) Check() HealthResponse {
	checks := make(map[string]string)

	// Count() acquires the store lock - if this hangs, we have a problem.
	if h.sessionStore != nil {
		checks["session_store"] = fmt.Sprintf("ok: %d sessions", h.sessionStore.Count())
	} else {
		checks["session_store"] = "not configured"
	}

	if h.rateLimiter != nil {
		_ = h.rateLimiter.Size()
		checks["rate_limiter"] = "ok"
	} else {
		checks["rate_limiter"] = "not configured"
	}

	if h.dispatcher != nil {
		checks["rpc"] = fmt.Sprintf("ok: %d in flight", h.dispatcher.Pending())
	} else {
		checks["rpc"] = "not configured"
	}

	checks["goroutines"] = fmt.Sprintf("%d", runtime.NumGoroutine())

	return HealthResponse{
		Status:  "healthy",
		Checks:  checks,
		Version: h.version,
	}
}

// Handler returns an HTTP handler for the health endpoint.
func (h *HealthChecker) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		health := h.Check()

		w.Header().Set("Content-Type", "application/json")
		if health.Status != "healthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}

		_ = json.NewEncoder(w).Encode(health)
	})
}
