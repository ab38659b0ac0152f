package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Gateway is the inbound adapter exposing the platform over HTTP.
// It wires the middleware chain, the auth guard and the route table in
// front of the dispatcher-backed handler.
type Gateway struct {
	handler       *Handler
	guard         *Guard
	server        *http.Server
	addr          string
	logger        *slog.Logger
	metrics       *Metrics
	healthChecker *HealthChecker
	sessionCount  func() float64
	rpcPending    func() float64
}

// Option is a functional option for configuring the Gateway.
type Option func(*Gateway)

// WithAddr sets the listen address for the HTTP server.
// Default is "127.0.0.1:8080" (localhost only).
func WithAddr(addr string) Option {
	return func(g *Gateway) {
		g.addr = addr
	}
}

// WithLogger sets the logger for the gateway.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) {
		g.logger = logger
	}
}

// WithHealthChecker sets the health checker for the /health endpoint.
func WithHealthChecker(hc *HealthChecker) Option {
	return func(g *Gateway) {
		g.healthChecker = hc
	}
}

// WithGauges sets the sources sampled by the active_sessions and
// rpc_in_flight gauges.
func WithGauges(sessionCount, rpcPending func() float64) Option {
	return func(g *Gateway) {
		g.sessionCount = sessionCount
		g.rpcPending = rpcPending
	}
}

// NewGateway creates a gateway over the given handler and guard.
func NewGateway(handler *Handler, guard *Guard, opts ...Option) *Gateway {
	g := &Gateway{
		handler: handler,
		guard:   guard,
		addr:    "127.0.0.1:8080",
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// routes builds the gateway's route table.
func (g *Gateway) routes() *http.ServeMux {
	mux := http.NewServeMux()

	// Public routes.
	mux.HandleFunc("POST /api/v1/user/register", g.handler.handleRegister)
	mux.HandleFunc("POST /api/v1/user/login", g.handler.handleLogin)
	mux.HandleFunc("GET /api/v1/user/master/info", g.handler.handleMasterInfo)
	mux.HandleFunc("GET /api/v1/posts", g.handler.handleListPosts)
	mux.HandleFunc("GET /api/v1/posts/{slug}", g.handler.handleGetPost)

	// Protected routes: the guard resolves the token before any handler logic.
	mux.Handle("POST /api/v1/user/logout", g.guard.Require(http.HandlerFunc(g.handler.handleLogout)))
	mux.Handle("POST /api/v1/user/logoutAll", g.guard.Require(http.HandlerFunc(g.handler.handleLogoutAll)))
	mux.Handle("GET /api/v1/user/sessions", g.guard.Require(http.HandlerFunc(g.handler.handleSessions)))
	mux.Handle("DELETE /api/v1/user/session/{tokenId}", g.guard.Require(http.HandlerFunc(g.handler.handleDeleteSession)))
	mux.Handle("GET /api/v1/user/info", g.guard.Require(http.HandlerFunc(g.handler.handleUserInfo)))

	// Master-only routes.
	mux.Handle("POST /api/v1/posts", g.guard.Require(g.guard.MasterOnly(http.HandlerFunc(g.handler.handleCreatePost))))

	if g.healthChecker != nil {
		mux.Handle("GET /health", g.healthChecker.Handler())
	}

	return mux
}

// Start begins accepting HTTP connections.
// It blocks until the context is cancelled or an error occurs.
func (g *Gateway) Start(ctx context.Context) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	g.metrics = NewMetrics(reg, g.sessionCount, g.rpcPending)

	mux := g.routes()
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{
		Registry: reg,
	}))

	// Middleware chain, outermost first:
	// 1. MetricsMiddleware - record duration and status over the full request
	// 2. RequestID - extract/generate request ID and enrich logger
	// 3. RealIP - extract client IP from proxy headers
	var handler http.Handler = mux
	handler = RealIPMiddleware(handler)
	handler = RequestIDMiddleware(g.logger)(handler)
	handler = MetricsMiddleware(g.metrics)(handler)

	g.server = &http.Server{
		Addr:              g.addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		g.logger.Info("starting HTTP server", "addr", g.addr)
		err := g.server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		g.logger.Info("context cancelled, shutting down HTTP server")
		return g.shutdown()
	case err := <-errCh:
		return err
	}
}

// shutdown performs graceful shutdown of the HTTP server.
func (g *Gateway) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := g.server.Shutdown(ctx); err != nil {
		g.logger.Error("error during server shutdown", "error", err)
		return err
	}

	g.logger.Info("HTTP server shutdown complete")
	return nil
}

// Close gracefully shuts down the gateway.
func (g *Gateway) Close() error {
	if g.server == nil {
		return nil
	}
	return g.shutdown()
}
