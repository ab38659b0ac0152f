package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/wispcms/wispgate/internal/adapter/inbound/http"
	"github.com/wispcms/wispgate/internal/adapter/outbound/bus"
	"github.com/wispcms/wispgate/internal/adapter/outbound/memory"
	"github.com/wispcms/wispgate/internal/adapter/outbound/sqlite"
	"github.com/wispcms/wispgate/internal/config"
	"github.com/wispcms/wispgate/internal/domain/ratelimit"
	"github.com/wispcms/wispgate/internal/domain/rpc"
	"github.com/wispcms/wispgate/internal/service"
	"github.com/wispcms/wispgate/internal/telemetry"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the gateway",
	Long: `Start the wisp gateway.

The gateway serves the HTTP API, owns login sessions, and dispatches
commands to the user and content services over the internal bus.

Examples:
  # Start with config file settings
  wisp-gate start

  # Start with a specific config file
  wisp-gate --config /path/to/config.yaml start

  # Start in development mode
  wisp-gate start --dev`,
	RunE: runStart,
}

var devMode bool

func init() {
	startCmd.Flags().BoolVar(&devMode, "dev", false, "Enable development mode (debug logging, stdout trace export)")
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	// Load configuration (without validation, so CLI flags can override first)
	cfg, err := config.LoadConfigRaw()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if devMode {
		cfg.DevMode = true
	}

	cfg.SetDevDefaults()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	// Signal context for graceful shutdown.
	// stop() restores default signal handling so a second Ctrl+C does a hard kill.
	ctx, stop := signal.NotifyContext(context.Background(), gracefulSignals()...)
	go func() {
		<-ctx.Done()
		stop()
	}()

	logLevel := parseLogLevel(cfg.Server.LogLevel)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	logger.Debug("log level configured", "level", cfg.Server.LogLevel, "effective", logLevel.String())

	if configFile := config.ConfigFileUsed(); configFile != "" {
		logger.Info("loaded config", "file", configFile)
	}

	if err := run(ctx, cfg, logger); err != nil {
		return err
	}

	logger.Info("wisp-gate stopped")
	return nil
}

// run wires all components together and blocks until shutdown.
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if cfg.DevMode {
		logger.Warn("development mode is enabled, do not use in production")
	}

	// Telemetry first so every later component can pick up the global tracer.
	tele, err := telemetry.Init("wisp-gate", Version, cfg.Telemetry.TraceStdout)
	if err != nil {
		return fmt.Errorf("failed to init telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tele.Shutdown(shutdownCtx); err != nil {
			logger.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	// Stores.
	users, err := sqlite.Open(cfg.Auth.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open user database: %w", err)
	}
	defer func() { _ = users.Close() }()
	logger.Info("user database open", "path", cfg.Auth.DatabasePath)

	sessions := memory.NewSessionStore(logger)
	posts := memory.NewPostStore()

	limiter := memory.NewRateLimiterWithConfig(cfg.Auth.CleanupIntervalDuration(), time.Hour)
	limiter.StartCleanup(ctx)
	defer limiter.Stop()

	// Backend services behind the bus transport.
	transport := bus.NewTransport(logger)
	defer transport.Close()

	loginLimit := ratelimit.Config{
		Rate:   cfg.Auth.LoginRate,
		Burst:  cfg.Auth.LoginBurst,
		Period: cfg.Auth.LoginPeriodDuration(),
	}
	authority := service.NewAuthority(users, sessions, limiter, loginLimit, logger)
	userRegistry := service.NewRegistry("user", logger)
	authority.Mount(userRegistry)
	if err := transport.Serve("user", userRegistry.Handle); err != nil {
		return fmt.Errorf("failed to serve user service: %w", err)
	}

	contentService := service.NewContentService(posts, logger)
	contentRegistry := service.NewRegistry("content", logger)
	contentService.Mount(contentRegistry)
	if err := transport.Serve("content", contentRegistry.Handle); err != nil {
		return fmt.Errorf("failed to serve content service: %w", err)
	}

	// Dispatcher with the reply stream routed into its correlation table.
	dispatcher := rpc.NewDispatcher(transport,
		rpc.WithTimeout(cfg.Dispatch.CallTimeoutDuration()),
		rpc.WithTracer(otel.Tracer("wispgate/rpc")),
	)
	if err := transport.Replies(dispatcher.Deliver); err != nil {
		return fmt.Errorf("failed to subscribe to replies: %w", err)
	}

	// HTTP edge.
	handler := http.NewHandler(dispatcher)
	guard := http.NewGuard(sessions, users)
	healthChecker := http.NewHealthChecker(sessions, limiter, dispatcher, Version)

	gateway := http.NewGateway(handler, guard,
		http.WithAddr(cfg.Server.HTTPAddr),
		http.WithLogger(logger),
		http.WithHealthChecker(healthChecker),
		http.WithGauges(
			func() float64 { return float64(sessions.Count()) },
			func() float64 { return float64(dispatcher.Pending()) },
		),
	)

	logger.Info("wisp-gate starting",
		"version", Version,
		"addr", cfg.Server.HTTPAddr,
		"dev_mode", cfg.DevMode,
	)

	return gateway.Start(ctx)
}

// parseLogLevel converts a string log level to slog.Level.
// Returns slog.LevelInfo for unrecognized values.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
