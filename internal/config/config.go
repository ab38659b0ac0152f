// Package config provides configuration types for the wisp gateway.
//
// Configuration is file-based (wisp-gate.yaml) with environment variable
// overrides. The schema is intentionally small: one listener, one user
// database, one dispatch timeout. Anything the backend services need beyond
// that is owned by the services themselves.
package config

import "github.com/spf13/viper"

// Config is the top-level configuration for the wisp gateway.
type Config struct {
	// Server configures the HTTP server listener.
	Server ServerConfig `yaml:"server" mapstructure:"server"`

	// Auth configures the user database and login throttling.
	Auth AuthConfig `yaml:"auth" mapstructure:"auth"`

	// Dispatch configures the RPC dispatcher.
	Dispatch DispatchConfig `yaml:"dispatch" mapstructure:"dispatch"`

	// Telemetry configures trace export.
	Telemetry TelemetryConfig `yaml:"telemetry" mapstructure:"telemetry"`

	// DevMode enables development features (verbose logging, trace export
	// to stdout).
	DevMode bool `yaml:"dev_mode" mapstructure:"dev_mode"`
}

// ServerConfig configures the HTTP server.
// Only plain HTTP is supported; terminate TLS at a reverse proxy.
type ServerConfig struct {
	// HTTPAddr is the address to listen on (e.g., "127.0.0.1:8080", "0.0.0.0:8080").
	// Defaults to "127.0.0.1:8080" (localhost only) if empty.
	HTTPAddr string `yaml:"http_addr" mapstructure:"http_addr" validate:"omitempty,hostname_port"`

	// LogLevel sets the minimum log level.
	// Valid values: "debug", "info", "warn", "error".
	// Defaults to "info" if empty. DevMode=true overrides to "debug".
	LogLevel string `yaml:"log_level" mapstructure:"log_level" validate:"omitempty,oneof=debug info warn warning error"`
}

// AuthConfig configures the user store and login throttling.
type AuthConfig struct {
	// DatabasePath is the path to the SQLite user database.
	// Defaults to "wisp-gate.db" in the working directory.
	DatabasePath string `yaml:"database_path" mapstructure:"database_path"`

	// LoginRate is the sustained login attempts per period allowed for a
	// single (client IP, username) pair. Defaults to 5.
	LoginRate int `yaml:"login_rate" mapstructure:"login_rate" validate:"omitempty,min=1"`

	// LoginBurst is the burst allowance on top of LoginRate. Defaults to 5.
	LoginBurst int `yaml:"login_burst" mapstructure:"login_burst" validate:"omitempty,min=1"`

	// LoginPeriod is the throttle window (e.g., "1m"). Defaults to "1m".
	LoginPeriod string `yaml:"login_period" mapstructure:"login_period" validate:"omitempty,duration_string"`

	// CleanupInterval is how often expired throttle entries are evicted
	// (e.g., "5m"). Defaults to "5m".
	CleanupInterval string `yaml:"cleanup_interval" mapstructure:"cleanup_interval" validate:"omitempty,duration_string"`
}

// DispatchConfig configures the RPC dispatcher.
type DispatchConfig struct {
	// CallTimeout is the per-call deadline for backend operations
	// (e.g., "10s"). Defaults to "10s".
	CallTimeout string `yaml:"call_timeout" mapstructure:"call_timeout" validate:"omitempty,duration_string"`
}

// TelemetryConfig configures trace export.
type TelemetryConfig struct {
	// TraceStdout writes spans to stdout as they complete.
	// Defaults to false; DevMode=true overrides to true.
	TraceStdout bool `yaml:"trace_stdout" mapstructure:"trace_stdout"`
}

// SetDefaults applies sensible default values to the configuration.
func (c *Config) SetDefaults() {
	// Bind to localhost only by default. Users who need network access
	// must explicitly set http_addr: ":8080" or "0.0.0.0:8080".
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = "127.0.0.1:8080"
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}

	if c.Auth.DatabasePath == "" {
		c.Auth.DatabasePath = "wisp-gate.db"
	}
	if c.Auth.LoginRate == 0 {
		c.Auth.LoginRate = 5
	}
	if c.Auth.LoginBurst == 0 {
		c.Auth.LoginBurst = 5
	}
	if c.Auth.LoginPeriod == "" {
		c.Auth.LoginPeriod = "1m"
	}
	if c.Auth.CleanupInterval == "" {
		c.Auth.CleanupInterval = "5m"
	}

	if c.Dispatch.CallTimeout == "" {
		c.Dispatch.CallTimeout = "10s"
	}
}

// SetDevDefaults applies development-mode overrides.
// Called after SetDefaults and after CLI flags may have flipped DevMode.
func (c *Config) SetDevDefaults() {
	if !c.DevMode {
		return
	}

	c.Server.LogLevel = "debug"

	// Only apply the trace default when the user hasn't explicitly set it.
	// viper.IsSet distinguishes "not set" (zero value) from "explicitly false".
	if !viper.IsSet("telemetry.trace_stdout") {
		c.Telemetry.TraceStdout = true
	}
}
