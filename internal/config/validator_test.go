package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	var cfg Config
	cfg.SetDefaults()
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "bad http addr",
			mutate:  func(c *Config) { c.Server.HTTPAddr = "not an address" },
			wantErr: "host:port",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Server.LogLevel = "loud" },
			wantErr: "must be one of",
		},
		{
			name:    "negative login rate",
			mutate:  func(c *Config) { c.Auth.LoginRate = -1 },
			wantErr: "at least",
		},
		{
			name:    "bad login period",
			mutate:  func(c *Config) { c.Auth.LoginPeriod = "soon" },
			wantErr: "positive duration",
		},
		{
			name:    "bad call timeout",
			mutate:  func(c *Config) { c.Dispatch.CallTimeout = "-5s" },
			wantErr: "positive duration",
		},
		{
			name:   "port-only addr is valid",
			mutate: func(c *Config) { c.Server.HTTPAddr = ":8080" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want substring %q", err, tt.wantErr)
			}
		})
	}
}
