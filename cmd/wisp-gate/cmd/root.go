// Package cmd provides the CLI commands for the wisp gateway.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wispcms/wispgate/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "wisp-gate",
	Short: "Wisp Gate - session authority and RPC gateway",
	Long: `Wisp Gate is the HTTP edge of the wisp publishing platform.

It owns login sessions and opaque access tokens, guards every request,
and dispatches commands to the backend services over the internal bus.

Quick start:
  1. Create a config file: wisp-gate.yaml
  2. Run: wisp-gate start

Configuration:
  Config is loaded from wisp-gate.yaml in the current directory,
  $HOME/.wisp-gate/, or /etc/wisp-gate/.

  Environment variables can override config values with the WISP_GATE_ prefix.
  Example: WISP_GATE_SERVER_HTTP_ADDR=:9090

Commands:
  start          Start the gateway
  hash-password  Generate an Argon2id hash for a password
  version        Print version information`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./wisp-gate.yaml)")
}

func initConfig() {
	config.InitViper(cfgFile)
}
