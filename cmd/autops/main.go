package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/hasdouaaa/dashboard-autops/internal/api"
)

var (
	// Version information (set via ldflags)
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	// Global flags
	configPath string
	listenAddr string
)

var rootCmd = &cobra.Command{
	Use:   "autops",
	Short: "AutOps - self-hosted access-log dashboard",
	Long: `AutOps is a self-hosted dashboard for web-server access logs.

Upload a semicolon-delimited CSV of access logs and it parses timestamps
and user-agents, classifies bot traffic, and serves a battery of traffic
aggregates plus an ad-hoc chart builder over a JSON API.

Get started:
  autops sample -o demo.csv   # Generate a demo log file
  autops serve                # Start the server`,
	Run: func(cmd *cobra.Command, args []string) {
		// Default behavior: run serve command
		serveCmd.Run(cmd, args)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("autops %s (commit %s, built %s)\n", Version, Commit, BuildDate)
	},
}

func init() {
	// Set version in API package for /api/version endpoint
	api.Version = Version

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default config.json)")
	rootCmd.PersistentFlags().StringVarP(&listenAddr, "listen", "l", "", "Address to listen on (overrides config)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(sampleCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	// Best effort: a missing .env is fine
	godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
