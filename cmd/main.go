// Package main runs the Instagram DM bot dashboard API.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "instadm",
	Short: "Dashboard API for multi-tenant Instagram DM bots",
	Long: `instadm serves the dashboard backend for companies running an Instagram
DM bot: authentication, analytics, appointments, product details and
company settings.

Configuration is read from the environment (and an optional .env file).

Examples:
  # Run the API with MongoDB
  DATABASE_URL=mongodb://localhost:27017 instadm serve

  # Create Postgres tables, then exit
  DATABASE_DRIVER=postgres DATABASE_URL=postgres://... instadm migrate`,
	Version:       version,
	SilenceUsage:  true,
	// Running without a subcommand starts the server.
	RunE: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create tables or indexes for the configured database and exit",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}
