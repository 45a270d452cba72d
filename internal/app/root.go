package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	cfgPath   string
	dbPath    string
	logLevel  string
	logFormat string

	// RootCmd is the root command for snapsweep
	RootCmd = &cobra.Command{
		Use:   "snapsweep",
		Short: "Generational retention for timestamp-named snapshot directories",
		Long: `snapsweep thins a directory of timestamped snapshots down to a
generational retention policy: keep one snapshot per hour, day, week,
month and year, for a configurable number of each, and delete the rest.

Snapshots are directories named YYYYMMDD-HHMMSS (e.g. 20240610-120000).
Anything else in the source directory is left untouched.

The retention windows are anchored to the newest snapshot, not to the
wall clock, so a source that stopped receiving snapshots is never
drained just because time passed.

Quick Start:
  1. snapsweep plan --source /backups      # preview, deletes nothing
  2. snapsweep prune --source /backups     # apply the policy
  3. snapsweep watch --source /backups --daemon   # keep it pruned

Every prune is recorded in a local SQLite database; inspect past runs
with 'snapsweep history'.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("snapsweep: generational retention for snapshot directories")
			fmt.Println()
			fmt.Println("Run 'snapsweep plan --source DIR' to preview a prune.")
			fmt.Println("Run 'snapsweep --help' for the full reference.")
			return nil
		},
	}
)

func init() {
	// Global flags
	RootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file path (YAML)")
	RootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "audit database path (default: ~/.snapsweep/snapsweep.db)")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	RootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text, json")

	// Enable cobra's built-in suggestion feature for unknown subcommands
	RootCmd.SuggestionsMinimumDistance = 2
}

// Execute runs the root command
func Execute() error {
	return RootCmd.Execute()
}

// getDBPath returns the audit database path, using the flag value,
// then the config file value, then the default under ~/.snapsweep.
func getDBPath(configured string) (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}
	if configured != "" {
		return configured, nil
	}

	dir, err := stateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "snapsweep.db"), nil
}

// getDefaultPIDFile returns the default PID file path
func getDefaultPIDFile() (string, error) {
	dir, err := stateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "watch.pid"), nil
}

// getDefaultLogFile returns the default log file path
func getDefaultLogFile() (string, error) {
	dir, err := stateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "watch.log"), nil
}

// stateDir returns ~/.snapsweep, creating it if needed.
func stateDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	dir := filepath.Join(home, ".snapsweep")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create snapsweep directory: %w", err)
	}
	return dir, nil
}
