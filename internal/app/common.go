package app

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/calderaops/snapsweep/internal/config"
	"github.com/calderaops/snapsweep/internal/engine"
	serrors "github.com/calderaops/snapsweep/internal/errors"
	"github.com/calderaops/snapsweep/internal/logging"
	"github.com/calderaops/snapsweep/internal/retention"
	"github.com/calderaops/snapsweep/internal/store"
)

// loadConfig loads the config file named by --config, or the built-in
// defaults when no file is given.
func loadConfig() (*config.Config, error) {
	if cfgPath == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, serrors.NewConfig("loading config file", err)
	}
	return cfg, nil
}

// buildLogger creates the process logger. The --log-level and
// --log-format flags override the config file.
func buildLogger(cfg *config.Config) (*slog.Logger, error) {
	level := cfg.Logging.Level
	if logLevel != "" {
		level = logLevel
	}
	format := cfg.Logging.Format
	if logFormat != "" {
		format = logFormat
	}
	logger, err := logging.New(level, format, os.Stderr)
	if err != nil {
		return nil, serrors.NewConfig("configuring logging", err)
	}
	return logger, nil
}

// openStore opens (and if necessary initializes) the audit database.
func openStore(cfg *config.Config) (*store.Store, error) {
	path, err := getDBPath(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to get database path: %w", err)
	}
	st, err := store.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := st.CreateSchema(); err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to create database schema: %w", err)
	}
	return st, nil
}

// resolveSource returns the snapshot directory from the --source flag or
// the config file; one of the two must name it.
func resolveSource(cfg *config.Config, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if cfg.Source.Path != "" {
		return cfg.Source.Path, nil
	}
	return "", serrors.NewConfig("no snapshot directory: pass --source or set source.path in the config file", nil)
}

// resolvePolicy starts from the config file's retention counts and
// applies any per-tier flags the user set on this invocation. Checking
// Changed (rather than non-zero) lets an explicit --keep-hours=0
// disable a tier.
func resolvePolicy(cfg *config.Config, cmd *cobra.Command) retention.Policy {
	policy := cfg.Policy()
	flags := cmd.Flags()
	if flags.Changed("keep-hours") {
		policy.Hours, _ = flags.GetInt("keep-hours")
	}
	if flags.Changed("keep-days") {
		policy.Days, _ = flags.GetInt("keep-days")
	}
	if flags.Changed("keep-weeks") {
		policy.Weeks, _ = flags.GetInt("keep-weeks")
	}
	if flags.Changed("keep-months") {
		policy.Months, _ = flags.GetInt("keep-months")
	}
	if flags.Changed("keep-years") {
		policy.Years, _ = flags.GetInt("keep-years")
	}
	return policy.Normalize()
}

// registerPolicyFlags adds the per-tier retention flags shared by the
// prune and plan commands.
func registerPolicyFlags(cmd *cobra.Command) {
	cmd.Flags().Int("keep-hours", 24, "hourly snapshots to retain")
	cmd.Flags().Int("keep-days", 7, "daily snapshots to retain")
	cmd.Flags().Int("keep-weeks", 4, "weekly snapshots to retain")
	cmd.Flags().Int("keep-months", 12, "monthly snapshots to retain")
	cmd.Flags().Int("keep-years", 10, "yearly snapshots to retain")
}

// buildEngineConfig assembles an engine configuration from the config
// file and command flags.
func buildEngineConfig(cfg *config.Config, cmd *cobra.Command, source string, dryRun bool) (engine.Config, error) {
	naming, err := cfg.Naming()
	if err != nil {
		return engine.Config{}, serrors.NewConfig("invalid snapshot naming", err)
	}
	return engine.Config{
		Source: source,
		Policy: resolvePolicy(cfg, cmd),
		Naming: naming,
		DryRun: dryRun,
	}, nil
}
