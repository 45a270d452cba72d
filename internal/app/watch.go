package app

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/calderaops/snapsweep/internal/engine"
	serrors "github.com/calderaops/snapsweep/internal/errors"
	"github.com/calderaops/snapsweep/internal/output"
	"github.com/calderaops/snapsweep/internal/watcher"
)

var (
	watchFlagSource   string
	watchFlagSchedule string
	watchFlagDebounce time.Duration
	watchDaemon       bool
	watchDaemonChild  bool
	watchPIDFile      string
	watchLogFile      string
	watchStop         bool

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Keep the source directory pruned continuously",
		Long: `Watch the source directory and apply the retention policy whenever new
snapshots appear. Filesystem events are debounced so a producer that is
still writing a snapshot does not trigger a half-finished prune.

An optional cron schedule prunes periodically regardless of filesystem
activity, which matters when the source fills up by rename from another
filesystem that fsnotify cannot observe.

Watch modes:
  • Foreground (default): run in the current terminal, Ctrl+C to stop
  • Daemon: run as a background process
  • Stop: stop a running daemon`,
		Example: `  # Run in foreground (Ctrl+C to stop)
  snapsweep watch --source /backups

  # Also prune every night at 03:00
  snapsweep watch --source /backups --schedule "0 3 * * *"

  # Run as background daemon
  snapsweep watch --source /backups --daemon

  # Stop running daemon
  snapsweep watch --stop`,
		RunE: runWatch,
	}
)

func init() {
	watchCmd.Flags().StringVar(&watchFlagSource, "source", "", "snapshot directory to watch")
	watchCmd.Flags().StringVar(&watchFlagSchedule, "schedule", "", "cron expression for periodic prunes (e.g. \"0 3 * * *\")")
	watchCmd.Flags().DurationVar(&watchFlagDebounce, "debounce", 0, "quiet period after the last event before pruning (default 30s)")
	watchCmd.Flags().BoolVar(&watchDaemon, "daemon", false, "run as background daemon")
	watchCmd.Flags().BoolVar(&watchDaemonChild, "daemon-child", false, "internal flag for daemon child process")
	watchCmd.Flags().StringVar(&watchPIDFile, "pid-file", "", "PID file path (default: ~/.snapsweep/watch.pid)")
	watchCmd.Flags().StringVar(&watchLogFile, "log-file", "", "log file path (default: ~/.snapsweep/watch.log)")
	watchCmd.Flags().BoolVar(&watchStop, "stop", false, "stop running daemon")

	// Hide the internal daemon-child flag from help
	watchCmd.Flags().MarkHidden("daemon-child")

	RootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if watchPIDFile == "" {
		defaultPID, err := getDefaultPIDFile()
		if err != nil {
			return fmt.Errorf("failed to get default PID file path: %w", err)
		}
		watchPIDFile = defaultPID
	}
	if watchLogFile == "" {
		defaultLog, err := getDefaultLogFile()
		if err != nil {
			return fmt.Errorf("failed to get default log file path: %w", err)
		}
		watchLogFile = defaultLog
	}

	if watchStop {
		return stopWatchDaemon()
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := buildLogger(cfg)
	if err != nil {
		return err
	}
	source, err := resolveSource(cfg, watchFlagSource)
	if err != nil {
		return err
	}
	engCfg, err := buildEngineConfig(cfg, cmd, source, false)
	if err != nil {
		return err
	}

	schedule := cfg.Watch.Schedule
	if watchFlagSchedule != "" {
		schedule = watchFlagSchedule
	}
	debounce := cfg.Watch.Debounce
	if watchFlagDebounce > 0 {
		debounce = watchFlagDebounce
	}

	// Daemon mode re-executes the binary; the child opens its own store.
	if watchDaemon {
		return startWatchDaemon()
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	eng := engine.New(engCfg, st, logger)

	w, err := watcher.New(watcher.Config{
		Dir:      source,
		Naming:   engCfg.Naming,
		Debounce: debounce,
		Schedule: schedule,
		Run: func() error {
			_, err := eng.Run()
			return err
		},
		Logger: logger,
	})
	if err != nil {
		return serrors.NewConfig("configuring watcher", err)
	}

	if watchDaemonChild {
		return w.RunDaemon(watchPIDFile)
	}

	return runWatchForeground(w)
}

func stopWatchDaemon() error {
	running, err := watcher.IsDaemonRunning(watchPIDFile)
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}
	if !running {
		fmt.Println("Daemon is not running")
		return nil
	}

	spinner := output.NewSpinner("Stopping daemon...")
	spinner.Start()
	if err := watcher.StopDaemon(watchPIDFile); err != nil {
		spinner.Stop()
		return fmt.Errorf("failed to stop daemon: %w", err)
	}
	spinner.StopWithMessage("✓ Daemon stopped")

	return nil
}

func startWatchDaemon() error {
	spinner := output.NewSpinner("Starting daemon...")
	spinner.Start()
	if err := watcher.StartDaemon(watchPIDFile, watchLogFile, daemonChildArgs()); err != nil {
		spinner.Stop()
		return fmt.Errorf("failed to start daemon: %w", err)
	}
	spinner.StopWithMessage("✓ Daemon started")

	fmt.Printf("\nWatch daemon started\n")
	fmt.Printf("  PID file: %s\n", watchPIDFile)
	fmt.Printf("  Log file: %s\n", watchLogFile)
	fmt.Printf("\nTo stop: snapsweep watch --stop\n")

	return nil
}

// daemonChildArgs rebuilds the watch invocation for the daemon child,
// forwarding every relevant flag so the child sees the same
// configuration the parent was started with.
func daemonChildArgs() []string {
	args := []string{"watch", "--daemon-child",
		"--pid-file", watchPIDFile,
		"--log-file", watchLogFile,
	}
	if watchFlagSource != "" {
		args = append(args, "--source", watchFlagSource)
	}
	if watchFlagSchedule != "" {
		args = append(args, "--schedule", watchFlagSchedule)
	}
	if watchFlagDebounce > 0 {
		args = append(args, "--debounce", watchFlagDebounce.String())
	}
	if cfgPath != "" {
		args = append(args, "--config", cfgPath)
	}
	if dbPath != "" {
		args = append(args, "--db", dbPath)
	}
	if logLevel != "" {
		args = append(args, "--log-level", logLevel)
	}
	if logFormat != "" {
		args = append(args, "--log-format", logFormat)
	}
	return args
}

func runWatchForeground(w *watcher.Watcher) error {
	fmt.Println("Watching for snapshots (press Ctrl+C to stop)...")
	fmt.Println()

	if err := w.Start(); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigCh
	fmt.Printf("\nReceived signal %v, shutting down...\n", sig)

	spinner := output.NewSpinner("Stopping watcher...")
	spinner.Start()
	if err := w.Stop(); err != nil {
		spinner.Stop()
		return fmt.Errorf("failed to stop watcher: %w", err)
	}
	spinner.StopWithMessage("✓ Watcher stopped")

	return nil
}
