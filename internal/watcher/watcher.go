// Package watcher keeps a snapshot directory pruned continuously. It
// triggers a retention run whenever new snapshots appear (via fsnotify,
// debounced so a burst of writes causes one run) and optionally on a
// cron schedule. Runs never overlap.
package watcher

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"

	"github.com/calderaops/snapsweep/internal/snapshot"
)

// DefaultDebounce is the quiet period after the last filesystem event
// before a retention run is triggered.
const DefaultDebounce = 30 * time.Second

// Config configures a Watcher.
type Config struct {
	// Dir is the snapshot directory to watch.
	Dir string

	// Naming filters filesystem events: only entries whose base name
	// matches the snapshot pattern trigger a run.
	Naming snapshot.Naming

	// Debounce is the quiet period before a run fires. Zero means
	// DefaultDebounce.
	Debounce time.Duration

	// Schedule is an optional cron expression (standard 5-field syntax)
	// for periodic runs independent of filesystem activity. Empty
	// disables scheduled runs.
	Schedule string

	// Run performs one retention pass. The watcher serializes calls.
	Run func() error

	Logger *slog.Logger
}

// Watcher watches a snapshot directory and triggers retention runs.
type Watcher struct {
	cfg    Config
	logger *slog.Logger

	fsw  *fsnotify.Watcher
	cron *cron.Cron

	stopCh chan struct{}
	wg     sync.WaitGroup

	runMu sync.Mutex

	mu      sync.Mutex
	running bool
}

// New validates the configuration and creates a Watcher. The cron
// schedule, if set, is validated here so a bad expression fails before
// the watcher detaches into the background.
func New(cfg Config) (*Watcher, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("watch directory cannot be empty")
	}
	if cfg.Run == nil {
		return nil, fmt.Errorf("run callback cannot be nil")
	}
	if cfg.Naming.Pattern == nil {
		cfg.Naming = snapshot.DefaultNaming()
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Schedule != "" {
		if _, err := cron.ParseStandard(cfg.Schedule); err != nil {
			return nil, fmt.Errorf("invalid cron schedule %q: %w", cfg.Schedule, err)
		}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		cfg:    cfg,
		logger: logger.With("component", "watcher"),
		stopCh: make(chan struct{}),
	}, nil
}

// Start begins watching. It performs one retention run immediately so
// a directory that accumulated snapshots while the watcher was down is
// brought back within policy, then reacts to events and the schedule.
func (w *Watcher) Start() error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := fsw.Add(w.cfg.Dir); err != nil {
		fsw.Close()
		return fmt.Errorf("failed to watch %s: %w", w.cfg.Dir, err)
	}
	w.fsw = fsw

	if w.cfg.Schedule != "" {
		w.cron = cron.New()
		if _, err := w.cron.AddFunc(w.cfg.Schedule, func() {
			w.trigger("schedule")
		}); err != nil {
			fsw.Close()
			return fmt.Errorf("failed to schedule runs: %w", err)
		}
		w.cron.Start()
		w.logger.Info("scheduled runs enabled", "schedule", w.cfg.Schedule)
	}

	w.trigger("startup")

	w.wg.Add(1)
	go w.watchLoop()

	w.logger.Info("watching for snapshots",
		"dir", w.cfg.Dir,
		"debounce", w.cfg.Debounce)
	return nil
}

// watchLoop forwards matching filesystem events into a debounce timer
// and fires a run after the configured quiet period.
func (w *Watcher) watchLoop() {
	defer w.wg.Done()

	// Channel to request debounce resets
	resetCh := make(chan struct{}, 1)
	defer close(resetCh)

	go func() {
		var t *time.Timer
		for range resetCh {
			if t != nil {
				t.Stop()
			}
			t = time.AfterFunc(w.cfg.Debounce, func() {
				w.trigger("filesystem")
			})
		}
	}()

	for {
		select {
		case <-w.stopCh:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				w.logger.Error("events channel closed")
				return
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if !w.cfg.Naming.Pattern.MatchString(filepath.Base(ev.Name)) {
				continue
			}
			w.logger.Debug("snapshot event", "name", ev.Name, "op", ev.Op)

			// Non-blocking send to reset debounce
			select {
			case resetCh <- struct{}{}:
			default:
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("fsnotify error", "error", err)
		}
	}
}

// trigger runs one retention pass. Overlapping triggers queue behind
// the mutex rather than running concurrently.
func (w *Watcher) trigger(reason string) {
	w.runMu.Lock()
	defer w.runMu.Unlock()

	select {
	case <-w.stopCh:
		return
	default:
	}

	w.logger.Info("retention run starting", "reason", reason)
	if err := w.cfg.Run(); err != nil {
		w.logger.Error("retention run failed", "reason", reason, "error", err)
		return
	}
	w.logger.Info("retention run complete", "reason", reason)
}

// Stop halts the watcher and waits for an in-flight run to finish.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	if w.fsw != nil {
		w.fsw.Close()
	}
	if w.cron != nil {
		ctx := w.cron.Stop()
		<-ctx.Done()
	}
	w.wg.Wait()

	// Wait for an in-flight run to finish.
	w.runMu.Lock()
	w.runMu.Unlock()

	w.logger.Info("watcher stopped")
	return nil
}
