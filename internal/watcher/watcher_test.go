package watcher

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewRequiresDir(t *testing.T) {
	_, err := New(Config{Run: func() error { return nil }, Logger: quietLogger()})
	if err == nil {
		t.Fatal("expected error for empty dir")
	}
}

func TestNewRequiresRunCallback(t *testing.T) {
	_, err := New(Config{Dir: t.TempDir(), Logger: quietLogger()})
	if err == nil {
		t.Fatal("expected error for nil run callback")
	}
}

func TestNewRejectsInvalidSchedule(t *testing.T) {
	_, err := New(Config{
		Dir:      t.TempDir(),
		Run:      func() error { return nil },
		Schedule: "not a cron expression",
		Logger:   quietLogger(),
	})
	if err == nil {
		t.Fatal("expected error for invalid cron schedule")
	}
}

func TestNewAcceptsStandardSchedule(t *testing.T) {
	w, err := New(Config{
		Dir:      t.TempDir(),
		Run:      func() error { return nil },
		Schedule: "0 3 * * *",
		Logger:   quietLogger(),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if w == nil {
		t.Fatal("New() returned nil watcher")
	}
}

func TestStartRunsImmediately(t *testing.T) {
	runs := make(chan struct{}, 16)
	w, err := New(Config{
		Dir:      t.TempDir(),
		Debounce: 50 * time.Millisecond,
		Run: func() error {
			runs <- struct{}{}
			return nil
		},
		Logger: quietLogger(),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer w.Stop()

	select {
	case <-runs:
	case <-time.After(2 * time.Second):
		t.Fatal("expected an immediate run on startup")
	}
}

func TestSnapshotCreateTriggersRun(t *testing.T) {
	dir := t.TempDir()
	runs := make(chan struct{}, 16)
	w, err := New(Config{
		Dir:      dir,
		Debounce: 50 * time.Millisecond,
		Run: func() error {
			runs <- struct{}{}
			return nil
		},
		Logger: quietLogger(),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer w.Stop()

	<-runs // startup run

	if err := os.Mkdir(filepath.Join(dir, "20240610-120000"), 0755); err != nil {
		t.Fatal(err)
	}

	select {
	case <-runs:
	case <-time.After(5 * time.Second):
		t.Fatal("expected a run after snapshot creation")
	}
}

func TestNonMatchingEntryDoesNotTrigger(t *testing.T) {
	dir := t.TempDir()
	runs := make(chan struct{}, 16)
	w, err := New(Config{
		Dir:      dir,
		Debounce: 50 * time.Millisecond,
		Run: func() error {
			runs <- struct{}{}
			return nil
		},
		Logger: quietLogger(),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer w.Stop()

	<-runs // startup run

	if err := os.Mkdir(filepath.Join(dir, "scratch"), 0755); err != nil {
		t.Fatal(err)
	}

	select {
	case <-runs:
		t.Fatal("non-matching entry should not trigger a run")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestBurstOfSnapshotsDebouncesToOneRun(t *testing.T) {
	dir := t.TempDir()
	var count atomic.Int64
	runs := make(chan struct{}, 16)
	w, err := New(Config{
		Dir:      dir,
		Debounce: 200 * time.Millisecond,
		Run: func() error {
			count.Add(1)
			runs <- struct{}{}
			return nil
		},
		Logger: quietLogger(),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer w.Stop()

	<-runs // startup run

	names := []string{"20240610-120000", "20240610-120100", "20240610-120200"}
	for _, name := range names {
		if err := os.Mkdir(filepath.Join(dir, name), 0755); err != nil {
			t.Fatal(err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	select {
	case <-runs:
	case <-time.After(5 * time.Second):
		t.Fatal("expected a debounced run")
	}

	// No further run should fire for the same burst.
	select {
	case <-runs:
		t.Fatal("burst should debounce to a single run")
	case <-time.After(500 * time.Millisecond):
	}

	if got := count.Load(); got != 2 {
		t.Errorf("run count = %d, want 2 (startup + one debounced)", got)
	}
}

func TestRunsDoNotOverlap(t *testing.T) {
	var active, maxActive atomic.Int64
	w, err := New(Config{
		Dir: t.TempDir(),
		Run: func() error {
			cur := active.Add(1)
			for {
				prev := maxActive.Load()
				if cur <= prev || maxActive.CompareAndSwap(prev, cur) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			active.Add(-1)
			return nil
		},
		Logger: quietLogger(),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.trigger("test")
		}()
	}
	wg.Wait()

	if got := maxActive.Load(); got != 1 {
		t.Errorf("max concurrent runs = %d, want 1", got)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	w, err := New(Config{
		Dir:    t.TempDir(),
		Run:    func() error { return nil },
		Logger: quietLogger(),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Fatalf("second Stop() error = %v", err)
	}
}

func TestStartTwiceFails(t *testing.T) {
	w, err := New(Config{
		Dir:    t.TempDir(),
		Run:    func() error { return nil },
		Logger: quietLogger(),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer w.Stop()

	if err := w.Start(); err == nil {
		t.Fatal("expected error starting a running watcher")
	}
}
