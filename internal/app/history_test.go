package app

import (
	"fmt"
	"testing"
	"time"

	"github.com/calderaops/snapsweep/internal/store"
)

func TestHistoryCommand(t *testing.T) {
	if historyCmd.Use != "history" {
		t.Errorf("expected Use to be 'history', got '%s'", historyCmd.Use)
	}

	if historyCmd.Short == "" {
		t.Error("expected Short description to be set")
	}

	if historyCmd.RunE == nil {
		t.Error("expected RunE to be set")
	}
}

func TestHistoryCommandFlags(t *testing.T) {
	for _, name := range []string{"limit", "run"} {
		if historyCmd.Flags().Lookup(name) == nil {
			t.Errorf("expected flag '%s' to be registered", name)
		}
	}
}

type fakeRunStore struct {
	run       *store.Run
	decisions []*store.Decision
	err       error
}

func (f *fakeRunStore) GetRun(id int64) (*store.Run, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.run, nil
}

func (f *fakeRunStore) ListDecisions(runID int64) ([]*store.Decision, error) {
	return f.decisions, nil
}

func TestShowRunNotFound(t *testing.T) {
	st := &fakeRunStore{err: fmt.Errorf("no such run")}
	if err := showRun(st, 42); err == nil {
		t.Error("expected error for missing run")
	}
}

func TestShowRunRendersDecisions(t *testing.T) {
	st := &fakeRunStore{
		run: &store.Run{
			ID:        7,
			StartedAt: time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC),
			Source:    "/backups",
			KeepHours: 24, KeepDays: 7, KeepWeeks: 4, KeepMonths: 12, KeepYears: 10,
			Status: store.StatusOK,
		},
		decisions: []*store.Decision{
			{Name: "20240610-120000", Action: "keep", Tier: "hourly", Outcome: "kept"},
		},
	}
	if err := showRun(st, 7); err != nil {
		t.Fatalf("showRun() error = %v", err)
	}
}
