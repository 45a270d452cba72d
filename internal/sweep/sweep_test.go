package sweep

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/calderaops/snapsweep/internal/snapshot"
)

func mkSnapshotDir(t *testing.T, dir, name string) snapshot.Snapshot {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Join(path, "data"), 0755); err != nil {
		t.Fatalf("mkdir %s: %v", name, err)
	}
	if err := os.WriteFile(filepath.Join(path, "data", "dump.sql"), []byte("-- dump"), 0644); err != nil {
		t.Fatalf("writing dump file: %v", err)
	}
	ts, err := time.Parse(snapshot.DefaultLayout, name)
	if err != nil {
		t.Fatalf("bad snapshot name %s: %v", name, err)
	}
	return snapshot.Snapshot{Name: name, Path: path, Timestamp: ts}
}

func TestRunDeletesRecursively(t *testing.T) {
	dir := t.TempDir()
	s := mkSnapshotDir(t, dir, "20240610-120000")

	rep := Run(dir, snapshot.DefaultNaming(), []snapshot.Snapshot{s})
	if !rep.Ok() {
		t.Fatalf("expected clean sweep, got %+v", rep)
	}
	if rep.Deleted != 1 {
		t.Errorf("expected 1 deleted, got %d", rep.Deleted)
	}
	if _, err := os.Stat(s.Path); !os.IsNotExist(err) {
		t.Errorf("expected %s to be gone, stat err: %v", s.Path, err)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	s := mkSnapshotDir(t, dir, "20240610-120000")
	doomed := []snapshot.Snapshot{s}
	naming := snapshot.DefaultNaming()

	first := Run(dir, naming, doomed)
	if !first.Ok() || first.Deleted != 1 {
		t.Fatalf("first sweep failed: %+v", first)
	}

	second := Run(dir, naming, doomed)
	if !second.Ok() {
		t.Fatalf("second sweep reported failures: %+v", second)
	}
	if second.Missing != 1 || second.Deleted != 0 {
		t.Errorf("expected 1 missing on re-run, got %+v", second)
	}
}

func TestRunCollectsPerEntryFailures(t *testing.T) {
	dir := t.TempDir()
	good := mkSnapshotDir(t, dir, "20240610-120000")

	// Outside the source directory: must be refused, not deleted.
	otherDir := t.TempDir()
	stray := mkSnapshotDir(t, otherDir, "20240609-120000")

	rep := Run(dir, snapshot.DefaultNaming(), []snapshot.Snapshot{stray, good})
	if rep.Ok() {
		t.Fatal("expected sweep to report a failure")
	}
	if rep.Failed != 1 || rep.Deleted != 1 {
		t.Errorf("expected 1 failed and 1 deleted, got %+v", rep)
	}
	if _, err := os.Stat(stray.Path); err != nil {
		t.Errorf("stray snapshot outside source must survive, stat err: %v", err)
	}
	if _, err := os.Stat(good.Path); !os.IsNotExist(err) {
		t.Errorf("in-source snapshot should still be deleted, stat err: %v", err)
	}
}

func TestRunRefusesNonMatchingName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "precious-data")
	if err := os.Mkdir(path, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	rep := Run(dir, snapshot.DefaultNaming(), []snapshot.Snapshot{{
		Name: "precious-data",
		Path: path,
	}})
	if rep.Failed != 1 {
		t.Fatalf("expected refusal, got %+v", rep)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("non-matching directory must survive, stat err: %v", err)
	}
}

func TestRunRefusesNestedPath(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "sub", "20240610-120000")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	rep := Run(dir, snapshot.DefaultNaming(), []snapshot.Snapshot{{
		Name: "20240610-120000",
		Path: nested,
	}})
	if rep.Failed != 1 {
		t.Fatalf("expected refusal for nested path, got %+v", rep)
	}
	if _, err := os.Stat(nested); err != nil {
		t.Errorf("nested directory must survive, stat err: %v", err)
	}
}

func TestRunEmptySetIsNoOp(t *testing.T) {
	rep := Run(t.TempDir(), snapshot.DefaultNaming(), nil)
	if !rep.Ok() || len(rep.Results) != 0 {
		t.Errorf("expected empty report, got %+v", rep)
	}
}
