package store

import "time"

// Run is the audit record of one retention pass.
type Run struct {
	ID         int64
	StartedAt  time.Time
	FinishedAt time.Time
	Source     string
	KeepHours  int
	KeepDays   int
	KeepWeeks  int
	KeepMonths int
	KeepYears  int
	Anchor     time.Time
	Candidates int
	Kept       int
	Deleted    int
	Failed     int
	DryRun     bool
	Status     string
}

// Decision is the audit record of one candidate's disposition within a run.
// Outcome describes what actually happened to it: "kept", "deleted",
// "missing", "planned" (dry-run) or "failed: <reason>".
type Decision struct {
	ID         int64
	RunID      int64
	Name       string
	CapturedAt time.Time
	Action     string
	Tier       string
	Outcome    string
}

// Run statuses.
const (
	StatusRunning = "running"
	StatusOK      = "ok"
	StatusDryRun  = "dry-run"
	StatusFailed  = "failed"
)
