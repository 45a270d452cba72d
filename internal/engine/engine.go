// Package engine runs one full retention pass: enumerate the source
// directory, select what to keep, sweep the rest. The pass is strictly
// sequential and every decision is logged before the destructive phase
// begins, so a run's intended effect can be audited from its log alone.
package engine

import (
	"log/slog"
	"time"

	serrors "github.com/calderaops/snapsweep/internal/errors"
	"github.com/calderaops/snapsweep/internal/retention"
	"github.com/calderaops/snapsweep/internal/snapshot"
	"github.com/calderaops/snapsweep/internal/store"
	"github.com/calderaops/snapsweep/internal/sweep"
)

// Config describes one retention pass.
type Config struct {
	Source string
	Policy retention.Policy
	Naming snapshot.Naming
	DryRun bool
}

// Engine executes retention passes over a source directory. It owns no
// shared mutable state beyond its in-memory candidate list; it assumes
// exclusive access to the source directory for the duration of a run.
type Engine struct {
	cfg    Config
	store  *store.Store // optional: nil disables the audit trail
	logger *slog.Logger
}

// New creates an engine. st may be nil to skip audit records.
func New(cfg Config, st *store.Store, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{cfg: cfg, store: st, logger: logger}
}

// Outcome is the result of one pass.
type Outcome struct {
	Plan    retention.Plan
	Skipped []string // pattern-matching names with unparseable timestamps
	Report  sweep.Report
	RunID   int64 // 0 when no audit store is configured
}

// Plan enumerates the source directory and runs tiered selection. Nothing is
// deleted. Every tier window and every keep/remove decision is logged.
func (e *Engine) Plan() (retention.Plan, []string, error) {
	snaps, skipped, err := snapshot.List(e.cfg.Source, e.cfg.Naming)
	if err != nil {
		return retention.Plan{}, nil, serrors.NewConfig("enumerating snapshots", err)
	}
	for _, name := range skipped {
		e.logger.Warn("skipping entry with unparseable timestamp; it will be neither retained nor deleted",
			"name", name)
	}

	plan := retention.Apply(e.cfg.Policy, snaps)
	if plan.Empty() {
		e.logger.Info("no snapshots found", "source", e.cfg.Source)
		return plan, skipped, nil
	}

	e.logger.Info("anchor computed from newest snapshot",
		"anchor", plan.Anchor, "candidates", len(plan.Decisions))
	for _, w := range plan.Tiers {
		e.logger.Info("tier window", "tier", w.Name, "span", w.Span, "cutoff", w.Cutoff)
	}
	for _, d := range plan.Decisions {
		if d.Action == retention.Keep {
			e.logger.Info("decision", "snapshot", d.Snapshot.Name, "action", "keep", "tier", d.Tier)
		} else {
			e.logger.Info("decision", "snapshot", d.Snapshot.Name, "action", "remove")
		}
	}
	return plan, skipped, nil
}

// Execute runs the deletion phase for a plan and writes the audit trail.
// In dry-run mode nothing is removed but the run is still recorded. A
// partially failed sweep returns a sweep error after all entries were tried.
func (e *Engine) Execute(plan retention.Plan) (*Outcome, error) {
	out := &Outcome{Plan: plan}
	started := time.Now().UTC()

	runID := e.beginAudit(started)
	out.RunID = runID

	doomed := plan.Doomed()
	if e.cfg.DryRun {
		e.logger.Info("dry-run: no snapshots will be removed", "would_remove", len(doomed))
	} else if len(doomed) > 0 {
		out.Report = sweep.Run(e.cfg.Source, e.cfg.Naming, doomed)
		for _, r := range out.Report.Results {
			switch {
			case r.Err != nil:
				e.logger.Error("deletion failed", "snapshot", r.Name, "error", r.Err)
			case r.Missing:
				e.logger.Info("already absent", "snapshot", r.Name)
			default:
				e.logger.Info("deleted", "snapshot", r.Name)
			}
		}
	}

	e.finishAudit(runID, plan, out.Report)

	if out.Report.Failed > 0 {
		return out, serrors.NewSweep(out.Report.Failed, len(out.Report.Results))
	}
	return out, nil
}

// Run performs Plan then Execute as one pass.
func (e *Engine) Run() (*Outcome, error) {
	plan, skipped, err := e.Plan()
	if err != nil {
		return nil, err
	}
	out, err := e.Execute(plan)
	if out != nil {
		out.Skipped = skipped
	}
	return out, err
}

// beginAudit inserts the run row. Audit problems are reported but never
// block the pass, matching the per-entry best-effort deletion semantics.
func (e *Engine) beginAudit(started time.Time) int64 {
	if e.store == nil {
		return 0
	}
	id, err := e.store.InsertRun(&store.Run{
		StartedAt:  started,
		Source:     e.cfg.Source,
		KeepHours:  e.cfg.Policy.Hours,
		KeepDays:   e.cfg.Policy.Days,
		KeepWeeks:  e.cfg.Policy.Weeks,
		KeepMonths: e.cfg.Policy.Months,
		KeepYears:  e.cfg.Policy.Years,
		DryRun:     e.cfg.DryRun,
	})
	if err != nil {
		e.logger.Warn("failed to record run in audit database", "error", err)
		return 0
	}
	return id
}

func (e *Engine) finishAudit(runID int64, plan retention.Plan, rep sweep.Report) {
	if e.store == nil || runID == 0 {
		return
	}

	outcomes := make(map[string]string, len(rep.Results))
	for _, r := range rep.Results {
		switch {
		case r.Err != nil:
			outcomes[r.Name] = "failed: " + r.Err.Error()
		case r.Missing:
			outcomes[r.Name] = "missing"
		default:
			outcomes[r.Name] = "deleted"
		}
	}

	decisions := make([]*store.Decision, 0, len(plan.Decisions))
	for _, d := range plan.Decisions {
		rec := &store.Decision{
			Name:       d.Snapshot.Name,
			CapturedAt: d.Snapshot.Timestamp,
			Action:     string(d.Action),
			Tier:       d.Tier,
		}
		switch {
		case d.Action == retention.Keep:
			rec.Outcome = "kept"
		case e.cfg.DryRun:
			rec.Outcome = "planned"
		default:
			rec.Outcome = outcomes[d.Snapshot.Name]
		}
		decisions = append(decisions, rec)
	}
	if err := e.store.InsertDecisions(runID, decisions); err != nil {
		e.logger.Warn("failed to record decisions in audit database", "error", err)
	}

	status := store.StatusOK
	switch {
	case e.cfg.DryRun:
		status = store.StatusDryRun
	case rep.Failed > 0:
		status = store.StatusFailed
	}
	err := e.store.FinishRun(&store.Run{
		ID:         runID,
		FinishedAt: time.Now().UTC(),
		Anchor:     plan.Anchor,
		Candidates: len(plan.Decisions),
		Kept:       len(plan.Kept()),
		Deleted:    rep.Deleted + rep.Missing,
		Failed:     rep.Failed,
		Status:     status,
	})
	if err != nil {
		e.logger.Warn("failed to finish run in audit database", "error", err)
	}
}
