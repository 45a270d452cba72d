package store

import (
	"database/sql"
	"fmt"
)

// InsertRun records the start of a retention pass and returns its ID.
func (s *Store) InsertRun(run *Run) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO runs (started_at, source, keep_hours, keep_days, keep_weeks, keep_months, keep_years, dry_run, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.StartedAt, run.Source,
		run.KeepHours, run.KeepDays, run.KeepWeeks, run.KeepMonths, run.KeepYears,
		run.DryRun, StatusRunning,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	return res.LastInsertId()
}

// FinishRun completes a run record with its outcome counts and status.
func (s *Store) FinishRun(run *Run) error {
	var anchor interface{}
	if !run.Anchor.IsZero() {
		anchor = run.Anchor
	}
	_, err := s.db.Exec(`
		UPDATE runs
		SET finished_at = ?, anchor = ?, candidates = ?, kept = ?, deleted = ?, failed = ?, status = ?
		WHERE id = ?`,
		run.FinishedAt, anchor,
		run.Candidates, run.Kept, run.Deleted, run.Failed,
		run.Status, run.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to finish run %d: %w", run.ID, err)
	}
	return nil
}

// InsertDecisions records all of a run's decisions in one transaction.
func (s *Store) InsertDecisions(runID int64, decisions []*Decision) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO decisions (run_id, name, captured_at, action, tier, outcome)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare decision insert: %w", err)
	}
	defer stmt.Close()

	for _, d := range decisions {
		if _, err := stmt.Exec(runID, d.Name, d.CapturedAt, d.Action, d.Tier, d.Outcome); err != nil {
			return fmt.Errorf("failed to insert decision for %s: %w", d.Name, err)
		}
	}
	return tx.Commit()
}

// ListRuns returns the most recent runs, newest first. limit <= 0 means all.
func (s *Store) ListRuns(limit int) ([]*Run, error) {
	query := `
		SELECT id, started_at, finished_at, source, keep_hours, keep_days, keep_weeks, keep_months, keep_years,
		       anchor, candidates, kept, deleted, failed, dry_run, status
		FROM runs ORDER BY started_at DESC, id DESC`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun returns one run by ID.
func (s *Store) GetRun(id int64) (*Run, error) {
	row := s.db.QueryRow(`
		SELECT id, started_at, finished_at, source, keep_hours, keep_days, keep_weeks, keep_months, keep_years,
		       anchor, candidates, kept, deleted, failed, dry_run, status
		FROM runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %d not found", id)
	}
	return run, err
}

// ListDecisions returns a run's decisions in recorded order (newest snapshot
// first, matching the scan order of the retention pass).
func (s *Store) ListDecisions(runID int64) ([]*Decision, error) {
	rows, err := s.db.Query(`
		SELECT id, run_id, name, captured_at, action, tier, outcome
		FROM decisions WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list decisions: %w", err)
	}
	defer rows.Close()

	var decisions []*Decision
	for rows.Next() {
		d := &Decision{}
		var tier, outcome sql.NullString
		if err := rows.Scan(&d.ID, &d.RunID, &d.Name, &d.CapturedAt, &d.Action, &tier, &outcome); err != nil {
			return nil, fmt.Errorf("failed to scan decision: %w", err)
		}
		d.Tier = tier.String
		d.Outcome = outcome.String
		decisions = append(decisions, d)
	}
	return decisions, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*Run, error) {
	run := &Run{}
	var finished, anchor sql.NullTime
	err := row.Scan(
		&run.ID, &run.StartedAt, &finished, &run.Source,
		&run.KeepHours, &run.KeepDays, &run.KeepWeeks, &run.KeepMonths, &run.KeepYears,
		&anchor, &run.Candidates, &run.Kept, &run.Deleted, &run.Failed,
		&run.DryRun, &run.Status,
	)
	if err != nil {
		return nil, err
	}
	run.FinishedAt = finished.Time
	run.Anchor = anchor.Time
	return run, nil
}
