package store

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    started_at TIMESTAMP NOT NULL,
    finished_at TIMESTAMP,
    source TEXT NOT NULL,
    keep_hours INTEGER NOT NULL,
    keep_days INTEGER NOT NULL,
    keep_weeks INTEGER NOT NULL,
    keep_months INTEGER NOT NULL,
    keep_years INTEGER NOT NULL,
    anchor TIMESTAMP,
    candidates INTEGER NOT NULL DEFAULT 0,
    kept INTEGER NOT NULL DEFAULT 0,
    deleted INTEGER NOT NULL DEFAULT 0,
    failed INTEGER NOT NULL DEFAULT 0,
    dry_run BOOLEAN NOT NULL DEFAULT 0,
    status TEXT NOT NULL DEFAULT 'running'
);

CREATE TABLE IF NOT EXISTS decisions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id INTEGER NOT NULL,
    name TEXT NOT NULL,
    captured_at TIMESTAMP NOT NULL,
    action TEXT NOT NULL,
    tier TEXT,
    outcome TEXT,
    FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_decisions_run ON decisions(run_id);
CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
`
