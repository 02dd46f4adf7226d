package storage

import (
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"lcaclean/internal"
)

// DB is the optional run log: one row per backfill run plus its manifest
// entries. Cleaned records are never stored here.
type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
  id TEXT PRIMARY KEY,
  inputDir TEXT NOT NULL,
  outputDir TEXT NOT NULL,
  startedAt TEXT NOT NULL,
  finishedAt TEXT NOT NULL,
  files INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS run_files (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  runId TEXT NOT NULL,
  position INTEGER NOT NULL,
  file TEXT NOT NULL,
  fiscalYear INTEGER,
  quarter INTEGER,
  inputRows INTEGER NOT NULL,
  outputRows INTEGER NOT NULL,
  decisionDateMin TEXT,
  decisionDateMax TEXT,
  wageAnnualNonNull INTEGER NOT NULL,
  outputPath TEXT NOT NULL,
  UNIQUE(runId, position),
  FOREIGN KEY(runId) REFERENCES runs(id)
);
CREATE INDEX IF NOT EXISTS idx_run_files_file ON run_files(file);
`

	_, err := d.conn.Exec(schema)
	return err
}

// RecordRun stores a finished run and its manifest entries atomically.
func (d *DB) RecordRun(run internal.RunSummary, entries []internal.ManifestEntry) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
INSERT INTO runs (id, inputDir, outputDir, startedAt, finishedAt, files)
VALUES (?, ?, ?, ?, ?, ?)
`, run.ID, run.InputDir, run.OutputDir, run.StartedAt.UTC().Format(time.RFC3339), run.FinishedAt.UTC().Format(time.RFC3339), run.Files); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
INSERT INTO run_files (
  runId, position, file, fiscalYear, quarter, inputRows, outputRows,
  decisionDateMin, decisionDateMax, wageAnnualNonNull, outputPath
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, e := range entries {
		if _, err := stmt.Exec(
			run.ID, i, e.File, e.FiscalYear, e.Quarter, e.InputRows, e.OutputRows,
			formatDate(e.DecisionDateMin), formatDate(e.DecisionDateMax), e.WageAnnualNonNull, e.OutputPath,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) ListRuns(limit int) ([]internal.RunSummary, error) {
	rows, err := d.conn.Query(`
SELECT id, inputDir, outputDir, startedAt, finishedAt, files
FROM runs ORDER BY startedAt DESC, id ASC LIMIT ?
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.RunSummary
	for rows.Next() {
		var run internal.RunSummary
		var startedAt, finishedAt string
		if err := rows.Scan(&run.ID, &run.InputDir, &run.OutputDir, &startedAt, &finishedAt, &run.Files); err != nil {
			return nil, err
		}
		run.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
		run.FinishedAt, _ = time.Parse(time.RFC3339, finishedAt)
		out = append(out, run)
	}
	return out, rows.Err()
}

func (d *DB) ListRunFiles(runID string) ([]internal.ManifestEntry, error) {
	rows, err := d.conn.Query(`
SELECT file, fiscalYear, quarter, inputRows, outputRows,
       decisionDateMin, decisionDateMax, wageAnnualNonNull, outputPath
FROM run_files WHERE runId = ? ORDER BY position ASC
`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.ManifestEntry
	for rows.Next() {
		var e internal.ManifestEntry
		var minDate, maxDate *string
		if err := rows.Scan(
			&e.File, &e.FiscalYear, &e.Quarter, &e.InputRows, &e.OutputRows,
			&minDate, &maxDate, &e.WageAnnualNonNull, &e.OutputPath,
		); err != nil {
			return nil, err
		}
		e.DecisionDateMin = parseDate(minDate)
		e.DecisionDateMax = parseDate(maxDate)
		out = append(out, e)
	}
	return out, rows.Err()
}

func formatDate(v *time.Time) *string {
	if v == nil {
		return nil
	}
	s := v.Format("2006-01-02")
	return &s
}

func parseDate(v *string) *time.Time {
	if v == nil {
		return nil
	}
	t, err := time.Parse("2006-01-02", *v)
	if err != nil {
		return nil
	}
	return &t
}
