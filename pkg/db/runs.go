package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dfwcyc/audio-normalizer/models"
)

// Run represents one recorded batch invocation
type Run struct {
	RunID      int64
	StartedAt  time.Time
	FinishedAt sql.NullTime
	SourceRoot string
	DestRoot   string
	Total      int
	Succeeded  int
	Failed     int
	Skipped    int
	Silent     int
}

// RunFile is one file outcome within a recorded run
type RunFile struct {
	RelPath    string
	Status     string
	InputLUFS  sql.NullFloat64
	SinglePass bool
	Error      sql.NullString
}

// CreateRun inserts a new run row and returns its ID
func (db *DB) CreateRun(sourceRoot, destRoot string) (int64, error) {
	result, err := db.Exec(`
		INSERT INTO runs (source_root, dest_root)
		VALUES (?, ?)
	`, sourceRoot, destRoot)
	if err != nil {
		return 0, fmt.Errorf("failed to create run: %w", err)
	}
	return result.LastInsertId()
}

// RecordFile appends one file outcome to a run
func (db *DB) RecordFile(runID int64, r models.NormalizationResult) error {
	var lufs sql.NullFloat64
	if r.Measurement != nil {
		lufs = sql.NullFloat64{Float64: r.Measurement.InputI, Valid: true}
	}
	var errMsg sql.NullString
	if r.Err != nil {
		errMsg = sql.NullString{String: r.Err.Error(), Valid: true}
	}

	_, err := db.Exec(`
		INSERT INTO run_files (run_id, rel_path, status, input_lufs, single_pass, error_message)
		VALUES (?, ?, ?, ?, ?, ?)
	`, runID, r.Source.RelPath, string(r.Status), lufs, r.SinglePass, errMsg)
	if err != nil {
		return fmt.Errorf("failed to record file: %w", err)
	}
	return nil
}

// FinishRun stamps the run with its end time and final counters
func (db *DB) FinishRun(runID int64, s models.RunSummary) error {
	_, err := db.Exec(`
		UPDATE runs
		SET finished_at = CURRENT_TIMESTAMP,
		    total = ?, succeeded = ?, failed = ?, skipped = ?, silent = ?
		WHERE run_id = ?
	`, s.Total, s.Succeeded, s.Failed, s.Skipped, s.Silent, runID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first
func (db *DB) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := db.Query(`
		SELECT run_id, started_at, finished_at, source_root, dest_root,
		       total, succeeded, failed, skipped, silent
		FROM runs
		ORDER BY started_at DESC, run_id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.RunID, &r.StartedAt, &r.FinishedAt, &r.SourceRoot, &r.DestRoot,
			&r.Total, &r.Succeeded, &r.Failed, &r.Skipped, &r.Silent); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRunFiles returns the per-file outcomes of one run in insertion order
func (db *DB) GetRunFiles(runID int64) ([]RunFile, error) {
	rows, err := db.Query(`
		SELECT rel_path, status, input_lufs, single_pass, error_message
		FROM run_files
		WHERE run_id = ?
		ORDER BY file_id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run files: %w", err)
	}
	defer rows.Close()

	var files []RunFile
	for rows.Next() {
		var f RunFile
		if err := rows.Scan(&f.RelPath, &f.Status, &f.InputLUFS, &f.SinglePass, &f.Error); err != nil {
			return nil, fmt.Errorf("failed to scan run file: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}
