package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lucasnoah/tfanalyzer/internal/analyzer"
)

// AnalysisRun represents a row in the analysis_runs table.
type AnalysisRun struct {
	ID         int64
	Source     string
	Status     string
	Findings   []analyzer.Finding
	DurationMs int
	CreatedAt  time.Time
}

// InsertRun records one completed analysis run and returns its ID.
func (d *DB) InsertRun(source string, result *analyzer.Result, durationMs int) (int64, error) {
	findings, err := json.Marshal(result.Findings)
	if err != nil {
		return 0, fmt.Errorf("marshal findings: %w", err)
	}

	var id int64
	err = d.conn.QueryRow(
		`INSERT INTO analysis_runs (source, status, findings, duration_ms)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		source, string(result.Status), findings, durationMs,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// GetRun fetches a single run by ID. Returns nil when no such run exists.
func (d *DB) GetRun(id int64) (*AnalysisRun, error) {
	row := d.conn.QueryRow(
		`SELECT id, source, status, findings, COALESCE(duration_ms, 0), created_at
		 FROM analysis_runs WHERE id = $1`,
		id,
	)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run %d: %w", id, err)
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first.
func (d *DB) ListRuns(limit int) ([]AnalysisRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.conn.Query(
		`SELECT id, source, status, findings, COALESCE(duration_ms, 0), created_at
		 FROM analysis_runs ORDER BY created_at DESC, id DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []AnalysisRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*AnalysisRun, error) {
	var run AnalysisRun
	var findings []byte
	if err := s.Scan(&run.ID, &run.Source, &run.Status, &findings, &run.DurationMs, &run.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(findings, &run.Findings); err != nil {
		return nil, fmt.Errorf("unmarshal findings: %w", err)
	}
	return &run, nil
}
