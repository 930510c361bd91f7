package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/resume-tailor/internal/types"
)

// BatchRun represents a batch run record
type BatchRun struct {
	ID          uuid.UUID  `json:"id"`
	Source      string     `json:"source"`
	TotalJobs   int        `json:"total_jobs"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// JobRecord represents one job's persisted outcome within a batch run
type JobRecord struct {
	ID           uuid.UUID `json:"id"`
	RunID        uuid.UUID `json:"run_id"`
	Position     int       `json:"position"`
	Company      string    `json:"company"`
	Role         string    `json:"role"`
	Status       string    `json:"status"`
	Reason       string    `json:"reason,omitempty"`
	ArtifactPath string    `json:"artifact_path,omitempty"`
	Remediated   []string  `json:"remediated,omitempty"`
	Installed    []string  `json:"installed,omitempty"`
	ElapsedMS    int64     `json:"elapsed_ms,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// CreateBatchRun creates a new batch run record and returns its ID
func (db *DB) CreateBatchRun(ctx context.Context, source string, total int) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO batch_runs (source, total_jobs, status)
		 VALUES ($1, $2, 'running')
		 RETURNING id`,
		source, total,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create batch run: %w", err)
	}
	return id, nil
}

// CompleteBatchRun marks a batch run as finished
func (db *DB) CompleteBatchRun(ctx context.Context, runID uuid.UUID, status string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE batch_runs SET status = $1, completed_at = NOW() WHERE id = $2`,
		status, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete batch run: %w", err)
	}
	return nil
}

// SaveJobOutcome persists one job's outcome under its batch run. Replays
// for the same run and position overwrite the earlier record.
func (db *DB) SaveJobOutcome(ctx context.Context, runID uuid.UUID, position int, spec *types.JobSpec, outcome *types.JobOutcome) error {
	var artifactPath string
	var remediated, installed []string
	var elapsedMS int64
	if outcome.Result != nil {
		artifactPath = outcome.Result.ArtifactPath
		remediated = outcome.Result.Remediated
		installed = outcome.Result.Installed
		elapsedMS = outcome.Result.Elapsed.Milliseconds()
	}

	reason := outcome.Reason
	if reason == "" && outcome.Result != nil {
		reason = outcome.Result.Reason
	}

	_, err := db.pool.Exec(ctx,
		`INSERT INTO batch_jobs (run_id, position, company, role, status, reason, artifact_path, remediated, installed, elapsed_ms)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (run_id, position) DO UPDATE SET
		   status = $5, reason = $6, artifact_path = $7, remediated = $8, installed = $9, elapsed_ms = $10, created_at = NOW()`,
		runID, position, spec.Company, spec.Role, outcome.Status(), reason, artifactPath, remediated, installed, elapsedMS,
	)
	if err != nil {
		return fmt.Errorf("failed to save job outcome for %s: %w", outcome.Identity, err)
	}
	return nil
}

// GetBatchRun retrieves a batch run by ID
func (db *DB) GetBatchRun(ctx context.Context, runID uuid.UUID) (*BatchRun, error) {
	var run BatchRun
	err := db.pool.QueryRow(ctx,
		`SELECT id, source, total_jobs, status, created_at, completed_at
		 FROM batch_runs WHERE id = $1`,
		runID,
	).Scan(&run.ID, &run.Source, &run.TotalJobs, &run.Status, &run.CreatedAt, &run.CompletedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get batch run: %w", err)
	}
	return &run, nil
}

// ListBatchRuns retrieves recent batch runs
func (db *DB) ListBatchRuns(ctx context.Context, limit int) ([]BatchRun, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.pool.Query(ctx,
		`SELECT id, source, total_jobs, status, created_at, completed_at
		 FROM batch_runs ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list batch runs: %w", err)
	}
	defer rows.Close()

	var runs []BatchRun
	for rows.Next() {
		var run BatchRun
		if err := rows.Scan(&run.ID, &run.Source, &run.TotalJobs, &run.Status, &run.CreatedAt, &run.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan batch run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// ListJobOutcomes retrieves the persisted job records for a batch run in
// input order
func (db *DB) ListJobOutcomes(ctx context.Context, runID uuid.UUID) ([]JobRecord, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, run_id, position, company, role, status, COALESCE(reason, ''), COALESCE(artifact_path, ''), remediated, installed, elapsed_ms, created_at
		 FROM batch_jobs WHERE run_id = $1 ORDER BY position ASC`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list job outcomes: %w", err)
	}
	defer rows.Close()

	var records []JobRecord
	for rows.Next() {
		var r JobRecord
		if err := rows.Scan(&r.ID, &r.RunID, &r.Position, &r.Company, &r.Role, &r.Status, &r.Reason, &r.ArtifactPath, &r.Remediated, &r.Installed, &r.ElapsedMS, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan job outcome: %w", err)
		}
		records = append(records, r)
	}
	return records, nil
}
