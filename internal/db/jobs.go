package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/cv-scorer/internal/types"
)

const jobColumns = `id, type, status, priority, input, output, error_code,
	error_message, created_at, started_at, completed_at, version`

// Create persists a new job record at version 1.
func (db *DB) Create(ctx context.Context, job *types.Job) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO jobs (id, type, status, priority, input, created_at, version)
		 VALUES ($1, $2, $3, $4, $5, $6, 1)`,
		job.ID, job.Type, job.Status, job.Priority, []byte(job.Input), job.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	job.Version = 1
	return nil
}

// Get returns a job by id, or (nil, nil) when the id is unknown.
func (db *DB) Get(ctx context.Context, id uuid.UUID) (*types.Job, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)

	job, err := scanJob(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return job, nil
}

// Update applies a typed patch to the job iff its stored version still
// equals expectedVersion. Each present patch field becomes an explicit SET
// clause; the version is bumped on every successful write. It returns
// (nil, nil) when the job is missing or another writer advanced it first.
func (db *DB) Update(ctx context.Context, id uuid.UUID, expectedVersion int, patch types.JobPatch) (*types.Job, error) {
	if patch.IsZero() {
		return db.Get(ctx, id)
	}

	sets := []string{"version = version + 1"}
	args := []any{id, expectedVersion}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if v, ok := patch.Status.Value(); ok {
		sets = append(sets, "status = "+arg(v))
	}
	if v, ok := patch.Output.Value(); ok {
		sets = append(sets, "output = "+arg([]byte(v)))
	}
	if v, ok := patch.ErrorCode.Value(); ok {
		sets = append(sets, "error_code = "+arg(v))
	}
	if v, ok := patch.ErrorMessage.Value(); ok {
		sets = append(sets, "error_message = "+arg(v))
	}
	if v, ok := patch.StartedAt.Value(); ok {
		sets = append(sets, "started_at = "+arg(v))
	}
	if v, ok := patch.CompletedAt.Value(); ok {
		sets = append(sets, "completed_at = "+arg(v))
	}

	query := `UPDATE jobs SET ` + strings.Join(sets, ", ") +
		` WHERE id = $1 AND version = $2 RETURNING ` + jobColumns

	row := db.pool.QueryRow(ctx, query, args...)
	job, err := scanJob(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			// Missing row or version conflict; the caller re-reads to decide.
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update job: %w", err)
	}
	return job, nil
}

// ListQueuedBefore returns jobs still queued that were created at or before
// the cutoff, oldest first.
func (db *DB) ListQueuedBefore(ctx context.Context, cutoff time.Time) ([]types.Job, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+jobColumns+` FROM jobs
		 WHERE status = $1 AND created_at <= $2
		 ORDER BY created_at`,
		types.JobStatusQueued, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list queued jobs: %w", err)
	}
	defer rows.Close()

	var out []types.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		out = append(out, *job)
	}
	return out, rows.Err()
}

// scanJob reads one job row from a pgx row scanner.
func scanJob(row pgx.Row) (*types.Job, error) {
	var job types.Job
	var input, output []byte
	var errorCode, errorMessage *string

	err := row.Scan(&job.ID, &job.Type, &job.Status, &job.Priority, &input,
		&output, &errorCode, &errorMessage, &job.CreatedAt, &job.StartedAt,
		&job.CompletedAt, &job.Version)
	if err != nil {
		return nil, err
	}

	job.Input = input
	job.Output = output
	if errorCode != nil {
		job.ErrorCode = *errorCode
	}
	if errorMessage != nil {
		job.ErrorMessage = *errorMessage
	}
	return &job, nil
}
