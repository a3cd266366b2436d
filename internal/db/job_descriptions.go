package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/cv-scorer/internal/types"
)

// CreateJobDescription persists a job description.
func (db *DB) CreateJobDescription(ctx context.Context, jd *types.JobDescription) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO job_descriptions (id, title, company, responsibilities, qualifications, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		jd.ID, jd.Title, jd.Company, jd.Responsibilities, jd.Qualifications, jd.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create job description: %w", err)
	}
	return nil
}

// GetJobDescription returns a job description by id, or (nil, nil) when the
// id is unknown.
func (db *DB) GetJobDescription(ctx context.Context, id uuid.UUID) (*types.JobDescription, error) {
	var jd types.JobDescription

	err := db.pool.QueryRow(ctx,
		`SELECT id, title, company, responsibilities, qualifications, created_at
		 FROM job_descriptions WHERE id = $1`, id,
	).Scan(&jd.ID, &jd.Title, &jd.Company, &jd.Responsibilities, &jd.Qualifications, &jd.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job description: %w", err)
	}
	return &jd, nil
}
