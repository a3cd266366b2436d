package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/cv-scorer/internal/types"
)

// CreateCV persists a CV with its section contents as JSON.
func (db *DB) CreateCV(ctx context.Context, cv *types.CV) error {
	sections, err := json.Marshal(cv.Sections)
	if err != nil {
		return fmt.Errorf("failed to marshal cv sections: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO cvs (id, candidate_name, candidate_email, sections, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		cv.ID, cv.CandidateName, cv.CandidateEmail, sections, cv.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create cv: %w", err)
	}
	return nil
}

// GetCV returns a CV by id, or (nil, nil) when the id is unknown.
func (db *DB) GetCV(ctx context.Context, id uuid.UUID) (*types.CV, error) {
	var cv types.CV
	var sections []byte

	err := db.pool.QueryRow(ctx,
		`SELECT id, candidate_name, candidate_email, sections, created_at
		 FROM cvs WHERE id = $1`, id,
	).Scan(&cv.ID, &cv.CandidateName, &cv.CandidateEmail, &sections, &cv.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cv: %w", err)
	}

	if err := json.Unmarshal(sections, &cv.Sections); err != nil {
		return nil, fmt.Errorf("failed to parse cv sections: %w", err)
	}
	return &cv, nil
}
