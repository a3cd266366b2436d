package evaluation

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/cv-scorer/internal/jobs"
	"github.com/jonathan/cv-scorer/internal/types"
)

// CVStore loads stored CVs. The Postgres implementation lives in internal/db.
type CVStore interface {
	GetCV(ctx context.Context, id uuid.UUID) (*types.CV, error)
}

// JobDescriptionStore loads stored job descriptions.
type JobDescriptionStore interface {
	GetJobDescription(ctx context.Context, id uuid.UUID) (*types.JobDescription, error)
}

// ScoreCVInput is the input payload of a score_cv job.
type ScoreCVInput struct {
	CVID             uuid.UUID `json:"cv_id"`
	JobDescriptionID uuid.UUID `json:"job_description_id"`
}

// ScoreCVHandler executes score_cv jobs: it loads the CV and job
// description, derives the rubric, scores all sections and emits the
// aggregated result as the job output. It is idempotent: re-running a job
// recomputes the same kind of result without side effects.
type ScoreCVHandler struct {
	orchestrator *Orchestrator
	cvs          CVStore
	descriptions JobDescriptionStore
}

// NewScoreCVHandler creates the handler.
func NewScoreCVHandler(orchestrator *Orchestrator, cvs CVStore, descriptions JobDescriptionStore) *ScoreCVHandler {
	return &ScoreCVHandler{orchestrator: orchestrator, cvs: cvs, descriptions: descriptions}
}

// Type returns the job type this handler executes.
func (h *ScoreCVHandler) Type() types.JobType {
	return types.JobTypeScoreCV
}

// Execute runs the evaluation for one job.
func (h *ScoreCVHandler) Execute(ctx context.Context, job *types.Job) (json.RawMessage, error) {
	var input ScoreCVInput
	if err := json.Unmarshal(job.Input, &input); err != nil {
		return nil, jobs.WrapFailure(jobs.ErrCodeInvalidInput, "malformed score_cv input", err)
	}
	if input.CVID == uuid.Nil || input.JobDescriptionID == uuid.Nil {
		return nil, jobs.Failure(jobs.ErrCodeInvalidInput, "cv_id and job_description_id are required")
	}

	cv, err := h.cvs.GetCV(ctx, input.CVID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cv %s: %w", input.CVID, err)
	}
	if cv == nil {
		return nil, jobs.Failuref(jobs.ErrCodeCVNotFound, "cv %s not found", input.CVID)
	}

	jd, err := h.descriptions.GetJobDescription(ctx, input.JobDescriptionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load job description %s: %w", input.JobDescriptionID, err)
	}
	if jd == nil {
		return nil, jobs.Failuref(jobs.ErrCodeJobDescNotFound, "job description %s not found", input.JobDescriptionID)
	}

	jobRubric, err := h.orchestrator.BuildRubrics(ctx, jd)
	if err != nil {
		// Only cancellation escapes rubric building.
		return nil, err
	}

	result, err := h.orchestrator.ScoreCV(ctx, cv, jobRubric)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, jobs.WrapFailure(jobs.ErrCodeScoring, "section scoring failed", err)
	}

	output, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal score result: %w", err)
	}
	return output, nil
}
