// Package evaluation composes rubric building and section scoring into the
// full CV-against-job-description evaluation, and exposes it as a job
// handler for the dispatcher.
package evaluation

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/jonathan/cv-scorer/internal/rubric"
	"github.com/jonathan/cv-scorer/internal/scoring"
	"github.com/jonathan/cv-scorer/internal/types"
)

// maxCriterionScore is the top of the per-criterion scoring scale.
const maxCriterionScore = 5.0

// Orchestrator runs the two-stage evaluation: derive a rubric from the job
// description, then score every CV section against it. Rubrics are cached
// per job description so many CVs scored against one posting share a rubric.
type Orchestrator struct {
	builder *rubric.Builder
	scorer  *scoring.Scorer

	mu     sync.Mutex
	cached map[uuid.UUID]types.JobRubric
}

// NewOrchestrator creates an orchestrator over a rubric builder and scorer.
func NewOrchestrator(builder *rubric.Builder, scorer *scoring.Scorer) *Orchestrator {
	return &Orchestrator{
		builder: builder,
		scorer:  scorer,
		cached:  make(map[uuid.UUID]types.JobRubric),
	}
}

// BuildRubrics returns the rubric for a job description, generating and
// caching it on first use.
func (o *Orchestrator) BuildRubrics(ctx context.Context, jd *types.JobDescription) (types.JobRubric, error) {
	o.mu.Lock()
	if r, ok := o.cached[jd.ID]; ok {
		o.mu.Unlock()
		return r, nil
	}
	o.mu.Unlock()

	r, err := o.builder.BuildJobRubric(ctx, jd)
	if err != nil {
		return types.JobRubric{}, err
	}

	o.mu.Lock()
	o.cached[jd.ID] = r
	o.mu.Unlock()
	return r, nil
}

// ScoreCV scores every CV section present in the CV against the rubric and
// aggregates the weighted overall result. Sections without content are
// skipped; sections whose scoring call failed are absent from the result
// and excluded from the aggregate.
func (o *Orchestrator) ScoreCV(ctx context.Context, cv *types.CV, jobRubric types.JobRubric) (*types.CvScoreResult, error) {
	sectionScores, err := o.scorer.ScoreAllSections(ctx, jobRubric.Sections(), cv.Sections)
	if err != nil {
		return nil, err
	}

	total := 0.0
	maxPossible := 0.0
	for _, score := range sectionScores {
		total += score.TotalScore0To5 * score.Weight0To1
		maxPossible += maxCriterionScore * score.Weight0To1
	}

	percentage := 0.0
	if maxPossible > 0 {
		percentage = total / maxPossible
	}

	return &types.CvScoreResult{
		SectionScores:    sectionScores,
		TotalScore:       total,
		MaxPossibleScore: maxPossible,
		ScorePercentage:  percentage,
	}, nil
}
