// Package scoring scores CV section content against rubric criteria via an
// LLM call and aggregates per-criterion scores into weighted section scores.
package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/cv-scorer/internal/llm"
	"github.com/jonathan/cv-scorer/internal/prompts"
	"github.com/jonathan/cv-scorer/internal/schemas"
	"github.com/jonathan/cv-scorer/internal/types"
)

// DefaultMaxConcurrency bounds parallel section-scoring calls so a single
// job cannot flood the LLM backend.
const DefaultMaxConcurrency = 3

// Scorer scores CV sections against rubrics.
type Scorer struct {
	client         llm.Client
	maxConcurrency int
}

// NewScorer creates a scorer. maxConcurrency values below 1 use the default.
func NewScorer(client llm.Client, maxConcurrency int) *Scorer {
	if maxConcurrency < 1 {
		maxConcurrency = DefaultMaxConcurrency
	}
	return &Scorer{client: client, maxConcurrency: maxConcurrency}
}

// scoreResponse mirrors the expected JSON shape of the scoring call.
type scoreResponse struct {
	Criteria []struct {
		CriteriaID    string   `json:"criteria_id"`
		Score0To5     float64  `json:"score_0_to_5"`
		Justification string   `json:"justification"`
		FoundEvidence []string `json:"found_evidence"`
		MissingItems  []string `json:"missing_items"`
	} `json:"criteria"`
}

// ScoreSection issues one scoring request for a single section and derives
// the weighted section total. A malformed response or failed call is an
// error; callers scoring many sections treat it as a per-section failure.
func (s *Scorer) ScoreSection(ctx context.Context, rubric types.SectionRubric, content string, section types.SectionType) (types.SectionScore, error) {
	prompt := buildScoringPrompt(rubric, content, section)

	raw, err := s.client.GenerateJSON(ctx, prompt, llm.TierLite)
	if err != nil {
		return types.SectionScore{}, fmt.Errorf("scoring call for section %q failed: %w", section, err)
	}

	raw = llm.CleanJSONBlock(raw)
	if err := schemas.ValidateSectionScoreResponse(raw); err != nil {
		return types.SectionScore{}, fmt.Errorf("scoring response for section %q invalid: %w", section, err)
	}

	var resp scoreResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return types.SectionScore{}, fmt.Errorf("scoring response for section %q unparsable: %w", section, err)
	}

	return assembleSectionScore(rubric, resp, section), nil
}

// assembleSectionScore joins the response criteria with the rubric weights
// and computes TotalScore0To5 = round(Σ score×weight), clamped to [0,5].
func assembleSectionScore(rubric types.SectionRubric, resp scoreResponse, section types.SectionType) types.SectionScore {
	weights := make(map[string]float64, len(rubric.Criteria))
	for _, c := range rubric.Criteria {
		weights[c.ID] = c.Weight0To1
	}

	var criteria []types.CriteriaScore
	weightSum := 0.0
	weighted := 0.0

	for _, c := range resp.Criteria {
		weight, known := weights[c.CriteriaID]
		if !known {
			// The model invented a criterion; ignore it.
			continue
		}
		score := clamp(c.Score0To5, 0, 5)
		criteria = append(criteria, types.CriteriaScore{
			CriteriaID:    c.CriteriaID,
			Score0To5:     score,
			Weight0To1:    weight,
			Justification: c.Justification,
			FoundEvidence: c.FoundEvidence,
			MissingItems:  c.MissingItems,
		})
		weighted += score * weight
		weightSum += weight
	}

	if math.Abs(weightSum-1.0) > 0.05 {
		log.Printf("scoring: section %q criteria weights sum to %.2f, expected 1.0", section, weightSum)
	}

	return types.SectionScore{
		Section:        section,
		TotalScore0To5: clamp(math.Round(weighted), 0, 5),
		Weight0To1:     rubric.Weight0To1,
		Criteria:       criteria,
	}
}

// ScoreAllSections fans out one ScoreSection call per section present in
// both maps, bounded by the configured concurrency. Sections absent from
// content are skipped, and a section whose call fails is omitted from the
// result rather than aborting the pass. Context cancellation aborts the
// whole pass and is returned.
func (s *Scorer) ScoreAllSections(ctx context.Context, rubrics map[types.SectionType]types.SectionRubric, contents map[types.SectionType]string) (map[types.SectionType]types.SectionScore, error) {
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrency)

	var mu sync.Mutex
	results := make(map[types.SectionType]types.SectionScore)

	for section, rubric := range rubrics {
		content, ok := contents[section]
		if !ok || content == "" {
			continue
		}

		section, rubric, content := section, rubric, content
		g.Go(func() error {
			score, err := s.ScoreSection(gCtx, rubric, content, section)
			if err != nil {
				if gCtx.Err() != nil {
					return gCtx.Err()
				}
				// Partial results beat total failure.
				log.Printf("scoring: section %q skipped: %v", section, err)
				return nil
			}
			mu.Lock()
			results[section] = score
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func buildScoringPrompt(rubric types.SectionRubric, content string, section types.SectionType) string {
	rubricJSON, err := json.Marshal(rubric.Criteria)
	if err != nil {
		rubricJSON = []byte("[]")
	}

	template := prompts.MustGet("scoring.json", "score-section")
	return prompts.Format(template, map[string]string{
		"Section": string(section),
		"Rubric":  string(rubricJSON),
		"Content": content,
	})
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
