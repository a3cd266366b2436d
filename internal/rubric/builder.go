// Package rubric derives weighted scoring rubrics for CV sections from a
// job description. Generation is LLM-backed; any malformed output degrades
// to fixed default rubrics instead of failing the job.
package rubric

import (
	"context"
	"encoding/json"
	"log"
	"math"

	"github.com/jonathan/cv-scorer/internal/llm"
	"github.com/jonathan/cv-scorer/internal/prompts"
	"github.com/jonathan/cv-scorer/internal/schemas"
	"github.com/jonathan/cv-scorer/internal/types"
)

// Builder generates job rubrics via an LLM client.
type Builder struct {
	client llm.Client
}

// NewBuilder creates a rubric builder.
func NewBuilder(client llm.Client) *Builder {
	return &Builder{client: client}
}

// rubricResponse mirrors the expected JSON shape of the generation call.
type rubricResponse struct {
	Sections []types.SectionRubric `json:"sections"`
}

// BuildJobRubric derives a rubric per CV section from the job description.
// It never returns an empty or partial rubric: sections the LLM omits or
// mangles fall back to defaults. The only error it returns is ctx
// cancellation.
func (b *Builder) BuildJobRubric(ctx context.Context, jd *types.JobDescription) (types.JobRubric, error) {
	prompt := buildRubricPrompt(jd)

	raw, err := b.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		if ctx.Err() != nil {
			return types.JobRubric{}, ctx.Err()
		}
		log.Printf("rubric: generation call failed, using default rubric: %v", err)
		return DefaultJobRubric(), nil
	}

	generated := parseGenerated(raw)

	sections := make(map[types.SectionType]types.SectionRubric)
	for _, section := range types.AllSections() {
		r, ok := generated[section]
		if !ok {
			log.Printf("rubric: section %q missing from generated rubric, using default", section)
			r = DefaultSectionRubric(section)
		}
		sections[section] = normalizeSection(r)
	}
	normalizeSectionWeights(sections)

	rubric, err := types.NewJobRubric(sections)
	if err != nil {
		// Only reachable if normalization produced an invalid map.
		log.Printf("rubric: generated rubric invalid, using default: %v", err)
		return DefaultJobRubric(), nil
	}
	return rubric, nil
}

// parseGenerated validates and parses the raw response, returning whatever
// usable per-section rubrics it contains. A response that fails schema
// validation or JSON parsing yields an empty map.
func parseGenerated(raw string) map[types.SectionType]types.SectionRubric {
	raw = llm.CleanJSONBlock(raw)

	if err := schemas.ValidateRubricResponse(raw); err != nil {
		log.Printf("rubric: generated rubric failed schema validation: %v", err)
		return nil
	}

	var resp rubricResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		log.Printf("rubric: failed to parse generated rubric: %v", err)
		return nil
	}

	out := make(map[types.SectionType]types.SectionRubric)
	for _, r := range resp.Sections {
		if !r.Section.Valid() || len(r.Criteria) == 0 {
			continue
		}
		// First occurrence wins if the model repeats a section.
		if _, exists := out[r.Section]; !exists {
			out[r.Section] = r
		}
	}
	return out
}

// normalizeSection clamps criterion weights to [0,1] and rescales them to
// sum to 1.0. Criteria with a missing scoring scale get a generic one.
func normalizeSection(r types.SectionRubric) types.SectionRubric {
	total := 0.0
	for i := range r.Criteria {
		c := &r.Criteria[i]
		c.Weight0To1 = clamp01(c.Weight0To1)
		if len(c.ScoringScale) == 0 {
			c.ScoringScale = genericScale(c.Name)
		}
		total += c.Weight0To1
	}

	if total <= 0 {
		// Degenerate weights: spread evenly.
		even := 1.0 / float64(len(r.Criteria))
		for i := range r.Criteria {
			r.Criteria[i].Weight0To1 = even
		}
		return r
	}

	if math.Abs(total-1.0) > 0.01 {
		for i := range r.Criteria {
			r.Criteria[i].Weight0To1 /= total
		}
	}
	return r
}

// normalizeSectionWeights rescales section weights to sum to 1.0, falling
// back to the default distribution when the generated weights are unusable.
func normalizeSectionWeights(sections map[types.SectionType]types.SectionRubric) {
	total := 0.0
	for _, r := range sections {
		total += clamp01(r.Weight0To1)
	}

	for section, r := range sections {
		if total <= 0 {
			r.Weight0To1 = defaultSectionWeights[section]
		} else {
			r.Weight0To1 = clamp01(r.Weight0To1) / total
		}
		sections[section] = r
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func buildRubricPrompt(jd *types.JobDescription) string {
	template := prompts.MustGet("rubric.json", "build-section-rubrics")
	return prompts.Format(template, map[string]string{
		"Title":            jd.Title,
		"Company":          jd.Company,
		"Responsibilities": jd.Responsibilities,
		"Qualifications":   jd.Qualifications,
	})
}
