package types

import "fmt"

// SectionType identifies one structural part of a CV.
type SectionType string

// The closed set of CV sections a rubric covers.
const (
	SectionContact        SectionType = "contact"
	SectionSummary        SectionType = "summary"
	SectionSkills         SectionType = "skills"
	SectionExperience     SectionType = "experience"
	SectionProjects       SectionType = "projects"
	SectionEducation      SectionType = "education"
	SectionCertifications SectionType = "certifications"
)

// AllSections returns every section type in canonical order.
func AllSections() []SectionType {
	return []SectionType{
		SectionContact,
		SectionSummary,
		SectionSkills,
		SectionExperience,
		SectionProjects,
		SectionEducation,
		SectionCertifications,
	}
}

// Valid reports whether s is one of the known section types.
func (s SectionType) Valid() bool {
	switch s {
	case SectionContact, SectionSummary, SectionSkills, SectionExperience,
		SectionProjects, SectionEducation, SectionCertifications:
		return true
	}
	return false
}

// RubricCriteria is a single named, weighted aspect of a section rubric.
// ScoringScale describes what each score 0..5 means for this criterion.
type RubricCriteria struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	Weight0To1   float64           `json:"weight_0_to_1"`
	ScoringScale map[string]string `json:"scoring_scale"`
}

// SectionRubric is the weighted set of criteria for one CV section, plus the
// section's own contribution to the overall CV score.
type SectionRubric struct {
	Section    SectionType      `json:"section"`
	Weight0To1 float64          `json:"weight_0_to_1"`
	Criteria   []RubricCriteria `json:"criteria"`
}

// JobRubric maps every CV section to its rubric. The constructor guarantees
// completeness so partial maps never propagate; instances are not mutated
// after construction.
type JobRubric struct {
	sections map[SectionType]SectionRubric
}

// NewJobRubric validates that rubrics covers every required section exactly
// and that each entry is keyed by its own section type.
func NewJobRubric(rubrics map[SectionType]SectionRubric) (JobRubric, error) {
	for _, section := range AllSections() {
		r, ok := rubrics[section]
		if !ok {
			return JobRubric{}, fmt.Errorf("job rubric missing section %q", section)
		}
		if r.Section != section {
			return JobRubric{}, fmt.Errorf("rubric keyed by %q declares section %q", section, r.Section)
		}
		if len(r.Criteria) == 0 {
			return JobRubric{}, fmt.Errorf("rubric for section %q has no criteria", section)
		}
	}
	for section := range rubrics {
		if !section.Valid() {
			return JobRubric{}, fmt.Errorf("job rubric contains unknown section %q", section)
		}
	}

	copied := make(map[SectionType]SectionRubric, len(rubrics))
	for k, v := range rubrics {
		copied[k] = v
	}
	return JobRubric{sections: copied}, nil
}

// Section returns the rubric for one section. Construction guarantees
// presence for every valid section type.
func (r JobRubric) Section(section SectionType) SectionRubric {
	return r.sections[section]
}

// Sections returns a copy of the full section→rubric mapping.
func (r JobRubric) Sections() map[SectionType]SectionRubric {
	out := make(map[SectionType]SectionRubric, len(r.sections))
	for k, v := range r.sections {
		out[k] = v
	}
	return out
}
