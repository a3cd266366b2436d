package rubric

import "github.com/jonathan/cv-scorer/internal/types"

// Default section weights used when the generated rubric is unusable. They
// favor experience and skills, which dominate technical screening.
var defaultSectionWeights = map[types.SectionType]float64{
	types.SectionContact:        0.05,
	types.SectionSummary:        0.10,
	types.SectionSkills:         0.25,
	types.SectionExperience:     0.30,
	types.SectionProjects:       0.15,
	types.SectionEducation:      0.10,
	types.SectionCertifications: 0.05,
}

func genericScale(subject string) map[string]string {
	return map[string]string{
		"0": "No " + subject + " present",
		"1": "Barely addresses " + subject,
		"2": "Weak or vague " + subject,
		"3": "Adequate " + subject + " with some specifics",
		"4": "Strong, specific " + subject,
		"5": "Outstanding " + subject + ", directly relevant to the role",
	}
}

// DefaultSectionRubric returns the fixed fallback rubric for one section.
// It is used whenever rubric generation fails or omits a section, so the
// scoring pass always has a complete rubric to work with.
func DefaultSectionRubric(section types.SectionType) types.SectionRubric {
	var criteria []types.RubricCriteria

	switch section {
	case types.SectionContact:
		criteria = []types.RubricCriteria{
			{
				ID: "completeness", Name: "Completeness",
				Description:  "Name, email, phone and location or links are present",
				Weight0To1:   0.6,
				ScoringScale: genericScale("contact details"),
			},
			{
				ID: "professionalism", Name: "Professionalism",
				Description:  "Contact details look professional (email address, profile links)",
				Weight0To1:   0.4,
				ScoringScale: genericScale("professional presentation"),
			},
		}
	case types.SectionSummary:
		criteria = []types.RubricCriteria{
			{
				ID: "role_alignment", Name: "Role alignment",
				Description:  "Summary speaks to the target role and seniority",
				Weight0To1:   0.6,
				ScoringScale: genericScale("role alignment"),
			},
			{
				ID: "clarity", Name: "Clarity",
				Description:  "Concise, concrete and free of filler",
				Weight0To1:   0.4,
				ScoringScale: genericScale("clarity"),
			},
		}
	case types.SectionSkills:
		criteria = []types.RubricCriteria{
			{
				ID: "core_skills", Name: "Core skills coverage",
				Description:  "Covers the core technical skills the role needs",
				Weight0To1:   0.5,
				ScoringScale: genericScale("core skill coverage"),
			},
			{
				ID: "depth_signals", Name: "Depth signals",
				Description:  "Skills are grouped or qualified rather than a flat keyword list",
				Weight0To1:   0.3,
				ScoringScale: genericScale("depth signals"),
			},
			{
				ID: "relevance", Name: "Relevance",
				Description:  "Listed skills are relevant rather than padded",
				Weight0To1:   0.2,
				ScoringScale: genericScale("relevance"),
			},
		}
	case types.SectionExperience:
		criteria = []types.RubricCriteria{
			{
				ID: "relevant_experience", Name: "Relevant experience",
				Description:  "Roles and responsibilities match the target position",
				Weight0To1:   0.4,
				ScoringScale: genericScale("relevant experience"),
			},
			{
				ID: "impact", Name: "Impact",
				Description:  "Accomplishments are quantified with measurable outcomes",
				Weight0To1:   0.35,
				ScoringScale: genericScale("measurable impact"),
			},
			{
				ID: "progression", Name: "Progression",
				Description:  "Career shows growth in scope or seniority",
				Weight0To1:   0.25,
				ScoringScale: genericScale("career progression"),
			},
		}
	case types.SectionProjects:
		criteria = []types.RubricCriteria{
			{
				ID: "technical_depth", Name: "Technical depth",
				Description:  "Projects demonstrate non-trivial engineering work",
				Weight0To1:   0.6,
				ScoringScale: genericScale("technical depth"),
			},
			{
				ID: "outcomes", Name: "Outcomes",
				Description:  "Projects describe results, users or adoption",
				Weight0To1:   0.4,
				ScoringScale: genericScale("project outcomes"),
			},
		}
	case types.SectionEducation:
		criteria = []types.RubricCriteria{
			{
				ID: "degree_fit", Name: "Degree fit",
				Description:  "Degree level and field suit the role",
				Weight0To1:   0.7,
				ScoringScale: genericScale("degree fit"),
			},
			{
				ID: "achievements", Name: "Achievements",
				Description:  "Honors, coursework or activities that add signal",
				Weight0To1:   0.3,
				ScoringScale: genericScale("academic achievements"),
			},
		}
	case types.SectionCertifications:
		criteria = []types.RubricCriteria{
			{
				ID: "relevance", Name: "Relevance",
				Description:  "Certifications relate to the role's technology",
				Weight0To1:   0.7,
				ScoringScale: genericScale("certification relevance"),
			},
			{
				ID: "currency", Name: "Currency",
				Description:  "Certifications are current, not expired or obsolete",
				Weight0To1:   0.3,
				ScoringScale: genericScale("certification currency"),
			},
		}
	}

	return types.SectionRubric{
		Section:    section,
		Weight0To1: defaultSectionWeights[section],
		Criteria:   criteria,
	}
}

// DefaultJobRubric returns the complete fallback rubric covering every
// section.
func DefaultJobRubric() types.JobRubric {
	sections := make(map[types.SectionType]types.SectionRubric)
	for _, section := range types.AllSections() {
		sections[section] = DefaultSectionRubric(section)
	}
	rubric, err := types.NewJobRubric(sections)
	if err != nil {
		// The defaults cover every section; a failure here is a programming error.
		panic(err)
	}
	return rubric
}
