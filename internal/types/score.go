package types

// CriteriaScore is the scored outcome for a single rubric criterion.
type CriteriaScore struct {
	CriteriaID    string   `json:"criteria_id"`
	Score0To5     float64  `json:"score_0_to_5"`
	Weight0To1    float64  `json:"weight_0_to_1"`
	Justification string   `json:"justification"`
	FoundEvidence []string `json:"found_evidence,omitempty"`
	MissingItems  []string `json:"missing_items,omitempty"`
}

// SectionScore holds the criteria scores for one CV section along with the
// derived weighted sub-score and the section's own weight.
type SectionScore struct {
	Section        SectionType     `json:"section"`
	TotalScore0To5 float64         `json:"total_score_0_to_5"`
	Weight0To1     float64         `json:"weight_0_to_1"`
	Criteria       []CriteriaScore `json:"criteria"`
}

// CvScoreResult is the final aggregate produced by scoring a CV against a
// job rubric. It becomes the Output of a ScoreCV job.
type CvScoreResult struct {
	SectionScores    map[SectionType]SectionScore `json:"section_scores"`
	TotalScore       float64                      `json:"total_score"`
	MaxPossibleScore float64                      `json:"max_possible_score"`
	ScorePercentage  float64                      `json:"score_percentage"`
}
