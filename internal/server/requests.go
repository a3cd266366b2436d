package server

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"
)

// CreateJobRequest represents a job submission.
type CreateJobRequest struct {
	Type     string          `json:"type" validate:"required,oneof=score_cv"`
	Priority int             `json:"priority" validate:"gte=0,lte=100"`
	Input    json.RawMessage `json:"input" validate:"required"`
}

// Validate validates the CreateJobRequest using the validator.
func (r *CreateJobRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// CreateCVRequest represents a CV upload with per-section text content.
type CreateCVRequest struct {
	CandidateName  string            `json:"candidate_name,omitempty"`
	CandidateEmail string            `json:"candidate_email,omitempty" validate:"omitempty,email"`
	Sections       map[string]string `json:"sections" validate:"required,min=1"`
}

// Validate validates the CreateCVRequest using the validator.
func (r *CreateCVRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// CreateJobDescriptionRequest represents a job description, either with
// inline fields or a posting URL to ingest.
type CreateJobDescriptionRequest struct {
	Title            string `json:"title,omitempty" validate:"required_without=SourceURL"`
	Company          string `json:"company,omitempty"`
	Responsibilities string `json:"responsibilities,omitempty"`
	Qualifications   string `json:"qualifications,omitempty"`
	SourceURL        string `json:"source_url,omitempty" validate:"omitempty,url"`
}

// Validate validates the CreateJobDescriptionRequest using the validator.
func (r *CreateJobDescriptionRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
