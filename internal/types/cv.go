package types

import (
	"time"

	"github.com/google/uuid"
)

// CV is a stored curriculum vitae broken into sections. Section content is
// plain text; extraction from source documents happens upstream.
type CV struct {
	ID             uuid.UUID              `json:"id"`
	CandidateName  string                 `json:"candidate_name"`
	CandidateEmail string                 `json:"candidate_email"`
	Sections       map[SectionType]string `json:"sections"`
	CreatedAt      time.Time              `json:"created_at"`
}

// JobDescription is the posting a CV is scored against. Responsibilities and
// Qualifications are free text blocks, typically extracted from a posting page.
type JobDescription struct {
	ID               uuid.UUID `json:"id"`
	Title            string    `json:"title"`
	Company          string    `json:"company"`
	Responsibilities string    `json:"responsibilities"`
	Qualifications   string    `json:"qualifications"`
	CreatedAt        time.Time `json:"created_at"`
}
