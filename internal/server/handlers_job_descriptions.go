package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/cv-scorer/internal/types"
)

func (s *Server) handleCreateJobDescription(w http.ResponseWriter, r *http.Request) {
	var req CreateJobDescriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.SourceURL != "" {
		text, err := s.fetchPosting(r.Context(), req.SourceURL)
		if err != nil {
			s.errorResponse(w, http.StatusBadGateway, "Failed to ingest posting: "+err.Error())
			return
		}
		if strings.TrimSpace(text) == "" {
			s.errorResponse(w, http.StatusBadGateway, "Posting page contained no readable text")
			return
		}
		if req.Responsibilities == "" {
			req.Responsibilities = text
		}
		if req.Title == "" {
			req.Title = firstLine(text)
		}
	}

	jd := &types.JobDescription{
		ID:               uuid.New(),
		Title:            req.Title,
		Company:          req.Company,
		Responsibilities: req.Responsibilities,
		Qualifications:   req.Qualifications,
		CreatedAt:        time.Now().UTC(),
	}

	if err := s.store.CreateJobDescription(r.Context(), jd); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to create job description: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusCreated, jd)
}

func (s *Server) handleGetJobDescription(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid job description ID")
		return
	}

	jd, err := s.store.GetJobDescription(r.Context(), id)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to get job description: "+err.Error())
		return
	}
	if jd == nil {
		s.errorResponse(w, http.StatusNotFound, "Job description not found")
		return
	}

	s.jsonResponse(w, http.StatusOK, jd)
}

// firstLine returns the first non-empty line of text, used as a fallback
// title for ingested postings.
func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			return line
		}
	}
	return ""
}
