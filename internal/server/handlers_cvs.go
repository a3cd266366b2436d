package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/cv-scorer/internal/types"
)

func (s *Server) handleCreateCV(w http.ResponseWriter, r *http.Request) {
	var req CreateCVRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	sections := make(map[types.SectionType]string, len(req.Sections))
	for key, content := range req.Sections {
		section := types.SectionType(key)
		if !section.Valid() {
			s.errorResponse(w, http.StatusBadRequest, "Unknown CV section: "+key)
			return
		}
		sections[section] = content
	}

	cv := &types.CV{
		ID:             uuid.New(),
		CandidateName:  req.CandidateName,
		CandidateEmail: req.CandidateEmail,
		Sections:       sections,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.store.CreateCV(r.Context(), cv); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to create CV: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusCreated, cv)
}

func (s *Server) handleGetCV(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid CV ID")
		return
	}

	cv, err := s.store.GetCV(r.Context(), id)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to get CV: "+err.Error())
		return
	}
	if cv == nil {
		s.errorResponse(w, http.StatusNotFound, "CV not found")
		return
	}

	s.jsonResponse(w, http.StatusOK, cv)
}
