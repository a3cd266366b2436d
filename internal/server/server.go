// Package server provides the HTTP REST API for the CV scoring service.
package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/cv-scorer/internal/ingest"
	"github.com/jonathan/cv-scorer/internal/types"
)

// JobService is the job submission surface the server exposes.
type JobService interface {
	Create(ctx context.Context, jobType types.JobType, input json.RawMessage, priority int) (*types.Job, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Job, error)
	Cancel(ctx context.Context, id uuid.UUID) (*types.Job, error)
}

// Store persists CVs and job descriptions.
type Store interface {
	CreateCV(ctx context.Context, cv *types.CV) error
	GetCV(ctx context.Context, id uuid.UUID) (*types.CV, error)
	CreateJobDescription(ctx context.Context, jd *types.JobDescription) error
	GetJobDescription(ctx context.Context, id uuid.UUID) (*types.JobDescription, error)
}

// Config holds server configuration.
type Config struct {
	ListenAddr string
}

// Server represents the HTTP server.
type Server struct {
	httpServer   *http.Server
	jobs         JobService
	store        Store
	fetchPosting func(ctx context.Context, url string) (string, error)
}

// New creates a new server instance.
func New(cfg Config, jobs JobService, store Store) *Server {
	s := &Server{
		jobs:  jobs,
		store: store,
		fetchPosting: func(ctx context.Context, url string) (string, error) {
			result, err := ingest.FetchPosting(ctx, url, nil)
			if err != nil {
				return "", err
			}
			return result.Text, nil
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /jobs", s.handleCreateJob)
	mux.HandleFunc("GET /jobs/{id}", s.handleGetJob)
	mux.HandleFunc("POST /jobs/{id}/cancel", s.handleCancelJob)

	mux.HandleFunc("POST /cvs", s.handleCreateCV)
	mux.HandleFunc("GET /cvs/{id}", s.handleGetCV)

	mux.HandleFunc("POST /job-descriptions", s.handleCreateJobDescription)
	mux.HandleFunc("GET /job-descriptions/{id}", s.handleGetJobDescription)

	mux.HandleFunc("GET /health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      s.withLogging(s.withCORS(mux)),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start listens for requests until ctx is canceled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

// Handler exposes the configured HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// withCORS adds CORS headers.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging logs each request with method, path and duration.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s (%v)", r.Method, r.URL.Path, time.Since(start))
	})
}

// jsonResponse writes a JSON response with the given status code.
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response.
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}
