package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/jimezsa/jobradar/internal/cvparse"
	"github.com/jimezsa/jobradar/internal/models"
	"github.com/jimezsa/jobradar/internal/pipeline"
	"github.com/jimezsa/jobradar/internal/profile"
)

const maxBodyBytes = 1 << 20

// Server exposes harvest, search and profile management over HTTP.
type Server struct {
	pipeline *pipeline.Pipeline
	profiles *profile.Store
	logger   zerolog.Logger
}

func NewServer(p *pipeline.Pipeline, profiles *profile.Store, logger zerolog.Logger) *Server {
	return &Server{pipeline: p, profiles: profiles, logger: logger}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.health)
	mux.HandleFunc("POST /ingest", s.ingest)
	mux.HandleFunc("POST /search", s.search)
	mux.HandleFunc("POST /profile", s.createProfile)
	mux.HandleFunc("GET /profile/{user_id}", s.getProfile)
	mux.HandleFunc("PUT /profile/{user_id}", s.updateProfile)
	mux.HandleFunc("DELETE /profile/{user_id}", s.deleteProfile)
	mux.HandleFunc("POST /profile/{user_id}/parse-cv", s.parseCV)
	return s.logRequests(mux)
}

type ingestResponse struct {
	Total  int              `json:"total"`
	Items  []models.Posting `json:"items"`
	Report pipeline.Report  `json:"report"`
}

type searchResponse struct {
	Total int              `json:"total"`
	Items []models.Posting `json:"items"`
}

type parseCVRequest struct {
	CVText string `json:"cv_text"`
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeResponse(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"connectors": s.pipeline.Connectors(),
	})
}

func (s *Server) ingest(w http.ResponseWriter, r *http.Request) {
	var req models.SearchRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := s.pipeline.Harvest(r.Context(), req)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeResponse(w, http.StatusOK, ingestResponse{
		Total:  len(result.Postings),
		Items:  nonNil(result.Postings),
		Report: result.Report,
	})
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	var req models.SearchRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if userID := r.URL.Query().Get("profile"); userID != "" {
		p, err := s.profiles.Get(userID)
		if err != nil {
			s.fail(w, err)
			return
		}
		req = profile.SearchRequest(p, req)
	}

	ranked, err := s.pipeline.Search(r.Context(), req)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeResponse(w, http.StatusOK, searchResponse{Total: len(ranked), Items: nonNil(ranked)})
}

func (s *Server) createProfile(w http.ResponseWriter, r *http.Request) {
	var p models.Profile
	if !decodeBody(w, r, &p) {
		return
	}
	if p.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	created, err := s.profiles.Create(p)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeResponse(w, http.StatusCreated, created)
}

func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.profiles.Get(r.PathValue("user_id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeResponse(w, http.StatusOK, p)
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	var patch models.ProfilePatch
	if !decodeBody(w, r, &patch) {
		return
	}

	p, err := s.profiles.Update(r.PathValue("user_id"), patch)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeResponse(w, http.StatusOK, p)
}

func (s *Server) deleteProfile(w http.ResponseWriter, r *http.Request) {
	if err := s.profiles.Delete(r.PathValue("user_id")); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// parseCV extracts features from the posted CV text without touching the
// stored profile.
func (s *Server) parseCV(w http.ResponseWriter, r *http.Request) {
	var req parseCVRequest
	if !decodeBody(w, r, &req) {
		return
	}
	writeResponse(w, http.StatusOK, cvparse.Extract(req.CVText))
}

// fail maps domain errors to status codes.
func (s *Server) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pipeline.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, profile.ErrNotFound):
		writeError(w, http.StatusNotFound, "Profile not found")
	case errors.Is(err, profile.ErrInvalid):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, profile.ErrExists):
		writeError(w, http.StatusBadRequest, "Profile already exists")
	default:
		s.logger.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// decodeBody reads a JSON body into dst. An empty body leaves dst zero.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON body: %v", err))
		return false
	}
	return true
}

func writeResponse(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeResponse(w, status, map[string]string{"detail": detail})
}

func nonNil(postings []models.Posting) []models.Posting {
	if postings == nil {
		return []models.Posting{}
	}
	return postings
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("elapsed", time.Since(start)).
			Msg("http request")
	})
}
