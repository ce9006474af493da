package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hyperjump/villagerag/internal/models"
	"github.com/hyperjump/villagerag/internal/provider"
	"github.com/hyperjump/villagerag/internal/rag"
	"go.uber.org/zap"
)

const (
	statusHealthy  = "healthy"
	statusNotReady = "not_ready"
	rootMessage    = "La Roca Village RAG API"
)

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"message": rootMessage})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	query, ok := s.decodeQuery(w, r)
	if !ok {
		return
	}
	s.logger.Debug("chat request", zap.String("query", query.Query))
	answer, err := s.assistant.Answer(r.Context(), query.Query)
	if err != nil {
		s.fail(w, "chat failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, models.ChatResponse{Response: answer})
}

func (s *Server) handleDiagnose(w http.ResponseWriter, r *http.Request) {
	query, ok := s.decodeQuery(w, r)
	if !ok {
		return
	}
	s.logger.Debug("diagnose request", zap.String("query", query.Query))
	docs, err := s.assistant.Diagnose(r.Context(), query.Query)
	if err != nil {
		s.fail(w, "diagnose failed", err)
		return
	}
	if docs == nil {
		docs = []models.Diagnostic{}
	}
	s.respondJSON(w, http.StatusOK, models.DiagnosticResponse{
		Query:              query.Query,
		RetrievedDocuments: docs,
		TotalDocuments:     len(docs),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	h := s.assistant.Health()
	status := statusNotReady
	if h.Ready {
		status = statusHealthy
	}
	s.respondJSON(w, http.StatusOK, models.HealthResponse{Status: status, DocumentsLoaded: h.Ready})
}

func (s *Server) decodeQuery(w http.ResponseWriter, r *http.Request) (models.Query, bool) {
	var query models.Query
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return query, false
	}
	if err := query.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return query, false
	}
	return query, true
}

func (s *Server) fail(w http.ResponseWriter, msg string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(msg, zap.Int("status", status), zap.Error(err))
	} else {
		s.logger.Debug(msg, zap.Int("status", status), zap.Error(err))
	}
	s.respondError(w, status, err.Error())
}

// statusFor maps service errors to HTTP status codes. An unavailable index is checked
// first because it may wrap the provider error that caused it.
func statusFor(err error) int {
	var perr *provider.Error
	switch {
	case errors.Is(err, rag.ErrEmptyQuestion):
		return http.StatusBadRequest
	case errors.Is(err, rag.ErrIndexUnavailable):
		return http.StatusServiceUnavailable
	case errors.As(err, &perr):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
