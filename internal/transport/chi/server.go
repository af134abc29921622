// Package chi exposes the ranking engine over an HTTP API.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	matchdex "github.com/kailas-cloud/matchdex"
	"github.com/kailas-cloud/matchdex/internal/domain"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server handles the matchdex HTTP API.
type Server struct {
	engine        Engine
	pinger        Pinger
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(engine Engine, pinger Pinger, logger *zap.Logger) *Server {
	s := &Server{
		engine: engine,
		pinger: pinger,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrDocumentNotFound, http.StatusNotFound, "document_not_found"),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, "not_found"),
		sentinelHandler(domain.ErrAlreadyExists, http.StatusConflict, "already_exists"),
		sentinelHandler(domain.ErrIndexUnavailable, http.StatusServiceUnavailable, "index_unavailable"),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, "embedding_provider_error"),
		sentinelHandler(domain.ErrCompletionProviderError, http.StatusBadGateway, "completion_provider_error"),
	}
	return s
}

// Routes mounts all API routes on the router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/v1/rank", s.RankCandidates)
	r.Route("/v1/agents/{agent}/documents", func(r chi.Router) {
		r.Post("/", s.UpsertDocument)
		r.Get("/", s.ListDocuments)
		r.Delete("/{id}", s.DeleteDocument)
	})
	r.Get("/healthz", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// RankCandidates handles POST /v1/rank. Without candidate_ids the whole
// agent registry is ranked.
func (s *Server) RankCandidates(w http.ResponseWriter, r *http.Request) {
	var req rankRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "query is required")
		return
	}
	if req.Agent == "" && len(req.CandidateIDs) == 0 {
		writeError(w, http.StatusBadRequest, "validation_failed", "agent or candidate_ids is required")
		return
	}

	var (
		out matchdex.RankOutput
		err error
	)
	if len(req.CandidateIDs) > 0 {
		out, err = s.engine.Rank(r.Context(), req.Agent, req.CandidateIDs, req.Query)
	} else {
		out, err = s.engine.RankAll(r.Context(), req.Agent, req.Query)
	}
	if err != nil {
		// An exhausted candidate pool is an empty answer, not a failure.
		if errors.Is(err, domain.ErrNoCandidates) {
			writeJSON(w, http.StatusOK, rankResponse{
				Query:   req.Query,
				Results: []matchDTO{},
				Message: "no results",
			})
			return
		}
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rankOutputToResponse(out))
}

// UpsertDocument handles POST /v1/agents/{agent}/documents.
func (s *Server) UpsertDocument(w http.ResponseWriter, r *http.Request) {
	agent := chi.URLParam(r, "agent")

	var req upsertDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "document id is required")
		return
	}

	if err := s.engine.AddDocument(r.Context(), documentFromUpsert(agent, req)); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.Header().Set("Location", "/v1/agents/"+agent+"/documents/"+req.ID)
	w.WriteHeader(http.StatusCreated)
}

// ListDocuments handles GET /v1/agents/{agent}/documents.
func (s *Server) ListDocuments(w http.ResponseWriter, r *http.Request) {
	agent := chi.URLParam(r, "agent")

	records, err := s.engine.Documents(r.Context(), agent)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]documentDTO, len(records))
	for i, rec := range records {
		items[i] = documentToDTO(rec)
	}
	writeJSON(w, http.StatusOK, documentListResponse{Items: items, Total: len(items)})
}

// DeleteDocument handles DELETE /v1/agents/{agent}/documents/{id}.
func (s *Server) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	agent := chi.URLParam(r, "agent")
	id := chi.URLParam(r, "id")

	if err := s.engine.RemoveDocument(r.Context(), agent, id); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck handles GET /healthz.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"database": "ok"}
	status := "ok"
	httpStatus := http.StatusOK

	if s.pinger != nil {
		if err := s.pinger.Ping(r.Context()); err != nil {
			checks["database"] = "failed"
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
		}
	}

	writeJSON(w, httpStatus, healthResponse{Status: status, Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrDocumentNotFound,
		domain.ErrAlreadyExists,
		domain.ErrIndexUnavailable,
		domain.ErrNoCandidates,
		domain.ErrExtractionFailed,
		domain.ErrEmbeddingProviderError,
		domain.ErrCompletionProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
}
