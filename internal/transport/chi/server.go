package chi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	dombatch "github.com/kailas-cloud/resumerank/internal/domain/batch"
	domcand "github.com/kailas-cloud/resumerank/internal/domain/candidate"
	"github.com/kailas-cloud/resumerank/internal/domain/retrieval/mode"
	"github.com/kailas-cloud/resumerank/internal/domain/retrieval/request"
	"github.com/kailas-cloud/resumerank/internal/domain/retrieval/result"
	domstats "github.com/kailas-cloud/resumerank/internal/domain/stats"
	logpkg "github.com/kailas-cloud/resumerank/internal/logger"
	healthuc "github.com/kailas-cloud/resumerank/internal/usecase/health"
	screeninguc "github.com/kailas-cloud/resumerank/internal/usecase/screening"
)

// maxBodyBytes bounds request bodies; ingestion batches carry whole resumes.
const maxBodyBytes = 32 << 20

// Retriever serves retrieval requests.
type Retriever interface {
	Retrieve(ctx context.Context, req request.Request) (result.Result, error)
}

// Screener serves screening requests.
type Screener interface {
	Screen(ctx context.Context, req request.Request) (screeninguc.Answer, error)
}

// Ingestor writes candidates to the index.
type Ingestor interface {
	Ingest(ctx context.Context, items []domcand.Candidate) []dombatch.Result
	Replace(ctx context.Context, items []domcand.Candidate) ([]dombatch.Result, error)
	Reset(ctx context.Context) error
	Count(ctx context.Context) (int, error)
}

// CandidateReader loads a single stored candidate.
type CandidateReader interface {
	Resolve(ctx context.Context, id string) (domcand.Candidate, error)
}

// StatsReader reports query activity counters.
type StatsReader interface {
	Snapshot(ctx context.Context) (domstats.Snapshot, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Server holds the HTTP handlers.
type Server struct {
	retriever  Retriever
	screener   Screener
	ingestor   Ingestor
	candidates CandidateReader
	stats      StatsReader
	health     HealthChecker
	logger     *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(
	retriever Retriever,
	screener Screener,
	ingestor Ingestor,
	candidates CandidateReader,
	stats StatsReader,
	health HealthChecker,
	logger *zap.Logger,
) *Server {
	return &Server{
		retriever:  retriever,
		screener:   screener,
		ingestor:   ingestor,
		candidates: candidates,
		stats:      stats,
		health:     health,
		logger:     logger,
	}
}

// Routes mounts all endpoints on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/retrieve", s.Retrieve)
		r.Post("/screen", s.Screen)
		r.Post("/candidates", s.IngestCandidates)
		r.Put("/candidates", s.ReplaceCandidates)
		r.Delete("/candidates", s.ResetCandidates)
		r.Get("/candidates/{id}", s.GetCandidate)
		r.Get("/stats", s.Stats)
	})
}

// Retrieve handles POST /v1/retrieve.
func (s *Server) Retrieve(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRetrieveRequest(w, r)
	if !ok {
		return
	}

	res, err := s.retriever.Retrieve(r.Context(), req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, retrieveToDTO(&res))
}

// Screen handles POST /v1/screen.
func (s *Server) Screen(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRetrieveRequest(w, r)
	if !ok {
		return
	}

	ans, err := s.screener.Screen(r.Context(), req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, screenToDTO(&ans))
}

// IngestCandidates handles POST /v1/candidates.
func (s *Server) IngestCandidates(w http.ResponseWriter, r *http.Request) {
	items, ok := s.decodeCandidates(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, ingestToDTO(s.ingestor.Ingest(r.Context(), items)))
}

// ReplaceCandidates handles PUT /v1/candidates: the index is rebuilt from the body.
func (s *Server) ReplaceCandidates(w http.ResponseWriter, r *http.Request) {
	items, ok := s.decodeCandidates(w, r)
	if !ok {
		return
	}

	results, err := s.ingestor.Replace(r.Context(), items)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ingestToDTO(results))
}

// ResetCandidates handles DELETE /v1/candidates.
func (s *Server) ResetCandidates(w http.ResponseWriter, r *http.Request) {
	if err := s.ingestor.Reset(r.Context()); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetCandidate handles GET /v1/candidates/{id}.
func (s *Server) GetCandidate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := domcand.ValidateID(id); err != nil {
		writeError(w, http.StatusBadRequest, codeMalformedInput, err.Error())
		return
	}

	c, err := s.candidates.Resolve(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, CandidateItem{ID: c.ID(), Text: c.Text()})
}

// Stats handles GET /v1/stats.
func (s *Server) Stats(w http.ResponseWriter, r *http.Request) {
	n, err := s.ingestor.Count(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	snap, err := s.stats.Snapshot(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statsToDTO(n, &snap))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, healthToDTO(report))
}

func (s *Server) decodeRetrieveRequest(w http.ResponseWriter, r *http.Request) (request.Request, bool) {
	var body RetrieveRequest
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return request.Request{}, false
	}

	m, err := mode.Parse(body.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeMalformedInput, err.Error())
		return request.Request{}, false
	}

	req, err := request.New(body.JobDescription, m, derefInt(body.TopKPerQuery), derefInt(body.TopKFinal))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeMalformedInput, err.Error())
		return request.Request{}, false
	}
	return req, true
}

func (s *Server) decodeCandidates(w http.ResponseWriter, r *http.Request) ([]domcand.Candidate, bool) {
	var body IngestRequest
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return nil, false
	}
	if len(body.Candidates) == 0 {
		writeError(w, http.StatusBadRequest, codeMalformedInput, "candidates must not be empty")
		return nil, false
	}

	// Content checks happen per item in the ingestion service so one bad
	// record does not reject the whole batch.
	items := make([]domcand.Candidate, len(body.Candidates))
	for i, c := range body.Candidates {
		id, err := domcand.NormalizeID(c.ID)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeMalformedInput, fmt.Sprintf("candidates[%d]: %v", i, err))
			return nil, false
		}
		items[i] = domcand.Reconstruct(id, c.Text)
	}
	return items, true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, msg := classify(err)
	log := logpkg.FromContext(r.Context())
	if status >= http.StatusInternalServerError && code == codeInternal {
		log.Error("internal error", zap.Error(err))
	} else {
		log.Warn("domain error", zap.String("code", code), zap.Error(err))
	}
	writeError(w, status, code, msg)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
