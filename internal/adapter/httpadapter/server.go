package httpadapter

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/music-event-insights/internal/domain"
	"github.com/couchcryptid/music-event-insights/internal/observability"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DatasetSource supplies the current dataset and reports readiness.
type DatasetSource interface {
	sharedobs.ReadinessChecker
	Dataset() *domain.Dataset
}

// Server exposes the query API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	source     DatasetSource
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the /api routes and /healthz,
// /readyz, and /metrics.
func NewServer(addr string, source DatasetSource, metrics *observability.Metrics, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		source:  source,
		metrics: metrics,
		logger:  logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(source))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/overview", s.withDataset(s.handleOverview))
	mux.HandleFunc("GET /api/states", s.withDataset(s.handleStates))
	mux.HandleFunc("GET /api/states/{state}/cities", s.withDataset(s.handleCities))
	mux.HandleFunc("GET /api/lookup/state/{state}", s.withDataset(s.handleLookupState))
	mux.HandleFunc("GET /api/lookup/city/{state}/{city}", s.withDataset(s.handleLookupCity))
	mux.HandleFunc("GET /api/rankings/{level}", s.withDataset(s.handleRankings))
	mux.HandleFunc("GET /api/regressions/{level}/{factor}", s.withDataset(s.handleRegression))

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

type datasetHandler func(w http.ResponseWriter, r *http.Request, ds *domain.Dataset)

// withDataset answers 503 until the first dataset is loaded.
func (s *Server) withDataset(h datasetHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ds := s.source.Dataset()
		if ds == nil {
			writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "dataset not loaded", Kind: "not_ready"})
			return
		}
		h(w, r, ds)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // client may have gone away
}
