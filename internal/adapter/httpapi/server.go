// Package httpapi exposes the dashboard data contract over HTTP alongside
// health, readiness, and metrics endpoints.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aleyanazifa/hfmd-analytics-service/internal/domain"
)

// SnapshotProvider is the pipeline surface the API serves from.
type SnapshotProvider interface {
	Snapshot() (domain.Snapshot, bool)
	CheckReadiness(ctx context.Context) error
}

// summaryResponse is the body of /api/summary: every derived statistic of the
// latest run, without the monthly table.
type summaryResponse struct {
	GeneratedAt time.Time                 `json:"generated_at"`
	Seasonal    domain.SeasonalSummary    `json:"seasonal"`
	Regional    domain.RegionalSummary    `json:"regional"`
	Correlation domain.CorrelationSummary `json:"correlation"`
}

// Server exposes the dashboard API plus health, readiness, and metrics routes.
type Server struct {
	httpServer *http.Server
	provider   SnapshotProvider
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, and the
// /api routes the dashboard frontend consumes.
func NewServer(addr string, provider SnapshotProvider, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		provider: provider,
		logger:   logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /api/monthly", s.handleMonthly)
	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /api/snapshot", s.handleSnapshot)

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

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.provider.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleMonthly(w http.ResponseWriter, _ *http.Request) {
	snap, ok := s.provider.Snapshot()
	if !ok {
		writeNoSnapshot(w)
		return
	}
	writeJSON(w, http.StatusOK, snap.Monthly)
}

func (s *Server) handleSummary(w http.ResponseWriter, _ *http.Request) {
	snap, ok := s.provider.Snapshot()
	if !ok {
		writeNoSnapshot(w)
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{
		GeneratedAt: snap.GeneratedAt,
		Seasonal:    snap.Seasonal,
		Regional:    snap.Regional,
		Correlation: snap.Correlation,
	})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	snap, ok := s.provider.Snapshot()
	if !ok {
		writeNoSnapshot(w)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func writeNoSnapshot(w http.ResponseWriter) {
	writeJSON(w, http.StatusServiceUnavailable, map[string]string{
		"error": "no snapshot available yet",
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response body
}
