package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/suhm-sensorthings-bridge/internal/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Converter produces SensorThings documents on demand and reports readiness.
type Converter interface {
	Latest(ctx context.Context) (domain.Document, error)
	Timeseries(ctx context.Context, q domain.TimeseriesQuery) (domain.ObservationDocument, error)
	CheckReadiness(ctx context.Context) error
}

// Server exposes the SensorThings endpoints plus health, readiness, and
// metrics routes.
type Server struct {
	httpServer *http.Server
	converter  Converter
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /latest, /timeseries, /healthz,
// /readyz, and /metrics routes.
func NewServer(addr string, converter Converter, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		converter: converter,
		logger:    logger,
	}

	mux.HandleFunc("GET /latest", s.handleLatest)
	mux.HandleFunc("GET /timeseries", s.handleTimeseries)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

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

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	doc, err := s.converter.Latest(r.Context())
	if err != nil {
		s.writeError(w, "latest", err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleTimeseries(w http.ResponseWriter, r *http.Request) {
	q, err := domain.ParseTimeseriesQuery(
		r.URL.Query().Get("stationId"),
		r.URL.Query().Get("timeFrom"),
		r.URL.Query().Get("timeTo"),
	)
	if err != nil {
		s.writeError(w, "timeseries", err)
		return
	}

	doc, err := s.converter.Timeseries(r.Context(), q)
	if err != nil {
		s.writeError(w, "timeseries", err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// writeError maps failures to status codes: invalid caller parameters are
// 400, everything upstream-related is 502.
func (s *Server) writeError(w http.ResponseWriter, flow string, err error) {
	status := http.StatusBadGateway
	if errors.Is(err, domain.ErrInvalidQuery) {
		status = http.StatusBadRequest
	}

	s.logger.Error("request failed", "flow", flow, "status", status, "error", err)
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.converter.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response write
}
