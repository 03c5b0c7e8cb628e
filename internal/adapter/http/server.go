// Package http serves dry-period reports, rainfall aggregates and operational
// endpoints over HTTP.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/rainfall-dry-periods/internal/analysis"
	"github.com/couchcryptid/rainfall-dry-periods/internal/domain"
)

// Analyzer is the analysis service as seen by the handlers.
type Analyzer interface {
	Analyze(ctx context.Context, q analysis.Query) (analysis.Result, error)
	Load(ctx context.Context) (domain.RecordSet, error)
	Today() time.Time
	CheckReadiness(ctx context.Context) error
}

// Defaults fill in query parameters the client leaves out.
type Defaults struct {
	LimitedThresholdMM float64
	TopN               int
	WindowTopN         int
	WindowDays         int
}

// Server exposes the report API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	analyzer   Analyzer
	defaults   Defaults
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the API, chart, and operational routes.
func NewServer(addr string, analyzer Analyzer, defaults Defaults, logger *slog.Logger) *Server {
	router := mux.NewRouter()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		analyzer: analyzer,
		defaults: defaults,
		logger:   logger,
	}

	router.HandleFunc("/healthz", sharedobs.LivenessHandler()).Methods(http.MethodGet)
	router.HandleFunc("/readyz", sharedobs.ReadinessHandler(analyzer)).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(s.logRequests)
	api.HandleFunc("/dry-periods", s.handleDryPeriods).Methods(http.MethodGet)
	api.HandleFunc("/totals/{granularity}", s.handleTotals).Methods(http.MethodGet)
	api.HandleFunc("/averages/{granularity}", s.handleAverages).Methods(http.MethodGet)
	api.HandleFunc("/progress", s.handleProgress).Methods(http.MethodGet)

	router.HandleFunc("/charts/dry-periods", s.handleDryPeriodChart).Methods(http.MethodGet)
	router.HandleFunc("/charts/totals/{granularity}", s.handleTotalsChart).Methods(http.MethodGet)
	router.HandleFunc("/charts/averages/{granularity}", s.handleAveragesChart).Methods(http.MethodGet)
	router.HandleFunc("/charts/progress", s.handleProgressChart).Methods(http.MethodGet)

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
		s.logger.Debug("request served",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
