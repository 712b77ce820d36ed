// Package httpadapter serves the CLI's optional operational endpoints:
// health, readiness, Prometheus metrics and the persisted alert history.
package httpadapter

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/pest-risk/internal/domain"
)

// AlertSource returns the persisted alert history.
type AlertSource func() ([]domain.AlertRecord, error)

// Server exposes operational endpoints next to the interactive session.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and
// /alerts routes. Metrics are read from gatherer.
func NewServer(addr string, ready sharedobs.ReadinessChecker, gatherer prometheus.Gatherer, alerts AlertSource, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /alerts", s.handleAlerts(alerts))

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

func (s *Server) handleAlerts(alerts AlertSource) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		records, err := alerts()
		if err != nil {
			s.logger.Error("read alert history", "error", err)
			sharedobs.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "alert history unavailable"})
			return
		}
		if records == nil {
			records = []domain.AlertRecord{}
		}
		sharedobs.WriteJSON(w, http.StatusOK, records)
	}
}
