package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"groovecall/internal/core"
)

type Server struct {
	config  *core.ServerConfig
	logger  *zap.Logger
	server  *http.Server
	metrics *Metrics
}

type Metrics struct {
	DispatchesTotal     *prometheus.CounterVec
	FallbacksTotal      *prometheus.CounterVec
	CleanupDeletesTotal prometheus.Counter
	ActiveChats         prometheus.Gauge
	QueuedEntries       prometheus.Gauge
}

func NewServer(config *core.ServerConfig, logger *zap.Logger) *Server {
	metrics := &Metrics{
		DispatchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "groovecall_dispatches_total",
				Help: "Total number of playback dispatches",
			},
			[]string{"source", "status"},
		),
		FallbacksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "groovecall_fallbacks_total",
				Help: "Total number of cross-source fallback attempts",
			},
			[]string{"source", "step", "status"},
		),
		CleanupDeletesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "groovecall_cleanup_deletes_total",
				Help: "Total number of downloaded files deleted after playback",
			},
		),
		ActiveChats: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "groovecall_active_chats",
				Help: "Number of chats with an active playback queue",
			},
		),
		QueuedEntries: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "groovecall_queued_entries",
				Help: "Total number of queued tracks across all chats",
			},
		),
	}

	prometheus.MustRegister(
		metrics.DispatchesTotal,
		metrics.FallbacksTotal,
		metrics.CleanupDeletesTotal,
		metrics.ActiveChats,
		metrics.QueuedEntries,
	)

	server := createHTTPServer(config, setupRoutes(logger))

	return &Server{
		config:  config,
		logger:  logger,
		server:  server,
		metrics: metrics,
	}
}

func setupRoutes(logger *zap.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"ok","service":"groovecall"}`)); err != nil {
			logger.Debug("Failed to write health response", zap.Error(err))
		}
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"ready","service":"groovecall"}`)); err != nil {
			logger.Debug("Failed to write readiness response", zap.Error(err))
		}
	})

	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

func createHTTPServer(config *core.ServerConfig, mux *http.ServeMux) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      mux,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}
}

func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting HTTP server",
		zap.String("addr", s.server.Addr))

	go func() {
		<-ctx.Done()
		s.logger.Info("Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Failed to shutdown HTTP server gracefully", zap.Error(err))
		}
	}()

	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	return nil
}

func (s *Server) GetMetrics() *Metrics {
	return s.metrics
}

// RecordDispatch and RecordFallback satisfy core.DispatchMetrics.

func (s *Server) RecordDispatch(source, status string) {
	s.metrics.DispatchesTotal.WithLabelValues(source, status).Inc()
}

func (s *Server) RecordFallback(source, step, status string) {
	s.metrics.FallbacksTotal.WithLabelValues(source, step, status).Inc()
}

func (s *Server) RecordCleanupDelete() {
	s.metrics.CleanupDeletesTotal.Inc()
}

func (s *Server) SetActiveChats(count int) {
	s.metrics.ActiveChats.Set(float64(count))
}

func (s *Server) SetQueuedEntries(count int) {
	s.metrics.QueuedEntries.Set(float64(count))
}
