// Package server exposes the forecasting engine and the budget planner as a
// JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/iwvelando/commerce-analytics/internal/config"
	"github.com/iwvelando/commerce-analytics/pkg/budget"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type handler struct {
	logger      *zap.Logger
	conf        *config.Configuration
	planner     *budget.Planner
	validate    *validator.Validate
	metrics     *metrics
	maxBodySize int64
	version     string
}

// NewHandler constructs the HTTP handler serving the analytics API. The
// configuration supplies forecast defaults and business assumptions; nil
// values fall back to the built-in defaults.
func NewHandler(logger *zap.Logger, cfg *Config, conf *config.Configuration, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if conf == nil {
		conf = config.Default()
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:      logger,
		conf:        conf,
		planner:     budget.NewPlanner(conf.Assumptions()),
		validate:    newValidator(),
		metrics:     newMetrics(),
		maxBodySize: cfg.BodySizeBytes(),
		version:     trimmedVersion,
	}

	router := mux.NewRouter()
	router.Use(h.requestIDMiddleware)
	router.Use(h.observeMiddleware)

	router.HandleFunc("/healthz", h.handleHealth).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.HandlerFor(h.metrics.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.Use(h.rateLimitMiddleware(newLimiter(cfg.RateLimit, cfg.RateBurst)))
	api.Use(h.bodyLimitMiddleware)

	api.HandleFunc("/version", h.handleVersion).Methods(http.MethodGet)
	api.HandleFunc("/mock/dataset", h.handleMockDataset).Methods(http.MethodGet)

	api.HandleFunc("/forecast", h.handleForecast).Methods(http.MethodPost)
	api.HandleFunc("/anomalies", h.handleAnomalies).Methods(http.MethodPost)
	api.HandleFunc("/seasonality", h.handleSeasonality).Methods(http.MethodPost)
	api.HandleFunc("/moving-average", h.handleMovingAverage).Methods(http.MethodPost)

	api.HandleFunc("/budget/simulate", h.handleSimulate).Methods(http.MethodPost)
	api.HandleFunc("/budget/optimize", h.handleOptimize).Methods(http.MethodPost)
	api.HandleFunc("/budget/diminishing-returns", h.handleDiminishingReturns).Methods(http.MethodPost)
	api.HandleFunc("/budget/breakeven", h.handleBreakeven).Methods(http.MethodPost)
	api.HandleFunc("/budget/shift-impact", h.handleShiftImpact).Methods(http.MethodPost)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.respondError(w, r, http.StatusNotFound, "not found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.respondError(w, r, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
	})

	return router
}

// Server runs the API handler until its context is cancelled.
type Server struct {
	logger *zap.Logger
	http   *http.Server
}

// New wraps NewHandler in an http.Server listening on cfg.Address.
func New(logger *zap.Logger, cfg *Config, conf *config.Configuration, version string) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Server{
		logger: logger,
		http: &http.Server{
			Addr:              cfg.Address,
			Handler:           NewHandler(logger, cfg, conf, version),
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
}

// Run serves until ctx is done and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(fmt.Sprintf("listening on %s", s.http.Addr),
			zap.String("op", "server.Run"),
		)
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down",
			zap.String("op", "server.Run"),
		)
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	}
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"version": h.version})
}

// decode reads a JSON request body into dst and validates it. It writes the
// error response itself and reports whether the handler should continue.
func (h *handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, r, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds limit of %d bytes", h.maxBodySize))
			return false
		}
		h.respondError(w, r, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err))
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		h.respondError(w, r, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func (h *handler) respondError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	h.logger.Error("request failed",
		zap.String("op", "server.respondError"),
		zap.String("requestID", RequestID(r.Context())),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.String("error", msg),
	)
	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response",
			zap.String("op", "server.writeJSON"),
			zap.Error(err),
		)
	}
}
