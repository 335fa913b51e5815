// Package server provides the HTTP API for landing-page analysis.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/ynumao/ai-creative-director2/internal/analysis"
	"github.com/ynumao/ai-creative-director2/internal/artifacts"
	"github.com/ynumao/ai-creative-director2/internal/metrics"
	"github.com/ynumao/ai-creative-director2/internal/report"
	"github.com/ynumao/ai-creative-director2/internal/server/ratelimit"
)

// maxBodyBytes caps the /analyze request body.
const maxBodyBytes = 1 << 20

// Analyzer runs one analysis.
type Analyzer interface {
	Run(ctx context.Context, req analysis.Request) (*report.Report, error)
}

// ArtifactSource returns the latest screenshot.
type ArtifactSource interface {
	Latest() (artifacts.Artifact, bool)
}

// Config holds server configuration
type Config struct {
	Port              int
	MaxConcurrentRuns int
	RateLimit         *ratelimit.Config
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	analyzer    Analyzer
	artifacts   ArtifactSource
	metrics     *metrics.Collector
	rateLimiter *ratelimit.Limiter
	runs        *semaphore.Weighted
	maxRuns     int
	validate    *validator.Validate
	logger      *zap.Logger
}

// New creates a new server instance
func New(cfg Config, analyzer Analyzer, store ArtifactSource, m *metrics.Collector, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxConcurrentRuns <= 0 {
		cfg.MaxConcurrentRuns = 1
	}
	if store == nil {
		store = artifacts.NewStore()
	}

	s := &Server{
		analyzer:    analyzer,
		artifacts:   store,
		metrics:     m,
		rateLimiter: ratelimit.NewLimiter(cfg.RateLimit),
		runs:        semaphore.NewWeighted(int64(cfg.MaxConcurrentRuns)),
		maxRuns:     cfg.MaxConcurrentRuns,
		validate:    validator.New(),
		logger:      logger.With(zap.String("component", "server")),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /analyze", s.handleAnalyze)
	mux.HandleFunc("GET /screenshot", s.handleScreenshot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", m.Handler())

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.withLogging(s.withRateLimit(s.withCORS(mux))),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      300 * time.Second, // a run includes a 90s page load plus model calls
		IdleTimeout:       60 * time.Second,
	}

	return s
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until ctx is cancelled or the process receives SIGINT/SIGTERM,
// then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.rateLimiter.Stop()

	s.logger.Info("server stopped")
	return nil
}

// handleAnalyze runs the pipeline for the posted URL.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analysis.Request
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, &ErrValidation{Field: "body", Message: "Request body must be a JSON object"})
		return
	}
	if err := s.validateRequest(req); err != nil {
		s.errorResponse(w, err)
		return
	}

	if !s.runs.TryAcquire(1) {
		s.errorResponse(w, &ErrBusy{Limit: s.maxRuns})
		return
	}
	defer s.runs.Release(1)

	rep, err := s.analyzer.Run(r.Context(), req)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, rep)
}

// validateRequest checks the request with struct tags and maps failures to
// ErrValidation.
func (s *Server) validateRequest(req analysis.Request) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		switch fe.Tag() {
		case "required":
			return &ErrValidation{Field: "url", Message: "URL is required"}
		case "url":
			return &ErrValidation{Field: "url", Message: "URL must be an absolute URL"}
		}
		return &ErrValidation{Field: fe.Field(), Message: fe.Error()}
	}
	return &ErrValidation{Field: "body", Message: err.Error()}
}

// handleScreenshot serves the image most recently sent to the model.
func (s *Server) handleScreenshot(w http.ResponseWriter, _ *http.Request) {
	art, ok := s.artifacts.Latest()
	if !ok {
		s.jsonResponse(w, http.StatusNotFound, ErrorResponse{Error: "No screenshot available yet"})
		return
	}
	w.Header().Set("Content-Type", art.MIMEType)
	w.Header().Set("Content-Length", strconv.Itoa(len(art.Data)))
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Last-Modified", art.StoredAt.UTC().Format(http.TimeFormat))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(art.Data); err != nil {
		s.logger.Warn("failed to write screenshot", zap.Error(err))
	}
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(s.extractClientID(r), r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			// rejected before routing; label by the throttled endpoint
			r.Pattern = r.Method + " " + r.URL.Path
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response code for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withLogging adds request logging and HTTP metrics
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		elapsed := time.Since(start)

		// the mux sets Pattern; unmatched paths share one label
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		s.metrics.RecordHTTPRequest(r.Method, route, rec.status, elapsed)
		s.logger.Info("request completed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote", r.RemoteAddr),
			zap.Int("status", rec.status),
			zap.Duration("duration", elapsed))
	})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// errorResponse writes the error envelope with the status mapped from err.
func (s *Server) errorResponse(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}
	s.jsonResponse(w, status, NewErrorResponse(err))
}

// extractClientID extracts the client identifier from the request.
// It uses the IP address from RemoteAddr; forwarded headers are not trusted.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	resp := ErrorResponse{Error: "Rate limit exceeded. Please try again later."}
	if info.RetryAfter > 0 {
		secs := int(info.RetryAfter.Round(time.Second).Seconds())
		if secs < 1 {
			secs = 1
		}
		w.Header().Set("Retry-After", strconv.Itoa(secs))
		resp.Details = fmt.Sprintf("retry after %d seconds", secs)
	}

	s.logger.Warn("rate limit exceeded",
		zap.Int("limit", info.Limit),
		zap.Int("remaining", info.Remaining),
		zap.Time("reset", info.ResetTime))

	s.jsonResponse(w, http.StatusTooManyRequests, resp)
}
