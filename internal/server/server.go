// Package server provides the local HTTP API of the media tracker.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/jonathan/media-workflow/internal/analysis"
	"github.com/jonathan/media-workflow/internal/fetch"
	"github.com/jonathan/media-workflow/internal/server/ratelimit"
	"github.com/jonathan/media-workflow/internal/tracker"
)

// maxBodyBytes caps request bodies; pasted press releases are small
const maxBodyBytes = 1 << 20

// responseSlack is added to the longest /analyze path when deriving the write deadline
const responseSlack = 10 * time.Second

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	tracker     *tracker.Tracker
	gateway     *analysis.Gateway
	rateLimiter *ratelimit.Limiter
	fetchOpts   *fetch.Options
	logger      *slog.Logger
	now         func() time.Time
}

// Config holds server configuration
type Config struct {
	Port      int
	RateLimit *ratelimit.Config
	Logger    *slog.Logger
	// FetchOptions configures URL ingestion on /analyze
	FetchOptions *fetch.Options
	// AnalysisTimeout must match the gateway's timeout; zero means analysis.DefaultTimeout
	AnalysisTimeout time.Duration
	Now             func() time.Time
}

// writeTimeout covers the slowest /analyze request, a URL fetch followed by a full
// analysis, so the fallback suggestion is always written.
func writeTimeout(cfg Config) time.Duration {
	analysisTimeout := cfg.AnalysisTimeout
	if analysisTimeout <= 0 {
		analysisTimeout = analysis.DefaultTimeout
	}

	fetchTimeout := fetch.DefaultTimeout
	if opts := cfg.FetchOptions; opts != nil {
		switch {
		case opts.Client != nil:
			fetchTimeout = opts.Client.Timeout
		case opts.Timeout > 0:
			fetchTimeout = opts.Timeout
		}
	}
	return fetchTimeout + analysisTimeout + responseSlack
}

// New creates a server over an open tracker and an analysis gateway
func New(cfg Config, t *tracker.Tracker, gateway *analysis.Gateway) *Server {
	s := &Server{
		tracker:     t,
		gateway:     gateway,
		rateLimiter: ratelimit.NewLimiter(cfg.RateLimit),
		fetchOpts:   cfg.FetchOptions,
		logger:      cfg.Logger,
		now:         cfg.Now,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: writeTimeout(cfg),
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the routed handler with every middleware applied
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /analyze", s.handleAnalyze)

	mux.HandleFunc("GET /items", s.handleListItems)
	mux.HandleFunc("POST /items", s.handleCreateItem)
	mux.HandleFunc("GET /items/{id}", s.handleGetItem)
	mux.HandleFunc("PATCH /items/{id}", s.handleEditItem)
	mux.HandleFunc("DELETE /items/{id}", s.handleDeleteItem)
	mux.HandleFunc("POST /items/{id}/transition", s.handleTransition)
	mux.HandleFunc("POST /items/{id}/formats/toggle", s.handleToggleFormat)

	mux.HandleFunc("GET /board", s.handleBoard)
	mux.HandleFunc("GET /export", s.handleExport)

	return s.withRateLimit(s.withLogging(s.withCORS(mux)))
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", s.httpServer.Addr, "analysis_configured", s.gateway.Configured())
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		s.rateLimiter.Stop()
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	s.rateLimiter.Stop()
	if err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit rejects clients over their limit with 429
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(clientID(r), r.URL.Path, r.Method)
		setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code for request logs
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
			"remote", r.RemoteAddr,
		)
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":              "ok",
		"analysis_configured": s.gateway.Configured(),
	})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", "error", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// decodeJSON reads a size-limited JSON body into v
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &ErrBadRequest{Message: "invalid request body: " + err.Error()}
	}
	return nil
}

// clientID identifies the caller by IP address
func clientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}
	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Seconds()) + 1
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	s.logger.Warn("rate limit exceeded", "limit", info.Limit, "retry_after", info.RetryAfter)
	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
