package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"investiq/internal/interfaces"
	"investiq/internal/logger"
	"investiq/internal/metrics"
	"investiq/internal/types"
)

const ServiceName = "InvestIQ"

// Recorder receives every decision the API produces.
type Recorder interface {
	Record(ctx context.Context, source string, d *types.Decision) error
}

type Config struct {
	Host           string
	Port           int
	RequestTimeout time.Duration
}

func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Server exposes the decision engine over HTTP.
type Server struct {
	cfg      Config
	engine   interfaces.DecisionEngine
	metrics  *metrics.Registry
	recorder Recorder
	router   *mux.Router
	http     *http.Server
	now      func() time.Time
}

// New builds the router. m and rec may be nil.
func New(cfg Config, engine interfaces.DecisionEngine, m *metrics.Registry, rec Recorder) *Server {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}
	s := &Server{
		cfg:      cfg,
		engine:   engine,
		metrics:  m,
		recorder: rec,
		router:   mux.NewRouter(),
		now:      time.Now,
	}
	s.setupRoutes()
	s.http = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) setupRoutes() {
	s.router.Use(s.requestIDMiddleware)
	s.router.Use(s.requestLoggingMiddleware)
	s.router.Use(s.timeoutMiddleware)

	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}

	api := s.router.PathPrefix("/").Subrouter()
	api.Use(jsonContentTypeMiddleware)
	api.HandleFunc("/analyze", s.handleAnalyze).Methods(http.MethodPost)
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
}

type analyzeRequest struct {
	Symbol string `json:"symbol"`
}

type analyzeResponse struct {
	Success   bool            `json:"success"`
	Decision  *types.Decision `json:"decision,omitempty"`
	Error     string          `json:"error,omitempty"`
	Timestamp string          `json:"timestamp"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Debug(ctx, "Rejected analyze request body", "error", err)
	}
	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if symbol == "" {
		writeJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "Stock symbol is required"})
		return
	}

	d, err := s.engine.Analyze(ctx, symbol)
	stamp := s.now().UTC().Format(time.RFC3339)
	if err != nil {
		logger.ErrorWithErr(ctx, "Analysis failed", err, "symbol", symbol)
		writeJSON(ctx, w, http.StatusInternalServerError, analyzeResponse{Error: err.Error(), Timestamp: stamp})
		return
	}
	if d == nil {
		writeJSON(ctx, w, http.StatusInternalServerError, analyzeResponse{Error: "analysis produced no decision", Timestamp: stamp})
		return
	}

	if s.recorder != nil {
		if err := s.recorder.Record(ctx, "api", d); err != nil {
			logger.Warn(ctx, "Failed to journal decision", "symbol", symbol, "error", err)
		}
	}
	writeJSON(ctx, w, http.StatusOK, analyzeResponse{Success: true, Decision: d, Timestamp: stamp})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "healthy", "service": ServiceName})
}

func writeJSON(ctx context.Context, w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Warn(ctx, "Failed to write response", "error", err)
	}
}

// ListenAndServe runs until ctx is done, then drains in-flight requests for
// at most shutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "Starting HTTP server", "addr", s.cfg.Addr())
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info(context.Background(), "Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(logger.WithRequestID(r.Context(), id)))
	})
}

func (s *Server) requestLoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapper, r)

		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		s.metrics.CountHTTP(route, wrapper.statusCode)
		logger.Info(r.Context(), "HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapper.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"remote", r.RemoteAddr,
		)
	})
}

func (s *Server) timeoutMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
		defer cancel()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func jsonContentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// responseWrapper captures the status code for logging.
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
