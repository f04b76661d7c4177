// Package http exposes the operational endpoints served while a pipeline
// run is in flight: liveness, run status, and Prometheus metrics.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RunState describes where the current invocation is in its lifecycle.
type RunState string

const (
	StateIdle    RunState = "idle"
	StateRunning RunState = "running"
	StateDone    RunState = "done"
	StateFailed  RunState = "failed"
)

// Status is the JSON payload served at /statusz.
type Status struct {
	State     RunState `json:"state"`
	Fetched   int      `json:"fetched"`
	Kept      int      `json:"kept"`
	Discarded int      `json:"discarded"`
	Error     string   `json:"error,omitempty"`
}

// StatusTracker holds the current run status for the status endpoint.
type StatusTracker struct {
	mu     sync.RWMutex
	status Status
}

// NewStatusTracker creates a tracker in the idle state.
func NewStatusTracker() *StatusTracker {
	return &StatusTracker{status: Status{State: StateIdle}}
}

// Set replaces the current status.
func (t *StatusTracker) Set(s Status) {
	t.mu.Lock()
	t.status = s
	t.mu.Unlock()
}

// Get returns the current status.
func (t *StatusTracker) Get() Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}

// Server exposes health, status, and metrics HTTP endpoints.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /statusz, and /metrics
// routes.
func NewServer(addr string, tracker *StatusTracker, logger *slog.Logger) *Server {
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

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /statusz", handleStatus(tracker))
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

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleStatus(tracker *StatusTracker) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		status := tracker.Get()
		code := http.StatusOK
		if status.State == StateFailed {
			code = http.StatusInternalServerError
		}
		writeJSON(w, code, status)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort health response
}
