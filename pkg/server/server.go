// Package server exposes the powerset pipeline as a JSON HTTP API.
//
// Routes:
//
//	GET  /health    liveness probe
//	POST /convert   body: automaton definition, response: {"nfa": ..., "dfa": ...}
//	POST /minimize  same, with the DFA minimized
//	GET  /metrics   Prometheus metrics (when a gatherer is configured)
//
// Failures are answered with {"error": "...", "code": "..."} and a status
// derived from the error code.
package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/powerset/pkg/automaton"
	"github.com/matzehuels/powerset/pkg/errors"
	"github.com/matzehuels/powerset/pkg/pipeline"
)

// DefaultMaxBodyBytes bounds request bodies.
const DefaultMaxBodyBytes = 1 << 20

// Server handles HTTP requests by running them through a pipeline.Runner.
type Server struct {
	runner    *pipeline.Runner
	logger    *log.Logger
	maxStates int
	maxBody   int64
	gatherer  prometheus.Gatherer
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger. Defaults to the runner's logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithMaxStates sets the NFA state limit applied to every request.
func WithMaxStates(n int) Option {
	return func(s *Server) { s.maxStates = n }
}

// WithMaxBodyBytes sets the request body limit.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) { s.maxBody = n }
}

// WithMetrics serves g on /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// New creates a server around runner.
func New(runner *pipeline.Runner, opts ...Option) *Server {
	s := &Server{
		runner:    runner,
		logger:    runner.Logger,
		maxStates: pipeline.DefaultMaxStates,
		maxBody:   DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.health)
	r.Post("/convert", s.transform(pipeline.OpConvert))
	r.Post("/minimize", s.transform(pipeline.OpMinimize))
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			srv.Close()
			return err
		}
		return nil
	}
}

// Response is the body of a successful transform request.
type Response struct {
	NFA automaton.Def `json:"nfa"`
	DFA automaton.Def `json:"dfa"`
}

// ErrorResponse is the body of a failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, "Server is running")
}

func (s *Server) transform(op string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		def, err := s.decode(w, r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		res, err := s.runner.Execute(r.Context(), pipeline.Options{
			Operation: op,
			Def:       def,
			MaxStates: s.maxStates,
			Logger:    loggerFromContext(r.Context(), s.logger),
		})
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		s.writeJSON(w, r, http.StatusOK, Response{
			NFA: automaton.ToDef(res.NFA),
			DFA: automaton.ToDef(res.DFA),
		})
	}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request) (automaton.Def, error) {
	var def automaton.Def
	body := http.MaxBytesReader(w, r.Body, s.maxBody)
	if err := json.NewDecoder(body).Decode(&def); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return def, errors.New(errors.ErrCodeTooLarge, "request body exceeds %d bytes", tooLarge.Limit)
		}
		return def, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body")
	}
	return def, nil
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	logger := loggerFromContext(r.Context(), s.logger)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "error", err)
	} else {
		logger.Debug("request rejected", "error", err)
	}
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	s.writeJSON(w, r, status, ErrorResponse{
		Error: errors.UserMessage(err),
		Code:  string(code),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		loggerFromContext(r.Context(), s.logger).Error("encode response", "error", err)
	}
}
