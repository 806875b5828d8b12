// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package server exposes the assistant over HTTP.
//
// Routes:
//
//	POST /chat     {"query": "..."} -> answer, source_tool, route, retrieved_context
//	GET  /healthz  liveness
//	GET  /metrics  Prometheus metrics
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/poiesic/intellicourse/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultShutdownTimeout bounds graceful shutdown.
const DefaultShutdownTimeout = 30 * time.Second

// MaxRequestBytes caps the size of a /chat request body.
const MaxRequestBytes = 64 << 10

// Asker answers a single question.
type Asker interface {
	Ask(ctx context.Context, query string) (*core.ConversationResult, error)
}

// Server serves the chat API.
type Server struct {
	asker           Asker
	metrics         *Metrics
	gatherer        prometheus.Gatherer
	shutdownTimeout time.Duration
	logger          *slog.Logger
	router          *mux.Router
}

// Option configures a Server.
type Option func(*Server) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithMetrics enables request metrics and serves gatherer on /metrics.
func WithMetrics(metrics *Metrics, gatherer prometheus.Gatherer) Option {
	return func(s *Server) error {
		s.metrics = metrics
		s.gatherer = gatherer
		return nil
	}
}

// WithShutdownTimeout sets how long in-flight requests get on shutdown.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) error {
		s.shutdownTimeout = d
		return nil
	}
}

// New creates a server for asker.
func New(asker Asker, opts ...Option) (*Server, error) {
	if asker == nil {
		return nil, errors.New("server: asker required")
	}

	s := &Server{
		asker:           asker,
		shutdownTimeout: DefaultShutdownTimeout,
		logger:          slog.Default().With("component", "server"),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	s.router = mux.NewRouter()
	s.router.HandleFunc("/chat", s.handleChat).Methods(http.MethodPost)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	if s.gatherer != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}
	if s.metrics != nil {
		s.router.Use(s.metrics.Middleware)
	}

	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("server exited")
	return nil
}

type chatRequest struct {
	Query string `json:"query"`
}

// contextSnippet is a catalog preview item; page is null when unknown.
type contextSnippet struct {
	Source  string    `json:"source"`
	Page    core.Page `json:"page"`
	Snippet string    `json:"snippet"`
}

type chatResponse struct {
	Answer           string           `json:"answer"`
	SourceTool       core.SourceTool  `json:"source_tool"`
	Route            core.Route       `json:"route"`
	RetrievedContext []contextSnippet `json:"retrieved_context"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	body := http.MaxBytesReader(w, r.Body, MaxRequestBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "request body too large"})
			return
		}
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	result, err := s.asker.Ask(r.Context(), req.Query)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			s.logger.Error("chat request failed", "err", err)
		}
		s.writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}

	s.writeJSON(w, http.StatusOK, newChatResponse(result))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// newChatResponse keeps the catalog preview only for catalog answers.
func newChatResponse(result *core.ConversationResult) chatResponse {
	resp := chatResponse{
		Answer:     result.Answer,
		SourceTool: result.SourceTool,
		Route:      result.Route,
	}
	if result.SourceTool == core.SourceCourseDB {
		resp.RetrievedContext = make([]contextSnippet, 0, len(result.Docs))
		for _, d := range result.Docs {
			resp.RetrievedContext = append(resp.RetrievedContext, contextSnippet(d))
		}
	}
	return resp
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrEmptyQuery):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrConfiguration):
		return http.StatusInternalServerError
	case errors.Is(err, core.ErrRouting), errors.Is(err, core.ErrRetrieval), errors.Is(err, core.ErrGeneration):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("error writing response", "err", err)
	}
}
