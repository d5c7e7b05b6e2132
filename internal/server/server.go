// Package server exposes the router and the reporter over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"agenticerp/internal/logging"
	"agenticerp/internal/metrics"
	"agenticerp/internal/reports"
	"agenticerp/internal/router"

	"github.com/gorilla/mux"
)

// Router answers free-text requests.
type Router interface {
	Route(ctx context.Context, text string) (router.Response, error)
}

// Reporter builds reports.
type Reporter interface {
	Build(ctx context.Context, kind reports.Kind) reports.Result
	BuildAll(ctx context.Context, kinds ...reports.Kind) []reports.Result
}

// TableLister lists store tables. It doubles as the health check.
type TableLister interface {
	ListTables(ctx context.Context) ([]string, error)
}

// Deps are the components served by the API.
type Deps struct {
	Router   Router
	Reports  Reporter
	Tables   TableLister
	Metrics  http.Handler
	Shutdown time.Duration
}

// Server is the HTTP API.
type Server struct {
	deps    Deps
	handler http.Handler
	srv     *http.Server
}

const apiPrefix = "/api/v1"

// New builds the server and its routes.
func New(addr string, deps Deps) *Server {
	if deps.Metrics == nil {
		deps.Metrics = metrics.Handler()
	}
	if deps.Shutdown <= 0 {
		deps.Shutdown = 10 * time.Second
	}

	s := &Server{deps: deps}

	r := mux.NewRouter()
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)

	// Method mismatches answer 405 only for routes on the root router
	r.HandleFunc(apiPrefix+"/route", s.handleRoute).Methods(http.MethodPost)
	r.HandleFunc(apiPrefix+"/ask", s.handleAsk).Methods(http.MethodPost)
	r.HandleFunc(apiPrefix+"/reports/{kind}", s.handleReport).Methods(http.MethodGet)
	r.HandleFunc(apiPrefix+"/tables", s.handleTables).Methods(http.MethodGet)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", deps.Metrics).Methods(http.MethodGet)

	s.handler = r
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler { return s.handler }

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.srv.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		logging.Server("Listening on %s", ln.Addr())
		errCh <- s.srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logging.Server("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.deps.Shutdown)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
