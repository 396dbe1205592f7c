// Package server exposes the vocabulary over HTTP.
//
//	srv, err := server.New(deps)
//	err = srv.Run(ctx) // blocks until ctx is cancelled
//
// Handlers only read the word bank, so the server needs no locking.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/NivBraz/wordcheck-service/internal/config"
	"github.com/NivBraz/wordcheck-service/internal/logging"
	"github.com/NivBraz/wordcheck-service/internal/metrics"
)

// Vocabulary is the read-only view of the word bank the handlers need.
type Vocabulary interface {
	Contains(word string) bool
	Words() []string
	Len() int
}

// Deps holds what the server is built from.
type Deps struct {
	Config     config.ServerConfig
	Logger     *logging.Logger
	Vocabulary Vocabulary
	Metrics    *metrics.Metrics
	// Gatherer backs /metrics. Nil uses the default gatherer.
	Gatherer prometheus.Gatherer
}

type Server struct {
	cfg      config.ServerConfig
	logger   *logging.Logger
	vocab    Vocabulary
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	handler  http.Handler
}

func New(deps Deps) (*Server, error) {
	if deps.Vocabulary == nil {
		return nil, fmt.Errorf("vocabulary is required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}

	s := &Server{
		cfg:      deps.Config,
		logger:   deps.Logger.With("component", "server"),
		vocab:    deps.Vocabulary,
		metrics:  deps.Metrics,
		gatherer: deps.Gatherer,
	}
	s.handler = s.buildRouter()
	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run listens on the configured address and serves until ctx is cancelled,
// then drains in-flight requests for up to the shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener. It closes ln.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadTimeout:       time.Duration(s.cfg.ReadTimeout) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.ReadTimeout) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.WriteTimeout) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.IdleTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "address", ln.Addr().String(), "words", s.vocab.Len())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	timeout := time.Duration(s.cfg.ShutdownTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}
