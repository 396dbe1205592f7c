package app

import (
	"context"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/NivBraz/wordcheck-service/internal/config"
	"github.com/NivBraz/wordcheck-service/internal/logging"
	"github.com/NivBraz/wordcheck-service/internal/metrics"
	"github.com/NivBraz/wordcheck-service/internal/server"
	"github.com/NivBraz/wordcheck-service/pkg/wordbank"
)

// App represents the main application
type App struct {
	config   *config.Config
	logger   *logging.Logger
	wordBank *wordbank.WordBank
	server   *server.Server
}

// New loads the vocabulary and builds the HTTP server. It fails if the
// vocabulary cannot be loaded, so nothing is ever served from a partial list.
func New(ctx context.Context, cfg *config.Config, logger *logging.Logger, progress io.Writer) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	wb, err := LoadVocabulary(ctx, cfg, logger, progress)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.MustNewMetrics(reg)
	m.SetVocabularySize(wb.Len())

	srv, err := server.New(server.Deps{
		Config:     cfg.Server,
		Logger:     logger,
		Vocabulary: wb,
		Metrics:    m,
		Gatherer:   reg,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize server: %w", err)
	}

	return &App{
		config:   cfg,
		logger:   logger,
		wordBank: wb,
		server:   srv,
	}, nil
}

// Run serves until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	return a.server.Run(ctx)
}

// WordBank returns the loaded vocabulary.
func (a *App) WordBank() *wordbank.WordBank {
	return a.wordBank
}

// Server returns the HTTP server.
func (a *App) Server() *server.Server {
	return a.server
}
