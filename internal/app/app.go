// Package app wires configuration, the dataset and the pipeline services
// together for the server, the CLI and the MCP tool.
package app

import (
	"context"
	"io"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/plot/vg"

	"iipviz/internal/cache"
	"iipviz/internal/chart"
	"iipviz/internal/config"
	"iipviz/internal/logging"
	"iipviz/internal/repository"
	"iipviz/internal/service"
)

// App holds the loaded dataset and the services built on it
type App struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Dataset *repository.Dataset
	Service *service.VisualizeService

	cache cache.Client
}

// New loads configuration and the dataset and builds the pipeline. Logs go
// to logOut; the MCP tool passes stderr because stdout carries the protocol.
func New(ctx context.Context, serviceName string, logOut io.Writer) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return NewFromConfig(ctx, cfg, serviceName, logOut)
}

// NewFromConfig builds the pipeline from an already loaded configuration
func NewFromConfig(ctx context.Context, cfg *config.Config, serviceName string, logOut io.Writer) (*App, error) {
	logger := logging.NewWithWriter(cfg.Logging, serviceName, logOut)

	lex, err := config.LoadLexicon(cfg.LexiconPath)
	if err != nil {
		return nil, err
	}

	src, err := repository.NewSource(cfg, lex)
	if err != nil {
		return nil, err
	}
	if closer, ok := src.(io.Closer); ok {
		defer closer.Close()
	}

	start := time.Now()
	dataset, err := repository.Load(ctx, src)
	if err != nil {
		return nil, err
	}
	logger.Info().
		Str("source", src.Describe()).
		Int("records", dataset.Len()).
		Int("provinces", len(dataset.Provinces())).
		Str("fingerprint", dataset.Fingerprint()).
		Dur("took", time.Since(start)).
		Msg("✅ Dataset loaded")

	c, err := cache.New(cfg.Redis)
	if err != nil {
		// extraction still works without a cache, only slower
		logger.Warn().Err(err).Msg("⚠️  Redis unavailable, using in-memory extraction cache")
		c = cache.NewMemoryClient(0)
	}

	ai := service.NewOpenAIClient(&cfg.OpenAI, logger)
	if ai.IsEnabled() {
		logger.Info().
			Str("api_base", cfg.OpenAI.APIBase).
			Str("model", cfg.OpenAI.ChatModel).
			Dur("timeout", cfg.Extraction.Timeout).
			Msg("✅ Completion client initialized")
	} else {
		logger.Warn().Msg("⚠️  OPENAI_API_KEY not set, queries are parsed by the local heuristic only")
	}

	gazetteer := dataset.Gazetteer()
	extractor := service.NewIntentExtractor(
		ai,
		c,
		service.NewHeuristic(gazetteer, lex),
		gazetteer,
		service.ExtractorOptions{
			Timeout:     cfg.Extraction.Timeout,
			CacheTTL:    cfg.Extraction.CacheTTL,
			Fingerprint: dataset.Fingerprint(),
		},
		logger,
	)

	opts := chart.DefaultOptions()
	opts.MaxItems = cfg.Chart.MaxItems
	opts.DualMaxItems = cfg.Chart.DualMaxItems
	opts.Width = vg.Length(cfg.Chart.WidthInch) * vg.Inch
	opts.Height = vg.Length(cfg.Chart.HeightInch) * vg.Inch

	svc := service.NewVisualizeService(
		dataset,
		extractor,
		service.NewFilterEngine(lex),
		chart.NewDispatcher(opts),
		logger,
	)

	return &App{
		Config:  cfg,
		Logger:  logger,
		Dataset: dataset,
		Service: svc,
		cache:   c,
	}, nil
}

// Close releases the extraction cache
func (a *App) Close() error {
	if a.cache == nil {
		return nil
	}
	return a.cache.Close()
}
