package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"investiq/internal/analysts/analystobs"
	"investiq/internal/analysts/fundamental"
	"investiq/internal/analysts/risk"
	"investiq/internal/analysts/sentiment"
	"investiq/internal/analysts/technical"
	"investiq/internal/decision"
	"investiq/internal/decision/decisionobs"
	"investiq/internal/interfaces"
	"investiq/internal/journal"
	"investiq/internal/logger"
	"investiq/internal/marketdata"
	"investiq/internal/marketdata/marketdataobs"
	"investiq/internal/metrics"
	"investiq/internal/news"
	"investiq/internal/server"
	"investiq/internal/store"
	"investiq/internal/trace"
	"investiq/internal/types"
)

// pipeline is everything a command needs to analyze symbols.
type pipeline struct {
	cfg     *store.Config
	engine  interfaces.DecisionEngine
	metrics *metrics.Registry
	journal *journal.Journal
	close   func() error
}

// initializeSystem loads .env and sets up logging and tracing.
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}
	return nil
}

// configPath prefers the flag, then INVESTIQ_CONFIG, then config.yaml.
func configPath(flag string) string {
	if flag != "" {
		return flag
	}
	if v := os.Getenv("INVESTIQ_CONFIG"); v != "" {
		return v
	}
	return "config.yaml"
}

// loadConfig reads the config file and applies command line overrides.
func loadConfig(ctx context.Context, opts *globalOptions) (*store.Config, error) {
	cfg, err := store.LoadConfig(configPath(opts.configFile))
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err)
		return nil, err
	}

	overridden := false
	if opts.period != "" {
		p, err := types.ParsePeriod(opts.period)
		if err != nil {
			return nil, fmt.Errorf("invalid --period: %w", err)
		}
		cfg.SetPeriod(p)
		overridden = true
	}
	if opts.provider != "" {
		cfg.MarketData.Provider = strings.ToUpper(opts.provider)
		// MOCK runs fully offline, news included.
		if cfg.MarketData.Provider == marketdata.ProviderMock {
			cfg.MarketData.NewsProvider = marketdata.NewsMock
		}
		overridden = true
	}
	if overridden {
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("config validation failed: %w", err)
		}
	}
	return cfg, nil
}

// initializeMarketData builds the configured providers behind the cache,
// limiter and breaker layers, wrapped with observability.
func initializeMarketData(ctx context.Context, cfg *store.Config, m *metrics.Registry) (interfaces.MarketData, func() error, error) {
	md, closeFn, err := marketdata.Build(ctx, cfg.MarketData, marketdata.SecretsFromEnv(cfg.MarketData), m)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build market data: %w", err)
	}
	if cfg.MarketData.Provider == marketdata.ProviderMock {
		logger.Warn(ctx, "Using MOCK market data - results are synthetic")
	} else {
		logger.Info(ctx, "Market data ready", "provider", cfg.MarketData.Provider, "news", cfg.MarketData.NewsProvider)
	}
	return marketdataobs.Wrap(md, m), closeFn, nil
}

// initializeEngine builds the four analysts and the decision engine, each
// wrapped with observability.
func initializeEngine(cfg *store.Config, md interfaces.MarketData, m *metrics.Registry) interfaces.DecisionEngine {
	fund := analystobs.Wrap[*types.FundamentalResult](fundamental.New(md, cfg.Fundamental), m)
	sent := analystobs.Wrap[*types.SentimentResult](sentiment.New(md, news.NewPolarityScorer(), cfg.Sentiment), m)
	tech := analystobs.Wrap[*types.TechnicalResult](technical.New(md, cfg.Technical), m)
	rsk := analystobs.Wrap[*types.RiskResult](risk.New(md, cfg.Risk), m)

	return decisionobs.Wrap(decision.New(fund, sent, tech, rsk, cfg.Decision), m)
}

// initializeJournal returns nil when the journal is disabled. Old files are
// compressed on the way up.
func initializeJournal(ctx context.Context, cfg *store.Config) *journal.Journal {
	if !cfg.Journal.Enabled {
		return nil
	}
	j := journal.New(cfg.Journal.Dir)
	n, err := j.CompressOlder(cfg.Journal.RetentionDays)
	if err != nil {
		logger.Warn(ctx, "Failed to compress old journal files", "error", err)
	} else if n > 0 {
		logger.Info(ctx, "Compressed old journal files", "count", n)
	}
	return j
}

func buildPipeline(ctx context.Context, opts *globalOptions) (*pipeline, error) {
	cfg, err := loadConfig(ctx, opts)
	if err != nil {
		return nil, err
	}

	m := metrics.New()
	md, closeFn, err := initializeMarketData(ctx, cfg, m)
	if err != nil {
		return nil, err
	}

	return &pipeline{
		cfg:     cfg,
		engine:  initializeEngine(cfg, md, m),
		metrics: m,
		journal: initializeJournal(ctx, cfg),
		close:   closeFn,
	}, nil
}

// recorder hides a nil journal behind a nil interface.
func (p *pipeline) recorder() server.Recorder {
	if p.journal == nil {
		return nil
	}
	return p.journal
}

func (p *pipeline) shutdown(ctx context.Context) {
	if p.close != nil {
		if err := p.close(); err != nil {
			logger.Warn(ctx, "Failed to close market data", "error", err)
		}
	}
	if err := trace.Shutdown(ctx); err != nil {
		logger.Warn(ctx, "Failed to shut down tracer", "error", err)
	}
}
