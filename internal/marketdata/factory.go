package marketdata

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"investiq/internal/interfaces"
	"investiq/internal/logger"
	"investiq/internal/metrics"
	"investiq/internal/news"
)

// Secrets are read from the environment, never from config.yaml.
type Secrets struct {
	KiteAPIKey      string
	KiteAccessToken string
	FinnhubAPIKey   string
}

func SecretsFromEnv(cfg Config) Secrets {
	keyEnv := cfg.FinnhubAPIKeyEnv
	if keyEnv == "" {
		keyEnv = "FINNHUB_API_KEY"
	}
	return Secrets{
		KiteAPIKey:      os.Getenv("KITE_API_KEY"),
		KiteAccessToken: os.Getenv("KITE_ACCESS_TOKEN"),
		FinnhubAPIKey:   os.Getenv(keyEnv),
	}
}

// Build assembles the configured sources behind the cache, rate limiter
// and breaker stack. The returned close func releases the cache backend.
func Build(ctx context.Context, cfg Config, secrets Secrets, m *metrics.Registry) (interfaces.MarketData, func() error, error) {
	timeout := time.Duration(cfg.RequestTimeoutSeconds) * time.Second
	closer := func() error { return nil }

	var (
		yahoo *Yahoo
		mock  *Mock
	)
	yahooClient := func() *Yahoo {
		if yahoo == nil {
			yahoo = NewYahoo(cfg.YahooBaseURL, timeout)
		}
		return yahoo
	}
	mockClient := func() *Mock {
		if mock == nil {
			mock = NewMock()
		}
		return mock
	}

	composite := &Composite{}
	upstreams := map[string]string{}

	switch cfg.Provider {
	case ProviderKite:
		if secrets.KiteAPIKey == "" || secrets.KiteAccessToken == "" {
			return nil, closer, errors.New("KITE_API_KEY and KITE_ACCESS_TOKEN are required for the KITE provider")
		}
		composite.Prices = NewKite(secrets.KiteAPIKey, secrets.KiteAccessToken, cfg.Exchange)
		composite.Fundamentals = yahooClient()
		upstreams[OpPriceHistory] = "kite"
		upstreams[OpCompanyInfo] = "yahoo"
		upstreams[OpFinancialStatements] = "yahoo"
	case ProviderMock:
		composite.Prices = mockClient()
		composite.Fundamentals = mockClient()
		upstreams[OpPriceHistory] = "mock"
		upstreams[OpCompanyInfo] = "mock"
		upstreams[OpFinancialStatements] = "mock"
	default:
		composite.Prices = yahooClient()
		composite.Fundamentals = yahooClient()
		upstreams[OpPriceHistory] = "yahoo"
		upstreams[OpCompanyInfo] = "yahoo"
		upstreams[OpFinancialStatements] = "yahoo"
	}

	var fallback interfaces.NewsSource
	switch cfg.NewsProvider {
	case NewsFinnhub:
		if secrets.FinnhubAPIKey == "" {
			return nil, closer, fmt.Errorf("%s is required for the FINNHUB news provider", cfg.FinnhubAPIKeyEnv)
		}
		composite.News = NewFinnhub(cfg.FinnhubBaseURL, secrets.FinnhubAPIKey, cfg.NewsLookbackDays, timeout)
		upstreams[OpRecentNews] = "finnhub"
		fallback = news.NewScraper(cfg.Scraper)
	case NewsScrape:
		composite.News = news.NewScraper(cfg.Scraper)
		upstreams[OpRecentNews] = "scrape"
	case NewsMock:
		composite.News = mockClient()
		upstreams[OpRecentNews] = "mock"
	default:
		composite.News = yahooClient()
		upstreams[OpRecentNews] = "yahoo"
		fallback = news.NewScraper(cfg.Scraper)
	}

	var cache interfaces.Cache
	switch cfg.Cache.Backend {
	case CacheFile:
		fc, err := NewFileCache(cfg.Cache.Dir)
		if err != nil {
			return nil, closer, err
		}
		if n, err := fc.CleanupExpired(); err == nil && n > 0 {
			logger.Debug(ctx, "Removed expired cache entries", "count", n)
		}
		cache = fc
	case CacheRedis:
		client, err := DialRedis(ctx, cfg.Cache.RedisAddr, cfg.Cache.RedisDB)
		if err != nil {
			return nil, closer, err
		}
		cache = NewRedisCache(client, cfg.Cache.KeyPrefix)
		closer = client.Close
	}

	resilient := NewResilient(composite, ResilientOptions{
		Cache:     cache,
		TTL:       time.Duration(cfg.Cache.TTLMinutes) * time.Minute,
		Limiters:  NewLimiters(cfg.RateLimit),
		Breakers:  NewBreakers(cfg.Breaker, m),
		Metrics:   m,
		Upstreams: upstreams,
	})

	logger.Info(ctx, "Market data configured",
		"provider", cfg.Provider,
		"news_provider", cfg.NewsProvider,
		"cache", cfg.Cache.Backend,
		"news_fallback", fallback != nil,
	)

	return &Composite{
		Prices:       resilient,
		Fundamentals: resilient,
		News:         news.NewService(resilient, fallback, cfg.NewsCache),
	}, closer, nil
}
