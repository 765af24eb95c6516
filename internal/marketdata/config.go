package marketdata

import (
	"errors"
	"fmt"

	"investiq/internal/news"
)

const (
	ProviderYahoo = "YAHOO"
	ProviderKite  = "KITE"
	ProviderMock  = "MOCK"

	NewsYahoo   = "YAHOO"
	NewsFinnhub = "FINNHUB"
	NewsScrape  = "SCRAPE"
	NewsMock    = "MOCK"

	CacheNone  = "NONE"
	CacheFile  = "FILE"
	CacheRedis = "REDIS"
)

type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

type BreakerConfig struct {
	ConsecutiveFailures uint32 `yaml:"consecutive_failures"`
	OpenSeconds         int    `yaml:"open_seconds"`
	IntervalSeconds     int    `yaml:"interval_seconds"`
	HalfOpenRequests    uint32 `yaml:"half_open_requests"`
}

type CacheConfig struct {
	Backend    string `yaml:"backend"`
	Dir        string `yaml:"dir"`
	TTLMinutes int    `yaml:"ttl_minutes"`
	RedisAddr  string `yaml:"redis_addr"`
	RedisDB    int    `yaml:"redis_db"`
	KeyPrefix  string `yaml:"key_prefix"`
}

type Config struct {
	Provider              string             `yaml:"provider"`
	NewsProvider          string             `yaml:"news_provider"`
	Exchange              string             `yaml:"exchange"`
	YahooBaseURL          string             `yaml:"yahoo_base_url"`
	FinnhubBaseURL        string             `yaml:"finnhub_base_url"`
	FinnhubAPIKeyEnv      string             `yaml:"finnhub_api_key_env"`
	NewsLookbackDays      int                `yaml:"news_lookback_days"`
	RequestTimeoutSeconds int                `yaml:"request_timeout_seconds"`
	RateLimit             RateLimitConfig    `yaml:"rate_limit"`
	Breaker               BreakerConfig      `yaml:"breaker"`
	Cache                 CacheConfig        `yaml:"cache"`
	Scraper               news.ScraperConfig `yaml:"scraper"`
	NewsCache             news.ServiceConfig `yaml:"news_cache"`
}

func DefaultConfig() Config {
	return Config{
		Provider:              ProviderYahoo,
		NewsProvider:          NewsYahoo,
		Exchange:              "NSE",
		YahooBaseURL:          "https://query2.finance.yahoo.com",
		FinnhubBaseURL:        "https://finnhub.io/api/v1",
		FinnhubAPIKeyEnv:      "FINNHUB_API_KEY",
		NewsLookbackDays:      7,
		RequestTimeoutSeconds: 30,
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 2,
			Burst:             4,
		},
		Breaker: BreakerConfig{
			ConsecutiveFailures: 3,
			OpenSeconds:         60,
			IntervalSeconds:     60,
			HalfOpenRequests:    1,
		},
		Cache: CacheConfig{
			Backend:    CacheNone,
			Dir:        "cache/marketdata",
			TTLMinutes: 15,
			RedisAddr:  "localhost:6379",
			KeyPrefix:  "investiq:",
		},
		Scraper:   news.DefaultScraperConfig(),
		NewsCache: news.DefaultServiceConfig(),
	}
}

func (c Config) Validate() error {
	switch c.Provider {
	case ProviderYahoo, ProviderKite, ProviderMock:
	default:
		return fmt.Errorf("invalid market_data.provider '%s': must be YAHOO, KITE or MOCK", c.Provider)
	}
	switch c.NewsProvider {
	case NewsYahoo, NewsFinnhub, NewsScrape, NewsMock:
	default:
		return fmt.Errorf("invalid market_data.news_provider '%s': must be YAHOO, FINNHUB, SCRAPE or MOCK", c.NewsProvider)
	}
	switch c.Cache.Backend {
	case CacheNone, CacheFile, CacheRedis:
	default:
		return fmt.Errorf("invalid market_data.cache.backend '%s': must be NONE, FILE or REDIS", c.Cache.Backend)
	}
	if c.Provider == ProviderKite && c.Exchange == "" {
		return errors.New("market_data.exchange is required for the KITE provider")
	}
	if c.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("market_data.request_timeout_seconds must be positive, got %d", c.RequestTimeoutSeconds)
	}
	if c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0 {
		return errors.New("market_data.rate_limit requires positive requests_per_second and burst")
	}
	if c.Breaker.ConsecutiveFailures == 0 {
		return errors.New("market_data.breaker.consecutive_failures must be at least 1")
	}
	if c.Cache.Backend != CacheNone && c.Cache.TTLMinutes <= 0 {
		return fmt.Errorf("market_data.cache.ttl_minutes must be positive, got %d", c.Cache.TTLMinutes)
	}
	return nil
}
