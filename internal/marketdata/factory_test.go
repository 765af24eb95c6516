package marketdata

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"investiq/internal/metrics"
	"investiq/internal/types"
)

func mockConfig() Config {
	cfg := DefaultConfig()
	cfg.Provider = ProviderMock
	cfg.NewsProvider = NewsMock
	return cfg
}

func TestBuildMockStack(t *testing.T) {
	cfg := mockConfig()
	cfg.Cache.Backend = CacheFile
	cfg.Cache.Dir = t.TempDir()

	md, closeFn, err := Build(context.Background(), cfg, Secrets{}, metrics.New())
	require.NoError(t, err)
	defer func() { _ = closeFn() }()

	candles, err := md.PriceHistory(context.Background(), "ACME", types.Period1Y)
	require.NoError(t, err)
	assert.NotEmpty(t, candles)

	items, err := md.RecentNews(context.Background(), "ACME")
	require.NoError(t, err)
	assert.NotEmpty(t, items)
}

func TestBuildRequiresSecrets(t *testing.T) {
	cfg := mockConfig()
	cfg.Provider = ProviderKite
	_, _, err := Build(context.Background(), cfg, Secrets{}, nil)
	assert.Error(t, err)

	cfg = mockConfig()
	cfg.NewsProvider = NewsFinnhub
	_, _, err = Build(context.Background(), cfg, Secrets{}, nil)
	assert.Error(t, err)
}

func TestSecretsFromEnv(t *testing.T) {
	t.Setenv("KITE_API_KEY", "k")
	t.Setenv("KITE_ACCESS_TOKEN", "tok")
	t.Setenv("MY_FINNHUB", "f")

	cfg := DefaultConfig()
	cfg.FinnhubAPIKeyEnv = "MY_FINNHUB"
	s := SecretsFromEnv(cfg)
	assert.Equal(t, Secrets{KiteAPIKey: "k", KiteAccessToken: "tok", FinnhubAPIKey: "f"}, s)
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad provider", func(c *Config) { c.Provider = "BLOOMBERG" }},
		{"bad news provider", func(c *Config) { c.NewsProvider = "TWITTER" }},
		{"bad cache backend", func(c *Config) { c.Cache.Backend = "MEMCACHED" }},
		{"kite without exchange", func(c *Config) { c.Provider = ProviderKite; c.Exchange = "" }},
		{"zero timeout", func(c *Config) { c.RequestTimeoutSeconds = 0 }},
		{"zero burst", func(c *Config) { c.RateLimit.Burst = 0 }},
		{"zero breaker threshold", func(c *Config) { c.Breaker.ConsecutiveFailures = 0 }},
		{"cache without ttl", func(c *Config) { c.Cache.Backend = CacheFile; c.Cache.TTLMinutes = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("Expected validation error for %s", tt.name)
			}
		})
	}
}
