package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"investiq/internal/types"
)

func TestConfigPath(t *testing.T) {
	t.Setenv("INVESTIQ_CONFIG", "")
	assert.Equal(t, "config.yaml", configPath(""))

	t.Setenv("INVESTIQ_CONFIG", "/etc/investiq.yaml")
	assert.Equal(t, "/etc/investiq.yaml", configPath(""))
	assert.Equal(t, "custom.yaml", configPath("custom.yaml"))
}

func TestLoadConfigOverrides(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "none.yaml")

	cfg, err := loadConfig(context.Background(), &globalOptions{configFile: missing, period: "6MO", provider: "mock"})
	require.NoError(t, err)
	assert.Equal(t, types.Period6M, cfg.Technical.Period)
	assert.Equal(t, types.Period6M, cfg.Risk.Period)
	assert.Equal(t, "MOCK", cfg.MarketData.Provider)
	assert.Equal(t, "MOCK", cfg.MarketData.NewsProvider)

	_, err = loadConfig(context.Background(), &globalOptions{configFile: missing, period: "forever"})
	assert.Error(t, err)

	_, err = loadConfig(context.Background(), &globalOptions{configFile: missing, provider: "bloomberg"})
	assert.Error(t, err)
}

func TestBuildPipelineWithMockProvider(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "none.yaml")
	p, err := buildPipeline(context.Background(), &globalOptions{configFile: missing, provider: "MOCK"})
	require.NoError(t, err)
	defer p.shutdown(context.Background())

	assert.Nil(t, p.journal, "journal is disabled by default")
	assert.Nil(t, p.recorder())

	d, err := p.engine.Analyze(context.Background(), "ACME")
	require.NoError(t, err)
	assert.Equal(t, "ACME", d.Symbol)
	assert.Contains(t, []types.Recommendation{types.Buy, types.Hold, types.Sell, types.Avoid}, d.Recommendation)
}
