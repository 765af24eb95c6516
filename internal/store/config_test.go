package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"investiq/internal/types"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Expected defaults, got error: %v", err)
	}
	if cfg.Server.Port != 5000 {
		t.Errorf("Expected port 5000, got %d", cfg.Server.Port)
	}
	if cfg.Decision.Weights.Fundamental != 0.30 {
		t.Errorf("Expected fundamental weight 0.30, got %v", cfg.Decision.Weights.Fundamental)
	}
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
market_data:
  provider: MOCK
  news_provider: MOCK
  cache:
    backend: FILE
    dir: /tmp/investiq-cache
    ttl_minutes: 5
technical:
  period: 6mo
  rsi_period: 10
server:
  port: 8080
journal:
  enabled: true
  dir: audit
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.MarketData.Provider != "MOCK" {
		t.Errorf("Expected provider MOCK, got %s", cfg.MarketData.Provider)
	}
	if cfg.Technical.Period != types.Period6M || cfg.Technical.RSIPeriod != 10 {
		t.Errorf("Expected technical overrides, got %+v", cfg.Technical)
	}
	if cfg.Technical.LongMA != 50 {
		t.Errorf("Expected untouched default LongMA 50, got %d", cfg.Technical.LongMA)
	}
	if cfg.Server.Port != 8080 || !cfg.Journal.Enabled || cfg.Journal.Dir != "audit" {
		t.Errorf("Expected server and journal overrides, got %+v %+v", cfg.Server, cfg.Journal)
	}
	if cfg.MarketData.RateLimit.Burst != 4 {
		t.Errorf("Expected default burst 4, got %d", cfg.MarketData.RateLimit.Burst)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad provider", "market_data:\n  provider: NOPE\n"},
		{"weights do not sum", "decision:\n  weights:\n    fundamental: 0.5\n"},
		{"fundamental weights do not sum", "fundamental:\n  weights:\n    roe: 0.5\n"},
		{"bad period", "risk:\n  period: 10y\n"},
		{"bad port", "server:\n  port: 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			if err == nil {
				t.Fatalf("Expected validation error")
			}
			if !strings.Contains(err.Error(), "config validation failed") {
				t.Errorf("Expected wrapped validation error, got %v", err)
			}
		})
	}
}

func TestLoadConfigBadYAML(t *testing.T) {
	if _, err := LoadConfig(writeConfig(t, "server: [unterminated")); err == nil {
		t.Error("Expected parse error")
	}
}

func TestSetPeriod(t *testing.T) {
	cfg := Default()
	cfg.SetPeriod(types.Period2Y)
	if cfg.Technical.Period != types.Period2Y || cfg.Risk.Period != types.Period2Y {
		t.Errorf("Expected both analysts on 2y, got %s/%s", cfg.Technical.Period, cfg.Risk.Period)
	}
}
