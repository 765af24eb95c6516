package store

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"investiq/internal/analysts/fundamental"
	"investiq/internal/analysts/risk"
	"investiq/internal/analysts/sentiment"
	"investiq/internal/analysts/technical"
	"investiq/internal/decision"
	"investiq/internal/marketdata"
	"investiq/internal/types"
)

type Config struct {
	MarketData  marketdata.Config  `yaml:"market_data"`
	Fundamental fundamental.Config `yaml:"fundamental"`
	Sentiment   sentiment.Config   `yaml:"sentiment"`
	Technical   technical.Config   `yaml:"technical"`
	Risk        risk.Config        `yaml:"risk"`
	Decision    decision.Config    `yaml:"decision"`
	Server      struct {
		Host                   string `yaml:"host"`
		Port                   int    `yaml:"port"`
		RequestTimeoutSeconds  int    `yaml:"request_timeout_seconds"`
		ShutdownTimeoutSeconds int    `yaml:"shutdown_timeout_seconds"`
	} `yaml:"server"`
	Journal struct {
		Enabled       bool   `yaml:"enabled"`
		Dir           string `yaml:"dir"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"journal"`
}

// Default returns the built-in configuration used when no file is present
// and as the base that config.yaml is decoded onto.
func Default() *Config {
	c := &Config{
		MarketData:  marketdata.DefaultConfig(),
		Fundamental: fundamental.DefaultConfig(),
		Sentiment:   sentiment.DefaultConfig(),
		Technical:   technical.DefaultConfig(),
		Risk:        risk.DefaultConfig(),
		Decision:    decision.DefaultConfig(),
	}
	c.Server.Host = "0.0.0.0"
	c.Server.Port = 5000
	c.Server.RequestTimeoutSeconds = 60
	c.Server.ShutdownTimeoutSeconds = 10
	c.Journal.Dir = "logs"
	c.Journal.RetentionDays = 30
	return c
}

func (c *Config) Validate() error {
	if err := c.MarketData.Validate(); err != nil {
		return err
	}
	if err := c.Fundamental.Validate(); err != nil {
		return fmt.Errorf("fundamental: %w", err)
	}
	if err := c.Sentiment.Validate(); err != nil {
		return fmt.Errorf("sentiment: %w", err)
	}
	if err := c.Technical.Validate(); err != nil {
		return fmt.Errorf("technical: %w", err)
	}
	if err := c.Risk.Validate(); err != nil {
		return fmt.Errorf("risk: %w", err)
	}
	if err := c.Decision.Validate(); err != nil {
		return fmt.Errorf("decision: %w", err)
	}
	if _, err := types.ParsePeriod(string(c.Technical.Period)); err != nil {
		return fmt.Errorf("technical.period: %w", err)
	}
	if _, err := types.ParsePeriod(string(c.Risk.Period)); err != nil {
		return fmt.Errorf("risk.period: %w", err)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1-65535, got %d", c.Server.Port)
	}
	if c.Server.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("server.request_timeout_seconds must be positive, got %d", c.Server.RequestTimeoutSeconds)
	}
	if c.Journal.Enabled && c.Journal.Dir == "" {
		return errors.New("journal.dir cannot be empty when the journal is enabled")
	}
	return nil
}

// SetPeriod overrides the price history window of both price-driven analysts.
func (c *Config) SetPeriod(p types.Period) {
	c.Technical.Period = p
	c.Risk.Period = p
}

// LoadConfig decodes path over the defaults. A missing file yields the
// defaults; any other read or parse failure is an error.
func LoadConfig(path string) (*Config, error) {
	c := Default()

	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return c, nil
}
