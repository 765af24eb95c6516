package sentiment

import (
	"errors"
)

type Config struct {
	LookbackDays int `yaml:"lookback_days"`
	MaxArticles  int `yaml:"max_articles"`
	// DeadZone separates positive and negative items from neutral ones.
	DeadZone       float64 `yaml:"dead_zone"`
	SpikeWindow    int     `yaml:"spike_window"`
	SpikeRecent    int     `yaml:"spike_recent"`
	SpikeThreshold float64 `yaml:"spike_threshold"`
	// Bias tiers on average polarity, strictly greater than.
	Bias struct {
		Bullish         float64 `yaml:"bullish"`
		SlightlyBullish float64 `yaml:"slightly_bullish"`
		Neutral         float64 `yaml:"neutral"`
		SlightlyBearish float64 `yaml:"slightly_bearish"`
	} `yaml:"bias"`
}

func DefaultConfig() Config {
	cfg := Config{
		LookbackDays:   7,
		MaxArticles:    20,
		DeadZone:       0.1,
		SpikeWindow:    5,
		SpikeRecent:    3,
		SpikeThreshold: 0.3,
	}
	cfg.Bias.Bullish = 0.3
	cfg.Bias.SlightlyBullish = 0.1
	cfg.Bias.Neutral = -0.1
	cfg.Bias.SlightlyBearish = -0.3
	return cfg
}

func (c Config) Validate() error {
	if c.LookbackDays <= 0 {
		return errors.New("sentiment.lookback_days must be positive")
	}
	if c.MaxArticles <= 0 {
		return errors.New("sentiment.max_articles must be positive")
	}
	if c.SpikeRecent <= 0 || c.SpikeWindow < c.SpikeRecent {
		return errors.New("sentiment.spike_window must be at least spike_recent")
	}
	return nil
}
