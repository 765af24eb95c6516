package fundamental

import (
	"errors"
	"fmt"
	"math"

	"investiq/internal/types"
)

// Weights are the per-metric contributions to the fundamental score.
type Weights struct {
	RevenueGrowth float64 `yaml:"revenue_growth"`
	ProfitMargin  float64 `yaml:"profit_margin"`
	PERatio       float64 `yaml:"pe_ratio"`
	DebtToEquity  float64 `yaml:"debt_to_equity"`
	ROE           float64 `yaml:"roe"`
}

func (w Weights) Sum() float64 {
	return w.RevenueGrowth + w.ProfitMargin + w.PERatio + w.DebtToEquity + w.ROE
}

// For returns the weight of a named metric, 0 for unknown names.
func (w Weights) For(metric string) float64 {
	switch metric {
	case types.MetricRevenueGrowth:
		return w.RevenueGrowth
	case types.MetricProfitMargin:
		return w.ProfitMargin
	case types.MetricPERatio:
		return w.PERatio
	case types.MetricDebtToEquity:
		return w.DebtToEquity
	case types.MetricROE:
		return w.ROE
	}
	return 0
}

// BiasThresholds are the minimum scores for each bias tier.
type BiasThresholds struct {
	Bullish         float64 `yaml:"bullish"`
	SlightlyBullish float64 `yaml:"slightly_bullish"`
	Neutral         float64 `yaml:"neutral"`
	SlightlyBearish float64 `yaml:"slightly_bearish"`
}

type Config struct {
	Weights Weights        `yaml:"weights"`
	Bias    BiasThresholds `yaml:"bias"`
}

func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			RevenueGrowth: 0.25,
			ProfitMargin:  0.25,
			PERatio:       0.20,
			DebtToEquity:  0.15,
			ROE:           0.15,
		},
		Bias: BiasThresholds{
			Bullish:         75,
			SlightlyBullish: 60,
			Neutral:         45,
			SlightlyBearish: 30,
		},
	}
}

func (c Config) Validate() error {
	if math.Abs(c.Weights.Sum()-1.0) > 1e-6 {
		return fmt.Errorf("fundamental weights must sum to 1.0, got %.4f", c.Weights.Sum())
	}
	b := c.Bias
	if !(b.Bullish >= b.SlightlyBullish && b.SlightlyBullish >= b.Neutral && b.Neutral >= b.SlightlyBearish) {
		return errors.New("fundamental bias thresholds must be descending")
	}
	return nil
}
