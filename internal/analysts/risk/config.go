package risk

import (
	"errors"

	"investiq/internal/types"
)

const (
	StopMethodATR        = "atr"
	StopMethodVolatility = "volatility"
)

type Config struct {
	Period         types.Period `yaml:"period"`
	TradingDays    int          `yaml:"trading_days"`
	RecentWindow   int          `yaml:"recent_window"`
	RiskFreeRate   float64      `yaml:"risk_free_rate"`
	VaRPercentile  float64      `yaml:"var_percentile"`
	RewardLookback int          `yaml:"reward_lookback"`

	AccountSize    float64 `yaml:"account_size"`
	RiskPerTrade   float64 `yaml:"risk_per_trade"`
	MaxPositionPct float64 `yaml:"max_position_pct"`

	// StopMethod "volatility" scales the stop with volatility; anything
	// else uses DefaultStopPct.
	StopMethod      string  `yaml:"stop_method"`
	DefaultStopPct  float64 `yaml:"default_stop_pct"`
	VolatilityStops float64 `yaml:"volatility_stop_multiple"`

	// Minimum composite scores for each level.
	Levels struct {
		VeryHigh float64 `yaml:"very_high"`
		High     float64 `yaml:"high"`
		Moderate float64 `yaml:"moderate"`
		Low      float64 `yaml:"low"`
	} `yaml:"levels"`
}

func DefaultConfig() Config {
	cfg := Config{
		Period:          types.Period1Y,
		TradingDays:     252,
		RecentWindow:    30,
		RiskFreeRate:    0.02,
		VaRPercentile:   5,
		RewardLookback:  252,
		AccountSize:     10000,
		RiskPerTrade:    0.02,
		MaxPositionPct:  0.25,
		StopMethod:      StopMethodATR,
		DefaultStopPct:  0.05,
		VolatilityStops: 2,
	}
	cfg.Levels.VeryHigh = 70
	cfg.Levels.High = 55
	cfg.Levels.Moderate = 40
	cfg.Levels.Low = 25
	return cfg
}

func (c Config) Validate() error {
	if _, err := types.ParsePeriod(string(c.Period)); err != nil {
		return err
	}
	if c.TradingDays <= 0 || c.RecentWindow <= 1 || c.RewardLookback <= 1 {
		return errors.New("risk windows must be positive")
	}
	if c.VaRPercentile <= 0 || c.VaRPercentile >= 100 {
		return errors.New("risk.var_percentile must be within (0, 100)")
	}
	if c.AccountSize <= 0 || c.RiskPerTrade <= 0 || c.MaxPositionPct <= 0 {
		return errors.New("risk position sizing inputs must be positive")
	}
	return nil
}
