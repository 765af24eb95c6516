package technical

import (
	"errors"

	"investiq/internal/types"
)

type Config struct {
	Period        types.Period `yaml:"period"`
	ShortMA       int          `yaml:"short_ma"`
	LongMA        int          `yaml:"long_ma"`
	RSIPeriod     int          `yaml:"rsi_period"`
	MACDFast      int          `yaml:"macd_fast"`
	MACDSlow      int          `yaml:"macd_slow"`
	MACDSignal    int          `yaml:"macd_signal"`
	SRWindow      int          `yaml:"sr_window"`
	BreakoutBand  float64      `yaml:"breakout_band"`
	Overbought    float64      `yaml:"overbought"`
	Oversold      float64      `yaml:"oversold"`
	CautiousRSI   float64      `yaml:"cautious_rsi"`
	StrongTrend   float64      `yaml:"strong_trend_points"`
	WeakTrend     float64      `yaml:"weak_trend_points"`
	MACDCap       float64      `yaml:"macd_cap"`
	MACDScale     float64      `yaml:"macd_scale"`
	PositionRange float64      `yaml:"position_points"`
	Bias          struct {
		Bullish         float64 `yaml:"bullish"`
		SlightlyBullish float64 `yaml:"slightly_bullish"`
		Neutral         float64 `yaml:"neutral"`
		SlightlyBearish float64 `yaml:"slightly_bearish"`
	} `yaml:"bias"`
}

func DefaultConfig() Config {
	cfg := Config{
		Period:        types.Period1Y,
		ShortMA:       20,
		LongMA:        50,
		RSIPeriod:     14,
		MACDFast:      12,
		MACDSlow:      26,
		MACDSignal:    9,
		SRWindow:      20,
		BreakoutBand:  0.02,
		Overbought:    70,
		Oversold:      30,
		CautiousRSI:   65,
		StrongTrend:   20,
		WeakTrend:     10,
		MACDCap:       10,
		MACDScale:     100,
		PositionRange: 20,
	}
	cfg.Bias.Bullish = 70
	cfg.Bias.SlightlyBullish = 55
	cfg.Bias.Neutral = 45
	cfg.Bias.SlightlyBearish = 30
	return cfg
}

func (c Config) Validate() error {
	if _, err := types.ParsePeriod(string(c.Period)); err != nil {
		return err
	}
	if c.ShortMA <= 0 || c.LongMA <= c.ShortMA {
		return errors.New("technical moving averages must satisfy 0 < short_ma < long_ma")
	}
	if c.RSIPeriod <= 0 || c.SRWindow <= 0 {
		return errors.New("technical rsi_period and sr_window must be positive")
	}
	if c.MACDFast <= 0 || c.MACDSlow <= c.MACDFast || c.MACDSignal <= 0 {
		return errors.New("technical macd spans must satisfy 0 < fast < slow and signal > 0")
	}
	if c.Oversold >= c.Overbought {
		return errors.New("technical oversold must be below overbought")
	}
	return nil
}
