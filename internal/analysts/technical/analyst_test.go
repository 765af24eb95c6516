package technical

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"investiq/internal/types"
)

type stubPrices struct {
	candles []types.Candle
	err     error
}

func (s *stubPrices) PriceHistory(ctx context.Context, symbol string, period types.Period) ([]types.Candle, error) {
	return s.candles, s.err
}

// series builds daily candles with a one point high/low band around close.
func series(start, step float64, n int) []types.Candle {
	day := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]types.Candle, n)
	for i := range out {
		c := start + step*float64(i)
		out[i] = types.Candle{Date: day.AddDate(0, 0, i), Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 1000}
	}
	return out
}

func TestEvaluateUptrend(t *testing.T) {
	a := New(nil, DefaultConfig())
	res := a.Evaluate(series(100, 1, 60))

	ind := res.Indicators
	require.NotNil(t, ind)
	assert.Equal(t, types.TrendStrongUp, ind.Trend)
	assert.Equal(t, 100.0, float64(ind.RSI))
	assert.Equal(t, "Overbought", ind.OverboughtOversold)
	assert.Equal(t, 139.0, float64(ind.SupportResistance.Support))
	assert.Equal(t, 160.0, float64(ind.SupportResistance.Resistance))
	assert.InDelta(t, 149.5, float64(ind.MovingAverages["MA20"]), 1e-9)
	assert.InDelta(t, 134.5, float64(ind.MovingAverages["MA50"]), 1e-9)
	assert.True(t, ind.Breakout.Detected)
	assert.Equal(t, "upward", ind.Breakout.Direction)

	// 50 - 15 (overbought) + 20 (trend) + 6.20 (macd) + 9.05 (position)
	assert.InDelta(t, 70.25, res.Score, 1e-9)
	assert.Equal(t, types.BiasBullish, res.Bias)
	assert.Equal(t, []string{
		"Price above 50-day MA",
		"RSI = 100.0 (Overbought)",
		"Potential resistance_breakout detected",
	}, res.Insights)
}

func TestEvaluateDowntrend(t *testing.T) {
	a := New(nil, DefaultConfig())
	res := a.Evaluate(series(200, -1, 60))

	assert.Equal(t, types.TrendStrongDown, res.Indicators.Trend)
	assert.Equal(t, "Oversold", res.Indicators.OverboughtOversold)
	assert.InDelta(t, 29.75, res.Score, 1e-9)
	assert.Equal(t, types.BiasBearish, res.Bias)
	assert.Equal(t, []string{
		"Price below 50-day MA",
		"RSI = 0.0 (Oversold)",
		"Potential support_breakdown detected",
	}, res.Insights)
}

func TestEvaluateShortHistory(t *testing.T) {
	a := New(nil, DefaultConfig())
	res := a.Evaluate(series(50, 0, 10))

	assert.Equal(t, types.TrendUnknown, res.Indicators.Trend)
	assert.Equal(t, 50.0, res.Score)
	assert.Equal(t, types.BiasNeutral, res.Bias)
	assert.False(t, res.Indicators.Breakout.Detected)
	assert.Equal(t, 0.5, float64(res.Indicators.PricePosition))
	assert.Equal(t, []string{"RSI unavailable (Neutral)"}, res.Insights)

	b, err := json.Marshal(res)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"rsi":null`)
	assert.Contains(t, string(b), `"support":null`)
}

func TestAnalyzeNoData(t *testing.T) {
	for name, src := range map[string]*stubPrices{
		"empty": {},
		"error": {err: errors.New("no data")},
	} {
		t.Run(name, func(t *testing.T) {
			res, err := New(src, DefaultConfig()).Analyze(context.Background(), "ACME")
			require.NoError(t, err)
			assert.Equal(t, 50.0, res.Score)
			assert.Equal(t, types.BiasUnknown, res.Bias)
			assert.Equal(t, []string{"Unable to fetch price data"}, res.Insights)
		})
	}
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	src := &stubPrices{candles: series(80, 0.7, 252)}
	a := New(src, DefaultConfig())

	first, err := a.Analyze(context.Background(), "ACME")
	require.NoError(t, err)
	second, err := a.Analyze(context.Background(), "ACME")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDetermineTrend(t *testing.T) {
	tests := []struct {
		price, short, long float64
		want               types.Trend
	}{
		{10, 9, 8, types.TrendStrongUp},
		{10, 9, 9.5, types.TrendWeakUp},
		{8, 9, 10, types.TrendStrongDown},
		{8, 9, 8.5, types.TrendWeakDown},
		{9, 9, 8, types.TrendSideways},
	}
	for _, tt := range tests {
		if got := DetermineTrend(tt.price, tt.short, tt.long); got != tt.want {
			t.Errorf("Expected %s for %v/%v/%v, got %s", tt.want, tt.price, tt.short, tt.long, got)
		}
	}
}

func TestScoreTerms(t *testing.T) {
	a := New(nil, DefaultConfig())
	assert.InDelta(t, 53.0, a.Score(60, types.TrendSideways, 0, 0.5), 1e-9)
	assert.InDelta(t, 45.0, a.Score(80, types.TrendSideways, 0, 0.5), 1e-9)
	assert.InDelta(t, 55.0, a.Score(20, types.TrendSideways, 0, 0.5), 1e-9)
	assert.InDelta(t, 60.0, a.Score(50, types.TrendSideways, 5, 0.5), 1e-9, "macd term is capped")
	assert.InDelta(t, 40.0, a.Score(50, types.TrendSideways, -5, 0.5), 1e-9)
	assert.Equal(t, 100.0, a.Score(70, types.TrendStrongUp, 1, 3))
	assert.Equal(t, 0.0, a.Score(30, types.TrendStrongDown, -1, -3))
}

func TestDetermineBiasCautious(t *testing.T) {
	a := New(nil, DefaultConfig())
	assert.Equal(t, types.BiasBullishCautious, a.DetermineBias(60, 66))
	assert.Equal(t, types.BiasSlightlyBullish, a.DetermineBias(60, 60))
	assert.Equal(t, types.BiasBullish, a.DetermineBias(70, 90))
	assert.Equal(t, types.BiasNeutral, a.DetermineBias(45, 50))
	assert.Equal(t, types.BiasSlightlyBearish, a.DetermineBias(30, 50))
	assert.Equal(t, types.BiasBearish, a.DetermineBias(29.9, 50))
}
