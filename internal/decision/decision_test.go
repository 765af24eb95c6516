package decision

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"investiq/internal/types"
)

func bias(bs ...types.Bias) []types.Bias { return bs }

func TestCombineScores(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 100.0, cfg.CombineScores(types.AgentScores{Fundamental: 100, Sentiment: 100, Technical: 100, Risk: 100}))
	assert.Equal(t, 0.0, cfg.CombineScores(types.AgentScores{}))
	assert.Equal(t, 59.0, cfg.CombineScores(types.AgentScores{Fundamental: 70, Sentiment: 50, Technical: 60, Risk: 50}))
	assert.InDelta(t, 1.0, cfg.Weights.Sum(), 1e-12)
}

func TestNormalizeRiskScore(t *testing.T) {
	tests := map[types.RiskLevel]float64{
		types.RiskVeryLow:  100,
		types.RiskLow:      80,
		types.RiskModerate: 60,
		types.RiskHigh:     40,
		types.RiskVeryHigh: 20,
		types.RiskUnknown:  50,
		"Extreme":          50,
	}
	for level, want := range tests {
		if got := NormalizeRiskScore(level); got != want {
			t.Errorf("Expected %v for %q, got %v", want, level, got)
		}
	}
}

func TestResolveConflicts(t *testing.T) {
	tests := []struct {
		name   string
		biases []types.Bias
		risk   types.RiskLevel
		rec    types.Recommendation
		reason string
	}{
		{"bull consensus", bias(types.BiasBullish, types.BiasBullish, types.BiasBullish), types.RiskLow, types.Buy, reasonBullConsensus},
		{"mostly negative", bias(types.BiasBearish, types.BiasBearish, types.BiasNeutral), types.RiskModerate, types.Sell, reasonMostlyNegative},
		{"high risk bullish", bias(types.BiasBullish, types.BiasBullish, types.BiasBearish), types.RiskHigh, types.Hold, reasonCautiousHighRisk},
		{"high risk bearish", bias(types.BiasSlightlyBearish, types.BiasBearish, types.BiasNeutral), types.RiskVeryHigh, types.Avoid, reasonNegativeHighRisk},
		{"high risk mixed", bias(types.BiasNeutral, types.BiasNeutral, types.BiasBullish), types.RiskHigh, types.Hold, reasonMixedHighRisk},
		{"mostly positive", bias(types.BiasSlightlyBullish, types.BiasBullishCautious, types.BiasNeutral), types.RiskLow, types.Buy, reasonMostlyPositive},
		{"bear consensus", bias(types.BiasBearish, types.BiasSlightlyBearish, types.BiasBearish), types.RiskLow, types.Sell, reasonBearConsensus},
		{"bullish but bearish news", bias(types.BiasBullish, types.BiasBearish, types.BiasBullish), types.RiskModerate, types.Hold, reasonMixedBearishNews},
		{"bearish with one bull", bias(types.BiasBearish, types.BiasBullish, types.BiasBearish), types.RiskModerate, types.Hold, reasonMixedCaution},
		{"neutral", bias(types.BiasNeutral, types.BiasNeutral, types.BiasBullish), types.RiskLow, types.Hold, reasonNeutral},
		{"unknown counts as nothing", bias(types.BiasUnknown, types.BiasBullish, types.BiasBullish), types.RiskLow, types.Hold, reasonNeutral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, reason := ResolveConflicts(tt.biases, tt.risk)
			assert.Equal(t, tt.rec, rec)
			assert.Equal(t, tt.reason, reason)
		})
	}
}

func TestDetermineRecommendation(t *testing.T) {
	cfg := DefaultConfig()
	bulls := bias(types.BiasBullish, types.BiasBullish, types.BiasBullish)
	bears := bias(types.BiasBearish, types.BiasBearish, types.BiasBearish)
	mixed := bias(types.BiasNeutral, types.BiasBullish, types.BiasNeutral)

	tests := []struct {
		name     string
		combined float64
		biases   []types.Bias
		risk     types.RiskLevel
		rec      types.Recommendation
		reason   string
	}{
		{"strong score buys", 72, bulls, types.RiskLow, types.Buy, reasonStrongScore},
		{"strong score downgrades sell", 72, bears, types.RiskLow, types.Hold, reasonBearConsensus},
		{"strong score with avoid still buys", 72, bears, types.RiskHigh, types.Buy, reasonStrongScore},
		{"positive defers to conflict", 60, bulls, types.RiskLow, types.Buy, reasonBullConsensus},
		{"positive downgrades sell", 60, bears, types.RiskLow, types.Hold, reasonBearConsensus},
		{"positive keeps avoid", 60, bears, types.RiskVeryHigh, types.Avoid, reasonNegativeHighRisk},
		{"moderate holds", 50, bulls, types.RiskLow, types.Hold, reasonModerateScore},
		{"low with positive signals", 35, bulls, types.RiskLow, types.Hold, reasonLowButPositive},
		{"low sells", 35, mixed, types.RiskLow, types.Sell, reasonWeakScore},
		{"very weak", 10, bulls, types.RiskLow, types.Sell, reasonVeryWeakScore},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, reason := cfg.DetermineRecommendation(tt.combined, tt.biases, tt.risk)
			assert.Equal(t, tt.rec, rec)
			assert.Equal(t, tt.reason, reason)
		})
	}
}

func TestCalculateConfidence(t *testing.T) {
	cfg := DefaultConfig()
	same := bias(types.BiasBullish, types.BiasBullish, types.BiasBullish)
	distinct := bias(types.BiasBullish, types.BiasNeutral, types.BiasBearish)

	assert.Equal(t, 95.0, cfg.CalculateConfidence(types.AgentScores{Fundamental: 70, Sentiment: 75, Technical: 72, Risk: 80}, same))
	assert.Equal(t, 35.0, cfg.CalculateConfidence(types.AgentScores{Fundamental: 90, Sentiment: 40, Technical: 20, Risk: 50}, distinct))
	assert.Equal(t, 65.0, cfg.CalculateConfidence(types.AgentScores{Fundamental: 60, Sentiment: 50, Technical: 85, Risk: 60},
		bias(types.BiasBullish, types.BiasNeutral, types.BiasBullish)))
}

func TestConfidenceAlwaysInRange(t *testing.T) {
	cfg := DefaultConfig()
	all := []types.Bias{types.BiasBullish, types.BiasSlightlyBullish, types.BiasNeutral, types.BiasBearish, types.BiasUnknown}
	for _, a := range all {
		for _, b := range all {
			for _, c := range all {
				for _, spread := range []float64{0, 30, 100} {
					got := cfg.CalculateConfidence(types.AgentScores{Fundamental: 0, Sentiment: spread, Technical: 0, Risk: 0}, bias(a, b, c))
					if got < 30 || got > 95 {
						t.Fatalf("Expected confidence in [30,95], got %v", got)
					}
				}
			}
		}
	}
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
	cfg := DefaultConfig()
	cfg.Weights.Risk = 0.3
	assert.Error(t, cfg.Validate())
}

type fakeAnalyst[R any] struct {
	name  string
	res   R
	err   error
	delay time.Duration
}

func (f *fakeAnalyst[R]) Name() string { return f.name }

func (f *fakeAnalyst[R]) Analyze(ctx context.Context, symbol string) (R, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			var zero R
			return zero, ctx.Err()
		}
	}
	return f.res, f.err
}

func newFakeEngine(riskErr error) *Engine {
	e := New(
		&fakeAnalyst[*types.FundamentalResult]{name: "fundamental", res: &types.FundamentalResult{Score: 80, Bias: types.BiasBullish}},
		&fakeAnalyst[*types.SentimentResult]{name: "sentiment", res: &types.SentimentResult{Score: 75, Bias: types.BiasBullish}, delay: 5 * time.Millisecond},
		&fakeAnalyst[*types.TechnicalResult]{name: "technical", res: &types.TechnicalResult{Score: 72, Bias: types.BiasBullish}},
		&fakeAnalyst[*types.RiskResult]{name: "risk", res: &types.RiskResult{RiskLevel: types.RiskLow}, err: riskErr},
		DefaultConfig(),
	)
	e.now = func() time.Time { return time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC) }
	return e
}

func TestEngineAnalyze(t *testing.T) {
	d, err := newFakeEngine(nil).Analyze(context.Background(), "ACME")
	require.NoError(t, err)

	assert.Equal(t, "ACME", d.Symbol)
	assert.Equal(t, types.AgentScores{Fundamental: 80, Sentiment: 75, Technical: 72, Risk: 80}, d.AgentScores)
	// 24 + 15 + 21.6 + 16
	assert.Equal(t, 76.6, d.CombinedScore)
	assert.Equal(t, types.Buy, d.Recommendation)
	assert.Equal(t, reasonStrongScore, d.Reason)
	assert.Equal(t, 95.0, d.Confidence)
	assert.Equal(t, types.RiskLow, d.AgentBiases.Risk)
	assert.NotNil(t, d.DetailedAnalysis.Sentiment)
	assert.Equal(t, time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC), d.AnalyzedAt)
}

func TestEngineAnalyzePropagatesFailure(t *testing.T) {
	d, err := newFakeEngine(errors.New("risk blew up")).Analyze(context.Background(), "ACME")
	assert.Error(t, err)
	assert.Nil(t, d, "no partial decision on failure")
}
