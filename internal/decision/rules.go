package decision

import (
	"math"

	"investiq/internal/ta"
	"investiq/internal/types"
)

const (
	reasonCautiousHighRisk = "Strong fundamentals and sentiment, but elevated risk suggests caution"
	reasonNegativeHighRisk = "Negative signals combined with high risk"
	reasonMixedHighRisk    = "Mixed signals with high risk - wait for better entry"
	reasonBullConsensus    = "Strong bullish consensus across multiple indicators"
	reasonMostlyPositive   = "Mostly positive signals with some neutral indicators"
	reasonBearConsensus    = "Strong bearish consensus"
	reasonMostlyNegative   = "Mostly negative signals"
	reasonMixedBearishNews = "Mixed signals - bullish technical/fundamental but bearish sentiment"
	reasonMixedCaution     = "Mixed signals - caution advised"
	reasonNeutral          = "Neutral or mixed signals - wait for clearer direction"

	reasonStrongScore    = "Strong overall score supports bullish position"
	reasonModerateScore  = "Moderate score suggests waiting for better entry/exit"
	reasonLowButPositive = "Low score but some positive signals - caution advised"
	reasonWeakScore      = "Weak overall score with negative signals"
	reasonVeryWeakScore  = "Very weak overall score"
)

// NormalizeRiskScore maps a risk level onto the combination scale; lower
// risk contributes more. Unmapped levels score 50.
func NormalizeRiskScore(level types.RiskLevel) float64 {
	switch level {
	case types.RiskVeryLow:
		return 100
	case types.RiskLow:
		return 80
	case types.RiskModerate:
		return 60
	case types.RiskHigh:
		return 40
	case types.RiskVeryHigh:
		return 20
	default:
		return 50
	}
}

// CombineScores is the weighted sum of the four agent scores, rounded to 2 decimals.
func (c Config) CombineScores(s types.AgentScores) float64 {
	w := c.Weights
	sum := s.Fundamental*w.Fundamental +
		s.Sentiment*w.Sentiment +
		s.Technical*w.Technical +
		s.Risk*w.Risk
	return ta.Round(sum, 2)
}

// ResolveConflicts counts directional biases by label substring and
// reconciles them, with elevated risk overriding the consensus rules.
func ResolveConflicts(biases []types.Bias, risk types.RiskLevel) (types.Recommendation, string) {
	var bullish, bearish, neutral int
	for _, b := range biases {
		if b.IsBullish() {
			bullish++
		}
		if b.IsBearish() {
			bearish++
		}
		if b.IsNeutral() {
			neutral++
		}
	}

	if risk.Elevated() {
		switch {
		case bullish >= 2:
			return types.Hold, reasonCautiousHighRisk
		case bearish >= 2:
			return types.Avoid, reasonNegativeHighRisk
		default:
			return types.Hold, reasonMixedHighRisk
		}
	}

	switch {
	case bullish >= 3:
		return types.Buy, reasonBullConsensus
	case bullish == 2 && neutral >= 1:
		return types.Buy, reasonMostlyPositive
	case bearish >= 3:
		return types.Sell, reasonBearConsensus
	case bearish == 2 && neutral >= 1:
		return types.Sell, reasonMostlyNegative
	case bullish == 2 && bearish == 1:
		return types.Hold, reasonMixedBearishNews
	case bearish == 2 && bullish == 1:
		return types.Hold, reasonMixedCaution
	default:
		return types.Hold, reasonNeutral
	}
}

// DetermineRecommendation applies the combined score on top of the
// conflict resolution outcome.
func (c Config) DetermineRecommendation(combined float64, biases []types.Bias, risk types.RiskLevel) (types.Recommendation, string) {
	rec, reason := ResolveConflicts(biases, risk)
	t := c.Thresholds

	switch {
	case combined >= t.Strong:
		if rec == types.Sell {
			return types.Hold, reason
		}
		return types.Buy, reasonStrongScore
	case combined >= t.Positive:
		if rec == types.Sell {
			return types.Hold, reason
		}
		return rec, reason
	case combined >= t.Moderate:
		return types.Hold, reasonModerateScore
	case combined >= t.Weak:
		if rec == types.Buy {
			return types.Hold, reasonLowButPositive
		}
		return types.Sell, reasonWeakScore
	default:
		return types.Sell, reasonVeryWeakScore
	}
}

// CalculateConfidence starts from bias agreement and adjusts for the spread
// of the four agent scores.
func (c Config) CalculateConfidence(s types.AgentScores, biases []types.Bias) float64 {
	cc := c.Confidence
	unique := make(map[types.Bias]struct{}, len(biases))
	for _, b := range biases {
		unique[b] = struct{}{}
	}

	var conf float64
	switch len(unique) {
	case 1:
		conf = cc.Unanimous
	case 2:
		conf = cc.Split
	default:
		conf = cc.Divided
	}

	scores := []float64{s.Fundamental, s.Sentiment, s.Technical, s.Risk}
	lo, hi := scores[0], scores[0]
	for _, v := range scores[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	switch spread := hi - lo; {
	case spread < cc.TightSpread:
		conf += cc.Adjustment
	case spread > cc.WideSpread:
		conf -= cc.Adjustment
	}
	return ta.Round(ta.Clamp(conf, cc.Min, cc.Max), 2)
}
