package technical

import (
	"context"
	"fmt"
	"math"

	"investiq/internal/interfaces"
	"investiq/internal/logger"
	"investiq/internal/ta"
	"investiq/internal/types"
)

const Name = "technical"

const (
	stateOverbought = "Overbought"
	stateOversold   = "Oversold"
	stateNeutral    = "Neutral"
)

// Analyst scores price action over the configured history.
type Analyst struct {
	source interfaces.PriceSource
	cfg    Config
}

func New(source interfaces.PriceSource, cfg Config) *Analyst {
	return &Analyst{source: source, cfg: cfg}
}

func (a *Analyst) Name() string { return Name }

func (a *Analyst) Analyze(ctx context.Context, symbol string) (*types.TechnicalResult, error) {
	candles, err := a.source.PriceHistory(ctx, symbol, a.cfg.Period)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		logger.Warn(ctx, "Price history unavailable", "symbol", symbol, "error", err)
		return NoData(), nil
	}
	if len(candles) == 0 {
		return NoData(), nil
	}
	return a.Evaluate(candles), nil
}

// NoData is the neutral result when no price history is available.
func NoData() *types.TechnicalResult {
	return &types.TechnicalResult{
		Score:    50,
		Bias:     types.BiasUnknown,
		Insights: []string{"Unable to fetch price data"},
	}
}

// Evaluate computes indicators, score, bias and insights from chronological
// candles. It is pure so the same candles always give the same result.
func (a *Analyst) Evaluate(candles []types.Candle) *types.TechnicalResult {
	closes := make([]float64, len(candles))
	highs := make([]float64, len(candles))
	lows := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
		highs[i] = c.High
		lows[i] = c.Low
	}
	price := closes[len(closes)-1]

	maShort := ta.SMA(closes, a.cfg.ShortMA)
	maLong := ta.SMA(closes, a.cfg.LongMA)
	rsi := ta.RSI(closes, a.cfg.RSIPeriod)
	line, signal, hist := ta.MACD(closes, a.cfg.MACDFast, a.cfg.MACDSlow, a.cfg.MACDSignal)
	last := len(closes) - 1

	sr := SupportResistance(price, ta.RollingMin(lows, a.cfg.SRWindow), ta.RollingMax(highs, a.cfg.SRWindow))
	trend := DetermineTrend(price, maShort, maLong)
	breakout := a.DetectBreakout(sr)
	state := a.RSIState(rsi)
	position := PricePosition(sr)

	score := a.Score(rsi, trend, hist[last], position)
	bias := a.DetermineBias(score, rsi)

	var insights []string
	if !math.IsNaN(maShort) && !math.IsNaN(maLong) {
		if price > maLong {
			insights = append(insights, fmt.Sprintf("Price above %d-day MA", a.cfg.LongMA))
		} else {
			insights = append(insights, fmt.Sprintf("Price below %d-day MA", a.cfg.LongMA))
		}
	}
	if math.IsNaN(rsi) {
		insights = append(insights, fmt.Sprintf("RSI unavailable (%s)", state))
	} else {
		insights = append(insights, fmt.Sprintf("RSI = %.1f (%s)", rsi, state))
	}
	if breakout.Detected {
		insights = append(insights, fmt.Sprintf("Potential %s detected", breakout.Type))
	}

	return &types.TechnicalResult{
		Score:    score,
		Bias:     bias,
		Insights: insights,
		Indicators: &types.TechnicalIndicators{
			RSI:   types.Float(rsi),
			Trend: trend,
			MACD: types.MACD{
				MACD:      types.Float(line[last]),
				Signal:    types.Float(signal[last]),
				Histogram: types.Float(hist[last]),
			},
			SupportResistance:  sr,
			Breakout:           breakout,
			OverboughtOversold: state,
			MovingAverages: map[string]types.Float{
				fmt.Sprintf("MA%d", a.cfg.ShortMA): types.Float(maShort),
				fmt.Sprintf("MA%d", a.cfg.LongMA):  types.Float(maLong),
			},
			PricePosition: types.Float(position),
		},
	}
}

// SupportResistance reports distances in percent; NaN levels propagate.
func SupportResistance(price, support, resistance float64) types.SupportResistance {
	return types.SupportResistance{
		Support:              types.Float(support),
		Resistance:           types.Float(resistance),
		CurrentPrice:         types.Float(price),
		DistanceToSupport:    types.Float((price - support) / support * 100),
		DistanceToResistance: types.Float((resistance - price) / price * 100),
	}
}

// DetermineTrend orders price against the short and long averages.
func DetermineTrend(price, maShort, maLong float64) types.Trend {
	if math.IsNaN(maShort) || math.IsNaN(maLong) {
		return types.TrendUnknown
	}
	switch {
	case price > maShort && maShort > maLong:
		return types.TrendStrongUp
	case price > maShort && maShort < maLong:
		return types.TrendWeakUp
	case price < maShort && maShort < maLong:
		return types.TrendStrongDown
	case price < maShort && maShort > maLong:
		return types.TrendWeakDown
	default:
		return types.TrendSideways
	}
}

// DetectBreakout checks resistance before support.
func (a *Analyst) DetectBreakout(sr types.SupportResistance) types.Breakout {
	price := float64(sr.CurrentPrice)
	if price >= float64(sr.Resistance)*(1-a.cfg.BreakoutBand) {
		return types.Breakout{Detected: true, Type: "resistance_breakout", Direction: "upward"}
	}
	if price <= float64(sr.Support)*(1+a.cfg.BreakoutBand) {
		return types.Breakout{Detected: true, Type: "support_breakdown", Direction: "downward"}
	}
	return types.Breakout{Detected: false}
}

func (a *Analyst) RSIState(rsi float64) string {
	switch {
	case rsi > a.cfg.Overbought:
		return stateOverbought
	case rsi < a.cfg.Oversold:
		return stateOversold
	default:
		return stateNeutral
	}
}

// PricePosition is where price sits between support (0) and resistance (1),
// 0.5 when the range is empty or undefined.
func PricePosition(sr types.SupportResistance) float64 {
	rng := float64(sr.Resistance) - float64(sr.Support)
	if !(rng > 0) {
		return 0.5
	}
	return (float64(sr.CurrentPrice) - float64(sr.Support)) / rng
}

// Score starts at 50 and adds the RSI, trend, MACD and position terms.
// An undefined RSI adds nothing.
func (a *Analyst) Score(rsi float64, trend types.Trend, macdHist, position float64) float64 {
	score := 50.0

	switch {
	case math.IsNaN(rsi):
	case rsi >= a.cfg.Oversold && rsi <= a.cfg.Overbought:
		score += (rsi - 50) * 0.3
	case rsi > a.cfg.Overbought:
		score -= (rsi - a.cfg.Overbought) * 0.5
	default:
		score += (a.cfg.Oversold - rsi) * 0.5
	}

	switch trend {
	case types.TrendStrongUp:
		score += a.cfg.StrongTrend
	case types.TrendWeakUp:
		score += a.cfg.WeakTrend
	case types.TrendStrongDown:
		score -= a.cfg.StrongTrend
	case types.TrendWeakDown:
		score -= a.cfg.WeakTrend
	}

	if macdHist > 0 {
		score += math.Min(a.cfg.MACDCap, macdHist*a.cfg.MACDScale)
	} else {
		score += math.Max(-a.cfg.MACDCap, macdHist*a.cfg.MACDScale)
	}

	score += (position - 0.5) * a.cfg.PositionRange

	return ta.Clamp(ta.Round(score, 2), 0, 100)
}

func (a *Analyst) DetermineBias(score, rsi float64) types.Bias {
	b := a.cfg.Bias
	switch {
	case score >= b.Bullish:
		return types.BiasBullish
	case score >= b.SlightlyBullish:
		if rsi > a.cfg.CautiousRSI {
			return types.BiasBullishCautious
		}
		return types.BiasSlightlyBullish
	case score >= b.Neutral:
		return types.BiasNeutral
	case score >= b.SlightlyBearish:
		return types.BiasSlightlyBearish
	default:
		return types.BiasBearish
	}
}
