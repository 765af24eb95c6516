package risk

import (
	"context"
	"math"
	"time"

	"investiq/internal/interfaces"
	"investiq/internal/logger"
	"investiq/internal/ta"
	"investiq/internal/types"
)

const Name = "risk"

// Analyst assesses volatility, drawdown and risk-adjusted return.
type Analyst struct {
	source interfaces.PriceSource
	cfg    Config
}

func New(source interfaces.PriceSource, cfg Config) *Analyst {
	return &Analyst{source: source, cfg: cfg}
}

func (a *Analyst) Name() string { return Name }

func (a *Analyst) Analyze(ctx context.Context, symbol string) (*types.RiskResult, error) {
	candles, err := a.source.PriceHistory(ctx, symbol, a.cfg.Period)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		logger.Warn(ctx, "Price history unavailable", "symbol", symbol, "error", err)
		return NoData(), nil
	}
	if len(candles) < 2 {
		return NoData(), nil
	}

	res := a.Evaluate(candles)
	if res.RiskLevel.Elevated() {
		logger.Risk(ctx, symbol, string(res.RiskLevel),
			"risk_score", res.RiskScore,
			"volatility", float64(res.Volatility),
			"max_drawdown", float64(res.MaxDrawdown))
	}
	return res, nil
}

// NoData is the result when fewer than two closes are available.
func NoData() *types.RiskResult {
	return &types.RiskResult{
		RiskLevel:       types.RiskUnknown,
		Volatility:      0,
		MaxDrawdown:     0,
		Recommendations: []string{"Unable to fetch price data"},
	}
}

// Evaluate is pure over chronological candles with at least two closes.
func (a *Analyst) Evaluate(candles []types.Candle) *types.RiskResult {
	returns, dates := dailyReturns(candles)
	price := candles[len(candles)-1].Close

	vol := a.Volatility(returns)
	dd := Drawdown(returns, dates)
	sharpe := a.Sharpe(returns)

	tail := candles
	if len(tail) > a.cfg.RewardLookback {
		tail = tail[len(tail)-a.cfg.RewardLookback:]
	}

	annual := float64(vol.AnnualVolatility)
	maxDD := float64(dd.MaxDrawdown)
	score := Score(annual, maxDD, sharpe)
	level := a.Level(score)

	return &types.RiskResult{
		RiskLevel:       level,
		RiskScore:       score,
		Volatility:      vol.AnnualVolatility,
		MaxDrawdown:     dd.MaxDrawdown,
		CurrentDrawdown: dd.CurrentDrawdown,
		VaR:             types.Float(ta.Percentile(returns, a.cfg.VaRPercentile) * 100),
		SharpeRatio:     types.Float(sharpe),
		RiskRewardRatio: types.Float(RiskReward(tail)),
		Recommendations: Recommendations(level, annual, maxDD),
		PositionSize:    types.Float(a.PositionSize(annual)),
		StopLoss:        a.StopLoss(price, annual),
		Metrics: &types.RiskMetrics{
			Volatility: vol,
			Drawdown:   dd,
		},
	}
}

// dailyReturns skips bars whose previous close is zero.
func dailyReturns(candles []types.Candle) ([]float64, []time.Time) {
	returns := make([]float64, 0, len(candles))
	dates := make([]time.Time, 0, len(candles))
	for i := 1; i < len(candles); i++ {
		prev := candles[i-1].Close
		if prev == 0 {
			continue
		}
		returns = append(returns, candles[i].Close/prev-1)
		dates = append(dates, candles[i].Date)
	}
	return returns, dates
}

// Volatility annualizes the sample std-dev of returns, in percent.
func (a *Analyst) Volatility(returns []float64) types.VolatilityStats {
	scale := math.Sqrt(float64(a.cfg.TradingDays)) * 100
	annual := ta.SampleStdDev(returns) * scale

	recentReturns := returns
	if len(recentReturns) > a.cfg.RecentWindow {
		recentReturns = recentReturns[len(recentReturns)-a.cfg.RecentWindow:]
	}
	recent := ta.SampleStdDev(recentReturns) * scale

	trend := "decreasing"
	if recent > annual {
		trend = "increasing"
	}
	return types.VolatilityStats{
		AnnualVolatility: types.Float(annual),
		RecentVolatility: types.Float(recent),
		Trend:            trend,
	}
}

// Drawdown measures the cumulative return curve. The peak is the highest
// point at or before the deepest trough.
func Drawdown(returns []float64, dates []time.Time) types.DrawdownStats {
	if len(returns) == 0 {
		return types.DrawdownStats{}
	}
	curve := ta.EquityCurve(returns)
	dd := ta.Drawdowns(returns)

	trough := 0
	for i, v := range dd {
		if v < dd[trough] {
			trough = i
		}
	}
	peak := 0
	for i := 0; i <= trough; i++ {
		if curve[i] > curve[peak] {
			peak = i
		}
	}
	return types.DrawdownStats{
		MaxDrawdown:     types.Float(dd[trough] * 100),
		CurrentDrawdown: types.Float(dd[len(dd)-1] * 100),
		PeakDate:        dates[peak],
		TroughDate:      dates[trough],
	}
}

// Sharpe annualizes mean excess return over the daily risk-free rate.
func (a *Analyst) Sharpe(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	days := float64(a.cfg.TradingDays)
	daily := a.cfg.RiskFreeRate / days
	excess := 0.0
	for _, r := range returns {
		excess += r - daily
	}
	excess /= float64(len(returns))
	return math.Sqrt(days) * excess / ta.SampleStdDev(returns)
}

// RiskReward is average gain over average absolute loss; +Inf without losses.
func RiskReward(candles []types.Candle) float64 {
	if len(candles) < 2 {
		return 0
	}
	returns, _ := dailyReturns(candles)
	var gains, losses []float64
	for _, r := range returns {
		switch {
		case r > 0:
			gains = append(gains, r)
		case r < 0:
			losses = append(losses, r)
		}
	}
	if len(losses) == 0 {
		return math.Inf(1)
	}
	avgGain := 0.0
	if len(gains) > 0 {
		avgGain = ta.Mean(gains)
	}
	return avgGain / math.Abs(ta.Mean(losses))
}

// Score sums the volatility, drawdown and Sharpe bands.
func Score(volatility, maxDrawdown, sharpe float64) float64 {
	score := 0.0
	switch {
	case volatility > 40:
		score += 40
	case volatility > 30:
		score += 30
	case volatility > 20:
		score += 20
	default:
		score += 10
	}

	dd := math.Abs(maxDrawdown)
	switch {
	case dd > 30:
		score += 40
	case dd > 20:
		score += 30
	case dd > 10:
		score += 20
	default:
		score += 10
	}

	switch {
	case sharpe < 0:
		score += 20
	case sharpe < 0.5:
		score += 15
	case sharpe < 1:
		score += 10
	default:
		score += 5
	}
	return score
}

func (a *Analyst) Level(score float64) types.RiskLevel {
	l := a.cfg.Levels
	switch {
	case score >= l.VeryHigh:
		return types.RiskVeryHigh
	case score >= l.High:
		return types.RiskHigh
	case score >= l.Moderate:
		return types.RiskModerate
	case score >= l.Low:
		return types.RiskLow
	default:
		return types.RiskVeryLow
	}
}

func Recommendations(level types.RiskLevel, volatility, maxDrawdown float64) []string {
	var recs []string
	if level.Elevated() {
		recs = append(recs,
			"Reduce exposure",
			"Consider tighter stop-loss",
			"Monitor closely for exit signals")
	}
	if volatility > 30 {
		recs = append(recs, "High volatility detected - consider smaller position size")
	}
	if math.Abs(maxDrawdown) > 20 {
		recs = append(recs, "Significant drawdown - review position")
	}
	if len(recs) == 0 {
		recs = append(recs, "Risk levels acceptable")
	}
	return recs
}

// PositionSize risks RiskPerTrade of the account against a stop at half the
// annual volatility, capped at MaxPositionPct of the account.
func (a *Analyst) PositionSize(volatility float64) float64 {
	stopPct := volatility / 2
	if stopPct == 0 {
		return 0
	}
	riskAmount := a.cfg.AccountSize * a.cfg.RiskPerTrade
	size := riskAmount / (stopPct / 100)
	if math.IsNaN(size) {
		return size
	}
	return math.Min(size, a.cfg.AccountSize*a.cfg.MaxPositionPct)
}

func (a *Analyst) StopLoss(price, volatility float64) *types.StopLoss {
	pct := a.cfg.DefaultStopPct
	if a.cfg.StopMethod == StopMethodVolatility {
		pct = volatility / 100 * a.cfg.VolatilityStops
	}
	stop := price * (1 - pct)
	return &types.StopLoss{
		Price:             types.Float(stop),
		Percentage:        types.Float(pct * 100),
		DistanceFromPrice: types.Float((price - stop) / price * 100),
	}
}
