package fundamental

import (
	"context"
	"math"

	"investiq/internal/interfaces"
	"investiq/internal/logger"
	"investiq/internal/ta"
	"investiq/internal/types"
)

const Name = "fundamental"

// metricOrder fixes the summation order so scores are reproducible.
var metricOrder = []string{
	types.MetricRevenueGrowth,
	types.MetricProfitMargin,
	types.MetricPERatio,
	types.MetricDebtToEquity,
	types.MetricROE,
}

// Analyst scores balance-sheet and earnings health.
type Analyst struct {
	source interfaces.FundamentalsSource
	cfg    Config
}

func New(source interfaces.FundamentalsSource, cfg Config) *Analyst {
	return &Analyst{source: source, cfg: cfg}
}

func (a *Analyst) Name() string { return Name }

// Analyze never fails on missing data; it returns an error only when ctx is done.
func (a *Analyst) Analyze(ctx context.Context, symbol string) (*types.FundamentalResult, error) {
	info, infoErr := a.source.CompanyInfo(ctx, symbol)
	stmts, stmtErr := a.source.FinancialStatements(ctx, symbol)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if infoErr != nil {
		logger.Warn(ctx, "Company info unavailable", "symbol", symbol, "error", infoErr)
		info = nil
	}
	if stmtErr != nil {
		logger.Warn(ctx, "Financial statements unavailable", "symbol", symbol, "error", stmtErr)
		stmts = nil
	}
	if info == nil && stmts == nil {
		return Unavailable(), nil
	}

	metrics := DeriveMetrics(info, stmts)
	score, normalized := a.Score(metrics)
	return &types.FundamentalResult{
		Score:            score,
		Bias:             a.DetermineBias(score),
		Insights:         Insights(metrics),
		Metrics:          &metrics,
		NormalizedScores: normalized,
	}, nil
}

// Unavailable is the result when no financial data could be fetched.
func Unavailable() *types.FundamentalResult {
	return &types.FundamentalResult{
		Score:    0,
		Bias:     types.BiasUnknown,
		Insights: []string{"Unable to fetch financial data"},
	}
}

// DeriveMetrics prefers statement figures and falls back to company info
// fields. Zero denominators define the metric as 0.
func DeriveMetrics(info *types.CompanyInfo, fs *types.FinancialStatements) types.FundamentalMetrics {
	var m types.FundamentalMetrics
	if info == nil {
		info = &types.CompanyInfo{}
	}
	fallback := func(name string, v *float64, scale float64) float64 {
		m.Fallbacks = append(m.Fallbacks, name)
		if v == nil {
			return 0
		}
		return *v * scale
	}

	income, prevIncome := fs.IncomeAt(0), fs.IncomeAt(1)
	balance := fs.BalanceAt(0)
	hasRevenue, hasNI := fs.ReportsRevenue(), fs.ReportsNetIncome()
	hasDebt, hasEquity := fs.ReportsDebt(), fs.ReportsEquity()

	// Statement metrics read only the latest period (and the one before it
	// for growth). A blank item there leaves the metric at 0; older periods
	// are never substituted.
	switch {
	case !hasRevenue:
		m.RevenueGrowth = fallback(types.MetricRevenueGrowth, info.RevenueGrowth, 100)
	case len(fs.Income) >= 2:
		m.RevenueGrowth = growth(income.TotalRevenue, prevIncome.TotalRevenue)
	}

	if hasNI && hasRevenue {
		m.ProfitMargin = ratio(income.NetIncome, income.TotalRevenue, 100)
	} else {
		m.ProfitMargin = fallback(types.MetricProfitMargin, info.ProfitMargins, 100)
	}

	switch {
	case info.TrailingPE != nil && *info.TrailingPE != 0:
		m.PERatio = *info.TrailingPE
	case info.ForwardPE != nil:
		m.PERatio = *info.ForwardPE
	}

	if hasDebt && hasEquity {
		m.DebtToEquity = ratio(balance.TotalDebt, balance.StockholdersEquity, 1)
	} else {
		// Company info quotes debt/equity in percent (150 means 1.5). It is
		// used as is, so a fallback value lands in the high-debt band.
		m.DebtToEquity = fallback(types.MetricDebtToEquity, info.DebtToEquity, 1)
	}

	if hasNI && hasEquity {
		m.ROE = ratio(income.NetIncome, balance.StockholdersEquity, 100)
	} else {
		m.ROE = fallback(types.MetricROE, info.ReturnOnEquity, 100)
	}
	return m
}

func growth(cur, prev *float64) float64 {
	if cur == nil || prev == nil || *prev == 0 {
		return 0
	}
	return (*cur - *prev) / math.Abs(*prev) * 100
}

func ratio(num, den *float64, scale float64) float64 {
	if num == nil || den == nil || *den == 0 {
		return 0
	}
	return *num / *den * scale
}

// Normalize maps a metric value onto [0, 100]. Unknown metrics score 50.
func Normalize(metric string, v float64) float64 {
	switch metric {
	case types.MetricRevenueGrowth:
		switch {
		case v > 20:
			return 100
		case v > 10:
			return 70 + (v-10)*3
		default:
			return math.Max(0, 50+v*2)
		}
	case types.MetricProfitMargin:
		switch {
		case v > 20:
			return 100
		case v > 10:
			return 70 + (v-10)*3
		case v > 5:
			return 50 + (v-5)*4
		default:
			return math.Max(0, v*10)
		}
	case types.MetricPERatio:
		// 15-25 is the sweet spot; both cheaper and richer multiples degrade.
		switch {
		case v >= 15 && v <= 25:
			return 100
		case (v >= 10 && v < 15) || (v > 25 && v <= 30):
			return 80
		case (v >= 5 && v < 10) || (v > 30 && v <= 40):
			return 60
		case v < 5 || (v > 40 && v <= 60):
			return 40
		default:
			return 20
		}
	case types.MetricDebtToEquity:
		switch {
		case v < 0.3:
			return 100
		case v < 0.5:
			return 85
		case v < 1.0:
			return 70
		case v < 2.0:
			return 50
		default:
			return math.Max(0, 100-v*20)
		}
	case types.MetricROE:
		switch {
		case v > 20:
			return 100
		case v > 15:
			return 80 + (v-15)*4
		case v > 10:
			return 60 + (v-10)*4
		default:
			return math.Max(0, v*6)
		}
	}
	return 50
}

// Score returns the weighted score rounded to 2 decimals and the per-metric
// normalized scores.
func (a *Analyst) Score(m types.FundamentalMetrics) (float64, map[string]float64) {
	values := m.Values()
	normalized := make(map[string]float64, len(values))
	sum := 0.0
	for _, name := range metricOrder {
		n := Normalize(name, values[name])
		normalized[name] = n
		sum += n * a.cfg.Weights.For(name)
	}
	return ta.Round(sum, 2), normalized
}

func (a *Analyst) DetermineBias(score float64) types.Bias {
	t := a.cfg.Bias
	switch {
	case score >= t.Bullish:
		return types.BiasBullish
	case score >= t.SlightlyBullish:
		return types.BiasSlightlyBullish
	case score >= t.Neutral:
		return types.BiasNeutral
	case score >= t.SlightlyBearish:
		return types.BiasSlightlyBearish
	default:
		return types.BiasBearish
	}
}

// Insights are independent of the normalization curves.
func Insights(m types.FundamentalMetrics) []string {
	var out []string
	switch {
	case m.RevenueGrowth > 15:
		out = append(out, "Strong revenue growth")
	case m.RevenueGrowth > 5:
		out = append(out, "Moderate revenue growth")
	case m.RevenueGrowth < 0:
		out = append(out, "Declining revenue")
	}

	switch {
	case m.DebtToEquity < 0.5:
		out = append(out, "Low debt")
	case m.DebtToEquity < 1.0:
		out = append(out, "Moderate debt")
	default:
		out = append(out, "High debt")
	}

	switch {
	case m.PERatio > 30:
		out = append(out, "Overvalued P/E")
	case m.PERatio < 15:
		out = append(out, "Undervalued P/E")
	default:
		out = append(out, "Fair P/E valuation")
	}
	return out
}
