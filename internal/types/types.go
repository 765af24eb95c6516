package types

import (
	"fmt"
	"strings"
	"time"
)

// Candle is one daily OHLCV bar.
type Candle struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Period is a price history lookback in the yfinance notation.
type Period string

const (
	Period1M Period = "1mo"
	Period3M Period = "3mo"
	Period6M Period = "6mo"
	Period1Y Period = "1y"
	Period2Y Period = "2y"
	Period5Y Period = "5y"
)

// ParsePeriod validates a period string.
func ParsePeriod(s string) (Period, error) {
	p := Period(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case Period1M, Period3M, Period6M, Period1Y, Period2Y, Period5Y:
		return p, nil
	}
	return "", fmt.Errorf("unsupported period %q", s)
}

// Start returns the first calendar day covered by the period ending at now.
func (p Period) Start(now time.Time) time.Time {
	switch p {
	case Period1M:
		return now.AddDate(0, -1, 0)
	case Period3M:
		return now.AddDate(0, -3, 0)
	case Period6M:
		return now.AddDate(0, -6, 0)
	case Period2Y:
		return now.AddDate(-2, 0, 0)
	case Period5Y:
		return now.AddDate(-5, 0, 0)
	default:
		return now.AddDate(-1, 0, 0)
	}
}

// IncomePeriod holds the income statement line items used for scoring.
// A nil field means the line item was not reported.
type IncomePeriod struct {
	PeriodEnd    time.Time `json:"period_end"`
	TotalRevenue *float64  `json:"total_revenue,omitempty"`
	NetIncome    *float64  `json:"net_income,omitempty"`
}

type BalancePeriod struct {
	PeriodEnd          time.Time `json:"period_end"`
	TotalDebt          *float64  `json:"total_debt,omitempty"`
	StockholdersEquity *float64  `json:"stockholders_equity,omitempty"`
}

// FinancialStatements lists periods most recent first.
type FinancialStatements struct {
	Income  []IncomePeriod  `json:"income_statement"`
	Balance []BalancePeriod `json:"balance_sheet"`
}

// IncomeAt returns the i-th most recent income period, or an empty period
// when i is out of range.
func (fs *FinancialStatements) IncomeAt(i int) IncomePeriod {
	if fs == nil || i < 0 || i >= len(fs.Income) {
		return IncomePeriod{}
	}
	return fs.Income[i]
}

func (fs *FinancialStatements) BalanceAt(i int) BalancePeriod {
	if fs == nil || i < 0 || i >= len(fs.Balance) {
		return BalancePeriod{}
	}
	return fs.Balance[i]
}

// ReportsRevenue and its siblings tell whether any period carries the line
// item at all, as opposed to the latest period leaving it blank.
func (fs *FinancialStatements) ReportsRevenue() bool {
	return fs != nil && reports(fs.Income, func(p IncomePeriod) *float64 { return p.TotalRevenue })
}

func (fs *FinancialStatements) ReportsNetIncome() bool {
	return fs != nil && reports(fs.Income, func(p IncomePeriod) *float64 { return p.NetIncome })
}

func (fs *FinancialStatements) ReportsDebt() bool {
	return fs != nil && reports(fs.Balance, func(p BalancePeriod) *float64 { return p.TotalDebt })
}

func (fs *FinancialStatements) ReportsEquity() bool {
	return fs != nil && reports(fs.Balance, func(p BalancePeriod) *float64 { return p.StockholdersEquity })
}

func reports[P any](periods []P, item func(P) *float64) bool {
	for _, p := range periods {
		if item(p) != nil {
			return true
		}
	}
	return false
}

// CompanyInfo carries the summary fields used as fundamental fallbacks.
// Ratios are fractions (0.25 == 25%) except DebtToEquity.
type CompanyInfo struct {
	Symbol         string   `json:"symbol"`
	Name           string   `json:"name,omitempty"`
	Sector         string   `json:"sector,omitempty"`
	Currency       string   `json:"currency,omitempty"`
	MarketCap      *float64 `json:"market_cap,omitempty"`
	TrailingPE     *float64 `json:"trailing_pe,omitempty"`
	ForwardPE      *float64 `json:"forward_pe,omitempty"`
	DebtToEquity   *float64 `json:"debt_to_equity,omitempty"`
	ProfitMargins  *float64 `json:"profit_margins,omitempty"`
	ReturnOnEquity *float64 `json:"return_on_equity,omitempty"`
	RevenueGrowth  *float64 `json:"revenue_growth,omitempty"`
}

type NewsItem struct {
	Title     string    `json:"title"`
	Summary   string    `json:"summary,omitempty"`
	Publisher string    `json:"publisher,omitempty"`
	URL       string    `json:"url,omitempty"`
	Published time.Time `json:"published"`
}

// Ptr returns a pointer to v.
func Ptr(v float64) *float64 {
	return &v
}
