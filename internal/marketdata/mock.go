package marketdata

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"strings"
	"time"

	"investiq/internal/types"
)

var mockHeadlines = []string{
	"%s shares surge after strong quarterly profit",
	"%s beats estimates as revenue growth accelerates",
	"Analysts upgrade %s on robust demand",
	"%s announces annual shareholder meeting date",
	"%s expands partnership with regional distributor",
	"%s stock falls as margins come under pressure",
	"%s faces investigation over accounting practices",
	"%s cuts guidance amid weak demand",
	"%s unveils new product line",
	"%s shares rally to record high",
}

// Mock is a deterministic provider. Every series is derived from a hash
// of the symbol, so repeated calls return the same values.
type Mock struct {
	now     func() time.Time
	missing map[string]bool
}

// NewMock returns a Mock that reports ErrDataUnavailable for the given symbols.
func NewMock(missing ...string) *Mock {
	m := &Mock{now: time.Now, missing: make(map[string]bool, len(missing))}
	for _, s := range missing {
		m.missing[strings.ToUpper(s)] = true
	}
	return m
}

type mockProfile struct {
	seed       uint32
	basePrice  float64
	drift      float64
	volatility float64
}

func profileFor(symbol string) mockProfile {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToUpper(symbol)))
	seed := h.Sum32()
	return mockProfile{
		seed:       seed,
		basePrice:  50 + float64(seed%200),
		drift:      (float64(seed%21) - 8) / 10000,
		volatility: 0.008 + float64(seed%15)/1000,
	}
}

func (m *Mock) check(symbol string) error {
	if m.missing[strings.ToUpper(symbol)] {
		return fmt.Errorf("mock has no data for %s: %w", symbol, ErrDataUnavailable)
	}
	return nil
}

func (m *Mock) PriceHistory(ctx context.Context, symbol string, period types.Period) ([]types.Candle, error) {
	if err := m.check(symbol); err != nil {
		return nil, err
	}
	p := profileFor(symbol)
	rng := rand.New(rand.NewSource(int64(p.seed)))

	end := m.now().UTC().Truncate(24 * time.Hour)
	start := period.Start(end)

	var candles []types.Candle
	prev := p.basePrice
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		ret := p.drift + p.volatility*rng.NormFloat64()
		closePx := math.Max(prev*(1+ret), 0.01)
		spread := p.volatility / 2 * rng.Float64()
		candles = append(candles, types.Candle{
			Date:   d,
			Open:   prev,
			High:   math.Max(prev, closePx) * (1 + spread),
			Low:    math.Min(prev, closePx) * (1 - spread),
			Close:  closePx,
			Volume: math.Round(1e6 * (1 + rng.Float64())),
		})
		prev = closePx
	}
	return candles, nil
}

func (m *Mock) CompanyInfo(ctx context.Context, symbol string) (*types.CompanyInfo, error) {
	if err := m.check(symbol); err != nil {
		return nil, err
	}
	p := profileFor(symbol)
	pe := 10 + float64(p.seed%30)
	return &types.CompanyInfo{
		Symbol:         strings.ToUpper(symbol),
		Name:           strings.ToUpper(symbol) + " Corp",
		Sector:         "Technology",
		Currency:       "USD",
		MarketCap:      types.Ptr(1e9 * (1 + float64(p.seed%500))),
		TrailingPE:     types.Ptr(pe),
		ForwardPE:      types.Ptr(pe * 0.9),
		DebtToEquity:   types.Ptr(20 + float64(p.seed%150)),
		ProfitMargins:  types.Ptr(float64(p.seed%30) / 100),
		ReturnOnEquity: types.Ptr(float64(p.seed%25) / 100),
		RevenueGrowth:  types.Ptr((float64(p.seed%40) - 10) / 100),
	}, nil
}

// FinancialStatements reports four fiscal years, most recent first.
func (m *Mock) FinancialStatements(ctx context.Context, symbol string) (*types.FinancialStatements, error) {
	if err := m.check(symbol); err != nil {
		return nil, err
	}
	p := profileFor(symbol)
	growth := (float64(p.seed%40) - 10) / 100
	margin := float64(p.seed%30) / 100
	revenue := 1e9 * (1 + float64(p.seed%10))
	equity := revenue * 0.8
	debt := equity * (20 + float64(p.seed%150)) / 100

	year := m.now().UTC().Year()
	fs := &types.FinancialStatements{}
	for i := 0; i < 4; i++ {
		end := time.Date(year-1-i, time.December, 31, 0, 0, 0, 0, time.UTC)
		fs.Income = append(fs.Income, types.IncomePeriod{
			PeriodEnd:    end,
			TotalRevenue: types.Ptr(revenue),
			NetIncome:    types.Ptr(revenue * margin),
		})
		fs.Balance = append(fs.Balance, types.BalancePeriod{
			PeriodEnd:          end,
			TotalDebt:          types.Ptr(debt),
			StockholdersEquity: types.Ptr(equity),
		})
		revenue /= 1 + growth
	}
	return fs, nil
}

func (m *Mock) RecentNews(ctx context.Context, symbol string) ([]types.NewsItem, error) {
	if err := m.check(symbol); err != nil {
		return nil, err
	}
	p := profileFor(symbol)
	rng := rand.New(rand.NewSource(int64(p.seed) + 1))
	now := m.now().UTC()
	name := strings.ToUpper(symbol)

	items := make([]types.NewsItem, 0, 8)
	for i := 0; i < 8; i++ {
		title := fmt.Sprintf(mockHeadlines[rng.Intn(len(mockHeadlines))], name)
		items = append(items, types.NewsItem{
			Title:     title,
			Publisher: "MockWire",
			URL:       fmt.Sprintf("https://mock.invalid/%s/%d", strings.ToLower(name), i),
			Published: now.Add(-time.Duration(i*18) * time.Hour),
		})
	}
	return items, nil
}
