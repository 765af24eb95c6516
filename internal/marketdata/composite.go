package marketdata

import (
	"context"

	"investiq/internal/interfaces"
	"investiq/internal/types"
)

// Composite routes each capability to its own source.
type Composite struct {
	Prices       interfaces.PriceSource
	Fundamentals interfaces.FundamentalsSource
	News         interfaces.NewsSource
}

var _ interfaces.MarketData = (*Composite)(nil)

func (c *Composite) PriceHistory(ctx context.Context, symbol string, period types.Period) ([]types.Candle, error) {
	return c.Prices.PriceHistory(ctx, symbol, period)
}

func (c *Composite) CompanyInfo(ctx context.Context, symbol string) (*types.CompanyInfo, error) {
	return c.Fundamentals.CompanyInfo(ctx, symbol)
}

func (c *Composite) FinancialStatements(ctx context.Context, symbol string) (*types.FinancialStatements, error) {
	return c.Fundamentals.FinancialStatements(ctx, symbol)
}

func (c *Composite) RecentNews(ctx context.Context, symbol string) ([]types.NewsItem, error) {
	return c.News.RecentNews(ctx, symbol)
}
