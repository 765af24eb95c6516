package interfaces

import (
	"context"

	"investiq/internal/types"
)

// PriceSource returns chronological daily candles.
type PriceSource interface {
	PriceHistory(ctx context.Context, symbol string, period types.Period) ([]types.Candle, error)
}

// FundamentalsSource returns company summary fields and statements.
type FundamentalsSource interface {
	CompanyInfo(ctx context.Context, symbol string) (*types.CompanyInfo, error)
	FinancialStatements(ctx context.Context, symbol string) (*types.FinancialStatements, error)
}

// NewsSource returns recent news items in provider order.
type NewsSource interface {
	RecentNews(ctx context.Context, symbol string) ([]types.NewsItem, error)
}

// MarketData is the full provider capability set.
type MarketData interface {
	PriceSource
	FundamentalsSource
	NewsSource
}
