package marketdataobs

import (
	"context"
	"errors"
	"time"

	"investiq/internal/interfaces"
	"investiq/internal/logger"
	"investiq/internal/marketdata"
	"investiq/internal/metrics"
	"investiq/internal/trace"
	"investiq/internal/types"
)

// observableMarketData wraps a provider with tracing, logging and call metrics.
type observableMarketData struct {
	inner   interfaces.MarketData
	metrics *metrics.Registry
}

var _ interfaces.MarketData = (*observableMarketData)(nil)

// Wrap decorates a provider. m may be nil.
func Wrap(inner interfaces.MarketData, m *metrics.Registry) interfaces.MarketData {
	return &observableMarketData{inner: inner, metrics: m}
}

// Outcome classifies a provider error for the call counter.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, marketdata.ErrCircuitOpen):
		return "circuit_open"
	case errors.Is(err, marketdata.ErrDataUnavailable), errors.Is(err, marketdata.ErrUnknownSymbol):
		return "unavailable"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "error"
	}
}

func (o *observableMarketData) finish(ctx context.Context, op, symbol string, start time.Time, err error, fields ...any) {
	elapsed := time.Since(start)
	outcome := Outcome(err)
	o.metrics.ObserveProvider(op, outcome, elapsed)

	args := append([]any{"operation", op, "symbol", symbol, "outcome", outcome, "duration_ms", elapsed.Milliseconds()}, fields...)
	if err != nil {
		logger.WarnSkip(ctx, 2, "Market data call failed", append(args, "error", err)...)
		return
	}
	logger.DebugSkip(ctx, 2, "Market data call completed", args...)
}

func (o *observableMarketData) PriceHistory(ctx context.Context, symbol string, period types.Period) ([]types.Candle, error) {
	ctx, span := trace.StartSpan(ctx, "marketdata.PriceHistory")
	defer span.End()

	start := time.Now()
	candles, err := o.inner.PriceHistory(ctx, symbol, period)
	o.finish(ctx, marketdata.OpPriceHistory, symbol, start, err, "period", period, "candles", len(candles))
	return candles, err
}

func (o *observableMarketData) CompanyInfo(ctx context.Context, symbol string) (*types.CompanyInfo, error) {
	ctx, span := trace.StartSpan(ctx, "marketdata.CompanyInfo")
	defer span.End()

	start := time.Now()
	info, err := o.inner.CompanyInfo(ctx, symbol)
	o.finish(ctx, marketdata.OpCompanyInfo, symbol, start, err)
	return info, err
}

func (o *observableMarketData) FinancialStatements(ctx context.Context, symbol string) (*types.FinancialStatements, error) {
	ctx, span := trace.StartSpan(ctx, "marketdata.FinancialStatements")
	defer span.End()

	start := time.Now()
	fs, err := o.inner.FinancialStatements(ctx, symbol)
	o.finish(ctx, marketdata.OpFinancialStatements, symbol, start, err)
	return fs, err
}

func (o *observableMarketData) RecentNews(ctx context.Context, symbol string) ([]types.NewsItem, error) {
	ctx, span := trace.StartSpan(ctx, "marketdata.RecentNews")
	defer span.End()

	start := time.Now()
	items, err := o.inner.RecentNews(ctx, symbol)
	o.finish(ctx, marketdata.OpRecentNews, symbol, start, err, "items", len(items))
	return items, err
}
