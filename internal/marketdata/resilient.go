package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"investiq/internal/interfaces"
	"investiq/internal/logger"
	"investiq/internal/metrics"
	"investiq/internal/types"
)

const (
	OpPriceHistory        = "price_history"
	OpCompanyInfo         = "company_info"
	OpFinancialStatements = "financial_statements"
	OpRecentNews          = "recent_news"
)

// ResilientOptions configures the decorations applied around a provider.
// Cache, Limiters and Breakers may each be nil.
type ResilientOptions struct {
	Cache    interfaces.Cache
	TTL      time.Duration
	Limiters *Limiters
	Breakers *Breakers
	Metrics  *metrics.Registry
	// Upstreams names the rate-limit bucket for each operation.
	Upstreams map[string]string
}

// Resilient consults the cache, then waits on the upstream rate limiter,
// then calls through the operation's circuit breaker. It never retries.
// Concurrent calls for the same key share one upstream request.
type Resilient struct {
	inner    interfaces.MarketData
	opts     ResilientOptions
	inflight singleflight.Group
}

var _ interfaces.MarketData = (*Resilient)(nil)

func NewResilient(inner interfaces.MarketData, opts ResilientOptions) *Resilient {
	return &Resilient{inner: inner, opts: opts}
}

func (r *Resilient) upstream(op string) string {
	if u, ok := r.opts.Upstreams[op]; ok {
		return u
	}
	return op
}

func call[T any](ctx context.Context, r *Resilient, op, key string, fetch func(context.Context) (T, error), empty func(T) bool) (T, error) {
	var zero T

	if r.opts.Cache != nil {
		b, ok, err := r.opts.Cache.Get(ctx, key)
		switch {
		case err != nil:
			logger.Warn(ctx, "Cache lookup failed", "key", key, "error", err)
		case ok:
			var v T
			if err := json.Unmarshal(b, &v); err == nil {
				r.opts.Metrics.CacheLookup(true)
				return v, nil
			}
		}
		r.opts.Metrics.CacheLookup(false)
	}

	do := func() (any, error) {
		if err := r.opts.Limiters.Wait(ctx, r.upstream(op)); err != nil {
			return nil, err
		}
		fetchOnce := func() (any, error) {
			v, err := fetch(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil, callerGone{err}
				}
				return nil, err
			}
			if empty(v) {
				return nil, fmt.Errorf("%s returned nothing for %s: %w", op, key, ErrDataUnavailable)
			}
			return v, nil
		}
		if r.opts.Breakers != nil {
			return r.opts.Breakers.Execute(op, fetchOnce)
		}
		return fetchOnce()
	}

	var res singleflight.Result
	select {
	case res = <-r.inflight.DoChan(key, do):
	case <-ctx.Done():
		return zero, ctx.Err()
	}
	if res.Err != nil {
		return zero, res.Err
	}
	v := res.Val.(T)

	if r.opts.Cache != nil {
		if b, err := json.Marshal(v); err == nil {
			if err := r.opts.Cache.Set(ctx, key, b, r.opts.TTL); err != nil {
				logger.Warn(ctx, "Cache store failed", "key", key, "error", err)
			}
		}
	}
	return v, nil
}

func (r *Resilient) PriceHistory(ctx context.Context, symbol string, period types.Period) ([]types.Candle, error) {
	key := fmt.Sprintf("%s:%s:%s", OpPriceHistory, symbol, period)
	return call(ctx, r, OpPriceHistory, key,
		func(ctx context.Context) ([]types.Candle, error) { return r.inner.PriceHistory(ctx, symbol, period) },
		func(v []types.Candle) bool { return len(v) == 0 },
	)
}

func (r *Resilient) CompanyInfo(ctx context.Context, symbol string) (*types.CompanyInfo, error) {
	return call(ctx, r, OpCompanyInfo, OpCompanyInfo+":"+symbol,
		func(ctx context.Context) (*types.CompanyInfo, error) { return r.inner.CompanyInfo(ctx, symbol) },
		func(v *types.CompanyInfo) bool { return v == nil },
	)
}

func (r *Resilient) FinancialStatements(ctx context.Context, symbol string) (*types.FinancialStatements, error) {
	return call(ctx, r, OpFinancialStatements, OpFinancialStatements+":"+symbol,
		func(ctx context.Context) (*types.FinancialStatements, error) {
			return r.inner.FinancialStatements(ctx, symbol)
		},
		func(v *types.FinancialStatements) bool { return v == nil || (len(v.Income) == 0 && len(v.Balance) == 0) },
	)
}

// RecentNews treats an empty list as a valid answer; sentiment handles it.
func (r *Resilient) RecentNews(ctx context.Context, symbol string) ([]types.NewsItem, error) {
	return call(ctx, r, OpRecentNews, OpRecentNews+":"+symbol,
		func(ctx context.Context) ([]types.NewsItem, error) { return r.inner.RecentNews(ctx, symbol) },
		func(v []types.NewsItem) bool { return false },
	)
}
