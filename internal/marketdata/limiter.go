package marketdata

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Limiters hands out one token bucket per upstream.
type Limiters struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

func NewLimiters(cfg RateLimitConfig) *Limiters {
	return &Limiters{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(cfg.RequestsPerSecond),
		burst:    cfg.Burst,
	}
}

func (l *Limiters) get(upstream string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.limiters[upstream]
	if !ok {
		lim = rate.NewLimiter(l.rps, l.burst)
		l.limiters[upstream] = lim
	}
	return lim
}

// Wait blocks until the upstream has a token or ctx is done.
func (l *Limiters) Wait(ctx context.Context, upstream string) error {
	if l == nil {
		return nil
	}
	return l.get(upstream).Wait(ctx)
}
