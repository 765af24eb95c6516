package marketdata

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"investiq/internal/logger"
	"investiq/internal/metrics"
)

// Breakers keeps one circuit breaker per provider operation.
type Breakers struct {
	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker
	cfg      BreakerConfig
	metrics  *metrics.Registry
}

func NewBreakers(cfg BreakerConfig, m *metrics.Registry) *Breakers {
	return &Breakers{
		breakers: make(map[string]*gobreaker.CircuitBreaker),
		cfg:      cfg,
		metrics:  m,
	}
}

func (b *Breakers) get(name string) *gobreaker.CircuitBreaker {
	b.mu.Lock()
	defer b.mu.Unlock()

	if cb, ok := b.breakers[name]; ok {
		return cb
	}

	threshold := b.cfg.ConsecutiveFailures
	st := gobreaker.Settings{
		Name:        name,
		MaxRequests: b.cfg.HalfOpenRequests,
		Interval:    time.Duration(b.cfg.IntervalSeconds) * time.Second,
		Timeout:     time.Duration(b.cfg.OpenSeconds) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// Empty answers and callers giving up say nothing about upstream health.
		IsSuccessful: func(err error) bool {
			var gone callerGone
			return err == nil ||
				errors.Is(err, ErrDataUnavailable) ||
				errors.Is(err, ErrUnknownSymbol) ||
				errors.Is(err, context.Canceled) ||
				errors.As(err, &gone)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn(context.Background(), "Circuit breaker state changed",
				"breaker", name, "from", from.String(), "to", to.String())
			b.metrics.SetBreakerState(name, float64(to))
		},
	}
	cb := gobreaker.NewCircuitBreaker(st)
	b.breakers[name] = cb
	b.metrics.SetBreakerState(name, float64(gobreaker.StateClosed))
	return cb
}

// callerGone marks a failure that happened after the caller's context ended,
// whether by cancellation or by its deadline.
type callerGone struct{ err error }

func (e callerGone) Error() string { return e.err.Error() }
func (e callerGone) Unwrap() error { return e.err }

// Execute runs fn under the named breaker. Open and half-open rejections
// are reported as ErrCircuitOpen.
func (b *Breakers) Execute(name string, fn func() (any, error)) (any, error) {
	v, err := b.get(name).Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%s: %w: %w", name, ErrCircuitOpen, err)
	}
	return v, err
}

// State reports the current state of the named breaker.
func (b *Breakers) State(name string) gobreaker.State {
	return b.get(name).State()
}
