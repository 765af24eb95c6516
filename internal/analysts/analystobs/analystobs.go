package analystobs

import (
	"context"
	"time"

	"investiq/internal/interfaces"
	"investiq/internal/logger"
	"investiq/internal/metrics"
	"investiq/internal/trace"
)

// observableAnalyst wraps any analyst with tracing, logging and timing.
type observableAnalyst[R any] struct {
	inner   interfaces.Analyst[R]
	metrics *metrics.Registry
}

// Wrap decorates an analyst. m may be nil.
func Wrap[R any](inner interfaces.Analyst[R], m *metrics.Registry) interfaces.Analyst[R] {
	return &observableAnalyst[R]{inner: inner, metrics: m}
}

func (o *observableAnalyst[R]) Name() string { return o.inner.Name() }

func (o *observableAnalyst[R]) Analyze(ctx context.Context, symbol string) (R, error) {
	name := o.inner.Name()
	ctx, span := trace.StartSpan(ctx, "analyst."+name)
	defer span.End()

	logger.DebugSkip(ctx, 1, "Analyst started", "analyst", name, "symbol", symbol)

	start := time.Now()
	res, err := o.inner.Analyze(ctx, symbol)
	elapsed := time.Since(start)
	o.metrics.ObserveAnalysis(name, elapsed, err)

	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Analyst failed", err,
			"analyst", name,
			"symbol", symbol,
			"duration_ms", elapsed.Milliseconds(),
		)
		var zero R
		return zero, err
	}

	logger.InfoSkip(ctx, 1, "Analyst completed",
		"analyst", name,
		"symbol", symbol,
		"duration_ms", elapsed.Milliseconds(),
	)
	return res, nil
}
