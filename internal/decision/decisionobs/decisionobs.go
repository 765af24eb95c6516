package decisionobs

import (
	"context"
	"time"

	"investiq/internal/interfaces"
	"investiq/internal/logger"
	"investiq/internal/metrics"
	"investiq/internal/trace"
	"investiq/internal/types"
)

// ObservableEngine decorates a DecisionEngine with a span, a decision log
// line and recommendation counters.
type ObservableEngine struct {
	inner   interfaces.DecisionEngine
	metrics *metrics.Registry
}

var _ interfaces.DecisionEngine = (*ObservableEngine)(nil)

// Wrap decorates an engine. m may be nil.
func Wrap(inner interfaces.DecisionEngine, m *metrics.Registry) *ObservableEngine {
	return &ObservableEngine{inner: inner, metrics: m}
}

func (o *ObservableEngine) Analyze(ctx context.Context, symbol string) (*types.Decision, error) {
	ctx, span := trace.StartSpan(ctx, "decision.analyze")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Analysis started", "symbol", symbol)

	start := time.Now()
	d, err := o.inner.Analyze(ctx, symbol)
	elapsed := time.Since(start)
	o.metrics.ObserveAnalysis("decision", elapsed, err)

	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Analysis failed", err,
			"symbol", symbol,
			"duration_ms", elapsed.Milliseconds(),
		)
		return nil, err
	}

	o.metrics.CountRecommendation(string(d.Recommendation))
	logger.Decision(ctx, d.Symbol, string(d.Recommendation), d.Confidence, d.CombinedScore, d.Reason,
		"fundamental_bias", d.AgentBiases.Fundamental,
		"sentiment_bias", d.AgentBiases.Sentiment,
		"technical_bias", d.AgentBiases.Technical,
		"risk_level", d.AgentBiases.Risk,
		"duration_ms", elapsed.Milliseconds(),
	)
	return d, nil
}
