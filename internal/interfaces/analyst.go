package interfaces

import (
	"context"

	"investiq/internal/types"
)

// Analyst scores one symbol. Implementations absorb data failures into their
// neutral result and return an error only when ctx is done.
type Analyst[R any] interface {
	Name() string
	Analyze(ctx context.Context, symbol string) (R, error)
}

type (
	FundamentalAnalyst = Analyst[*types.FundamentalResult]
	SentimentAnalyst   = Analyst[*types.SentimentResult]
	TechnicalAnalyst   = Analyst[*types.TechnicalResult]
	RiskAnalyst        = Analyst[*types.RiskResult]
)
