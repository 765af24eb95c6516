package interfaces

import (
	"context"

	"investiq/internal/types"
)

type DecisionEngine interface {
	Analyze(ctx context.Context, symbol string) (*types.Decision, error)
}
