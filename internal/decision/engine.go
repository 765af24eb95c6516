package decision

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"investiq/internal/interfaces"
	"investiq/internal/types"
)

// Engine runs the four analysts concurrently and combines their results.
type Engine struct {
	fundamental interfaces.FundamentalAnalyst
	sentiment   interfaces.SentimentAnalyst
	technical   interfaces.TechnicalAnalyst
	risk        interfaces.RiskAnalyst
	cfg         Config
	now         func() time.Time
}

var _ interfaces.DecisionEngine = (*Engine)(nil)

func New(
	fundamental interfaces.FundamentalAnalyst,
	sentiment interfaces.SentimentAnalyst,
	technical interfaces.TechnicalAnalyst,
	risk interfaces.RiskAnalyst,
	cfg Config,
) *Engine {
	return &Engine{
		fundamental: fundamental,
		sentiment:   sentiment,
		technical:   technical,
		risk:        risk,
		cfg:         cfg,
		now:         time.Now,
	}
}

// Analyze returns a complete Decision, or an error and no Decision when any
// analyst fails.
func (e *Engine) Analyze(ctx context.Context, symbol string) (*types.Decision, error) {
	var (
		fund *types.FundamentalResult
		sent *types.SentimentResult
		tech *types.TechnicalResult
		risk *types.RiskResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		fund, err = e.fundamental.Analyze(gctx, symbol)
		return err
	})
	g.Go(func() (err error) {
		sent, err = e.sentiment.Analyze(gctx, symbol)
		return err
	})
	g.Go(func() (err error) {
		tech, err = e.technical.Analyze(gctx, symbol)
		return err
	})
	g.Go(func() (err error) {
		risk, err = e.risk.Analyze(gctx, symbol)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("analysis of %s failed: %w", symbol, err)
	}

	return e.Combine(symbol, fund, sent, tech, risk), nil
}

// Combine assembles the Decision from the four agent results.
func (e *Engine) Combine(
	symbol string,
	fund *types.FundamentalResult,
	sent *types.SentimentResult,
	tech *types.TechnicalResult,
	risk *types.RiskResult,
) *types.Decision {
	scores := types.AgentScores{
		Fundamental: fund.Score,
		Sentiment:   sent.Score,
		Technical:   tech.Score,
		Risk:        NormalizeRiskScore(risk.RiskLevel),
	}
	biases := []types.Bias{fund.Bias, sent.Bias, tech.Bias}

	combined := e.cfg.CombineScores(scores)
	rec, reason := e.cfg.DetermineRecommendation(combined, biases, risk.RiskLevel)

	return &types.Decision{
		Symbol:         symbol,
		Recommendation: rec,
		Confidence:     e.cfg.CalculateConfidence(scores, biases),
		CombinedScore:  combined,
		Reason:         reason,
		AgentScores:    scores,
		AgentBiases: types.AgentBiases{
			Fundamental: fund.Bias,
			Sentiment:   sent.Bias,
			Technical:   tech.Bias,
			Risk:        risk.RiskLevel,
		},
		DetailedAnalysis: types.DetailedAnalysis{
			Fundamental: fund,
			Sentiment:   sent,
			Technical:   tech,
			Risk:        risk,
		},
		AnalyzedAt: e.now().UTC(),
	}
}
