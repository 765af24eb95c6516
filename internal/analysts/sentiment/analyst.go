package sentiment

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"investiq/internal/interfaces"
	"investiq/internal/logger"
	"investiq/internal/ta"
	"investiq/internal/types"
)

const (
	Name = "sentiment"

	trendTitleLen = 50
)

// Polarizer scores text on [-1, 1].
type Polarizer interface {
	Polarity(text string) float64
}

// Analyst scores the tone of recent news.
type Analyst struct {
	source interfaces.NewsSource
	scorer Polarizer
	cfg    Config
	now    func() time.Time
}

func New(source interfaces.NewsSource, scorer Polarizer, cfg Config) *Analyst {
	return &Analyst{source: source, scorer: scorer, cfg: cfg, now: time.Now}
}

func (a *Analyst) Name() string { return Name }

func (a *Analyst) Analyze(ctx context.Context, symbol string) (*types.SentimentResult, error) {
	items, err := a.source.RecentNews(ctx, symbol)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		logger.Warn(ctx, "News unavailable", "symbol", symbol, "error", err)
		items = nil
	}

	items = a.recent(items)
	if len(items) == 0 {
		return NoNews(), nil
	}

	metrics := a.Metrics(items)
	spike := a.DetectSpike(metrics.Trend)

	insights := []string{formatPct(metrics.PositivePercentage) + "% positive mentions"}
	if spike != nil && spike.Detected {
		insights = append(insights, fmt.Sprintf("Sudden %s spike after: %s", spike.Direction, spike.RecentNews))
	}

	return &types.SentimentResult{
		Score:              Score(metrics.AverageSentiment),
		Bias:               a.DetermineBias(metrics.AverageSentiment),
		AverageSentiment:   metrics.AverageSentiment,
		PositivePercentage: metrics.PositivePercentage,
		TotalArticles:      metrics.TotalCount,
		Spike:              spike,
		Insights:           insights,
		Metrics:            &metrics,
	}, nil
}

// NoNews is the neutral result when nothing was published in the window.
func NoNews() *types.SentimentResult {
	return &types.SentimentResult{
		Score:    50,
		Bias:     types.BiasNeutral,
		Insights: []string{"No recent news available"},
	}
}

// recent keeps items inside the lookback window, newest first, capped.
func (a *Analyst) recent(items []types.NewsItem) []types.NewsItem {
	cutoff := a.now().AddDate(0, 0, -a.cfg.LookbackDays)
	out := make([]types.NewsItem, 0, len(items))
	for _, it := range items {
		if !it.Published.Before(cutoff) {
			out = append(out, it)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Published.After(out[j].Published)
	})
	if len(out) > a.cfg.MaxArticles {
		out = out[:a.cfg.MaxArticles]
	}
	return out
}

func (a *Analyst) Metrics(items []types.NewsItem) types.SentimentMetrics {
	m := types.SentimentMetrics{
		TotalCount: len(items),
		Trend:      make([]types.SentimentPoint, 0, len(items)),
	}
	sum := 0.0
	for _, it := range items {
		p := a.scorer.Polarity(it.Title + " " + it.Summary)
		sum += p
		switch {
		case p > a.cfg.DeadZone:
			m.PositiveCount++
		case p < -a.cfg.DeadZone:
			m.NegativeCount++
		default:
			m.NeutralCount++
		}
		m.Trend = append(m.Trend, types.SentimentPoint{
			Date:      it.Published,
			Sentiment: p,
			Title:     truncate(it.Title, trendTitleLen),
		})
	}
	if m.TotalCount > 0 {
		m.AverageSentiment = sum / float64(m.TotalCount)
		m.PositivePercentage = ta.Round(float64(m.PositiveCount)/float64(m.TotalCount)*100, 2)
	}
	return m
}

// DetectSpike compares the latest SpikeRecent polarities with the rest of
// the last SpikeWindow points. It returns nil below two points.
func (a *Analyst) DetectSpike(trend []types.SentimentPoint) *types.SentimentSpike {
	if len(trend) < 2 {
		return nil
	}
	sorted := append([]types.SentimentPoint(nil), trend...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	window := sorted
	if len(window) > a.cfg.SpikeWindow {
		window = window[len(window)-a.cfg.SpikeWindow:]
	}
	vals := make([]float64, len(window))
	for i, p := range window {
		vals[i] = p.Sentiment
	}

	recentVals := vals
	if len(vals) > a.cfg.SpikeRecent {
		recentVals = vals[len(vals)-a.cfg.SpikeRecent:]
	}
	recentAvg := ta.Mean(recentVals)
	previousAvg := vals[0]
	if len(vals) > a.cfg.SpikeRecent {
		previousAvg = ta.Mean(vals[:len(vals)-a.cfg.SpikeRecent])
	}

	change := recentAvg - previousAvg
	if math.Abs(change) <= a.cfg.SpikeThreshold {
		return &types.SentimentSpike{Detected: false}
	}
	direction := "positive"
	if change < 0 {
		direction = "negative"
	}
	return &types.SentimentSpike{
		Detected:   true,
		Direction:  direction,
		Magnitude:  math.Abs(change),
		RecentNews: sorted[len(sorted)-1].Title,
	}
}

// Score maps average polarity onto [0, 100] with 0 at 50.
func Score(avg float64) float64 {
	return ta.Clamp(ta.Round(50+avg*50, 2), 0, 100)
}

func (a *Analyst) DetermineBias(avg float64) types.Bias {
	b := a.cfg.Bias
	switch {
	case avg > b.Bullish:
		return types.BiasBullish
	case avg > b.SlightlyBullish:
		return types.BiasSlightlyBullish
	case avg > b.Neutral:
		return types.BiasNeutral
	case avg > b.SlightlyBearish:
		return types.BiasSlightlyBearish
	default:
		return types.BiasBearish
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// formatPct keeps one decimal for whole numbers, e.g. 100.0 and 66.67.
func formatPct(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if strings.Contains(s, ".") {
		return s
	}
	return s + ".0"
}
