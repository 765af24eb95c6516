package report

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"investiq/internal/types"
)

// Format selects how a decision is rendered.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

var rule = strings.Repeat("=", 60)

// Render returns d as the full text report (agent views then the final
// decision) or as indented JSON.
func Render(d *types.Decision, format Format) (string, error) {
	if d == nil {
		return "", fmt.Errorf("no decision to render")
	}
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(d, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data), nil
	case FormatText, "":
		return Text(d), nil
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// Text renders the four agent views followed by the final decision block.
func Text(d *types.Decision) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\nAnalyzing %s with InvestIQ Multi-Agent System\n%s\n\n", rule, d.Symbol, rule)

	da := d.DetailedAnalysis
	sections := []struct {
		label string
		view  string
	}{
		{"Fundamental", FormatFundamental(da.Fundamental)},
		{"Sentiment", FormatSentiment(da.Sentiment)},
		{"Technical", FormatTechnical(da.Technical)},
		{"Risk", FormatRisk(da.Risk)},
	}
	for i, s := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "[*] Running %s Analysis...\n%s\n", s.label, s.view)
	}
	b.WriteString(FormatDecision(d))
	return b.String()
}

func FormatFundamental(r *types.FundamentalResult) string {
	if r == nil {
		return "Fundamental View:\n=> unavailable"
	}
	return view("Fundamental View:", r.Insights,
		"=> Score: "+FormatNumber(r.Score)+"/100",
		"=> Bias: "+string(r.Bias))
}

// FormatSentiment reports the average polarity, not the 0-100 score.
func FormatSentiment(r *types.SentimentResult) string {
	if r == nil {
		return "Sentiment View:\n=> unavailable"
	}
	return view("Sentiment View:", r.Insights,
		fmt.Sprintf("=> Score: %+.2f", r.AverageSentiment),
		"=> Bias: "+string(r.Bias))
}

func FormatTechnical(r *types.TechnicalResult) string {
	if r == nil {
		return "Technical View:\n=> unavailable"
	}
	return view("Technical View:", r.Insights,
		"=> Score: "+FormatNumber(r.Score)+"/100",
		"=> Bias: "+string(r.Bias))
}

// FormatRisk omits volatility and drawdown lines when they are zero or
// undefined, and shows only the first recommendation.
func FormatRisk(r *types.RiskResult) string {
	if r == nil {
		return "Risk View:\n=> unavailable"
	}
	var lines []string
	if r.Volatility.Valid() && r.Volatility > 0 {
		lines = append(lines, fmt.Sprintf("Volatility: %.2f%%", float64(r.Volatility)))
	}
	if r.MaxDrawdown.Valid() && r.MaxDrawdown != 0 {
		lines = append(lines, fmt.Sprintf("Max drawdown: %.2f%%", float64(r.MaxDrawdown)))
	}
	tail := []string{"=> Risk Level: " + string(r.RiskLevel)}
	if len(r.Recommendations) > 0 {
		tail = append(tail, "=> Recommendation: "+r.Recommendations[0])
	}
	return view("Risk View:", lines, tail...)
}

func FormatDecision(d *types.Decision) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\nFINAL DECISION\n%s\n\n", rule, rule)
	fmt.Fprintf(&b, "Symbol: %s\n", d.Symbol)
	fmt.Fprintf(&b, "=> Recommendation: %s\n", d.Recommendation)
	fmt.Fprintf(&b, "=> Confidence: %s%%\n", FormatNumber(d.Confidence))
	fmt.Fprintf(&b, "=> Combined Score: %s/100\n", FormatNumber(d.CombinedScore))
	fmt.Fprintf(&b, "=> Reason:\n   %s\n\n", d.Reason)

	b.WriteString("Agent Breakdown:\n")
	fmt.Fprintf(&b, "  - Fundamental: %s/100 (%s)\n", FormatNumber(d.AgentScores.Fundamental), d.AgentBiases.Fundamental)
	fmt.Fprintf(&b, "  - Sentiment: %s/100 (%s)\n", FormatNumber(d.AgentScores.Sentiment), d.AgentBiases.Sentiment)
	fmt.Fprintf(&b, "  - Technical: %s/100 (%s)\n", FormatNumber(d.AgentScores.Technical), d.AgentBiases.Technical)
	fmt.Fprintf(&b, "  - Risk: %s\n", d.AgentBiases.Risk)
	return b.String()
}

// FormatNumber prints the shortest representation and keeps a trailing ".0" on
// whole numbers, so 60 reads "60.0" and 62.35 reads "62.35".
func FormatNumber(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if strings.ContainsAny(s, ".NI") {
		return s
	}
	return s + ".0"
}

func view(header string, bullets []string, tail ...string) string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")
	for _, line := range bullets {
		fmt.Fprintf(&b, "- %s\n", line)
	}
	b.WriteString(strings.Join(tail, "\n"))
	return b.String()
}
