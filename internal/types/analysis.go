package types

import (
	"strings"
	"time"
)

// Bias is the directional label an analyst attaches to its score.
type Bias string

const (
	BiasBullish         Bias = "Bullish"
	BiasSlightlyBullish Bias = "Slightly Bullish"
	BiasBullishCautious Bias = "Bullish but cautious"
	BiasNeutral         Bias = "Neutral"
	BiasSlightlyBearish Bias = "Slightly Bearish"
	BiasBearish         Bias = "Bearish"
	BiasUnknown         Bias = "Unknown"
)

// IsBullish matches on label text, so "Bullish but cautious" counts.
func (b Bias) IsBullish() bool { return strings.Contains(string(b), "Bullish") }
func (b Bias) IsBearish() bool { return strings.Contains(string(b), "Bearish") }
func (b Bias) IsNeutral() bool { return strings.Contains(string(b), "Neutral") }

type RiskLevel string

const (
	RiskVeryLow  RiskLevel = "Very Low"
	RiskLow      RiskLevel = "Low"
	RiskModerate RiskLevel = "Moderate"
	RiskHigh     RiskLevel = "High"
	RiskVeryHigh RiskLevel = "Very High"
	RiskUnknown  RiskLevel = "Unknown"
)

// Elevated reports High or Very High.
func (r RiskLevel) Elevated() bool {
	return r == RiskHigh || r == RiskVeryHigh
}

type Recommendation string

const (
	Buy   Recommendation = "Buy"
	Hold  Recommendation = "Hold"
	Sell  Recommendation = "Sell"
	Avoid Recommendation = "Avoid"
)

// Fundamental metric names, shared by metrics and normalized score maps.
const (
	MetricRevenueGrowth = "revenue_growth"
	MetricProfitMargin  = "profit_margin"
	MetricPERatio       = "pe_ratio"
	MetricDebtToEquity  = "debt_to_equity"
	MetricROE           = "roe"
)

type FundamentalMetrics struct {
	RevenueGrowth float64 `json:"revenue_growth"`
	ProfitMargin  float64 `json:"profit_margin"`
	PERatio       float64 `json:"pe_ratio"`
	DebtToEquity  float64 `json:"debt_to_equity"`
	ROE           float64 `json:"roe"`
	// Fallbacks names the metrics taken from company info instead of statements.
	Fallbacks []string `json:"fallbacks,omitempty"`
}

// Values returns the metrics keyed by name.
func (m FundamentalMetrics) Values() map[string]float64 {
	return map[string]float64{
		MetricRevenueGrowth: m.RevenueGrowth,
		MetricProfitMargin:  m.ProfitMargin,
		MetricPERatio:       m.PERatio,
		MetricDebtToEquity:  m.DebtToEquity,
		MetricROE:           m.ROE,
	}
}

type FundamentalResult struct {
	Score            float64             `json:"score"`
	Bias             Bias                `json:"bias"`
	Insights         []string            `json:"insights"`
	Metrics          *FundamentalMetrics `json:"metrics"`
	NormalizedScores map[string]float64  `json:"normalized_scores,omitempty"`
}

type SentimentPoint struct {
	Date      time.Time `json:"date"`
	Sentiment float64   `json:"sentiment"`
	Title     string    `json:"title"`
}

type SentimentSpike struct {
	Detected   bool    `json:"spike_detected"`
	Direction  string  `json:"direction,omitempty"`
	Magnitude  float64 `json:"magnitude,omitempty"`
	RecentNews string  `json:"recent_news,omitempty"`
}

type SentimentMetrics struct {
	AverageSentiment   float64          `json:"average_sentiment"`
	PositiveCount      int              `json:"positive_count"`
	NegativeCount      int              `json:"negative_count"`
	NeutralCount       int              `json:"neutral_count"`
	TotalCount         int              `json:"total_count"`
	PositivePercentage float64          `json:"positive_percentage"`
	Trend              []SentimentPoint `json:"sentiment_trend"`
}

type SentimentResult struct {
	Score              float64           `json:"score"`
	Bias               Bias              `json:"bias"`
	AverageSentiment   float64           `json:"average_sentiment"`
	PositivePercentage float64           `json:"positive_percentage"`
	TotalArticles      int               `json:"total_articles"`
	Spike              *SentimentSpike   `json:"spike"`
	Insights           []string          `json:"insights"`
	Metrics            *SentimentMetrics `json:"metrics,omitempty"`
}

type Trend string

const (
	TrendStrongUp   Trend = "Strong Uptrend"
	TrendWeakUp     Trend = "Weak Uptrend"
	TrendStrongDown Trend = "Strong Downtrend"
	TrendWeakDown   Trend = "Weak Downtrend"
	TrendSideways   Trend = "Sideways"
	TrendUnknown    Trend = "Unknown"
)

type MACD struct {
	MACD      Float `json:"macd"`
	Signal    Float `json:"signal"`
	Histogram Float `json:"histogram"`
}

type SupportResistance struct {
	Support              Float `json:"support"`
	Resistance           Float `json:"resistance"`
	CurrentPrice         Float `json:"current_price"`
	DistanceToSupport    Float `json:"distance_to_support"`
	DistanceToResistance Float `json:"distance_to_resistance"`
}

type Breakout struct {
	Detected  bool   `json:"breakout_detected"`
	Type      string `json:"type,omitempty"`
	Direction string `json:"direction,omitempty"`
}

type TechnicalIndicators struct {
	RSI                Float             `json:"rsi"`
	Trend              Trend             `json:"trend"`
	MACD               MACD              `json:"macd"`
	SupportResistance  SupportResistance `json:"support_resistance"`
	Breakout           Breakout          `json:"breakout"`
	OverboughtOversold string            `json:"overbought_oversold"`
	MovingAverages     map[string]Float  `json:"moving_averages"`
	PricePosition      Float             `json:"price_position"`
}

type TechnicalResult struct {
	Score      float64              `json:"score"`
	Bias       Bias                 `json:"bias"`
	Insights   []string             `json:"insights"`
	Indicators *TechnicalIndicators `json:"indicators"`
}

type VolatilityStats struct {
	AnnualVolatility Float  `json:"annual_volatility"`
	RecentVolatility Float  `json:"recent_volatility"`
	Trend            string `json:"volatility_trend"`
}

type DrawdownStats struct {
	MaxDrawdown     Float     `json:"max_drawdown"`
	CurrentDrawdown Float     `json:"current_drawdown"`
	PeakDate        time.Time `json:"peak_date"`
	TroughDate      time.Time `json:"trough_date"`
}

type StopLoss struct {
	Price             Float `json:"stop_loss_price"`
	Percentage        Float `json:"stop_loss_percentage"`
	DistanceFromPrice Float `json:"distance_from_price"`
}

type RiskMetrics struct {
	Volatility VolatilityStats `json:"volatility_data"`
	Drawdown   DrawdownStats   `json:"drawdown_data"`
}

type RiskResult struct {
	RiskLevel       RiskLevel    `json:"risk_level"`
	RiskScore       float64      `json:"risk_score"`
	Volatility      Float        `json:"volatility"`
	MaxDrawdown     Float        `json:"max_drawdown"`
	CurrentDrawdown Float        `json:"current_drawdown"`
	VaR             Float        `json:"var"`
	SharpeRatio     Float        `json:"sharpe_ratio"`
	RiskRewardRatio Float        `json:"risk_reward_ratio"`
	Recommendations []string     `json:"recommendations"`
	PositionSize    Float        `json:"position_size_suggestion"`
	StopLoss        *StopLoss    `json:"stop_loss,omitempty"`
	Metrics         *RiskMetrics `json:"metrics,omitempty"`
}

type AgentScores struct {
	Fundamental float64 `json:"fundamental"`
	Sentiment   float64 `json:"sentiment"`
	Technical   float64 `json:"technical"`
	Risk        float64 `json:"risk"`
}

type AgentBiases struct {
	Fundamental Bias      `json:"fundamental"`
	Sentiment   Bias      `json:"sentiment"`
	Technical   Bias      `json:"technical"`
	Risk        RiskLevel `json:"risk"`
}

type DetailedAnalysis struct {
	Fundamental *FundamentalResult `json:"fundamental"`
	Sentiment   *SentimentResult   `json:"sentiment"`
	Technical   *TechnicalResult   `json:"technical"`
	Risk        *RiskResult        `json:"risk"`
}

// Decision is the final output of one analysis call.
type Decision struct {
	Symbol           string           `json:"symbol"`
	Recommendation   Recommendation   `json:"recommendation"`
	Confidence       float64          `json:"confidence"`
	CombinedScore    float64          `json:"combined_score"`
	Reason           string           `json:"reason"`
	AgentScores      AgentScores      `json:"agent_scores"`
	AgentBiases      AgentBiases      `json:"agent_biases"`
	DetailedAnalysis DetailedAnalysis `json:"detailed_analysis"`
	AnalyzedAt       time.Time        `json:"analyzed_at"`
}
