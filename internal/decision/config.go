package decision

import (
	"errors"
	"fmt"
	"math"
)

type Weights struct {
	Fundamental float64 `yaml:"fundamental"`
	Sentiment   float64 `yaml:"sentiment"`
	Technical   float64 `yaml:"technical"`
	Risk        float64 `yaml:"risk"`
}

func (w Weights) Sum() float64 {
	return w.Fundamental + w.Sentiment + w.Technical + w.Risk
}

// Thresholds are the combined-score floors of each recommendation branch.
type Thresholds struct {
	Strong   float64 `yaml:"strong"`
	Positive float64 `yaml:"positive"`
	Moderate float64 `yaml:"moderate"`
	Weak     float64 `yaml:"weak"`
}

type Confidence struct {
	Unanimous   float64 `yaml:"unanimous"`
	Split       float64 `yaml:"split"`
	Divided     float64 `yaml:"divided"`
	TightSpread float64 `yaml:"tight_spread"`
	WideSpread  float64 `yaml:"wide_spread"`
	Adjustment  float64 `yaml:"adjustment"`
	Min         float64 `yaml:"min"`
	Max         float64 `yaml:"max"`
}

type Config struct {
	Weights    Weights    `yaml:"weights"`
	Thresholds Thresholds `yaml:"thresholds"`
	Confidence Confidence `yaml:"confidence"`
}

func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			Fundamental: 0.30,
			Sentiment:   0.20,
			Technical:   0.30,
			Risk:        0.20,
		},
		Thresholds: Thresholds{
			Strong:   70,
			Positive: 55,
			Moderate: 45,
			Weak:     30,
		},
		Confidence: Confidence{
			Unanimous:   85,
			Split:       65,
			Divided:     45,
			TightSpread: 20,
			WideSpread:  40,
			Adjustment:  10,
			Min:         30,
			Max:         95,
		},
	}
}

func (c Config) Validate() error {
	if math.Abs(c.Weights.Sum()-1.0) > 1e-6 {
		return fmt.Errorf("decision weights must sum to 1.0, got %.4f", c.Weights.Sum())
	}
	t := c.Thresholds
	if !(t.Strong >= t.Positive && t.Positive >= t.Moderate && t.Moderate >= t.Weak) {
		return errors.New("decision thresholds must be descending")
	}
	if c.Confidence.Min > c.Confidence.Max {
		return errors.New("decision confidence min must not exceed max")
	}
	return nil
}
