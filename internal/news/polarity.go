package news

import (
	"sort"
	"strings"
	"unicode"
)

// PolarityScorer rates short financial text on [-1, 1] using weighted word
// and phrase lists. Scores of matched terms are averaged; a negator within
// the two preceding tokens flips and halves a term, an intensifier scales it.
type PolarityScorer struct {
	words       map[string]float64
	phrases     []string
	phraseW     map[string]float64
	negators    map[string]bool
	intensifier map[string]float64
}

func NewPolarityScorer() *PolarityScorer {
	phraseW := loadPhraseWeights()
	phrases := make([]string, 0, len(phraseW))
	for p := range phraseW {
		phrases = append(phrases, p)
	}
	sort.Strings(phrases)

	return &PolarityScorer{
		words:       loadWordWeights(),
		phrases:     phrases,
		phraseW:     phraseW,
		negators:    setOf("not", "no", "never", "without", "isn", "wasn", "don", "doesn", "didn", "won", "cannot", "nor"),
		intensifier: map[string]float64{"very": 1.3, "highly": 1.3, "extremely": 1.5, "sharply": 1.4, "significantly": 1.3, "slightly": 0.5, "somewhat": 0.7},
	}
}

// Polarity returns 0 for empty or lexicon-free text.
func (ps *PolarityScorer) Polarity(text string) float64 {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return 0
	}

	var scores []float64
	for _, phrase := range ps.phrases {
		for i := strings.Count(text, phrase); i > 0; i-- {
			scores = append(scores, ps.phraseW[phrase])
		}
	}

	tokens := tokenize(text)
	for i, tok := range tokens {
		w, ok := ps.words[tok]
		if !ok {
			continue
		}
		if i > 0 {
			if m, ok := ps.intensifier[tokens[i-1]]; ok {
				w *= m
			}
		}
		for back := 1; back <= 2 && i-back >= 0; back++ {
			if ps.negators[tokens[i-back]] {
				w *= -0.5
				break
			}
		}
		scores = append(scores, w)
	}

	if len(scores) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	return min(max(sum/float64(len(scores)), -1.0), 1.0)
}

// tokenize splits on anything that is not a letter or digit
func tokenize(text string) []string {
	var words []string
	var current strings.Builder

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			current.WriteRune(r)
		} else if current.Len() > 0 {
			words = append(words, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		words = append(words, current.String())
	}
	return words
}

func setOf(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

// Word lists follow the Loughran-McDonald financial categories, weighted
// by strength.
func loadWordWeights() map[string]float64 {
	weights := map[string]float64{}
	add := func(w float64, words ...string) {
		for _, word := range words {
			weights[word] = w
		}
	}

	add(0.8, "soar", "soars", "soared", "skyrocket", "skyrockets", "blowout", "exceptional", "tremendous", "stellar")
	add(0.6, "surge", "surges", "surged", "rally", "rallies", "rallied", "outperform", "outperforms", "upgrade", "upgraded",
		"excellent", "record", "breakout", "beat", "beats", "jump", "jumps", "jumped", "boom", "bullish")
	add(0.5, "gain", "gains", "gained", "rise", "rises", "rose", "climb", "climbs", "climbed", "strong", "robust",
		"profit", "profitable", "growth", "grew", "win", "wins", "success", "successful", "optimistic", "upbeat", "buy")
	add(0.3, "improve", "improved", "improves", "improvement", "positive", "better", "good", "great", "solid", "recovery",
		"expand", "expands", "expansion", "innovative", "innovation", "leader", "leading", "opportunity", "favorable",
		"benefit", "dividend", "approval", "approved", "partnership", "higher", "up")
	add(-0.3, "concern", "concerns", "challenge", "challenging", "uncertain", "uncertainty", "volatile", "volatility",
		"risk", "risks", "pressure", "headwind", "headwinds", "slow", "slowdown", "lower", "down", "delay", "delayed")
	add(-0.5, "decline", "declines", "declined", "drop", "drops", "dropped", "fall", "falls", "fell", "loss", "losses",
		"weak", "weakness", "miss", "misses", "missed", "cut", "cuts", "negative", "poor", "worse", "sell", "disappoint",
		"disappointing", "disappoints", "underperform", "downgrade", "downgraded", "layoffs", "bearish", "warning")
	add(-0.7, "plunge", "plunges", "plunged", "slump", "slumps", "tumble", "tumbles", "tumbled", "crash", "crashes",
		"selloff", "lawsuit", "investigation", "recession", "crisis", "default", "bankruptcy", "worst")
	add(-0.8, "fraud", "scandal", "collapse", "collapses", "collapsed", "scam")
	return weights
}

func loadPhraseWeights() map[string]float64 {
	return map[string]float64{
		"all-time high":       0.7,
		"record high":         0.7,
		"beats estimates":     0.6,
		"beat expectations":   0.6,
		"raises guidance":     0.6,
		"price target raised": 0.5,
		"misses estimates":    -0.6,
		"cuts guidance":       -0.6,
		"price target cut":    -0.5,
		"52-week low":         -0.5,
		"profit warning":      -0.7,
	}
}
