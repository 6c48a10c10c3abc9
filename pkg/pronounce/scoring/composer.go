package scoring

import (
	"math"

	"github.com/Halleck45/OpenPronounce/pkg/models"
)

const (
	DefaultMaxDTW = 500.0
	DefaultMaxLev = 30.0
)

// Weights of the three score components. They are hand-picked and can be
// tuned through configuration; nothing calibrates them automatically.
type Weights struct {
	DTW     float64 `yaml:"dtw" json:"dtw"`
	Phoneme float64 `yaml:"phoneme" json:"phoneme"`
	Word    float64 `yaml:"word" json:"word"`
}

// DefaultWeights returns the 0.4 / 0.3 / 0.3 split.
func DefaultWeights() Weights {
	return Weights{DTW: 0.4, Phoneme: 0.3, Word: 0.3}
}

// Composer folds three distances into one score in [0, 100].
type Composer struct {
	Weights Weights
	MaxDTW  float64 // normaliser of the embedding and phoneme distances
	MaxLev  float64 // normaliser of the word distance
}

// DefaultComposer returns the composer used when nothing is configured.
func DefaultComposer() Composer {
	return Composer{Weights: DefaultWeights(), MaxDTW: DefaultMaxDTW, MaxLev: DefaultMaxLev}
}

// Score composes the default-weighted score.
func Score(dtwDistance, phonemeDistance, wordDistance float64) float64 {
	return DefaultComposer().Score(dtwDistance, phonemeDistance, wordDistance)
}

// Score returns clamp(round2(weighted components), 0, 100). It never fails
// and never returns NaN or an infinity.
func (c Composer) Score(dtwDistance, phonemeDistance, wordDistance float64) float64 {
	maxDTW, maxLev := c.MaxDTW, c.MaxLev
	if !(maxDTW > 0) {
		maxDTW = DefaultMaxDTW
	}
	if !(maxLev > 0) {
		maxLev = DefaultMaxLev
	}

	raw := c.Weights.DTW*component(dtwDistance, maxDTW) +
		c.Weights.Phoneme*component(phonemeDistance, maxDTW) +
		c.Weights.Word*component(wordDistance, maxLev)
	if math.IsNaN(raw) {
		return 0
	}

	score := math.Round(raw*100) / 100
	return math.Max(0, math.Min(100, score))
}

// Breakdown scores the distances and returns them alongside the score.
func (c Composer) Breakdown(dtwDistance, phonemeDistance, wordDistance float64) models.ScoreBreakdown {
	return models.ScoreBreakdown{
		DTWDistance:     dtwDistance,
		PhonemeDistance: phonemeDistance,
		WordDistance:    wordDistance,
		FinalScore:      c.Score(dtwDistance, phonemeDistance, wordDistance),
	}
}

// component maps a distance to a 0-100 sub-score; negative distances give 100.
func component(x, max float64) float64 {
	switch {
	case math.IsNaN(x), math.IsInf(x, 1):
		return 0
	case x < 0:
		return 100
	}
	return math.Max(0, 100-(x/max)*100)
}
