package pronounce

import (
	"github.com/Halleck45/OpenPronounce/pkg/models"
	"github.com/Halleck45/OpenPronounce/pkg/pronounce/scoring"
)

// Analysis is the full result of scoring one recording against a text.
type Analysis struct {
	ID           string                `json:"id,omitempty"` // attempt ID when history is on
	ExpectedText string                `json:"expected_text"`
	Transcript   string                `json:"transcribe"`
	Score        float64               `json:"score"`
	Distance     float64               `json:"distance"` // embedding DTW distance to the reference
	Breakdown    models.ScoreBreakdown `json:"breakdown"`
	CharDistance int                   `json:"char_distance"`
	WER          float64               `json:"wer"`
	CER          float64               `json:"cer"`
	DurationSec  float64               `json:"duration_sec"`
	Differences  scoring.Differences   `json:"differences"`
	Feedback     string                `json:"feedback"`
	Prosody      Prosody               `json:"prosody"`
}

// Prosody holds the pitch and energy contours of the recording. Reference
// is nil when the reference audio could not be analysed.
type Prosody struct {
	F0        []float64          `json:"f0"`
	Energy    []float64          `json:"energy"`
	Reference *ProsodyComparison `json:"reference,omitempty"`
}

// ProsodyComparison pairs the user's contours with the reference ones,
// time-aligned with DTW so both curves have the same length.
type ProsodyComparison struct {
	F0     CurvePair `json:"f0"`
	Energy CurvePair `json:"energy"`
}

type CurvePair struct {
	User      []float64 `json:"user"`
	Reference []float64 `json:"reference"`
}

// PhonemeListing is the phonemization of a text, flattened and per word.
type PhonemeListing struct {
	Text          string                 `json:"text"`
	Phonemes      []string               `json:"phonemes"`
	PhonemeToWord []string               `json:"phoneme_to_word"`
	Words         []scoring.WordPhonemes `json:"words"`
}
