package models

// WordError flags one expected word that was mispronounced or missing.
// ActualWord and ActualPhonemes are empty when nothing in the transcript
// aligned with the expected word.
type WordError struct {
	Position         int    `json:"position"` // index of the word in the expected text
	ExpectedWord     string `json:"expected_word"`
	ExpectedPhonemes string `json:"expected_phonemes"`
	ActualWord       string `json:"actual_word"`
	ActualPhonemes   string `json:"actual_phonemes"`
}

// Missing reports whether the word had no counterpart in the transcript.
func (e WordError) Missing() bool {
	return e.ActualWord == "" && e.ActualPhonemes == ""
}

// ScoreBreakdown holds the distances that went into a score and the score
// itself, always within [0, 100].
type ScoreBreakdown struct {
	DTWDistance     float64 `json:"dtw_distance"`
	PhonemeDistance float64 `json:"phoneme_distance"`
	WordDistance    float64 `json:"word_distance"`
	FinalScore      float64 `json:"final_score"`
}

// AttemptSummary is the stored record of one scored utterance.
type AttemptSummary struct {
	ID           string  `json:"id"`            // UUID of the attempt
	ExpectedText string  `json:"expected_text"` // Text the speaker was asked to read
	Transcript   string  `json:"transcript"`    // What the transcriber heard
	Score        float64 `json:"score"`         // Final score (0-100)
	WER          float64 `json:"wer"`           // Word error rate of the transcript
	CER          float64 `json:"cer"`           // Character error rate of the transcript
	CreatedAtMs  int64   `json:"created_at_ms"` // Unix milliseconds
}
