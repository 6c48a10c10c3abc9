// Package scoring turns phoneme alignments into per-word errors and a
// bounded pronunciation score.
package scoring

// WordPhonemes is one word of a text together with its phonemes, as produced
// by phonemizing each word on its own.
type WordPhonemes struct {
	Word     string   `json:"word"`
	Phonemes []string `json:"phonemes"`
}

// WordSpan is the half-open range [Start, End) of a flat phoneme sequence
// attributed to one word. WordIndex is the word's position in the source
// word list, which survives the removal of unvoiced words.
type WordSpan struct {
	Word      string `json:"word"`
	WordIndex int    `json:"word_index"`
	Start     int    `json:"start"`
	End       int    `json:"end"`
}

// Len is the number of phonemes in the span.
func (s WordSpan) Len() int { return s.End - s.Start }

// UnvoicedWord is a word that produced no phonemes (bare punctuation, digits
// the phonemizer skipped, ...). It is kept out of the span math.
type UnvoicedWord struct {
	Word      string `json:"word"`
	WordIndex int    `json:"word_index"`
}

// WordIndex is the word structure rebuilt over a flat phoneme stream.
type WordIndex struct {
	Spans    []WordSpan
	Unvoiced []UnvoicedWord
	Phonemes []string // flattened phoneme sequence
	WordOf   []string // owning word of each phoneme
}

// BuildWordIndex lays the words end to end over one phoneme sequence. Spans
// keep the input order, are contiguous and cover every phoneme exactly once.
func BuildWordIndex(words []WordPhonemes) WordIndex {
	var idx WordIndex
	start := 0
	for i, w := range words {
		if len(w.Phonemes) == 0 {
			idx.Unvoiced = append(idx.Unvoiced, UnvoicedWord{Word: w.Word, WordIndex: i})
			continue
		}
		end := start + len(w.Phonemes)
		idx.Spans = append(idx.Spans, WordSpan{Word: w.Word, WordIndex: i, Start: start, End: end})
		idx.Phonemes = append(idx.Phonemes, w.Phonemes...)
		for range w.Phonemes {
			idx.WordOf = append(idx.WordOf, w.Word)
		}
		start = end
	}
	return idx
}

// SpanPhonemes returns the phonemes covered by span.
func (idx WordIndex) SpanPhonemes(span WordSpan) []string {
	return idx.Phonemes[span.Start:span.End]
}
