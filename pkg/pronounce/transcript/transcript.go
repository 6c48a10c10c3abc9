// Package transcript normalises recogniser output and measures how far it is
// from the expected text, at word and character level.
package transcript

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/antzucaro/matchr"
	"github.com/texttheater/golang-levenshtein/levenshtein"

	"github.com/Halleck45/OpenPronounce/pkg/pronounce/align"
)

// Clean lowercases text and keeps only letters, apostrophes and single
// spaces between words.
func Clean(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r), r == '\'':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Words returns the cleaned word tokens of text.
func Words(text string) []string {
	return strings.Fields(Clean(text))
}

// WordDistance is the edit distance between the cleaned word sequences of
// expected and actual.
func WordDistance(expected, actual string) int {
	return align.Distance(Words(expected), Words(actual))
}

// CharDistance is the character-level Levenshtein distance between the
// lowercased, trimmed strings.
func CharDistance(expected, actual string) int {
	return matchr.Levenshtein(
		strings.ToLower(strings.TrimSpace(expected)),
		strings.ToLower(strings.TrimSpace(actual)),
	)
}

// Similarity is the Jaro-Winkler similarity of two words, case-insensitive.
func Similarity(a, b string) float64 {
	return matchr.JaroWinkler(strings.ToLower(a), strings.ToLower(b), false)
}

// SoundsAlike reports whether two words share a Double Metaphone code.
func SoundsAlike(a, b string) bool {
	ap, as := matchr.DoubleMetaphone(strings.ToLower(a))
	bp, bs := matchr.DoubleMetaphone(strings.ToLower(b))
	for _, x := range []string{ap, as} {
		if x == "" {
			continue
		}
		if x == bp || x == bs {
			return true
		}
	}
	return false
}

var runeOptions = levenshtein.Options{
	InsCost: 1,
	DelCost: 1,
	SubCost: 1,
	Matches: levenshtein.IdenticalRunes,
}

// WER is the word error rate of hypothesis against reference, after
// cleaning both. An empty reference with a non-empty hypothesis is reported
// as 1.0 together with an error, the rate having no denominator.
func WER(reference, hypothesis string) (float64, error) {
	ref := Words(reference)
	hyp := Words(hypothesis)
	if len(ref) == 0 {
		if len(hyp) == 0 {
			return 0, nil
		}
		return 1, fmt.Errorf("reference has no words, cannot normalize WER (hypothesis: %d words)", len(hyp))
	}
	return float64(align.Distance(ref, hyp)) / float64(len(ref)), nil
}

// CER is the character error rate of hypothesis against reference, computed
// over the cleaned texts.
func CER(reference, hypothesis string) (float64, error) {
	ref := []rune(Clean(reference))
	hyp := []rune(Clean(hypothesis))
	if len(ref) == 0 {
		if len(hyp) == 0 {
			return 0, nil
		}
		return 1, fmt.Errorf("reference is empty, cannot normalize CER (hypothesis: %d chars)", len(hyp))
	}
	d := levenshtein.DistanceForStrings(ref, hyp, runeOptions)
	return float64(d) / float64(len(ref)), nil
}
