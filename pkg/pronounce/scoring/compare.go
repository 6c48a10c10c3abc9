package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/Halleck45/OpenPronounce/pkg/models"
	"github.com/Halleck45/OpenPronounce/pkg/pronounce/align"
	"github.com/Halleck45/OpenPronounce/pkg/pronounce/transcript"
)

// closeSimilarity is the Jaro-Winkler similarity from which a misheard word
// is reported as close to the expected one.
const closeSimilarity = 0.85

// Differences is everything the comparison of an expected and a transcribed
// text yields, ready to be scored and rendered.
type Differences struct {
	ExpectedPhonemes    []string           `json:"expected_phonemes"`
	TranscribedPhonemes []string           `json:"transcribed_phonemes"`
	Errors              []models.WordError `json:"errors"`
	WordsWithErrors     []string           `json:"words_with_errors"`
	Unvoiced            []UnvoicedWord     `json:"unvoiced,omitempty"`
	ExtraPhonemes       []string           `json:"extra_phonemes"` // transcript phonemes no expected phoneme maps to
	PhonemeDistance     int                `json:"phoneme_edit_distance"`
	PhoneticDTW         float64            `json:"phoneme_distance"`
	ExpectedCurve       []float64          `json:"expected_vector"`
	TranscribedCurve    []float64          `json:"transcribed_vector"`
	Feedback            string             `json:"feedback"`
}

// Compare aligns the phonemes of the expected words against those of the
// transcribed words and collects word errors, distances and plot curves.
// A nil detector uses DefaultDetector.
func Compare(expected, transcribed []WordPhonemes, det *Detector) Differences {
	if det == nil {
		det = DefaultDetector()
	}

	exp := BuildWordIndex(expected)
	got := BuildWordIndex(transcribed)

	ops := align.EditOpcodes(exp.Phonemes, got.Phonemes)
	amap := BuildAlignmentMap(ops, len(exp.Phonemes))
	errs := det.Detect(exp, got, amap)

	d := Differences{
		ExpectedPhonemes:    nonNil(exp.Phonemes),
		TranscribedPhonemes: nonNil(got.Phonemes),
		Errors:              errs,
		WordsWithErrors:     wordsWithErrors(errs),
		Unvoiced:            exp.Unvoiced,
		ExtraPhonemes:       []string{},
		PhonemeDistance:     align.Distance(exp.Phonemes, got.Phonemes),
	}
	if d.Errors == nil {
		d.Errors = []models.WordError{}
	}
	for _, j := range amap.Unattributed(len(got.Phonemes)) {
		d.ExtraPhonemes = append(d.ExtraPhonemes, got.Phonemes[j])
	}

	expCodes := PhonemeCodes(exp.Phonemes)
	gotCodes := PhonemeCodes(got.Phonemes)
	d.PhoneticDTW = phoneticDistance(expCodes, gotCodes)
	if c1, c2, err := align.AlignCurves(expCodes, gotCodes); err == nil {
		d.ExpectedCurve, d.TranscribedCurve = c1, c2
	}
	if d.ExpectedCurve == nil {
		d.ExpectedCurve, d.TranscribedCurve = []float64{}, []float64{}
	}

	d.Feedback = Feedback(errs)
	return d
}

// PhonemeCodes maps every phoneme to the sum of its code points, a crude
// scalar that keeps similar symbols numerically close.
func PhonemeCodes(phonemes []string) []float64 {
	out := make([]float64, len(phonemes))
	for i, p := range phonemes {
		var sum float64
		for _, r := range p {
			sum += float64(r)
		}
		out[i] = sum
	}
	return out
}

// phoneticDistance is the scalar DTW cost between two code curves. Against
// an empty side the cost is the total magnitude of the other.
func phoneticDistance(a, b []float64) float64 {
	cost, _, err := align.DTW(align.ScalarFrames(a), align.ScalarFrames(b), nil)
	if err == nil {
		return cost
	}
	var total float64
	for _, seq := range [][]float64{a, b} {
		for _, v := range seq {
			total += math.Abs(v)
		}
	}
	return total
}

func wordsWithErrors(errs []models.WordError) []string {
	out := []string{}
	seen := make(map[string]bool)
	for _, e := range errs {
		if seen[e.ExpectedWord] {
			continue
		}
		seen[e.ExpectedWord] = true
		out = append(out, e.ExpectedWord)
	}
	return out
}

// Feedback renders word errors as a short human readable report.
func Feedback(errs []models.WordError) string {
	var b strings.Builder
	b.WriteString("Feedback on your pronunciation:\n")
	if len(errs) == 0 {
		b.WriteString("Excellent pronunciation, no word to work on.\n")
		return b.String()
	}

	b.WriteString("Work on these words: ")
	b.WriteString(strings.Join(wordsWithErrors(errs), ", "))
	b.WriteString("\n")
	for _, e := range errs {
		switch {
		case e.Missing():
			fmt.Fprintf(&b, "- %q was not heard\n", e.ExpectedWord)
		case transcript.Similarity(e.ExpectedWord, e.ActualWord) >= closeSimilarity,
			transcript.SoundsAlike(e.ExpectedWord, e.ActualWord):
			fmt.Fprintf(&b, "- %q sounded like %q, almost there [%s] vs [%s]\n",
				e.ExpectedWord, e.ActualWord, e.ExpectedPhonemes, e.ActualPhonemes)
		default:
			fmt.Fprintf(&b, "- %q sounded like %q [%s] vs [%s]\n",
				e.ExpectedWord, e.ActualWord, e.ExpectedPhonemes, e.ActualPhonemes)
		}
	}
	return b.String()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
