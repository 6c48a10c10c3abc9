package scoring

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Halleck45/OpenPronounce/pkg/models"
	"github.com/Halleck45/OpenPronounce/pkg/pronounce/align"
)

// DefaultMismatchThreshold is the fraction of a word's phoneme count allowed
// as edit distance before the word is flagged.
const DefaultMismatchThreshold = 0.4

// ErrInvalidThreshold is returned for mismatch thresholds outside (0, 1].
var ErrInvalidThreshold = errors.New("scoring: mismatch threshold must be in (0, 1]")

// Detector flags expected words whose aligned transcript phonemes are too far
// from the expected ones.
type Detector struct {
	threshold float64
}

// NewDetector returns a Detector using threshold as mismatch slack.
func NewDetector(threshold float64) (*Detector, error) {
	// written so that NaN is rejected too
	if !(threshold > 0 && threshold <= 1) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidThreshold, threshold)
	}
	return &Detector{threshold: threshold}, nil
}

// DefaultDetector returns a Detector with DefaultMismatchThreshold.
func DefaultDetector() *Detector {
	return &Detector{threshold: DefaultMismatchThreshold}
}

// Threshold returns the configured mismatch slack.
func (d *Detector) Threshold() float64 { return d.threshold }

// Detect walks the expected word spans in order and returns at most one
// WordError per span. amap must come from BuildAlignmentMap over
// expected.Phonemes and transcribed.Phonemes.
//
// Repeated transcript words that land in the same span are coalesced to one
// appearance in ActualWord ("that that" reads as "that").
func (d *Detector) Detect(expected, transcribed WordIndex, amap AlignmentMap) []models.WordError {
	var errs []models.WordError

	for _, span := range expected.Spans {
		want := expected.SpanPhonemes(span)
		targets := amap.Targets(span.Start, span.End)

		if len(targets) == 0 {
			errs = append(errs, models.WordError{
				Position:         span.WordIndex,
				ExpectedWord:     span.Word,
				ExpectedPhonemes: strings.Join(want, " "),
			})
			continue
		}

		var actualWords []string
		seen := make(map[string]bool)
		got := make([]string, 0, len(targets))
		for _, j := range targets {
			if j < 0 || j >= len(transcribed.Phonemes) {
				continue
			}
			got = append(got, transcribed.Phonemes[j])
			if j < len(transcribed.WordOf) {
				w := transcribed.WordOf[j]
				if !seen[w] {
					seen[w] = true
					actualWords = append(actualWords, w)
				}
			}
		}

		dist := align.Distance(want, got)
		if float64(dist) > float64(len(want))*d.threshold {
			errs = append(errs, models.WordError{
				Position:         span.WordIndex,
				ExpectedWord:     span.Word,
				ExpectedPhonemes: strings.Join(want, " "),
				ActualWord:       strings.Join(actualWords, " "),
				ActualPhonemes:   strings.Join(got, " "),
			})
		}
	}
	return errs
}
