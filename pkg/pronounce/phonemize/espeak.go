// Package phonemize turns words into IPA phoneme tokens with espeak-ng.
package phonemize

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/Halleck45/OpenPronounce/pkg/pronounce/scoring"
	"github.com/Halleck45/OpenPronounce/pkg/pronounce/transcript"
)

// ErrNoPhonemes is returned when none of the words produced a phoneme.
var ErrNoPhonemes = errors.New("phonemize: no phonemes produced")

// Phonemizer converts words to phoneme tokens, one entry per input word.
type Phonemizer interface {
	PhonemizeWords(ctx context.Context, words []string) ([]scoring.WordPhonemes, error)
}

// Runner executes an external command and returns its standard output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return nil, fmt.Errorf("%s: %v (%s)", name, err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

// Espeak phonemizes through the espeak-ng binary, one process per distinct
// word. Results are cached for the lifetime of the value.
type Espeak struct {
	Binary  string
	Voice   string
	Timeout time.Duration
	Run     Runner

	mu    sync.Mutex
	cache map[string][]string
}

// NewEspeak returns an Espeak for voice ("en-us" when empty).
func NewEspeak(voice string) *Espeak {
	if voice == "" {
		voice = "en-us"
	}
	return &Espeak{
		Binary:  "espeak-ng",
		Voice:   voice,
		Timeout: 5 * time.Second,
		Run:     execRunner,
		cache:   make(map[string][]string),
	}
}

// PhonemizeWords keeps the input order. Words that are only punctuation get
// an empty phoneme list instead of an error.
func (e *Espeak) PhonemizeWords(ctx context.Context, words []string) ([]scoring.WordPhonemes, error) {
	out := make([]scoring.WordPhonemes, len(words))
	voiced := 0
	for i, w := range words {
		ph, err := e.word(ctx, w)
		if err != nil {
			return nil, fmt.Errorf("phonemize %q: %w", w, err)
		}
		out[i] = scoring.WordPhonemes{Word: w, Phonemes: ph}
		if len(ph) > 0 {
			voiced++
		}
	}
	if len(words) > 0 && voiced == 0 {
		return out, ErrNoPhonemes
	}
	return out, nil
}

func (e *Espeak) word(ctx context.Context, w string) ([]string, error) {
	key := transcript.Clean(w)
	if key == "" {
		return nil, nil
	}

	e.mu.Lock()
	if e.cache == nil {
		e.cache = make(map[string][]string)
	}
	if ph, ok := e.cache[key]; ok {
		e.mu.Unlock()
		return ph, nil
	}
	e.mu.Unlock()

	if _, ok := ctx.Deadline(); !ok && e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	run := e.Run
	if run == nil {
		run = execRunner
	}
	raw, err := run(ctx, e.Binary, "-q", "--ipa", "-v", e.Voice, "--sep=_", key)
	if err != nil {
		return nil, err
	}
	ph := ParseIPA(string(raw))

	e.mu.Lock()
	e.cache[key] = ph
	e.mu.Unlock()
	return ph, nil
}

// ParseIPA splits espeak-ng "--sep=_" output into phoneme tokens, dropping
// stress marks and word boundaries.
func ParseIPA(raw string) []string {
	raw = strings.NewReplacer("ˈ", "", "ˌ", "").Replace(raw)
	var out []string
	for _, chunk := range strings.Fields(raw) {
		for _, p := range strings.Split(chunk, "_") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// SplitWords splits text on whitespace, keeping punctuation attached.
func SplitWords(text string) []string {
	return strings.Fields(text)
}
