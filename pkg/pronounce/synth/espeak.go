// Package synth renders reference speech for a text.
package synth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/Halleck45/OpenPronounce/pkg/utils"
)

// Synthesizer writes spoken text to a WAV file in dir and returns its path.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, dir string) (string, error)
}

// Espeak synthesizes with the espeak-ng binary.
type Espeak struct {
	Binary  string
	Voice   string
	Speed   int // words per minute, 0 keeps the espeak default
	Timeout time.Duration
}

var _ Synthesizer = (*Espeak)(nil)

// NewEspeak returns a synthesizer for voice ("en-us" when empty).
func NewEspeak(voice string) *Espeak {
	if voice == "" {
		voice = "en-us"
	}
	return &Espeak{Binary: "espeak-ng", Voice: voice, Timeout: 15 * time.Second}
}

func (e *Espeak) args(text, out string) []string {
	args := []string{"-v", e.Voice, "-w", out}
	if e.Speed > 0 {
		args = append(args, "-s", fmt.Sprintf("%d", e.Speed))
	}
	return append(args, "--", text)
}

func (e *Espeak) Synthesize(ctx context.Context, text, dir string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("synth: empty text")
	}
	if err := utils.MakeDir(dir); err != nil {
		return "", err
	}

	if _, ok := ctx.Deadline(); !ok && e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	out := utils.TempPath(dir, "reference", ".wav")
	cmd := exec.CommandContext(ctx, e.Binary, e.args(text, out)...)
	if msg, err := cmd.CombinedOutput(); err != nil {
		os.Remove(out)
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%s failed: %v (%s)", e.Binary, err, strings.TrimSpace(string(msg)))
	}
	return out, nil
}
