// Package embedding turns audio into a sequence of feature vectors that can
// be compared with DTW.
package embedding

import (
	"context"
	"errors"
	"math"

	"github.com/Halleck45/OpenPronounce/pkg/pronounce/audio"
)

// ErrNoFrames is returned for signals too short to yield one vector.
var ErrNoFrames = errors.New("embedding: signal too short for a single frame")

// Embedder produces one vector per time step.
type Embedder interface {
	Embed(ctx context.Context, s audio.Samples) ([][]float64, error)
}

// DefaultBands is the vector size of Spectral.
const DefaultBands = 40

// Spectral is an offline embedder: log magnitude STFT frames pooled into
// equal-width frequency bands.
type Spectral struct {
	WindowSize int
	HopSize    int
	Bands      int
}

var _ Embedder = Spectral{}

// NewSpectral returns a Spectral with the audio package framing defaults.
func NewSpectral() Spectral {
	return Spectral{WindowSize: audio.WindowSize, HopSize: audio.HopSize, Bands: DefaultBands}
}

func (sp Spectral) Embed(ctx context.Context, s audio.Samples) ([][]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ws, hs, bands := sp.WindowSize, sp.HopSize, sp.Bands
	if ws <= 0 {
		ws = audio.WindowSize
	}
	if hs <= 0 {
		hs = audio.HopSize
	}
	if bands <= 0 {
		bands = DefaultBands
	}

	spec, err := audio.STFT(s.Data, ws, hs, audio.Hamming(ws))
	if errors.Is(err, audio.ErrShortSignal) {
		return nil, ErrNoFrames
	}
	if err != nil {
		return nil, err
	}
	if len(spec) == 0 {
		return nil, ErrNoFrames
	}

	out := make([][]float64, len(spec))
	for i, mag := range spec {
		out[i] = pool(mag, bands)
	}
	return out, nil
}

// pool averages mag into n equal-width bands and log-compresses them.
func pool(mag []float64, n int) []float64 {
	if n > len(mag) {
		n = len(mag)
	}
	v := make([]float64, n)
	for b := 0; b < n; b++ {
		lo := b * len(mag) / n
		hi := (b + 1) * len(mag) / n
		var sum float64
		for _, m := range mag[lo:hi] {
			sum += m
		}
		v[b] = math.Log1p(sum / float64(hi-lo))
	}
	return v
}
