package audio

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// ErrInvalidWav is returned for input that is not a readable PCM WAV stream.
var ErrInvalidWav = errors.New("invalid WAV file")

// Samples is a mono signal normalised to [-1, 1].
type Samples struct {
	Data       []float64
	SampleRate int
}

// Duration of the signal.
func (s Samples) Duration() time.Duration {
	if s.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(s.Data)) / float64(s.SampleRate) * float64(time.Second))
}

// ReadWav decodes the WAV file at path.
func ReadWav(path string) (Samples, error) {
	f, err := os.Open(path)
	if err != nil {
		return Samples{}, err
	}
	defer f.Close()

	s, err := DecodeWav(f)
	if err != nil {
		return Samples{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// DecodeWav reads a PCM WAV stream, mixing every channel down to mono.
func DecodeWav(r io.ReadSeeker) (Samples, error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return Samples{}, ErrInvalidWav
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return Samples{}, fmt.Errorf("%w: %v", ErrInvalidWav, err)
	}

	channels := int(decoder.NumChans)
	if channels < 1 {
		channels = 1
	}
	bitDepth := int(decoder.BitDepth)
	if bitDepth == 0 {
		bitDepth = 16
	}
	scale := 1.0 / float64(int64(1)<<(uint(bitDepth)-1))

	frames := len(buf.Data) / channels
	out := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += float64(buf.Data[i*channels+c])
		}
		out[i] = clamp(sum/float64(channels)*scale, -1, 1)
	}

	return Samples{Data: out, SampleRate: int(decoder.SampleRate)}, nil
}

// WriteWav encodes s as 16-bit mono PCM.
func WriteWav(path string, s Samples) error {
	if s.SampleRate <= 0 {
		return fmt.Errorf("write %s: invalid sample rate %d", path, s.SampleRate)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	enc := wav.NewEncoder(f, s.SampleRate, 16, 1, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: s.SampleRate},
		Data:           make([]int, len(s.Data)),
		SourceBitDepth: 16,
	}
	for i, v := range s.Data {
		buf.Data[i] = int(math.Round(clamp(v, -1, 1) * math.MaxInt16))
	}

	if err := enc.Write(buf); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
