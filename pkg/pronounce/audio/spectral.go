package audio

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// Framing defaults shared by the spectral features and the prosody contours.
const (
	WindowSize = 1024
	HopSize    = 256
)

// ErrShortSignal is returned when a signal is shorter than one analysis window.
var ErrShortSignal = errors.New("input shorter than window size")

// Hamming returns a Hamming window of length n.
func Hamming(n int) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	for i := 0; i < n; i++ {
		w[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}
	return w
}

// MagnitudeSpectrum converts a complex spectrum into a magnitude spectrum
// (positive frequencies only).
func MagnitudeSpectrum(spectrum []complex128) []float64 {
	half := len(spectrum) / 2
	mag := make([]float64, half)
	for i := 0; i < half; i++ {
		mag[i] = cmplx.Abs(spectrum[i])
	}
	return mag
}

// STFT computes a time-major magnitude spectrogram: out[frame][bin].
func STFT(samples []float64, windowSize, hopSize int, window []float64) ([][]float64, error) {
	if len(window) != windowSize {
		return nil, errors.New("window length must equal windowSize")
	}
	if hopSize <= 0 {
		return nil, errors.New("hop size must be positive")
	}
	if len(samples) < windowSize {
		return nil, ErrShortSignal
	}

	var spectrogram [][]float64
	frame := make([]float64, windowSize)
	for start := 0; start+windowSize <= len(samples); start += hopSize {
		for i := 0; i < windowSize; i++ {
			frame[i] = samples[start+i] * window[i]
		}
		spectrogram = append(spectrogram, MagnitudeSpectrum(fft.FFTReal(frame)))
	}
	return spectrogram, nil
}

// frames slices samples into windows of size advancing by hop. A signal
// shorter than one window yields a single zero-padded frame.
func frames(samples []float64, size, hop int) [][]float64 {
	if len(samples) == 0 || size <= 0 || hop <= 0 {
		return nil
	}
	if len(samples) < size {
		f := make([]float64, size)
		copy(f, samples)
		return [][]float64{f}
	}
	var out [][]float64
	for start := 0; start+size <= len(samples); start += hop {
		out = append(out, samples[start:start+size])
	}
	return out
}
