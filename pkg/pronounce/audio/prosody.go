package audio

import (
	"math"

	"github.com/mjibson/go-dsp/fft"
)

const (
	// MinPitchHz and MaxPitchHz bound the F0 search, speech range.
	MinPitchHz = 50.0
	MaxPitchHz = 300.0

	// EnergyScale is the top of the energy contour, chosen to overlay the
	// pitch contour on the same axis.
	EnergyScale = 250.0

	voicingThreshold = 0.3
	silenceRMS       = 1e-3
)

// EnergyContour returns the RMS of each frame, min-max scaled to
// [0, EnergyScale]. A flat signal yields all zeros.
func EnergyContour(samples []float64, frameSize, hopSize int) []float64 {
	fs := frames(samples, frameSize, hopSize)
	out := make([]float64, len(fs))
	if len(fs) == 0 {
		return out
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for i, f := range fs {
		out[i] = rms(f)
		lo = math.Min(lo, out[i])
		hi = math.Max(hi, out[i])
	}

	span := hi - lo
	for i := range out {
		if span == 0 {
			out[i] = 0
			continue
		}
		out[i] = (out[i] - lo) / span * EnergyScale
	}
	return out
}

// PitchContour estimates the fundamental frequency of each frame from its
// autocorrelation, computed through the FFT. Unvoiced or silent frames are 0.
func PitchContour(samples []float64, sampleRate, frameSize, hopSize int) []float64 {
	fs := frames(samples, frameSize, hopSize)
	out := make([]float64, len(fs))
	if len(fs) == 0 || sampleRate <= 0 {
		return out
	}

	lagMin := int(math.Ceil(float64(sampleRate) / MaxPitchHz))
	lagMax := int(math.Floor(float64(sampleRate) / MinPitchHz))
	if lagMax >= frameSize-1 {
		lagMax = frameSize - 2
	}
	if lagMin < 1 || lagMin >= lagMax {
		return out
	}

	window := Hamming(frameSize)
	n := nextPow2(2 * frameSize)
	buf := make([]float64, n)
	for i, f := range fs {
		if rms(f) < silenceRMS {
			continue
		}
		for k := range buf {
			buf[k] = 0
		}
		for k := 0; k < frameSize; k++ {
			buf[k] = f[k] * window[k]
		}
		out[i] = framePitch(autocorrelation(buf), sampleRate, lagMin, lagMax)
	}
	return out
}

// autocorrelation returns the real autocorrelation of a zero-padded frame
// via the Wiener-Khinchin relation.
func autocorrelation(buf []float64) []float64 {
	spec := fft.FFTReal(buf)
	for i, c := range spec {
		re, im := real(c), imag(c)
		spec[i] = complex(re*re+im*im, 0)
	}
	inv := fft.IFFT(spec)
	r := make([]float64, len(inv))
	for i, c := range inv {
		r[i] = real(c)
	}
	return r
}

func framePitch(r []float64, sampleRate, lagMin, lagMax int) float64 {
	if r[0] <= 0 {
		return 0
	}

	best := -1
	for lag := lagMin; lag <= lagMax; lag++ {
		if r[lag] < r[lag-1] || r[lag] < r[lag+1] {
			continue
		}
		if best < 0 || r[lag] > r[best] {
			best = lag
		}
	}
	if best < 0 || r[best]/r[0] < voicingThreshold {
		return 0
	}

	// parabolic refinement around the peak
	lag := float64(best)
	den := r[best-1] - 2*r[best] + r[best+1]
	if den != 0 {
		lag += 0.5 * (r[best-1] - r[best+1]) / den
	}
	return float64(sampleRate) / lag
}

// InterpolatePitch fills unvoiced (zero) frames by linear interpolation
// between the surrounding voiced frames. Leading and trailing gaps take the
// nearest voiced value; a contour with no voiced frame is returned as zeros.
func InterpolatePitch(f0 []float64) []float64 {
	out := make([]float64, len(f0))
	var voiced []int
	for i, v := range f0 {
		if v > 0 {
			voiced = append(voiced, i)
		}
	}
	if len(voiced) == 0 {
		return out
	}

	for i := range out {
		switch {
		case i <= voiced[0]:
			out[i] = f0[voiced[0]]
		case i >= voiced[len(voiced)-1]:
			out[i] = f0[voiced[len(voiced)-1]]
		}
	}
	for k := 0; k+1 < len(voiced); k++ {
		a, b := voiced[k], voiced[k+1]
		for i := a; i <= b; i++ {
			t := float64(i-a) / float64(b-a)
			out[i] = f0[a] + t*(f0[b]-f0[a])
		}
	}
	return out
}

func rms(frame []float64) float64 {
	if len(frame) == 0 {
		return 0
	}
	var sum float64
	for _, v := range frame {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(frame)))
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
