package audio

import (
	"errors"
	"image"
	"image/draw"

	"github.com/eligwz/spectrogram"
)

// RenderSpectrogram draws a magnitude spectrogram of s as a PNG of the given
// size, on a black background.
func RenderSpectrogram(s Samples, outPath string, width, height int) error {
	if len(s.Data) == 0 {
		return errors.New("no samples to render")
	}
	if width <= 0 {
		width = 2048
	}
	if height <= 0 {
		height = 512
	}

	img := spectrogram.NewImage128(image.Rect(0, 0, width, height))
	black := spectrogram.ParseColor("000000")
	draw.Draw(img, img.Bounds(), image.NewUniform(black), image.Point{}, draw.Src)

	// Hamming window, FFT, magnitude, linear scale
	spectrogram.Drawfft(
		img,
		s.Data,
		uint32(s.SampleRate),
		uint32(height),
		false,
		false,
		true,
		false,
	)

	return spectrogram.SavePng(img, outPath)
}
