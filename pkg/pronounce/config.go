package pronounce

import (
	"os"
	"path/filepath"

	"github.com/Halleck45/OpenPronounce/pkg/pronounce/audio"
	"github.com/Halleck45/OpenPronounce/pkg/pronounce/embedding"
	"github.com/Halleck45/OpenPronounce/pkg/pronounce/phonemize"
	"github.com/Halleck45/OpenPronounce/pkg/pronounce/scoring"
	"github.com/Halleck45/OpenPronounce/pkg/pronounce/synth"
	"github.com/Halleck45/OpenPronounce/pkg/pronounce/transcribe"
)

type Config struct {
	DBPath            string
	TempDir           string
	SampleRate        int
	Voice             string
	MismatchThreshold float64
	MaxAudioSeconds   float64 // 0 disables the limit
	History           bool
	Composer          scoring.Composer

	Logger      Logger
	Storage     Storage
	Phonemizer  phonemize.Phonemizer
	Transcriber transcribe.Transcriber
	Embedder    embedding.Embedder
	Synthesizer synth.Synthesizer
	Converter   AudioConverter
	Metrics     StageRecorder
}

type Option func(*Config)

func WithDBPath(path string) Option {
	return func(c *Config) {
		c.DBPath = path
	}
}

func WithTempDir(dir string) Option {
	return func(c *Config) {
		c.TempDir = dir
	}
}

func WithSampleRate(rate int) Option {
	return func(c *Config) {
		c.SampleRate = rate
	}
}

// WithVoice selects the espeak-ng voice of the default phonemizer and
// synthesizer.
func WithVoice(voice string) Option {
	return func(c *Config) {
		c.Voice = voice
	}
}

func WithLogger(log Logger) Option {
	return func(c *Config) {
		c.Logger = log
	}
}

func WithStorage(storage Storage) Option {
	return func(c *Config) {
		c.Storage = storage
	}
}

func WithPhonemizer(p phonemize.Phonemizer) Option {
	return func(c *Config) {
		c.Phonemizer = p
	}
}

func WithTranscriber(t transcribe.Transcriber) Option {
	return func(c *Config) {
		c.Transcriber = t
	}
}

func WithEmbedder(e embedding.Embedder) Option {
	return func(c *Config) {
		c.Embedder = e
	}
}

func WithSynthesizer(s synth.Synthesizer) Option {
	return func(c *Config) {
		c.Synthesizer = s
	}
}

func WithConverter(conv AudioConverter) Option {
	return func(c *Config) {
		c.Converter = conv
	}
}

// WithMismatchThreshold sets the per-word phoneme slack, in (0, 1].
func WithMismatchThreshold(t float64) Option {
	return func(c *Config) {
		c.MismatchThreshold = t
	}
}

func WithComposer(comp scoring.Composer) Option {
	return func(c *Config) {
		c.Composer = comp
	}
}

func WithMaxAudioSeconds(sec float64) Option {
	return func(c *Config) {
		c.MaxAudioSeconds = sec
	}
}

func WithMetrics(m StageRecorder) Option {
	return func(c *Config) {
		c.Metrics = m
	}
}

// WithHistory turns attempt persistence on or off. With history off no
// database is opened.
func WithHistory(enabled bool) Option {
	return func(c *Config) {
		c.History = enabled
	}
}

func defaultConfig() *Config {
	return &Config{
		DBPath:            "openpronounce.sqlite3",
		TempDir:           filepath.Join(os.TempDir(), "openpronounce"),
		SampleRate:        audio.DefaultSampleRate,
		Voice:             "en-us",
		MismatchThreshold: scoring.DefaultMismatchThreshold,
		MaxAudioSeconds:   30,
		History:           true,
		Composer:          scoring.DefaultComposer(),
	}
}
