// Package config provides the configuration schema and loader shared by the
// server and the CLI.
package config

import (
	"github.com/Halleck45/OpenPronounce/pkg/pronounce/audio"
	"github.com/Halleck45/OpenPronounce/pkg/pronounce/scoring"
	"github.com/Halleck45/OpenPronounce/pkg/pronounce/storage"
)

// Config is the root configuration, typically loaded with [Load].
type Config struct {
	LogLevel  string          `yaml:"log_level"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Audio     AudioConfig     `yaml:"audio"`
	Providers ProvidersConfig `yaml:"providers"`
	Scoring   ScoringConfig   `yaml:"scoring"`
}

type ServerConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type StorageConfig struct {
	DBPath  string `yaml:"db_path"`
	History bool   `yaml:"history"`
}

type AudioConfig struct {
	TempDir    string  `yaml:"temp_dir"`
	SampleRate int     `yaml:"sample_rate"`
	MaxSeconds float64 `yaml:"max_seconds"` // 0 disables the limit
}

// ProvidersConfig points at the external speech services. An empty
// WhisperURL leaves the service without a transcriber; an empty EmbedderURL
// selects the built-in spectral embedder.
type ProvidersConfig struct {
	WhisperURL      string `yaml:"whisper_url"`
	WhisperLanguage string `yaml:"whisper_language"`
	EmbedderURL     string `yaml:"embedder_url"`
	Voice           string `yaml:"voice"`
}

type ScoringConfig struct {
	MismatchThreshold float64         `yaml:"mismatch_threshold"`
	Weights           scoring.Weights `yaml:"weights"`
	MaxDTW            float64         `yaml:"max_dtw"`
	MaxLev            float64         `yaml:"max_lev"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Server: ServerConfig{
			Port:           8080,
			AllowedOrigins: []string{"*"},
		},
		Storage: StorageConfig{
			DBPath:  storage.DefaultDBFile,
			History: true,
		},
		Audio: AudioConfig{
			SampleRate: audio.DefaultSampleRate,
			MaxSeconds: 30,
		},
		Providers: ProvidersConfig{
			WhisperLanguage: "en",
			Voice:           "en-us",
		},
		Scoring: ScoringConfig{
			MismatchThreshold: scoring.DefaultMismatchThreshold,
			Weights:           scoring.DefaultWeights(),
			MaxDTW:            scoring.DefaultMaxDTW,
			MaxLev:            scoring.DefaultMaxLev,
		},
	}
}
