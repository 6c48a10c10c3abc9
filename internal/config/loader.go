package config

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/Halleck45/OpenPronounce/pkg/logger"
)

// Environment variables applied on top of the file by [ApplyEnv].
const (
	EnvDBPath      = "OPENPRONOUNCE_DB_PATH"
	EnvTempDir     = "OPENPRONOUNCE_TEMP_DIR"
	EnvWhisperURL  = "OPENPRONOUNCE_WHISPER_URL"
	EnvEmbedderURL = "OPENPRONOUNCE_EMBEDDER_URL"
	EnvSampleRate  = "OPENPRONOUNCE_SAMPLE_RATE"
	EnvLogLevel    = logger.LevelEnv
)

// Load reads the YAML file at path over [Default], applies the environment
// and validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("config: open %q: %w", path, err)
		}
		defer f.Close()

		if err := decode(f, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %q: %w", path, err)
		}
	}
	if err := ApplyEnv(cfg, os.Getenv); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromReader decodes YAML from r over [Default] and validates it. The
// environment is not consulted.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	if err := decode(r, cfg); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("config: decode yaml: %w", err)
	}
	return nil
}

// ApplyEnv overrides cfg with the non-empty variables returned by getenv.
func ApplyEnv(cfg *Config, getenv func(string) string) error {
	if v := getenv(EnvDBPath); v != "" {
		cfg.Storage.DBPath = v
	}
	if v := getenv(EnvTempDir); v != "" {
		cfg.Audio.TempDir = v
	}
	if v := getenv(EnvWhisperURL); v != "" {
		cfg.Providers.WhisperURL = v
	}
	if v := getenv(EnvEmbedderURL); v != "" {
		cfg.Providers.EmbedderURL = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := getenv(EnvSampleRate); v != "" {
		rate, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvSampleRate, err)
		}
		cfg.Audio.SampleRate = rate
	}
	return nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if _, err := logger.ParseLevel(cfg.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d is out of range [0, 65535]", cfg.Server.Port))
	}
	if cfg.Storage.History && cfg.Storage.DBPath == "" {
		errs = append(errs, errors.New("storage.db_path is required when history is enabled"))
	}
	if cfg.Audio.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("audio.sample_rate %d must be positive", cfg.Audio.SampleRate))
	}
	if cfg.Audio.MaxSeconds < 0 {
		errs = append(errs, fmt.Errorf("audio.max_seconds %.1f must not be negative", cfg.Audio.MaxSeconds))
	}

	t := cfg.Scoring.MismatchThreshold
	if math.IsNaN(t) || t <= 0 || t > 1 {
		errs = append(errs, fmt.Errorf("scoring.mismatch_threshold %v is out of range (0, 1]", t))
	}
	w := cfg.Scoring.Weights
	if w.DTW < 0 || w.Phoneme < 0 || w.Word < 0 {
		errs = append(errs, errors.New("scoring.weights must not be negative"))
	}
	if sum := w.DTW + w.Phoneme + w.Word; math.Abs(sum-1) > 1e-6 {
		errs = append(errs, fmt.Errorf("scoring.weights sum to %.3f, want 1", sum))
	}
	if cfg.Scoring.MaxDTW <= 0 || cfg.Scoring.MaxLev <= 0 {
		errs = append(errs, errors.New("scoring.max_dtw and scoring.max_lev must be positive"))
	}

	return errors.Join(errs...)
}
