package config

import (
	"fmt"

	"github.com/Halleck45/OpenPronounce/pkg/logger"
	"github.com/Halleck45/OpenPronounce/pkg/pronounce"
	"github.com/Halleck45/OpenPronounce/pkg/pronounce/embedding"
	"github.com/Halleck45/OpenPronounce/pkg/pronounce/scoring"
	"github.com/Halleck45/OpenPronounce/pkg/pronounce/transcribe"
)

// ServiceOptions turns cfg into options for [pronounce.NewService]. It sets
// the level of the default logger as a side effect.
func (cfg *Config) ServiceOptions() ([]pronounce.Option, error) {
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	log := logger.GetLogger()
	log.SetLevel(level)

	opts := []pronounce.Option{
		pronounce.WithLogger(log),
		pronounce.WithDBPath(cfg.Storage.DBPath),
		pronounce.WithHistory(cfg.Storage.History),
		pronounce.WithSampleRate(cfg.Audio.SampleRate),
		pronounce.WithMaxAudioSeconds(cfg.Audio.MaxSeconds),
		pronounce.WithMismatchThreshold(cfg.Scoring.MismatchThreshold),
		pronounce.WithComposer(scoring.Composer{
			Weights: cfg.Scoring.Weights,
			MaxDTW:  cfg.Scoring.MaxDTW,
			MaxLev:  cfg.Scoring.MaxLev,
		}),
	}
	if cfg.Audio.TempDir != "" {
		opts = append(opts, pronounce.WithTempDir(cfg.Audio.TempDir))
	}
	if cfg.Providers.Voice != "" {
		opts = append(opts, pronounce.WithVoice(cfg.Providers.Voice))
	}

	if cfg.Providers.WhisperURL != "" {
		w, err := transcribe.NewWhisper(cfg.Providers.WhisperURL,
			transcribe.WithLanguage(cfg.Providers.WhisperLanguage))
		if err != nil {
			return nil, fmt.Errorf("config: whisper: %w", err)
		}
		opts = append(opts, pronounce.WithTranscriber(w))
	}

	if cfg.Providers.EmbedderURL != "" {
		e, err := embedding.NewHTTP(cfg.Providers.EmbedderURL, nil)
		if err != nil {
			return nil, fmt.Errorf("config: embedder: %w", err)
		}
		opts = append(opts, pronounce.WithEmbedder(e))
	}

	return opts, nil
}
