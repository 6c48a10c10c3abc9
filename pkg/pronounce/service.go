package pronounce

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Halleck45/OpenPronounce/pkg/logger"
	"github.com/Halleck45/OpenPronounce/pkg/models"
	"github.com/Halleck45/OpenPronounce/pkg/pronounce/align"
	"github.com/Halleck45/OpenPronounce/pkg/pronounce/audio"
	"github.com/Halleck45/OpenPronounce/pkg/pronounce/embedding"
	"github.com/Halleck45/OpenPronounce/pkg/pronounce/phonemize"
	"github.com/Halleck45/OpenPronounce/pkg/pronounce/scoring"
	"github.com/Halleck45/OpenPronounce/pkg/pronounce/synth"
	"github.com/Halleck45/OpenPronounce/pkg/pronounce/transcript"
	"github.com/Halleck45/OpenPronounce/pkg/utils"
)

// pronounceService is the default implementation of the Service interface.
type pronounceService struct {
	storage  Storage
	log      Logger
	config   *Config
	detector *scoring.Detector
}

func NewService(opts ...Option) (Service, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Logger == nil {
		cfg.Logger = logger.GetLogger()
	}

	detector, err := scoring.NewDetector(cfg.MismatchThreshold)
	if err != nil {
		return nil, err
	}

	if err := utils.MakeDir(cfg.TempDir); err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}

	if cfg.Phonemizer == nil {
		cfg.Phonemizer = phonemize.NewEspeak(cfg.Voice)
	}
	if cfg.Synthesizer == nil {
		cfg.Synthesizer = synth.NewEspeak(cfg.Voice)
	}
	if cfg.Embedder == nil {
		cfg.Embedder = embedding.NewSpectral()
	}
	if cfg.Converter == nil {
		cfg.Converter = ffmpegConverter{log: cfg.Logger}
	}

	stor := cfg.Storage
	if stor == nil && cfg.History {
		stor, err = NewSQLiteStorage(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage: %w", err)
		}
	}

	return &pronounceService{
		storage:  stor,
		log:      cfg.Logger,
		config:   cfg,
		detector: detector,
	}, nil
}

// stage runs fn as a timed step and wraps its error with the step name.
func (s *pronounceService) stage(ctx context.Context, name string, fn func() error) error {
	var err error
	s.timed(ctx, name, func() { err = fn() })
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// timed runs fn and reports its duration to the metrics recorder.
func (s *pronounceService) timed(ctx context.Context, name string, fn func()) {
	start := time.Now()
	fn()
	if s.config.Metrics != nil {
		s.config.Metrics.RecordStage(ctx, name, time.Since(start))
	}
}

// loadRecording converts inputPath and decodes it, enforcing the length limit.
func (s *pronounceService) loadRecording(ctx context.Context, inputPath string) (string, audio.Samples, error) {
	wavPath, meta, err := s.config.Converter.Convert(ctx, inputPath, s.config.TempDir, s.config.SampleRate)
	if err != nil {
		return "", audio.Samples{}, err
	}
	if meta != nil && s.tooLong(meta.DurationSec) {
		utils.RemoveFiles(wavPath)
		return "", audio.Samples{}, fmt.Errorf("%w: %.1fs > %.1fs", ErrAudioTooLong, meta.DurationSec, s.config.MaxAudioSeconds)
	}

	samples, err := audio.ReadWav(wavPath)
	if err != nil {
		utils.RemoveFiles(wavPath)
		return "", audio.Samples{}, err
	}
	if sec := samples.Duration().Seconds(); s.tooLong(sec) {
		utils.RemoveFiles(wavPath)
		return "", audio.Samples{}, fmt.Errorf("%w: %.1fs > %.1fs", ErrAudioTooLong, sec, s.config.MaxAudioSeconds)
	}
	return wavPath, samples, nil
}

func (s *pronounceService) tooLong(sec float64) bool {
	return s.config.MaxAudioSeconds > 0 && sec > s.config.MaxAudioSeconds
}

// CompareAudioWithText scores the recording at audioPath against
// expectedText.
func (s *pronounceService) CompareAudioWithText(ctx context.Context, audioPath, expectedText string) (*Analysis, error) {
	expectedText = strings.TrimSpace(expectedText)
	if expectedText == "" {
		return nil, ErrEmptyText
	}
	if s.config.Transcriber == nil {
		return nil, ErrNoTranscriber
	}

	s.log.Infof("Scoring %s against %q", audioPath, expectedText)

	// 1. Prepare user audio
	var userWav string
	var user audio.Samples
	err := s.stage(ctx, "convert", func() (err error) {
		userWav, user, err = s.loadRecording(ctx, audioPath)
		return err
	})
	if err != nil {
		return nil, err
	}
	defer utils.RemoveFiles(userWav)

	// 2. Reference speech for the expected text
	var refRaw, refWav string
	var ref audio.Samples
	err = s.stage(ctx, "synthesize", func() (err error) {
		refRaw, err = s.config.Synthesizer.Synthesize(ctx, expectedText, s.config.TempDir)
		if err != nil {
			return err
		}
		refWav, _, err = s.config.Converter.Convert(ctx, refRaw, s.config.TempDir, s.config.SampleRate)
		if err != nil {
			return err
		}
		ref, err = audio.ReadWav(refWav)
		return err
	})
	defer utils.RemoveFiles(refRaw, refWav)
	if err != nil {
		return nil, err
	}

	// 3. Embeddings and transcription are independent
	var userEmb, refEmb [][]float64
	var rawTranscript string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.stage(gctx, "embed", func() (err error) {
			userEmb, err = s.config.Embedder.Embed(gctx, user)
			return err
		})
	})
	g.Go(func() error {
		return s.stage(gctx, "embed_reference", func() (err error) {
			refEmb, err = s.config.Embedder.Embed(gctx, ref)
			return err
		})
	})
	g.Go(func() error {
		return s.stage(gctx, "transcribe", func() (err error) {
			rawTranscript, err = s.config.Transcriber.Transcribe(gctx, userWav)
			return err
		})
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, embedding.ErrNoFrames) {
			return nil, fmt.Errorf("%w: %v", ErrNoSpeechDetected, err)
		}
		return nil, err
	}

	distance, _, err := align.DTW(userEmb, refEmb, align.Euclidean)
	if err != nil {
		return nil, fmt.Errorf("embedding alignment: %w", err)
	}
	s.log.Debugf("Embedding DTW distance %.2f over %d/%d frames", distance, len(userEmb), len(refEmb))

	// 4. Phonemes of both texts
	cleaned := transcript.Clean(rawTranscript)
	var expectedWords, heardWords []scoring.WordPhonemes
	err = s.stage(ctx, "phonemize", func() error {
		pg, pctx := errgroup.WithContext(ctx)
		pg.Go(func() (err error) {
			expectedWords, err = s.config.Phonemizer.PhonemizeWords(pctx, phonemize.SplitWords(expectedText))
			return err
		})
		pg.Go(func() error {
			words := strings.Fields(cleaned)
			if len(words) == 0 {
				return nil
			}
			var err error
			heardWords, err = s.config.Phonemizer.PhonemizeWords(pctx, words)
			if errors.Is(err, phonemize.ErrNoPhonemes) {
				return nil
			}
			return err
		})
		return pg.Wait()
	})
	if err != nil {
		return nil, err
	}

	// 5. Compare and score
	var analysis *Analysis
	s.timed(ctx, "compare", func() {
		diff := scoring.Compare(expectedWords, heardWords, s.detector)
		wordDistance := transcript.WordDistance(expectedText, cleaned)
		breakdown := s.config.Composer.Breakdown(distance, float64(diff.PhonemeDistance), float64(wordDistance))
		wer, werErr := transcript.WER(expectedText, cleaned)
		if werErr != nil {
			s.log.Debugf("WER: %v", werErr)
		}
		cer, cerErr := transcript.CER(expectedText, cleaned)
		if cerErr != nil {
			s.log.Debugf("CER: %v", cerErr)
		}

		analysis = &Analysis{
			ExpectedText: expectedText,
			Transcript:   rawTranscript,
			Score:        breakdown.FinalScore,
			Distance:     distance,
			Breakdown:    breakdown,
			CharDistance: transcript.CharDistance(expectedText, rawTranscript),
			WER:          wer,
			CER:          cer,
			DurationSec:  user.Duration().Seconds(),
			Differences:  diff,
			Feedback:     diff.Feedback,
		}
	})

	// 6. Prosody
	s.timed(ctx, "prosody", func() {
		analysis.Prosody = prosodyOf(user, ref)
	})

	// 7. History
	if s.config.History && s.storage != nil {
		err := s.stage(ctx, "persist", func() (err error) {
			analysis.ID, err = s.storage.SaveAttempt(ctx, models.AttemptDetail{
				AttemptSummary: models.AttemptSummary{
					ExpectedText: expectedText,
					Transcript:   rawTranscript,
					Score:        analysis.Score,
					WER:          analysis.WER,
					CER:          analysis.CER,
					CreatedAtMs:  time.Now().UnixMilli(),
				},
				Breakdown: analysis.Breakdown,
				Errors:    analysis.Differences.Errors,
			})
			return err
		})
		if err != nil {
			// the analysis is still valid without a history entry
			s.log.Errorf("Failed to save attempt: %v", err)
		}
	}

	if s.config.Metrics != nil {
		s.config.Metrics.RecordAnalysis(ctx, analysis.Score, len(analysis.Differences.Errors))
	}

	s.log.Infof("Score %.2f, %d word error(s), transcript %q", analysis.Score, len(analysis.Differences.Errors), rawTranscript)
	return analysis, nil
}

func prosodyOf(user, ref audio.Samples) Prosody {
	f0 := audio.InterpolatePitch(audio.PitchContour(user.Data, user.SampleRate, audio.WindowSize, audio.HopSize))
	energy := audio.EnergyContour(user.Data, audio.WindowSize, audio.HopSize)
	p := Prosody{F0: f0, Energy: energy}

	refF0 := audio.InterpolatePitch(audio.PitchContour(ref.Data, ref.SampleRate, audio.WindowSize, audio.HopSize))
	refEnergy := audio.EnergyContour(ref.Data, audio.WindowSize, audio.HopSize)

	uf, rf, err1 := align.AlignCurves(f0, refF0)
	ue, re, err2 := align.AlignCurves(energy, refEnergy)
	if err1 == nil && err2 == nil {
		p.Reference = &ProsodyComparison{
			F0:     CurvePair{User: uf, Reference: rf},
			Energy: CurvePair{User: ue, Reference: re},
		}
	}
	return p
}

// Transcribe converts audioPath and returns what the transcriber heard.
func (s *pronounceService) Transcribe(ctx context.Context, audioPath string) (string, error) {
	if s.config.Transcriber == nil {
		return "", ErrNoTranscriber
	}

	var text string
	err := s.stage(ctx, "transcribe", func() error {
		wavPath, _, err := s.loadRecording(ctx, audioPath)
		if err != nil {
			return err
		}
		defer utils.RemoveFiles(wavPath)
		text, err = s.config.Transcriber.Transcribe(ctx, wavPath)
		return err
	})
	return text, err
}

// Phonemes phonemizes text word by word.
func (s *pronounceService) Phonemes(ctx context.Context, text string) (*PhonemeListing, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	words, err := s.config.Phonemizer.PhonemizeWords(ctx, phonemize.SplitWords(text))
	if err != nil {
		return nil, err
	}

	idx := scoring.BuildWordIndex(words)
	return &PhonemeListing{
		Text:          text,
		Phonemes:      idx.Phonemes,
		PhonemeToWord: idx.WordOf,
		Words:         words,
	}, nil
}

func (s *pronounceService) history() (Storage, error) {
	if s.storage == nil {
		return nil, ErrHistoryDisabled
	}
	return s.storage, nil
}

func (s *pronounceService) GetAttempt(ctx context.Context, id string) (*models.AttemptDetail, error) {
	st, err := s.history()
	if err != nil {
		return nil, err
	}
	return st.GetAttempt(ctx, id)
}

func (s *pronounceService) ListAttempts(ctx context.Context, limit int) ([]models.AttemptSummary, error) {
	st, err := s.history()
	if err != nil {
		return nil, err
	}
	return st.ListAttempts(ctx, limit)
}

func (s *pronounceService) DeleteAttempt(ctx context.Context, id string) error {
	st, err := s.history()
	if err != nil {
		return err
	}
	if err := st.DeleteAttempt(ctx, id); err != nil {
		return err
	}
	s.log.Infof("Deleted attempt %s", id)
	return nil
}

func (s *pronounceService) Stats(ctx context.Context) (models.AttemptStats, error) {
	st, err := s.history()
	if err != nil {
		return models.AttemptStats{}, err
	}
	return st.Stats(ctx)
}

func (s *pronounceService) Close() error {
	if s.storage == nil {
		return nil
	}
	return s.storage.Close()
}
