package pronounce

import (
	"context"
	"time"

	"github.com/Halleck45/OpenPronounce/pkg/models"
	"github.com/Halleck45/OpenPronounce/pkg/pronounce/audio"
)

type Service interface {
	CompareAudioWithText(ctx context.Context, audioPath, expectedText string) (*Analysis, error)
	Transcribe(ctx context.Context, audioPath string) (string, error)
	Phonemes(ctx context.Context, text string) (*PhonemeListing, error)
	GetAttempt(ctx context.Context, id string) (*models.AttemptDetail, error)
	ListAttempts(ctx context.Context, limit int) ([]models.AttemptSummary, error)
	DeleteAttempt(ctx context.Context, id string) error
	Stats(ctx context.Context) (models.AttemptStats, error)
	Close() error
}

type Storage interface {
	SaveAttempt(ctx context.Context, a models.AttemptDetail) (string, error)
	GetAttempt(ctx context.Context, id string) (*models.AttemptDetail, error)
	ListAttempts(ctx context.Context, limit int) ([]models.AttemptSummary, error)
	DeleteAttempt(ctx context.Context, id string) error
	Stats(ctx context.Context) (models.AttemptStats, error)
	Close() error
}

type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Debugf(format string, args ...any)
}

// StageRecorder receives timings and outcomes of the scoring pipeline.
type StageRecorder interface {
	RecordStage(ctx context.Context, stage string, d time.Duration)
	RecordAnalysis(ctx context.Context, score float64, wordErrors int)
}

// AudioConverter turns an uploaded recording into a mono WAV at sampleRate
// inside outDir. meta may be nil when the converter cannot probe the input.
type AudioConverter interface {
	Convert(ctx context.Context, inputPath, outDir string, sampleRate int) (wavPath string, meta *audio.Metadata, err error)
}
