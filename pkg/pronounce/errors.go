package pronounce

import "errors"

var (
	ErrEmptyText        = errors.New("expected text is empty")
	ErrAudioTooLong     = errors.New("audio is longer than the allowed maximum")
	ErrNoTranscriber    = errors.New("no transcriber configured")
	ErrHistoryDisabled  = errors.New("attempt history is disabled")
	ErrNoSpeechDetected = errors.New("no speech detected in recording")
)
