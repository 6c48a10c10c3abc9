package main

import (
	"errors"
	"fmt"
	"math"

	"github.com/Halleck45/OpenPronounce/pkg/models"
)

const (
	// MaxUploadBytes bounds multipart uploads (~ several minutes of webm).
	MaxUploadBytes = 32 << 20

	// MaxJSONBytes bounds JSON request bodies.
	MaxJSONBytes = 1 << 20

	// MaxCurveLength bounds each curve of POST /api/align.
	MaxCurveLength = 4000

	// MaxAlignCells bounds the DTW cost matrix of POST /api/align.
	MaxAlignCells = 4_000_000

	// DefaultListLimit is used when GET /api/attempts has no limit.
	DefaultListLimit = 50
)

// PhonemesRequest is the JSON body of POST /api/phonemes.
type PhonemesRequest struct {
	Text string `json:"text"`
}

// AlignRequest is the request body for POST /api/align
type AlignRequest struct {
	Seq1 []float64 `json:"seq1"`
	Seq2 []float64 `json:"seq2"`
}

// Validate checks if the request is valid
func (r *AlignRequest) Validate() error {
	if len(r.Seq1) > MaxCurveLength || len(r.Seq2) > MaxCurveLength {
		return fmt.Errorf("curves are limited to %d points", MaxCurveLength)
	}
	if len(r.Seq1)*len(r.Seq2) > MaxAlignCells {
		return fmt.Errorf("curves of %d and %d points exceed %d alignment cells", len(r.Seq1), len(r.Seq2), MaxAlignCells)
	}
	for _, seq := range [][]float64{r.Seq1, r.Seq2} {
		for _, v := range seq {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return errors.New("curves must contain finite numbers")
			}
		}
	}
	return nil
}

// AlignResponse carries both curves warped onto the DTW path.
type AlignResponse struct {
	Seq1 []float64 `json:"seq1"`
	Seq2 []float64 `json:"seq2"`
}

// ScoreRequest is the request body for POST /api/score
type ScoreRequest struct {
	DTWDistance     float64 `json:"dtw_distance"`
	PhonemeDistance float64 `json:"phoneme_distance"`
	WordDistance    float64 `json:"word_distance"`
}

// TranscriptionResponse is the response for POST /api/speech2text
type TranscriptionResponse struct {
	Transcribe string `json:"transcribe"`
}

// ListAttemptsResponse is the response for GET /api/attempts
type ListAttemptsResponse struct {
	Attempts []models.AttemptSummary `json:"attempts"`
	Count    int                     `json:"count"`
}

// DeleteAttemptResponse is the response for DELETE /api/attempts/{id}
type DeleteAttemptResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// MetricsResponse provides server health and history metrics
type MetricsResponse struct {
	Status         string  `json:"status"`
	DatabasePath   string  `json:"database_path,omitempty"`
	HistoryEnabled bool    `json:"history_enabled"`
	AttemptCount   int64   `json:"attempt_count"`
	AverageScore   float64 `json:"average_score"`
	SampleRate     int     `json:"sample_rate"`
}

// ErrorResponse is the standard error response format
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}
