package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Halleck45/OpenPronounce/internal/observe"
	"github.com/Halleck45/OpenPronounce/pkg/logger"
	"github.com/Halleck45/OpenPronounce/pkg/pronounce"
	"github.com/Halleck45/OpenPronounce/pkg/pronounce/align"
	"github.com/Halleck45/OpenPronounce/pkg/pronounce/phonemize"
	"github.com/Halleck45/OpenPronounce/pkg/pronounce/scoring"
	"github.com/Halleck45/OpenPronounce/pkg/pronounce/storage"
	"github.com/Halleck45/OpenPronounce/pkg/utils"
)

// Server encapsulates the HTTP server and its dependencies
type Server struct {
	service  pronounce.Service
	config   *ServerConfig
	log      pronounce.Logger
	metrics  *observe.Metrics
	composer scoring.Composer
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	DBPath         string
	History        bool
	TempDir        string
	SampleRate     int
	AllowedOrigins []string
	Composer       scoring.Composer // zero value means scoring.DefaultComposer
}

// NewServer creates a new server instance. metrics may be nil.
func NewServer(service pronounce.Service, config *ServerConfig, metrics *observe.Metrics) *Server {
	composer := config.Composer
	if composer == (scoring.Composer{}) {
		composer = scoring.DefaultComposer()
	}
	return &Server{
		service:  service,
		config:   config,
		log:      logger.GetLogger().With("http"),
		metrics:  metrics,
		composer: composer,
	}
}

// respondJSON writes a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Errorf("Failed to encode JSON response: %v", err)
	}
}

// respondError writes an error response
func (s *Server) respondError(w http.ResponseWriter, statusCode int, message string) {
	s.respondJSON(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	})
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, pronounce.ErrEmptyText),
		errors.Is(err, pronounce.ErrAudioTooLong),
		errors.Is(err, pronounce.ErrNoSpeechDetected),
		errors.Is(err, phonemize.ErrNoPhonemes),
		errors.Is(err, align.ErrEmptyInput):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrAttemptNotFound):
		return http.StatusNotFound
	case errors.Is(err, pronounce.ErrHistoryDisabled),
		errors.Is(err, pronounce.ErrNoTranscriber):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func (s *Server) respondServiceError(w http.ResponseWriter, what string, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		s.log.Errorf("%s: %v", what, err)
	} else {
		s.log.Warnf("%s: %v", what, err)
	}
	s.respondError(w, code, fmt.Sprintf("%s: %v", what, err))
}

// handleRoot handles GET /
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"service": "OpenPronounce API",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"health":        "GET /health",
			"metrics":       "GET /api/health/metrics",
			"prometheus":    "GET /metrics",
			"pronunciation": "POST /api/pronunciation",
			"speech2text":   "POST /api/speech2text",
			"phonemes":      "POST /api/phonemes",
			"listAttempts":  "GET /api/attempts",
			"getAttempt":    "GET /api/attempts/{id}",
			"deleteAttempt": "DELETE /api/attempts/{id}",
			"align":         "POST /api/align",
			"score":         "POST /api/score",
		},
	})
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// handleMetrics handles GET /api/health/metrics
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	resp := MetricsResponse{
		Status:     "healthy",
		SampleRate: s.config.SampleRate,
	}

	stats, err := s.service.Stats(r.Context())
	switch {
	case errors.Is(err, pronounce.ErrHistoryDisabled):
	case err != nil:
		s.log.Errorf("Failed to get attempt stats: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to retrieve metrics")
		return
	default:
		resp.HistoryEnabled = true
		resp.DatabasePath = s.config.DBPath
		resp.AttemptCount = stats.Count
		resp.AverageScore = stats.AverageScore
	}

	s.respondJSON(w, http.StatusOK, resp)
}

// saveUpload copies the multipart "audio" field to a temp file and returns
// its path. The caller removes it.
func (s *Server) saveUpload(r *http.Request) (string, error) {
	file, header, err := r.FormFile("audio")
	if err != nil {
		return "", fmt.Errorf("audio file is required")
	}
	defer file.Close()

	tempFile := utils.TempPath(s.config.TempDir, "upload", filepath.Ext(header.Filename))
	out, err := os.Create(tempFile)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, file); err != nil {
		out.Close()
		os.Remove(tempFile)
		return "", err
	}
	if err := out.Close(); err != nil {
		os.Remove(tempFile)
		return "", err
	}
	return tempFile, nil
}

// handlePronunciation handles POST /api/pronunciation (multipart audio + expected_text)
func (s *Server) handlePronunciation(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)
	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		s.log.Errorf("Failed to parse form: %v", err)
		s.respondError(w, http.StatusBadRequest, "Failed to parse form data")
		return
	}

	expectedText := strings.TrimSpace(r.FormValue("expected_text"))
	if expectedText == "" {
		s.respondError(w, http.StatusBadRequest, "expected_text is required")
		return
	}

	upload, err := s.saveUpload(r)
	if err != nil {
		s.log.Errorf("Failed to save upload: %v", err)
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer os.Remove(upload)

	analysis, err := s.service.CompareAudioWithText(ctx, upload, expectedText)
	if err != nil {
		s.respondServiceError(w, "Failed to score pronunciation", err)
		return
	}

	s.respondJSON(w, http.StatusOK, analysis)
}

// handleSpeech2Text handles POST /api/speech2text (multipart audio)
func (s *Server) handleSpeech2Text(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)
	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		s.log.Errorf("Failed to parse form: %v", err)
		s.respondError(w, http.StatusBadRequest, "Failed to parse form data")
		return
	}

	upload, err := s.saveUpload(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer os.Remove(upload)

	text, err := s.service.Transcribe(ctx, upload)
	if err != nil {
		s.respondServiceError(w, "Failed to transcribe audio", err)
		return
	}

	s.respondJSON(w, http.StatusOK, TranscriptionResponse{Transcribe: text})
}

// handlePhonemes handles POST /api/phonemes (form or JSON text)
func (s *Server) handlePhonemes(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxJSONBytes)
	var text string
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req PhonemesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		text = req.Text
	} else {
		text = r.FormValue("text")
	}

	listing, err := s.service.Phonemes(r.Context(), text)
	if err != nil {
		s.respondServiceError(w, "Failed to phonemize text", err)
		return
	}
	s.respondJSON(w, http.StatusOK, listing)
}

// handleListAttempts handles GET /api/attempts
func (s *Server) handleListAttempts(w http.ResponseWriter, r *http.Request) {
	limit := DefaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	attempts, err := s.service.ListAttempts(r.Context(), limit)
	if err != nil {
		s.respondServiceError(w, "Failed to list attempts", err)
		return
	}

	s.respondJSON(w, http.StatusOK, ListAttemptsResponse{
		Attempts: attempts,
		Count:    len(attempts),
	})
}

// handleGetAttempt handles GET /api/attempts/{id}
func (s *Server) handleGetAttempt(w http.ResponseWriter, r *http.Request, id string) {
	attempt, err := s.service.GetAttempt(r.Context(), id)
	if err != nil {
		s.respondServiceError(w, fmt.Sprintf("Attempt %s", id), err)
		return
	}
	s.respondJSON(w, http.StatusOK, attempt)
}

// handleDeleteAttempt handles DELETE /api/attempts/{id}
func (s *Server) handleDeleteAttempt(w http.ResponseWriter, r *http.Request, id string) {
	if err := s.service.DeleteAttempt(r.Context(), id); err != nil {
		s.respondServiceError(w, fmt.Sprintf("Failed to delete attempt %s", id), err)
		return
	}
	s.respondJSON(w, http.StatusOK, DeleteAttemptResponse{
		Message: "Attempt deleted successfully",
		ID:      id,
	})
}

// handleAlign handles POST /api/align
func (s *Server) handleAlign(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxJSONBytes)
	var req AlignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	a, b, err := align.AlignCurves(req.Seq1, req.Seq2)
	if err != nil {
		s.respondServiceError(w, "Failed to align curves", err)
		return
	}
	if a == nil {
		a, b = []float64{}, []float64{}
	}
	s.respondJSON(w, http.StatusOK, AlignResponse{Seq1: a, Seq2: b})
}

// handleScore handles POST /api/score
func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxJSONBytes)
	var req ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	s.respondJSON(w, http.StatusOK, s.composer.Breakdown(req.DTWDistance, req.PhonemeDistance, req.WordDistance))
}

// handleAttempts routes requests to /api/attempts
func (s *Server) handleAttempts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.handleListAttempts(w, r)
}

// handleAttempt routes requests to /api/attempts/{id}
func (s *Server) handleAttempt(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/attempts/")
	if id == "" {
		s.respondError(w, http.StatusBadRequest, "Attempt ID required")
		return
	}
	if !utils.IsUUID(id) {
		s.respondError(w, http.StatusBadRequest, "Invalid attempt ID")
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleGetAttempt(w, r, id)
	case http.MethodDelete:
		s.handleDeleteAttempt(w, r, id)
	default:
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// postOnly rejects every method but POST.
func (s *Server) postOnly(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h(w, r)
	}
}
