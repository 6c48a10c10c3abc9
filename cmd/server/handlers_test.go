package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/Halleck45/OpenPronounce/pkg/models"
	"github.com/Halleck45/OpenPronounce/pkg/pronounce"
	"github.com/Halleck45/OpenPronounce/pkg/pronounce/storage"
)

const knownID = "6f1c3c1e-3f5e-4a8e-9a43-2b8a9d7f2c10"

type fakeService struct {
	gotText   string
	gotUpload []byte
	history   bool
	deleted   []string
}

func (f *fakeService) CompareAudioWithText(_ context.Context, audioPath, expectedText string) (*pronounce.Analysis, error) {
	data, err := os.ReadFile(audioPath)
	if err != nil {
		return nil, err
	}
	f.gotUpload = data
	f.gotText = expectedText
	return &pronounce.Analysis{ExpectedText: expectedText, Transcript: "hello word", Score: 72.5}, nil
}

func (f *fakeService) Transcribe(context.Context, string) (string, error) {
	return "", pronounce.ErrNoTranscriber
}

func (f *fakeService) Phonemes(_ context.Context, text string) (*pronounce.PhonemeListing, error) {
	if strings.TrimSpace(text) == "" {
		return nil, pronounce.ErrEmptyText
	}
	return &pronounce.PhonemeListing{Text: text, Phonemes: []string{"h", "aɪ"}, PhonemeToWord: []string{text, text}}, nil
}

func (f *fakeService) GetAttempt(_ context.Context, id string) (*models.AttemptDetail, error) {
	if id != knownID {
		return nil, fmt.Errorf("get %s: %w", id, storage.ErrAttemptNotFound)
	}
	return &models.AttemptDetail{AttemptSummary: models.AttemptSummary{ID: id, Score: 90}}, nil
}

func (f *fakeService) ListAttempts(_ context.Context, limit int) ([]models.AttemptSummary, error) {
	if !f.history {
		return nil, pronounce.ErrHistoryDisabled
	}
	out := []models.AttemptSummary{{ID: knownID}, {ID: "other"}}
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeService) DeleteAttempt(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeService) Stats(context.Context) (models.AttemptStats, error) {
	if !f.history {
		return models.AttemptStats{}, pronounce.ErrHistoryDisabled
	}
	return models.AttemptStats{Count: 3, AverageScore: 81.5}, nil
}

func (f *fakeService) Close() error { return nil }

func newTestServer(t *testing.T, svc *fakeService) http.Handler {
	t.Helper()
	s := NewServer(svc, &ServerConfig{
		TempDir:        t.TempDir(),
		SampleRate:     16000,
		DBPath:         "test.sqlite3",
		AllowedOrigins: []string{"*"},
	}, nil)
	return s.setupRoutes()
}

func do(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func multipartBody(t *testing.T, fields map[string]string, audio []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if audio != nil {
		fw, err := mw.CreateFormFile("audio", "take1.webm")
		if err != nil {
			t.Fatal(err)
		}
		fw.Write(audio)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &body, mw.FormDataContentType()
}

func TestHandlePronunciation(t *testing.T) {
	svc := &fakeService{}
	h := newTestServer(t, svc)

	body, ct := multipartBody(t, map[string]string{"expected_text": " hello world "}, []byte("RIFF-fake"))
	req := httptest.NewRequest(http.MethodPost, "/api/pronunciation", body)
	req.Header.Set("Content-Type", ct)
	rec := do(h, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var got pronounce.Analysis
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.Score != 72.5 || got.Transcript != "hello word" {
		t.Errorf("analysis = %+v", got)
	}
	if svc.gotText != "hello world" || string(svc.gotUpload) != "RIFF-fake" {
		t.Errorf("service got %q / %q", svc.gotText, svc.gotUpload)
	}
}

func TestHandlePronunciationValidation(t *testing.T) {
	h := newTestServer(t, &fakeService{})

	body, ct := multipartBody(t, map[string]string{"expected_text": "hi"}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/pronunciation", body)
	req.Header.Set("Content-Type", ct)
	if rec := do(h, req); rec.Code != http.StatusBadRequest {
		t.Errorf("missing audio: status = %d", rec.Code)
	}

	body, ct = multipartBody(t, nil, []byte("x"))
	req = httptest.NewRequest(http.MethodPost, "/api/pronunciation", body)
	req.Header.Set("Content-Type", ct)
	if rec := do(h, req); rec.Code != http.StatusBadRequest {
		t.Errorf("missing text: status = %d", rec.Code)
	}

	if rec := do(h, httptest.NewRequest(http.MethodGet, "/api/pronunciation", nil)); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET: status = %d", rec.Code)
	}
}

func TestHandleSpeech2TextWithoutTranscriber(t *testing.T) {
	h := newTestServer(t, &fakeService{})
	body, ct := multipartBody(t, nil, []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/api/speech2text", body)
	req.Header.Set("Content-Type", ct)

	rec := do(h, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
	var e ErrorResponse
	json.NewDecoder(rec.Body).Decode(&e)
	if e.Code != http.StatusServiceUnavailable || e.Message == "" {
		t.Errorf("error body = %+v", e)
	}
}

func TestHandlePhonemes(t *testing.T) {
	h := newTestServer(t, &fakeService{})

	req := httptest.NewRequest(http.MethodPost, "/api/phonemes", strings.NewReader(`{"text":"hi"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := do(h, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var listing pronounce.PhonemeListing
	json.NewDecoder(rec.Body).Decode(&listing)
	if len(listing.Phonemes) != 2 {
		t.Errorf("listing = %+v", listing)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/phonemes", strings.NewReader("text="))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if rec := do(h, req); rec.Code != http.StatusBadRequest {
		t.Errorf("empty form text: status = %d", rec.Code)
	}
}

func TestHandleAttempts(t *testing.T) {
	svc := &fakeService{history: true}
	h := newTestServer(t, svc)

	rec := do(h, httptest.NewRequest(http.MethodGet, "/api/attempts?limit=1", nil))
	var list ListAttemptsResponse
	json.NewDecoder(rec.Body).Decode(&list)
	if rec.Code != http.StatusOK || list.Count != 1 {
		t.Errorf("list: status %d, %+v", rec.Code, list)
	}

	if rec := do(h, httptest.NewRequest(http.MethodGet, "/api/attempts?limit=zero", nil)); rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit: status = %d", rec.Code)
	}
	if rec := do(h, httptest.NewRequest(http.MethodGet, "/api/attempts/"+knownID, nil)); rec.Code != http.StatusOK {
		t.Errorf("get known: status = %d", rec.Code)
	}
	if rec := do(h, httptest.NewRequest(http.MethodGet, "/api/attempts/0b7d6a9e-4c55-4b1e-8f36-1f2f3a4b5c6d", nil)); rec.Code != http.StatusNotFound {
		t.Errorf("get unknown: status = %d", rec.Code)
	}
	if rec := do(h, httptest.NewRequest(http.MethodGet, "/api/attempts/not-a-uuid", nil)); rec.Code != http.StatusBadRequest {
		t.Errorf("get invalid: status = %d", rec.Code)
	}

	rec = do(h, httptest.NewRequest(http.MethodDelete, "/api/attempts/"+knownID, nil))
	if rec.Code != http.StatusOK || len(svc.deleted) != 1 || svc.deleted[0] != knownID {
		t.Errorf("delete: status %d, deleted %v", rec.Code, svc.deleted)
	}
}

func TestHandleAttemptsHistoryDisabled(t *testing.T) {
	h := newTestServer(t, &fakeService{})
	if rec := do(h, httptest.NewRequest(http.MethodGet, "/api/attempts", nil)); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestHandleMetrics(t *testing.T) {
	rec := do(newTestServer(t, &fakeService{history: true}), httptest.NewRequest(http.MethodGet, "/api/health/metrics", nil))
	var m MetricsResponse
	json.NewDecoder(rec.Body).Decode(&m)
	if !m.HistoryEnabled || m.AttemptCount != 3 || m.AverageScore != 81.5 {
		t.Errorf("metrics = %+v", m)
	}

	rec = do(newTestServer(t, &fakeService{}), httptest.NewRequest(http.MethodGet, "/api/health/metrics", nil))
	m = MetricsResponse{}
	json.NewDecoder(rec.Body).Decode(&m)
	if rec.Code != http.StatusOK || m.HistoryEnabled || m.AttemptCount != 0 {
		t.Errorf("without history: status %d, %+v", rec.Code, m)
	}
}

func TestHandleAlign(t *testing.T) {
	h := newTestServer(t, &fakeService{})

	rec := do(h, httptest.NewRequest(http.MethodPost, "/api/align", strings.NewReader(`{"seq1":[1,2,3],"seq2":[1,3]}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var got AlignResponse
	json.NewDecoder(rec.Body).Decode(&got)
	if len(got.Seq1) != len(got.Seq2) || len(got.Seq1) < 3 {
		t.Errorf("aligned = %+v", got)
	}

	rec = do(h, httptest.NewRequest(http.MethodPost, "/api/align", strings.NewReader(`{"seq1":[1],"seq2":[]}`)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("one empty side: status = %d", rec.Code)
	}
}

func TestHandleAlignRejectsLargeInput(t *testing.T) {
	h := newTestServer(t, &fakeService{})
	post := func(body []byte) int {
		return do(h, httptest.NewRequest(http.MethodPost, "/api/align", bytes.NewReader(body))).Code
	}
	curves := func(n, m int) []byte {
		body, _ := json.Marshal(AlignRequest{Seq1: make([]float64, n), Seq2: make([]float64, m)})
		return body
	}

	if code := post(curves(2001, 2000)); code != http.StatusBadRequest {
		t.Errorf("%d cells: status = %d, want 400", 2001*2000, code)
	}
	if code := post(curves(MaxCurveLength+1, 1)); code != http.StatusBadRequest {
		t.Errorf("curve over %d points: status = %d, want 400", MaxCurveLength, code)
	}
	if code := post(curves(MaxCurveLength, 10)); code != http.StatusOK {
		t.Errorf("long curve against a short one: status = %d, want 200", code)
	}

	padded := append(bytes.Repeat([]byte(" "), MaxJSONBytes), []byte(`{"seq1":[1],"seq2":[1]}`)...)
	if code := post(padded); code != http.StatusBadRequest {
		t.Errorf("oversized body: status = %d, want 400", code)
	}
}

func TestHandleScore(t *testing.T) {
	h := newTestServer(t, &fakeService{})
	rec := do(h, httptest.NewRequest(http.MethodPost, "/api/score",
		strings.NewReader(`{"dtw_distance":250,"phoneme_distance":0,"word_distance":0}`)))
	var b models.ScoreBreakdown
	json.NewDecoder(rec.Body).Decode(&b)
	if rec.Code != http.StatusOK || b.FinalScore != 80 {
		t.Errorf("status %d, breakdown %+v", rec.Code, b)
	}
}

func TestCORSPreflight(t *testing.T) {
	h := newTestServer(t, &fakeService{})
	req := httptest.NewRequest(http.MethodOptions, "/api/pronunciation", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := do(h, req)
	if rec.Code != http.StatusNoContent || rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("preflight: %d %v", rec.Code, rec.Header())
	}
}

func TestRootAndUnknownPaths(t *testing.T) {
	h := newTestServer(t, &fakeService{})
	if rec := do(h, httptest.NewRequest(http.MethodGet, "/", nil)); rec.Code != http.StatusOK {
		t.Errorf("root: status = %d", rec.Code)
	}
	if rec := do(h, httptest.NewRequest(http.MethodGet, "/nope", nil)); rec.Code != http.StatusNotFound {
		t.Errorf("unknown: status = %d", rec.Code)
	}
}
