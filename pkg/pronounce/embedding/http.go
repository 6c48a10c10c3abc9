package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Halleck45/OpenPronounce/pkg/pronounce/audio"
)

// HTTP delegates embedding to a model server (wav2vec2 or similar). The
// server receives {"sample_rate": int, "samples": [float]} and answers
// {"embeddings": [[float]]}, one row per time step.
type HTTP struct {
	url        string
	httpClient *http.Client
}

var _ Embedder = (*HTTP)(nil)

// NewHTTP creates a client posting to url. A nil client gets a 60s timeout.
func NewHTTP(url string, client *http.Client) (*HTTP, error) {
	if url == "" {
		return nil, errors.New("embedding: server URL must not be empty")
	}
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &HTTP{url: url, httpClient: client}, nil
}

type embedRequest struct {
	SampleRate int       `json:"sample_rate"`
	Samples    []float64 `json:"samples"`
}

type embedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
}

func (h *HTTP) Embed(ctx context.Context, s audio.Samples) ([][]float64, error) {
	payload, err := json.Marshal(embedRequest{SampleRate: s.SampleRate, Samples: s.Data})
	if err != nil {
		return nil, fmt.Errorf("embedding: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("embedding: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding: http request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("embedding: read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding: server returned HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var out embedResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("embedding: parse JSON response: %w", err)
	}
	if len(out.Embeddings) == 0 {
		return nil, ErrNoFrames
	}
	return out.Embeddings, nil
}
