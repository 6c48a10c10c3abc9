package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Halleck45/OpenPronounce/pkg/pronounce/align"
	"github.com/Halleck45/OpenPronounce/pkg/pronounce/audio"
)

func tone(freq float64, n, rate int) audio.Samples {
	data := make([]float64, n)
	for i := range data {
		data[i] = 0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate))
	}
	return audio.Samples{Data: data, SampleRate: rate}
}

func TestSpectralShape(t *testing.T) {
	s := tone(440, 16000, 16000)
	vecs, err := NewSpectral().Embed(context.Background(), s)
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	wantFrames := 1 + (16000-audio.WindowSize)/audio.HopSize
	if len(vecs) != wantFrames {
		t.Errorf("frames = %d, want %d", len(vecs), wantFrames)
	}
	for _, v := range vecs {
		if len(v) != DefaultBands {
			t.Fatalf("vector size = %d, want %d", len(v), DefaultBands)
		}
	}
}

func TestSpectralSeparatesSounds(t *testing.T) {
	sp := NewSpectral()
	ctx := context.Background()
	a, _ := sp.Embed(ctx, tone(300, 8000, 16000))
	b, _ := sp.Embed(ctx, tone(300, 8000, 16000))
	c, _ := sp.Embed(ctx, tone(3000, 8000, 16000))

	same, _, err := align.DTW(a, b, nil)
	if err != nil {
		t.Fatal(err)
	}
	diff, _, err := align.DTW(a, c, nil)
	if err != nil {
		t.Fatal(err)
	}
	if same != 0 {
		t.Errorf("identical audio distance = %v, want 0", same)
	}
	if diff <= same {
		t.Errorf("different tones distance %v not above %v", diff, same)
	}
}

func TestSpectralTooShort(t *testing.T) {
	_, err := NewSpectral().Embed(context.Background(), tone(440, 100, 16000))
	if !errors.Is(err, ErrNoFrames) {
		t.Errorf("err = %v, want ErrNoFrames", err)
	}
}

func TestSpectralCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewSpectral().Embed(ctx, tone(440, 4096, 16000)); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestHTTPEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req embedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
			return
		}
		if req.SampleRate != 16000 || len(req.Samples) != 3 {
			t.Errorf("request = %+v", req)
		}
		json.NewEncoder(w).Encode(embedResponse{Embeddings: [][]float64{{1, 2}, {3, 4}}})
	}))
	defer srv.Close()

	h, err := NewHTTP(srv.URL, nil)
	if err != nil {
		t.Fatal(err)
	}
	vecs, err := h.Embed(context.Background(), audio.Samples{Data: []float64{0, 0.1, 0.2}, SampleRate: 16000})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vecs) != 2 || vecs[1][1] != 4 {
		t.Errorf("vectors = %v", vecs)
	}
}

func TestHTTPEmbedErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/empty" {
			w.Write([]byte(`{"embeddings": []}`))
			return
		}
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	h, _ := NewHTTP(srv.URL+"/fail", srv.Client())
	if _, err := h.Embed(context.Background(), audio.Samples{SampleRate: 16000}); err == nil {
		t.Error("expected HTTP error")
	}

	h, _ = NewHTTP(srv.URL+"/empty", srv.Client())
	if _, err := h.Embed(context.Background(), audio.Samples{SampleRate: 16000}); !errors.Is(err, ErrNoFrames) {
		t.Errorf("err = %v, want ErrNoFrames", err)
	}

	if _, err := NewHTTP("", nil); err == nil {
		t.Error("expected error for empty URL")
	}
}
