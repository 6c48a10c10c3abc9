package transcript

import (
	"math"
	"testing"
)

func TestClean(t *testing.T) {
	cases := map[string]string{
		"  Hello, World!  ":      "hello world",
		"I'm  fine\tthanks.":     "i'm fine thanks",
		"Route 66 -- no numbers": "route no numbers",
		"":                       "",
		"?!":                     "",
	}
	for in, want := range cases {
		if got := Clean(in); got != want {
			t.Errorf("Clean(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWordDistance(t *testing.T) {
	if d := WordDistance("The cat sat", "the cat sat."); d != 0 {
		t.Errorf("distance = %d, want 0", d)
	}
	if d := WordDistance("the cat sat", "the bat"); d != 2 {
		t.Errorf("distance = %d, want 2", d)
	}
}

func TestCharDistance(t *testing.T) {
	if d := CharDistance("kitten", "sitting"); d != 3 {
		t.Errorf("distance = %d, want 3", d)
	}
	if d := CharDistance(" Hello ", "hello"); d != 0 {
		t.Errorf("distance = %d, want 0", d)
	}
}

func TestWER(t *testing.T) {
	wer, err := WER("the cat sat on the mat", "the cat sat on mat")
	if err != nil {
		t.Fatalf("WER: %v", err)
	}
	if math.Abs(wer-1.0/6.0) > 1e-9 {
		t.Errorf("wer = %v, want 1/6", wer)
	}

	if wer, err := WER("", ""); err != nil || wer != 0 {
		t.Errorf("empty WER = %v, %v", wer, err)
	}
	if wer, err := WER("", "something"); err == nil || wer != 1 {
		t.Errorf("empty reference WER = %v, %v; want 1 and an error", wer, err)
	}
}

func TestCER(t *testing.T) {
	cer, err := CER("abcd", "abed")
	if err != nil {
		t.Fatalf("CER: %v", err)
	}
	if cer != 0.25 {
		t.Errorf("cer = %v, want 0.25", cer)
	}
	if _, err := CER("", "x"); err == nil {
		t.Error("expected error for empty reference")
	}
}

func TestSimilarity(t *testing.T) {
	if s := Similarity("Hello", "hello"); s != 1 {
		t.Errorf("similarity = %v, want 1", s)
	}
	if s := Similarity("hello", "zzzzz"); s > 0.5 {
		t.Errorf("similarity = %v, want low", s)
	}
}

func TestSoundsAlike(t *testing.T) {
	if !SoundsAlike("Smith", "Smyth") {
		t.Error("smith/smyth should sound alike")
	}
	if SoundsAlike("cat", "dog") {
		t.Error("cat/dog should not sound alike")
	}
}
