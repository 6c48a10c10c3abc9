package align

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestDTWIdenticalSequences(t *testing.T) {
	a := [][]float64{{1, 2}, {3, 4}, {5, 6}, {7, 8}}

	cost, path, err := DTW(a, a, Euclidean)
	if err != nil {
		t.Fatalf("DTW failed: %v", err)
	}
	if cost != 0 {
		t.Errorf("cost = %f, want 0", cost)
	}
	want := []PathStep{{0, 0}, {1, 1}, {2, 2}, {3, 3}}
	if !reflect.DeepEqual(path, want) {
		t.Errorf("path = %v, want diagonal %v", path, want)
	}
}

func TestDTWPathIsMonotonicAndContinuous(t *testing.T) {
	a := ScalarFrames([]float64{0, 1, 2, 3, 2, 1})
	b := ScalarFrames([]float64{0, 0, 1, 3, 3, 1, 0, 0})

	cost, path, err := DTW(a, b, Euclidean)
	if err != nil {
		t.Fatalf("DTW failed: %v", err)
	}
	if path[0] != (PathStep{0, 0}) {
		t.Errorf("path starts at %v", path[0])
	}
	if last := path[len(path)-1]; last != (PathStep{len(a) - 1, len(b) - 1}) {
		t.Errorf("path ends at %v", last)
	}

	var sum float64
	for k, step := range path {
		sum += Euclidean(a[step.I], b[step.J])
		if k == 0 {
			continue
		}
		di := step.I - path[k-1].I
		dj := step.J - path[k-1].J
		if di < 0 || dj < 0 || di > 1 || dj > 1 || (di == 0 && dj == 0) {
			t.Fatalf("invalid step %v -> %v", path[k-1], step)
		}
	}
	if math.Abs(sum-cost) > 1e-9 {
		t.Errorf("path cost %f differs from reported cost %f", sum, cost)
	}
}

func TestDTWDifferentLengths(t *testing.T) {
	a := ScalarFrames([]float64{1, 2, 3})
	b := ScalarFrames([]float64{1, 2, 2, 3})

	cost, path, err := DTW(a, b, nil)
	if err != nil {
		t.Fatalf("DTW failed: %v", err)
	}
	if cost != 0 {
		t.Errorf("cost = %f, want 0 for a pure time stretch", cost)
	}
	if len(path) != 4 {
		t.Errorf("path length = %d, want 4", len(path))
	}
}

func TestDTWEmptyInputs(t *testing.T) {
	cost, path, err := DTW(nil, nil, Euclidean)
	if err != nil || cost != 0 || len(path) != 0 {
		t.Errorf("DTW(nil, nil) = (%f, %v, %v), want (0, [], nil)", cost, path, err)
	}

	_, _, err = DTW(nil, [][]float64{{1}}, Euclidean)
	if !errors.Is(err, ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput, got %v", err)
	}
	_, _, err = DTW([][]float64{{1}}, [][]float64{}, Euclidean)
	if !errors.Is(err, ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput, got %v", err)
	}
}

func TestEuclidean(t *testing.T) {
	if d := Euclidean([]float64{0, 0}, []float64{3, 4}); d != 5 {
		t.Errorf("Euclidean = %f, want 5", d)
	}
	if d := Euclidean([]float64{3}, []float64{3, 4}); d != 4 {
		t.Errorf("Euclidean with ragged vectors = %f, want 4", d)
	}
}

func TestAlignCurvesIdentical(t *testing.T) {
	s := []float64{120, 130, 128, 110, 95}

	a1, a2, err := AlignCurves(s, s)
	if err != nil {
		t.Fatalf("AlignCurves failed: %v", err)
	}
	if !reflect.DeepEqual(a1, a2) {
		t.Errorf("aligned curves differ: %v vs %v", a1, a2)
	}
	if !reflect.DeepEqual(a1, s) {
		t.Errorf("aligned curve %v, want %v", a1, s)
	}
}

func TestAlignCurvesDifferentLengths(t *testing.T) {
	a1, a2, err := AlignCurves([]float64{1, 2, 3}, []float64{1, 2, 3, 4, 5})
	if err != nil {
		t.Fatalf("AlignCurves failed: %v", err)
	}
	if len(a1) != len(a2) {
		t.Fatalf("lengths differ: %d vs %d", len(a1), len(a2))
	}
	if len(a1) < 5 {
		t.Errorf("aligned length %d shorter than the longer input", len(a1))
	}
}

func TestAlignCurvesEmpty(t *testing.T) {
	a1, a2, err := AlignCurves([]float64{}, []float64{})
	if err != nil {
		t.Fatalf("AlignCurves on empty input failed: %v", err)
	}
	if len(a1) != 0 || len(a2) != 0 {
		t.Errorf("expected empty outputs, got %v / %v", a1, a2)
	}

	if _, _, err := AlignCurves([]float64{}, []float64{1.0}); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput, got %v", err)
	}
}
