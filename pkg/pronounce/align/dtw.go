package align

import (
	"errors"
	"math"
)

// ErrEmptyInput is returned when exactly one of two sequences is empty.
// Two empty sequences are a valid, zero-cost alignment.
var ErrEmptyInput = errors.New("align: one input sequence is empty")

// DistanceFunc measures the local cost between two frames.
type DistanceFunc func(a, b []float64) float64

// PathStep is one (i, j) cell on a warping path.
type PathStep struct {
	I int
	J int
}

// Euclidean is the L2 distance between two vectors. Extra dimensions of the
// longer vector are compared against zero.
func Euclidean(a, b []float64) float64 {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	var sum float64
	for k := 0; k < n; k++ {
		var x, y float64
		if k < len(a) {
			x = a[k]
		}
		if k < len(b) {
			y = b[k]
		}
		sum += (x - y) * (x - y)
	}
	return math.Sqrt(sum)
}

// DTW aligns a and b with dynamic time warping and returns the cumulative
// cost of the cheapest monotonic path from (0,0) to (len(a)-1, len(b)-1)
// together with that path. Each step advances i, j, or both by one.
func DTW(a, b [][]float64, dist DistanceFunc) (float64, []PathStep, error) {
	if len(a) == 0 && len(b) == 0 {
		return 0, nil, nil
	}
	if len(a) == 0 || len(b) == 0 {
		return 0, nil, ErrEmptyInput
	}
	if dist == nil {
		dist = Euclidean
	}

	n, m := len(a), len(b)
	cost := make([][]float64, n)
	for i := range cost {
		cost[i] = make([]float64, m)
		for j := range cost[i] {
			local := dist(a[i], b[j])
			switch {
			case i == 0 && j == 0:
				cost[i][j] = local
			case i == 0:
				cost[i][j] = local + cost[i][j-1]
			case j == 0:
				cost[i][j] = local + cost[i-1][j]
			default:
				cost[i][j] = local + math.Min(cost[i-1][j-1], math.Min(cost[i-1][j], cost[i][j-1]))
			}
		}
	}

	path := make([]PathStep, 0, n+m)
	i, j := n-1, m-1
	path = append(path, PathStep{I: i, J: j})
	for i > 0 || j > 0 {
		switch {
		case i == 0:
			j--
		case j == 0:
			i--
		default:
			// diagonal wins ties so equal sequences stay on the diagonal
			diag, up, left := cost[i-1][j-1], cost[i-1][j], cost[i][j-1]
			switch {
			case diag <= up && diag <= left:
				i--
				j--
			case up <= left:
				i--
			default:
				j--
			}
		}
		path = append(path, PathStep{I: i, J: j})
	}

	for l, r := 0, len(path)-1; l < r; l, r = l+1, r-1 {
		path[l], path[r] = path[r], path[l]
	}
	return cost[n-1][m-1], path, nil
}

// ScalarFrames lifts a scalar series into one-dimensional frames.
func ScalarFrames(seq []float64) [][]float64 {
	frames := make([][]float64, len(seq))
	for i, v := range seq {
		frames[i] = []float64{v}
	}
	return frames
}

// AlignCurves warps two scalar curves onto a shared axis: for every step
// (i, j) of the DTW path it emits seq1[i] and seq2[j], so both outputs have
// the path's length and can be overlaid directly.
func AlignCurves(seq1, seq2 []float64) ([]float64, []float64, error) {
	_, path, err := DTW(ScalarFrames(seq1), ScalarFrames(seq2), Euclidean)
	if err != nil {
		return nil, nil, err
	}

	aligned1 := make([]float64, len(path))
	aligned2 := make([]float64, len(path))
	for k, step := range path {
		aligned1[k] = seq1[step.I]
		aligned2[k] = seq2[step.J]
	}
	return aligned1, aligned2, nil
}
