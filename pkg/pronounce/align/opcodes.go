// Package align holds the sequence alignment primitives used by the scorer:
// Levenshtein edit scripts over any comparable token type and dynamic time
// warping over numeric vectors.
package align

import "fmt"

// OpTag classifies one run of an edit script.
type OpTag int

const (
	Equal OpTag = iota
	Replace
	Delete
	Insert
)

func (t OpTag) String() string {
	switch t {
	case Equal:
		return "equal"
	case Replace:
		return "replace"
	case Delete:
		return "delete"
	case Insert:
		return "insert"
	default:
		return "unknown"
	}
}

// EditOp is one maximal run of the edit script turning a into b.
// a[I1:I2] relates to b[J1:J2]; Delete has an empty target range and Insert
// an empty source range.
type EditOp struct {
	Tag OpTag
	I1  int
	I2  int
	J1  int
	J2  int
}

func (op EditOp) String() string {
	return fmt.Sprintf("%s(%d,%d,%d,%d)", op.Tag, op.I1, op.I2, op.J1, op.J2)
}

// editMatrix fills the classic (len(a)+1) x (len(b)+1) Levenshtein table with
// unit insert, delete and substitute costs.
func editMatrix[T comparable](a, b []T) [][]int {
	d := make([][]int, len(a)+1)
	for i := range d {
		d[i] = make([]int, len(b)+1)
		d[i][0] = i
	}
	for j := 0; j <= len(b); j++ {
		d[0][j] = j
	}

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			sub := d[i-1][j-1]
			if a[i-1] != b[j-1] {
				sub++
			}
			best := sub
			if del := d[i-1][j] + 1; del < best {
				best = del
			}
			if ins := d[i][j-1] + 1; ins < best {
				best = ins
			}
			d[i][j] = best
		}
	}
	return d
}

// Distance returns the Levenshtein distance between a and b, treating each
// element as an atomic token.
func Distance[T comparable](a, b []T) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	return editMatrix(a, b)[len(a)][len(b)]
}

// EditOpcodes returns the minimum-cost edit script from a to b as maximal
// runs of Equal, Replace, Delete and Insert. When a substitution and an
// independent delete/insert pair cost the same, the substitution wins.
func EditOpcodes[T comparable](a, b []T) []EditOp {
	d := editMatrix(a, b)

	// Backtrack from the bottom-right corner, one step at a time. Ties go
	// Equal, Replace, Delete, Insert, so surplus target tokens come out as
	// a leading Insert.
	steps := make([]OpTag, 0, len(a)+len(b))
	i, j := len(a), len(b)
	for i > 0 || j > 0 {
		switch {
		case i > 0 && j > 0 && a[i-1] == b[j-1] && d[i][j] == d[i-1][j-1]:
			steps = append(steps, Equal)
			i--
			j--
		case i > 0 && j > 0 && d[i][j] == d[i-1][j-1]+1:
			steps = append(steps, Replace)
			i--
			j--
		case i > 0 && d[i][j] == d[i-1][j]+1:
			steps = append(steps, Delete)
			i--
		default:
			steps = append(steps, Insert)
			j--
		}
	}

	var ops []EditOp
	i, j = 0, 0
	for k := len(steps) - 1; k >= 0; k-- {
		tag := steps[k]
		di, dj := 1, 1
		switch tag {
		case Delete:
			dj = 0
		case Insert:
			di = 0
		}

		if n := len(ops); n > 0 && ops[n-1].Tag == tag {
			ops[n-1].I2 += di
			ops[n-1].J2 += dj
		} else {
			ops = append(ops, EditOp{Tag: tag, I1: i, I2: i + di, J1: j, J2: j + dj})
		}
		i += di
		j += dj
	}
	return ops
}
