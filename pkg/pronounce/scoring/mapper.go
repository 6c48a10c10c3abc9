package scoring

import (
	"slices"

	"github.com/Halleck45/OpenPronounce/pkg/pronounce/align"
)

// AlignmentMap lists, for every source (expected) phoneme index, the target
// (transcribed) indices it aligned with, in ascending order.
type AlignmentMap [][]int

// BuildAlignmentMap converts an edit script between expected and transcribed
// phonemes into an index map sized sourceLen.
//
// Equal runs map by identity offset. Replace runs of m source and n target
// phonemes are partitioned proportionally: source k gets
// [j1+floor((k-i1)*n/m), j1+floor((k-i1+1)*n/m)), widened to one index when
// that range is empty. Delete runs map to nothing and Insert runs add no
// source entries.
func BuildAlignmentMap(ops []align.EditOp, sourceLen int) AlignmentMap {
	amap := make(AlignmentMap, sourceLen)

	for _, op := range ops {
		switch op.Tag {
		case align.Equal:
			for k := op.I1; k < op.I2 && k < sourceLen; k++ {
				amap[k] = append(amap[k], op.J1+(k-op.I1))
			}
		case align.Replace:
			m := op.I2 - op.I1
			n := op.J2 - op.J1
			if m == 0 || n == 0 {
				continue
			}
			for k := op.I1; k < op.I2 && k < sourceLen; k++ {
				rel := k - op.I1
				lo := op.J1 + rel*n/m
				hi := op.J1 + (rel+1)*n/m
				if hi <= lo {
					hi = lo + 1
				}
				if hi > op.J2 {
					hi = op.J2
					if lo >= hi {
						lo = hi - 1
					}
				}
				for j := lo; j < hi; j++ {
					amap[k] = append(amap[k], j)
				}
			}
		case align.Delete, align.Insert:
			// nothing on the source side
		}
	}
	return amap
}

// Targets returns the sorted, de-duplicated union of the target indices of
// source indices [start, end).
func (m AlignmentMap) Targets(start, end int) []int {
	seen := make(map[int]struct{})
	var out []int
	for k := start; k < end && k < len(m); k++ {
		for _, j := range m[k] {
			if _, ok := seen[j]; ok {
				continue
			}
			seen[j] = struct{}{}
			out = append(out, j)
		}
	}
	slices.Sort(out)
	return out
}

// Unattributed returns the target indices in [0, targetLen) that no source
// index maps to, i.e. extra phonemes in the transcript.
func (m AlignmentMap) Unattributed(targetLen int) []int {
	used := make([]bool, targetLen)
	for _, targets := range m {
		for _, j := range targets {
			if j >= 0 && j < targetLen {
				used[j] = true
			}
		}
	}
	var out []int
	for j, u := range used {
		if !u {
			out = append(out, j)
		}
	}
	return out
}
