package scoring

import (
	"reflect"
	"testing"

	"github.com/Halleck45/OpenPronounce/pkg/pronounce/align"
)

func TestAlignmentMapEqual(t *testing.T) {
	ops := []align.EditOp{{Tag: align.Equal, I1: 0, I2: 3, J1: 0, J2: 3}}
	amap := BuildAlignmentMap(ops, 3)
	want := AlignmentMap{{0}, {1}, {2}}
	if !reflect.DeepEqual(amap, want) {
		t.Errorf("map = %v, want %v", amap, want)
	}
}

func TestAlignmentMapReplaceProportional(t *testing.T) {
	ops := []align.EditOp{{Tag: align.Replace, I1: 0, I2: 2, J1: 0, J2: 3}}
	amap := BuildAlignmentMap(ops, 2)
	want := AlignmentMap{{0}, {1, 2}}
	if !reflect.DeepEqual(amap, want) {
		t.Errorf("map = %v, want %v", amap, want)
	}
}

func TestAlignmentMapReplaceShrinking(t *testing.T) {
	// three source phonemes onto one target: every source index still gets
	// a target
	ops := []align.EditOp{{Tag: align.Replace, I1: 0, I2: 3, J1: 0, J2: 1}}
	amap := BuildAlignmentMap(ops, 3)
	for k, targets := range amap {
		if !reflect.DeepEqual(targets, []int{0}) {
			t.Errorf("source %d -> %v, want [0]", k, targets)
		}
	}
}

func TestAlignmentMapDeleteAndInsert(t *testing.T) {
	a := []string{"a", "b", "c"}
	b := []string{"a", "c", "d"}
	ops := align.EditOpcodes(a, b)
	amap := BuildAlignmentMap(ops, len(a))

	if !reflect.DeepEqual(amap[0], []int{0}) {
		t.Errorf("source 0 -> %v, want [0]", amap[0])
	}
	if len(amap[1]) != 0 {
		t.Errorf("deleted source 1 -> %v, want nothing", amap[1])
	}
	if !reflect.DeepEqual(amap[2], []int{1}) {
		t.Errorf("source 2 -> %v, want [1]", amap[2])
	}
	if got := amap.Unattributed(len(b)); !reflect.DeepEqual(got, []int{2}) {
		t.Errorf("unattributed = %v, want [2]", got)
	}
}

func TestAlignmentMapTargetsSortedUnion(t *testing.T) {
	amap := AlignmentMap{{2}, {0, 1}, {1}}
	if got := amap.Targets(0, 3); !reflect.DeepEqual(got, []int{0, 1, 2}) {
		t.Errorf("targets = %v", got)
	}
	if got := amap.Targets(0, 10); !reflect.DeepEqual(got, []int{0, 1, 2}) {
		t.Errorf("out of range end: targets = %v", got)
	}
	if got := amap.Targets(1, 1); len(got) != 0 {
		t.Errorf("empty range: targets = %v", got)
	}
}
