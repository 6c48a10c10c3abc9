package align

import (
	"reflect"
	"testing"
)

func TestEditOpcodesIdentical(t *testing.T) {
	a := []string{"h", "ə", "l", "oʊ"}

	ops := EditOpcodes(a, a)
	want := []EditOp{{Tag: Equal, I1: 0, I2: 4, J1: 0, J2: 4}}
	if !reflect.DeepEqual(ops, want) {
		t.Fatalf("EditOpcodes(a, a) = %v, want %v", ops, want)
	}
	if d := Distance(a, a); d != 0 {
		t.Errorf("Distance(a, a) = %d, want 0", d)
	}
}

func TestEditOpcodesEmpty(t *testing.T) {
	if ops := EditOpcodes([]string{}, []string{}); len(ops) != 0 {
		t.Errorf("expected no ops for two empty inputs, got %v", ops)
	}

	ops := EditOpcodes([]string{}, []string{"a", "b"})
	want := []EditOp{{Tag: Insert, I1: 0, I2: 0, J1: 0, J2: 2}}
	if !reflect.DeepEqual(ops, want) {
		t.Errorf("insert-only script = %v, want %v", ops, want)
	}

	ops = EditOpcodes([]string{"a", "b"}, nil)
	want = []EditOp{{Tag: Delete, I1: 0, I2: 2, J1: 0, J2: 0}}
	if !reflect.DeepEqual(ops, want) {
		t.Errorf("delete-only script = %v, want %v", ops, want)
	}
}

func TestEditOpcodesPrefersReplace(t *testing.T) {
	a := []string{"k", "æ", "t"}
	b := []string{"k", "ʌ", "t"}

	ops := EditOpcodes(a, b)
	want := []EditOp{
		{Tag: Equal, I1: 0, I2: 1, J1: 0, J2: 1},
		{Tag: Replace, I1: 1, I2: 2, J1: 1, J2: 2},
		{Tag: Equal, I1: 2, I2: 3, J1: 2, J2: 3},
	}
	if !reflect.DeepEqual(ops, want) {
		t.Fatalf("EditOpcodes = %v, want %v", ops, want)
	}
}

func TestEditOpcodesMergesRuns(t *testing.T) {
	a := []string{"a", "b", "c", "d"}
	b := []string{"x", "y", "c", "d", "e"}

	ops := EditOpcodes(a, b)
	want := []EditOp{
		{Tag: Replace, I1: 0, I2: 2, J1: 0, J2: 2},
		{Tag: Equal, I1: 2, I2: 4, J1: 2, J2: 4},
		{Tag: Insert, I1: 4, I2: 4, J1: 4, J2: 5},
	}
	if !reflect.DeepEqual(ops, want) {
		t.Fatalf("EditOpcodes = %v, want %v", ops, want)
	}
	if d := Distance(a, b); d != 3 {
		t.Errorf("Distance = %d, want 3", d)
	}
}

func TestEditOpcodesPartitionBothSequences(t *testing.T) {
	cases := []struct {
		a, b []string
	}{
		{[]string{"aɪ", "m"}, []string{"aɪ", "ɛ", "m"}},
		{[]string{"ð", "æ", "t"}, []string{"d", "æ"}},
		{[]string{"a", "b", "c"}, []string{"d", "e", "f", "g", "h"}},
		{[]string{"w", "ɜ", "l", "d"}, []string{"w", "ɜ", "ɹ", "l", "d"}},
		{[]string{"x"}, []string{"y"}},
	}

	for _, tc := range cases {
		ops := EditOpcodes(tc.a, tc.b)
		nextI, nextJ := 0, 0
		cost := 0
		for _, op := range ops {
			if op.I1 != nextI || op.J1 != nextJ {
				t.Fatalf("%v -> %v: gap or overlap at %v", tc.a, tc.b, op)
			}
			switch op.Tag {
			case Equal:
				for k := 0; k < op.I2-op.I1; k++ {
					if tc.a[op.I1+k] != tc.b[op.J1+k] {
						t.Errorf("equal run %v pairs different tokens", op)
					}
				}
			case Replace:
				cost += max(op.I2-op.I1, op.J2-op.J1)
			case Delete:
				if op.J1 != op.J2 {
					t.Errorf("delete run %v has a target range", op)
				}
				cost += op.I2 - op.I1
			case Insert:
				if op.I1 != op.I2 {
					t.Errorf("insert run %v has a source range", op)
				}
				cost += op.J2 - op.J1
			}
			nextI, nextJ = op.I2, op.J2
		}
		if nextI != len(tc.a) || nextJ != len(tc.b) {
			t.Errorf("%v -> %v: ops end at (%d,%d), want (%d,%d)", tc.a, tc.b, nextI, nextJ, len(tc.a), len(tc.b))
		}
		if d := Distance(tc.a, tc.b); cost < d {
			t.Errorf("%v -> %v: script cost %d below distance %d", tc.a, tc.b, cost, d)
		}
	}
}

func TestDistanceWords(t *testing.T) {
	a := []string{"the", "cat", "sat"}
	b := []string{"the", "hat", "sat", "down"}
	if d := Distance(a, b); d != 2 {
		t.Errorf("Distance = %d, want 2", d)
	}
	if d := Distance(nil, b); d != 4 {
		t.Errorf("Distance(nil, b) = %d, want 4", d)
	}
}

func TestOpTagString(t *testing.T) {
	op := EditOp{Tag: Replace, I1: 0, I2: 2, J1: 0, J2: 3}
	if got := op.String(); got != "replace(0,2,0,3)" {
		t.Errorf("String() = %q", got)
	}
}

func TestEditOpcodesLeadingInsert(t *testing.T) {
	// the backtrace walks from the end, so surplus target tokens land first
	ops := EditOpcodes([]string{"a", "b"}, []string{"c", "d", "e"})
	want := []EditOp{
		{Tag: Insert, I1: 0, I2: 0, J1: 0, J2: 1},
		{Tag: Replace, I1: 0, I2: 2, J1: 1, J2: 3},
	}
	if !reflect.DeepEqual(ops, want) {
		t.Errorf("EditOpcodes = %v, want %v", ops, want)
	}
}
