package splice

import (
	"math"
	"testing"

	"github.com/haivivi/wordsplice/pkg/audio/pcm"
)

// constant returns n samples of value v.
func constant(n int, v int16) pcm.Buffer {
	b := make(pcm.Buffer, n)
	for i := range b {
		b[i] = v
	}
	return b
}

// ramp returns n samples counting up from start.
func ramp(n int, start int16) pcm.Buffer {
	b := make(pcm.Buffer, n)
	for i := range b {
		b[i] = start + int16(i)
	}
	return b
}

func equal(a, b pcm.Buffer) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestMixZeroOverlapIsConcat(t *testing.T) {
	a := ramp(10, 0)
	b := ramp(7, 100)
	for _, overlap := range []int{0, -5} {
		got := Mix(a, b, overlap)
		if !equal(got, pcm.Concat(a, b)) {
			t.Errorf("Mix(a, b, %d) = %v, want concat", overlap, got)
		}
	}
}

func TestMixLength(t *testing.T) {
	tests := []struct {
		la, lb, overlap, want int
	}{
		{100, 100, 10, 190},
		{100, 5, 10, 100}, // clamped to len(b)
		{3, 100, 10, 100}, // clamped to len(a)
		{0, 10, 10, 10},
		{10, 0, 10, 10},
	}
	for _, tt := range tests {
		got := Mix(constant(tt.la, 1), constant(tt.lb, 2), tt.overlap)
		if len(got) != tt.want {
			t.Errorf("len(Mix(%d, %d, %d)) = %d, want %d", tt.la, tt.lb, tt.overlap, len(got), tt.want)
		}
	}
}

func TestMixBoundaryContinuity(t *testing.T) {
	a := constant(200, 1000)
	b := constant(200, -1000)
	const n = 100

	got := Mix(a, b, n)
	head := len(a) - n

	if !equal(got[:head], a[:head]) {
		t.Error("prefix of a must be untouched")
	}
	if got[head] != 1000 {
		t.Errorf("first blended sample = %d, want a's sample 1000", got[head])
	}
	// i = n-1: 1000*(1/100) + -1000*(99/100) = -980
	if got[head+n-1] != -980 {
		t.Errorf("last blended sample = %d, want -980", got[head+n-1])
	}
	if !equal(got[head+n:], b[n:]) {
		t.Error("suffix of b must be untouched")
	}
	for i := 1; i < n; i++ {
		if got[head+i] > got[head+i-1] {
			t.Fatalf("cross-fade not monotonic at %d: %d > %d", i, got[head+i], got[head+i-1])
		}
	}
}

func TestMixSaturates(t *testing.T) {
	hi := constant(50, math.MaxInt16)
	lo := constant(50, math.MinInt16)

	for _, got := range []pcm.Buffer{Mix(hi, hi, 50), Mix(hi, hi, 17)} {
		for i, v := range got {
			if v < math.MaxInt16-1 {
				t.Fatalf("sample %d = %d wrapped or dropped below the ceiling", i, v)
			}
		}
	}
	for i, v := range Mix(lo, lo, 50) {
		if v > math.MinInt16+1 {
			t.Fatalf("sample %d = %d wrapped or rose above the floor", i, v)
		}
	}
	if got := Mix(hi, lo, 50); got[0] != math.MaxInt16 {
		t.Errorf("first sample = %d, want %d", got[0], math.MaxInt16)
	}
}

func TestMixDoesNotMutate(t *testing.T) {
	a := ramp(20, 0)
	b := ramp(20, 50)
	ac := a.Clone()
	bc := b.Clone()
	_ = Mix(a, b, 10)
	if !equal(a, ac) || !equal(b, bc) {
		t.Error("Mix modified its inputs")
	}
}
