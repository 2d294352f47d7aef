package mathx

import (
	"math"
	"testing"
)

func TestMulDiv(t *testing.T) {
	cases := []struct {
		a, b, den, want uint64
	}{
		{0, 100, 7, 0},
		{100, 100, 150, 66},
		{33, 50, 100, 16},
		{math.MaxUint64, 1, 1, math.MaxUint64},
		{math.MaxUint64, 10000, 20000, math.MaxUint64 / 2},
	}
	for _, c := range cases {
		if got := MulDiv(c.a, c.b, c.den); got != c.want {
			t.Fatalf("MulDiv(%d,%d,%d) = %d, want %d", c.a, c.b, c.den, got, c.want)
		}
	}
}

func TestMulDivChecked(t *testing.T) {
	if got, ok := MulDivChecked(100, 100, 150); !ok || got != 66 {
		t.Fatalf("MulDivChecked(100,100,150) = %d, %v", got, ok)
	}
	// Quotient needs more than 64 bits.
	if _, ok := MulDivChecked(math.MaxUint64, math.MaxUint64, 1); ok {
		t.Fatalf("expected overflow to report !ok")
	}
	if _, ok := MulDivChecked(4, 1<<63, 1); ok {
		t.Fatalf("expected overflow to report !ok")
	}
}

func TestAbsInt(t *testing.T) {
	if AbsInt(-3) != 3 || AbsInt(3) != 3 || AbsInt(0) != 0 {
		t.Fatalf("AbsInt broken")
	}
}

func TestHash2Deterministic(t *testing.T) {
	a := Hash2(1337, 5, -7)
	b := Hash2(1337, 5, -7)
	if a != b {
		t.Fatalf("Hash2 not deterministic: %d != %d", a, b)
	}
	if Hash2(1337, 5, -7) == Hash2(1338, 5, -7) {
		t.Fatalf("seed should perturb hash")
	}
	if Hash2(1337, 5, -7) == Hash2(1337, -7, 5) {
		t.Fatalf("coordinates should not be interchangeable")
	}
}
