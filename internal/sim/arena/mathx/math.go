package mathx

import "math/bits"

// MulDiv returns floor(a*b/den) with a 128-bit intermediate, so share and
// payout arithmetic cannot overflow on the multiply. den must be nonzero and
// the quotient must fit in 64 bits; callers that cannot guarantee the fit
// use MulDivChecked.
func MulDiv(a, b, den uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	q, _ := bits.Div64(hi, lo, den)
	return q
}

// MulDivChecked is MulDiv with ok=false instead of a panic when the
// quotient does not fit in 64 bits.
func MulDivChecked(a, b, den uint64) (uint64, bool) {
	hi, lo := bits.Mul64(a, b)
	if hi >= den {
		return 0, false
	}
	q, _ := bits.Div64(hi, lo, den)
	return q, true
}

func AbsInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func mix64(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

func Hash2(seed int64, x, y int) uint64 {
	ux := uint64(uint32(int32(x)))
	uy := uint64(uint32(int32(y)))
	v := uint64(seed) ^ (ux * 0x9e3779b97f4a7c15) ^ (uy * 0xbf58476d1ce4e5b9)
	return mix64(v)
}
