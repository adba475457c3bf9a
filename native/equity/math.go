package equity

import "math/bits"

// checkedMul multiplies two uint64 values and fails instead of wrapping.
func checkedMul(a, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, ErrMathOverflow
	}
	return lo, nil
}

// checkedSub subtracts b from a and fails instead of wrapping.
func checkedSub(a, b uint64) (uint64, error) {
	if b > a {
		return 0, ErrMathOverflow
	}
	return a - b, nil
}
