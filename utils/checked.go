// utils/checked.go
package utils

import (
	"math"
	"math/bits"
)

// Overflow-checked arithmetic on ledger amounts. Every multiplication or
// addition that could exceed the representable range reports failure instead
// of wrapping, and the caller aborts the whole transition.

// CheckedMul returns a*b, or false if the product does not fit in uint64.
func CheckedMul(a, b uint64) (uint64, bool) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, false
	}
	return lo, true
}

// CheckedAdd returns a+b, or false on overflow.
func CheckedAdd(a, b uint64) (uint64, bool) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, false
	}
	return sum, true
}

// CheckedSub returns a-b, or false if b > a.
func CheckedSub(a, b uint64) (uint64, bool) {
	if b > a {
		return 0, false
	}
	return a - b, true
}

// CheckedAddI64 returns a+b for signed timestamps, or false on overflow.
// b must be non-negative (durations are).
func CheckedAddI64(a, b int64) (int64, bool) {
	if b < 0 {
		return 0, false
	}
	if a > math.MaxInt64-b {
		return 0, false
	}
	return a + b, true
}
