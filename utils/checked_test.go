package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckedMul(t *testing.T) {
	v, ok := CheckedMul(100, 2)
	require.True(t, ok)
	require.Equal(t, uint64(200), v)

	_, ok = CheckedMul(math.MaxUint64, 2)
	require.False(t, ok)

	v, ok = CheckedMul(math.MaxUint64, 1)
	require.True(t, ok)
	require.Equal(t, uint64(math.MaxUint64), v)

	v, ok = CheckedMul(math.MaxUint64, 0)
	require.True(t, ok)
	require.Equal(t, uint64(0), v)
}

func TestCheckedAdd(t *testing.T) {
	v, ok := CheckedAdd(1, 2)
	require.True(t, ok)
	require.Equal(t, uint64(3), v)

	_, ok = CheckedAdd(math.MaxUint64, 1)
	require.False(t, ok)

	v, ok = CheckedAdd(math.MaxUint64, 0)
	require.True(t, ok)
	require.Equal(t, uint64(math.MaxUint64), v)
}

func TestCheckedSub(t *testing.T) {
	v, ok := CheckedSub(5, 3)
	require.True(t, ok)
	require.Equal(t, uint64(2), v)

	_, ok = CheckedSub(3, 5)
	require.False(t, ok)

	v, ok = CheckedSub(3, 3)
	require.True(t, ok)
	require.Equal(t, uint64(0), v)
}

func TestCheckedAddI64(t *testing.T) {
	v, ok := CheckedAddI64(10, 5)
	require.True(t, ok)
	require.Equal(t, int64(15), v)

	_, ok = CheckedAddI64(math.MaxInt64, 1)
	require.False(t, ok)

	// Negative durations are never valid.
	_, ok = CheckedAddI64(10, -1)
	require.False(t, ok)

	// Negative base (pre-epoch expiry) still adds cleanly.
	v, ok = CheckedAddI64(-100, 50)
	require.True(t, ok)
	require.Equal(t, int64(-50), v)
}
