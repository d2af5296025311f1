package conv

import (
	"errors"
	"fmt"
	"math"
)

// ErrOverflow is wrapped by every failed conversion.
var ErrOverflow = errors.New("integer overflow")

// IntToUint32 converts v to uint32, failing if it is negative or too large.
func IntToUint32(v int) (uint32, error) {
	if v < 0 {
		return 0, fmt.Errorf("%w: %d is negative", ErrOverflow, v)
	}
	if uint64(v) > math.MaxUint32 {
		return 0, fmt.Errorf("%w: %d exceeds %d", ErrOverflow, v, uint64(math.MaxUint32))
	}
	return uint32(v), nil
}

// ClampUint32 converts v to uint32, saturating at both ends.
func ClampUint32(v int) uint32 {
	switch {
	case v < 0:
		return 0
	case uint64(v) > math.MaxUint32:
		return math.MaxUint32
	}
	return uint32(v)
}

// Uint64ToInt converts v to int, failing if it does not fit.
func Uint64ToInt(v uint64) (int, error) {
	if v > uint64(math.MaxInt) {
		return 0, fmt.Errorf("%w: %d exceeds %d", ErrOverflow, v, math.MaxInt)
	}
	return int(v), nil
}
