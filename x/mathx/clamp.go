package mathx

import "golang.org/x/exp/constraints"

// Clamp limits v to [lo, hi]. If lo > hi, the bounds are swapped.
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if hi < lo {
		lo, hi = hi, lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Min returns the smaller of a and b.
func Min[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}

// Mirror reflects v inside [0, extent-1]. Values outside the range are
// clamped first; extent 0 returns v unchanged.
func Mirror[T constraints.Unsigned](v, extent T) T {
	if extent == 0 {
		return v
	}
	return extent - 1 - Clamp(v, 0, extent-1)
}
