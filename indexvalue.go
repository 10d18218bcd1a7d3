package gublas

import "math"

// Real constrains the magnitude type of a reduction: float32 for the
// single-precision instantiations, float64 for the double-precision ones.
type Real interface {
	~float32 | ~float64
}

// Numeric constrains the element types the index reductions accept.
type Numeric interface {
	~float32 | ~float64 | ~complex64 | ~complex128
}

// NoIndex is written to the result buffer when a batch element has no
// extremum to report (n <= 0). Valid results are 0-based positions in
// [0, n).
const NoIndex int32 = -1

// indexValue is one extremum candidate: the 0-based position of an element
// and its magnitude. A negative index marks the identity candidate, which
// loses every comparison; idle reduction lanes contribute it.
type indexValue[S Real] struct {
	index int32
	value S
}

// pairFunc merges two candidates under one extremum ordering.
type pairFunc[S Real] func(a, b indexValue[S]) indexValue[S]

func isNaN[S Real](v S) bool {
	return math.IsNaN(float64(v))
}

// amaxPair returns the better candidate for the "max" ordering: larger
// magnitude wins; equal magnitudes resolve to the lower index; NaN loses to
// any finite magnitude, and between two NaNs the lower index wins, so an
// all-NaN vector reduces to its first position. The operation is
// associative and commutative, which keeps the result independent of
// reduction tree shape.
func amaxPair[S Real](a, b indexValue[S]) indexValue[S] {
	if b.index < 0 {
		return a
	}
	if a.index < 0 {
		return b
	}
	an, bn := isNaN(a.value), isNaN(b.value)
	if an || bn {
		if an && bn {
			if b.index < a.index {
				return b
			}
			return a
		}
		if an {
			return b
		}
		return a
	}
	if b.value > a.value || (b.value == a.value && b.index < a.index) {
		return b
	}
	return a
}

// aminPair is amaxPair with the comparison reversed: smaller magnitude wins.
func aminPair[S Real](a, b indexValue[S]) indexValue[S] {
	if b.index < 0 {
		return a
	}
	if a.index < 0 {
		return b
	}
	an, bn := isNaN(a.value), isNaN(b.value)
	if an || bn {
		if an && bn {
			if b.index < a.index {
				return b
			}
			return a
		}
		if an {
			return b
		}
		return a
	}
	if b.value < a.value || (b.value == a.value && b.index < a.index) {
		return b
	}
	return a
}

// Magnitude fetchers. Real types use the absolute value; complex types use
// |re| + |im| in the component precision. The complex form is the BLAS asum
// convention, not the Euclidean norm.

func absReal[S Real](v S) S {
	if v < 0 {
		return -v
	}
	return v
}

func absSumComplex64(v complex64) float32 {
	return absReal(real(v)) + absReal(imag(v))
}

func absSumComplex128(v complex128) float64 {
	return absReal(real(v)) + absReal(imag(v))
}
