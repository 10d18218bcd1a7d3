package gublas

// batchVectors resolves one batch element to its vector storage. The two
// implementations cover the two batching layouts the reduction engine
// accepts: an array of independent device pointers, and a single buffer
// with a fixed stride between batch starts.
//
// vector returns the backing slice for batch b together with the element
// step, resolved once per reduction group so the per-element path stays
// branch-free. Element i of the vector (0-based natural position) lives at
// data[i*step].
//
// A negative increment traverses storage from the last element, but
// reported indices are natural (increasing) positions: element i then sits
// at (n-1-i)*|incx| from the traversal start, which is i*|incx| from the
// buffer base. Either sign therefore resolves to step = |incx| over the
// same base.
type batchVectors[T Numeric] interface {
	vector(batch int) (data []T, step int)
}

// elementStep folds the increment sign into the natural-order step.
func elementStep(incx int) int {
	if incx < 0 {
		return -incx
	}
	return incx
}

// ptrBatch addresses a batch as independent per-vector device pointers.
type ptrBatch[T Numeric] struct {
	vecs [][]T
	step int
}

func newPtrBatch[T Numeric](x []DevicePtr, incx int) ptrBatch[T] {
	vecs := make([][]T, len(x))
	for b, d := range x {
		vecs[b] = deviceSlice[T](d)
	}
	return ptrBatch[T]{vecs: vecs, step: elementStep(incx)}
}

func (p ptrBatch[T]) vector(batch int) ([]T, int) {
	return p.vecs[batch], p.step
}

// spanOK reports whether every batch vector covers n natural positions at
// the configured step.
func (p ptrBatch[T]) spanOK(n int) bool {
	need := (n-1)*p.step + 1
	for _, v := range p.vecs {
		if len(v) < need {
			return false
		}
	}
	return true
}

// stridedBatch addresses a batch as one buffer with a fixed stride between
// batch starts. Strides smaller than the vector span deliberately overlap;
// the engine does not guard against that.
type stridedBatch[T Numeric] struct {
	data   []T
	stride int
	step   int
}

func newStridedBatch[T Numeric](x DevicePtr, incx, stride int) stridedBatch[T] {
	return stridedBatch[T]{
		data:   deviceSlice[T](x),
		stride: stride,
		step:   elementStep(incx),
	}
}

func (s stridedBatch[T]) vector(batch int) ([]T, int) {
	return s.data[batch*s.stride:], s.step
}

func (s stridedBatch[T]) spanOK(n, batchCount int) bool {
	need := (batchCount-1)*s.stride + (n-1)*s.step + 1
	return len(s.data) >= need
}
