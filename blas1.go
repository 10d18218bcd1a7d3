package gublas

// BLAS level-1 index-of-extremum entry points. Each routine finds, per
// batch element, the 0-based position of the entry with maximal (amax) or
// minimal (amin) magnitude. Real magnitudes are absolute values; complex
// magnitudes are |re|+|im|. Ties resolve to the lowest index.
//
// The layer is deliberately thin: every routine is one instantiation of the
// generic engine in reduction.go, named after its reference-BLAS
// counterpart (s/d/c/z by precision).
//
// All routines are asynchronous: the result buffer is defined only after
// Handle.Synchronize returns nil.

// Batched forms: x is an array of batch_count independent vector pointers,
// each traversed with increment incx. result receives batch_count int32
// indices.

func IsamaxBatched(h *Handle, n int, x []DevicePtr, incx, batchCount int, result DevicePtr) error {
	return reduceBatched("isamax_batched", h, n, x, incx, batchCount, result, absReal[float32], amaxPair[float32])
}

func IdamaxBatched(h *Handle, n int, x []DevicePtr, incx, batchCount int, result DevicePtr) error {
	return reduceBatched("idamax_batched", h, n, x, incx, batchCount, result, absReal[float64], amaxPair[float64])
}

func IcamaxBatched(h *Handle, n int, x []DevicePtr, incx, batchCount int, result DevicePtr) error {
	return reduceBatched("icamax_batched", h, n, x, incx, batchCount, result, absSumComplex64, amaxPair[float32])
}

func IzamaxBatched(h *Handle, n int, x []DevicePtr, incx, batchCount int, result DevicePtr) error {
	return reduceBatched("izamax_batched", h, n, x, incx, batchCount, result, absSumComplex128, amaxPair[float64])
}

func IsaminBatched(h *Handle, n int, x []DevicePtr, incx, batchCount int, result DevicePtr) error {
	return reduceBatched("isamin_batched", h, n, x, incx, batchCount, result, absReal[float32], aminPair[float32])
}

func IdaminBatched(h *Handle, n int, x []DevicePtr, incx, batchCount int, result DevicePtr) error {
	return reduceBatched("idamin_batched", h, n, x, incx, batchCount, result, absReal[float64], aminPair[float64])
}

func IcaminBatched(h *Handle, n int, x []DevicePtr, incx, batchCount int, result DevicePtr) error {
	return reduceBatched("icamin_batched", h, n, x, incx, batchCount, result, absSumComplex64, aminPair[float32])
}

func IzaminBatched(h *Handle, n int, x []DevicePtr, incx, batchCount int, result DevicePtr) error {
	return reduceBatched("izamin_batched", h, n, x, incx, batchCount, result, absSumComplex128, aminPair[float64])
}

// Strided-batched forms: one buffer, batch b starting stridex elements
// after batch b-1. Strides shorter than the vector span overlap on purpose
// and are not guarded.

func IsamaxStridedBatched(h *Handle, n int, x DevicePtr, incx, stridex, batchCount int, result DevicePtr) error {
	return reduceStridedBatched("isamax_strided_batched", h, n, x, incx, stridex, batchCount, result, absReal[float32], amaxPair[float32])
}

func IdamaxStridedBatched(h *Handle, n int, x DevicePtr, incx, stridex, batchCount int, result DevicePtr) error {
	return reduceStridedBatched("idamax_strided_batched", h, n, x, incx, stridex, batchCount, result, absReal[float64], amaxPair[float64])
}

func IcamaxStridedBatched(h *Handle, n int, x DevicePtr, incx, stridex, batchCount int, result DevicePtr) error {
	return reduceStridedBatched("icamax_strided_batched", h, n, x, incx, stridex, batchCount, result, absSumComplex64, amaxPair[float32])
}

func IzamaxStridedBatched(h *Handle, n int, x DevicePtr, incx, stridex, batchCount int, result DevicePtr) error {
	return reduceStridedBatched("izamax_strided_batched", h, n, x, incx, stridex, batchCount, result, absSumComplex128, amaxPair[float64])
}

func IsaminStridedBatched(h *Handle, n int, x DevicePtr, incx, stridex, batchCount int, result DevicePtr) error {
	return reduceStridedBatched("isamin_strided_batched", h, n, x, incx, stridex, batchCount, result, absReal[float32], aminPair[float32])
}

func IdaminStridedBatched(h *Handle, n int, x DevicePtr, incx, stridex, batchCount int, result DevicePtr) error {
	return reduceStridedBatched("idamin_strided_batched", h, n, x, incx, stridex, batchCount, result, absReal[float64], aminPair[float64])
}

func IcaminStridedBatched(h *Handle, n int, x DevicePtr, incx, stridex, batchCount int, result DevicePtr) error {
	return reduceStridedBatched("icamin_strided_batched", h, n, x, incx, stridex, batchCount, result, absSumComplex64, aminPair[float32])
}

func IzaminStridedBatched(h *Handle, n int, x DevicePtr, incx, stridex, batchCount int, result DevicePtr) error {
	return reduceStridedBatched("izamin_strided_batched", h, n, x, incx, stridex, batchCount, result, absSumComplex128, aminPair[float64])
}

// Single-vector forms: the batch_count == 1 special case, kept for parity
// with the reference routine family. result receives one int32 index.

func Isamax(h *Handle, n int, x DevicePtr, incx int, result DevicePtr) error {
	return reduceStridedBatched("isamax", h, n, x, incx, 0, 1, result, absReal[float32], amaxPair[float32])
}

func Idamax(h *Handle, n int, x DevicePtr, incx int, result DevicePtr) error {
	return reduceStridedBatched("idamax", h, n, x, incx, 0, 1, result, absReal[float64], amaxPair[float64])
}

func Icamax(h *Handle, n int, x DevicePtr, incx int, result DevicePtr) error {
	return reduceStridedBatched("icamax", h, n, x, incx, 0, 1, result, absSumComplex64, amaxPair[float32])
}

func Izamax(h *Handle, n int, x DevicePtr, incx int, result DevicePtr) error {
	return reduceStridedBatched("izamax", h, n, x, incx, 0, 1, result, absSumComplex128, amaxPair[float64])
}

func Isamin(h *Handle, n int, x DevicePtr, incx int, result DevicePtr) error {
	return reduceStridedBatched("isamin", h, n, x, incx, 0, 1, result, absReal[float32], aminPair[float32])
}

func Idamin(h *Handle, n int, x DevicePtr, incx int, result DevicePtr) error {
	return reduceStridedBatched("idamin", h, n, x, incx, 0, 1, result, absReal[float64], aminPair[float64])
}

func Icamin(h *Handle, n int, x DevicePtr, incx int, result DevicePtr) error {
	return reduceStridedBatched("icamin", h, n, x, incx, 0, 1, result, absSumComplex64, aminPair[float32])
}

func Izamin(h *Handle, n int, x DevicePtr, incx int, result DevicePtr) error {
	return reduceStridedBatched("izamin", h, n, x, incx, 0, 1, result, absSumComplex128, aminPair[float64])
}
