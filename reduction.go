package gublas

import "unsafe"

// Two-phase batched index-of-extremum reduction.
//
// Phase one tiles every vector into groups of ReductionBlockSize elements;
// each group tree-reduces its tile to one candidate and writes it to the
// workspace. Phase two folds each batch element's candidates into the final
// index. Both phases run on the handle's stream, whose FIFO ordering is the
// barrier between them: the final kernel cannot start before every partial
// write has landed.

// reductionGroups returns the number of partial-reduction groups per batch
// element.
func reductionGroups(n int) int {
	return (n + ReductionBlockSize - 1) / ReductionBlockSize
}

// reductionWorkspaceBytes returns the scratch bytes a reduction over
// (n, batchCount) needs: one candidate slot per (group, batch) pair.
func reductionWorkspaceBytes[S Real](n, batchCount int) int {
	if n <= 0 || batchCount <= 0 {
		return 0
	}
	var slot indexValue[S]
	return reductionGroups(n) * batchCount * int(unsafe.Sizeof(slot))
}

// reductionSetup is the host-side control pass, run synchronously before
// any kernel is dispatched. It validates the configuration, services
// workspace size queries, and short-circuits the degenerate shapes.
// proceed is true only when kernels must actually run.
func reductionSetup[S Real](h *Handle, op string, n, incx, batchCount int, result DevicePtr) (proceed bool, err error) {
	if !h.valid() {
		return false, NewInvalidHandleError(op)
	}
	if n < 0 {
		return false, NewInvalidArgError(op, "n must be non-negative")
	}
	if incx == 0 {
		return false, NewInvalidArgError(op, "incx must be non-zero")
	}
	if batchCount < 0 {
		return false, NewInvalidArgError(op, "batch_count must be non-negative")
	}

	// Pure size query: record the requirement, touch nothing.
	if h.sizeQuery {
		h.noteQuerySize(reductionWorkspaceBytes[S](n, batchCount))
		return false, nil
	}

	if batchCount == 0 {
		return false, nil
	}
	if result.IsNull() {
		return false, NewInvalidArgError(op, "result is a null pointer")
	}
	out := deviceSlice[int32](result)
	if len(out) < batchCount {
		return false, NewInvalidArgError(op, "result buffer smaller than batch_count")
	}
	if n == 0 {
		// Defined sentinel fill, not a fallthrough: every slot is
		// written and no kernel is dispatched.
		for b := 0; b < batchCount; b++ {
			out[b] = NoIndex
		}
		return false, nil
	}
	return true, nil
}

// reduceIndex dispatches the two reduction kernels for a validated
// configuration. The workspace is drawn from the context pool and returned
// to it in stream order, after the final kernel's reads.
func reduceIndex[T Numeric, S Real](
	h *Handle,
	op string,
	n, batchCount int,
	src batchVectors[T],
	result DevicePtr,
	fetch func(T) S,
	pair pairFunc[S],
) error {
	groups := reductionGroups(n)

	wsPtr, err := h.ctx.Malloc(reductionWorkspaceBytes[S](n, batchCount))
	if err != nil {
		return NewMemoryError(op, "reduction workspace allocation failed", err)
	}
	ws := deviceSlice[indexValue[S]](wsPtr)
	out := deviceSlice[int32](result)

	// Phase one: one group per (tile, batch) pair reduces up to
	// ReductionBlockSize elements to a single candidate.
	partial := KernelFunc(func(tid ThreadID, _ ...interface{}) {
		g, b := tid.BlockIdx.X, tid.BlockIdx.Y
		vec, step := src.vector(b)

		start := g * ReductionBlockSize
		count := n - start
		if count > ReductionBlockSize {
			count = ReductionBlockSize
		}

		var lanes [ReductionBlockSize]indexValue[S]
		for j := 0; j < count; j++ {
			i := start + j
			lanes[j] = indexValue[S]{index: int32(i), value: fetch(vec[i*step])}
		}
		for j := count; j < ReductionBlockSize; j++ {
			lanes[j].index = NoIndex
		}

		// Tree reduction in log2(ReductionBlockSize) halving steps.
		for off := ReductionBlockSize / 2; off > 0; off >>= 1 {
			for j := 0; j < off; j++ {
				lanes[j] = pair(lanes[j], lanes[j+off])
			}
		}
		ws[b*groups+g] = lanes[0]
	})

	// Phase two: one group per batch element folds its partials and
	// writes the answer exactly once.
	final := KernelFunc(func(tid ThreadID, _ ...interface{}) {
		b := tid.BlockIdx.X
		best := ws[b*groups]
		for g := 1; g < groups; g++ {
			best = pair(best, ws[b*groups+g])
		}
		out[b] = best.index
	})

	grid1 := Dim3{X: groups, Y: batchCount, Z: 1}
	grid2 := Dim3{X: batchCount, Y: 1, Z: 1}
	block := Dim3{X: 1, Y: 1, Z: 1}

	if err := h.ctx.LaunchFuncStream(partial, grid1, block, h.stream); err != nil {
		h.ctx.Free(wsPtr)
		return err
	}
	if err := h.ctx.LaunchFuncStream(final, grid2, block, h.stream); err != nil {
		// Partial pass may already be in flight; release in stream order.
		h.stream.Submit(func() { h.ctx.Free(wsPtr) })
		return err
	}
	h.stream.Submit(func() { h.ctx.Free(wsPtr) })
	return nil
}

// reduceBatched runs one index reduction over an array-of-pointers batch.
func reduceBatched[T Numeric, S Real](
	op string,
	h *Handle,
	n int,
	x []DevicePtr,
	incx, batchCount int,
	result DevicePtr,
	fetch func(T) S,
	pair pairFunc[S],
) error {
	err := boundary(op, func() error {
		proceed, err := reductionSetup[S](h, op, n, incx, batchCount, result)
		if err != nil || !proceed {
			return err
		}
		if x == nil {
			return NewInvalidArgError(op, "x is a null pointer")
		}
		if len(x) < batchCount {
			return NewInvalidArgError(op, "x holds fewer vectors than batch_count")
		}
		src := newPtrBatch[T](x[:batchCount], incx)
		for b := range src.vecs {
			if src.vecs[b] == nil {
				return NewInvalidArgError(op, "x contains a null vector pointer")
			}
		}
		if !src.spanOK(n) {
			return NewInvalidArgError(op, "x vector shorter than (n-1)*|incx|+1 elements")
		}
		return reduceIndex(h, op, n, batchCount, src, result, fetch, pair)
	})
	traceCall(op, n, incx, 0, batchCount, err)
	return err
}

// reduceStridedBatched runs one index reduction over a strided batch.
func reduceStridedBatched[T Numeric, S Real](
	op string,
	h *Handle,
	n int,
	x DevicePtr,
	incx, stridex, batchCount int,
	result DevicePtr,
	fetch func(T) S,
	pair pairFunc[S],
) error {
	err := boundary(op, func() error {
		proceed, err := reductionSetup[S](h, op, n, incx, batchCount, result)
		if err != nil || !proceed {
			return err
		}
		if x.IsNull() {
			return NewInvalidArgError(op, "x is a null pointer")
		}
		if stridex < 0 {
			return NewInvalidArgError(op, "stridex must be non-negative")
		}
		src := newStridedBatch[T](x, incx, stridex)
		if !src.spanOK(n, batchCount) {
			return NewInvalidArgError(op, "x buffer shorter than the batch span")
		}
		return reduceIndex(h, op, n, batchCount, src, result, fetch, pair)
	})
	traceCall(op, n, incx, stridex, batchCount, err)
	return err
}
