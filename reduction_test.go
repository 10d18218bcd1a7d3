package gublas

import (
	"fmt"
	"math"
	"math/rand"
	"testing"
)

func newTestHandle(t testing.TB) *Handle {
	t.Helper()
	h := NewHandle()
	t.Cleanup(func() { h.Destroy() })
	return h
}

func deviceF32(t testing.TB, data []float32) DevicePtr {
	t.Helper()
	d := MallocOrFail(t, len(data)*4)
	t.Cleanup(func() { Free(d) })
	copy(d.Float32(), data)
	return d
}

func deviceF64(t testing.TB, data []float64) DevicePtr {
	t.Helper()
	d := MallocOrFail(t, len(data)*8)
	t.Cleanup(func() { Free(d) })
	copy(d.Float64(), data)
	return d
}

func resultBuffer(t testing.TB, batchCount int) DevicePtr {
	t.Helper()
	d := MallocOrFail(t, batchCount*4)
	t.Cleanup(func() { Free(d) })
	for i := range d.Int32()[:batchCount] {
		d.Int32()[i] = 99 // poison so unwritten slots are visible
	}
	return d
}

func TestIamaxBatchedExample(t *testing.T) {
	// The worked example: magnitudes [2,9,4] peak at index 1; the all-zero
	// vector ties everywhere and resolves to index 0.
	h := newTestHandle(t)
	x := []DevicePtr{
		deviceF32(t, []float32{2, -9, 4}),
		deviceF32(t, []float32{0, 0, 0}),
	}
	result := resultBuffer(t, 2)

	if err := IsamaxBatched(h, 3, x, 1, 2, result); err != nil {
		t.Fatalf("IsamaxBatched failed: %v", err)
	}
	SyncOrFail(t, h)

	got := result.Int32()[:2]
	if got[0] != 1 || got[1] != 0 {
		t.Errorf("expected [1 0], got %v", got)
	}
}

func TestTieBreakLowestIndex(t *testing.T) {
	// Equal extrema must resolve to the lowest index regardless of how
	// many reduction groups the vector spans.
	h := newTestHandle(t)

	n := 3 * ReductionBlockSize // three groups
	data := make([]float32, n)
	for i := range data {
		data[i] = 1
	}
	data[700] = -5
	data[2600] = 5

	x := deviceF32(t, data)
	result := resultBuffer(t, 1)

	if err := IsamaxStridedBatched(h, n, x, 1, 0, 1, result); err != nil {
		t.Fatalf("IsamaxStridedBatched failed: %v", err)
	}
	SyncOrFail(t, h)

	if got := result.Int32()[0]; got != 700 {
		t.Errorf("tie across groups: expected 700, got %d", got)
	}

	// Adjacent duplicates within one group.
	data2 := []float32{1, 2, 7, 7, 3}
	x2 := deviceF32(t, data2)
	if err := IsamaxStridedBatched(h, 5, x2, 1, 0, 1, result); err != nil {
		t.Fatalf("IsamaxStridedBatched failed: %v", err)
	}
	SyncOrFail(t, h)
	if got := result.Int32()[0]; got != 2 {
		t.Errorf("adjacent tie: expected 2, got %d", got)
	}
}

func TestSentinelForEmptyVectors(t *testing.T) {
	// n = 0 with a positive batch count fills the whole result with the
	// sentinel synchronously; no kernel is dispatched.
	h := newTestHandle(t)
	result := resultBuffer(t, 4)

	if err := IsamaxBatched(h, 0, nil, 1, 4, result); err != nil {
		t.Fatalf("IsamaxBatched(n=0) failed: %v", err)
	}
	for b, got := range result.Int32()[:4] {
		if got != NoIndex {
			t.Errorf("result[%d]: expected sentinel %d, got %d", b, NoIndex, got)
		}
	}

	// batch_count = 0 succeeds and writes nothing.
	result2 := resultBuffer(t, 2)
	if err := IsamaxBatched(h, 5, nil, 1, 0, result2); err != nil {
		t.Fatalf("IsamaxBatched(batch=0) failed: %v", err)
	}
	for b, got := range result2.Int32()[:2] {
		if got != 99 {
			t.Errorf("result[%d]: expected untouched poison, got %d", b, got)
		}
	}
}

func TestSingleElement(t *testing.T) {
	h := newTestHandle(t)
	for _, v := range []float32{5, -5, 0, float32(math.NaN())} {
		x := deviceF32(t, []float32{v})
		result := resultBuffer(t, 1)
		if err := IsamaxStridedBatched(h, 1, x, 1, 0, 1, result); err != nil {
			t.Fatalf("n=1 (%v) failed: %v", v, err)
		}
		SyncOrFail(t, h)
		if got := result.Int32()[0]; got != 0 {
			t.Errorf("n=1 value %v: expected 0, got %d", v, got)
		}
	}
}

func TestNaNHandling(t *testing.T) {
	nan := float32(math.NaN())
	h := newTestHandle(t)

	t.Run("all_nan", func(t *testing.T) {
		x := deviceF32(t, []float32{nan, nan, nan, nan, nan})
		result := resultBuffer(t, 1)
		if err := IsamaxStridedBatched(h, 5, x, 1, 0, 1, result); err != nil {
			t.Fatalf("all-NaN failed: %v", err)
		}
		SyncOrFail(t, h)
		if got := result.Int32()[0]; got != 0 {
			t.Errorf("all-NaN: expected first occurrence 0, got %d", got)
		}
	})

	t.Run("mixed_nan", func(t *testing.T) {
		x := deviceF32(t, []float32{nan, nan, nan, 0.25, nan})
		result := resultBuffer(t, 1)
		if err := IsamaxStridedBatched(h, 5, x, 1, 0, 1, result); err != nil {
			t.Fatalf("mixed-NaN failed: %v", err)
		}
		SyncOrFail(t, h)
		if got := result.Int32()[0]; got != 3 {
			t.Errorf("mixed-NaN: expected finite index 3, got %d", got)
		}
	})

	t.Run("mixed_nan_amin", func(t *testing.T) {
		// A huge finite value still beats NaN for the min variant.
		x := deviceF32(t, []float32{nan, 1e30, nan})
		result := resultBuffer(t, 1)
		if err := IsaminStridedBatched(h, 3, x, 1, 0, 1, result); err != nil {
			t.Fatalf("mixed-NaN amin failed: %v", err)
		}
		SyncOrFail(t, h)
		if got := result.Int32()[0]; got != 1 {
			t.Errorf("mixed-NaN amin: expected 1, got %d", got)
		}
	})

	t.Run("nan_spanning_groups", func(t *testing.T) {
		// The only finite value sits in the second group.
		n := ReductionBlockSize + 50
		data := make([]float32, n)
		for i := range data {
			data[i] = nan
		}
		data[ReductionBlockSize+7] = 3
		x := deviceF32(t, data)
		result := resultBuffer(t, 1)
		if err := IsamaxStridedBatched(h, n, x, 1, 0, 1, result); err != nil {
			t.Fatalf("NaN spanning groups failed: %v", err)
		}
		SyncOrFail(t, h)
		if got := result.Int32()[0]; got != int32(ReductionBlockSize+7) {
			t.Errorf("expected %d, got %d", ReductionBlockSize+7, got)
		}
	})
}

func TestNegativeIncrement(t *testing.T) {
	// Traversal reverses but the reported index stays the natural
	// (increasing) memory position: [3,1,4] with incx=-1 reports 2.
	h := newTestHandle(t)
	x := deviceF32(t, []float32{3, 1, 4})
	result := resultBuffer(t, 1)

	if err := IsamaxStridedBatched(h, 3, x, -1, 0, 1, result); err != nil {
		t.Fatalf("incx=-1 failed: %v", err)
	}
	SyncOrFail(t, h)
	if got := result.Int32()[0]; got != 2 {
		t.Errorf("incx=-1: expected 2, got %d", got)
	}

	// |incx| = 2 skips every other element: natural elements are
	// positions 0, 2, 4 of the buffer.
	x2 := deviceF32(t, []float32{5, 9, 1, 9, 8})
	if err := IsamaxStridedBatched(h, 3, x2, -2, 0, 1, result); err != nil {
		t.Fatalf("incx=-2 failed: %v", err)
	}
	SyncOrFail(t, h)
	if got := result.Int32()[0]; got != 2 {
		t.Errorf("incx=-2: expected 2 (|8| at buffer pos 4), got %d", got)
	}
}

func TestBatchIndependence(t *testing.T) {
	h := newTestHandle(t)

	t.Run("batched", func(t *testing.T) {
		a := deviceF32(t, []float32{1, 8, 2})
		b := deviceF32(t, []float32{9, 0, 0})
		result := resultBuffer(t, 2)

		if err := IsamaxBatched(h, 3, []DevicePtr{a, b}, 1, 2, result); err != nil {
			t.Fatalf("IsamaxBatched failed: %v", err)
		}
		SyncOrFail(t, h)
		first := result.Int32()[0]

		// Rewriting the second vector must not move the first answer.
		copy(b.Float32(), []float32{0, 0, 100})
		if err := IsamaxBatched(h, 3, []DevicePtr{a, b}, 1, 2, result); err != nil {
			t.Fatalf("IsamaxBatched failed: %v", err)
		}
		SyncOrFail(t, h)
		got := result.Int32()[:2]
		if got[0] != first || got[0] != 1 {
			t.Errorf("batch 0 moved: was %d, now %d", first, got[0])
		}
		if got[1] != 2 {
			t.Errorf("batch 1: expected 2, got %d", got[1])
		}
	})

	t.Run("strided_overlapping", func(t *testing.T) {
		// stride 1 < n deliberately overlaps windows over one buffer:
		// [0,9,0,0,7] → windows [0,9,0], [9,0,0], [0,0,7].
		x := deviceF32(t, []float32{0, 9, 0, 0, 7})
		result := resultBuffer(t, 3)

		if err := IsamaxStridedBatched(h, 3, x, 1, 1, 3, result); err != nil {
			t.Fatalf("overlapping stride failed: %v", err)
		}
		SyncOrFail(t, h)
		want := []int32{1, 0, 2}
		got := result.Int32()[:3]
		for b := range want {
			if got[b] != want[b] {
				t.Errorf("overlap batch %d: expected %d, got %d", b, want[b], got[b])
			}
		}
	})
}

func TestSizeQuery(t *testing.T) {
	h := newTestHandle(t)
	result := resultBuffer(t, 8)

	query := func(n, batch int) int {
		t.Helper()
		if err := h.StartSizeQuery(); err != nil {
			t.Fatalf("StartSizeQuery failed: %v", err)
		}
		// x buffers are never touched during a size query.
		if err := IsamaxBatched(h, n, nil, 1, batch, result); err != nil {
			t.Fatalf("size-query call failed: %v", err)
		}
		size, err := h.StopSizeQuery()
		if err != nil {
			t.Fatalf("StopSizeQuery failed: %v", err)
		}
		return size
	}

	// One slot per (group, batch) pair; float32 candidates are 8 bytes.
	cases := []struct {
		n, batch, want int
	}{
		{1, 1, 8},
		{ReductionBlockSize, 4, 4 * 8},
		{ReductionBlockSize + 1, 4, 2 * 4 * 8},
		{3 * ReductionBlockSize, 2, 3 * 2 * 8},
		{0, 5, 0},
	}
	for _, tc := range cases {
		got := query(tc.n, tc.batch)
		if got != tc.want {
			t.Errorf("workspace(%d,%d): expected %d bytes, got %d", tc.n, tc.batch, tc.want, got)
		}
		// Idempotence: an identical query reports the identical size.
		if again := query(tc.n, tc.batch); again != got {
			t.Errorf("workspace(%d,%d) not idempotent: %d then %d", tc.n, tc.batch, got, again)
		}
	}

	// The result buffer is never mutated by a size query.
	for b, got := range result.Int32()[:8] {
		if got != 99 {
			t.Errorf("result[%d] mutated by size query: %d", b, got)
		}
	}

	// Double-precision candidates are 16 bytes.
	if err := h.StartSizeQuery(); err != nil {
		t.Fatalf("StartSizeQuery failed: %v", err)
	}
	if err := IdamaxStridedBatched(h, ReductionBlockSize, DevicePtr{}, 1, 0, 3, result); err != nil {
		t.Fatalf("size-query call failed: %v", err)
	}
	size, err := h.StopSizeQuery()
	if err != nil {
		t.Fatalf("StopSizeQuery failed: %v", err)
	}
	if size != 3*16 {
		t.Errorf("idamax workspace: expected %d, got %d", 3*16, size)
	}
}

func TestArgumentErrors(t *testing.T) {
	h := newTestHandle(t)
	x := deviceF32(t, []float32{1, 2, 3})
	result := resultBuffer(t, 4)

	cases := []struct {
		name  string
		call  func() error
		check func(error) bool
	}{
		{"nil_handle", func() error {
			return IsamaxStridedBatched(nil, 3, x, 1, 0, 1, result)
		}, IsInvalidHandleError},
		{"negative_n", func() error {
			return IsamaxStridedBatched(h, -1, x, 1, 0, 1, result)
		}, IsInvalidArgError},
		{"zero_incx", func() error {
			return IsamaxStridedBatched(h, 3, x, 0, 0, 1, result)
		}, IsInvalidArgError},
		{"negative_batch", func() error {
			return IsamaxStridedBatched(h, 3, x, 1, 0, -2, result)
		}, IsInvalidArgError},
		{"negative_stride", func() error {
			return IsamaxStridedBatched(h, 3, x, 1, -3, 2, result)
		}, IsInvalidArgError},
		{"null_x_strided", func() error {
			return IsamaxStridedBatched(h, 3, DevicePtr{}, 1, 0, 1, result)
		}, IsInvalidArgError},
		{"null_x_batched", func() error {
			return IsamaxBatched(h, 3, nil, 1, 1, result)
		}, IsInvalidArgError},
		{"short_x_batched", func() error {
			return IsamaxBatched(h, 3, []DevicePtr{x}, 1, 2, result)
		}, IsInvalidArgError},
		{"null_vector_in_batch", func() error {
			return IsamaxBatched(h, 3, []DevicePtr{x, {}}, 1, 2, result)
		}, IsInvalidArgError},
		{"null_result", func() error {
			return IsamaxStridedBatched(h, 3, x, 1, 0, 1, DevicePtr{})
		}, IsInvalidArgError},
		{"result_too_small", func() error {
			return IsamaxStridedBatched(h, 3, x, 1, 0, 8, result)
		}, IsInvalidArgError},
		{"x_too_short_for_incx", func() error {
			return IsamaxStridedBatched(h, 3, x, 2, 0, 1, result)
		}, IsInvalidArgError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.call()
			if err == nil {
				t.Fatal("expected an error")
			}
			if !tc.check(err) {
				t.Errorf("wrong error class: %v", err)
			}
		})
	}

	// Failed calls must not have dispatched anything that writes result.
	SyncOrFail(t, h)
	for b, got := range result.Int32()[:4] {
		if got != 99 {
			t.Errorf("result[%d] mutated by failed calls: %d", b, got)
		}
	}
}

func TestAgainstHostReference(t *testing.T) {
	// Random finite data across several shapes, checked against a plain
	// sequential scan for both variants and both real precisions.
	rng := rand.New(rand.NewSource(7))
	h := newTestHandle(t)

	refScan := func(data []float64, minimize bool) int32 {
		best := int32(0)
		bestVal := math.Abs(data[0])
		for i := 1; i < len(data); i++ {
			v := math.Abs(data[i])
			if (minimize && v < bestVal) || (!minimize && v > bestVal) {
				best, bestVal = int32(i), v
			}
		}
		return best
	}

	shapes := []struct{ n, batch int }{
		{1, 1},
		{17, 3},
		{ReductionBlockSize, 2},
		{ReductionBlockSize + 1, 2},
		{5000, 3},
	}
	for _, shape := range shapes {
		t.Run(fmt.Sprintf("n%d_b%d", shape.n, shape.batch), func(t *testing.T) {
			f64 := make([]float64, shape.n*shape.batch)
			f32 := make([]float32, len(f64))
			for i := range f64 {
				f64[i] = rng.Float64()*200 - 100
				f32[i] = float32(f64[i])
			}
			// Reference for the single-precision routines uses the rounded
			// values, so near-equal extrema order the same way.
			f32as64 := make([]float64, len(f32))
			for i, v := range f32 {
				f32as64[i] = float64(v)
			}
			d32 := deviceF32(t, f32)
			d64 := deviceF64(t, f64)
			resMax := resultBuffer(t, shape.batch)
			resMin := resultBuffer(t, shape.batch)

			if err := IsamaxStridedBatched(h, shape.n, d32, 1, shape.n, shape.batch, resMax); err != nil {
				t.Fatalf("isamax failed: %v", err)
			}
			if err := IsaminStridedBatched(h, shape.n, d32, 1, shape.n, shape.batch, resMin); err != nil {
				t.Fatalf("isamin failed: %v", err)
			}
			SyncOrFail(t, h)
			for b := 0; b < shape.batch; b++ {
				vec := f32as64[b*shape.n : (b+1)*shape.n]
				if want := refScan(vec, false); resMax.Int32()[b] != want {
					t.Errorf("isamax batch %d: expected %d, got %d", b, want, resMax.Int32()[b])
				}
				if want := refScan(vec, true); resMin.Int32()[b] != want {
					t.Errorf("isamin batch %d: expected %d, got %d", b, want, resMin.Int32()[b])
				}
			}

			if err := IdamaxStridedBatched(h, shape.n, d64, 1, shape.n, shape.batch, resMax); err != nil {
				t.Fatalf("idamax failed: %v", err)
			}
			SyncOrFail(t, h)
			for b := 0; b < shape.batch; b++ {
				vec := f64[b*shape.n : (b+1)*shape.n]
				if want := refScan(vec, false); resMax.Int32()[b] != want {
					t.Errorf("idamax batch %d: expected %d, got %d", b, want, resMax.Int32()[b])
				}
			}
		})
	}
}

func BenchmarkIamaxStridedBatched(b *testing.B) {
	h := NewHandle()
	defer h.Destroy()

	for _, size := range []int{1024, 8192, 65536} {
		const batch = 16
		data := MallocOrFail(b, size*batch*4)
		defer Free(data)
		src := data.Float32()
		for i := range src {
			src[i] = rand.Float32()*200 - 100
		}
		result := MallocOrFail(b, batch*4)
		defer Free(result)

		b.Run(fmt.Sprintf("n%d_b%d", size, batch), func(b *testing.B) {
			b.SetBytes(int64(size * batch * 4))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if err := IsamaxStridedBatched(h, size, data, 1, size, batch, result); err != nil {
					b.Fatal(err)
				}
				if err := h.Synchronize(); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
