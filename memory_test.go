package gublas

import (
	"testing"
)

func TestMemoryPoolReuse(t *testing.T) {
	pool := NewMemoryPool()

	a, err := pool.Allocate(1000)
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	first := a.ptr
	if err := pool.Free(a); err != nil {
		t.Fatalf("Free failed: %v", err)
	}

	// A same-sized allocation comes back from the free list.
	b, err := pool.Allocate(1000)
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	if b.ptr != first {
		t.Error("expected allocation to be recycled from the free list")
	}
	if err := pool.Free(b); err != nil {
		t.Fatalf("Free failed: %v", err)
	}

	if err := pool.Free(b); err != ErrDoubleFree {
		t.Errorf("expected double free error, got %v", err)
	}

	allocated, peak := pool.GetStats()
	if allocated != 0 {
		t.Errorf("expected zero outstanding bytes, got %d", allocated)
	}
	if peak <= 0 {
		t.Errorf("expected positive peak, got %d", peak)
	}
}

func TestDevicePtrViews(t *testing.T) {
	d := MallocOrFail(t, 16*8)
	defer Free(d)

	if got := len(d.Float32()); got != 32 {
		t.Errorf("Float32 view: expected 32 elements, got %d", got)
	}
	if got := len(d.Float64()); got != 16 {
		t.Errorf("Float64 view: expected 16 elements, got %d", got)
	}
	if got := len(d.Complex64()); got != 16 {
		t.Errorf("Complex64 view: expected 16 elements, got %d", got)
	}
	if got := len(d.Complex128()); got != 8 {
		t.Errorf("Complex128 view: expected 8 elements, got %d", got)
	}
	if got := len(d.Int32()); got != 32 {
		t.Errorf("Int32 view: expected 32 elements, got %d", got)
	}

	// The views alias the same storage.
	d.Complex64()[0] = 3 + 4i
	if re := d.Float32()[0]; re != 3 {
		t.Errorf("aliased real part: expected 3, got %v", re)
	}
	if im := d.Float32()[1]; im != 4 {
		t.Errorf("aliased imag part: expected 4, got %v", im)
	}

	if !(DevicePtr{}).IsNull() {
		t.Error("zero DevicePtr should be null")
	}
	if d.IsNull() {
		t.Error("allocated DevicePtr should not be null")
	}

	off := d.Offset(8)
	if off.Size() != d.Size()-8 {
		t.Errorf("Offset size: expected %d, got %d", d.Size()-8, off.Size())
	}
	d.Float64()[1] = 2.5
	if got := off.Float64()[0]; got != 2.5 {
		t.Errorf("Offset view: expected 2.5, got %v", got)
	}
}

func TestMemcpyRoundTrips(t *testing.T) {
	d := MallocOrFail(t, 4*16)
	defer Free(d)

	t.Run("complex128", func(t *testing.T) {
		src := []complex128{1 + 2i, complex(-3, 4), 0, complex(9, -9)}
		dst := make([]complex128, 4)
		MemcpyOrFail(t, d, src, 4*16, MemcpyHostToDevice)
		if err := Memcpy(dst, d, 4*16, MemcpyDeviceToHost); err != nil {
			t.Fatalf("Memcpy back failed: %v", err)
		}
		for i := range src {
			if dst[i] != src[i] {
				t.Errorf("roundtrip[%d]: expected %v, got %v", i, src[i], dst[i])
			}
		}
	})

	t.Run("int32", func(t *testing.T) {
		src := []int32{7, -1, 0, 1 << 30}
		dst := make([]int32, 4)
		MemcpyOrFail(t, d, src, 4*4, MemcpyHostToDevice)
		if err := Memcpy(dst, d, 4*4, MemcpyDeviceToHost); err != nil {
			t.Fatalf("Memcpy back failed: %v", err)
		}
		for i := range src {
			if dst[i] != src[i] {
				t.Errorf("roundtrip[%d]: expected %d, got %d", i, src[i], dst[i])
			}
		}
	})

	t.Run("unsupported_type", func(t *testing.T) {
		if err := Memcpy(d, []string{"nope"}, 1, MemcpyHostToDevice); !IsInvalidArgError(err) {
			t.Errorf("expected invalid argument error, got %v", err)
		}
	})
}
