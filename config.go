// Package gublas configuration constants
package gublas

const (
	// ReductionBlockSize is the number of elements each reduction group
	// processes in the partial pass. Workspace sizing depends on it:
	// ceil(n/ReductionBlockSize) slots per batch element.
	ReductionBlockSize = 1024
)

// Memory pool parameters
const (
	// Minimum allocation size to prevent fragmentation
	MinAllocationSize = 64

	// Memory alignment for allocations
	MemoryAlignment = 64
)
