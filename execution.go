package gublas

import (
	"fmt"
	"runtime"
	"sync"
)

// launchInternal implements the core kernel execution logic
func (ctx *Context) launchInternal(
	kernelFunc func(ThreadID, ...interface{}),
	grid, block Dim3,
	stream *Stream,
	args ...interface{},
) error {
	// Calculate total work items
	gridSize := grid.Size()
	blockSize := block.Size()

	// Handle edge case where grid size is zero
	if gridSize == 0 {
		// Submit an empty task to maintain stream ordering
		stream.Submit(func() {})
		return nil
	}

	// Determine parallelism strategy
	numWorkers := runtime.NumCPU()
	if gridSize < numWorkers {
		numWorkers = gridSize
	}

	// Cache-aware scheduling: each worker processes multiple blocks
	// to maximize cache reuse
	blocksPerWorker := (gridSize + numWorkers - 1) / numWorkers

	// Submit work to stream
	stream.Submit(func() {
		var wg sync.WaitGroup
		wg.Add(numWorkers)

		for workerID := 0; workerID < numWorkers; workerID++ {
			// Capture loop variable
			wID := workerID
			startBlock := wID * blocksPerWorker
			endBlock := startBlock + blocksPerWorker
			if endBlock > gridSize {
				endBlock = gridSize
			}

			// Launch worker goroutine
			go func() {
				defer wg.Done()
				defer func() {
					if r := recover(); r != nil {
						stream.fail(NewExecutionError("Launch", "kernel fault", fmt.Errorf("%v", r)))
					}
				}()

				// Process assigned blocks
				for blockID := startBlock; blockID < endBlock; blockID++ {
					// Convert linear block ID to 3D
					blockIdx := linearTo3D(blockID, grid)

					// Execute all threads in this block
					// For CPU, we execute threads sequentially within a block
					// This maximizes cache reuse and minimizes synchronization
					for threadID := 0; threadID < blockSize; threadID++ {
						// Convert linear thread ID to 3D
						threadIdx := linearTo3D(threadID, block)

						// Create thread identification
						tid := ThreadID{
							BlockIdx:  blockIdx,
							ThreadIdx: threadIdx,
							BlockDim:  block,
							GridDim:   grid,
						}

						// Execute kernel for this thread
						kernelFunc(tid, args...)
					}
				}
			}()
		}

		wg.Wait()
	})

	return nil
}

// linearTo3D converts a linear index to 3D coordinates
func linearTo3D(linear int, dim Dim3) Dim3 {
	z := linear / (dim.X * dim.Y)
	y := (linear % (dim.X * dim.Y)) / dim.X
	x := linear % dim.X
	return Dim3{X: x, Y: y, Z: z}
}
