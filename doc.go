// Package gublas provides batched BLAS level-1 routines behind a
// CUDA-style execution model on the CPU.
//
// The library centers on the index-of-extremum reduction family
// (isamax/idamax/icamax/izamax and the amin counterparts, in batched,
// strided-batched, and single-vector forms). Each routine runs as two
// data-parallel kernel stages on a handle's stream: a partial pass that
// reduces ReductionBlockSize-element tiles to candidates in a scratch
// workspace, and a final pass that folds each batch element's candidates
// into one 0-based index.
//
// Contracts worth knowing:
//   - Ties resolve to the lowest index; NaN magnitudes never beat finite
//     ones, and an all-NaN vector reports index 0.
//   - Complex magnitude is |re|+|im| (the BLAS convention), not the
//     Euclidean norm.
//   - n <= 0 writes the NoIndex sentinel; it is not an error.
//   - Routines are asynchronous; call Handle.Synchronize before reading
//     the result buffer.
//   - Handle.StartSizeQuery/StopSizeQuery measure workspace needs without
//     dispatching any work.
package gublas
