// Package testutil provides testing utilities for pqvec.
//
// This package is intended for use in tests, examples and benchmarks only.
//
// # Random Vector Generation
//
//	rng := testutil.NewRNG(seed)
//	vecs := rng.UniformVectors(1000, 128)                  // uniform [0, 1)
//	vecs, centers := rng.ClusteredVectors(1000, 16, 4, 10, 0.01)
//
// # Fixed Patterns
//
//	train := testutil.Repeat(2, []float32{0, 0, 10, 10}, []float32{5, 5, 0, 0})
//
// # Reconstruction Quality
//
//	mse := testutil.MSE(original, decoded)
package testutil
