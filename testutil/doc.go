// Package testutil provides testing utilities for domarch.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating random hits, computing the optimal
// architecture by exhaustive search and verifying conflict-freedom.
//
// # Random Hit Generation
//
//	rng := testutil.NewRNG(seed)
//	hits := rng.ResolvedHits(10, testutil.HitOptions{MaxSegments: 3})
//
// # Exact Search (Ground Truth)
//
//	best := testutil.BruteForceBest(hits)
//
// # Verification
//
//	ok := testutil.ConflictFree(arch.Selected)
package testutil
