// Package malloc supplies a size-class segregated pooling memory
// allocator. Note that Types and Functions exported by this package
// are not thread safe.
//
// An Allocator owns a fixed set of pools, one per slab size, each
// backed by a single anonymous OS memory mapping reserved eagerly
// during initialization. Allocation requests are rounded up to the
// configured alignment, classified to the smallest slab that can hold
// them, and served in O(1) time from the pool's free list. Requests
// larger than the largest slab, and requests that find their pool
// exhausted, fall back to the system allocator; fallback is a normal
// outcome, never an error.
//
//   - Chunks are recycled between alloc/free cycles, never destroyed.
//     Within a pool, freed chunks are reused most-recently-freed
//     first.
//   - Pool mappings are fixed in size; pools do not grow, shrink or
//     compact. Memory is given back to the OS only on Release.
//   - Every pointer returned by Alloc is 16-byte aligned.
//   - Freeing a pointer this allocator did not return, freeing it
//     twice, or using a pointer after Release is undefined behaviour.
//     No validation of these is performed.
//
// Concurrent calls from multiple goroutines are not supported; the
// Allocator is plain mutable state with no synchronization. If an
// application needs concurrent allocation it should keep one
// Allocator per goroutine or serialize access on top.
package malloc
