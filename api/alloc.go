package api

import "unsafe"

// Mallocer interface for custom memory management.
type Mallocer interface {
	// Slabs allocatable slab of sizes.
	Slabs() (sizes []int64)

	// Alloc allocate a chunk of `n` bytes. Allocated memory is always
	// 16-byte aligned. Zero or negative `n` returns nil.
	Alloc(n int64) unsafe.Pointer

	// Slabsize return the chunk's slab size, or the stamped size if
	// the chunk was not served from a slab.
	Slabsize(ptr unsafe.Pointer) int64

	// Chunklen return the length of the chunk usable by application.
	Chunklen(ptr unsafe.Pointer) int64

	// Free chunk back to its pool, or to the system allocator.
	Free(ptr unsafe.Pointer)

	// Realloc move the chunk to a new size, preserving content upto
	// the smaller of the old and new size.
	Realloc(ptr unsafe.Pointer, n int64) unsafe.Pointer

	// Release pools and all resources held by the allocator.
	Release()

	// Info of memory accounting for this allocator.
	Info() (capacity, heap, alloc, overhead int64)

	// Utilization map of slab-size and its pool utilization.
	Utilization() ([]int, []float64)

	// Stats return a snapshot of allocator and per-pool counters.
	Stats() map[string]interface{}
}
