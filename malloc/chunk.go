package malloc

import "unsafe"

// chunk is the header preceding every allocation, pooled or fallback.
// `next` links the chunk on its pool's free list and is meaningful
// only while the chunk is free. `size` is stamped with the aligned
// requested size on every allocation; Realloc depends on it to bound
// its copy to the old allocation.
type chunk struct {
	next      *chunk
	size      int64
	allocid   uint64
	timestamp int64
}

// chunkhdrsize header slot padded to one cache line, keeps payloads
// on the Alignment boundary for any power-of-two slab size.
const chunkhdrsize = int64(64)

func chunkheader(ptr unsafe.Pointer) *chunk {
	return (*chunk)(unsafe.Pointer(uintptr(ptr) - uintptr(chunkhdrsize)))
}

func (ch *chunk) payload() unsafe.Pointer {
	return unsafe.Pointer(uintptr(unsafe.Pointer(ch)) + uintptr(chunkhdrsize))
}
