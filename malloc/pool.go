// Functions and methods are not thread safe.

package malloc

import "fmt"
import "time"
import "unsafe"

import "github.com/bnclabs/gomalloc/lib"
import "golang.org/x/sys/unix"

// mempool manages one anonymous memory mapping sliced up into equal
// sized chunks, each chunk a header followed by `slabsize` bytes of
// payload. Free chunks are threaded on an intrusive LIFO list.
type mempool struct {
	// 64-bit aligned stats
	n_allocs int64
	n_frees  int64
	n_bytes  int64
	n_live   int64
	n_peak   int64

	capacity int64  // size of the mapping backing this pool
	slabsize int64  // fixed payload size for chunks in this pool
	nchunks  int64  // number of chunks threaded over the mapping
	base     []byte // the mapping itself
	freelist *chunk
	latency  *lib.AverageInt64
}

// newmempool reserve one mapping of `capacity` bytes and thread every
// (chunkhdrsize + slabsize) slot onto the free list. Mapping failure
// is a fatal configuration error.
func newmempool(slabsize, capacity int64) (*mempool, error) {
	prot := unix.PROT_READ | unix.PROT_WRITE
	flags := unix.MAP_PRIVATE | unix.MAP_ANON
	base, err := unix.Mmap(-1, 0, int(capacity), prot, flags)
	if err != nil {
		return nil, fmt.Errorf("mempool(%v): mmap %v bytes: %v", slabsize, capacity, err)
	}
	slotsize := chunkhdrsize + slabsize
	pool := &mempool{
		capacity: capacity,
		slabsize: slabsize,
		nchunks:  capacity / slotsize,
		base:     base,
		latency:  &lib.AverageInt64{},
	}
	for i := int64(0); i < pool.nchunks; i++ {
		ch := (*chunk)(unsafe.Pointer(&base[i*slotsize]))
		ch.next, ch.size = pool.freelist, slabsize
		ch.allocid, ch.timestamp = 0, 0
		pool.freelist = ch
	}
	return pool, nil
}

// allocchunk pop the free-list head, stamp it and return its payload
// pointer. Returns false when the pool is exhausted, callers are
// expected to fall back, not fail.
func (pool *mempool) allocchunk(size int64, allocid uint64) (unsafe.Pointer, bool) {
	if pool.freelist == nil {
		return nil, false
	}
	start := time.Now()
	ch := pool.freelist
	pool.freelist, ch.next = ch.next, nil
	ch.size, ch.allocid = size, allocid
	ch.timestamp = start.UnixNano()

	pool.n_allocs++
	pool.n_bytes += size
	if pool.n_live++; pool.n_live > pool.n_peak {
		pool.n_peak = pool.n_live
	}
	pool.latency.Add(int64(time.Since(start)))

	ptr := ch.payload()
	if (uintptr(ptr) & uintptr(Alignment-1)) != 0 {
		panicerr("allocated pointer is not %v byte aligned", Alignment)
	}
	return ptr, true
}

// free push the chunk back onto the free-list head. Ownership must
// have been verified by the caller, a pointer from outside this pool
// corrupts the free list.
func (pool *mempool) free(ptr unsafe.Pointer) {
	if ptr == nil {
		panic("mempool.free(): nil pointer")
	}
	diffptr := uintptr(ptr) - uintptr(unsafe.Pointer(&pool.base[0]))
	if (int64(diffptr)-chunkhdrsize)%(chunkhdrsize+pool.slabsize) != 0 {
		panicerr("mempool.free(): unaligned pointer: %x,%v", diffptr, pool.slabsize)
	}
	ch := chunkheader(ptr)
	ch.allocid, ch.timestamp = 0, 0 // for debuggability
	ch.size = pool.slabsize
	ch.next = pool.freelist
	pool.freelist = ch
	pool.n_frees++
	pool.n_live--
}

// inrange ownership test, true iff ptr falls inside this pool's
// mapping.
func (pool *mempool) inrange(ptr unsafe.Pointer) bool {
	if pool.base == nil {
		return false
	}
	start := uintptr(unsafe.Pointer(&pool.base[0]))
	return uintptr(ptr) >= start && uintptr(ptr) < start+uintptr(pool.capacity)
}

// info memory accounting for this pool.
func (pool *mempool) info() (capacity, heap, alloc, overhead int64) {
	self := int64(unsafe.Sizeof(*pool))
	capacity = pool.nchunks * pool.slabsize
	heap = pool.capacity
	alloc = pool.n_live * pool.slabsize
	overhead = self + pool.nchunks*chunkhdrsize
	return
}

// stats snapshot of this pool's counters.
func (pool *mempool) stats() map[string]interface{} {
	utilz := float64(0)
	if pool.nchunks > 0 {
		utilz = float64(pool.n_live) / float64(pool.nchunks)
	}
	return map[string]interface{}{
		"slabsize":    pool.slabsize,
		"nchunks":     pool.nchunks,
		"n_allocs":    pool.n_allocs,
		"n_frees":     pool.n_frees,
		"n_bytes":     pool.n_bytes,
		"n_live":      pool.n_live,
		"n_peak":      pool.n_peak,
		"utilization": utilz,
		"latency":     pool.latency.Stats(),
	}
}

// release the mapping back to OS, pool is unusable hereafter.
func (pool *mempool) release() {
	if pool.base != nil {
		if err := unix.Munmap(pool.base); err != nil {
			panicerr("mempool.release(): munmap: %v", err)
		}
	}
	pool.base, pool.freelist = nil, nil
	pool.capacity, pool.nchunks = 0, 0
	pool.n_allocs, pool.n_frees, pool.n_bytes = 0, 0, 0
	pool.n_live, pool.n_peak = 0, 0
}

//---- local functions

func (pool *mempool) checkallocated() int64 {
	onlist := int64(0)
	for ch := pool.freelist; ch != nil; ch = ch.next {
		onlist++
	}
	return (pool.nchunks - onlist) * pool.slabsize
}
