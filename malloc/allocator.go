// Functions and methods are not thread safe.

package malloc

import "time"
import "unsafe"

import "github.com/bnclabs/golog"
import "github.com/bnclabs/gomalloc/api"
import "github.com/bnclabs/gomalloc/lib"
import s "github.com/prataprc/gosettings"

// Allocator a fixed set of slab-size pools, ordered by slab size,
// with a system-allocator fallback for oversized requests and
// exhausted pools. Create with NewAllocator, use via the api.Mallocer
// methods, destroy with Release. Allocators are independent of one
// another, pointers must go back to the allocator that returned them.
type Allocator struct {
	// 64-bit aligned stats
	n_allocs    int64
	n_frees     int64
	n_bytes     int64
	n_fallbacks int64
	n_allocid   uint64

	pools     []*mempool // one per slab size, ascending
	slabsizes []int64
	latency   *lib.AverageInt64 // across pooled and fallback paths

	// configuration
	poolsize    int64
	initialized bool
	setts       s.Settings
}

// compile time check that Allocator implements the Mallocer
// interface.
var _ api.Mallocer = &Allocator{}

// NewAllocator create a new allocator. Pool mappings are reserved on
// Init, or lazily on the first Alloc.
func NewAllocator(setts s.Settings) *Allocator {
	setts = make(s.Settings).Mixin(Defaultsettings(), setts)
	al := &Allocator{
		slabsizes: Slabsizes[:],
		latency:   &lib.AverageInt64{},
		poolsize:  setts.Int64("poolsize"),
		setts:     setts,
	}
	if al.poolsize < chunkhdrsize+al.slabsizes[len(al.slabsizes)-1] {
		panicerr("poolsize %v cannot hold one %v byte chunk",
			al.poolsize, al.slabsizes[len(al.slabsizes)-1])
	}
	return al
}

// Init eagerly reserve every pool's memory mapping. Idempotent,
// calling Init on an initialized allocator is a no-op success. A
// mapping failure leaves the allocator uninitialized and is fatal,
// the allocator cannot be used.
func (al *Allocator) Init() error {
	if al.initialized {
		return nil
	}
	pools := make([]*mempool, 0, len(al.slabsizes))
	for _, slabsize := range al.slabsizes {
		pool, err := newmempool(slabsize, al.poolsize)
		if err != nil {
			for _, pool := range pools {
				pool.release()
			}
			return err
		}
		pools = append(pools, pool)
	}
	al.pools = pools
	al.initialized = true
	log.Infof("malloc: initialized %v pools of %v bytes each\n",
		len(al.pools), al.poolsize)
	return nil
}

//---- operations

// Alloc allocate a chunk of `n` bytes, 16-byte aligned. Zero and
// negative sizes return nil without side effects. Classified sizes
// are served from their pool in O(1); oversized requests and
// exhausted pools are served by the system allocator.
func (al *Allocator) Alloc(n int64) unsafe.Pointer {
	if n <= 0 {
		return nil
	}
	if al.initialized == false {
		if err := al.Init(); err != nil {
			panicerr("malloc: lazy init: %v", err)
		}
	}
	start := time.Now()
	size := alignsize(n)
	if index := classify(al.slabsizes, size); index >= 0 {
		if ptr, ok := al.pools[index].allocchunk(size, al.n_allocid+1); ok {
			al.n_allocid++
			al.n_allocs++
			al.n_bytes += size
			al.latency.Add(int64(time.Since(start)))
			return ptr
		}
		// pool exhausted, fall back.
	}
	ptr := al.fallbackalloc(size)
	al.latency.Add(int64(time.Since(start)))
	return ptr
}

// Free chunk back to its owning pool, or to the system allocator if
// no pool owns it. Freeing nil is a no-op. Freeing a pointer this
// allocator did not return, or freeing it twice, is undefined
// behaviour and not detected.
func (al *Allocator) Free(ptr unsafe.Pointer) {
	if ptr == nil {
		return
	}
	for _, pool := range al.pools {
		if pool.inrange(ptr) {
			pool.free(ptr)
			al.n_frees++
			return
		}
	}
	// not from our pools, must be a fallback allocation.
	sysfree(unsafe.Pointer(uintptr(ptr) - uintptr(chunkhdrsize)))
	al.n_frees++
}

// Realloc move the chunk to `n` bytes. Realloc(nil, n) behaves as
// Alloc(n), Realloc(ptr, 0) behaves as Free(ptr) and returns nil.
// Content is preserved upto the smaller of the stamped old size and
// `n`, the copy never reads past the old allocation.
func (al *Allocator) Realloc(ptr unsafe.Pointer, n int64) unsafe.Pointer {
	if ptr == nil {
		return al.Alloc(n)
	} else if n <= 0 {
		al.Free(ptr)
		return nil
	}
	oldsize := chunkheader(ptr).size
	newptr := al.Alloc(n)
	copyn := oldsize
	if n < copyn {
		copyn = n
	}
	dst := unsafe.Slice((*byte)(newptr), copyn)
	src := unsafe.Slice((*byte)(ptr), copyn)
	copy(dst, src)
	al.Free(ptr)
	return newptr
}

// Release every pool's mapping back to the OS and reset the allocator
// to its uninitialized state. The next Alloc initializes afresh.
// Pointers outstanding at Release, pooled or fallback, become
// invalid; using or freeing them afterwards is undefined behaviour.
func (al *Allocator) Release() {
	for _, pool := range al.pools {
		pool.release()
	}
	al.pools = nil
	al.initialized = false
	al.n_allocs, al.n_frees, al.n_bytes = 0, 0, 0
	al.n_fallbacks, al.n_allocid = 0, 0
	al.latency = &lib.AverageInt64{}
	log.Infof("malloc: released allocator\n")
}

//---- introspection

// Slabs implement api.Mallocer{} interface.
func (al *Allocator) Slabs() []int64 {
	return al.slabsizes
}

// Slabsize implement api.Mallocer{} interface. For a pooled chunk
// return its pool's slab size, for a fallback chunk the stamped size.
func (al *Allocator) Slabsize(ptr unsafe.Pointer) int64 {
	for _, pool := range al.pools {
		if pool.inrange(ptr) {
			return pool.slabsize
		}
	}
	return chunkheader(ptr).size
}

// Chunklen implement api.Mallocer{} interface.
func (al *Allocator) Chunklen(ptr unsafe.Pointer) int64 {
	return chunkheader(ptr).size
}

//---- local functions

func (al *Allocator) fallbackalloc(size int64) unsafe.Pointer {
	ch := (*chunk)(sysmalloc(chunkhdrsize + size))
	al.n_allocid++
	ch.next, ch.size = nil, size
	ch.allocid = al.n_allocid
	ch.timestamp = time.Now().UnixNano()
	al.n_allocs++
	al.n_bytes += size
	al.n_fallbacks++
	return ch.payload()
}
