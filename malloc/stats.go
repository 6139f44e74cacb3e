package malloc

import "fmt"
import "strings"
import "unsafe"
import "encoding/json"

import "github.com/bnclabs/golog"
import "github.com/cloudfoundry/gosigar"
import gohumanize "github.com/dustin/go-humanize"

// Stats implement api.Mallocer{} interface. Snapshot of allocator and
// per-pool counters, readable at any time, never mutates allocator
// state. On an uninitialized allocator every counter reads zero and
// every pool reports zero capacity.
func (al *Allocator) Stats() map[string]interface{} {
	fallbackratio := float64(0)
	if al.n_allocs > 0 {
		fallbackratio = float64(al.n_fallbacks) / float64(al.n_allocs)
	}
	stats := map[string]interface{}{
		"initialized":    al.initialized,
		"n_allocs":       al.n_allocs,
		"n_frees":        al.n_frees,
		"n_bytes":        al.n_bytes,
		"n_fallbacks":    al.n_fallbacks,
		"fallback.ratio": fallbackratio,
		"latency":        al.latency.Stats(),
	}
	for i, slabsize := range al.slabsizes {
		key := fmt.Sprintf("pool.%v", slabsize)
		if i < len(al.pools) {
			stats[key] = al.pools[i].stats()
			continue
		}
		stats[key] = map[string]interface{}{
			"slabsize": slabsize, "nchunks": int64(0),
			"n_allocs": int64(0), "n_frees": int64(0),
			"n_bytes": int64(0), "n_live": int64(0), "n_peak": int64(0),
			"utilization": float64(0),
		}
	}
	return stats
}

// Info implement api.Mallocer{} interface. Aggregate memory
// accounting across pools. `alloc` counts pooled memory live with the
// application, fallback memory is not tracked beyond its counters.
func (al *Allocator) Info() (capacity, heap, alloc, overhead int64) {
	self := int64(unsafe.Sizeof(*al))
	overhead += self
	for _, pool := range al.pools {
		c, h, a, o := pool.info()
		capacity, heap, alloc, overhead = capacity+c, heap+h, alloc+a, overhead+o
	}
	return
}

// Utilization implement api.Mallocer{} interface. Slab sizes and the
// fraction of each pool's chunks live with the application.
func (al *Allocator) Utilization() ([]int, []float64) {
	ss, zs := make([]int, 0, len(al.pools)), make([]float64, 0, len(al.pools))
	for _, pool := range al.pools {
		utilz := float64(0)
		if pool.nchunks > 0 {
			utilz = (float64(pool.n_live) / float64(pool.nchunks)) * 100
		}
		ss = append(ss, int(pool.slabsize))
		zs = append(zs, utilz)
	}
	return ss, zs
}

// Log a human readable dump of Stats() via the configured logger.
// Never fails, never mutates allocator state.
func (al *Allocator) Log(humanize bool) {
	stats := al.Stats()

	dohumanize := func(val interface{}) interface{} {
		if humanize {
			return gohumanize.Bytes(uint64(val.(int64)))
		}
		return val.(int64)
	}
	nbytes := dohumanize(stats["n_bytes"])
	fmsg := "malloc: allocs %v frees %v bytes %v fallbacks %v (%.2f%%)\n"
	log.Infof(
		fmsg, stats["n_allocs"], stats["n_frees"], nbytes,
		stats["n_fallbacks"], stats["fallback.ratio"].(float64)*100)

	// pool utilization
	outs := []string{}
	sizes, zs := al.Utilization()
	for i, size := range sizes {
		outs = append(outs, fmt.Sprintf("  %6v slab-size, utilz: %2.2f%%", size, zs[i]))
	}
	if len(outs) > 0 {
		log.Infof("malloc: pool utilization:\n%v\n", strings.Join(outs, "\n"))
	}

	total, used, free := getsysmem()
	log.Infof(
		"malloc: system memory total %v used %v free %v\n",
		dohumanize(int64(total)), dohumanize(int64(used)),
		dohumanize(int64(free)))

	if text, err := json.Marshal(stats); err == nil {
		log.Infof("malloc: stats %v\n", string(text))
	}
}

// Validate allocator counters against per-pool counters, panics on
// violation.
func (al *Allocator) Validate() {
	if al.initialized == false {
		return
	}
	poolallocs, poolfrees := int64(0), int64(0)
	for _, pool := range al.pools {
		if x, y := pool.checkallocated(), pool.n_live*pool.slabsize; x != y {
			fmsg := "Validate(): free list accounts %v allocated, counters say %v"
			panicerr(fmsg, x, y)
		}
		poolallocs += pool.n_allocs
		poolfrees += pool.n_frees
	}
	if al.n_allocs != poolallocs+al.n_fallbacks {
		fmsg := "Validate(): n_allocs:%v != pools:%v + fallbacks:%v"
		panicerr(fmsg, al.n_allocs, poolallocs, al.n_fallbacks)
	}
	if al.n_frees < poolfrees {
		fmsg := "Validate(): n_frees:%v < pool frees:%v"
		panicerr(fmsg, al.n_frees, poolfrees)
	}
}

func getsysmem() (total, used, free uint64) {
	mem := sigar.Mem{}
	mem.Get()
	return mem.Total, mem.Used, mem.Free
}
