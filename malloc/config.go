package malloc

import s "github.com/prataprc/gosettings"

// Alignment requested sizes are rounded up to multiples of Alignment
// before classification. Allocated chunks are aligned to the same
// boundary.
const Alignment = int64(16)

// Poolsize size of the memory mapping reserved for each pool.
const Poolsize = int64(2 * 1024 * 1024)

// Poolcount number of slab-size pools in an allocator.
const Poolcount = 8

// Slabsizes ascending table of slab sizes, one pool per entry. Sizes
// beyond the last entry always go to the system allocator.
var Slabsizes = [Poolcount]int64{32, 64, 256, 1024, 4096, 16384, 65536, 262144}

// Defaultsettings for creating a new allocator.
//
// "poolsize" (int64, default: <Poolsize>)
//
//	Bytes reserved for each pool's memory mapping.
func Defaultsettings() s.Settings {
	return s.Settings{
		"poolsize": Poolsize,
	}
}
