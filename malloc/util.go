package malloc

import "fmt"

// alignsize round up `size` to the next multiple of Alignment.
func alignsize(size int64) int64 {
	return (size + Alignment - 1) &^ (Alignment - 1)
}

// classify pick the index of the smallest slab >= size, -1 if size
// exceeds the largest slab. `slabsizes` must be in ascending order.
func classify(slabsizes []int64, size int64) int {
	if size > slabsizes[len(slabsizes)-1] {
		return -1
	}
	off := 0
	for len(slabsizes) > 1 {
		pivot := len(slabsizes) / 2
		if slabsizes[pivot-1] < size {
			off, slabsizes = off+pivot, slabsizes[pivot:]
		} else {
			slabsizes = slabsizes[:pivot]
		}
	}
	return off
}

func panicerr(fmsg string, args ...interface{}) {
	panic(fmt.Errorf(fmsg, args...))
}
