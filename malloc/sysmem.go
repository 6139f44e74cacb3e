// Fallback path into the process heap. Functions and methods are not
// thread safe.

package malloc

//#include <stdlib.h>
import "C"

import "unsafe"

func sysmalloc(size int64) unsafe.Pointer {
	ptr := C.malloc(C.size_t(size))
	if ptr == nil {
		panicerr("sysmalloc(%v): out of memory", size)
	}
	return ptr
}

func sysfree(ptr unsafe.Pointer) {
	C.free(ptr)
}
