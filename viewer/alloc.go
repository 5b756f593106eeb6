package viewer

import (
	"errors"
	"fmt"
)

var ErrAlloc = errors.New("allocation failed")

// Allocator hands out the frame buffer and texture staging memory.
type Allocator interface {
	Alloc(n int) ([]byte, error)
	Free(b []byte)
}

// a 16k by 16k desktop at 4 bytes per pixel with power of two padding
const maxAlloc = 1 << 30

type heapAllocator struct{}

func (heapAllocator) Alloc(n int) ([]byte, error) {
	if n <= 0 || n > maxAlloc {
		return nil, fmt.Errorf("%w: %d bytes", ErrAlloc, n)
	}
	return make([]byte, n), nil
}

// Free drops nothing; the garbage collector reclaims released buffers.
func (heapAllocator) Free([]byte) {}
