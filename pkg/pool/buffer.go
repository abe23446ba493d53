package pool

import (
	"sync"
)

// BytePool manages a pool of fixed-capacity byte slices, used for block
// staging buffers whose size is known up front from the frame's block
// size class.
type BytePool struct {
	size int       // Capacity of each slice.
	pool sync.Pool // Thread-safe pool of slices.
}

// Creates a new byte pool handing out slices of the specified capacity.
func NewBytePool(size int) *BytePool {
	return &BytePool{
		size: size,
		pool: sync.Pool{
			New: func() any {
				buf := make([]byte, 0, size)
				return &buf
			},
		},
	}
}

// Size returns the capacity of the slices this pool hands out.
func (bp *BytePool) Size() int {
	return bp.size
}

// Retrieves a zero-length slice from the pool.
func (bp *BytePool) Get() []byte {
	buf := bp.pool.Get().(*[]byte)
	return (*buf)[:0] // Ensure the slice is clean.
}

// Returns a slice to the pool.
func (bp *BytePool) Put(buf []byte) {
	// Don't pool foreign slices or ones that have grown.
	if cap(buf) != bp.size {
		return
	}

	buf = buf[:0]
	bp.pool.Put(&buf)
}
