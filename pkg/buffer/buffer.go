// Package buffer provides the output buffer used by one-shot
// decompression: an explicit pair of backing storage and logical length,
// grown by doubling only when asked.
package buffer

// Buffer accumulates decoded output. Bytes are written into the window
// beyond the logical length and committed with Advance. The backing
// array never moves unless Grow is called, so a caller that sizes the
// buffer exactly — e.g. from a frame's declared content length — keeps a
// stable allocation for the whole decode.
type Buffer struct {
	data  []byte // Backing storage; len(data) is the capacity.
	n     int    // Logical length: bytes committed so far.
	grows int    // Number of times the backing array was reallocated.
}

// Creates a buffer with the given capacity and logical length zero.
func New(capacity int) *Buffer {
	return &Buffer{data: make([]byte, capacity)}
}

// Window returns the writable region beyond the logical length.
func (b *Buffer) Window() []byte {
	return b.data[b.n:]
}

// Advance commits n bytes written into the window.
func (b *Buffer) Advance(n int) {
	b.n += n
}

// Full reports whether no writable space remains.
func (b *Buffer) Full() bool {
	return b.n == len(b.data)
}

// Grow doubles the capacity, preserving committed bytes.
func (b *Buffer) Grow() {
	capacity := 2 * len(b.data)
	if capacity == 0 {
		capacity = 1
	}

	next := make([]byte, capacity)
	copy(next, b.data[:b.n])
	b.data = next
	b.grows++
}

// Len returns the logical length.
func (b *Buffer) Len() int {
	return b.n
}

// Cap returns the current capacity.
func (b *Buffer) Cap() int {
	return len(b.data)
}

// Grows returns how many times the backing array was reallocated. Useful
// for asserting the stable-allocation guarantee.
func (b *Buffer) Grows() int {
	return b.grows
}

// Finalize truncates to the logical length and returns the result. The
// buffer must not be written to afterwards.
func (b *Buffer) Finalize() []byte {
	return b.data[:b.n]
}
