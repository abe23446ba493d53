package checksum

import (
	"hash"

	"github.com/pierrec/xxHash/xxHash32"
)

// xxh32 implements the Checksum port with the 32-bit xxHash algorithm
// the frame format mandates for header, block and content checksums.
type xxh32 struct {
	name string
	seed uint32
}

// NewXXH32 returns the frame format's checksum: xxHash-32 with a zero
// seed.
func NewXXH32() *xxh32 {
	return &xxh32{name: "xxh32", seed: 0}
}

func (x *xxh32) Checksum(data []byte) uint32 {
	return xxHash32.Checksum(data, x.seed)
}

func (x *xxh32) Verify(data []byte, checksum uint32) bool {
	return xxHash32.Checksum(data, x.seed) == checksum
}

// New returns a streaming hasher carrying the format's seed, used for
// content checksums accumulated block by block.
func (x *xxh32) New() hash.Hash32 {
	return xxHash32.New(x.seed)
}

func (x *xxh32) Name() string {
	return x.name
}
