// Package frame implements the container format that carries compressed
// blocks between a producer and a consumer: a magic number and descriptor
// up front, a sequence of length-prefixed blocks (each optionally followed
// by its checksum), an end mark, and an optional checksum of the whole
// decoded content.
//
// The package exposes two halves. Writer assembles frames incrementally
// and appends the encoded bytes to caller-owned slices. Reader is a
// resumable state machine that accepts arbitrary slices of an encoded
// stream and produces decoded bytes, reporting after every call how many
// input bytes it still expects. Neither half allocates per block in
// steady state: staging buffers come from per-size pools and are reused
// across frames.
package frame

import (
	"github.com/iamNilotpal/lz4framed/internal/core/domain"
	"github.com/iamNilotpal/lz4framed/pkg/pool"
)

// Staging buffers are pooled per block size class. Each buffer is large
// enough to hold a worst-case compressed block plus its checksum, so a
// single pool serves compression scratch, raw block staging and decoded
// block staging alike.
var blockPools [4]*pool.BytePool

func init() {
	for id := domain.BlockSize64KB; id <= domain.BlockSize4MB; id++ {
		blockPools[id.Index()] = pool.NewBytePool(stagingSize(id.Bytes()))
	}
}

// stagingSize returns the pooled buffer capacity for a block size: the
// codec's worst-case expansion of one block plus the checksum that may
// trail it on the wire.
func stagingSize(blockSize int) int {
	return blockCompressBound(blockSize) + domain.ChecksumSize
}

// blockCompressBound returns the maximum number of bytes block
// compression can produce for an input of the given size. Mirrors the
// codec's bound so pooled buffers never force a second allocation.
func blockCompressBound(size int) int {
	return size + size/255 + 16
}

// getStaging borrows a zero-length staging buffer for the given block
// size class.
func getStaging(id domain.BlockSizeID) []byte {
	return blockPools[id.Index()].Get()
}

// putStaging returns a staging buffer to its class pool. Buffers whose
// capacity no longer matches the pool are dropped by the pool itself.
func putStaging(id domain.BlockSizeID, buf []byte) {
	blockPools[id.Index()].Put(buf)
}
