// Package blockcodec provides raw LZ4 block compression and decompression
// behind the BlockCodec port. It selects between the fast and the
// high-compression encoder based on the configured level and leaves all
// framing concerns to the caller.
package blockcodec

import (
	"fmt"

	"github.com/pierrec/lz4/v4"

	"github.com/iamNilotpal/lz4framed/internal/core/domain"
)

type Options struct {
	Level int
}

// LZ4Codec implements BlockCodec using the lz4 block primitives. A codec
// instance owns the encoder state and must not be shared between
// goroutines; decompression is stateless and always available.
type LZ4Codec struct {
	level int                // Configured compression level (0-16).
	fast  lz4.Compressor     // Encoder for levels 0-2.
	high  lz4.CompressorHC   // Encoder for levels 3 and above.
}

// hcLevels maps levels 3..16 onto the codec's high-compression scale.
// Levels beyond the deepest supported search depth clamp to the maximum.
var hcLevels = [...]lz4.CompressionLevel{
	lz4.Level1, lz4.Level2, lz4.Level3, lz4.Level4, lz4.Level5,
	lz4.Level6, lz4.Level7, lz4.Level8, lz4.Level9,
}

// NewLZ4Codec creates a block codec for the given options.
//
// Returns an error if:
// - The compression level is outside the supported range
func NewLZ4Codec(opts Options) (*LZ4Codec, error) {
	if err := Validate(&opts); err != nil {
		return nil, err
	}

	codec := LZ4Codec{level: opts.Level}
	if opts.Level >= domain.HighCompressionMin {
		idx := opts.Level - domain.HighCompressionMin
		if idx >= len(hcLevels) {
			idx = len(hcLevels) - 1
		}
		codec.high = lz4.CompressorHC{Level: hcLevels[idx]}
	}

	return &codec, nil
}

// CompressBound returns the worst-case compressed size for a block of
// the given length.
func (c *LZ4Codec) CompressBound(size int) int {
	return lz4.CompressBlockBound(size)
}

// Compress compresses one block of src into dst using the encoder the
// configured level selects. A return of 0 means the data did not shrink
// and should be stored raw.
func (c *LZ4Codec) Compress(src, dst []byte) (int, error) {
	var (
		n   int
		err error
	)

	if c.level >= domain.HighCompressionMin {
		n, err = c.high.CompressBlock(src, dst)
	} else {
		n, err = c.fast.CompressBlock(src, dst)
	}
	if err != nil {
		return 0, fmt.Errorf("block compression failed: %w", err)
	}

	if n >= len(src) {
		// Expanded or broke even; the frame layer stores these raw.
		return 0, nil
	}
	return n, nil
}

// Decompress expands one compressed block from src into dst. When dict
// is non-empty the block may reference those bytes as preceding history,
// which linked-block frames rely on.
//
// Returns an error if:
// - The compressed data is malformed
// - dst is too small for the decoded block
func (c *LZ4Codec) Decompress(src, dst, dict []byte) (int, error) {
	var (
		n   int
		err error
	)

	if len(dict) > 0 {
		n, err = lz4.UncompressBlockWithDict(src, dst, dict)
	} else {
		n, err = lz4.UncompressBlock(src, dst)
	}
	if err != nil {
		return 0, fmt.Errorf("block decompression failed: %w", err)
	}

	return n, nil
}

// Level returns the current compression level.
func (c *LZ4Codec) Level() int {
	return c.level
}
