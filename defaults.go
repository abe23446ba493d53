package lz4framed

import "github.com/iamNilotpal/lz4framed/internal/core/domain"

const (
	// MinCompressionLevel and MaxCompressionLevel bound the accepted
	// compression levels. Levels 0-2 select the fast compressor, 3 and
	// above the high-compression one.
	MinCompressionLevel = domain.MinCompressionLevel
	MaxCompressionLevel = domain.MaxCompressionLevel

	// DefaultChunkSize is the decoded chunk granularity
	// Decompressor.Update uses when the caller passes zero.
	DefaultChunkSize = 64 << 10

	// DefaultBufferSize is the initial output allocation for one-shot
	// decompression of frames that do not declare their content length.
	DefaultBufferSize = 1 << 10
)

// DefaultPreferences returns the default compression preferences:
// 64 KiB linked blocks, fast compression, no checksums, no declared
// content length, no auto flush.
func DefaultPreferences() *Preferences {
	return &Preferences{
		BlockSizeID:  BlockSizeDefault,
		Level:        MinCompressionLevel,
		LinkedBlocks: true,
	}
}

// defaultDecompressConfig returns the default decompression settings.
func defaultDecompressConfig() *decompressConfig {
	return &decompressConfig{
		bufferSize: DefaultBufferSize,
		log:        nopLogger,
	}
}
