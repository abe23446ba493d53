package lz4framed

import (
	"go.uber.org/zap"

	"github.com/iamNilotpal/lz4framed/internal/core/domain"
	lz4errors "github.com/iamNilotpal/lz4framed/pkg/errors"
)

// BlockSizeID selects the maximum decoded size of a single block within
// a frame.
type BlockSizeID = domain.BlockSizeID

// Supported block size identifiers. BlockSizeDefault is accepted
// anywhere an identifier is and selects the 64 KiB class.
const (
	BlockSizeDefault = domain.BlockSizeDefault
	BlockSize64KB    = domain.BlockSize64KB
	BlockSize256KB   = domain.BlockSize256KB
	BlockSize1MB     = domain.BlockSize1MB
	BlockSize4MB     = domain.BlockSize4MB
)

// Preferences control how frames are built. The zero value is not
// meaningful on its own; use DefaultPreferences or let the Option
// helpers start from defaults.
type Preferences struct {
	// BlockSizeID caps the decoded size of every block in the frame.
	// Larger blocks improve ratio on large inputs at the cost of memory
	// on both ends.
	BlockSizeID BlockSizeID

	// Level selects the compression effort, from MinCompressionLevel to
	// MaxCompressionLevel. Levels 0-2 use the fast compressor; 3 and
	// above switch to the high-compression one.
	Level int

	// LinkedBlocks marks blocks as sharing a 64 KiB history window with
	// the blocks before them. Compression emits self-contained blocks,
	// which are valid under either flag; decompression honors the
	// window fully.
	LinkedBlocks bool

	// ContentChecksum appends a checksum of the whole decoded content
	// after the frame's end mark.
	ContentChecksum bool

	// BlockChecksum appends a checksum after every block payload.
	BlockChecksum bool

	// ContentSize, when non-zero, declares the exact decoded length in
	// the frame header. Ending a frame whose input did not match the
	// declaration is an error. Zero leaves the length undeclared.
	ContentSize uint64

	// AutoFlush emits every Update call's input immediately instead of
	// buffering partial blocks, trading ratio for latency.
	AutoFlush bool
}

// Option adjusts compression preferences.
type Option func(*Preferences)

// WithBlockSizeID sets the frame's block size class.
func WithBlockSizeID(id BlockSizeID) Option {
	return func(p *Preferences) { p.BlockSizeID = id }
}

// WithCompressionLevel sets the compression effort.
func WithCompressionLevel(level int) Option {
	return func(p *Preferences) { p.Level = level }
}

// WithLinkedBlocks sets whether blocks share a history window.
func WithLinkedBlocks(linked bool) Option {
	return func(p *Preferences) { p.LinkedBlocks = linked }
}

// WithContentChecksum enables or disables the whole-content checksum
// trailer.
func WithContentChecksum(enabled bool) Option {
	return func(p *Preferences) { p.ContentChecksum = enabled }
}

// WithBlockChecksum enables or disables per-block checksums.
func WithBlockChecksum(enabled bool) Option {
	return func(p *Preferences) { p.BlockChecksum = enabled }
}

// WithContentSize declares the exact decoded length in the frame
// header.
func WithContentSize(size uint64) Option {
	return func(p *Preferences) { p.ContentSize = size }
}

// WithAutoFlush enables or disables immediate emission of every Update
// call's input.
func WithAutoFlush(enabled bool) Option {
	return func(p *Preferences) { p.AutoFlush = enabled }
}

// descriptor resolves preferences into the wire descriptor for a new
// frame, mapping the default block size alias to its concrete class.
func (p *Preferences) descriptor() domain.Descriptor {
	id := p.BlockSizeID
	if id == BlockSizeDefault {
		id = BlockSize64KB
	}
	return domain.Descriptor{
		BlockSizeID:     id,
		Linked:          p.LinkedBlocks,
		ContentChecksum: p.ContentChecksum,
		BlockChecksum:   p.BlockChecksum,
		ContentSize:     p.ContentSize,
		HasContentSize:  p.ContentSize > 0,
	}
}

// decompressConfig carries decompression-side settings shared by the
// one-shot API and Decompressor contexts.
type decompressConfig struct {
	// Initial output allocation for frames that do not declare their
	// content length.
	bufferSize int

	// Receives one call per frame whose declared content length proved
	// wrong. Optional.
	handler func(*lz4errors.IntegrityWarning)

	// Diagnostic sink for the same condition. Defaults to a nop logger.
	log *zap.Logger
}

// DecompressOption adjusts decompression behavior.
type DecompressOption func(*decompressConfig)

// WithInitialBufferSize sets the starting output allocation used when a
// frame does not declare its decoded length. The buffer doubles as
// needed from there.
func WithInitialBufferSize(size int) DecompressOption {
	return func(c *decompressConfig) { c.bufferSize = size }
}

// WithWarningHandler installs a callback receiving advisory integrity
// warnings: frames whose declared content length does not match what
// was actually decoded. Decoding continues regardless.
func WithWarningHandler(handler func(*lz4errors.IntegrityWarning)) DecompressOption {
	return func(c *decompressConfig) { c.handler = handler }
}

// WithLogger routes advisory warnings to the given logger in addition
// to any handler.
func WithLogger(log *zap.Logger) DecompressOption {
	return func(c *decompressConfig) {
		if log != nil {
			c.log = log
		}
	}
}

// deliver routes an integrity warning to the configured logger and
// handler.
func (c *decompressConfig) deliver(w *lz4errors.IntegrityWarning) {
	c.log.Warn("content length mismatch",
		zap.Uint64("declared", w.Declared),
		zap.Uint64("decoded", w.Decoded),
	)
	if c.handler != nil {
		c.handler(w)
	}
}
