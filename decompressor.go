package lz4framed

import (
	"github.com/iamNilotpal/lz4framed/internal/core/domain"
	"github.com/iamNilotpal/lz4framed/internal/core/services/frame"
	lz4errors "github.com/iamNilotpal/lz4framed/pkg/errors"
)

// FrameInfo describes a parsed frame header.
type FrameInfo struct {
	// ContentSize is the decoded length the frame declares, or 0 when
	// the header carries none.
	ContentSize uint64

	// BlockSizeID is the frame's block size class.
	BlockSizeID BlockSizeID

	// LinkedBlocks reports whether blocks share a 64 KiB history
	// window.
	LinkedBlocks bool

	// ContentChecksum reports whether the frame ends with a checksum of
	// the whole decoded content.
	ContentChecksum bool

	// BlockChecksum reports whether every block carries its own
	// checksum.
	BlockChecksum bool

	// DictionaryID is the dictionary identifier from the header, or 0.
	DictionaryID uint32

	// InputHint is the number of input bytes the decoder expects next.
	InputHint int
}

// Decompressor is an explicit decompression context for encoded streams
// that arrive in pieces. Input may be sliced at any byte position:
// whatever a call cannot finish is retained and the next call resumes
// exactly where the previous one stopped, including across frame
// boundaries in concatenated streams.
//
// Update never decodes past the end of the current frame. A returned
// hint of zero marks the frame boundary; the next call continues into
// the following frame. A Decompressor is not safe for concurrent use.
type Decompressor struct {
	reader *frame.Reader
	cfg    *decompressConfig

	// Input accepted but not yet consumed by the frame reader.
	pending []byte

	// Last input hint reported by the reader.
	hint int

	failed bool
	closed bool
}

// NewDecompressor creates a decompression context. Call Close when the
// context is no longer needed.
//
// Returns an error if an option value is outside its supported range.
func NewDecompressor(opts ...DecompressOption) (*Decompressor, error) {
	cfg := defaultDecompressConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if err := validateDecompressConfig(cfg); err != nil {
		return nil, err
	}
	codec, err := newCodec(MinCompressionLevel)
	if err != nil {
		return nil, err
	}

	d := &Decompressor{cfg: cfg, hint: domain.HeaderSizeMin}
	d.reader = frame.NewReader(codec, frameChecksum, func(declared, decoded uint64) {
		d.cfg.deliver(&lz4errors.IntegrityWarning{Declared: declared, Decoded: decoded})
	})
	return d, nil
}

// FrameInfo absorbs data into the context and returns the current
// frame's header description once enough bytes have arrived. Input
// consumed here is not lost: block data following the header is
// retained for the next Update call. Calling FrameInfo again mid-frame
// returns the same header with a refreshed input hint, without
// consuming anything. data may be empty.
//
// Returns an error if:
//   - The context is closed or has failed.
//   - The accumulated bytes end inside the header (ErrHeaderIncomplete);
//     supply more and call again.
//   - The header is malformed or fails its checksum.
func (d *Decompressor) FrameInfo(data []byte) (*FrameInfo, error) {
	if err := d.usable(); err != nil {
		return nil, err
	}
	if len(data) > 0 {
		d.pending = append(d.pending, data...)
	}

	if !d.reader.HasInfo() {
		_, nr, hint, err := d.reader.Decode(nil, d.pending)
		d.discard(nr)
		d.hint = hint
		if err != nil {
			d.failed = true
			return nil, err
		}
		if !d.reader.HasInfo() {
			return nil, lz4errors.ErrHeaderIncomplete
		}
	}

	desc := d.reader.Info()
	return &FrameInfo{
		ContentSize:     desc.ContentSize,
		BlockSizeID:     desc.BlockSizeID,
		LinkedBlocks:    desc.Linked,
		ContentChecksum: desc.ContentChecksum,
		BlockChecksum:   desc.BlockChecksum,
		DictionaryID:    desc.DictID,
		InputHint:       d.hint,
	}, nil
}

// Update absorbs data into the context and decodes as far as the
// accumulated input allows, returning the decoded bytes as chunks of at
// most chunkSize bytes (every chunk but the last is exactly full). A
// chunkSize of zero uses DefaultChunkSize.
//
// The returned hint is the number of further input bytes the decoder
// expects. A hint of zero means the current frame completed exactly at
// the consumed position: input beyond it is retained, and the next
// Update, with or without new data, continues into the following
// frame.
//
// Returns an error if:
//   - The context is closed or has failed.
//   - chunkSize is negative.
//   - data is empty and nothing is retained from earlier calls.
//   - The frame is malformed or fails a checksum. The context then
//     rejects further calls until Reset.
func (d *Decompressor) Update(data []byte, chunkSize int) ([][]byte, int, error) {
	if err := d.usable(); err != nil {
		return nil, 0, err
	}
	if chunkSize < 0 {
		return nil, 0, lz4errors.NewValidationError("chunk_size", chunkSize, lz4errors.ErrInvalidOption)
	}
	if chunkSize == 0 {
		chunkSize = DefaultChunkSize
	}
	if len(data) == 0 && len(d.pending) == 0 {
		return nil, 0, lz4errors.NewValidationError("data", len(data), lz4errors.ErrInputEmpty)
	}
	d.pending = append(d.pending, data...)

	var (
		chunks [][]byte
		chunk  []byte
		fill   int
		off    int
	)
	hint := d.hint
	for {
		if chunk == nil {
			chunk = make([]byte, chunkSize)
			fill = 0
		}

		nw, nr, h, err := d.reader.Decode(chunk[fill:], d.pending[off:])
		fill += nw
		off += nr
		hint = h
		if err != nil {
			d.discard(off)
			d.failed = true
			return nil, 0, err
		}

		if fill == chunkSize {
			chunks = append(chunks, chunk)
			chunk = nil
		}
		if h == 0 || off == len(d.pending) {
			break
		}
	}
	if chunk != nil && fill > 0 {
		chunks = append(chunks, chunk[:fill])
	}

	d.discard(off)
	d.hint = hint
	return chunks, hint, nil
}

// Reset returns the context to its initial state, dropping any partial
// frame, retained input and failure latch. Pooled buffers are kept.
//
// Returns an error if the context is closed.
func (d *Decompressor) Reset() error {
	if d.closed {
		return errInvalidContext()
	}
	d.reader.Reset()
	d.pending = d.pending[:0]
	d.hint = domain.HeaderSizeMin
	d.failed = false
	return nil
}

// Close releases the context's pooled buffers. A closed context rejects
// all further operations; Close itself is idempotent.
func (d *Decompressor) Close() error {
	if d.closed {
		return nil
	}
	d.reader.Release()
	d.pending = nil
	d.closed = true
	return nil
}

// Buffered returns the number of input bytes retained but not yet
// consumed, e.g. the tail following a completed frame in a
// concatenated stream. A decompressor at a frame boundary with nothing
// buffered has fully consumed everything it was given.
func (d *Decompressor) Buffered() int {
	return len(d.pending)
}

// usable verifies the context accepts new input.
func (d *Decompressor) usable() error {
	if d.closed || d.failed {
		return errInvalidContext()
	}
	return nil
}

// discard drops the first n retained bytes, keeping the unconsumed
// tail.
func (d *Decompressor) discard(n int) {
	d.pending = d.pending[:copy(d.pending, d.pending[n:])]
}
