// Package lz4framed compresses and decompresses data in the LZ4 frame
// format: self-describing containers of LZ4 blocks with negotiated block
// sizes, optional block and content checksums, an optional declared
// content length, and support for linked blocks sharing a 64 KiB
// history window.
//
// Two styles of use are supported. Compress and Decompress operate on
// whole byte slices in one call. Compressor and Decompressor are
// explicit, reusable contexts for streams that arrive in pieces: the
// compressor turns Update calls into frame blocks, the decompressor
// accepts arbitrarily sliced input and reports after every call how
// many bytes it expects next.
//
// Frames produced here are standard: any conformant frame decoder
// accepts them, and frames from other implementations decode here,
// including skippable frames, which are discarded transparently.
package lz4framed

import (
	"math"

	"go.uber.org/zap"

	"github.com/iamNilotpal/lz4framed/internal/adapters/blockcodec"
	"github.com/iamNilotpal/lz4framed/internal/adapters/checksum"
	"github.com/iamNilotpal/lz4framed/internal/core/ports"
	"github.com/iamNilotpal/lz4framed/internal/core/services/frame"
	"github.com/iamNilotpal/lz4framed/pkg/buffer"
	lz4errors "github.com/iamNilotpal/lz4framed/pkg/errors"
)

// frameChecksum is the frame format's checksum algorithm, shared by all
// writers and readers. The adapter is stateless and safe for concurrent
// use.
var frameChecksum ports.Checksum = checksum.NewXXH32()

var nopLogger = zap.NewNop()

// newCodec builds the block codec for a compression level.
func newCodec(level int) (ports.BlockCodec, error) {
	return blockcodec.NewLZ4Codec(blockcodec.Options{Level: level})
}

// Compress encodes data as a single complete frame and returns it. The
// frame always declares the exact content length, so decoders can size
// their output up front; any ContentSize preference is overridden.
//
// Returns an error if:
//   - data is empty.
//   - An option value is outside its supported range.
func Compress(data []byte, opts ...Option) ([]byte, error) {
	if len(data) == 0 {
		return nil, lz4errors.NewValidationError("data", len(data), lz4errors.ErrInputEmpty)
	}

	prefs := DefaultPreferences()
	for _, opt := range opts {
		opt(prefs)
	}
	prefs.ContentSize = uint64(len(data))
	if err := validatePreferences(prefs); err != nil {
		return nil, err
	}

	codec, err := newCodec(prefs.Level)
	if err != nil {
		return nil, err
	}

	desc := prefs.descriptor()
	out := make([]byte, 0, frame.CompressFrameBound(len(data), &desc))

	w := frame.NewWriter(frameChecksum)
	defer w.Release()

	out = w.Begin(out, desc, codec, false)
	if out, err = w.Update(out, data); err != nil {
		return nil, err
	}
	if out, err = w.End(out); err != nil {
		return nil, err
	}
	return out, nil
}

// Decompress decodes the first frame in data and returns its content.
// Skippable frames before it are discarded; bytes after the frame's end
// are ignored.
//
// When the frame declares its content length the output is allocated
// up front, capped at the largest length the remaining input could
// expand to. Otherwise decoding starts from an initial allocation, the
// larger of the configured buffer size and the remaining input, and
// doubles as needed. A declared length that proves wrong is reported
// through the configured warning handler and logger while decoding
// continues; the returned content is always what the frame actually
// contained.
//
// Returns an error if:
//   - data is empty or an option value is out of range.
//   - data ends before the frame does (CodeFrameSizeWrong).
//   - The frame is malformed or fails a checksum.
func Decompress(data []byte, opts ...DecompressOption) ([]byte, error) {
	if len(data) == 0 {
		return nil, lz4errors.NewValidationError("data", len(data), lz4errors.ErrInputEmpty)
	}

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

	warn := func(declared, decoded uint64) {
		cfg.deliver(&lz4errors.IntegrityWarning{Declared: declared, Decoded: decoded})
	}

	r := frame.NewReader(codec, frameChecksum, warn)
	defer r.Release()

	// Parse the header before sizing the output.
	pos := 0
	_, nr, _, err := r.Decode(nil, data)
	pos += nr
	if err != nil {
		return nil, err
	}
	if !r.HasInfo() {
		if r.AtFrameBoundary() && pos == len(data) {
			// Nothing but whole skippable frames.
			return []byte{}, nil
		}
		return nil, lz4errors.ErrHeaderIncomplete
	}

	info := r.Info()
	var buf *buffer.Buffer
	if info.HasContentSize {
		if info.ContentSize > uint64(math.MaxInt) {
			return nil, lz4errors.NewError(lz4errors.CodeAllocationFailed)
		}
		size := int(info.ContentSize)
		// No valid block expands its input more than 255x; cap what a
		// lying header can make us allocate up front. The buffer grows if
		// the frame somehow needs more.
		if rem := len(data) - pos; size/255 > rem {
			size = 255 * rem
		}
		buf = buffer.New(size)
	} else {
		size := cfg.bufferSize
		if rem := len(data) - pos; rem > size {
			size = rem
		}
		buf = buffer.New(size)
	}

	for {
		nw, nr, hint, err := r.Decode(buf.Window(), data[pos:])
		buf.Advance(nw)
		pos += nr
		if err != nil {
			return nil, err
		}
		if hint == 0 {
			return buf.Finalize(), nil
		}
		if buf.Full() && (pos < len(data) || r.HasPendingOutput()) {
			// The frame outgrew its declaration or the initial guess; the
			// reader reports the mismatch once the frame completes.
			buf.Grow()
			continue
		}
		if pos == len(data) {
			return nil, lz4errors.NewError(lz4errors.CodeFrameSizeWrong)
		}
	}
}

// GetBlockSize returns the maximum decoded block size in bytes for a
// block size identifier. The default alias resolves to the 64 KiB
// class.
//
// Returns a ValidationError if the identifier is not supported.
func GetBlockSize(id BlockSizeID) (int, error) {
	if !id.Valid() {
		return 0, lz4errors.NewValidationError("block_size_id", id, lz4errors.ErrInvalidOption)
	}
	return id.Bytes(), nil
}

// CompressFrameBound returns the maximum encoded size of a whole frame
// holding n raw bytes under the given preferences, header included. A
// nil prefs uses DefaultPreferences. Slices sized with it never force
// the frame builder to reallocate.
func CompressFrameBound(n int, prefs *Preferences) int {
	if n < 0 {
		n = 0
	}
	if prefs == nil {
		prefs = DefaultPreferences()
	}
	desc := prefs.descriptor()
	return frame.CompressFrameBound(n, &desc)
}
