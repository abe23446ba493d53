package frame

import (
	"encoding/binary"
	"hash"

	"github.com/iamNilotpal/lz4framed/internal/core/domain"
	"github.com/iamNilotpal/lz4framed/internal/core/ports"
	lz4errors "github.com/iamNilotpal/lz4framed/pkg/errors"
)

// Writer assembles one frame at a time and appends the encoded bytes to
// caller-owned slices: Begin emits the header, Update emits blocks as
// input accumulates, End emits the end mark and optional content
// checksum. A Writer is reusable across frames; Begin rearms it.
//
// Without auto flush, input smaller than the block size is buffered and
// only emitted once a full block is available or the frame is flushed or
// ended. With auto flush every Update call drains completely, trading
// ratio for latency.
type Writer struct {
	sum   ports.Checksum
	codec ports.BlockCodec

	desc      domain.Descriptor
	autoFlush bool
	blockSize int

	// Streaming checksum over all raw input, nil unless the frame
	// declares a content checksum.
	content hash.Hash32

	// Pooled staging: pending holds a partial block between Update
	// calls, scratch receives compressed block candidates.
	pending []byte
	scratch []byte
	poolID  domain.BlockSizeID

	// Raw bytes accepted since Begin, checked against the declared
	// content length at End.
	written uint64
}

// NewWriter creates a Writer that checksums headers, blocks and content
// with the given algorithm. The block codec is supplied per frame at
// Begin, since it depends on the requested compression level.
func NewWriter(sum ports.Checksum) *Writer {
	return &Writer{sum: sum}
}

// Begin starts a new frame: it rearms the writer for the descriptor and
// appends the serialized header to dst. Any state from a previous frame
// is discarded.
func (w *Writer) Begin(dst []byte, desc domain.Descriptor, codec ports.BlockCodec, autoFlush bool) []byte {
	if w.pending != nil && desc.BlockSizeID != w.poolID {
		w.Release()
	}

	w.desc = desc
	w.codec = codec
	w.autoFlush = autoFlush
	w.blockSize = desc.BlockSize()
	w.written = 0

	if w.pending == nil {
		w.pending = getStaging(desc.BlockSizeID)
		w.scratch = getStaging(desc.BlockSizeID)
		w.poolID = desc.BlockSizeID
	}
	w.pending = w.pending[:0]

	if desc.ContentChecksum {
		w.content = w.sum.New()
	} else {
		w.content = nil
	}

	return AppendHeader(dst, &w.desc, w.sum)
}

// Update feeds raw input into the current frame and appends any blocks
// it completes to dst. Partial trailing input is buffered unless auto
// flush is enabled, in which case it is emitted as a short block.
func (w *Writer) Update(dst, src []byte) ([]byte, error) {
	if w.content != nil {
		w.content.Write(src)
	}
	w.written += uint64(len(src))

	var err error

	// Top up a buffered partial block first.
	if len(w.pending) > 0 {
		n := w.blockSize - len(w.pending)
		if n > len(src) {
			n = len(src)
		}
		w.pending = append(w.pending, src[:n]...)
		src = src[n:]
		if len(w.pending) < w.blockSize {
			return dst, nil
		}
		if dst, err = w.appendBlock(dst, w.pending); err != nil {
			return dst, err
		}
		w.pending = w.pending[:0]
	}

	for len(src) >= w.blockSize {
		if dst, err = w.appendBlock(dst, src[:w.blockSize]); err != nil {
			return dst, err
		}
		src = src[w.blockSize:]
	}

	if len(src) > 0 {
		if w.autoFlush {
			return w.appendBlock(dst, src)
		}
		w.pending = append(w.pending, src...)
	}
	return dst, nil
}

// Flush emits any buffered partial block as a short block appended to
// dst. A flush in the middle of a frame costs compression ratio but
// makes everything written so far decodable.
func (w *Writer) Flush(dst []byte) ([]byte, error) {
	if len(w.pending) == 0 {
		return dst, nil
	}
	dst, err := w.appendBlock(dst, w.pending)
	w.pending = w.pending[:0]
	return dst, err
}

// End finishes the frame: it flushes buffered input, then appends the
// end mark and, when enabled, the content checksum. When the header
// declared a content length that the Update calls did not honor, End
// fails with a frame size error and the frame must be restarted.
func (w *Writer) End(dst []byte) ([]byte, error) {
	dst, err := w.Flush(dst)
	if err != nil {
		return dst, err
	}

	if w.desc.HasContentSize && w.written != w.desc.ContentSize {
		return dst, lz4errors.NewError(lz4errors.CodeFrameSizeWrong)
	}

	dst = binary.LittleEndian.AppendUint32(dst, 0)
	if w.content != nil {
		dst = binary.LittleEndian.AppendUint32(dst, w.content.Sum32())
	}
	return dst, nil
}

// Bound returns the worst-case number of bytes the writer can still
// emit if fed extra more input bytes and then ended: buffered plus new
// input as stored blocks, per-block overhead, end mark and trailer.
func (w *Writer) Bound(extra int) int {
	return encodedBound(len(w.pending)+extra, w.blockSize, w.desc.BlockChecksum, w.desc.ContentChecksum)
}

// Release returns pooled staging buffers. The writer remains usable;
// the next Begin reacquires them.
func (w *Writer) Release() {
	if w.pending == nil {
		return
	}
	putStaging(w.poolID, w.pending)
	putStaging(w.poolID, w.scratch)
	w.pending = nil
	w.scratch = nil
}

// appendBlock compresses src as a single block and appends it to dst:
// the size word, the payload, and the block checksum when enabled. When
// compression does not shrink the input the payload is stored raw with
// the uncompressed bit set on the size word.
func (w *Writer) appendBlock(dst, src []byte) ([]byte, error) {
	bound := w.codec.CompressBound(len(src))
	if bound > cap(w.scratch) {
		w.scratch = make([]byte, 0, bound)
	}

	n, err := w.codec.Compress(src, w.scratch[:bound])
	if err != nil {
		return dst, lz4errors.WrapError(lz4errors.CodeGeneric, err)
	}

	payload := src
	word := uint32(len(src)) | domain.UncompressedFlag
	if n > 0 {
		payload = w.scratch[:n]
		word = uint32(n)
	}

	dst = binary.LittleEndian.AppendUint32(dst, word)
	dst = append(dst, payload...)
	if w.desc.BlockChecksum {
		dst = binary.LittleEndian.AppendUint32(dst, w.sum.Checksum(payload))
	}
	return dst, nil
}

// encodedBound is the worst case encoded size of total raw bytes cut
// into blockSize blocks, all stored, plus the end mark and trailer.
func encodedBound(total, blockSize int, blockChecksum, contentChecksum bool) int {
	overhead := domain.BlockHeaderSize
	if blockChecksum {
		overhead += domain.ChecksumSize
	}
	blocks := (total + blockSize - 1) / blockSize

	n := total + blocks*overhead + domain.BlockHeaderSize
	if contentChecksum {
		n += domain.ChecksumSize
	}
	return n
}

// CompressFrameBound returns the maximum encoded size of a whole frame
// holding n raw bytes under the given descriptor, header included.
func CompressFrameBound(n int, desc *domain.Descriptor) int {
	return domain.HeaderSizeMaxWrite + encodedBound(n, desc.BlockSize(), desc.BlockChecksum, desc.ContentChecksum)
}
