package frame

import (
	"encoding/binary"
	"hash"

	"github.com/iamNilotpal/lz4framed/internal/core/domain"
	"github.com/iamNilotpal/lz4framed/internal/core/ports"
	lz4errors "github.com/iamNilotpal/lz4framed/pkg/errors"
)

// readerState identifies which part of a frame the reader is currently
// accumulating.
type readerState uint8

const (
	stateHeader      readerState = iota // Frame magic and descriptor.
	stateSkipLen                        // Length word of a skippable frame.
	stateSkip                           // Payload of a skippable frame.
	stateBlockHeader                    // Block size word or end mark.
	stateBlockBody                      // Block payload and optional checksum.
	stateTrailer                        // Content checksum trailer.
)

// Reader decodes one frame at a time from an encoded stream supplied in
// arbitrary slices. It is resumable at every byte position: partial
// headers, size words, payloads and trailers are accumulated internally
// and Decode picks up exactly where the previous call stopped.
//
// A Reader never consumes past the end of the current frame. When the
// end mark (and trailer, if any) has been verified it reports an input
// hint of zero, rearms for the next frame, and leaves any following
// bytes untouched so the caller decides whether to continue. Skippable
// frames are the one exception: they are discarded transparently and
// never surface as a frame boundary.
type Reader struct {
	sum   ports.Checksum
	codec ports.BlockCodec

	// Called once per frame when the declared content length disagrees
	// with the decoded byte count. Advisory; decoding has already
	// succeeded when it fires.
	warn func(declared, decoded uint64)

	state readerState

	// Header accumulator, sized for the largest parseable header.
	hdr    [domain.HeaderSizeMax]byte
	hdrLen int

	// Four-byte accumulator shared by the skippable length word, block
	// size words and the content checksum trailer.
	word    [4]byte
	wordLen int

	// Bytes of skippable frame payload still to discard.
	skipLeft int

	desc      domain.Descriptor
	hasInfo   bool
	blockSize int

	// Current block, once its size word is parsed.
	blockLen int  // Payload length on the wire, checksum excluded.
	stored   bool // Payload is raw, not compressed.
	bodyNeed int  // Payload plus checksum bytes to accumulate.

	// Pooled staging: body accumulates the wire payload, out holds the
	// decoded block until the caller drains it.
	body   []byte
	out    []byte
	outPos int
	poolID domain.BlockSizeID

	// Window of previously decoded output for linked frames.
	history []byte

	// Streaming content checksum and decoded byte count for the frame.
	content hash.Hash32
	decoded uint64
}

// NewReader creates a Reader decoding blocks with the given codec and
// verifying checksums with the given algorithm. warn may be nil; when
// set it receives one call per frame whose declared content length was
// wrong.
func NewReader(codec ports.BlockCodec, sum ports.Checksum, warn func(declared, decoded uint64)) *Reader {
	return &Reader{sum: sum, codec: codec, warn: warn}
}

// Decode consumes bytes from src, appends decoded output to dst, and
// reports progress: nw decoded bytes written, nr input bytes consumed,
// and hint, the number of input bytes the reader expects next. A hint
// of zero means the current frame completed at src[nr-1] and the reader
// is rearmed for a following frame.
//
// Decode returns when src is exhausted, dst is full, or the frame ends,
// whichever happens first. Decoded output that does not fit in dst is
// retained and drained by later calls. A nil dst puts the call in
// header-only mode: it consumes just enough input to parse the next
// frame header and stops before decoding any block.
//
// Errors are frame corruption verdicts, not retry signals; the reader
// must be Reset before it can be used again after one.
func (r *Reader) Decode(dst, src []byte) (nw, nr, hint int, err error) {
	parseOnly := dst == nil
	if parseOnly && r.hasInfo {
		return 0, 0, r.hint(), nil
	}

	for {
		// Drain output staged by a previous block before decoding more.
		if r.outPos < len(r.out) {
			n := copy(dst[nw:], r.out[r.outPos:])
			nw += n
			r.outPos += n
			if r.outPos < len(r.out) {
				return nw, nr, r.hint(), nil
			}
		}

		switch r.state {
		case stateHeader:
			if r.hdrLen < domain.MagicSize {
				n := copy(r.hdr[r.hdrLen:domain.MagicSize], src[nr:])
				r.hdrLen += n
				nr += n
				if r.hdrLen < domain.MagicSize {
					return nw, nr, r.hint(), nil
				}
				magic := binary.LittleEndian.Uint32(r.hdr[:domain.MagicSize])
				if magic&domain.SkippableMagicMask == domain.SkippableMagicStart {
					r.hdrLen = 0
					r.wordLen = 0
					r.state = stateSkipLen
					continue
				}
				if magic != domain.FrameMagic {
					return nw, nr, 0, lz4errors.NewError(lz4errors.CodeFrameTypeUnknown)
				}
			}

			// The FLG byte decides the full header length.
			if r.hdrLen < domain.MagicSize+1 {
				if nr == len(src) {
					return nw, nr, r.hint(), nil
				}
				r.hdr[r.hdrLen] = src[nr]
				r.hdrLen++
				nr++
			}
			total := headerLength(r.hdr[domain.MagicSize])
			n := copy(r.hdr[r.hdrLen:total], src[nr:])
			r.hdrLen += n
			nr += n
			if r.hdrLen < total {
				return nw, nr, r.hint(), nil
			}

			desc, derr := parseDescriptor(r.hdr[:total], r.sum)
			if derr != nil {
				return nw, nr, 0, derr
			}
			r.beginFrame(desc)
			if parseOnly {
				return nw, nr, r.hint(), nil
			}

		case stateSkipLen:
			n := copy(r.word[r.wordLen:], src[nr:])
			r.wordLen += n
			nr += n
			if r.wordLen < len(r.word) {
				return nw, nr, r.hint(), nil
			}
			r.skipLeft = int(binary.LittleEndian.Uint32(r.word[:]))
			r.wordLen = 0
			r.state = stateSkip

		case stateSkip:
			n := len(src) - nr
			if n > r.skipLeft {
				n = r.skipLeft
			}
			nr += n
			r.skipLeft -= n
			if r.skipLeft > 0 {
				return nw, nr, r.hint(), nil
			}
			r.hdrLen = 0
			r.state = stateHeader

		case stateBlockHeader:
			n := copy(r.word[r.wordLen:], src[nr:])
			r.wordLen += n
			nr += n
			if r.wordLen < len(r.word) {
				return nw, nr, r.hint(), nil
			}
			r.wordLen = 0

			word := binary.LittleEndian.Uint32(r.word[:])
			r.blockLen = int(word &^ domain.UncompressedFlag)
			if r.blockLen == 0 {
				// End mark.
				if r.desc.ContentChecksum {
					r.state = stateTrailer
					continue
				}
				return r.finishFrame(nw, nr)
			}
			if r.blockLen > r.blockSize {
				return nw, nr, 0, lz4errors.NewError(lz4errors.CodeMaxBlockSizeInvalid)
			}
			r.stored = word&domain.UncompressedFlag != 0
			r.bodyNeed = r.blockLen
			if r.desc.BlockChecksum {
				r.bodyNeed += domain.ChecksumSize
			}
			r.body = r.body[:0]
			r.state = stateBlockBody

		case stateBlockBody:
			n := r.bodyNeed - len(r.body)
			if avail := len(src) - nr; n > avail {
				n = avail
			}
			r.body = append(r.body, src[nr:nr+n]...)
			nr += n
			if len(r.body) < r.bodyNeed {
				return nw, nr, r.hint(), nil
			}
			if berr := r.endBlock(); berr != nil {
				return nw, nr, 0, berr
			}
			r.state = stateBlockHeader

		case stateTrailer:
			n := copy(r.word[r.wordLen:], src[nr:])
			r.wordLen += n
			nr += n
			if r.wordLen < len(r.word) {
				return nw, nr, r.hint(), nil
			}
			r.wordLen = 0
			if want := binary.LittleEndian.Uint32(r.word[:]); r.content.Sum32() != want {
				return nw, nr, 0, lz4errors.NewError(lz4errors.CodeContentChecksumInvalid)
			}
			return r.finishFrame(nw, nr)
		}
	}
}

// HasInfo reports whether a frame header has been parsed and not yet
// closed out by the frame's end.
func (r *Reader) HasInfo() bool { return r.hasInfo }

// Info returns the descriptor of the frame being decoded. Valid only
// while HasInfo reports true.
func (r *Reader) Info() domain.Descriptor { return r.desc }

// AtFrameBoundary reports whether the reader sits exactly between
// frames with no partial input buffered, i.e. it has either decoded
// nothing yet or cleanly finished everything it was fed.
func (r *Reader) AtFrameBoundary() bool {
	return r.state == stateHeader && r.hdrLen == 0
}

// HasPendingOutput reports whether decoded bytes are staged waiting for
// destination space.
func (r *Reader) HasPendingOutput() bool { return r.outPos < len(r.out) }

// Reset discards all frame state and buffered data, making the reader
// equivalent to a newly constructed one. Pooled staging is kept for
// reuse.
func (r *Reader) Reset() {
	r.state = stateHeader
	r.hdrLen = 0
	r.wordLen = 0
	r.skipLeft = 0
	r.hasInfo = false
	r.content = nil
	r.decoded = 0
	r.outPos = 0
	r.history = r.history[:0]
	if r.body != nil {
		r.body = r.body[:0]
		r.out = r.out[:0]
	}
}

// Release returns pooled staging buffers. The reader remains usable;
// the next frame header reacquires them.
func (r *Reader) Release() {
	if r.body == nil {
		return
	}
	putStaging(r.poolID, r.body)
	putStaging(r.poolID, r.out)
	r.body = nil
	r.out = nil
	r.outPos = 0
}

// beginFrame arms the reader for the body of a frame whose header just
// parsed.
func (r *Reader) beginFrame(desc domain.Descriptor) {
	r.desc = desc
	r.hasInfo = true
	r.blockSize = desc.BlockSize()
	r.acquire(desc.BlockSizeID)
	if desc.ContentChecksum {
		r.content = r.sum.New()
	} else {
		r.content = nil
	}
	r.decoded = 0
	r.history = r.history[:0]
	r.wordLen = 0
	r.state = stateBlockHeader
}

// finishFrame closes out a completed frame: it fires the content length
// warning if the declaration was wrong, then rearms for the next frame.
func (r *Reader) finishFrame(nw, nr int) (int, int, int, error) {
	if r.desc.HasContentSize && r.decoded != r.desc.ContentSize && r.warn != nil {
		r.warn(r.desc.ContentSize, r.decoded)
	}
	r.hasInfo = false
	r.hdrLen = 0
	r.wordLen = 0
	r.content = nil
	r.state = stateHeader
	return nw, nr, 0, nil
}

// endBlock verifies and decodes a fully accumulated block into the out
// staging buffer and folds it into the frame's running checksum, byte
// count and history window.
func (r *Reader) endBlock() error {
	payload := r.body[:r.blockLen]
	if r.desc.BlockChecksum {
		want := binary.LittleEndian.Uint32(r.body[r.blockLen:r.bodyNeed])
		if !r.sum.Verify(payload, want) {
			return lz4errors.NewError(lz4errors.CodeBlockChecksumInvalid)
		}
	}

	if r.stored {
		r.out = append(r.out[:0], payload...)
	} else {
		var dict []byte
		if r.desc.Linked {
			dict = r.history
		}
		n, err := r.codec.Decompress(payload, r.out[:r.blockSize], dict)
		if err != nil {
			return lz4errors.WrapError(lz4errors.CodeDecompressionFailed, err)
		}
		r.out = r.out[:n]
	}
	r.outPos = 0

	if r.content != nil {
		r.content.Write(r.out)
	}
	r.decoded += uint64(len(r.out))
	if r.desc.Linked {
		r.pushHistory(r.out)
	}
	return nil
}

// pushHistory folds a decoded block into the linked-mode window,
// keeping at least the last MaxLinkedDistance bytes of frame output
// within a bounded buffer.
func (r *Reader) pushHistory(b []byte) {
	const max = domain.MaxLinkedDistance
	if len(b) >= max {
		r.history = append(r.history[:0], b[len(b)-max:]...)
		return
	}
	if cap(r.history) == 0 {
		r.history = make([]byte, 0, 2*max)
	}
	if len(r.history)+len(b) > cap(r.history) {
		keep := max - len(b)
		copy(r.history, r.history[len(r.history)-keep:])
		r.history = r.history[:keep]
	}
	r.history = append(r.history, b...)
}

// acquire readies pooled staging for the given block size class,
// swapping buffers when a new frame changes class.
func (r *Reader) acquire(id domain.BlockSizeID) {
	if r.body != nil && id != r.poolID {
		r.Release()
	}
	if r.body == nil {
		r.body = getStaging(id)
		r.out = getStaging(id)
		r.poolID = id
	}
	r.body = r.body[:0]
	r.out = r.out[:0]
	r.outPos = 0
}

// hint reports how many input bytes the reader expects before it can
// make the next state transition, anticipating the following block's
// size word when a block is mid-accumulation. It is zero only when a
// frame just completed, which finishFrame reports directly.
func (r *Reader) hint() int {
	switch r.state {
	case stateHeader:
		if r.hdrLen <= domain.MagicSize {
			return domain.HeaderSizeMin - r.hdrLen
		}
		return headerLength(r.hdr[domain.MagicSize]) - r.hdrLen
	case stateSkipLen:
		return len(r.word) - r.wordLen
	case stateSkip:
		return r.skipLeft + domain.HeaderSizeMin
	case stateBlockHeader:
		return domain.BlockHeaderSize - r.wordLen
	case stateBlockBody:
		return r.bodyNeed - len(r.body) + domain.BlockHeaderSize
	case stateTrailer:
		return domain.ChecksumSize - r.wordLen
	}
	return 0
}
