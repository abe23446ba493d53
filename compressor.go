package lz4framed

import (
	"github.com/iamNilotpal/lz4framed/internal/core/domain"
	"github.com/iamNilotpal/lz4framed/internal/core/services/frame"
	lz4errors "github.com/iamNilotpal/lz4framed/pkg/errors"
)

// Compressor is an explicit compression context that builds frames
// incrementally: Begin opens a frame and returns its header, Update
// turns input into blocks as it accumulates, End closes the frame.
// After End the context is idle again and Begin starts the next frame,
// reusing internal buffers.
//
// The caller owns every returned slice and is responsible for
// concatenating them, in order, into the encoded stream. A Compressor
// is not safe for concurrent use.
type Compressor struct {
	writer *frame.Writer
	active bool
	closed bool
}

// NewCompressor creates an idle compression context. Call Begin to
// start a frame and Close when the context is no longer needed.
func NewCompressor() *Compressor {
	return &Compressor{writer: frame.NewWriter(frameChecksum)}
}

// Begin starts a new frame under the given options and returns the
// serialized frame header.
//
// Returns an error if:
//   - The context is closed or already inside a frame.
//   - An option value is outside its supported range.
func (c *Compressor) Begin(opts ...Option) ([]byte, error) {
	if c.closed || c.active {
		return nil, errInvalidContext()
	}

	prefs := DefaultPreferences()
	for _, opt := range opts {
		opt(prefs)
	}
	if err := validatePreferences(prefs); err != nil {
		return nil, err
	}
	codec, err := newCodec(prefs.Level)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, domain.HeaderSizeMaxWrite)
	out = c.writer.Begin(out, prefs.descriptor(), codec, prefs.AutoFlush)
	c.active = true
	return out, nil
}

// Update feeds data into the current frame and returns the encoded
// bytes it produced, which may be empty while input is buffered toward
// a full block. With auto flush enabled the input is always emitted
// before Update returns.
//
// Returns an error if:
//   - The context is closed or no frame is in progress.
//   - data is empty.
func (c *Compressor) Update(data []byte) ([]byte, error) {
	if err := c.inFrame(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, lz4errors.NewValidationError("data", len(data), lz4errors.ErrInputEmpty)
	}

	out := make([]byte, 0, c.writer.Bound(len(data)))
	out, err := c.writer.Update(out, data)
	if err != nil {
		c.active = false
		return nil, err
	}
	return out, nil
}

// Flush emits any input buffered toward a partial block as a short
// block, making everything fed so far decodable. The frame stays open.
//
// Returns an error if the context is closed or no frame is in progress.
func (c *Compressor) Flush() ([]byte, error) {
	if err := c.inFrame(); err != nil {
		return nil, err
	}

	out := make([]byte, 0, c.writer.Bound(0))
	out, err := c.writer.Flush(out)
	if err != nil {
		c.active = false
		return nil, err
	}
	return out, nil
}

// End closes the current frame and returns its trailing bytes: any
// buffered input as a final block, the end mark, and the content
// checksum when enabled. The context is idle afterwards and Begin may
// start another frame.
//
// Returns an error if:
//   - The context is closed or no frame is in progress.
//   - The frame declared a content length the fed input did not match
//     (CodeFrameSizeWrong). The frame is abandoned; Begin starts fresh.
func (c *Compressor) End() ([]byte, error) {
	if err := c.inFrame(); err != nil {
		return nil, err
	}

	out := make([]byte, 0, c.writer.Bound(0))
	out, err := c.writer.End(out)
	c.active = false
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Close releases the context's pooled buffers. A closed context rejects
// all further operations; Close itself is idempotent.
func (c *Compressor) Close() error {
	if c.closed {
		return nil
	}
	c.writer.Release()
	c.active = false
	c.closed = true
	return nil
}

// inFrame verifies the context is usable and inside a frame.
func (c *Compressor) inFrame() error {
	if c.closed || !c.active {
		return errInvalidContext()
	}
	return nil
}

// errInvalidContext builds the rejection shared by every operation on a
// context in the wrong lifecycle state.
func errInvalidContext() error {
	return lz4errors.NewValidationError("ctx", nil, lz4errors.ErrInvalidContext)
}
