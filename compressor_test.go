package lz4framed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// encodeChunked drives a Compressor over data split into chunkSize
// pieces and returns the concatenated frame.
func encodeChunked(t *testing.T, c *Compressor, data []byte, chunkSize int, opts ...Option) []byte {
	t.Helper()
	stream, err := c.Begin(opts...)
	require.NoError(t, err)

	for off := 0; off < len(data); off += chunkSize {
		end := off + chunkSize
		if end > len(data) {
			end = len(data)
		}
		part, err := c.Update(data[off:end])
		require.NoError(t, err)
		stream = append(stream, part...)
	}

	part, err := c.End()
	require.NoError(t, err)
	return append(stream, part...)
}

// TestCompressorMatchesOneShot verifies that block boundaries depend
// only on the input, not on how it is sliced: every chunking yields the
// byte-identical frame the one-shot path produces.
func TestCompressorMatchesOneShot(t *testing.T) {
	data := textPayload(150 << 10)
	opts := []Option{WithContentSize(uint64(len(data))), WithContentChecksum(true)}

	want, err := Compress(data, WithContentChecksum(true))
	require.NoError(t, err)

	c := NewCompressor()
	defer c.Close()

	for _, chunkSize := range []int{1, 7, 1000, 64 << 10, len(data)} {
		stream := encodeChunked(t, c, data, chunkSize, opts...)
		assert.Equal(t, want, stream, "chunk size %d", chunkSize)
	}
}

func TestCompressorUpdateBuffersShortInput(t *testing.T) {
	c := NewCompressor()
	defer c.Close()

	_, err := c.Begin()
	require.NoError(t, err)

	// Far below a block, Update emits nothing yet.
	part, err := c.Update([]byte("buffered"))
	require.NoError(t, err)
	assert.Empty(t, part)

	part, err = c.End()
	require.NoError(t, err)
	assert.NotEmpty(t, part, "End emits the buffered input and the end mark")
}

func TestCompressorAutoFlush(t *testing.T) {
	data := textPayload(5 << 10)

	c := NewCompressor()
	defer c.Close()

	stream, err := c.Begin(WithAutoFlush(true))
	require.NoError(t, err)

	for off := 0; off < len(data); off += 512 {
		part, err := c.Update(data[off : off+512])
		require.NoError(t, err)
		assert.NotEmpty(t, part, "auto flush emits every update")
		stream = append(stream, part...)
	}
	part, err := c.End()
	require.NoError(t, err)
	stream = append(stream, part...)

	out, err := Decompress(stream)
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestCompressorFlushMidFrame(t *testing.T) {
	c := NewCompressor()
	defer c.Close()

	stream, err := c.Begin(WithContentChecksum(true))
	require.NoError(t, err)

	part, err := c.Update([]byte("first"))
	require.NoError(t, err)
	stream = append(stream, part...)

	part, err = c.Flush()
	require.NoError(t, err)
	assert.NotEmpty(t, part)
	stream = append(stream, part...)

	// Flushing again with nothing buffered emits nothing.
	part, err = c.Flush()
	require.NoError(t, err)
	assert.Empty(t, part)

	part, err = c.Update([]byte(" second"))
	require.NoError(t, err)
	stream = append(stream, part...)
	part, err = c.End()
	require.NoError(t, err)
	stream = append(stream, part...)

	out, err := Decompress(stream)
	require.NoError(t, err)
	assert.Equal(t, []byte("first second"), out)
}

func TestCompressorDeclaredContentSize(t *testing.T) {
	t.Run("honored", func(t *testing.T) {
		c := NewCompressor()
		defer c.Close()

		stream := encodeChunked(t, c, []byte("exactly twenty bytes"), 6, WithContentSize(20))
		out, err := Decompress(stream)
		require.NoError(t, err)
		assert.Equal(t, []byte("exactly twenty bytes"), out)
	})

	t.Run("violated", func(t *testing.T) {
		c := NewCompressor()
		defer c.Close()

		_, err := c.Begin(WithContentSize(20))
		require.NoError(t, err)
		_, err = c.Update([]byte("too short"))
		require.NoError(t, err)

		_, err = c.End()
		requireCodecError(t, err, CodeFrameSizeWrong)

		// The frame is abandoned; the context starts the next one clean.
		stream := encodeChunked(t, c, []byte("recovered"), 3)
		out, err := Decompress(stream)
		require.NoError(t, err)
		assert.Equal(t, []byte("recovered"), out)
	})
}

func TestCompressorFrameSequence(t *testing.T) {
	first := textPayload(70 << 10)
	second := noisePayload(10 << 10)

	c := NewCompressor()
	defer c.Close()

	stream := encodeChunked(t, c, first, 4<<10, WithBlockSizeID(BlockSize64KB), WithLinkedBlocks(true))
	stream = append(stream, encodeChunked(t, c, second, 4<<10, WithBlockSizeID(BlockSize1MB), WithBlockChecksum(true))...)

	d, err := NewDecompressor()
	require.NoError(t, err)
	defer d.Close()

	chunks, hint, err := d.Update(stream, 0)
	require.NoError(t, err)
	assert.Zero(t, hint, "first frame boundary")
	assert.Equal(t, first, flatten(chunks))

	chunks, hint, err = d.Update(nil, 0)
	require.NoError(t, err)
	assert.Zero(t, hint, "second frame boundary")
	assert.Equal(t, second, flatten(chunks))
	assert.Zero(t, d.Buffered())
}

func TestCompressorLifecycle(t *testing.T) {
	c := NewCompressor()

	t.Run("operations outside a frame", func(t *testing.T) {
		_, err := c.Update([]byte("x"))
		assert.ErrorIs(t, err, ErrInvalidContext)
		_, err = c.Flush()
		assert.ErrorIs(t, err, ErrInvalidContext)
		_, err = c.End()
		assert.ErrorIs(t, err, ErrInvalidContext)
	})

	t.Run("begin inside a frame", func(t *testing.T) {
		_, err := c.Begin()
		require.NoError(t, err)
		_, err = c.Begin()
		assert.ErrorIs(t, err, ErrInvalidContext)
		_, err = c.End()
		require.NoError(t, err)
	})

	t.Run("empty update", func(t *testing.T) {
		_, err := c.Begin()
		require.NoError(t, err)
		_, err = c.Update(nil)
		assert.ErrorIs(t, err, ErrInputEmpty)
		_, err = c.End()
		require.NoError(t, err)
	})

	t.Run("rejected options leave the context idle", func(t *testing.T) {
		_, err := c.Begin(WithCompressionLevel(99))
		assert.ErrorIs(t, err, ErrInvalidOption)
		_, err = c.Begin()
		require.NoError(t, err)
		_, err = c.End()
		require.NoError(t, err)
	})

	t.Run("closed", func(t *testing.T) {
		require.NoError(t, c.Close())
		_, err := c.Begin()
		assert.ErrorIs(t, err, ErrInvalidContext)
		_, err = c.Update([]byte("x"))
		assert.ErrorIs(t, err, ErrInvalidContext)
		require.NoError(t, c.Close(), "closing twice is fine")
	})
}
