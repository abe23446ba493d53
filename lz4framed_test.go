package lz4framed

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamNilotpal/lz4framed/internal/core/domain"
)

// textPayload returns n bytes of repetitive text the codec can shrink.
func textPayload(n int) []byte {
	pattern := []byte("the quick brown fox jumps over the lazy dog, again and again. ")
	return bytes.Repeat(pattern, n/len(pattern)+1)[:n]
}

// noisePayload returns n pseudo random bytes the codec stores raw.
func noisePayload(n int) []byte {
	rng := rand.New(rand.NewSource(1))
	data := make([]byte, n)
	rng.Read(data)
	return data
}

// skippable builds a skippable frame with the given magic nibble.
func skippable(nibble uint32, payload []byte) []byte {
	b := binary.LittleEndian.AppendUint32(nil, domain.SkippableMagicStart|nibble)
	b = binary.LittleEndian.AppendUint32(b, uint32(len(payload)))
	return append(b, payload...)
}

// patchDeclaredSize rewrites the declared content length of a frame
// produced by Compress and fixes up the header checksum byte.
func patchDeclaredSize(t *testing.T, frame []byte, declared uint64) {
	t.Helper()
	require.GreaterOrEqual(t, len(frame), domain.HeaderSizeMaxWrite)
	require.NotZero(t, frame[4]&domain.FlagContentSize, "frame does not declare a content length")
	binary.LittleEndian.PutUint64(frame[6:14], declared)
	frame[14] = byte(frameChecksum.Checksum(frame[4:14]) >> 8)
}

func requireCodecError(t *testing.T, err error, code ErrorCode) {
	t.Helper()
	require.Error(t, err)
	ce := AsCodecError(err)
	require.NotNil(t, ce, "want a codec error, got %v", err)
	assert.Equal(t, code, ce.Code)
}

func TestCompressDecompressRoundTrip(t *testing.T) {
	payloads := []struct {
		name string
		data []byte
	}{
		{"one byte", []byte{0x42}},
		{"short text", []byte("hello, frame")},
		{"text", textPayload(10 << 10)},
		{"zeros", make([]byte, 200 << 10)},
		{"noise", noisePayload(100 << 10)},
		{"several blocks", textPayload(300 << 10)},
	}
	variants := []struct {
		name string
		opts []Option
	}{
		{"defaults", nil},
		{"independent", []Option{WithLinkedBlocks(false)}},
		{"all checksums", []Option{WithContentChecksum(true), WithBlockChecksum(true)}},
		{"256KB high", []Option{WithBlockSizeID(BlockSize256KB), WithCompressionLevel(9)}},
		{"1MB", []Option{WithBlockSizeID(BlockSize1MB), WithContentChecksum(true)}},
		{"4MB max level", []Option{WithBlockSizeID(BlockSize4MB), WithCompressionLevel(MaxCompressionLevel)}},
	}

	for _, p := range payloads {
		for _, v := range variants {
			t.Run(p.name+"/"+v.name, func(t *testing.T) {
				frame, err := Compress(p.data, v.opts...)
				require.NoError(t, err)
				require.LessOrEqual(t, len(frame), CompressFrameBound(len(p.data), nil))

				out, err := Decompress(frame)
				require.NoError(t, err)
				assert.Equal(t, p.data, out)
			})
		}
	}
}

// TestCompressKnownFrame pins the exact bytes of a minimal frame so the
// wire format cannot drift: header with declared length, one stored
// block, end mark.
func TestCompressKnownFrame(t *testing.T) {
	frame, err := Compress([]byte("abc"))
	require.NoError(t, err)
	require.Len(t, frame, 26)

	assert.Equal(t, domain.FrameMagic, binary.LittleEndian.Uint32(frame[0:4]))

	// Version 01, content length declared, linked blocks (independence
	// bit clear), no checksums.
	assert.Equal(t, byte(0x48), frame[4])
	// 64 KiB block size class.
	assert.Equal(t, byte(0x40), frame[5])
	assert.Equal(t, uint64(3), binary.LittleEndian.Uint64(frame[6:14]))
	assert.Equal(t, byte(frameChecksum.Checksum(frame[4:14])>>8), frame[14])

	// Three bytes do not compress: stored block with the high bit set.
	assert.Equal(t, uint32(3)|domain.UncompressedFlag, binary.LittleEndian.Uint32(frame[15:19]))
	assert.Equal(t, []byte("abc"), frame[19:22])
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(frame[22:26]))
}

func TestCompressValidation(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		_, err := Compress(nil)
		require.Error(t, err)
		assert.True(t, IsValidationError(err))
		assert.ErrorIs(t, err, ErrInputEmpty)

		_, err = Compress([]byte{})
		assert.ErrorIs(t, err, ErrInputEmpty)
	})

	t.Run("level out of range", func(t *testing.T) {
		for _, level := range []int{-1, MaxCompressionLevel + 1, 100} {
			_, err := Compress([]byte("x"), WithCompressionLevel(level))
			require.Error(t, err, "level %d", level)
			assert.ErrorIs(t, err, ErrInvalidOption)
			ve := AsValidationError(err)
			require.NotNil(t, ve)
			assert.Equal(t, "level", ve.Field)
		}
	})

	t.Run("unknown block size id", func(t *testing.T) {
		for _, id := range []BlockSizeID{1, 3, 8, 255} {
			_, err := Compress([]byte("x"), WithBlockSizeID(id))
			require.Error(t, err, "id %d", id)
			assert.ErrorIs(t, err, ErrInvalidOption)
			ve := AsValidationError(err)
			require.NotNil(t, ve)
			assert.Equal(t, "block_size_id", ve.Field)
		}
	})
}

func TestDecompressValidation(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		_, err := Decompress(nil)
		assert.ErrorIs(t, err, ErrInputEmpty)
	})

	t.Run("buffer size out of range", func(t *testing.T) {
		frame, err := Compress([]byte("x"))
		require.NoError(t, err)
		for _, size := range []int{0, -1} {
			_, err := Decompress(frame, WithInitialBufferSize(size))
			require.Error(t, err, "size %d", size)
			assert.ErrorIs(t, err, ErrInvalidOption)
		}
	})
}

func TestDecompressHeaderErrors(t *testing.T) {
	valid, err := Compress([]byte("abc"))
	require.NoError(t, err)

	damage := func(mutate func([]byte)) []byte {
		frame := append([]byte{}, valid...)
		mutate(frame)
		return frame
	}

	t.Run("unknown magic", func(t *testing.T) {
		_, err := Decompress([]byte("definitely not a frame"))
		requireCodecError(t, err, CodeFrameTypeUnknown)
	})

	t.Run("header cut short", func(t *testing.T) {
		for _, n := range []int{1, 4, 6, 14} {
			_, err := Decompress(valid[:n])
			require.Error(t, err, "%d header bytes", n)
			assert.ErrorIs(t, err, ErrHeaderIncomplete)
		}
	})

	t.Run("checksum byte wrong", func(t *testing.T) {
		_, err := Decompress(damage(func(f []byte) { f[14] ^= 0xFF }))
		requireCodecError(t, err, CodeHeaderChecksumInvalid)
	})

	t.Run("descriptor bit flipped", func(t *testing.T) {
		_, err := Decompress(damage(func(f []byte) { f[4] ^= domain.FlagBlockChecksum }))
		requireCodecError(t, err, CodeHeaderChecksumInvalid)
	})

	t.Run("reserved flag set", func(t *testing.T) {
		_, err := Decompress(damage(func(f []byte) {
			f[4] |= domain.FlagReserved
			f[14] = byte(frameChecksum.Checksum(f[4:14]) >> 8)
		}))
		requireCodecError(t, err, CodeReservedFlagSet)
	})

	t.Run("version wrong", func(t *testing.T) {
		_, err := Decompress(damage(func(f []byte) {
			f[4] = f[4]&^0xC0 | 0x80
			f[14] = byte(frameChecksum.Checksum(f[4:14]) >> 8)
		}))
		requireCodecError(t, err, CodeHeaderVersionWrong)
	})
}

func TestDecompressTruncatedBody(t *testing.T) {
	t.Run("declared length", func(t *testing.T) {
		frame, err := Compress(textPayload(10 << 10))
		require.NoError(t, err)

		for _, drop := range []int{1, 4, len(frame) - 16} {
			_, err := Decompress(frame[:len(frame)-drop])
			requireCodecError(t, err, CodeFrameSizeWrong)
		}
	})

	t.Run("undeclared length", func(t *testing.T) {
		c := NewCompressor()
		defer c.Close()

		stream, err := c.Begin()
		require.NoError(t, err)
		part, err := c.Update(textPayload(10 << 10))
		require.NoError(t, err)
		stream = append(stream, part...)
		part, err = c.End()
		require.NoError(t, err)
		stream = append(stream, part...)

		_, err = Decompress(stream[:len(stream)-2])
		requireCodecError(t, err, CodeFrameSizeWrong)
	})
}

func TestDecompressCorruptBody(t *testing.T) {
	data := textPayload(20 << 10)

	t.Run("block checksum", func(t *testing.T) {
		frame, err := Compress(data, WithBlockChecksum(true))
		require.NoError(t, err)
		frame[domain.HeaderSizeMaxWrite+domain.BlockHeaderSize+1] ^= 0xFF

		_, err = Decompress(frame)
		requireCodecError(t, err, CodeBlockChecksumInvalid)
	})

	t.Run("content checksum", func(t *testing.T) {
		frame, err := Compress(data, WithContentChecksum(true))
		require.NoError(t, err)
		frame[len(frame)-1] ^= 0xFF

		_, err = Decompress(frame)
		requireCodecError(t, err, CodeContentChecksumInvalid)
	})

	t.Run("block payload without checksums", func(t *testing.T) {
		frame, err := Compress(data)
		require.NoError(t, err)
		// Rewrite the first sequence into a match at offset zero, which no
		// block decoder accepts; only the decoder itself can notice.
		payload := frame[domain.HeaderSizeMaxWrite+domain.BlockHeaderSize:]
		payload[0] = 0x04
		payload[1] = 0x00
		payload[2] = 0x00

		_, err = Decompress(frame)
		requireCodecError(t, err, CodeDecompressionFailed)
	})
}

func TestDecompressSkippableFrames(t *testing.T) {
	data := []byte("payload behind the skippables")
	frame, err := Compress(data)
	require.NoError(t, err)

	t.Run("before the frame", func(t *testing.T) {
		input := append(skippable(0x5, []byte("ignore me")), frame...)
		out, err := Decompress(input)
		require.NoError(t, err)
		assert.Equal(t, data, out)
	})

	t.Run("alone", func(t *testing.T) {
		out, err := Decompress(skippable(0x0, []byte("only metadata")))
		require.NoError(t, err)
		assert.NotNil(t, out)
		assert.Empty(t, out)
	})

	t.Run("cut short", func(t *testing.T) {
		_, err := Decompress(skippable(0x0, []byte("only metadata"))[:6])
		assert.ErrorIs(t, err, ErrHeaderIncomplete)
	})
}

func TestDecompressStopsAfterFirstFrame(t *testing.T) {
	first, err := Compress([]byte("first frame"))
	require.NoError(t, err)
	second, err := Compress([]byte("second frame"))
	require.NoError(t, err)

	out, err := Decompress(append(append([]byte{}, first...), second...))
	require.NoError(t, err)
	assert.Equal(t, []byte("first frame"), out)
}

func TestDecompressDeclaredLengthMismatch(t *testing.T) {
	data := []byte("abc")

	t.Run("declared too large", func(t *testing.T) {
		frame, err := Compress(data)
		require.NoError(t, err)
		patchDeclaredSize(t, frame, 5)

		var warnings []*IntegrityWarning
		out, err := Decompress(frame, WithWarningHandler(func(w *IntegrityWarning) {
			warnings = append(warnings, w)
		}))
		require.NoError(t, err)
		assert.Equal(t, data, out)
		require.Len(t, warnings, 1)
		assert.Equal(t, uint64(5), warnings[0].Declared)
		assert.Equal(t, uint64(3), warnings[0].Decoded)
	})

	t.Run("declared too small", func(t *testing.T) {
		frame, err := Compress(data)
		require.NoError(t, err)
		patchDeclaredSize(t, frame, 1)

		var warnings []*IntegrityWarning
		out, err := Decompress(frame, WithWarningHandler(func(w *IntegrityWarning) {
			warnings = append(warnings, w)
		}))
		require.NoError(t, err)
		assert.Equal(t, data, out, "decoding continues past the declaration")
		require.Len(t, warnings, 1)
		assert.Equal(t, uint64(1), warnings[0].Declared)
		assert.Equal(t, uint64(3), warnings[0].Decoded)
	})

	t.Run("declared length beyond addressable memory", func(t *testing.T) {
		frame, err := Compress(data)
		require.NoError(t, err)
		patchDeclaredSize(t, frame, 1<<63)

		_, err = Decompress(frame)
		requireCodecError(t, err, CodeAllocationFailed)
	})

	t.Run("accurate declaration stays silent", func(t *testing.T) {
		frame, err := Compress(data)
		require.NoError(t, err)

		called := false
		_, err = Decompress(frame, WithWarningHandler(func(*IntegrityWarning) { called = true }))
		require.NoError(t, err)
		assert.False(t, called)
	})
}

func TestDecompressGrowsUndeclaredOutput(t *testing.T) {
	data := textPayload(50 << 10)

	c := NewCompressor()
	defer c.Close()
	stream, err := c.Begin()
	require.NoError(t, err)
	part, err := c.Update(data)
	require.NoError(t, err)
	stream = append(stream, part...)
	part, err = c.End()
	require.NoError(t, err)
	stream = append(stream, part...)

	// Force the smallest possible starting buffer; the doubling path has
	// to do all the work.
	out, err := Decompress(stream, WithInitialBufferSize(1))
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestGetBlockSize(t *testing.T) {
	sizes := map[BlockSizeID]int{
		BlockSizeDefault: 64 << 10,
		BlockSize64KB:    64 << 10,
		BlockSize256KB:   256 << 10,
		BlockSize1MB:     1 << 20,
		BlockSize4MB:     4 << 20,
	}
	for id, want := range sizes {
		got, err := GetBlockSize(id)
		require.NoError(t, err, "id %s", id)
		assert.Equal(t, want, got)
	}

	for _, id := range []BlockSizeID{1, 3, 8} {
		_, err := GetBlockSize(id)
		require.Error(t, err, "id %d", id)
		assert.ErrorIs(t, err, ErrInvalidOption)
	}
}

func TestCompressFrameBound(t *testing.T) {
	prefs := DefaultPreferences()
	prefs.BlockChecksum = true
	prefs.ContentChecksum = true

	for _, n := range []int{-5, 0, 1, 100, 64 << 10, 5 << 20} {
		bound := CompressFrameBound(n, prefs)
		assert.GreaterOrEqual(t, bound, domain.HeaderSizeMaxWrite+domain.BlockHeaderSize, "n %d", n)
		if n > 0 {
			assert.Greater(t, bound, n, "n %d", n)
		}
	}

	// The bound must hold for real frames, whatever the content.
	for _, data := range [][]byte{textPayload(128 << 10), noisePayload(128 << 10)} {
		frame, err := Compress(data, WithBlockChecksum(true), WithContentChecksum(true))
		require.NoError(t, err)
		assert.LessOrEqual(t, len(frame), CompressFrameBound(len(data), prefs))
	}
}

func TestErrorsSurviveWrapping(t *testing.T) {
	_, err := Decompress([]byte("definitely not a frame"))
	require.Error(t, err)

	wrapped := errors.Join(errors.New("outer"), err)
	assert.True(t, IsCodecError(wrapped))

	ce := AsCodecError(wrapped)
	require.NotNil(t, ce)
	assert.Equal(t, CodeFrameTypeUnknown, ce.Code)
}
