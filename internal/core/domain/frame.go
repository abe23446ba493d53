package domain

import "fmt"

const (
	// FrameMagic starts every regular frame, serialized little-endian.
	FrameMagic uint32 = 0x184D2204

	// SkippableMagicStart is the first of the sixteen magic numbers
	// (0x184D2A50..0x184D2A5F) that introduce a skippable frame: four
	// magic bytes, a 4-byte little-endian length, then that many bytes
	// of opaque user data.
	SkippableMagicStart uint32 = 0x184D2A50

	// SkippableMagicMask masks off the low nibble when testing for the
	// skippable magic range.
	SkippableMagicMask uint32 = 0xFFFFFFF0

	// MagicSize is the byte length of a frame magic number.
	MagicSize = 4

	// HeaderSizeMin is the smallest complete frame header: magic, FLG,
	// BD and the header checksum byte.
	HeaderSizeMin = MagicSize + 3

	// HeaderSizeMaxWrite bounds headers this library produces: magic,
	// FLG, BD, 8-byte content length and the checksum byte. A dictionary
	// id is never written.
	HeaderSizeMaxWrite = MagicSize + 2 + 8 + 1

	// HeaderSizeMax bounds headers accepted on read, where both a
	// content length and a 4-byte dictionary id may be present.
	HeaderSizeMax = MagicSize + 2 + 8 + 4 + 1

	// BlockHeaderSize is the byte length of the per-block size word and
	// of the end mark.
	BlockHeaderSize = 4

	// ChecksumSize is the byte length of every checksum on the wire:
	// per-block checksums and the frame's content checksum trailer.
	ChecksumSize = 4

	// UncompressedFlag is set on a block size word when the payload is
	// stored raw because compression would not have shrunk it.
	UncompressedFlag uint32 = 1 << 31

	// MaxLinkedDistance is the history window, in bytes, that linked
	// blocks may reference into previously decoded output.
	MaxLinkedDistance = 64 << 10

	// MinCompressionLevel and MaxCompressionLevel bound the accepted
	// compression levels. Levels 0-2 select the fast compressor, 3 and
	// above the high-compression one.
	MinCompressionLevel = 0
	MaxCompressionLevel = 16

	// HighCompressionMin is the first level handled by the
	// high-compression path.
	HighCompressionMin = 3

	// Frame descriptor FLG byte layout.
	FlagVersionShift    = 6
	FlagVersion         = 1 // Supported frame format version (bits 7-6 == 01).
	FlagBlockIndep      = 1 << 5
	FlagBlockChecksum   = 1 << 4
	FlagContentSize     = 1 << 3
	FlagContentChecksum = 1 << 2
	FlagReserved        = 1 << 1
	FlagDictID          = 1 << 0

	// Frame descriptor BD byte layout.
	BDBlockSizeShift = 4
	BDReservedMask   = 0x8F // All BD bits outside the block size id must be zero.
)

// BlockSizeID selects the maximum decoded size of a single block within
// a frame. Only the four wire values 4-7 ever appear in a descriptor;
// BlockSizeDefault exists at the API level and aliases the 64 KiB class.
type BlockSizeID uint8

const (
	BlockSizeDefault BlockSizeID = 0
	BlockSize64KB    BlockSizeID = 4
	BlockSize256KB   BlockSizeID = 5
	BlockSize1MB     BlockSizeID = 6
	BlockSize4MB     BlockSizeID = 7
)

// blockSizes maps table indexes (id - 4) to byte sizes.
var blockSizes = [4]int{64 << 10, 256 << 10, 1 << 20, 4 << 20}

// Valid reports whether the id is one of the supported identifiers,
// including the default alias.
func (id BlockSizeID) Valid() bool {
	return id == BlockSizeDefault || (id >= BlockSize64KB && id <= BlockSize4MB)
}

// Index returns the block size table index in [0,3]. The default alias
// maps to the 64 KiB slot. Callers must have validated the id.
func (id BlockSizeID) Index() int {
	if id == BlockSizeDefault {
		return 0
	}
	return int(id - BlockSize64KB)
}

// Bytes returns the maximum decoded block size for the id, or 0 when the
// id is not valid.
func (id BlockSizeID) Bytes() int {
	if !id.Valid() {
		return 0
	}
	return blockSizes[id.Index()]
}

func (id BlockSizeID) String() string {
	switch id {
	case BlockSizeDefault:
		return "default(64KB)"
	case BlockSize64KB:
		return "64KB"
	case BlockSize256KB:
		return "256KB"
	case BlockSize1MB:
		return "1MB"
	case BlockSize4MB:
		return "4MB"
	default:
		return fmt.Sprintf("invalid(%d)", uint8(id))
	}
}

// Descriptor is the wire-facing description of a single frame: what the
// header builder serializes and the header parser recovers. It carries
// no codec state.
type Descriptor struct {
	// BlockSizeID is the frame's block size class. On the wire this is
	// always one of the four concrete values; the default alias is
	// resolved before a descriptor is built.
	BlockSizeID BlockSizeID

	// Linked marks blocks as allowed to reference up to 64 KiB of
	// previously decoded frame output. Independent frames decode each
	// block in isolation.
	Linked bool

	// ContentChecksum enables the 4-byte whole-frame checksum trailer
	// after the end mark.
	ContentChecksum bool

	// BlockChecksum enables a 4-byte checksum after every block payload.
	BlockChecksum bool

	// ContentSize, when non-zero, is the exact decoded length the frame
	// declares in its header.
	ContentSize uint64

	// HasContentSize distinguishes "declared as zero bytes" from "not
	// declared"; only parsed frames set it independently of ContentSize.
	HasContentSize bool

	// DictID is the dictionary identifier a parsed header carried, or 0.
	// This library never writes one.
	DictID uint32
}

// BlockSize returns the frame's maximum decoded block size in bytes.
func (d *Descriptor) BlockSize() int {
	return d.BlockSizeID.Bytes()
}
