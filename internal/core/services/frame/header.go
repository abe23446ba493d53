package frame

import (
	"encoding/binary"

	"github.com/iamNilotpal/lz4framed/internal/core/domain"
	"github.com/iamNilotpal/lz4framed/internal/core/ports"
	lz4errors "github.com/iamNilotpal/lz4framed/pkg/errors"
)

// AppendHeader serializes a frame header for the descriptor and appends
// it to dst: magic number, FLG and BD bytes, the optional declared
// content length, and the header checksum byte. The descriptor's block
// size id must be one of the concrete wire values.
func AppendHeader(dst []byte, desc *domain.Descriptor, sum ports.Checksum) []byte {
	start := len(dst)
	dst = binary.LittleEndian.AppendUint32(dst, domain.FrameMagic)

	flg := byte(domain.FlagVersion << domain.FlagVersionShift)
	if !desc.Linked {
		flg |= domain.FlagBlockIndep
	}
	if desc.BlockChecksum {
		flg |= domain.FlagBlockChecksum
	}
	if desc.HasContentSize {
		flg |= domain.FlagContentSize
	}
	if desc.ContentChecksum {
		flg |= domain.FlagContentChecksum
	}
	dst = append(dst, flg, byte(desc.BlockSizeID)<<domain.BDBlockSizeShift)

	if desc.HasContentSize {
		dst = binary.LittleEndian.AppendUint64(dst, desc.ContentSize)
	}

	return append(dst, headerChecksum(sum, dst[start+domain.MagicSize:]))
}

// headerChecksum computes the one-byte checksum covering the descriptor
// bytes between the magic number and the checksum byte itself: the
// second byte of the 32-bit checksum, per the frame format.
func headerChecksum(sum ports.Checksum, descriptor []byte) byte {
	return byte(sum.Checksum(descriptor) >> 8)
}

// headerLength returns the total header length implied by the FLG byte,
// magic number and checksum byte included.
func headerLength(flg byte) int {
	n := domain.HeaderSizeMin
	if flg&domain.FlagContentSize != 0 {
		n += 8
	}
	if flg&domain.FlagDictID != 0 {
		n += 4
	}
	return n
}

// parseDescriptor decodes and validates a complete frame header. hdr
// must hold exactly headerLength bytes starting at the magic number,
// which the caller has already verified.
//
// Returns a codec error when the header is malformed:
//   - the version bits are not the supported version,
//   - a reserved FLG or BD bit is set,
//   - the block size id is outside the supported table,
//   - the header checksum byte does not match.
func parseDescriptor(hdr []byte, sum ports.Checksum) (domain.Descriptor, error) {
	var desc domain.Descriptor

	flg := hdr[domain.MagicSize]
	bd := hdr[domain.MagicSize+1]

	if flg>>domain.FlagVersionShift != domain.FlagVersion {
		return desc, lz4errors.NewError(lz4errors.CodeHeaderVersionWrong)
	}
	if flg&domain.FlagReserved != 0 || bd&domain.BDReservedMask != 0 {
		return desc, lz4errors.NewError(lz4errors.CodeReservedFlagSet)
	}

	id := domain.BlockSizeID(bd >> domain.BDBlockSizeShift)
	if id < domain.BlockSize64KB || id > domain.BlockSize4MB {
		return desc, lz4errors.NewError(lz4errors.CodeMaxBlockSizeInvalid)
	}

	last := len(hdr) - 1
	if headerChecksum(sum, hdr[domain.MagicSize:last]) != hdr[last] {
		return desc, lz4errors.NewError(lz4errors.CodeHeaderChecksumInvalid)
	}

	desc.BlockSizeID = id
	desc.Linked = flg&domain.FlagBlockIndep == 0
	desc.BlockChecksum = flg&domain.FlagBlockChecksum != 0
	desc.ContentChecksum = flg&domain.FlagContentChecksum != 0

	pos := domain.MagicSize + 2
	if flg&domain.FlagContentSize != 0 {
		desc.ContentSize = binary.LittleEndian.Uint64(hdr[pos:])
		desc.HasContentSize = true
		pos += 8
	}
	if flg&domain.FlagDictID != 0 {
		desc.DictID = binary.LittleEndian.Uint32(hdr[pos:])
	}

	return desc, nil
}
