package errors

import (
	"errors"
	"fmt"
)

// Code identifies a frame-level codec failure. The numeric space mirrors
// the reference LZ4 frame library's error enum, so codes are stable and
// can be logged, persisted, or compared across process boundaries.
type Code int

const (
	// CodeGeneric is the catch-all for failures that carry no more
	// specific classification.
	CodeGeneric Code = iota + 1

	// CodeMaxBlockSizeInvalid indicates a block size identifier outside
	// the supported set, either in preferences or on the wire.
	CodeMaxBlockSizeInvalid

	// CodeBlockModeInvalid indicates an unsupported block mode value.
	CodeBlockModeInvalid

	// CodeContentChecksumFlagInvalid indicates an unsupported content
	// checksum flag value.
	CodeContentChecksumFlagInvalid

	// CodeCompressionLevelInvalid indicates a compression level outside
	// the supported range.
	CodeCompressionLevelInvalid

	// CodeHeaderVersionWrong indicates a frame descriptor whose version
	// bits are not the supported version.
	CodeHeaderVersionWrong

	// CodeBlockChecksumInvalid indicates a per-block checksum that does
	// not match the block's payload.
	CodeBlockChecksumInvalid

	// CodeReservedFlagSet indicates a frame descriptor with reserved
	// bits set.
	CodeReservedFlagSet

	// CodeAllocationFailed indicates an output buffer could not be
	// allocated, e.g. because a frame declares an absurd content length.
	CodeAllocationFailed

	// CodeSrcSizeTooLarge indicates a source buffer beyond the supported
	// size.
	CodeSrcSizeTooLarge

	// CodeDstMaxSizeTooSmall indicates a destination buffer too small
	// for the operation.
	CodeDstMaxSizeTooSmall

	// CodeFrameHeaderIncomplete indicates that too few bytes were
	// supplied to parse the frame header. This is a retry signal, not a
	// verdict on the stream: supply more bytes and parse again.
	CodeFrameHeaderIncomplete

	// CodeFrameTypeUnknown indicates bytes that do not start with a
	// known frame magic number.
	CodeFrameTypeUnknown

	// CodeFrameSizeWrong indicates a frame whose actual size disagrees
	// with its structure: a declared content length that the supplied
	// bytes do not honor, or input that ends before the frame does.
	CodeFrameSizeWrong

	// CodeSrcPtrWrong indicates an invalid source pointer. Unused in Go,
	// kept to preserve the numeric space.
	CodeSrcPtrWrong

	// CodeDecompressionFailed indicates a block that the codec could not
	// decode, typically corruption within a compressed payload.
	CodeDecompressionFailed

	// CodeHeaderChecksumInvalid indicates a frame descriptor whose
	// checksum byte does not match its content.
	CodeHeaderChecksumInvalid

	// CodeContentChecksumInvalid indicates a whole-frame content
	// checksum mismatch after all blocks decoded.
	CodeContentChecksumInvalid
)

// codeNames holds the native symbolic names, indexed by code.
var codeNames = [...]string{
	0:                              "OK_NoError",
	CodeGeneric:                    "ERROR_GENERIC",
	CodeMaxBlockSizeInvalid:        "ERROR_maxBlockSize_invalid",
	CodeBlockModeInvalid:           "ERROR_blockMode_invalid",
	CodeContentChecksumFlagInvalid: "ERROR_contentChecksumFlag_invalid",
	CodeCompressionLevelInvalid:    "ERROR_compressionLevel_invalid",
	CodeHeaderVersionWrong:         "ERROR_headerVersion_wrong",
	CodeBlockChecksumInvalid:       "ERROR_blockChecksum_invalid",
	CodeReservedFlagSet:            "ERROR_reservedFlag_set",
	CodeAllocationFailed:           "ERROR_allocation_failed",
	CodeSrcSizeTooLarge:            "ERROR_srcSize_tooLarge",
	CodeDstMaxSizeTooSmall:         "ERROR_dstMaxSize_tooSmall",
	CodeFrameHeaderIncomplete:      "ERROR_frameHeader_incomplete",
	CodeFrameTypeUnknown:           "ERROR_frameType_unknown",
	CodeFrameSizeWrong:             "ERROR_frameSize_wrong",
	CodeSrcPtrWrong:                "ERROR_srcPtr_wrong",
	CodeDecompressionFailed:        "ERROR_decompressionFailed",
	CodeHeaderChecksumInvalid:      "ERROR_headerChecksum_invalid",
	CodeContentChecksumInvalid:     "ERROR_contentChecksum_invalid",
}

// String returns the native symbolic name of the code. This is useful
// for logging, metrics, and error reporting.
func (c Code) String() string {
	if c > 0 && int(c) < len(codeNames) {
		return codeNames[c]
	}
	return "ERROR_unknown"
}

// Error is a frame codec failure. It pairs the stable numeric code with
// an optional underlying cause, e.g. the block codec's own error.
type Error struct {
	Cause error
	Code  Code
}

// NewError creates an Error for the given code.
func NewError(code Code) *Error {
	return &Error{Code: code}
}

// WrapError creates an Error for the given code wrapping an underlying
// cause.
func WrapError(code Code, cause error) *Error {
	return &Error{Code: code, Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("lz4framed: %s (%d): %v", e.Code, int(e.Code), e.Cause)
	}
	return fmt.Sprintf("lz4framed: %s (%d)", e.Code, int(e.Code))
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an Error with the same code. This lets
// callers match with errors.Is against the exported sentinel values
// without caring about the wrapped cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// IsCodecError checks if a given error is of type Error.
func IsCodecError(err error) bool {
	var ce *Error
	return errors.As(err, &ce)
}

// AsCodecError attempts to extract an Error from a given error.
func AsCodecError(err error) *Error {
	var ce *Error
	if errors.As(err, &ce) {
		return ce
	}
	return nil
}

// ErrHeaderIncomplete signals that more bytes are required before the
// frame header can be parsed. Callers should treat it as "feed more
// input", never as corruption.
var ErrHeaderIncomplete = NewError(CodeFrameHeaderIncomplete)

// IntegrityWarning reports a frame whose declared content length does
// not match the decoded byte count. It is advisory: decoding continues
// and the warning is delivered through the configured handler or logger,
// never as a returned error.
type IntegrityWarning struct {
	Declared uint64 // Content length the frame header declared.
	Decoded  uint64 // Bytes actually decoded when the mismatch was detected.
}

func (w *IntegrityWarning) Error() string {
	return fmt.Sprintf("lz4framed: content length mismatch: declared %d, decoded %d", w.Declared, w.Decoded)
}
