package lz4framed

import lz4errors "github.com/iamNilotpal/lz4framed/pkg/errors"

// The error vocabulary lives in pkg/errors; these aliases and
// re-exports let callers work against this package alone.
type (
	// Error is a frame codec failure carrying a stable numeric code.
	Error = lz4errors.Error

	// ErrorCode identifies a frame-level codec failure.
	ErrorCode = lz4errors.Code

	// ValidationError reports an invalid argument or an unusable
	// context, naming the offending field.
	ValidationError = lz4errors.ValidationError

	// IntegrityWarning reports a frame whose declared content length
	// did not match the decoded byte count. Advisory, never fatal.
	IntegrityWarning = lz4errors.IntegrityWarning
)

// Codec failure codes. The numeric space is stable and mirrors the
// reference frame library's error enum.
const (
	CodeGeneric                    = lz4errors.CodeGeneric
	CodeMaxBlockSizeInvalid        = lz4errors.CodeMaxBlockSizeInvalid
	CodeBlockModeInvalid           = lz4errors.CodeBlockModeInvalid
	CodeContentChecksumFlagInvalid = lz4errors.CodeContentChecksumFlagInvalid
	CodeCompressionLevelInvalid    = lz4errors.CodeCompressionLevelInvalid
	CodeHeaderVersionWrong         = lz4errors.CodeHeaderVersionWrong
	CodeBlockChecksumInvalid       = lz4errors.CodeBlockChecksumInvalid
	CodeReservedFlagSet            = lz4errors.CodeReservedFlagSet
	CodeAllocationFailed           = lz4errors.CodeAllocationFailed
	CodeSrcSizeTooLarge            = lz4errors.CodeSrcSizeTooLarge
	CodeDstMaxSizeTooSmall         = lz4errors.CodeDstMaxSizeTooSmall
	CodeFrameHeaderIncomplete      = lz4errors.CodeFrameHeaderIncomplete
	CodeFrameTypeUnknown           = lz4errors.CodeFrameTypeUnknown
	CodeFrameSizeWrong             = lz4errors.CodeFrameSizeWrong
	CodeSrcPtrWrong                = lz4errors.CodeSrcPtrWrong
	CodeDecompressionFailed        = lz4errors.CodeDecompressionFailed
	CodeHeaderChecksumInvalid      = lz4errors.CodeHeaderChecksumInvalid
	CodeContentChecksumInvalid     = lz4errors.CodeContentChecksumInvalid
)

var (
	// ErrInputEmpty rejects empty input where bytes are required.
	ErrInputEmpty = lz4errors.ErrInputEmpty

	// ErrInvalidOption rejects an option value outside its supported
	// range.
	ErrInvalidOption = lz4errors.ErrInvalidOption

	// ErrInvalidContext rejects operations on a context that is closed,
	// failed, or in the wrong lifecycle state.
	ErrInvalidContext = lz4errors.ErrInvalidContext

	// ErrHeaderIncomplete signals that more bytes are required before
	// the frame header can be parsed. A retry signal, not corruption.
	ErrHeaderIncomplete = lz4errors.ErrHeaderIncomplete
)

// IsCodecError checks if a given error is a frame codec failure.
func IsCodecError(err error) bool { return lz4errors.IsCodecError(err) }

// AsCodecError attempts to extract a codec Error from a given error.
func AsCodecError(err error) *Error { return lz4errors.AsCodecError(err) }

// IsValidationError checks if a given error is a ValidationError.
func IsValidationError(err error) bool { return lz4errors.IsValidationError(err) }

// AsValidationError attempts to extract a ValidationError from a given
// error.
func AsValidationError(err error) *ValidationError { return lz4errors.AsValidationError(err) }
