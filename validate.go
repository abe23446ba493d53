package lz4framed

import lz4errors "github.com/iamNilotpal/lz4framed/pkg/errors"

// validatePreferences checks compression preferences before a frame is
// started.
//
// Returns a ValidationError if:
//   - The block size identifier is not one of the supported values.
//   - The compression level is outside [MinCompressionLevel, MaxCompressionLevel].
func validatePreferences(prefs *Preferences) error {
	if !prefs.BlockSizeID.Valid() {
		return lz4errors.NewValidationError("block_size_id", prefs.BlockSizeID, lz4errors.ErrInvalidOption)
	}
	if prefs.Level < MinCompressionLevel || prefs.Level > MaxCompressionLevel {
		return lz4errors.NewValidationError("level", prefs.Level, lz4errors.ErrInvalidOption)
	}
	return nil
}

// validateDecompressConfig checks decompression settings at context
// creation or one-shot entry.
//
// Returns a ValidationError if:
//   - The initial buffer size is not positive.
func validateDecompressConfig(cfg *decompressConfig) error {
	if cfg.bufferSize <= 0 {
		return lz4errors.NewValidationError("buffer_size", cfg.bufferSize, lz4errors.ErrInvalidOption)
	}
	return nil
}
