package blockcodec

import (
	"fmt"

	"github.com/iamNilotpal/lz4framed/internal/core/domain"
)

// Returns Options initialized with the fastest compression level, which
// matches the behavior callers get when they configure nothing.
func DefaultOptions() *Options {
	return &Options{Level: domain.MinCompressionLevel}
}

// Checks if the codec options are valid and returns an error if any
// option is outside acceptable bounds.
func Validate(input *Options) error {
	if input.Level < domain.MinCompressionLevel || input.Level > domain.MaxCompressionLevel {
		return fmt.Errorf(
			"compression level must be between %d and %d, got %d",
			domain.MinCompressionLevel, domain.MaxCompressionLevel, input.Level,
		)
	}
	return nil
}
