// Package logger builds the zap loggers used by the command line
// tools.
package logger

import "go.uber.org/zap"

// New creates a named sugared logger writing human-readable output to
// stderr. Construction failures fall back to a nop logger so callers
// never handle an error for diagnostics.
func New(name string) *zap.SugaredLogger {
	config := zap.NewDevelopmentConfig()
	config.DisableStacktrace = true

	log, err := config.Build()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return log.Sugar().Named(name)
}
