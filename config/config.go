package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/iamNilotpal/lz4framed"
)

type Config struct {
	Compress   CompressConfig   `yaml:"compress"`
	Decompress DecompressConfig `yaml:"decompress"`
	Verbose    bool             `yaml:"verbose"` // Enable debug logging
}

// Holds compression-side configuration.
type CompressConfig struct {
	Level           int    `yaml:"level"`            // Compression level (0-16)
	BlockSize       string `yaml:"block_size"`       // Block size class: default, 64KB, 256KB, 1MB, 4MB
	LinkedBlocks    bool   `yaml:"linked_blocks"`    // Blocks share a 64KB history window
	ContentChecksum bool   `yaml:"content_checksum"` // Append a whole-content checksum
	BlockChecksum   bool   `yaml:"block_checksum"`   // Append a checksum per block
}

// Holds decompression-side configuration.
type DecompressConfig struct {
	BufferSize int `yaml:"buffer_size"` // Initial output allocation for undeclared frames
	ChunkSize  int `yaml:"chunk_size"`  // Decoded chunk granularity in streaming mode
}

// Returns a Config struct with reasonable default values.
func DefaultConfig() *Config {
	return &Config{
		Compress: CompressConfig{
			Level:        lz4framed.MinCompressionLevel,
			BlockSize:    "default",
			LinkedBlocks: true,
		},
		Decompress: DecompressConfig{
			BufferSize: lz4framed.DefaultBufferSize,
			ChunkSize:  lz4framed.DefaultChunkSize,
		},
	}
}

// Loads configuration from a YAML file.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// BlockSizeID resolves the configured block size name to its
// identifier.
func (c *CompressConfig) BlockSizeID() (lz4framed.BlockSizeID, error) {
	switch strings.ToUpper(strings.TrimSpace(c.BlockSize)) {
	case "", "DEFAULT":
		return lz4framed.BlockSizeDefault, nil
	case "64KB":
		return lz4framed.BlockSize64KB, nil
	case "256KB":
		return lz4framed.BlockSize256KB, nil
	case "1MB":
		return lz4framed.BlockSize1MB, nil
	case "4MB":
		return lz4framed.BlockSize4MB, nil
	default:
		return 0, fmt.Errorf("unknown block_size %q", c.BlockSize)
	}
}

func validateConfig(config *Config) error {
	if err := validateCompressConfig(&config.Compress); err != nil {
		return fmt.Errorf("invalid compress configuration: %w", err)
	}

	if err := validateDecompressConfig(&config.Decompress); err != nil {
		return fmt.Errorf("invalid decompress configuration: %w", err)
	}

	return nil
}

func validateCompressConfig(config *CompressConfig) error {
	if config.Level < lz4framed.MinCompressionLevel || config.Level > lz4framed.MaxCompressionLevel {
		return fmt.Errorf("level must be between %d and %d", lz4framed.MinCompressionLevel, lz4framed.MaxCompressionLevel)
	}

	if _, err := config.BlockSizeID(); err != nil {
		return err
	}

	return nil
}

func validateDecompressConfig(config *DecompressConfig) error {
	if config.BufferSize <= 0 {
		return fmt.Errorf("buffer_size must be greater than 0")
	}

	if config.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be greater than 0")
	}

	return nil
}
