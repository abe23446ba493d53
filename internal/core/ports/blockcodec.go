package ports

// Defines the interface for raw block compression.
// This allows us to swap block codec implementations without changing frame logic.
type BlockCodec interface {
	// CompressBound returns the worst-case compressed size for a block
	// of the given length.
	CompressBound(size int) int

	// Compress compresses one block of src into dst.
	// Returns the number of bytes written; 0 means the data is
	// incompressible and should be stored raw.
	Compress(src, dst []byte) (int, error)

	// Decompress expands one compressed block from src into dst.
	// dict holds up to 64 KiB of previously decoded output for blocks
	// that reference earlier frame data; pass nil for independent blocks.
	// Returns the number of bytes written.
	Decompress(src, dst, dict []byte) (int, error)

	// Level returns current compression level.
	Level() int
}
