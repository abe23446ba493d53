// Command lz4f compresses, decompresses and inspects files in the LZ4
// frame format.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"

	"github.com/iamNilotpal/lz4framed"
	"github.com/iamNilotpal/lz4framed/config"
	"github.com/iamNilotpal/lz4framed/pkg/fs"
	"github.com/iamNilotpal/lz4framed/pkg/logger"
	"github.com/iamNilotpal/lz4framed/pkg/system"
)

// Size of the file read window in streaming mode.
const readChunkSize = 256 << 10

var (
	log                      = logger.New("lz4f")
	filesystem fs.FileSystem = fs.NewLocalFileSystem()
)

func main() {
	defer log.Sync()

	app := &cli.App{
		Name:  "lz4f",
		Usage: "compress, decompress and inspect files in the LZ4 frame format",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a YAML configuration file",
			},
		},
		Commands: []*cli.Command{
			compressCmd(),
			decompressCmd(),
			infoCmd(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalw("command failed", "error", err)
	}
}

// loadConfig reads the YAML file named by --config, or falls back to
// defaults.
func loadConfig(c *cli.Context) (*config.Config, error) {
	if path := c.String("config"); path != "" {
		return config.LoadConfig(path)
	}
	return config.DefaultConfig(), nil
}

func compressCmd() *cli.Command {
	return &cli.Command{
		Name:      "compress",
		Aliases:   []string{"z"},
		Usage:     "compress a file into a single frame",
		ArgsUsage: "INPUT [OUTPUT]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "level",
				Aliases: []string{"l"},
				Usage:   "compression level (0-16, 3 and above use the high-compression path)",
			},
			&cli.StringFlag{
				Name:  "block-size",
				Usage: "block size class: default, 64KB, 256KB, 1MB or 4MB",
			},
			&cli.BoolFlag{
				Name:  "content-checksum",
				Usage: "append a checksum of the whole content",
			},
			&cli.BoolFlag{
				Name:  "block-checksum",
				Usage: "append a checksum after every block",
			},
			&cli.BoolFlag{
				Name:  "independent",
				Usage: "mark blocks as independent instead of sharing a history window",
			},
			&cli.BoolFlag{
				Name:    "force",
				Aliases: []string{"f"},
				Usage:   "overwrite the output file if it exists",
			},
		},
		Action: runCompress,
	}
}

func runCompress(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.ShowSubcommandHelp(c)
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	opts, err := compressOptions(c, cfg)
	if err != nil {
		return err
	}

	input := c.Args().Get(0)
	output := c.Args().Get(1)
	if output == "" {
		output = input + ".lz4"
	}

	ctx, stop := system.NotifyContext()
	defer stop()

	return system.RunWithContext(ctx, func(ctx context.Context) error {
		return compressFile(ctx, input, output, c.Bool("force"), opts)
	})
}

// compressOptions merges command line flags over the configuration
// file, flags winning where set.
func compressOptions(c *cli.Context, cfg *config.Config) ([]lz4framed.Option, error) {
	level := cfg.Compress.Level
	if c.IsSet("level") {
		level = c.Int("level")
	}

	blockSize := cfg.Compress
	if c.IsSet("block-size") {
		blockSize.BlockSize = c.String("block-size")
	}
	id, err := blockSize.BlockSizeID()
	if err != nil {
		return nil, err
	}

	linked := cfg.Compress.LinkedBlocks
	if c.IsSet("independent") {
		linked = !c.Bool("independent")
	}
	contentChecksum := cfg.Compress.ContentChecksum
	if c.IsSet("content-checksum") {
		contentChecksum = c.Bool("content-checksum")
	}
	blockChecksum := cfg.Compress.BlockChecksum
	if c.IsSet("block-checksum") {
		blockChecksum = c.Bool("block-checksum")
	}

	return []lz4framed.Option{
		lz4framed.WithCompressionLevel(level),
		lz4framed.WithBlockSizeID(id),
		lz4framed.WithLinkedBlocks(linked),
		lz4framed.WithContentChecksum(contentChecksum),
		lz4framed.WithBlockChecksum(blockChecksum),
	}, nil
}

func compressFile(ctx context.Context, input, output string, force bool, opts []lz4framed.Option) error {
	size, err := filesystem.Size(input)
	if err != nil {
		return err
	}
	if size > 0 {
		// Declaring the length lets decoders size their output up front.
		opts = append(opts, lz4framed.WithContentSize(uint64(size)))
	}

	src, err := filesystem.Open(input)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := filesystem.Create(output, force)
	if err != nil {
		return err
	}
	defer dst.Close()

	comp := lz4framed.NewCompressor()
	defer comp.Close()

	header, err := comp.Begin(opts...)
	if err != nil {
		return err
	}
	var written int64
	if err := writeAll(dst, header, &written); err != nil {
		return err
	}

	buf := make([]byte, readChunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, rerr := src.Read(buf)
		if n > 0 {
			out, err := comp.Update(buf[:n])
			if err != nil {
				return err
			}
			if err := writeAll(dst, out, &written); err != nil {
				return err
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return rerr
		}
	}

	tail, err := comp.End()
	if err != nil {
		return err
	}
	if err := writeAll(dst, tail, &written); err != nil {
		return err
	}

	log.Infow("compressed",
		"input", input,
		"output", output,
		"raw", humanize.IBytes(uint64(size)),
		"encoded", humanize.IBytes(uint64(written)),
		"ratio", ratio(written, size),
	)
	return nil
}

func decompressCmd() *cli.Command {
	return &cli.Command{
		Name:      "decompress",
		Aliases:   []string{"d"},
		Usage:     "decompress a file of concatenated frames",
		ArgsUsage: "INPUT [OUTPUT]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "chunk-size",
				Usage: "decoded chunk granularity in bytes",
			},
			&cli.BoolFlag{
				Name:    "force",
				Aliases: []string{"f"},
				Usage:   "overwrite the output file if it exists",
			},
		},
		Action: runDecompress,
	}
}

func runDecompress(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.ShowSubcommandHelp(c)
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	chunkSize := cfg.Decompress.ChunkSize
	if c.IsSet("chunk-size") {
		chunkSize = c.Int("chunk-size")
	}

	input := c.Args().Get(0)
	output := c.Args().Get(1)
	if output == "" {
		output = trimSuffix(input)
	}

	ctx, stop := system.NotifyContext()
	defer stop()

	return system.RunWithContext(ctx, func(ctx context.Context) error {
		return decompressFile(ctx, input, output, c.Bool("force"), chunkSize)
	})
}

func decompressFile(ctx context.Context, input, output string, force bool, chunkSize int) error {
	src, err := filesystem.Open(input)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := filesystem.Create(output, force)
	if err != nil {
		return err
	}
	defer dst.Close()

	dec, err := lz4framed.NewDecompressor(lz4framed.WithLogger(log.Desugar()))
	if err != nil {
		return err
	}
	defer dec.Close()

	var written int64
	drain := func(data []byte) (int, error) {
		// One Update call stops at each frame boundary; keep going while
		// following frames are already buffered.
		for {
			chunks, hint, err := dec.Update(data, chunkSize)
			if err != nil {
				return hint, err
			}
			data = nil
			for _, chunk := range chunks {
				if err := writeAll(dst, chunk, &written); err != nil {
					return hint, err
				}
			}
			if hint != 0 || dec.Buffered() == 0 {
				return hint, nil
			}
		}
	}

	hint := 0
	buf := make([]byte, readChunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, rerr := src.Read(buf)
		if n > 0 {
			if hint, err = drain(buf[:n]); err != nil {
				return err
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return rerr
		}
	}
	if hint != 0 {
		return fmt.Errorf("input ends mid-frame, %d more bytes expected", hint)
	}

	log.Infow("decompressed",
		"input", input,
		"output", output,
		"decoded", humanize.IBytes(uint64(written)),
	)
	return nil
}

func infoCmd() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Aliases:   []string{"i"},
		Usage:     "print the frame header of a compressed file",
		ArgsUsage: "INPUT",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "print the header as JSON",
			},
		},
		Action: runInfo,
	}
}

func runInfo(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.ShowSubcommandHelp(c)
	}
	input := c.Args().Get(0)

	src, err := filesystem.Open(input)
	if err != nil {
		return err
	}
	defer src.Close()

	dec, err := lz4framed.NewDecompressor()
	if err != nil {
		return err
	}
	defer dec.Close()

	// Feed the file forward until the header parses; skippable frames
	// before it can push the header arbitrarily far in.
	buf := make([]byte, 4096)
	for {
		n, rerr := src.Read(buf)
		info, err := dec.FrameInfo(buf[:n])
		if err == nil {
			if c.Bool("json") {
				return printInfoJSON(input, info)
			}
			printInfo(input, info)
			return nil
		}
		if !errors.Is(err, lz4framed.ErrHeaderIncomplete) {
			return err
		}
		if rerr == io.EOF {
			return fmt.Errorf("%s: no complete frame header found", input)
		}
		if rerr != nil {
			return rerr
		}
	}
}

func printInfoJSON(input string, info *lz4framed.FrameInfo) error {
	out, err := json.MarshalIndent(struct {
		File            string `json:"file"`
		BlockSize       string `json:"block_size"`
		LinkedBlocks    bool   `json:"linked_blocks"`
		ContentSize     uint64 `json:"content_size"`
		ContentChecksum bool   `json:"content_checksum"`
		BlockChecksum   bool   `json:"block_checksum"`
		DictionaryID    uint32 `json:"dictionary_id,omitempty"`
	}{
		File:            input,
		BlockSize:       info.BlockSizeID.String(),
		LinkedBlocks:    info.LinkedBlocks,
		ContentSize:     info.ContentSize,
		ContentChecksum: info.ContentChecksum,
		BlockChecksum:   info.BlockChecksum,
		DictionaryID:    info.DictionaryID,
	}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func printInfo(input string, info *lz4framed.FrameInfo) {
	contentSize := "unknown"
	if info.ContentSize > 0 {
		contentSize = humanize.IBytes(info.ContentSize)
	}

	fmt.Printf("%s\n", input)
	fmt.Printf("  block size:       %s\n", info.BlockSizeID)
	fmt.Printf("  linked blocks:    %t\n", info.LinkedBlocks)
	fmt.Printf("  content size:     %s\n", contentSize)
	fmt.Printf("  content checksum: %t\n", info.ContentChecksum)
	fmt.Printf("  block checksum:   %t\n", info.BlockChecksum)
	if info.DictionaryID != 0 {
		fmt.Printf("  dictionary id:    %d\n", info.DictionaryID)
	}
}

// writeAll writes b fully to f and accounts it in total.
func writeAll(f *os.File, b []byte, total *int64) error {
	if len(b) == 0 {
		return nil
	}
	n, err := f.Write(b)
	*total += int64(n)
	return err
}

// trimSuffix derives a decompressed output name: strip .lz4 when
// present, append .out otherwise.
func trimSuffix(name string) string {
	const ext = ".lz4"
	if len(name) > len(ext) && name[len(name)-len(ext):] == ext {
		return name[:len(name)-len(ext)]
	}
	return name + ".out"
}

// ratio formats encoded over raw size as a percentage.
func ratio(encoded, raw int64) string {
	if raw == 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", float64(encoded)/float64(raw)*100)
}
