package main

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"pdf2tsv/config"
	"pdf2tsv/internal/core/document"
	"pdf2tsv/internal/core/ingest"
	services "pdf2tsv/internal/services/ingest"
	"pdf2tsv/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func newApp() *cli.App {
	return &cli.App{
		Name:      "pdf2tsv",
		Usage:     "split a PDF into link-annotated text chunks, one TSV line per chunk",
		ArgsUsage: "<input.pdf|s3://bucket/key.pdf>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Value: "config.yaml", Usage: "yaml config file; missing is fine"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output path (default: input with .tsv extension)"},
			&cli.IntFlag{Name: "min-chunk-size", Usage: "minimum chunk length in characters"},
			&cli.IntFlag{Name: "max-chunk-size", Usage: "maximum chunk length in characters"},
			&cli.IntFlag{Name: "min-sentences", Usage: "minimum sentences per chunk"},
			&cli.IntFlag{Name: "overlap", Usage: "sentences carried over between chunks"},
			&cli.Int64Flag{Name: "seed", Usage: "chunk ID seed; first ID is seed+1 (default: current time in ms)"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "debug logging"},
		},
		Action: convertAction,
		// main decides the exit code
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

func convertAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("exactly one input PDF is required", 2)
	}
	input := c.Args().First()
	if !strings.EqualFold(path.Ext(input), ".pdf") {
		return cli.Exit(fmt.Sprintf("input %q is not a .pdf file", input), 2)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("failed to load .env: %v", err)
	}
	if err := config.Init(c.String("config"), chunkingFromFlags(c)); err != nil {
		return cli.Exit(err.Error(), 2)
	}
	level := string(config.Cfg.LogLevel)
	if c.Bool("verbose") {
		level = string(config.Debug)
	}
	if err := logger.SetLevel(level); err != nil {
		logger.Warn("invalid log level %q: %v", level, err)
	}

	var opts []document.Option
	if c.IsSet("seed") {
		opts = append(opts, document.WithSeed(c.Int64("seed")))
	}
	assembler, err := services.NewAssembler(opts...)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	out := c.String("out")
	if out == "" {
		out = defaultOutput(input)
	}

	start := time.Now()
	local, cleanup, err := ingest.FetchToLocalTemp(c.Context, input)
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}
	defer cleanup()

	src, err := ingest.OpenPDF(local)
	if err != nil {
		return err
	}
	defer src.Close()

	chunks, err := assembler.Convert(c.Context, src)
	if err != nil {
		return err
	}
	if err := document.WriteTSVFile(out, chunks); err != nil {
		return err
	}
	logger.Info("wrote %d chunks from %d pages to %s in %s", len(chunks), src.PageCount(), out, time.Since(start).Round(time.Millisecond))
	return nil
}

// chunkingFromFlags collects the explicitly set chunking flags.
func chunkingFromFlags(c *cli.Context) config.ChunkingOverride {
	flag := func(name string) *int {
		if !c.IsSet(name) {
			return nil
		}
		v := c.Int(name)
		return &v
	}
	return config.ChunkingOverride{
		MinChunkSize:         flag("min-chunk-size"),
		MaxChunkSize:         flag("max-chunk-size"),
		MinSentencesPerChunk: flag("min-sentences"),
		OverlapSentences:     flag("overlap"),
	}
}

// defaultOutput swaps the .pdf extension for .tsv. Remote inputs land in the
// working directory under their base name.
func defaultOutput(input string) string {
	if strings.HasPrefix(input, "s3://") {
		input = path.Base(input)
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".tsv"
}
