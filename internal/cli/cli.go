// Package cli implements the command-line interface for sas7bdat.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/eunmann/sas7bdat/internal/logctx"
	"github.com/eunmann/sas7bdat/pkg/convert"
	"github.com/eunmann/sas7bdat/pkg/logging"
	"github.com/eunmann/sas7bdat/pkg/sas7bdat"
	"github.com/eunmann/sas7bdat/pkg/sink"
	"github.com/eunmann/sas7bdat/pkg/source"
)

// Version is set at build time.
var Version = "dev"

// Globals are the flags shared by every command.
type Globals struct {
	Include []string `help:"Keep only these columns." sep:","`
	Exclude []string `help:"Drop these columns." sep:","`
	Debug   bool     `help:"Enable debug logging."`
	Human   bool     `help:"Human readable log output."`
	Workers int      `help:"Number of files converted at once (0 = one per CPU)."`
	TmpDir  string   `name:"tmp-dir" help:"Directory for decompressed and downloaded inputs." type:"path"`
	Ranged  bool     `help:"Read S3 objects with ranged GETs instead of downloading them."`
	NoMmap  bool     `name:"no-mmap" help:"Read local files with pread instead of mapping them."`

	Stdout io.Writer       `kong:"-"`
	ctx    context.Context
}

func (g *Globals) filter() sas7bdat.Filter {
	return sas7bdat.Filter{Include: g.Include, Exclude: g.Exclude}
}

func (g *Globals) sourceConfig() source.Config {
	cfg := source.DefaultConfig()
	cfg.Mmap = !g.NoMmap
	cfg.TempDir = g.TmpDir
	cfg.S3Download = !g.Ranged
	return cfg
}

func (g *Globals) convertConfig(f convert.Format) convert.Config {
	cfg := convert.DefaultConfig()
	cfg.Format = f
	cfg.Filter = g.filter()
	cfg.Source = g.sourceConfig()
	if g.Workers > 0 {
		cfg.Workers = g.Workers
	}
	return cfg
}

type cli struct {
	Globals

	Info    InfoCmd    `cmd:"" help:"Print file properties and schema."`
	Print   PrintCmd   `cmd:"" help:"Print properties, schema and rows."`
	CSV     CSVCmd     `cmd:"" name:"csv" help:"Convert files to CSV."`
	Parquet ParquetCmd `cmd:"" help:"Convert files to Parquet."`
	SQLite  SQLiteCmd  `cmd:"" name:"sqlite" help:"Load files into a SQLite database."`
	Null    NullCmd    `cmd:"" help:"Read files and discard the rows."`
	Version VersionCmd `cmd:"" help:"Print version information."`
}

// Run executes the CLI with the given arguments.
func Run(args []string) error {
	return run(context.Background(), args, os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var c cli
	parser, err := kong.New(&c,
		kong.Name("sas7bdat"),
		kong.Description("Read SAS7BDAT files and convert them to CSV, Parquet or SQLite."),
		kong.Writers(stdout, stderr),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
	)
	if err != nil {
		return err
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	logging.Configure(logging.Options{Debug: c.Debug, Human: c.Human, Out: stderr})
	c.Stdout = stdout
	c.ctx = logctx.WithLogger(ctx, logging.WithPhase("cli"))
	return kctx.Run(&c.Globals)
}

// InfoCmd prints the properties of each file.
type InfoCmd struct {
	Files    []string `arg:"" name:"file" help:"Input files or s3:// URLs."`
	Checksum bool     `help:"Print the BLAKE3 digest of each input."`
}

func (c *InfoCmd) Run(g *Globals) error {
	for _, name := range c.Files {
		if err := c.info(g, name); err != nil {
			return err
		}
	}
	return nil
}

func (c *InfoCmd) info(g *Globals, name string) error {
	src, err := source.Open(g.ctx, name, g.sourceConfig())
	if err != nil {
		return err
	}
	defer src.Close()

	r, err := newReader(g, src, &sink.Null{})
	if err != nil {
		return err
	}
	fmt.Fprintf(g.Stdout, "File: %s\n", name)
	if c.Checksum {
		sum, err := source.Digest(src)
		if err != nil {
			return err
		}
		fmt.Fprintf(g.Stdout, "BLAKE3: %s\n", sum)
	}
	sink.WriteProperties(g.Stdout, r.Properties())
	return nil
}

// PrintCmd prints rows in the text layout.
type PrintCmd struct {
	Files  []string `arg:"" name:"file" help:"Input files or s3:// URLs."`
	NLines int      `name:"nlines" short:"n" default:"-1" help:"Read at most n rows of each file (-1 = all)."`
}

func (c *PrintCmd) Run(g *Globals) error {
	for _, name := range c.Files {
		if err := c.print(g, name); err != nil {
			return err
		}
	}
	return nil
}

func (c *PrintCmd) print(g *Globals, name string) error {
	src, err := source.Open(g.ctx, name, g.sourceConfig())
	if err != nil {
		return err
	}
	defer src.Close()

	p := sink.NewPrint(g.Stdout, nil)
	r, err := newReader(g, src, p)
	if err != nil {
		return err
	}
	if c.NLines < 0 {
		return r.ReadAll()
	}
	if _, err := r.ReadRows(c.NLines); err != nil {
		return err
	}
	return p.Flush()
}

func newReader(g *Globals, src source.Source, s sas7bdat.Sink) (*sas7bdat.Reader, error) {
	return sas7bdat.New(src, s,
		sas7bdat.WithFilter(g.filter()),
		sas7bdat.WithLogger(logctx.FromContext(g.ctx)),
		sas7bdat.WithFilename(src.Name()),
	)
}

// CSVCmd converts files to CSV.
type CSVCmd struct {
	Files  []string `arg:"" name:"file" help:"Input files or s3:// URLs."`
	OutDir string   `name:"out-dir" short:"o" help:"Output directory (default: next to each input)." type:"path"`
	Zstd   bool     `help:"Compress output with zstd."`
	Force  bool     `help:"Convert inputs whose output is up to date."`
}

func (c *CSVCmd) Run(g *Globals) error {
	cfg := g.convertConfig(convert.FormatCSV)
	cfg.OutDir = c.OutDir
	cfg.Zstd = c.Zstd
	cfg.Force = c.Force
	return runConvert(g, cfg, c.Files)
}

// ParquetCmd converts files to Parquet.
type ParquetCmd struct {
	Files  []string `arg:"" name:"file" help:"Input files or s3:// URLs."`
	OutDir string   `name:"out-dir" short:"o" help:"Output directory (default: next to each input)." type:"path"`
	Force  bool     `help:"Convert inputs whose output is up to date."`
}

func (c *ParquetCmd) Run(g *Globals) error {
	cfg := g.convertConfig(convert.FormatParquet)
	cfg.OutDir = c.OutDir
	cfg.Force = c.Force
	return runConvert(g, cfg, c.Files)
}

// SQLiteCmd loads files into one database, one table per file.
type SQLiteCmd struct {
	Files []string `arg:"" name:"file" help:"Input files or s3:// URLs."`
	DB    string   `name:"db" required:"" help:"Database file." type:"path"`
}

func (c *SQLiteCmd) Run(g *Globals) error {
	cfg := g.convertConfig(convert.FormatSQLite)
	cfg.DBPath = c.DB
	return runConvert(g, cfg, c.Files)
}

// NullCmd reads every row and discards it.
type NullCmd struct {
	Files []string `arg:"" name:"file" help:"Input files or s3:// URLs."`
}

func (c *NullCmd) Run(g *Globals) error {
	return runConvert(g, g.convertConfig(convert.FormatNull), c.Files)
}

func runConvert(g *Globals, cfg convert.Config, files []string) error {
	results, err := convert.Run(g.ctx, cfg, convert.Plan(files, cfg))
	for _, res := range results {
		switch {
		case res.Err != nil:
		case res.Skipped:
			fmt.Fprintf(g.Stdout, "%s: up to date\n", res.Input)
		case res.Output != "" && cfg.Format != convert.FormatNull:
			fmt.Fprintf(g.Stdout, "%s -> %s (%d rows)\n", res.Input, res.Output, res.Rows)
		case res.Input != "":
			fmt.Fprintf(g.Stdout, "%s: %d rows\n", res.Input, res.Rows)
		}
	}
	return err
}

// VersionCmd prints the version.
type VersionCmd struct{}

func (c *VersionCmd) Run(g *Globals) error {
	fmt.Fprintf(g.Stdout, "sas7bdat %s\n", Version)
	return nil
}
