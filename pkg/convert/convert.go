// Package convert runs batch conversions of SAS7BDAT files to CSV,
// Parquet or SQLite with a bounded pool of workers.
package convert

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/eunmann/sas7bdat/internal/logctx"
	"github.com/eunmann/sas7bdat/pkg/fileutil"
	"github.com/eunmann/sas7bdat/pkg/format"
	"github.com/eunmann/sas7bdat/pkg/logging"
	"github.com/eunmann/sas7bdat/pkg/sas7bdat"
	"github.com/eunmann/sas7bdat/pkg/sink"
	"github.com/eunmann/sas7bdat/pkg/source"
)

// Format is an output format.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatParquet Format = "parquet"
	FormatSQLite  Format = "sqlite"
	FormatNull    Format = "null"
)

// readBatch is the number of rows read between cancellation checks.
const readBatch = 4096

// ErrInvalidFormat is returned for an unknown output format.
var ErrInvalidFormat = errors.New("invalid output format")

// ParseFormat returns the format named s.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatCSV, FormatParquet, FormatSQLite, FormatNull:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidFormat, s)
}

// Ext returns the output file extension.
func (f Format) Ext(zstd bool) string {
	switch f {
	case FormatCSV:
		if zstd {
			return ".csv.zst"
		}
		return ".csv"
	case FormatParquet:
		return ".parquet"
	}
	return ""
}

// Config controls a batch conversion.
type Config struct {
	Format Format
	// Workers is the number of files converted at once. SQLite output is
	// always converted one file at a time.
	Workers int
	// OutDir receives output files. Empty writes next to each input.
	OutDir string
	// DBPath is the database for SQLite output. Each input becomes a table.
	DBPath string
	// Zstd compresses CSV output.
	Zstd bool
	// Force converts inputs whose output is already up to date.
	Force bool
	// Decode converts string cells from the file encoding to UTF-8.
	Decode bool
	Filter sas7bdat.Filter
	Source source.Config
}

// DefaultConfig returns a CSV configuration with one worker per CPU.
func DefaultConfig() Config {
	return Config{
		Format:  FormatCSV,
		Workers: runtime.NumCPU(),
		Decode:  true,
		Source:  source.DefaultConfig(),
	}
}

// Validate checks configuration values and sets defaults for zero values.
func (c *Config) Validate() error {
	if _, err := ParseFormat(string(c.Format)); err != nil {
		return err
	}
	if c.Format == FormatSQLite && c.DBPath == "" {
		return fmt.Errorf("DBPath is required for sqlite output")
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	return c.Filter.Validate()
}

// Job converts one input.
type Job struct {
	Input string
	// Output is the output file, or the table name for SQLite output.
	Output string
}

// Plan returns one job per input with its output path derived from cfg.
func Plan(inputs []string, cfg Config) []Job {
	jobs := make([]Job, len(inputs))
	for i, in := range inputs {
		jobs[i] = Job{Input: in}
		switch cfg.Format {
		case FormatSQLite:
			jobs[i].Output = tableName(in)
		case FormatNull:
		default:
			outDir := cfg.OutDir
			if _, _, ok := source.ParseS3URL(in); ok && outDir == "" {
				outDir = "."
			}
			jobs[i].Output = fileutil.OutputPath(in, outDir, cfg.Format.Ext(cfg.Zstd))
		}
	}
	return jobs
}

func tableName(in string) string {
	base := filepath.Base(fileutil.OutputPath(in, "", ""))
	var b strings.Builder
	for _, r := range base {
		if r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

// Result reports the outcome of one job.
type Result struct {
	Job
	Rows    int
	Skipped bool
	Elapsed time.Duration
	Err     error
}

// Run converts every job. The first failure cancels jobs that have not
// started and is returned after running jobs finish.
func Run(ctx context.Context, cfg Config, jobs []Job) ([]Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	log := logctx.FromContext(ctx).With().Str("phase", "convert").Logger()
	ctx = logctx.WithLogger(ctx, log)
	tracker := logging.NewProgressTracker("convert", int64(len(jobs)), log)
	start := time.Now()

	limit := cfg.Workers
	if cfg.Format == FormatSQLite {
		limit = 1
	}

	results := make([]Result, len(jobs))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, job := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			jctx := logctx.WithFile(logctx.WithJob(ctx, i), job.Input)
			res := convertJob(jctx, cfg, job)

			mu.Lock()
			results[i] = res
			mu.Unlock()

			switch {
			case res.Err != nil:
				tracker.RecordFailure()
				return fmt.Errorf("convert %s: %w", job.Input, res.Err)
			case res.Skipped:
				tracker.RecordSkip()
			default:
				tracker.RecordCompletion(res.Elapsed, int64(res.Rows))
			}
			tracker.LogProgress("file done")
			return nil
		})
	}

	err := g.Wait()
	logging.PhaseComplete(log, "convert", time.Since(start)).
		ProgressFromTracker(tracker).
		RowRate(tracker.Rows()).
		Log("conversion finished")
	return results, err
}

func convertJob(ctx context.Context, cfg Config, job Job) Result {
	log := logctx.FromContext(ctx)
	res := Result{Job: job}
	if cfg.Format == FormatCSV || cfg.Format == FormatParquet {
		if _, err := fileutil.CleanupTmpFiles(job.Output); err != nil {
			log.Warn().Err(err).Msg("removing stale tmp files failed")
		}
	}
	if !cfg.Force && job.Output != "" && cfg.Format != FormatSQLite && fileutil.UpToDate(job.Input, job.Output) {
		log.Debug().Str("output", job.Output).Msg("output up to date, skipping")
		res.Skipped = true
		return res
	}

	start := time.Now()
	res.Rows, res.Err = convertOne(ctx, cfg, job)
	res.Elapsed = time.Since(start)
	if res.Err == nil {
		logging.FileComplete(log, "convert", res.Elapsed).
			Str("output", job.Output).
			Count("rows", int64(res.Rows)).
			RowRate(int64(res.Rows)).
			Log("converted file")
	}
	return res
}

func convertOne(ctx context.Context, cfg Config, job Job) (int, error) {
	log := logctx.FromContext(ctx)
	src, err := source.Open(ctx, job.Input, cfg.Source)
	if err != nil {
		return 0, err
	}
	defer src.Close()

	var text *sink.TextDecoder
	if cfg.Decode {
		text = textDecoder(src, log)
	}

	switch cfg.Format {
	case FormatNull:
		return read(ctx, cfg, src, &sink.Null{})

	case FormatSQLite:
		scfg := sink.DefaultSQLiteConfig(cfg.DBPath)
		scfg.Table = job.Output
		scfg.Replace = true
		s, err := sink.OpenSQLite(scfg, text)
		if err != nil {
			return 0, err
		}
		n, err := read(ctx, cfg, src, s)
		return n, errors.Join(err, s.Close())
	}

	var rows int
	err = fileutil.WriteTmpThenMove("", job.Output, func(tmpPath string) error {
		f, err := os.Create(tmpPath)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		bw := bufio.NewWriterSize(f, 1<<20)

		var s interface {
			sas7bdat.Sink
			Close() error
		}
		if cfg.Format == FormatParquet {
			s = sink.NewParquet(bw, text)
		} else {
			c, err := sink.NewCSV(bw, sink.CSVConfig{Zstd: cfg.Zstd, Text: text})
			if err != nil {
				f.Close()
				return err
			}
			s = c
		}

		rows, err = read(ctx, cfg, src, s)
		if err == nil {
			err = s.Close()
		}
		if err == nil {
			err = bw.Flush()
		}
		return errors.Join(err, f.Close())
	})
	return rows, err
}

// textDecoder picks a decoder for the file encoding. Unknown encodings
// leave strings undecoded.
func textDecoder(src source.Source, log zerolog.Logger) *sink.TextDecoder {
	h, err := format.ReadHeader(src)
	if err != nil {
		return nil
	}
	text, err := sink.NewTextDecoder(h.Encoding)
	if err != nil {
		log.Warn().Err(err).Msg("strings will not be decoded")
		return nil
	}
	return text
}

func read(ctx context.Context, cfg Config, src source.Source, s sas7bdat.Sink) (int, error) {
	r, err := sas7bdat.New(src, s,
		sas7bdat.WithFilter(cfg.Filter),
		sas7bdat.WithLogger(logctx.FromContext(ctx)),
		sas7bdat.WithFilename(src.Name()),
	)
	if err != nil {
		return 0, err
	}
	defer r.Close()
	for {
		if err := ctx.Err(); err != nil {
			return r.CurrentRowIndex(), err
		}
		more, err := r.ReadRows(readBatch)
		if err != nil {
			return r.CurrentRowIndex(), err
		}
		if !more {
			return r.CurrentRowIndex(), nil
		}
	}
}
