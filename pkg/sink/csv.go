package sink

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/eunmann/sas7bdat/pkg/sas7bdat"
)

// CSVConfig configures a CSV sink.
type CSVConfig struct {
	// Comma is the field separator. Zero means ','.
	Comma rune
	// Zstd compresses the output with zstd.
	Zstd bool
	// NoHeader omits the header line of column names.
	NoHeader bool
	// Text decodes string cells. Nil writes them unchanged.
	Text *TextDecoder
}

// DefaultCSVConfig returns a comma separated, uncompressed configuration.
func DefaultCSVConfig() CSVConfig {
	return CSVConfig{Comma: ','}
}

// Validate checks the separator.
func (c *CSVConfig) Validate() error {
	switch c.Comma {
	case 0:
		c.Comma = ','
	case '"', '\r', '\n':
		return fmt.Errorf("invalid CSV separator %q", c.Comma)
	}
	return nil
}

// CSV writes one line per row. Missing values are empty fields, dates and
// times use ISO 8601 layouts.
type CSV struct {
	cfg    CSVConfig
	w      *csv.Writer
	enc    *zstd.Encoder
	record []string
	rows   int
	closed bool
}

// NewCSV returns a CSV sink writing to w. The caller owns w; Close flushes
// buffered output but does not close it.
func NewCSV(w io.Writer, cfg CSVConfig) (*CSV, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &CSV{cfg: cfg}
	if cfg.Zstd {
		enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, fmt.Errorf("create zstd encoder: %w", err)
		}
		s.enc = enc
		w = enc
	}
	s.w = csv.NewWriter(w)
	s.w.Comma = cfg.Comma
	return s, nil
}

func (s *CSV) SetProperties(p *sas7bdat.Properties) error {
	s.record = make([]string, len(p.Columns))
	if s.cfg.NoHeader {
		return nil
	}
	for i, c := range p.Columns {
		s.record[i] = c.Name
	}
	return s.w.Write(s.record)
}

func (s *CSV) PushRow(_ int, row sas7bdat.Row) error {
	for i, v := range row {
		s.record[i] = s.cfg.Text.Format(v)
	}
	s.rows++
	return s.w.Write(s.record[:len(row)])
}

func (s *CSV) EndOfData() error {
	return s.Close()
}

// Rows returns the number of data lines written.
func (s *CSV) Rows() int {
	return s.rows
}

// Close flushes the CSV writer and finishes the zstd frame. It is safe to
// call more than once.
func (s *CSV) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.w.Flush()
	err := s.w.Error()
	if s.enc != nil {
		err = errors.Join(err, s.enc.Close())
	}
	if err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
