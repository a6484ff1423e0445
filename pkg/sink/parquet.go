package sink

import (
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"

	"github.com/eunmann/sas7bdat/pkg/sas7bdat"
)

// DefaultParquetChunk is the number of rows per WriteRows call.
const DefaultParquetChunk = 8192

// Parquet writes rows to a Parquet file with one optional column per SAS
// column: numbers as DOUBLE, strings as UTF8 byte arrays, datetimes as
// TIMESTAMP(MICROS), dates as DATE and times as TIME(MICROS).
type Parquet struct {
	out    io.Writer
	text   *TextDecoder
	chunk  int
	schema *parquet.Schema
	w      *parquet.Writer
	leaf   []int // column index in the schema for each retained column
	buf    []parquet.Row
	rows   int
	closed bool
}

// NewParquet returns a Parquet sink writing to out. text may be nil.
func NewParquet(out io.Writer, text *TextDecoder) *Parquet {
	return &Parquet{out: out, text: text, chunk: DefaultParquetChunk}
}

// Schema returns the schema built from the file columns, or nil before
// SetProperties.
func (s *Parquet) Schema() *parquet.Schema {
	return s.schema
}

func (s *Parquet) SetProperties(p *sas7bdat.Properties) error {
	names := uniqueNames(p.Columns)
	group := make(parquet.Group, len(names))
	for i, c := range p.Columns {
		group[names[i]] = parquet.Optional(parquetNode(c.Type))
	}
	name := p.DatasetName
	if name == "" {
		name = "sas7bdat"
	}
	s.schema = parquet.NewSchema(name, group)

	s.leaf = make([]int, len(names))
	for i, n := range names {
		col, ok := s.schema.Lookup(n)
		if !ok {
			return fmt.Errorf("parquet schema has no column %q", n)
		}
		s.leaf[i] = col.ColumnIndex
	}
	s.w = parquet.NewWriter(s.out, s.schema)
	return nil
}

func parquetNode(t sas7bdat.ColumnType) parquet.Node {
	switch t {
	case sas7bdat.TypeString:
		return parquet.String()
	case sas7bdat.TypeInteger:
		return parquet.Int(64)
	case sas7bdat.TypeDateTime:
		return parquet.Timestamp(parquet.Microsecond)
	case sas7bdat.TypeDate:
		return parquet.Date()
	case sas7bdat.TypeTime:
		return parquet.Time(parquet.Microsecond)
	default:
		return parquet.Leaf(parquet.DoubleType)
	}
}

func (s *Parquet) ChunkSize() int {
	return s.chunk
}

func (s *Parquet) PushRows(start, end int, rows []sas7bdat.Row) error {
	s.buf = s.buf[:0]
	for _, row := range rows {
		s.buf = append(s.buf, s.convert(row))
	}
	if _, err := s.w.WriteRows(s.buf); err != nil {
		return fmt.Errorf("write parquet rows [%d,%d): %w", start, end, err)
	}
	s.rows += len(rows)
	return nil
}

// convert builds a parquet row with values ordered by schema column.
func (s *Parquet) convert(row sas7bdat.Row) parquet.Row {
	out := make(parquet.Row, len(s.leaf))
	for i, v := range row {
		col := s.leaf[i]
		if v.IsMissing() {
			out[col] = parquet.NullValue().Level(0, 0, col)
			continue
		}
		var pv parquet.Value
		switch v.Type() {
		case sas7bdat.TypeString:
			pv = parquet.ByteArrayValue([]byte(s.text.Decode(v.Str())))
		case sas7bdat.TypeInteger:
			pv = parquet.Int64Value(v.Int())
		case sas7bdat.TypeDateTime:
			pv = parquet.Int64Value(v.Time().UnixMicro())
		case sas7bdat.TypeDate:
			pv = parquet.Int32Value(int32(v.Time().Unix() / 86400))
		case sas7bdat.TypeTime:
			pv = parquet.Int64Value(v.Duration().Microseconds())
		default:
			pv = parquet.DoubleValue(v.Float64())
		}
		out[col] = pv.Level(0, 1, col)
	}
	return out
}

func (s *Parquet) EndOfData() error {
	return s.Close()
}

// Rows returns the number of rows written.
func (s *Parquet) Rows() int {
	return s.rows
}

// Close writes the file footer. The caller owns the underlying writer.
func (s *Parquet) Close() error {
	if s.closed || s.w == nil {
		return nil
	}
	s.closed = true
	if err := s.w.Close(); err != nil {
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return nil
}
