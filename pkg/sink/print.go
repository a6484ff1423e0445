package sink

import (
	"bufio"
	"fmt"
	"io"
	"time"

	"github.com/eunmann/sas7bdat/pkg/sas7bdat"
)

// Print writes the properties, the schema and every row as text.
type Print struct {
	w    *bufio.Writer
	text *TextDecoder
	cols []sas7bdat.Column
}

// NewPrint returns a Print sink writing to w. text may be nil.
func NewPrint(w io.Writer, text *TextDecoder) *Print {
	return &Print{w: bufio.NewWriter(w), text: text}
}

func (s *Print) SetProperties(p *sas7bdat.Properties) error {
	s.cols = p.Columns
	WriteProperties(s.w, p)
	fmt.Fprint(s.w, "Data:\n#")
	for _, c := range p.Columns {
		fmt.Fprintf(s.w, ",%s", c.Name)
	}
	fmt.Fprintln(s.w)
	return s.w.Flush()
}

func (s *Print) PushRow(index int, row sas7bdat.Row) error {
	fmt.Fprint(s.w, index)
	for _, v := range row {
		s.w.WriteByte(',')
		s.w.WriteString(s.text.Format(v))
	}
	return s.w.WriteByte('\n')
}

func (s *Print) EndOfData() error {
	return s.w.Flush()
}

// Flush writes buffered rows to the underlying writer.
func (s *Print) Flush() error {
	return s.w.Flush()
}

// WriteProperties writes the property and column blocks of p.
func WriteProperties(w io.Writer, p *sas7bdat.Properties) {
	fmt.Fprint(w, "Properties:\n")
	field := func(name string, v any) {
		fmt.Fprintf(w, "  %s: %v\n", name, v)
	}
	field("format", p.Width)
	field("endianness", p.Endian)
	field("platform", p.Platform)
	field("date created", formatStamp(p.Created))
	field("date modified", formatStamp(p.Modified))
	field("dataset name", p.DatasetName)
	field("encoding", p.Encoding)
	field("file type", p.FileType)
	field("SAS release", p.SASRelease)
	field("SAS server type", p.ServerType)
	field("OS type", p.OSType)
	field("OS name", p.OSName)
	field("compression", p.Compression)
	field("creator", p.Creator)
	field("creator proc", p.CreatorProc)
	field("row count", p.RowCount)
	field("column count", p.ColumnCount)
	fmt.Fprint(w, "Columns:\n")
	for i, c := range p.Columns {
		fmt.Fprintf(w, "  - column #%d\n", i)
		fmt.Fprintf(w, "    name: %s\n", c.Name)
		fmt.Fprintf(w, "    label: %s\n", c.Label)
		fmt.Fprintf(w, "    format: %s\n", c.Format)
		fmt.Fprintf(w, "    type: %s\n", c.Type)
	}
}

func formatStamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return sas7bdat.FormatDateTime(t)
}
