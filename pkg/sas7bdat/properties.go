package sas7bdat

import "github.com/eunmann/sas7bdat/pkg/format"

// Compression is the row compression scheme of a file.
type Compression uint8

const (
	CompressionNone Compression = iota
	CompressionRLE
	CompressionRDC
)

func (c Compression) String() string {
	switch c {
	case CompressionRLE:
		return "RLE"
	case CompressionRDC:
		return "RDC"
	default:
		return "none"
	}
}

// Markers found in the first column text subheader.
const (
	rleMarker = "SASYZCRL"
	rdcMarker = "SASYZCR2"
)

// Properties describes a file: header fields, table metadata and the
// retained schema.
type Properties struct {
	format.Header

	Filename        string
	Compression     Compression
	Creator         string
	CreatorProc     string
	RowLength       int
	RowCount        int
	ColumnCount     int
	ColCountP1      int
	ColCountP2      int
	MixPageRowCount int
	LCS             int
	LCP             int

	// Columns holds the retained columns in file order.
	Columns []Column
}

// clone returns a copy that does not share the column slice.
func (p *Properties) clone() *Properties {
	c := *p
	c.Columns = append([]Column(nil), p.Columns...)
	return &c
}

// ColumnIndex returns the position among the retained columns of the first
// column with the given name, or -1.
func (p *Properties) ColumnIndex(name string) int {
	for i, c := range p.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}
